package mixer

// Producer is implemented by anything the orchestrator can composite: one
// independent video/audio source per layer per tick. It is the Go shape
// of the "must implement" external-producer contract (spec §6); the
// orchestrator reads these five accessors to build a DataFrame decorated
// with the tick's cumulative transform, rather than the producer
// implementing Accept itself — the producer's own FrameTransform is its
// base transform before that decoration, composed by the orchestrator.
type Producer interface {
	// PixelFormatDesc reports the producer's current pixel format.
	PixelFormatDesc() PixelFormat

	// HostBufferPlanes returns this tick's host-resident plane data, one
	// plane per entry, ordered to match PixelFormatDesc's plane count.
	HostBufferPlanes() []HostPlane

	// AudioSamples returns this tick's interleaved PCM samples. Its
	// length must equal the channel's audio_samples_per_frame, or the
	// audio mixer drops it as a size mismatch.
	AudioSamples() []int32

	// SourceTag is a stable identity across ticks, used by the audio
	// mixer to carry volume-ramp state for this producer.
	SourceTag() SourceTag

	// FrameTransform is the producer's own base transform, composed
	// under the orchestrator's cumulative per-layer transform.
	FrameTransform() FrameTransform
}

// BuildDataFrame constructs the DataFrame the orchestrator hands to both
// mixers' Accept, decorating p's own transform with the tick's cumulative
// layer transform (root · per_layer, already composed by the caller) and
// a field mask narrowed to the current render pass.
func BuildDataFrame(p Producer, cumulative FrameTransform, field FieldMode) *DataFrame {
	transform := cumulative.Compose(p.FrameTransform())
	transform.Field &= field
	return &DataFrame{
		PixelDesc: p.PixelFormatDesc(),
		Planes:    p.HostBufferPlanes(),
		Audio:     p.AudioSamples(),
		Tag:       p.SourceTag(),
		Transform: transform,
	}
}
