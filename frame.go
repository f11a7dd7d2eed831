package mixer

// Frame is the element accepted by a Visitor. It is implemented by
// DataFrame (a leaf carrying pixel/audio data) and DrawFrame (an internal
// group node carrying a blend mode and child frames). This models the
// reference mixer's double-dispatch visitor as a closed two-case variant
// instead of virtual dispatch.
type Frame interface {
	Accept(v Visitor)
}

// Visitor is implemented by the image mixer and the audio mixer. A
// producer's frame tree is walked once per mixer per tick.
type Visitor interface {
	Begin(f *DataFrame)
	Visit(f *DataFrame)
	End()
}

// SourceTag is a stable identity for a producer, used by the audio mixer
// to carry volume-ramp state across ticks. The reference implementation
// ties identity to a raw pointer; this is an opaque uint64 allocated by
// the producer instead.
type SourceTag uint64

// DataFrame is a leaf frame: one producer's output for this tick, made of
// host-resident image planes in a known pixel format plus interleaved
// PCM audio.
type DataFrame struct {
	PixelDesc PixelFormat
	Planes    []HostPlane
	Audio     []int32
	Tag       SourceTag
	Transform FrameTransform
}

// Accept implements Frame by delegating to the visitor's Begin/Visit/End
// triplet, matching the reference mixer's accept(visitor) contract.
func (f *DataFrame) Accept(v Visitor) {
	v.Begin(f)
	v.Visit(f)
	v.End()
}

// HostPlane is one plane of host-resident pixel data backing a DataFrame,
// paired with its geometry so the image mixer can size device buffers
// without re-deriving it from the pixel format alone.
type HostPlane struct {
	Desc PlaneDesc
	Data []byte
}

// Valid reports whether f carries a known pixel format and at least one
// plane, none of them empty, the precondition the image mixer's visitor
// checks before recording an Item.
func (f *DataFrame) Valid() bool {
	if f.PixelDesc > PixelFormatLuma {
		return false
	}
	if len(f.Planes) == 0 {
		return false
	}
	for _, p := range f.Planes {
		if len(p.Data) == 0 {
			return false
		}
	}
	return true
}

// DrawFrame is a group frame: a layer's blend mode and its ordered child
// frames. channel.Orchestrator does not build DrawFrames (it calls the
// image mixer's BeginLayer/EndLayer itself); visiting one is a no-op
// (only its children carry data) and its Blend is not passed to the
// visitor, matching the reference mixer's treatment of draw_frame nodes.
type DrawFrame struct {
	Blend    BlendMode
	Children []Frame
}

// Accept visits every child in order. A DrawFrame never records an Item
// itself.
func (f *DrawFrame) Accept(v Visitor) {
	for _, child := range f.Children {
		child.Accept(v)
	}
}
