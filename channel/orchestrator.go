package channel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/audiomixer"
	"github.com/gogpu/mixer/gpu"
	"github.com/gogpu/mixer/gpubackend"
	"github.com/gogpu/mixer/imagemixer"
	"github.com/gogpu/mixer/tween"
)

// LayerInput is one layer's contribution to a tick: its stable id (for
// tween lookups), its output blend mode, and the producers composited
// into it this tick, in render order. Layers themselves render in the
// slice order passed to Tick, matching the ordering guarantee that
// layers render in insertion order.
type LayerInput struct {
	ID        tween.LayerID
	Blend     mixer.BlendMode
	Producers []mixer.Producer
}

// FinishedFrame is one tick's output: a readback host buffer holding
// format.Width*format.Height*4 bytes of BGRA, and the tick's mixed audio
// samples.
type FinishedFrame struct {
	Image *gpu.HostBuffer
	Audio []int32
}

// Diagnostics is the per-tick measurement set, recorded every tick per
// spec §4.8's closing paragraph. No metrics/histogram library exists
// anywhere in the example corpus, so these are plain fields read back
// through Diagnostics() rather than counters exported to a metrics
// backend.
type Diagnostics struct {
	RenderTime    time.Duration
	FrameWaitTime time.Duration
	QueueDepth    int
}

// Orchestrator is the per-channel frame mixer (C9): it owns the channel
// executor, the tweened transform engine, and one image mixer + one
// audio mixer bound to a shared GPU device, and produces one
// FinishedFrame per Tick call.
type Orchestrator struct {
	device *gpu.Device
	format mixer.VideoFormat
	logger *slog.Logger

	exec   *Executor
	tweens *tween.Engine
	image  *imagemixer.Mixer
	audio  *audiomixer.Mixer

	out chan FinishedFrame

	mu   sync.Mutex
	diag Diagnostics
}

// New creates an orchestrator for one channel. samplesPerFrame is the
// channel's fixed audio_samples_per_frame; outCapacity is the finished-
// frame output queue's bound (2, per spec §4.8 step 5, if <= 0).
func New(device *gpu.Device, format mixer.VideoFormat, samplesPerFrame, outCapacity int) *Orchestrator {
	if outCapacity <= 0 {
		outCapacity = DefaultQueueCapacity
	}
	return &Orchestrator{
		device: device,
		format: format,
		logger: mixer.Logger(),
		exec:   NewExecutor(DefaultQueueCapacity),
		tweens: tween.NewEngine(),
		image:  imagemixer.New(device),
		audio:  audiomixer.New(samplesPerFrame),
		out:    make(chan FinishedFrame, outCapacity),
	}
}

// EnableHardware builds a gpubackend.Hardware for provider and format,
// compiles its shader, and attaches it to the channel's device. The
// cooperative executor, render algorithm, and keying protocol are
// unchanged by this call, and texture upload, draw and readback keep
// running on the software path.
func (o *Orchestrator) EnableHardware(ctx context.Context, provider gpucontext.DeviceProvider, format gputypes.TextureFormat) error {
	hw, err := gpubackend.NewHardware(provider, format)
	if err != nil {
		return err
	}
	return o.device.AttachHardware(ctx, hw)
}

// Output returns the channel's finished-frame stream.
func (o *Orchestrator) Output() <-chan FinishedFrame {
	return o.out
}

// Diagnostics returns the most recently recorded per-tick measurements.
func (o *Orchestrator) Diagnostics() Diagnostics {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.diag
}

// SetTransform replaces a layer's tweened entry for the given tween
// channel (image or audio transforms), serialized on the channel
// executor so it happens-before the next Tick's render, per spec §5.
func (o *Orchestrator) SetTransform(ctx context.Context, ch tween.Channel, layer tween.LayerID, target mixer.FrameTransform, durationTicks int, easingName string) error {
	return o.exec.Invoke(ctx, func() {
		o.tweens.Set(ch, layer, target, durationTicks, easingName)
	})
}

// ApplyTransform is SetTransform's fn-of-current-value sibling.
func (o *Orchestrator) ApplyTransform(ctx context.Context, ch tween.Channel, layer tween.LayerID, fn func(mixer.FrameTransform) mixer.FrameTransform, durationTicks int, easingName string) error {
	return o.exec.Invoke(ctx, func() {
		o.tweens.Apply(ch, layer, fn, durationTicks, easingName)
	})
}

// ResetTransform tweens a layer back to identity.
func (o *Orchestrator) ResetTransform(ctx context.Context, ch tween.Channel, layer tween.LayerID, durationTicks int, easingName string) error {
	return o.exec.Invoke(ctx, func() {
		o.tweens.Reset(ch, layer, durationTicks, easingName)
	})
}

// ClearTransforms empties both tween tables and resets the root tweens.
func (o *Orchestrator) ClearTransforms(ctx context.Context) error {
	return o.exec.Invoke(ctx, func() {
		o.tweens.Clear()
	})
}

// Tick runs one full orchestrator cycle (spec §4.8 steps 1-5) on the
// channel executor and pushes the result to Output(), blocking if the
// output queue is full.
func (o *Orchestrator) Tick(ctx context.Context, layers []LayerInput) error {
	return o.exec.Invoke(ctx, func() {
		o.tick(ctx, layers)
	})
}

func (o *Orchestrator) tick(ctx context.Context, layers []LayerInput) {
	start := time.Now()

	liveLayers := make([]tween.LayerID, len(layers))
	for i, l := range layers {
		liveLayers[i] = l.ID
	}

	var waitTime time.Duration
	if o.format.IsInterlaced() {
		waitTime = o.tickInterlaced(ctx, layers, liveLayers)
	} else {
		waitTime = o.tickProgressive(ctx, layers, liveLayers)
	}

	o.mu.Lock()
	o.diag = Diagnostics{
		RenderTime:    time.Since(start),
		FrameWaitTime: waitTime,
		QueueDepth:    o.exec.QueueDepth(),
	}
	o.mu.Unlock()
}

func (o *Orchestrator) tickProgressive(ctx context.Context, layers []LayerInput, liveLayers []tween.LayerID) time.Duration {
	imageCumulative := o.tweens.FetchAndTick(tween.ChannelImage, liveLayers, 1)
	audioCumulative := o.tweens.FetchAndTick(tween.ChannelAudio, liveLayers, 1)

	for _, l := range layers {
		o.image.BeginLayer(l.Blend)
		for _, p := range l.Producers {
			mixer.BuildDataFrame(p, imageCumulative[l.ID], mixer.FieldProgressive).Accept(o.image)
		}
		o.image.EndLayer()
	}
	for _, l := range layers {
		for _, p := range l.Producers {
			mixer.BuildDataFrame(p, audioCumulative[l.ID], mixer.FieldProgressive).Accept(o.audio)
		}
	}

	return o.deliver(ctx)
}

func (o *Orchestrator) tickInterlaced(ctx context.Context, layers []LayerInput, liveLayers []tween.LayerID) time.Duration {
	imageUpper := o.tweens.FetchAndTick(tween.ChannelImage, liveLayers, 1)
	audioUpper := o.tweens.FetchAndTick(tween.ChannelAudio, liveLayers, 1)
	imageLower := o.tweens.FetchAndTick(tween.ChannelImage, liveLayers, 1)
	audioLower := o.tweens.FetchAndTick(tween.ChannelAudio, liveLayers, 1)

	for _, l := range layers {
		o.image.BeginLayer(l.Blend)
		for _, p := range l.Producers {
			mixer.BuildDataFrame(p, imageUpper[l.ID], mixer.FieldUpper).Accept(o.image)
			mixer.BuildDataFrame(p, imageLower[l.ID], mixer.FieldLower).Accept(o.image)
		}
		o.image.EndLayer()
	}
	for _, l := range layers {
		for _, p := range l.Producers {
			mixer.BuildDataFrame(p, audioUpper[l.ID], mixer.FieldUpper).Accept(o.audio)
			mixer.BuildDataFrame(p, audioLower[l.ID], mixer.FieldLower).Accept(o.audio)
		}
	}

	return o.deliver(ctx)
}

// deliver renders the accumulated layers, mixes audio, awaits the
// readback future, and pushes the finished frame to the bounded output
// queue, the orchestrator's two suspension points per spec §5. It
// returns the time spent blocked pushing to that queue (the
// backpressure wait recorded in Diagnostics.FrameWaitTime).
func (o *Orchestrator) deliver(ctx context.Context) time.Duration {
	future := o.image.Render(ctx, o.format)
	samples := o.audio.Mix()

	hb, err := future.Get(ctx)
	if err != nil {
		o.logger.Warn("channel: readback failed", "error", err)
		return 0
	}

	waitStart := time.Now()
	select {
	case o.out <- FinishedFrame{Image: hb, Audio: samples}:
	case <-ctx.Done():
	}
	return time.Since(waitStart)
}

// Stop halts the channel executor. In-flight GPU work is drained by the
// device's own executor, not by this one; no further frames are pushed
// to Output() once Stop returns.
func (o *Orchestrator) Stop() {
	o.exec.Close()
}
