// Package imagemixer implements the image mixer (C6): it receives a
// per-tick tree of frames through a visitor protocol, schedules
// host-to-device uploads, renders layers in order applying blend modes
// and the local/layer keying protocol, and returns a deferred readback.
//
// Grounded on the reference image_mixer's impl (begin_layer, begin,
// visit, end, end_layer, render) in the original playout engine's GPU
// mixer source.
package imagemixer

import (
	"context"
	"log/slog"

	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/gpu"
)

// Mixer accumulates one tick's layers and renders them into a finished
// BGRA frame. It is not safe for concurrent use; callers serialize access
// through a channel executor, same as the reference implementation.
type Mixer struct {
	device *gpu.Device
	logger *slog.Logger

	layers []mixer.Layer
	stack  []mixer.FrameTransform
}

// New creates an image mixer bound to device.
func New(device *gpu.Device) *Mixer {
	return &Mixer{
		device: device,
		logger: mixer.Logger(),
		stack:  []mixer.FrameTransform{mixer.IdentityTransform},
	}
}

// BeginLayer appends a new empty layer with the given blend mode.
func (m *Mixer) BeginLayer(blend mixer.BlendMode) {
	m.layers = append(m.layers, mixer.Layer{Blend: blend})
}

// EndLayer is a no-op, kept for symmetry with BeginLayer and the
// reference protocol.
func (m *Mixer) EndLayer() {}

// Begin pushes stack.top() composed with f's own transform, implementing
// the producer accept() contract's begin(self) call.
func (m *Mixer) Begin(f *mixer.DataFrame) {
	top := m.stack[len(m.stack)-1]
	m.stack = append(m.stack, top.Compose(f.Transform))
}

// Visit records an Item into the current layer if f carries valid,
// non-empty planes and its composed transform's field is not empty.
func (m *Mixer) Visit(f *mixer.DataFrame) {
	if len(m.layers) == 0 {
		return
	}
	top := m.stack[len(m.stack)-1]
	if top.Field == 0 {
		return
	}
	if !f.Valid() {
		return
	}
	layer := &m.layers[len(m.layers)-1]
	layer.Items = append(layer.Items, mixer.Item{
		PixelDesc: f.PixelDesc,
		Planes:    f.Planes,
		Transform: top.WithVolumeReset(),
		Tag:       f.Tag,
	})
}

// End pops the transform stack, implementing accept()'s end() call.
func (m *Mixer) End() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

// Reset discards accumulated layers and the transform stack, preparing
// the mixer for the next tick. Render calls this internally after
// producing a result.
func (m *Mixer) Reset() {
	m.layers = m.layers[:0]
	m.stack = []mixer.FrameTransform{mixer.IdentityTransform}
}

// Render consumes the accumulated layers and returns a future over a
// host buffer holding format.size bytes of BGRA pixels.
func (m *Mixer) Render(ctx context.Context, format mixer.VideoFormat) *gpu.Future[*gpu.HostBuffer] {
	layers := compactLayers(m.layers)
	m.Reset()
	return renderLayers(ctx, m.device, m.logger, layers, format)
}

// compactLayers drops layers with no items, matching the render
// algorithm's first step.
func compactLayers(layers []mixer.Layer) []mixer.Layer {
	out := make([]mixer.Layer, 0, len(layers))
	for _, l := range layers {
		if !l.Empty() {
			out = append(out, l)
		}
	}
	return out
}
