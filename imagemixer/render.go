package imagemixer

import (
	"context"
	"log/slog"

	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/gpu"
	"github.com/gogpu/mixer/kernel"
)

// fullFrameTransform is the identity geometric transform used when
// compositing one whole buffer onto another (flushing local_mix_buffer,
// composing a layer_draw_buffer, or copying a key buffer forward).
var fullFrameTransform = mixer.IdentityTransform

// renderLayers runs the render algorithm: fast-path checks, then the
// full GPU path (draw_buffer allocation, per-field rendering for
// interlaced formats, readback).
func renderLayers(ctx context.Context, device *gpu.Device, logger *slog.Logger, layers []mixer.Layer, format mixer.VideoFormat) *gpu.Future[*gpu.HostBuffer] {
	size := format.Width * format.Height * 4

	if len(layers) == 0 {
		return gpu.Submit(device.Executor, ctx, gpu.PriorityNormal, func(ctx context.Context) (*gpu.HostBuffer, error) {
			hb, err := device.CreateHostBuffer(ctx, size, gpu.HostUsageReadOnly)
			if err != nil {
				return nil, err
			}
			clear(hb.Data)
			return hb, nil
		})
	}

	if buf, ok := bypassSingleItem(layers, format); ok {
		return gpu.Submit(device.Executor, ctx, gpu.PriorityNormal, func(ctx context.Context) (*gpu.HostBuffer, error) {
			hb, err := device.CreateHostBuffer(ctx, size, gpu.HostUsageReadOnly)
			if err != nil {
				return nil, err
			}
			copy(hb.Data, buf)
			return hb, nil
		})
	}

	return gpu.Submit(device.Executor, ctx, gpu.PriorityNormal, func(ctx context.Context) (*gpu.HostBuffer, error) {
		drawBuffer, err := device.CreateDeviceBuffer(ctx, format.Width, format.Height, 4)
		if err != nil {
			return nil, err
		}
		defer drawBuffer.Release()
		clear(drawBuffer.Data)

		if format.IsInterlaced() {
			renderPass(ctx, device, logger, maskLayers(layers, mixer.FieldUpper), drawBuffer)
			renderPass(ctx, device, logger, maskLayers(layers, mixer.FieldLower), drawBuffer)
		} else {
			renderPass(ctx, device, logger, layers, drawBuffer)
		}

		hb, err := device.CreateHostBuffer(ctx, size, gpu.HostUsageReadOnly)
		if err != nil {
			return nil, err
		}
		drawBuffer.CopyTo(hb)
		return hb, nil
	})
}

// bypassSingleItem implements invariant 5: a single BGRA, identity,
// normal-blend item whose size matches the output is copied verbatim
// without touching the GPU.
func bypassSingleItem(layers []mixer.Layer, format mixer.VideoFormat) ([]byte, bool) {
	if len(layers) != 1 || len(layers[0].Items) != 1 {
		return nil, false
	}
	layer := layers[0]
	if layer.Blend != mixer.BlendNormal {
		return nil, false
	}
	item := layer.Items[0]
	if item.PixelDesc != mixer.PixelFormatBGRA {
		return nil, false
	}
	if !isIdentityTransform(item.Transform) {
		return nil, false
	}
	if len(item.Planes) != 1 {
		return nil, false
	}
	plane := item.Planes[0]
	if plane.Desc.Width != format.Width || plane.Desc.Height != format.Height {
		return nil, false
	}
	if len(plane.Data) != format.Width*format.Height*4 {
		return nil, false
	}
	return plane.Data, true
}

// isIdentityTransform reports whether t equals IdentityTransform in every
// field the image kernel reads; the audio-only Gain and Volume are ignored.
func isIdentityTransform(t mixer.FrameTransform) bool {
	t.Gain = mixer.IdentityTransform.Gain
	t.Volume = mixer.IdentityTransform.Volume
	return t == mixer.IdentityTransform
}

// maskLayers returns a copy of layers with every item's field mode
// intersected with field, dropping items that become empty.
func maskLayers(layers []mixer.Layer, field mixer.FieldMode) []mixer.Layer {
	out := make([]mixer.Layer, len(layers))
	for i, l := range layers {
		items := make([]mixer.Item, 0, len(l.Items))
		for _, it := range l.Items {
			it.Transform.Field &= field
			if it.Transform.Field != 0 {
				items = append(items, it)
			}
		}
		out[i] = mixer.Layer{Blend: l.Blend, Items: items}
	}
	return out
}

// renderPass renders every layer, in order, into drawBuffer. layerKey
// carries a layer's local_key_buffer forward to the next layer, per the
// keying protocol.
func renderPass(ctx context.Context, device *gpu.Device, logger *slog.Logger, layers []mixer.Layer, drawBuffer *gpu.DeviceBuffer) {
	var layerKey *gpu.DeviceBuffer
	for _, layer := range layers {
		layerKey = renderLayer(ctx, device, logger, layer, drawBuffer, layerKey)
	}
	if layerKey != nil {
		layerKey.Release()
	}
}

// renderLayer renders one layer's items and returns the local_key_buffer
// it produced, to become the next layer's layer_key_buffer. ctx must carry
// the executor marker for device's GPU thread, since renderLayer always
// runs from inside a renderLayers job.
func renderLayer(ctx context.Context, device *gpu.Device, logger *slog.Logger, layer mixer.Layer, drawBuffer *gpu.DeviceBuffer, layerKey *gpu.DeviceBuffer) *gpu.DeviceBuffer {
	items := dropEmptyField(layer.Items)

	target := drawBuffer
	var layerDrawBuffer *gpu.DeviceBuffer
	if layer.Blend != mixer.BlendNormal {
		buf, err := device.CreateDeviceBuffer(ctx, drawBuffer.Width, drawBuffer.Height, 4)
		if err != nil {
			logger.Warn("imagemixer: layer draw buffer allocation failed", "err", err)
			return layerKey
		}
		clear(buf.Data)
		layerDrawBuffer = buf
		target = buf
	}

	var localKey, localMix *gpu.DeviceBuffer
	for _, item := range items {
		localKey, localMix = drawItem(ctx, device, target, item, localKey, localMix, layerKey)
	}
	if localMix != nil {
		flushMix(target, localMix)
		localMix.Release()
	}

	if layerDrawBuffer != nil {
		compose(drawBuffer, layerDrawBuffer, layer.Blend)
		layerDrawBuffer.Release()
	}

	return localKey
}

func dropEmptyField(items []mixer.Item) []mixer.Item {
	out := make([]mixer.Item, 0, len(items))
	for _, it := range items {
		if it.Transform.Field != 0 {
			out = append(out, it)
		}
	}
	return out
}

// drawItem implements the per-item keying protocol: is_key items paint a
// mask, is_mix items composite additively into a deferred mix buffer
// consuming the current local key, and normal items flush any pending mix
// buffer before drawing directly with both keys.
func drawItem(ctx context.Context, device *gpu.Device, target *gpu.DeviceBuffer, item mixer.Item, localKey, localMix *gpu.DeviceBuffer, layerKey *gpu.DeviceBuffer) (*gpu.DeviceBuffer, *gpu.DeviceBuffer) {
	planes := toDeviceBuffers(ctx, device, item.Planes)

	switch {
	case item.Transform.IsKey:
		if localKey == nil {
			buf, err := device.CreateDeviceBuffer(ctx, target.Width, target.Height, 1)
			if err != nil {
				return localKey, localMix
			}
			clear(buf.Data)
			localKey = buf
		}
		kernel.DrawKey(kernel.DrawParams{
			PixelDesc:  item.PixelDesc,
			Planes:     planes,
			Transform:  item.Transform,
			Background: localKey,
		})
		return localKey, localMix

	case item.Transform.IsMix:
		if localMix == nil {
			buf, err := device.CreateDeviceBuffer(ctx, target.Width, target.Height, 4)
			if err != nil {
				return nil, localMix
			}
			clear(buf.Data)
			localMix = buf
		}
		kernel.Draw(kernel.DrawParams{
			PixelDesc:  item.PixelDesc,
			Planes:     planes,
			Transform:  item.Transform,
			Blend:      mixer.BlendNormal,
			Keyer:      mixer.KeyerAdditive,
			Background: localMix,
			LocalKey:   localKey,
			LayerKey:   layerKey,
		})
		consumed := localKey
		if consumed != nil {
			consumed.Release()
		}
		return nil, localMix

	default:
		if localMix != nil {
			flushMix(target, localMix)
			localMix.Release()
			localMix = nil
		}
		kernel.Draw(kernel.DrawParams{
			PixelDesc:  item.PixelDesc,
			Planes:     planes,
			Transform:  item.Transform,
			Blend:      mixer.BlendNormal,
			Keyer:      mixer.KeyerLinear,
			Background: target,
			LocalKey:   localKey,
			LayerKey:   layerKey,
		})
		consumed := localKey
		if consumed != nil {
			consumed.Release()
		}
		return nil, localMix
	}
}

// toDeviceBuffers uploads an item's host planes to device buffers. Real
// pipelines memoize this per host-buffer identity and overlap it with CPU
// work via copy_async; this synchronous version is correct but not
// overlapped.
func toDeviceBuffers(ctx context.Context, device *gpu.Device, planes []mixer.HostPlane) []*gpu.DeviceBuffer {
	out := make([]*gpu.DeviceBuffer, len(planes))
	for i, p := range planes {
		buf, err := device.CreateDeviceBuffer(ctx, p.Desc.Width, p.Desc.Height, p.Desc.Stride)
		if err != nil {
			continue
		}
		copy(buf.Data, p.Data)
		out[i] = buf
	}
	return out
}

// flushMix composites a stride-4 local_mix_buffer onto target with normal
// blend, matching the reference protocol's mix-buffer flush.
func flushMix(target, mix *gpu.DeviceBuffer) {
	compose(target, mix, mixer.BlendNormal)
}

// compose draws src (a full-size BGRA buffer) onto dst using the given
// blend mode at identity geometry and full opacity.
func compose(dst, src *gpu.DeviceBuffer, blendMode mixer.BlendMode) {
	kernel.Draw(kernel.DrawParams{
		PixelDesc:  mixer.PixelFormatBGRA,
		Planes:     []*gpu.DeviceBuffer{src},
		Transform:  fullFrameTransform,
		Blend:      blendMode,
		Keyer:      mixer.KeyerLinear,
		Background: dst,
	})
}
