package kernel

import (
	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/gpu"
)

// Draw executes the single draw call the reference kernel issues per
// item: it samples p's source planes, applies levels/csb/keys/opacity,
// blends against the background, and writes the result back into
// params.Background in place. Background is always stride-4 BGRA.
func Draw(p DrawParams) {
	bg := p.Background
	outW, outH := bg.Width, bg.Height

	x0 := int(p.Transform.FillTranslationX * float64(outW))
	y0 := int(p.Transform.FillTranslationY * float64(outH))
	w := int(p.Transform.FillScaleX * float64(outW))
	h := int(p.Transform.FillScaleY * float64(outH))
	if w <= 0 || h <= 0 {
		return
	}

	clipX0 := int(p.Transform.ClipTranslationX * float64(outW))
	clipY0 := int(p.Transform.ClipTranslationY * float64(outH))
	clipW := int(p.Transform.ClipScaleX * float64(outW))
	clipH := int(p.Transform.ClipScaleY * float64(outH))
	if clipW <= 0 {
		clipW = outW
	}
	if clipH <= 0 {
		clipH = outH
	}

	isHD := p.isHD()
	levelsOn := p.HasLevels()
	csbOn := p.HasColorAdjust()

	for ty := max(y0, clipY0); ty < min(y0+h, clipY0+clipH) && ty < outH; ty++ {
		if ty < 0 {
			continue
		}
		if !includesLine(p.Transform.Field, ty) {
			continue
		}
		for tx := max(x0, clipX0); tx < min(x0+w, clipX0+clipW) && tx < outW; tx++ {
			if tx < 0 {
				continue
			}
			u := float64(tx-x0) / float64(w)
			v := float64(ty-y0) / float64(h)

			color := sampleSource(p, u, v, isHD)
			if levelsOn {
				color = applyLevels(color, p.Transform.Levels)
			}
			if csbOn {
				color = applyCSB(color, p.Transform.Brightness, p.Transform.Saturation, p.Transform.Contrast)
			}
			if p.LocalKey != nil {
				color.a *= sampleKey(p.LocalKey, u, v)
			}
			if p.LayerKey != nil {
				color.a *= sampleKey(p.LayerKey, u, v)
			}
			color.a *= p.Transform.Opacity

			writeBlended(bg, tx, ty, color, p.Blend, p.Keyer)
		}
	}
}

// sampleSource reads the item's planes at normalized coordinates (u,v)
// using nearest-neighbor sampling and converts to unpremultiplied RGBA
// per PixelDesc, matching the reference shader's get_rgba_color switch.
func sampleSource(p DrawParams, u, v float64, isHD bool) rgba {
	if len(p.Planes) == 0 {
		return rgba{}
	}
	plane := p.Planes[0]
	px := int(u * float64(plane.Width))
	py := int(v * float64(plane.Height))
	px, py = clampCoord(px, plane.Width), clampCoord(py, plane.Height)

	switch p.PixelDesc {
	case mixer.PixelFormatGray:
		g := sampleStride(plane, px, py, 1, 0)
		return rgba{g, g, g, 1}
	case mixer.PixelFormatBGRA:
		return rgba{
			sampleStride(plane, px, py, 4, 2),
			sampleStride(plane, px, py, 4, 1),
			sampleStride(plane, px, py, 4, 0),
			sampleStride(plane, px, py, 4, 3),
		}
	case mixer.PixelFormatRGBA:
		return rgba{
			sampleStride(plane, px, py, 4, 0),
			sampleStride(plane, px, py, 4, 1),
			sampleStride(plane, px, py, 4, 2),
			sampleStride(plane, px, py, 4, 3),
		}
	case mixer.PixelFormatARGB:
		return rgba{
			sampleStride(plane, px, py, 4, 1),
			sampleStride(plane, px, py, 4, 2),
			sampleStride(plane, px, py, 4, 3),
			sampleStride(plane, px, py, 4, 0),
		}
	case mixer.PixelFormatABGR:
		return rgba{
			sampleStride(plane, px, py, 4, 3),
			sampleStride(plane, px, py, 4, 2),
			sampleStride(plane, px, py, 4, 1),
			sampleStride(plane, px, py, 4, 0),
		}
	case mixer.PixelFormatYCbCr:
		y := sampleStride(p.Planes[0], px, py, 1, 0)
		cb := sampleStride(p.Planes[1], px, py, 1, 0)
		cr := sampleStride(p.Planes[2], px, py, 1, 0)
		return ycbcrToRGBA(isHD, y, cb, cr, 1)
	case mixer.PixelFormatYCbCrA:
		y := sampleStride(p.Planes[0], px, py, 1, 0)
		cb := sampleStride(p.Planes[1], px, py, 1, 0)
		cr := sampleStride(p.Planes[2], px, py, 1, 0)
		a := sampleStride(p.Planes[3], px, py, 1, 0)
		return ycbcrToRGBA(isHD, y, cb, cr, a)
	case mixer.PixelFormatLuma:
		y3 := sampleStride(plane, px, py, 1, 0)
		v := clamp01((y3 - 0.065) / 0.859)
		return rgba{v, v, v, 1}
	default:
		return rgba{}
	}
}

// sampleStride reads one byte at (x,y) in a stride-byte-per-pixel plane,
// offset by channel, and returns it normalized to [0,1].
func sampleStride(plane *gpu.DeviceBuffer, x, y, stride, channel int) float64 {
	idx := (y*plane.Width+x)*stride + channel
	if idx < 0 || idx >= len(plane.Data) {
		return 0
	}
	return float64(plane.Data[idx]) / 255
}

// sampleKey reads a stride-1 key buffer at normalized coordinates (u,v),
// matching the shader's local_key/layer_key texture reads.
func sampleKey(buf *gpu.DeviceBuffer, u, v float64) float64 {
	x := clampCoord(int(u*float64(buf.Width)), buf.Width)
	y := clampCoord(int(v*float64(buf.Height)), buf.Height)
	return sampleStride(buf, x, y, 1, 0)
}

func clampCoord(v, max int) int {
	if v < 0 {
		return 0
	}
	if v >= max {
		return max - 1
	}
	return v
}
