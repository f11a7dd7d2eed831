package kernel

import (
	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/gpu"

	"github.com/gogpu/mixer/blend"
)

// writeBlended reads the background pixel at (x,y), applies the blend
// mode against the foreground sample, combines with the background per
// keyer, and writes the premultiplied BGRA result back, matching the
// reference shader's blend() function:
//
//	if blend_mode != 0: fore.rgb = get_blend_color(back/back.a, fore/fore.a) * fore.a
//	additive: fore + back
//	linear:   fore + (1 - fore.a) * back
func writeBlended(bg *gpu.DeviceBuffer, x, y int, fore rgba, mode mixer.BlendMode, keyer mixer.Keyer) {
	idx := (y*bg.Width + x) * 4
	if idx < 0 || idx+4 > len(bg.Data) {
		return
	}

	back := rgba{
		r: float64(bg.Data[idx+2]) / 255,
		g: float64(bg.Data[idx+1]) / 255,
		b: float64(bg.Data[idx+0]) / 255,
		a: float64(bg.Data[idx+3]) / 255,
	}

	if mode != mixer.BlendNormal {
		var backUnmul, foreUnmul blend.RGB
		if back.a > 1e-7 {
			backUnmul = blend.RGB{R: back.r / back.a, G: back.g / back.a, B: back.b / back.a}
		}
		if fore.a > 1e-7 {
			foreUnmul = blend.RGB{R: fore.r / fore.a, G: fore.g / fore.a, B: fore.b / fore.a}
		}
		blended := blend.GetBlendColor(mode, backUnmul, foreUnmul)
		fore.r, fore.g, fore.b = blended.R*fore.a, blended.G*fore.a, blended.B*fore.a
	} else {
		// Normal mode composites premultiplied channels: premultiply the
		// unpremultiplied sample.
		fore.r *= fore.a
		fore.g *= fore.a
		fore.b *= fore.a
	}

	var out rgba
	switch keyer {
	case mixer.KeyerAdditive:
		out = rgba{fore.r + back.r, fore.g + back.g, fore.b + back.b, fore.a + back.a}
	default:
		out = rgba{
			fore.r + (1-fore.a)*back.r,
			fore.g + (1-fore.a)*back.g,
			fore.b + (1-fore.a)*back.b,
			fore.a + (1-fore.a)*back.a,
		}
	}

	bg.Data[idx+0] = toByte(out.b)
	bg.Data[idx+1] = toByte(out.g)
	bg.Data[idx+2] = toByte(out.r)
	bg.Data[idx+3] = toByte(out.a)
}

func toByte(v float64) byte {
	v = clamp01(v) * 255
	return byte(v + 0.5)
}
