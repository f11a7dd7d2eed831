// Package blend implements the image kernel's per-pixel blend color
// function: the same 28-case switch the reference shader compiles into
// "get_blend_color", operating here on unpremultiplied float64 channels
// in [0,1] instead of GLSL vec3 uniforms.
package blend

import "github.com/gogpu/mixer"

// RGB is an unpremultiplied color triple in [0,1].
type RGB struct {
	R, G, B float64
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func per(back, fore RGB, f func(b, fo float64) float64) RGB {
	return RGB{f(back.R, fore.R), f(back.G, fore.G), f(back.B, fore.B)}
}

// GetBlendColor dispatches to the blend function selected by mode,
// matching the reference shader's get_blend_color switch. Mode 0
// (normal) and the reserved gap at 12 both fall through to "fore
// unchanged", mirroring the shader's default case.
func GetBlendColor(mode mixer.BlendMode, back, fore RGB) RGB {
	switch mode {
	case mixer.BlendLighten:
		return per(back, fore, func(b, f float64) float64 { return max(b, f) })
	case mixer.BlendDarken:
		return per(back, fore, func(b, f float64) float64 { return min(b, f) })
	case mixer.BlendMultiply:
		return per(back, fore, func(b, f float64) float64 { return b * f })
	case mixer.BlendAverage:
		return per(back, fore, func(b, f float64) float64 { return (b + f) / 2 })
	case mixer.BlendAdd:
		return per(back, fore, func(b, f float64) float64 { return clamp01(b + f) })
	case mixer.BlendSubtract:
		return per(back, fore, func(b, f float64) float64 { return clamp01(b + f - 1) })
	case mixer.BlendDifference:
		return per(back, fore, func(b, f float64) float64 { return abs(b - f) })
	case mixer.BlendNegation:
		return per(back, fore, func(b, f float64) float64 { return 1 - abs(1-b-f) })
	case mixer.BlendExclusion:
		return per(back, fore, func(b, f float64) float64 { return b + f - 2*b*f })
	case mixer.BlendScreen:
		return per(back, fore, screen)
	case mixer.BlendOverlay:
		return per(back, fore, func(b, f float64) float64 { return overlay(b, f) })
	case mixer.BlendHardLight:
		return per(back, fore, func(b, f float64) float64 { return overlay(f, b) })
	case mixer.BlendColorDodge:
		return per(back, fore, colorDodge)
	case mixer.BlendColorBurn:
		return per(back, fore, colorBurn)
	case mixer.BlendLinearDodge:
		return per(back, fore, func(b, f float64) float64 { return clamp01(b + f) })
	case mixer.BlendLinearBurn:
		return per(back, fore, func(b, f float64) float64 { return clamp01(b + f - 1) })
	case mixer.BlendLinearLight:
		return per(back, fore, func(b, f float64) float64 { return clamp01(b + 2*f - 1) })
	case mixer.BlendVividLight:
		return per(back, fore, vividLight)
	case mixer.BlendPinLight:
		return per(back, fore, pinLight)
	case mixer.BlendHardMix:
		return per(back, fore, func(b, f float64) float64 {
			if vividLight(b, f) < 0.5 {
				return 0
			}
			return 1
		})
	case mixer.BlendReflect:
		return per(back, fore, reflect)
	case mixer.BlendGlow:
		return per(back, fore, func(b, f float64) float64 { return reflect(f, b) })
	case mixer.BlendPhoenix:
		return per(back, fore, func(b, f float64) float64 { return min(b, f) - max(b, f) + 1 })
	case mixer.BlendHue:
		return setLum(setSat(fore, sat(back)), lum(back))
	case mixer.BlendSaturation:
		return setLum(setSat(back, sat(fore)), lum(back))
	case mixer.BlendColor:
		return setLum(fore, lum(back))
	case mixer.BlendLuminosity:
		return setLum(back, lum(fore))
	default:
		return fore
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func screen(b, f float64) float64 {
	return 1 - (1-b)*(1-f)
}

func overlay(b, f float64) float64 {
	if b < 0.5 {
		return 2 * b * f
	}
	return 1 - 2*(1-b)*(1-f)
}

func colorDodge(b, f float64) float64 {
	if f >= 1 {
		return 1
	}
	return clamp01(b / (1 - f))
}

func colorBurn(b, f float64) float64 {
	if f <= 0 {
		return 0
	}
	return clamp01(1 - (1-b)/f)
}

func vividLight(b, f float64) float64 {
	if f < 0.5 {
		return colorBurn(b, 2*f)
	}
	return colorDodge(b, 2*(f-0.5))
}

func pinLight(b, f float64) float64 {
	if f < 0.5 {
		return min(b, 2*f)
	}
	return max(b, 2*(f-0.5))
}

func reflect(b, f float64) float64 {
	if f >= 1 {
		return 1
	}
	return min(b*b/(1-f), 1)
}
