package mixer

// Levels holds the input/output remapping parameters applied before
// contrast/saturation/brightness. The identity mapping is (min_in=0,
// max_in=1, gamma=1, min_out=0, max_out=1); the zero value of Levels is
// NOT identity, so callers should use DefaultLevels to get it.
type Levels struct {
	MinInput  float64
	MaxInput  float64
	Gamma     float64
	MinOutput float64
	MaxOutput float64
}

// DefaultLevels is the identity levels mapping.
var DefaultLevels = Levels{MinInput: 0, MaxInput: 1, Gamma: 1, MinOutput: 0, MaxOutput: 1}

// IsDefault reports whether l is the identity mapping, used by the image
// kernel to decide whether to enable the levels uniform at all.
func (l Levels) IsDefault() bool {
	return l == DefaultLevels
}

// FrameTransform is the composite per-item/per-layer transform: geometric
// placement, color adjustment, field selection, keying flags, and audio
// gain. It composes associatively via Compose, matching the reference
// mixer's "a * b" operator.
type FrameTransform struct {
	FillTranslationX, FillTranslationY float64
	FillScaleX, FillScaleY             float64

	ClipTranslationX, ClipTranslationY float64
	ClipScaleX, ClipScaleY             float64

	Opacity float64
	Gain    float64

	// Brightness, Saturation, and Contrast are multiplicative scale
	// factors, like Opacity and Gain: their neutral value is 1, not the
	// zero value, and they compose by multiplication in Compose.
	Brightness float64
	Saturation float64
	Contrast   float64

	Levels Levels

	Field FieldMode

	IsKey bool
	IsMix bool

	Volume float64
}

// IdentityTransform is the neutral element of Compose: composing any
// transform with it yields the original transform unchanged.
var IdentityTransform = FrameTransform{
	FillScaleX: 1, FillScaleY: 1,
	ClipScaleX: 1, ClipScaleY: 1,
	Opacity: 1, Gain: 1, Brightness: 1, Saturation: 1, Contrast: 1,
	Levels: DefaultLevels,
	Field:  FieldProgressive,
	Volume: 1,
}

// Compose returns a*b: translations combine as a.t + b.t*a.s, scales and
// scalars multiply, field modes intersect, and key/mix flags OR. Compose
// is associative, matching the reference mixer's transform stack.
func (a FrameTransform) Compose(b FrameTransform) FrameTransform {
	return FrameTransform{
		FillTranslationX: a.FillTranslationX + b.FillTranslationX*a.FillScaleX,
		FillTranslationY: a.FillTranslationY + b.FillTranslationY*a.FillScaleY,
		FillScaleX:       a.FillScaleX * b.FillScaleX,
		FillScaleY:       a.FillScaleY * b.FillScaleY,

		ClipTranslationX: a.ClipTranslationX + b.ClipTranslationX*a.ClipScaleX,
		ClipTranslationY: a.ClipTranslationY + b.ClipTranslationY*a.ClipScaleY,
		ClipScaleX:       a.ClipScaleX * b.ClipScaleX,
		ClipScaleY:       a.ClipScaleY * b.ClipScaleY,

		Opacity:    a.Opacity * b.Opacity,
		Gain:       a.Gain * b.Gain,
		Brightness: a.Brightness * b.Brightness,
		Saturation: a.Saturation * b.Saturation,
		Contrast:   a.Contrast * b.Contrast,

		Levels: composeLevels(a.Levels, b.Levels),

		Field: a.Field & b.Field,

		IsKey: a.IsKey || b.IsKey,
		IsMix: a.IsMix || b.IsMix,

		Volume: a.Volume * b.Volume,
	}
}

// composeLevels takes b's levels whenever b departs from the identity
// mapping, else falls back to a's. Levels parameters are absolute input/
// output remaps, not relative scale factors (unlike Opacity or Gain), so
// there is no sound multiplicative combination of two ranges: treating
// MinInput/MinOutput as multiplicative scalars would let a zero-valued
// DefaultLevels (MinInput=0, MinOutput=0) inside IdentityTransform
// annihilate any non-zero levels a producer had set, breaking Compose's
// neutral-element invariant. Overriding instead of multiplying keeps
// IdentityTransform neutral on both sides.
func composeLevels(a, b Levels) Levels {
	if b.IsDefault() {
		return a
	}
	return b
}

// Lerp linearly interpolates every continuous field between a (frac=0)
// and b (frac=1). Discrete fields (Field, IsKey, IsMix) are held at a's
// value; fetch() only calls Lerp for frac in [0,1) and returns b verbatim
// once elapsed reaches duration, so the discrete fields still snap to
// their destination exactly at the end of a tween.
func (a FrameTransform) Lerp(b FrameTransform, frac float64) FrameTransform {
	lerp := func(x, y float64) float64 { return x + (y-x)*frac }
	return FrameTransform{
		FillTranslationX: lerp(a.FillTranslationX, b.FillTranslationX),
		FillTranslationY: lerp(a.FillTranslationY, b.FillTranslationY),
		FillScaleX:       lerp(a.FillScaleX, b.FillScaleX),
		FillScaleY:       lerp(a.FillScaleY, b.FillScaleY),

		ClipTranslationX: lerp(a.ClipTranslationX, b.ClipTranslationX),
		ClipTranslationY: lerp(a.ClipTranslationY, b.ClipTranslationY),
		ClipScaleX:       lerp(a.ClipScaleX, b.ClipScaleX),
		ClipScaleY:       lerp(a.ClipScaleY, b.ClipScaleY),

		Opacity:    lerp(a.Opacity, b.Opacity),
		Gain:       lerp(a.Gain, b.Gain),
		Brightness: lerp(a.Brightness, b.Brightness),
		Saturation: lerp(a.Saturation, b.Saturation),
		Contrast:   lerp(a.Contrast, b.Contrast),

		Levels: Levels{
			MinInput:  lerp(a.Levels.MinInput, b.Levels.MinInput),
			MaxInput:  lerp(a.Levels.MaxInput, b.Levels.MaxInput),
			Gamma:     lerp(a.Levels.Gamma, b.Levels.Gamma),
			MinOutput: lerp(a.Levels.MinOutput, b.Levels.MinOutput),
			MaxOutput: lerp(a.Levels.MaxOutput, b.Levels.MaxOutput),
		},

		Field: a.Field,
		IsKey: a.IsKey,
		IsMix: a.IsMix,

		Volume: lerp(a.Volume, b.Volume),
	}
}

// WithVolumeReset returns a copy of t with Volume reset to the identity
// value, used by the image mixer's visitor when recording an Item (the
// image path never consumes Volume; resetting avoids it leaking into
// pixel-level decisions).
func (t FrameTransform) WithVolumeReset() FrameTransform {
	t.Volume = IdentityTransform.Volume
	return t
}
