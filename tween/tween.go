// Package tween implements the tweened transform engine (C8): per-layer
// animated state, advanced one or more ticks at a time and fetched as an
// interpolation between a source and destination value, shaped by a
// named easing curve (linear when the name is unknown).
//
// Generic Tweened[T] is grounded on the pack's use of Go generics for
// shared infrastructure (the same language feature the teacher library
// uses for its sharded cache), applied here to interpolated transform
// state instead of cached values.
package tween

// Interpolatable is any value a Tweened can animate between two
// endpoints.
type Interpolatable[T any] interface {
	Lerp(dest T, frac float64) T
}

// Tweened holds one animation's source/destination endpoints, its total
// duration, elapsed progress, and easing curve.
type Tweened[T Interpolatable[T]] struct {
	source   T
	dest     T
	duration int
	elapsed  int
	easing   Easing
}

// NewTweened creates a tween that moves from source to dest over
// durationTicks, using the named easing (falling back to linear if
// unknown).
func NewTweened[T Interpolatable[T]](source, dest T, durationTicks int, easingName string) Tweened[T] {
	return Tweened[T]{
		source:   source,
		dest:     dest,
		duration: durationTicks,
		easing:   Lookup(easingName),
	}
}

// Identity creates a tween that is always at rest on value v.
func Identity[T Interpolatable[T]](v T) Tweened[T] {
	return Tweened[T]{source: v, dest: v, duration: 0, easing: Lookup("linear")}
}

// Fetch returns dest exactly once elapsed reaches duration, otherwise the
// eased interpolation between source and dest.
func (t Tweened[T]) Fetch() T {
	if t.duration <= 0 || t.elapsed >= t.duration {
		return t.dest
	}
	frac := t.easing(float64(t.elapsed) / float64(t.duration))
	return t.source.Lerp(t.dest, frac)
}

// FetchAndTick advances elapsed by n ticks, clamped to duration, then
// fetches.
func (t Tweened[T]) FetchAndTick(n int) (T, Tweened[T]) {
	t.elapsed += n
	if t.elapsed > t.duration {
		t.elapsed = t.duration
	}
	return t.Fetch(), t
}
