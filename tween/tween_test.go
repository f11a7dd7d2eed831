package tween

import (
	"math"
	"testing"

	"github.com/gogpu/mixer"
)

type scalar float64

func (a scalar) Lerp(b scalar, frac float64) scalar {
	return a + (b-a)*scalar(frac)
}

func TestFetchReturnsSourceAtStart(t *testing.T) {
	tw := NewTweened[scalar](0, 10, 4, "linear")
	if got := tw.Fetch(); got != 0 {
		t.Fatalf("Fetch() at elapsed=0 = %v, want 0", got)
	}
}

func TestFetchReturnsDestAtEnd(t *testing.T) {
	tw := NewTweened[scalar](0, 10, 4, "linear")
	_, tw = tw.FetchAndTick(4)
	if got := tw.Fetch(); got != 10 {
		t.Fatalf("Fetch() at elapsed=duration = %v, want 10", got)
	}
}

func TestFetchAndTickClampsPastDuration(t *testing.T) {
	tw := NewTweened[scalar](0, 10, 4, "linear")
	var got scalar
	got, tw = tw.FetchAndTick(100)
	if got != 10 {
		t.Fatalf("FetchAndTick(100) = %v, want 10", got)
	}
	if got = tw.Fetch(); got != 10 {
		t.Fatalf("Fetch() after overshoot = %v, want 10", got)
	}
}

func TestFetchAndTickLinearMidpoint(t *testing.T) {
	tw := NewTweened[scalar](0, 10, 4, "linear")
	var got scalar
	got, tw = tw.FetchAndTick(2)
	if got != 5 {
		t.Fatalf("FetchAndTick(2) of 4 = %v, want 5", got)
	}
	got, tw = tw.FetchAndTick(2)
	if got != 10 {
		t.Fatalf("FetchAndTick(2) more = %v, want 10", got)
	}
}

func TestUnknownEasingFallsBackToLinear(t *testing.T) {
	tw := NewTweened[scalar](0, 10, 4, "not_a_real_curve")
	_, tw = tw.FetchAndTick(2)
	if got := tw.Fetch(); got != 5 {
		t.Fatalf("Fetch() with unknown easing = %v, want linear midpoint 5", got)
	}
}

func TestZeroDurationTweenIsImmediatelyAtDest(t *testing.T) {
	tw := NewTweened[scalar](0, 10, 0, "linear")
	if got := tw.Fetch(); got != 10 {
		t.Fatalf("Fetch() of zero-duration tween = %v, want 10", got)
	}
}

func TestIdentityNeverMoves(t *testing.T) {
	tw := Identity[scalar](7)
	var got scalar
	got, tw = tw.FetchAndTick(5)
	if got != 7 {
		t.Fatalf("Identity FetchAndTick = %v, want 7", got)
	}
}

func TestEaseOutQuadMidpointIsAboveLinear(t *testing.T) {
	tw := NewTweened[scalar](0, 10, 4, "ease_out_quad")
	_, tw = tw.FetchAndTick(2)
	got := tw.Fetch()
	if got <= 5 {
		t.Fatalf("ease_out_quad midpoint = %v, want > 5 (linear midpoint)", got)
	}
}

func TestFrameTransformLerpInterpolatesContinuousFields(t *testing.T) {
	a := mixer.IdentityTransform
	b := mixer.IdentityTransform
	b.Opacity = 0
	b.FillScaleX = 2

	mid := a.Lerp(b, 0.5)
	if math.Abs(mid.Opacity-0.5) > 1e-9 {
		t.Fatalf("Opacity at frac=0.5 = %v, want 0.5", mid.Opacity)
	}
	if math.Abs(mid.FillScaleX-1.5) > 1e-9 {
		t.Fatalf("FillScaleX at frac=0.5 = %v, want 1.5", mid.FillScaleX)
	}
}

func TestFrameTransformLerpHoldsDiscreteFieldsAtSource(t *testing.T) {
	a := mixer.IdentityTransform
	a.IsKey = true
	a.Field = mixer.FieldUpper
	b := mixer.IdentityTransform
	b.IsKey = false
	b.Field = mixer.FieldLower

	mid := a.Lerp(b, 0.5)
	if !mid.IsKey {
		t.Fatalf("IsKey = false mid-tween, want held at source value true")
	}
	if mid.Field != mixer.FieldUpper {
		t.Fatalf("Field = %v mid-tween, want held at source value FieldUpper", mid.Field)
	}
}

func TestFrameTransformTweenSnapsDiscreteFieldsExactlyAtEnd(t *testing.T) {
	a := mixer.IdentityTransform
	a.Field = mixer.FieldUpper
	b := mixer.IdentityTransform
	b.Field = mixer.FieldLower

	tw := NewTweened(a, b, 4, "linear")
	var got mixer.FrameTransform
	got, tw = tw.FetchAndTick(4)
	if got.Field != mixer.FieldLower {
		t.Fatalf("Field at tween end = %v, want dest FieldLower", got.Field)
	}
}
