package kinescope

import (
	"math"
	"testing"
)

func TestKeyframedEvalHoldsBeforeFirstAndAfterLast(t *testing.T) {
	k := &Keyframed[Float64]{Keyframes: []Keyframe[Float64]{
		{Frame: 10, ValueStart: 1},
		{Frame: 20, ValueStart: 2},
	}}
	if v := k.Eval(0); v != 1 {
		t.Errorf("before first keyframe: got %v, want 1", v)
	}
	if v := k.Eval(30); v != 2 {
		t.Errorf("after last keyframe: got %v, want 2", v)
	}
}

func TestKeyframedEvalEndValuePolicyPrefersNextStart(t *testing.T) {
	// Per the end-value policy, a segment's end is the NEXT keyframe's
	// ValueStart, even when the current keyframe carries its own ValueEnd.
	k := &Keyframed[Float64]{Keyframes: []Keyframe[Float64]{
		{Frame: 0, ValueStart: 0, ValueEnd: 100, ValueEndSet: true, Easing: LinearEasing},
		{Frame: 10, ValueStart: 5},
	}}
	got := k.Eval(5)
	if math.Abs(float64(got)-2.5) > 1e-9 {
		t.Errorf("segment end should come from next keyframe's ValueStart (5), got %v", got)
	}
}

func TestKeyframedEvalTrailingValueEndFallback(t *testing.T) {
	// Only at the very last keyframe does ValueEnd (if set) apply.
	k := &Keyframed[Float64]{Keyframes: []Keyframe[Float64]{
		{Frame: 0, ValueStart: 0, ValueEnd: 9, ValueEndSet: true},
	}}
	if v := k.Eval(100); v != 9 {
		t.Errorf("trailing ValueEnd fallback: got %v, want 9", v)
	}
}

func TestKeyframedEvalHoldEasingFreezesValue(t *testing.T) {
	k := &Keyframed[Float64]{Keyframes: []Keyframe[Float64]{
		{Frame: 0, ValueStart: 1, Easing: HoldEasing},
		{Frame: 10, ValueStart: 2},
	}}
	if v := k.Eval(9); v != 1 {
		t.Errorf("hold segment should stay at start value, got %v", v)
	}
}

func TestKeyframedEvalLoopWrapsNegativeFrames(t *testing.T) {
	k := &Keyframed[Float64]{
		Keyframes: []Keyframe[Float64]{
			{Frame: 0, ValueStart: 0},
			{Frame: 10, ValueStart: 10},
		},
		Loop:      true,
		LoopStart: 0,
		LoopEnd:   10,
	}
	// -1 should wrap to 9 inside [0,10), matching Euclidean modulo.
	got := k.Eval(-1)
	if math.Abs(float64(got)-9) > 1e-9 {
		t.Errorf("looped negative frame: got %v, want 9", got)
	}
}

func TestEuclideanModAlwaysNonNegative(t *testing.T) {
	cases := []struct{ a, m, want float64 }{
		{-1, 10, 9},
		{-11, 10, 9},
		{5, 10, 5},
		{0, 10, 0},
	}
	for _, c := range cases {
		if got := euclideanMod(c.a, c.m); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("euclideanMod(%v, %v) = %v, want %v", c.a, c.m, got, c.want)
		}
	}
}

func TestSpringSettlesAtTarget(t *testing.T) {
	s := &Spring[Float64]{Stiffness: 200, Damping: 25, Mass: 1, From: 0, To: 10}
	v := s.Eval(5) // plenty of time for a well-damped spring to settle
	if math.Abs(float64(v)-10) > 0.01 {
		t.Errorf("spring should settle near target 10, got %v", v)
	}
}

func TestSpringRestartsOnTimeRewind(t *testing.T) {
	s := &Spring[Float64]{Stiffness: 200, Damping: 25, Mass: 1, From: 0, To: 10}
	s.Eval(5)
	v := s.Eval(0)
	if v != 0 {
		t.Errorf("spring should restart from From on rewind, got %v", v)
	}
}

func TestColorLerpTo(t *testing.T) {
	a := Color{R: 0, G: 0, B: 0, A: 0}
	b := Color{R: 1, G: 1, B: 1, A: 1}
	mid := a.LerpTo(b, 0.5)
	if math.Abs(mid.R-0.5) > 1e-9 || math.Abs(mid.A-0.5) > 1e-9 {
		t.Errorf("color lerp midpoint = %+v, want all 0.5", mid)
	}
}
