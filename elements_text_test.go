package kinescope

import (
	"math"
	"testing"
)

func TestGlyphAnimatorAppliesToRange(t *testing.T) {
	g := GlyphAnimator{StartIndex: 2, EndIndex: 5}
	for i := 0; i < 7; i++ {
		want := i >= 2 && i < 5
		if got := g.appliesTo(i); got != want {
			t.Errorf("appliesTo(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestGlyphAnimatorEvalInterpolatesLinearly(t *testing.T) {
	g := GlyphAnimator{
		Duration:    1.0,
		OpacityFrom: 0, OpacityTo: 1,
		ScaleFrom: 1, ScaleTo: 2,
		RotationFrom: 0, RotationTo: 90,
		Easing: LinearEasing,
	}
	opacity, _, scale, rotation := g.eval(0.5)
	if math.Abs(opacity-0.5) > 1e-9 {
		t.Errorf("opacity at midpoint = %v, want 0.5", opacity)
	}
	if math.Abs(scale-1.5) > 1e-9 {
		t.Errorf("scale at midpoint = %v, want 1.5", scale)
	}
	if math.Abs(rotation-45) > 1e-9 {
		t.Errorf("rotation at midpoint = %v, want 45", rotation)
	}
}

func TestGlyphAnimatorEvalClampsBeforeDelayAndAfterEnd(t *testing.T) {
	g := GlyphAnimator{
		Delay: 1.0, Duration: 1.0,
		OpacityFrom: 0, OpacityTo: 1,
		Easing: LinearEasing,
	}
	before, _, _, _ := g.eval(0)
	if before != 0 {
		t.Errorf("eval before Delay = %v, want 0 (clamped to start)", before)
	}
	after, _, _, _ := g.eval(10)
	if after != 1 {
		t.Errorf("eval past Delay+Duration = %v, want 1 (clamped to end)", after)
	}
}

func TestNewTextElementDefaults(t *testing.T) {
	e := NewTextElement("hello", nil)
	if e.Color != ColorWhite {
		t.Errorf("default Color = %+v, want ColorWhite", e.Color)
	}
	if !e.blockDirty {
		t.Error("a freshly built TextElement should start with blockDirty = true")
	}
}

func TestTextElementMeasureNilFaceReturnsZero(t *testing.T) {
	e := NewTextElement("hello", nil)
	got := e.Measure(0, 0, false, false)
	if got != (Size{}) {
		t.Errorf("Measure with nil Face = %+v, want zero Size", got)
	}
}

func TestTextElementPostLayoutNilFaceIsNoop(t *testing.T) {
	e := NewTextElement("hello", nil)
	e.PostLayout(Rect{Width: 100, Height: 100})
	if e.measuredSize != (Size{}) {
		t.Errorf("PostLayout with nil Face should leave measuredSize zero, got %+v", e.measuredSize)
	}
}

func TestTextElementAlignOffset(t *testing.T) {
	e := NewTextElement("hello", nil)
	e.measuredSize = Size{Width: 40, Height: 10}
	rect := Rect{Width: 100, Height: 20}

	e.Align = TextAlignLeft
	if got := e.alignOffset(rect); got != 0 {
		t.Errorf("left align offset = %v, want 0", got)
	}
	e.Align = TextAlignCenter
	if got := e.alignOffset(rect); got != 30 {
		t.Errorf("center align offset = %v, want 30", got)
	}
	e.Align = TextAlignRight
	if got := e.alignOffset(rect); got != 60 {
		t.Errorf("right align offset = %v, want 60", got)
	}
}

func TestTextElementUpdateTracksLocalTime(t *testing.T) {
	e := NewTextElement("hello", nil)
	e.Update(2.5, 10)
	if e.localTime != 2.5 {
		t.Errorf("localTime after Update = %v, want 2.5", e.localTime)
	}
}

func TestTextElementRenderNilFaceIsNoop(t *testing.T) {
	e := NewTextElement("hello", nil)
	n := newNode(e)
	n.LayoutRect = Rect{Width: 10, Height: 10}
	canvas := NewCanvas(nil, nil)
	// Should not panic despite a nil ebiten target: Render returns before
	// touching canvas when Face is nil.
	e.Render(canvas, &RenderContext{Node: n, Opacity: 1})
}
