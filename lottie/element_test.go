package lottie

import (
	"testing"

	"github.com/kinescope-engine/kinescope"
)

func TestElementUpdateTracksLocalTime(t *testing.T) {
	e := NewElement(NewPlayer(testAnim(), nil))
	e.Update(1.25, 10)
	if e.localTime != 1.25 {
		t.Errorf("localTime = %v, want 1.25", e.localTime)
	}
}

func TestElementMeasureReportsCompositionNativeSize(t *testing.T) {
	e := NewElement(NewPlayer(testAnim(), nil))
	got := e.Measure(0, 0, false, false)
	if got != (kinescope.Size{Width: 64, Height: 48}) {
		t.Errorf("Measure = %+v, want {64, 48} (the composition's native size)", got)
	}
}

func TestElementRenderZeroSizedRectIsNoop(t *testing.T) {
	e := NewElement(NewPlayer(testAnim(), nil))
	n := &kinescope.Node{LayoutRect: kinescope.Rect{Width: 0, Height: 0}}
	ctx := &kinescope.RenderContext{Node: n, Opacity: 1}
	e.Render(newFakeCanvas(), ctx)
}
