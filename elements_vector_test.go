package kinescope

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestVectorElementRenderNilPathIsNoop(t *testing.T) {
	v := NewVectorElement(nil)
	n := newNode(v)
	n.LayoutRect = Rect{Width: 10, Height: 10}
	canvas := NewCanvas(ebiten.NewImage(32, 32), &renderTexturePool{})
	v.Render(canvas, &RenderContext{Node: n, Opacity: 1})
}

func TestVectorElementRenderDrawsFillAndStroke(t *testing.T) {
	p := &BezierPath{}
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	p.Close()

	v := NewVectorElement(p)
	v.Fill = &Paint{Kind: PaintSolid, Solid: ColorWhite}
	v.Stroke = &Paint{Kind: PaintSolid, Solid: ColorMagenta}
	n := newNode(v)
	n.LayoutRect = Rect{Width: 10, Height: 10}
	canvas := NewCanvas(ebiten.NewImage(32, 32), &renderTexturePool{})
	// Should not panic with both Fill and Stroke set and a non-empty path.
	v.Render(canvas, &RenderContext{Node: n, Opacity: 1})
}

func TestEffectiveOpacityDefaultsZeroToOne(t *testing.T) {
	if got := effectiveOpacity(Paint{}); got != 1 {
		t.Errorf("effectiveOpacity(zero Paint) = %v, want 1", got)
	}
	if got := effectiveOpacity(Paint{Opacity: 0.4}); got != 0.4 {
		t.Errorf("effectiveOpacity(0.4) = %v, want 0.4", got)
	}
}
