package kinescope

import "testing"

func TestApplyEffectToWrapsTargetAndPreservesStyle(t *testing.T) {
	a := NewArena()
	parent := a.Create(nil)
	target := a.Create(NewBoxElement())
	if err := a.Attach(parent, target); err != nil {
		t.Fatal(err)
	}
	style := Style{Background: ColorWhite, BorderRadius: 4}
	a.MustGet(target).Style = style

	wrapper, err := ApplyEffectTo(a, target, NewBlurFilter(2))
	if err != nil {
		t.Fatal(err)
	}
	if a.Parent(wrapper) != parent {
		t.Error("the wrapper should take the target's place under its original parent")
	}
	if a.Parent(target) != wrapper {
		t.Error("the target should be reparented as the wrapper's sole child")
	}
	wn := a.MustGet(wrapper)
	if wn.Style != style {
		t.Errorf("wrapper should inherit the target's original Style, got %+v want %+v", wn.Style, style)
	}
	tn := a.MustGet(target)
	if tn.Style.Width != Pct(100) || tn.Style.Height != Pct(100) {
		t.Errorf("target should be forced to fill the wrapper at 100%%/100%%, got width=%+v height=%+v", tn.Style.Width, tn.Style.Height)
	}
}

func TestApplyEffectToInvalidHandleReturnsError(t *testing.T) {
	a := NewArena()
	_, err := ApplyEffectTo(a, NodeHandle(999), NewBlurFilter(1))
	if err == nil {
		t.Error("ApplyEffectTo with an invalid target handle should return an error")
	}
}

func TestEffectElementOwnsChildRendering(t *testing.T) {
	e := NewEffectElement()
	if !e.OwnsChildRendering() {
		t.Error("EffectElement should report OwnsChildRendering = true so the director skips its normal child walk")
	}
}

func TestEffectElementRenderNoChildIsNoop(t *testing.T) {
	a := NewArena()
	h := a.Create(NewEffectElement())
	n := a.MustGet(h)
	n.LayoutRect = Rect{Width: 10, Height: 10}
	canvas := NewCanvas(nil, &renderTexturePool{})
	ctx := &RenderContext{Node: n, Arena: a, Opacity: 1}
	n.Element.(*EffectElement).Render(canvas, ctx)
}
