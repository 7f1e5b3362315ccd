package lottie

import (
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kinescope-engine/kinescope"
)

// fakeCanvas is a Canvas test double recording fill/stroke calls without
// touching a real GPU surface, for asserting on renderShapeItems' draw
// order and paint resolution.
type fakeCanvas struct {
	xform     [6]float64
	fillCalls []kinescope.Paint
	strokeCalls []kinescope.Paint
	saves     int
	restores  int
}

func newFakeCanvas() *fakeCanvas { return &fakeCanvas{xform: [6]float64{1, 0, 0, 1, 0, 0}} }

func (c *fakeCanvas) Save()                      { c.saves++ }
func (c *fakeCanvas) Restore()                   { c.restores++ }
func (c *fakeCanvas) Concat(m [6]float64)        { c.xform = m }
func (c *fakeCanvas) Transform() [6]float64      { return c.xform }
func (c *fakeCanvas) Size() (int, int)           { return 100, 100 }
func (c *fakeCanvas) FillPath(p *kinescope.BezierPath, paint kinescope.Paint, evenOdd bool) {
	c.fillCalls = append(c.fillCalls, paint)
}
func (c *fakeCanvas) StrokePath(p *kinescope.BezierPath, paint kinescope.Paint, stroke kinescope.StrokeStyle) {
	c.strokeCalls = append(c.strokeCalls, paint)
}
func (c *fakeCanvas) DrawImage(img *ebiten.Image, opacity float64, blend kinescope.BlendMode) {}
func (c *fakeCanvas) DrawImageRect(img *ebiten.Image, srcRect image.Rectangle, opacity float64, blend kinescope.BlendMode) {
}
func (c *fakeCanvas) PushLayer(width, height int) kinescope.Canvas { return c }
func (c *fakeCanvas) PopLayer() *ebiten.Image                      { return nil }

func TestRenderShapeItemsFillsAccumulatedPathsOnFillItem(t *testing.T) {
	items := []Shape{
		{Type: ShapeFill, Fill: &FillData{Color: staticProp(1, 0, 0)}},
		{Type: ShapeRect, Position: staticProp(0, 0), Size: staticProp(10, 10)},
	}
	canvas := newFakeCanvas()
	renderShapeItems(canvas, items, 0, 30, nil)
	if len(canvas.fillCalls) != 1 {
		t.Fatalf("FillPath call count = %d, want 1", len(canvas.fillCalls))
	}
	if canvas.fillCalls[0].Solid.R != 1 {
		t.Errorf("fill color = %+v, want red", canvas.fillCalls[0].Solid)
	}
}

func TestRenderShapeItemsHiddenItemIsSkipped(t *testing.T) {
	items := []Shape{
		{Type: ShapeFill, Fill: &FillData{Color: staticProp(1, 0, 0)}},
		{Type: ShapeRect, Hidden: true, Position: staticProp(0, 0), Size: staticProp(10, 10)},
	}
	canvas := newFakeCanvas()
	renderShapeItems(canvas, items, 0, 30, nil)
	if len(canvas.fillCalls) != 0 {
		t.Errorf("a hidden rect should contribute nothing to fill, got %d fill calls", len(canvas.fillCalls))
	}
}

func TestRenderShapeItemsStrokeUsesAccumulatedPaths(t *testing.T) {
	items := []Shape{
		{Type: ShapeStroke, Stroke: &StrokeData{Color: staticProp(0, 1, 0), Width: staticProp(2)}},
		{Type: ShapeEllipse, Position: staticProp(0, 0), Size: staticProp(10, 10)},
	}
	canvas := newFakeCanvas()
	renderShapeItems(canvas, items, 0, 30, nil)
	if len(canvas.strokeCalls) != 1 {
		t.Fatalf("StrokePath call count = %d, want 1", len(canvas.strokeCalls))
	}
}

func TestRenderShapeItemsGroupAppliesOwnTransformAndSavesRestores(t *testing.T) {
	group := Shape{Type: ShapeGroup, Items: []Shape{
		{Type: ShapeTransform, Transform: &LayerTransform{Position: staticProp(5, 5)}},
		{Type: ShapeFill, Fill: &FillData{Color: staticProp(0, 0, 1)}},
		{Type: ShapeRect, Position: staticProp(0, 0), Size: staticProp(4, 4)},
	}}
	canvas := newFakeCanvas()
	renderShapeItems(canvas, []Shape{group}, 0, 30, nil)
	if canvas.saves != 1 || canvas.restores != 1 {
		t.Errorf("a shape group should Save/Restore exactly once, got saves=%d restores=%d", canvas.saves, canvas.restores)
	}
	if len(canvas.fillCalls) != 1 {
		t.Errorf("nested fill inside the group should still fire, got %d calls", len(canvas.fillCalls))
	}
}

func TestFindGroupTransformReturnsNilWhenAbsent(t *testing.T) {
	items := []Shape{{Type: ShapeFill}}
	if got := findGroupTransform(items); got != nil {
		t.Errorf("findGroupTransform with no tr item = %v, want nil", got)
	}
}

func TestFindGroupTransformLocatesTransformItem(t *testing.T) {
	tr := &LayerTransform{Position: staticProp(1, 2)}
	items := []Shape{{Type: ShapeFill}, {Type: ShapeTransform, Transform: tr}}
	if got := findGroupTransform(items); got != tr {
		t.Error("findGroupTransform should return the group's own tr item")
	}
}

func TestMapShapesAppliesFunctionToEachElement(t *testing.T) {
	in := []BezierShapeValue{{Closed: false}, {Closed: false}}
	out := mapShapes(in, func(v BezierShapeValue) BezierShapeValue { v.Closed = true; return v })
	for i, v := range out {
		if !v.Closed {
			t.Errorf("mapShapes output[%d].Closed = false, want true", i)
		}
	}
}

func TestLayerLocalFrameOutsideInOutPointIsInvisible(t *testing.T) {
	l := Layer{InPoint: 10, OutPoint: 20, StartTime: 0, TimeStretch: 1}
	if _, visible := layerLocalFrame(l, 5); visible {
		t.Error("a frame before InPoint should report visible=false")
	}
	if _, visible := layerLocalFrame(l, 20); visible {
		t.Error("a frame at or after OutPoint should report visible=false")
	}
}

func TestLayerLocalFrameAppliesStartTimeAndStretch(t *testing.T) {
	l := Layer{InPoint: 0, OutPoint: 100, StartTime: 10, TimeStretch: 2}
	local, visible := layerLocalFrame(l, 30)
	if !visible {
		t.Fatal("frame within [InPoint,OutPoint) should be visible")
	}
	if local != 10 {
		t.Errorf("local = %v, want (30-10)/2 = 10", local)
	}
}

func TestLayerLocalFrameDefaultsZeroStretchToOne(t *testing.T) {
	l := Layer{InPoint: 0, OutPoint: 100, StartTime: 0, TimeStretch: 0}
	local, _ := layerLocalFrame(l, 40)
	if local != 40 {
		t.Errorf("local = %v, want 40 (stretch 0 should default to 1)", local)
	}
}
