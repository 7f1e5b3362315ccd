package lottie

import (
	"math"
	"testing"

	"github.com/kinescope-engine/kinescope"
)

func TestShapePropertyEvalHoldsStaticValue(t *testing.T) {
	static := BezierShapeValue{Vertices: []BezierVertex{{Point: kinescope.Vec2{X: 1, Y: 2}}}}
	sp := &ShapeProperty{Static: static}
	got := sp.Eval(42)
	if len(got.Vertices) != 1 || got.Vertices[0].Point != (kinescope.Vec2{X: 1, Y: 2}) {
		t.Errorf("Eval on static property = %+v, want %+v", got, static)
	}
}

func TestShapePropertyEvalMorphsMatchingVertexCounts(t *testing.T) {
	a := BezierShapeValue{Vertices: []BezierVertex{{Point: kinescope.Vec2{X: 0, Y: 0}}}}
	b := BezierShapeValue{Vertices: []BezierVertex{{Point: kinescope.Vec2{X: 10, Y: 0}}}}
	sp := &ShapeProperty{
		Animated: true,
		Keyframes: []shapePathKeyframe{
			{Frame: 0, Start: a, End: b, HasEnd: true, Easing: kinescope.LinearEasing},
			{Frame: 10, Start: b},
		},
	}
	mid := sp.Eval(5)
	if math.Abs(mid.Vertices[0].Point.X-5) > 1e-9 {
		t.Errorf("morphed X at midpoint = %v, want 5", mid.Vertices[0].Point.X)
	}
}

func TestShapePropertyEvalHoldsOnVertexCountMismatch(t *testing.T) {
	a := BezierShapeValue{Vertices: []BezierVertex{{Point: kinescope.Vec2{X: 0, Y: 0}}}}
	b := BezierShapeValue{Vertices: []BezierVertex{
		{Point: kinescope.Vec2{X: 10, Y: 0}},
		{Point: kinescope.Vec2{X: 20, Y: 0}},
	}}
	sp := &ShapeProperty{
		Animated: true,
		Keyframes: []shapePathKeyframe{
			{Frame: 0, Start: a, End: b, HasEnd: true, Easing: kinescope.LinearEasing},
			{Frame: 10, Start: b},
		},
	}
	mid := sp.Eval(5)
	if len(mid.Vertices) != len(a.Vertices) {
		t.Errorf("mismatched vertex counts should hold at the start shape, got %d vertices want %d", len(mid.Vertices), len(a.Vertices))
	}
}

func TestToBezierPathOpenVsClosed(t *testing.T) {
	v := BezierShapeValue{
		Vertices: []BezierVertex{
			{Point: kinescope.Vec2{X: 0, Y: 0}},
			{Point: kinescope.Vec2{X: 10, Y: 0}},
			{Point: kinescope.Vec2{X: 10, Y: 10}},
		},
		Closed: false,
	}
	open := v.ToBezierPath()
	// 3 vertices open: 1 MoveTo + 2 CubicTo segments, no Close.
	cubics := 0
	for _, op := range open.Ops {
		if op.Kind == kinescope.PathCubicTo {
			cubics++
		}
		if op.Kind == kinescope.PathClose {
			t.Error("open shape should not emit a Close op")
		}
	}
	if cubics != 2 {
		t.Errorf("open 3-vertex path should have 2 cubic segments, got %d", cubics)
	}

	v.Closed = true
	closed := v.ToBezierPath()
	cubics = 0
	sawClose := false
	for _, op := range closed.Ops {
		if op.Kind == kinescope.PathCubicTo {
			cubics++
		}
		if op.Kind == kinescope.PathClose {
			sawClose = true
		}
	}
	if cubics != 3 {
		t.Errorf("closed 3-vertex path should have 3 cubic segments (one wrapping around), got %d", cubics)
	}
	if !sawClose {
		t.Error("closed shape should emit a Close op")
	}
}

func TestFlattenCubicStraightLineNeedsNoSubdivision(t *testing.T) {
	p0 := kinescope.Vec2{X: 0, Y: 0}
	p1 := kinescope.Vec2{X: 10, Y: 0}
	// Control points collinear with the endpoints: already flat.
	c1 := kinescope.Vec2{X: 3, Y: 0}
	c2 := kinescope.Vec2{X: 7, Y: 0}
	pts := flattenCubic(p0, c1, c2, p1, 0.1)
	if len(pts) != 1 {
		t.Errorf("a collinear cubic should flatten to a single segment, got %d points", len(pts))
	}
}

func TestFlattenCubicCurvedSegmentSubdivides(t *testing.T) {
	p0 := kinescope.Vec2{X: 0, Y: 0}
	c1 := kinescope.Vec2{X: 0, Y: 50}
	c2 := kinescope.Vec2{X: 100, Y: 50}
	p1 := kinescope.Vec2{X: 100, Y: 0}
	pts := flattenCubic(p0, c1, c2, p1, 0.5)
	if len(pts) < 2 {
		t.Errorf("a sharply curved cubic should subdivide into multiple points, got %d", len(pts))
	}
}
