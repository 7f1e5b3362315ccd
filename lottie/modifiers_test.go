package lottie

import (
	"math"
	"testing"

	"github.com/kinescope-engine/kinescope"
)

func TestEuclideanModWrapsNegativeIntoPositiveRange(t *testing.T) {
	if got := euclideanMod(-0.25, 1); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("euclideanMod(-0.25, 1) = %v, want 0.75", got)
	}
	if got := euclideanMod(0.5, 1); got != 0.5 {
		t.Errorf("euclideanMod(0.5, 1) = %v, want 0.5", got)
	}
}

func TestTrimPathsDataWindowAppliesOffsetAndWraps(t *testing.T) {
	trim := TrimPathsData{Start: staticProp(0), End: staticProp(50), Offset: staticProp(360)}
	start, end := trim.window(0)
	if math.Abs(start-0) > 1e-9 || math.Abs(end-0.5) > 1e-9 {
		t.Errorf("window with a full-turn offset should be unchanged, got (%v, %v) want (0, 0.5)", start, end)
	}
}

func square() BezierShapeValue {
	return BezierShapeValue{Closed: true, Vertices: []BezierVertex{
		{Point: kinescope.Vec2{X: 0, Y: 0}},
		{Point: kinescope.Vec2{X: 10, Y: 0}},
		{Point: kinescope.Vec2{X: 10, Y: 10}},
		{Point: kinescope.Vec2{X: 0, Y: 10}},
	}}
}

func TestApplyTrimFullRangeKeepsEntirePath(t *testing.T) {
	p := ApplyTrim(square(), 0, 1)
	if len(p.Ops) == 0 {
		t.Fatal("trimming [0,1] should emit a non-empty path")
	}
}

func TestApplyTrimEmptyRangeProducesNoPath(t *testing.T) {
	p := ApplyTrim(square(), 0.3, 0.3)
	if len(p.Ops) != 0 {
		t.Errorf("trimming an empty [start,end) window should emit no ops, got %d", len(p.Ops))
	}
}

func TestApplyTrimWraparoundSplitsIntoTwoSpans(t *testing.T) {
	p := ApplyTrim(square(), 0.9, 0.1)
	moveTos := 0
	for _, op := range p.Ops {
		if op.Kind == kinescope.PathMoveTo {
			moveTos++
		}
	}
	if moveTos < 2 {
		t.Errorf("a wraparound trim should emit at least two disjoint spans (MoveTos), got %d", moveTos)
	}
}

func TestRepeaterDataInstancesZeroCopiesReturnsNil(t *testing.T) {
	r := RepeaterData{Copies: staticProp(0)}
	if got := r.Instances(0); got != nil {
		t.Errorf("Instances with 0 copies = %v, want nil", got)
	}
}

func TestRepeaterDataInstancesScalesPositionByIndex(t *testing.T) {
	r := RepeaterData{
		Copies:      staticProp(3),
		AnchorPoint: staticProp(0, 0),
		Position:    staticProp(10, 0),
		Scale:       staticProp(100, 100),
		Rotation:    staticProp(0),
	}
	instances := r.Instances(0)
	if len(instances) != 3 {
		t.Fatalf("len(instances) = %d, want 3", len(instances))
	}
	if instances[0].Position.X != 0 {
		t.Errorf("copy 0 position.X = %v, want 0", instances[0].Position.X)
	}
	if instances[2].Position.X != 20 {
		t.Errorf("copy 2 position.X = %v, want 20 (offset*index)", instances[2].Position.X)
	}
}

func TestWiggleParamsEvalIsDeterministic(t *testing.T) {
	w := WiggleParams{Seed: 42, Frequency: 2, Amplitude: 5}
	a := w.Eval(1.5, 3)
	b := w.Eval(1.5, 3)
	if a != b {
		t.Errorf("Eval should be deterministic for the same (seed, t, index), got %+v vs %+v", a, b)
	}
	if math.Abs(a.X) > 5+1e-9 || math.Abs(a.Y) > 5+1e-9 {
		t.Errorf("Eval output %+v should stay within +/- Amplitude=5", a)
	}
}

func TestRoundCornersDataApplyZeroRadiusIsNoop(t *testing.T) {
	r := RoundCornersData{Radius: staticProp(0)}
	s := square()
	got := r.Apply(s, 0)
	if len(got.Vertices) != len(s.Vertices) {
		t.Error("zero radius should leave the shape unchanged")
	}
}

func TestRoundCornersDataApplyClampsToHalfShortestEdge(t *testing.T) {
	r := RoundCornersData{Radius: staticProp(1000)}
	got := r.Apply(square(), 0)
	for _, v := range got.Vertices {
		if v.Point.X < -1e-6 || v.Point.X > 10+1e-6 || v.Point.Y < -1e-6 || v.Point.Y > 10+1e-6 {
			t.Errorf("rounded vertex %+v escapes the original square bounds even with a huge radius", v.Point)
		}
	}
}

func TestPuckerBloatDataApplyZeroAmountIsNoop(t *testing.T) {
	pb := PuckerBloatData{Amount: staticProp(0)}
	s := square()
	got := pb.Apply(s, 0)
	if len(got.Vertices) != len(s.Vertices) || got.Vertices[0].Point != s.Vertices[0].Point {
		t.Error("zero amount should return the original shape value unmodified")
	}
}

func TestPuckerBloatDataApplyPuckerMovesTowardCentroid(t *testing.T) {
	pb := PuckerBloatData{Amount: staticProp(-50)}
	got := pb.Apply(square(), 0)
	// centroid of the square is (5,5); puckering by -50% should pull every
	// vertex halfway toward it.
	if math.Abs(got.Vertices[0].Point.X-2.5) > 1e-9 || math.Abs(got.Vertices[0].Point.Y-2.5) > 1e-9 {
		t.Errorf("puckered vertex[0] = %+v, want {2.5, 2.5}", got.Vertices[0].Point)
	}
}

func TestTwistDataApplyZeroAngleIsNoop(t *testing.T) {
	tw := TwistData{Angle: staticProp(0)}
	s := square()
	got := tw.Apply(s, 0)
	if len(got.Vertices) != len(s.Vertices) || got.Vertices[0].Point != s.Vertices[0].Point {
		t.Error("zero angle should return the original shape value unmodified")
	}
}

func TestTwistDataApplyRotatesFarthestVertexByFullAngle(t *testing.T) {
	tw := TwistData{Angle: staticProp(90), Center: staticProp(0, 0)}
	s := BezierShapeValue{Vertices: []BezierVertex{{Point: kinescope.Vec2{X: 10, Y: 0}}}}
	got := tw.Apply(s, 0)
	if math.Abs(got.Vertices[0].Point.X) > 1e-6 || math.Abs(got.Vertices[0].Point.Y-10) > 1e-6 {
		t.Errorf("the single (and therefore farthest) vertex should rotate the full 90 degrees, got %+v", got.Vertices[0].Point)
	}
}

func TestMergePathsAddConcatenatesSubpaths(t *testing.T) {
	a := BezierShapeValue{Vertices: []BezierVertex{{Point: kinescope.Vec2{X: 0, Y: 0}}, {Point: kinescope.Vec2{X: 1, Y: 0}}}}
	b := BezierShapeValue{Vertices: []BezierVertex{{Point: kinescope.Vec2{X: 5, Y: 5}}, {Point: kinescope.Vec2{X: 6, Y: 5}}}}
	merged := MergePaths(MergeAdd, []BezierShapeValue{a, b})
	wantOps := len(a.ToBezierPath().Ops) + len(b.ToBezierPath().Ops)
	if len(merged.Ops) != wantOps {
		t.Errorf("len(merged.Ops) = %d, want %d (concatenation of both subpaths)", len(merged.Ops), wantOps)
	}
}
