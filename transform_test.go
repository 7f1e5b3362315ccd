package kinescope

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDefaultTransformIsIdentity(t *testing.T) {
	tr := DefaultTransform()
	m := tr.compose()
	if m != identityAffine {
		t.Errorf("DefaultTransform().compose() = %v, want identity", m)
	}
}

func TestRotationMatrixCWSense(t *testing.T) {
	// spec §8's rotation-sense test: a 90-degree clockwise rotation sends
	// local (1, 0) to screen (0, 1), since Y increases downward here.
	m := rotationMatrixCW(90)
	x, y := transformPoint(m, 1, 0)
	if !almostEqual(x, 0) || !almostEqual(y, 1) {
		t.Errorf("rotationMatrixCW(90) * (1,0) = (%v, %v), want (0, 1)", x, y)
	}
}

func TestTransformComposePositionOnly(t *testing.T) {
	tr := DefaultTransform()
	tr.Position = Vec2{X: 10, Y: 20}
	m := tr.compose()
	x, y := transformPoint(m, 0, 0)
	if !almostEqual(x, 10) || !almostEqual(y, 20) {
		t.Errorf("origin under pure translation = (%v, %v), want (10, 20)", x, y)
	}
}

func TestTransformComposeAnchorPivotsInPlace(t *testing.T) {
	// Rotating 180 degrees about a non-origin anchor should leave the
	// anchor point itself fixed in local space once position is zero.
	tr := DefaultTransform()
	tr.Anchor = Vec2{X: 5, Y: 5}
	tr.Rotation = Vec3{Z: 180}
	m := tr.compose()
	x, y := transformPoint(m, 5, 5)
	if !almostEqual(x, 5) || !almostEqual(y, 5) {
		t.Errorf("anchor point under rotation-about-anchor = (%v, %v), want (5, 5)", x, y)
	}
}

func TestInvertAffineRoundTrips(t *testing.T) {
	tr := DefaultTransform()
	tr.Position = Vec2{X: 12, Y: -7}
	tr.Rotation = Vec3{Z: 37}
	tr.Scale = Vec2{X: 2, Y: 0.5}
	m := tr.compose()
	inv := invertAffine(m)

	x, y := transformPoint(m, 3, 4)
	bx, by := transformPoint(inv, x, y)
	if !almostEqual(bx, 3) || !almostEqual(by, 4) {
		t.Errorf("round trip through inverse = (%v, %v), want (3, 4)", bx, by)
	}
}

func TestInvertAffineSingularFallsBackToIdentity(t *testing.T) {
	singular := [6]float64{0, 0, 0, 0, 1, 1}
	if got := invertAffine(singular); got != identityAffine {
		t.Errorf("invertAffine(singular) = %v, want identity", got)
	}
}

func TestSkewMatrixZeroIsIdentity(t *testing.T) {
	if got := skewMatrix(0, 45); got != identityAffine {
		t.Errorf("skewMatrix(0, axis) = %v, want identity", got)
	}
}
