package kinescope

import "math"

// identityAffine is the 2D identity matrix [a, b, c, d, tx, ty].
var identityAffine = [6]float64{1, 0, 0, 1, 0, 0}

// Transform holds a node's local transform properties (spec §3
// "Transform"). Rotation is clockwise-positive in degrees.
type Transform struct {
	Position Vec2
	Anchor   Vec2 // pivot point, in absolute local pixels
	Rotation Vec3 // degrees; only Z affects 2D rendering, X/Y are carried
	// for Lottie 3D layers' auto-orient and camera computations.
	Scale    Vec2 // 1.0 = no scaling (100%)
	Skew     float64
	SkewAxis float64 // degrees
	Opacity  float64 // 0..1
}

// DefaultTransform returns the identity transform (anchor at origin,
// scale 1, opacity 1).
func DefaultTransform() Transform {
	return Transform{Scale: Vec2{1, 1}, Opacity: 1}
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func translationMatrix(x, y float64) [6]float64 { return [6]float64{1, 0, 0, 1, x, y} }
func scaleMatrix(sx, sy float64) [6]float64      { return [6]float64{sx, 0, 0, sy, 0, 0} }

// rotationMatrixCW builds the 2D rotation matrix for a clockwise-positive
// angle in degrees. Because the engine's coordinate space has Y increasing
// downward, the standard counterclockwise-in-math-space matrix
// [cos, sin, -sin, cos] reads as clockwise on screen for a positive
// angle — e.g. 90° sends local (1, 0) to screen (0, 1), matching spec §8's
// rotation-sense test directly, with no extra sign flip needed.
func rotationMatrixCW(degrees float64) [6]float64 {
	sin, cos := math.Sincos(degToRad(degrees))
	return [6]float64{cos, sin, -sin, cos, 0, 0}
}

// skewMatrix builds the linear (translation-free) shear matrix for a skew
// angle (degrees) along an arbitrary axis (degrees), matching After
// Effects' Skew + Skew Axis property pair: rotate into the axis frame,
// shear along the local X, rotate back.
func skewMatrix(skewDeg, axisDeg float64) [6]float64 {
	if skewDeg == 0 {
		return identityAffine
	}
	tanSk := math.Tan(degToRad(skewDeg))
	shear := [6]float64{1, 0, tanSk, 1, 0, 0}
	toAxis := rotationMatrixCW(-axisDeg)
	fromAxis := rotationMatrixCW(axisDeg)
	return multiplyAffine(fromAxis, multiplyAffine(shear, toAxis))
}

// compose computes the local affine matrix from t, following the exact
// composition order spec §3 prescribes (applied right-to-left to a
// column vector):
//
//	Translate(pos) · Translate(-anchor) · Rotate(-z) · Skew(-sk, sa) · Scale(scale) · Translate(anchor)
//
// Built here via explicit elementary matrices and multiplyAffine, mirroring
// the teacher transform.go's affine-composition technique (generalized from
// its closed-form single-pivot formula to this five-matrix chain).
func (t Transform) compose() [6]float64 {
	m := translationMatrix(t.Anchor.X, t.Anchor.Y)
	m = multiplyAffine(scaleMatrix(t.Scale.X, t.Scale.Y), m)
	m = multiplyAffine(skewMatrix(t.Skew, t.SkewAxis), m)
	m = multiplyAffine(rotationMatrixCW(t.Rotation.Z), m)
	m = multiplyAffine(translationMatrix(-t.Anchor.X, -t.Anchor.Y), m)
	m = multiplyAffine(translationMatrix(t.Position.X, t.Position.Y), m)
	return m
}

// multiplyAffine computes parent * child, matching the teacher's
// transform.go matrix layout: [a c tx; b d ty; 0 0 1].
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine returns m's inverse, or identity if m is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

// transformPoint applies affine matrix m to point (x, y).
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
