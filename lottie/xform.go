package lottie

import (
	"math"

	"github.com/kinescope-engine/kinescope"
)

// affine mirrors the host package's [6]float64 2D matrix layout
// ([a, b, c, d, tx, ty]); duplicated here because kinescope's own compose
// logic is unexported. Kept minimal: only what the shape/layer/repeater
// transforms need.
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

func mul(p, c affine) affine {
	return affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

func translate(x, y float64) affine { return affine{1, 0, 0, 1, x, y} }
func scaleM(sx, sy float64) affine  { return affine{sx, 0, 0, sy, 0, 0} }

func rotateCW(degrees float64) affine {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return affine{cos, sin, -sin, cos, 0, 0}
}

// skewM builds a shear along an arbitrary axis: rotate the axis onto x,
// shear horizontally by skewDeg, rotate back. Matches After Effects'
// skew/skew-axis pair (`sk`/`sa`).
func skewM(skewDeg, axisDeg float64) affine {
	shear := affine{1, 0, math.Tan(skewDeg * math.Pi / 180), 1, 0, 0}
	toAxis := rotateCW(-axisDeg)
	fromAxis := rotateCW(axisDeg)
	return mul(fromAxis, mul(shear, toAxis))
}

func apply(m affine, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// applyLinear applies only the linear (rotation/scale) part, for tangent
// offsets which must rotate and scale but never translate.
func applyLinear(m affine, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y, m[1]*x + m[3]*y
}

// transformMatrix resolves a LayerTransform at frame into an affine,
// following the same translate(pos)·translate(-anchor)·rotate·skew·scale·
// translate(anchor) order as kinescope.Transform.compose. fps/exprs route
// rotation (the property expressions most commonly drive, e.g. a
// continuous spin) through ExprEngine when the layer carries one and
// exprs is non-nil; exprs may be nil, skipping expression evaluation
// entirely for the common case where a composition uses none. autoOrient
// replaces the explicit rotation with the motion path's tangent angle,
// for layers with "ao":1 (only meaningful at the per-layer level, never
// for a shape group's own `ks`).
func transformMatrix(t *LayerTransform, frame, fps float64, exprs *ExprEngine, autoOrient bool) affine {
	if t == nil {
		return identity
	}
	anchor := kinescope.Vec2{}
	if t.Anchor != nil {
		anchor = t.Anchor.ToVec2().Eval(frame)
	}
	pos := kinescope.Vec2{}
	if t.Position != nil {
		pos = t.Position.ToVec2().Eval(frame)
	} else if t.PositionX != nil && t.PositionY != nil {
		pos = kinescope.Vec2{
			X: float64(t.PositionX.ToScalar().Eval(frame)),
			Y: float64(t.PositionY.ToScalar().Eval(frame)),
		}
	}
	scale := kinescope.Vec2{X: 100, Y: 100}
	if t.Scale != nil {
		scale = t.Scale.ToVec2().Eval(frame)
	}
	rotation := 0.0
	if t.Rotation != nil {
		rotation = evalScalarWithExpr(t.Rotation, frame, fps, exprs)
	}
	if autoOrient {
		rotation += autoOrientAngle(t, frame)
	}
	skew, skewAxis := 0.0, 0.0
	if t.Skew != nil {
		skew = evalScalarWithExpr(t.Skew, frame, fps, exprs)
	}
	if t.SkewAxis != nil {
		skewAxis = evalScalarWithExpr(t.SkewAxis, frame, fps, exprs)
	}

	m := translate(anchor.X, anchor.Y)
	m = mul(scaleM(scale.X/100, scale.Y/100), m)
	if skew != 0 {
		m = mul(skewM(skew, skewAxis), m)
	}
	m = mul(rotateCW(rotation), m)
	m = mul(translate(-anchor.X, -anchor.Y), m)
	m = mul(translate(pos.X, pos.Y), m)
	return m
}

// autoOrientAngle derives the layer's z-rotation (in degrees) from the
// tangent of its position path at frame, via a central difference. Static
// or momentarily-stationary positions contribute no rotation.
func autoOrientAngle(t *LayerTransform, frame float64) float64 {
	pos := func(f float64) kinescope.Vec2 {
		switch {
		case t.Position != nil:
			return t.Position.ToVec2().Eval(f)
		case t.PositionX != nil && t.PositionY != nil:
			return kinescope.Vec2{
				X: float64(t.PositionX.ToScalar().Eval(f)),
				Y: float64(t.PositionY.ToScalar().Eval(f)),
			}
		default:
			return kinescope.Vec2{}
		}
	}
	const eps = 0.5
	a, b := pos(frame-eps), pos(frame+eps)
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// opacityOf resolves a LayerTransform's opacity (0..1), defaulting to 1.
func opacityOf(t *LayerTransform, frame, fps float64, exprs *ExprEngine) float64 {
	if t == nil || t.Opacity == nil {
		return 1
	}
	return evalScalarWithExpr(t.Opacity, frame, fps, exprs) / 100
}

// evalScalarWithExpr resolves p's keyframed value at frame, running its
// Bodymovin expression (if any) through exprs when exprs is non-nil.
func evalScalarWithExpr(p *Property, frame, fps float64, exprs *ExprEngine) float64 {
	kf := p.ToScalar()
	base := func(f float64) float64 { return float64(kf.Eval(f)) }
	if p != nil && p.Expression != "" && exprs != nil {
		return exprs.EvalScalar(p.Expression, frame, fps, base)
	}
	return base(frame)
}

func transformShapeValue(v BezierShapeValue, m affine) BezierShapeValue {
	out := BezierShapeValue{Closed: v.Closed, Vertices: make([]BezierVertex, len(v.Vertices))}
	for i, vx := range v.Vertices {
		px, py := apply(m, vx.Point.X, vx.Point.Y)
		ix, iy := applyLinear(m, vx.InTangent.X, vx.InTangent.Y)
		ox, oy := applyLinear(m, vx.OutTangent.X, vx.OutTangent.Y)
		out.Vertices[i] = BezierVertex{
			Point:      kinescope.Vec2{X: px, Y: py},
			InTangent:  kinescope.Vec2{X: ix, Y: iy},
			OutTangent: kinescope.Vec2{X: ox, Y: oy},
		}
	}
	return out
}

func repeaterMatrix(tr kinescope.Transform) affine {
	m := translate(tr.Anchor.X, tr.Anchor.Y)
	m = mul(scaleM(tr.Scale.X, tr.Scale.Y), m)
	m = mul(rotateCW(tr.Rotation.Z), m)
	m = mul(translate(-tr.Anchor.X, -tr.Anchor.Y), m)
	m = mul(translate(tr.Position.X, tr.Position.Y), m)
	return m
}
