package lottie

import (
	"math"

	"github.com/kinescope-engine/kinescope"
)

const kappa = 0.5522847498

// EllipseShape resolves an `el` shape item to a four-cubic-arc oval
// centered at its position property, sized by its size property.
func EllipseShape(s Shape, frame float64) BezierShapeValue {
	center := s.Position.ToVec2().Eval(frame)
	size := s.Size.ToVec2().Eval(frame)
	rx, ry := size.X/2, size.Y/2
	kx, ky := rx*kappa, ry*kappa

	v := func(px, py, inX, inY, outX, outY float64) BezierVertex {
		return BezierVertex{
			Point:      kinescope.Vec2{X: center.X + px, Y: center.Y + py},
			InTangent:  kinescope.Vec2{X: inX, Y: inY},
			OutTangent: kinescope.Vec2{X: outX, Y: outY},
		}
	}
	return BezierShapeValue{
		Closed: true,
		Vertices: []BezierVertex{
			v(0, -ry, kx, 0, -kx, 0),
			v(rx, 0, 0, -ky, 0, ky),
			v(0, ry, -kx, 0, kx, 0),
			v(-rx, 0, 0, ky, 0, -ky),
		},
	}
}

// RectShape resolves an `rc` shape item to a (possibly rounded) rectangle
// path centered at its position property.
func RectShape(s Shape, frame float64) BezierShapeValue {
	center := s.Position.ToVec2().Eval(frame)
	size := s.Size.ToVec2().Eval(frame)
	hw, hh := size.X/2, size.Y/2
	r := 0.0
	if s.Roundness != nil {
		r = float64(s.Roundness.ToScalar().Eval(frame))
	}
	r = math.Min(r, math.Min(hw, hh))
	if r <= 0 {
		p := func(x, y float64) BezierVertex {
			return BezierVertex{Point: kinescope.Vec2{X: center.X + x, Y: center.Y + y}}
		}
		return BezierShapeValue{Closed: true, Vertices: []BezierVertex{
			p(-hw, -hh), p(hw, -hh), p(hw, hh), p(-hw, hh),
		}}
	}
	k := r * kappa
	v := func(px, py, inX, inY, outX, outY float64) BezierVertex {
		return BezierVertex{
			Point:      kinescope.Vec2{X: center.X + px, Y: center.Y + py},
			InTangent:  kinescope.Vec2{X: inX, Y: inY},
			OutTangent: kinescope.Vec2{X: outX, Y: outY},
		}
	}
	return BezierShapeValue{
		Closed: true,
		Vertices: []BezierVertex{
			v(-hw+r, -hh, -k, 0, 0, 0),
			v(hw-r, -hh, 0, 0, k, 0),
			v(hw, -hh+r, 0, -k, 0, 0),
			v(hw, hh-r, 0, 0, 0, k),
			v(hw-r, hh, k, 0, 0, 0),
			v(-hw+r, hh, 0, 0, -k, 0),
			v(-hw, hh-r, 0, k, 0, 0),
			v(-hw, -hh+r, 0, 0, 0, -k),
		},
	}
}

// StarShape resolves an `sr` shape item (star/polygon) to a polyline of
// alternating outer/inner radii around its position property, rotated
// starting straight up as After Effects does.
func StarShape(s Shape, frame float64) BezierShapeValue {
	center := s.Position.ToVec2().Eval(frame)
	points := 5.0
	if s.Points != nil {
		points = float64(s.Points.ToScalar().Eval(frame))
	}
	outerR := float64(s.OuterRadius.ToScalar().Eval(frame))
	rotation := 0.0
	if s.Rotation != nil {
		rotation = float64(s.Rotation.ToScalar().Eval(frame))
	}
	isPolygon := s.StarType == 1
	innerR := outerR * 0.5
	if s.InnerRadius != nil && !isPolygon {
		innerR = float64(s.InnerRadius.ToScalar().Eval(frame))
	}

	n := int(points)
	steps := n
	if !isPolygon {
		steps = n * 2
	}
	verts := make([]BezierVertex, 0, steps)
	angleStep := math.Pi / float64(n)
	if isPolygon {
		angleStep = 2 * math.Pi / float64(n)
	}
	start := degToRadStar(rotation) - math.Pi/2
	for i := 0; i < steps; i++ {
		angle := start + angleStep*float64(i)
		radius := outerR
		if !isPolygon && i%2 == 1 {
			radius = innerR
		}
		sin, cos := math.Sincos(angle)
		verts = append(verts, BezierVertex{Point: kinescope.Vec2{
			X: center.X + radius*cos,
			Y: center.Y + radius*sin,
		}})
	}
	return BezierShapeValue{Closed: true, Vertices: verts}
}

func degToRadStar(d float64) float64 { return d * math.Pi / 180 }
