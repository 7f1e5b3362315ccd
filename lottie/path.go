package lottie

import (
	"encoding/json"
	"math"

	"github.com/kinescope-engine/kinescope"
)

// BezierVertex is one control vertex of a Lottie shape path: a point plus
// its incoming/outgoing tangent handles, stored as offsets relative to
// the vertex (Lottie's native `i`/`o` convention) — spec §4.6 "Path
// morphing & flattening": "ordered vertices {p, in_tangent, out_tangent}".
type BezierVertex struct {
	Point      kinescope.Vec2
	InTangent  kinescope.Vec2
	OutTangent kinescope.Vec2
}

// BezierShapeValue is a full closed-or-open path value, the unit Lottie
// animates for `sh` (path) shape items and `pt` (mask path) properties.
type BezierShapeValue struct {
	Vertices []BezierVertex
	Closed   bool

	// mergedPath holds a pre-flattened path produced by MergePaths. When
	// set, ToBezierPath returns it verbatim instead of walking Vertices.
	mergedPath *kinescope.BezierPath
}

type shapeValueJSON struct {
	In     [][2]float64 `json:"i"`
	Out    [][2]float64 `json:"o"`
	Vertex [][2]float64 `json:"v"`
	Closed BoolInt      `json:"c"`
}

func (v shapeValueJSON) toValue() BezierShapeValue {
	n := len(v.Vertex)
	out := BezierShapeValue{Vertices: make([]BezierVertex, n), Closed: bool(v.Closed)}
	for i := 0; i < n; i++ {
		out.Vertices[i] = BezierVertex{
			Point:      kinescope.Vec2{X: v.Vertex[i][0], Y: v.Vertex[i][1]},
			InTangent:  kinescope.Vec2{X: at2(v.In, i, 0), Y: at2(v.In, i, 1)},
			OutTangent: kinescope.Vec2{X: at2(v.Out, i, 0), Y: at2(v.Out, i, 1)},
		}
	}
	return out
}

func at2(v [][2]float64, i, j int) float64 {
	if i >= len(v) {
		return 0
	}
	return v[i][j]
}

// ShapeProperty is an animatable BezierShapeValue (the `ks` value of a
// `sh` shape item, or a mask's `pt`).
type ShapeProperty struct {
	Animated  bool
	Static    BezierShapeValue
	Keyframes []shapePathKeyframe
}

type shapePathKeyframe struct {
	Frame      float64
	Start, End BezierShapeValue
	HasEnd     bool
	Hold       bool
	Easing     kinescope.Easing
}

type shapePropertyJSON struct {
	Animated BoolInt         `json:"a"`
	Value    json.RawMessage `json:"k"`
}

type shapeKeyframeJSON struct {
	Frame float64          `json:"t"`
	Start []shapeValueJSON `json:"s"`
	End   []shapeValueJSON `json:"e,omitempty"`
	In    *easeHandle      `json:"i,omitempty"`
	Out   *easeHandle      `json:"o,omitempty"`
	Hold  BoolInt          `json:"h,omitempty"`
}

func (sp *ShapeProperty) UnmarshalJSON(data []byte) error {
	var pj shapePropertyJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	sp.Animated = bool(pj.Animated)
	if !sp.Animated {
		var single shapeValueJSON
		if err := json.Unmarshal(pj.Value, &single); err != nil {
			return err
		}
		sp.Static = single.toValue()
		return nil
	}
	var kfs []shapeKeyframeJSON
	if err := json.Unmarshal(pj.Value, &kfs); err != nil {
		return err
	}
	sp.Keyframes = make([]shapePathKeyframe, len(kfs))
	for i, kf := range kfs {
		rk := shapePathKeyframe{Frame: kf.Frame, Hold: bool(kf.Hold)}
		if len(kf.Start) > 0 {
			rk.Start = kf.Start[0].toValue()
		}
		if len(kf.End) > 0 {
			rk.End = kf.End[0].toValue()
			rk.HasEnd = true
		}
		rk.Easing = rawKeyframe{Hold: rk.Hold, InX: handleX(kf.In), InY: handleY(kf.In), OutX: handleX(kf.Out), OutY: handleY(kf.Out)}.easing()
		sp.Keyframes[i] = rk
	}
	return nil
}

func handleX(h *easeHandle) float64 {
	if h == nil {
		return 0
	}
	return float64(h.X)
}
func handleY(h *easeHandle) float64 {
	if h == nil {
		return 0
	}
	return float64(h.Y)
}

// Eval resolves the shape value at frame. Vertex counts must match
// between the bracketing keyframes to morph (lerp positions and
// tangents); otherwise the segment holds at its start value (spec §4.6
// "Morph by lerping vertex positions and tangents when counts match;
// hold otherwise").
func (sp *ShapeProperty) Eval(frame float64) BezierShapeValue {
	if sp == nil {
		return BezierShapeValue{}
	}
	if !sp.Animated {
		return sp.Static
	}
	if len(sp.Keyframes) == 0 {
		return BezierShapeValue{}
	}
	if frame <= sp.Keyframes[0].Frame {
		return sp.Keyframes[0].Start
	}
	last := sp.Keyframes[len(sp.Keyframes)-1]
	if frame >= last.Frame {
		if last.HasEnd {
			return last.End
		}
		return last.Start
	}
	for i := 0; i < len(sp.Keyframes)-1; i++ {
		cur, next := sp.Keyframes[i], sp.Keyframes[i+1]
		if frame < cur.Frame || frame >= next.Frame {
			continue
		}
		span := next.Frame - cur.Frame
		t := 0.0
		if span > 0 {
			t = (frame - cur.Frame) / span
		}
		t = clamp01(cur.Easing.Apply(t))

		// Prefer the next keyframe's start value; cur.End is only a
		// fallback for the trailing keyframe, handled above.
		return lerpShape(cur.Start, next.Start, t, cur.Hold)
	}
	return last.Start
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerpShape(a, b BezierShapeValue, t float64, hold bool) BezierShapeValue {
	if hold {
		return a
	}
	if len(a.Vertices) != len(b.Vertices) {
		// TODO: differing vertex counts hold at `a` instead of resampling
		// one side onto the other's vertex count to morph between them.
		return a
	}
	out := BezierShapeValue{Vertices: make([]BezierVertex, len(a.Vertices)), Closed: a.Closed}
	for i := range a.Vertices {
		out.Vertices[i] = BezierVertex{
			Point:      a.Vertices[i].Point.LerpTo(b.Vertices[i].Point, t),
			InTangent:  a.Vertices[i].InTangent.LerpTo(b.Vertices[i].InTangent, t),
			OutTangent: a.Vertices[i].OutTangent.LerpTo(b.Vertices[i].OutTangent, t),
		}
	}
	return out
}

// ToBezierPath converts a resolved shape value into the raster package's
// BezierPath, by emitting one CubicTo per segment using the Lottie
// tangent-offset convention (control point = vertex + tangent offset).
func (v BezierShapeValue) ToBezierPath() *kinescope.BezierPath {
	if v.mergedPath != nil {
		return v.mergedPath
	}
	p := &kinescope.BezierPath{}
	if len(v.Vertices) == 0 {
		return p
	}
	p.MoveTo(v.Vertices[0].Point.X, v.Vertices[0].Point.Y)
	n := len(v.Vertices)
	segments := n - 1
	if v.Closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		a := v.Vertices[i]
		b := v.Vertices[(i+1)%n]
		c1 := kinescope.Vec2{X: a.Point.X + a.OutTangent.X, Y: a.Point.Y + a.OutTangent.Y}
		c2 := kinescope.Vec2{X: b.Point.X + b.InTangent.X, Y: b.Point.Y + b.InTangent.Y}
		p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, b.Point.X, b.Point.Y)
	}
	if v.Closed {
		p.Close()
	}
	return p
}

// flattenCubic adaptively subdivides a single cubic Bezier segment via de
// Casteljau recursion until the chord-to-curve deviation is below
// tolerance, returning the polyline's interior points (spec §4.6
// "Adaptive flattening ... recursive de Casteljau subdivision until the
// max distance from chord to curve is below a tolerance").
func flattenCubic(p0, c1, c2, p1 kinescope.Vec2, tolerance float64) []kinescope.Vec2 {
	if cubicFlatEnough(p0, c1, c2, p1, tolerance) {
		return []kinescope.Vec2{p1}
	}
	l0, l1, l2, l3, r0, r1, r2, r3 := splitCubic(p0, c1, c2, p1)
	left := flattenCubic(l0, l1, l2, l3, tolerance)
	right := flattenCubic(r0, r1, r2, r3, tolerance)
	return append(left, right...)
}

func cubicFlatEnough(p0, c1, c2, p1 kinescope.Vec2, tolerance float64) bool {
	d1 := pointLineDistance(c1, p0, p1)
	d2 := pointLineDistance(c2, p0, p1)
	return d1 <= tolerance && d2 <= tolerance
}

func pointLineDistance(p, a, b kinescope.Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs((p.X-a.X)*dy-(p.Y-a.Y)*dx) / length
}

func midpoint(a, b kinescope.Vec2) kinescope.Vec2 {
	return kinescope.Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func splitCubic(p0, c1, c2, p1 kinescope.Vec2) (l0, l1, l2, l3, r0, r1, r2, r3 kinescope.Vec2) {
	p01 := midpoint(p0, c1)
	p12 := midpoint(c1, c2)
	p23 := midpoint(c2, p1)
	p012 := midpoint(p01, p12)
	p123 := midpoint(p12, p23)
	p0123 := midpoint(p012, p123)
	return p0, p01, p012, p0123, p0123, p123, p23, p1
}
