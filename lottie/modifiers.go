package lottie

import (
	"math"

	"github.com/kinescope-engine/kinescope"
)

// TrimPathsData is a resolved `tm` shape item (spec §4.6 "Trim paths").
type TrimPathsData struct {
	Start  *Property `json:"s"`
	End    *Property `json:"e"`
	Offset *Property `json:"o"`
	Mode   int        `json:"m"` // 1 = simultaneous, 2 = sequential
}

// window returns the effective [s', e'] fraction window at frame,
// wrapping start/end by offset per spec: `s' = (start+offset) mod 1`.
func (t TrimPathsData) window(frame float64) (start, end float64) {
	s := float64(t.Start.ToScalar().Eval(frame)) / 100
	e := float64(t.End.ToScalar().Eval(frame)) / 100
	o := 0.0
	if t.Offset != nil {
		o = float64(t.Offset.ToScalar().Eval(frame)) / 360
	}
	return euclideanMod(s+o, 1), euclideanMod(e+o, 1)
}

func euclideanMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

// ApplyTrim trims path to the arc-length fraction [start, end] (with
// wraparound handled as two spans when start > end), operating on an
// adaptively-flattened polyline and re-emitting straight segments — an
// approximation of the exact curve-trim a vector editor would produce,
// acceptable because the flattening tolerance (spec's ~0.5 logical
// pixel) already bounds the visual error.
func ApplyTrim(shape BezierShapeValue, start, end float64) *kinescope.BezierPath {
	pts := flattenShape(shape, 0.5)
	if len(pts) < 2 {
		return &kinescope.BezierPath{}
	}
	total := polylineLength(pts)
	if total <= 0 {
		return &kinescope.BezierPath{}
	}

	out := &kinescope.BezierPath{}
	if start <= end {
		appendTrimmedSpan(out, pts, total, start, end)
	} else {
		// Wraps: render [start,1] and [0,end] as two spans.
		appendTrimmedSpan(out, pts, total, start, 1)
		appendTrimmedSpan(out, pts, total, 0, end)
	}
	return out
}

func flattenShape(shape BezierShapeValue, tolerance float64) []kinescope.Vec2 {
	if len(shape.Vertices) == 0 {
		return nil
	}
	pts := []kinescope.Vec2{shape.Vertices[0].Point}
	n := len(shape.Vertices)
	segments := n - 1
	if shape.Closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		a := shape.Vertices[i]
		b := shape.Vertices[(i+1)%n]
		c1 := kinescope.Vec2{X: a.Point.X + a.OutTangent.X, Y: a.Point.Y + a.OutTangent.Y}
		c2 := kinescope.Vec2{X: b.Point.X + b.InTangent.X, Y: b.Point.Y + b.InTangent.Y}
		pts = append(pts, flattenCubic(a.Point, c1, c2, b.Point, tolerance)...)
	}
	return pts
}

func polylineLength(pts []kinescope.Vec2) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return total
}

func appendTrimmedSpan(out *kinescope.BezierPath, pts []kinescope.Vec2, total, startFrac, endFrac float64) {
	if endFrac <= startFrac {
		return
	}
	startLen := startFrac * total
	endLen := endFrac * total
	acc := 0.0
	started := false
	for i := 1; i < len(pts); i++ {
		segLen := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		segStart, segEnd := acc, acc+segLen
		acc = segEnd
		if segEnd < startLen || segStart > endLen {
			continue
		}
		a, b := pts[i-1], pts[i]
		lo, hi := a, b
		if segStart < startLen && segLen > 0 {
			lo = lerpPoint(a, b, (startLen-segStart)/segLen)
		}
		if segEnd > endLen && segLen > 0 {
			hi = lerpPoint(a, b, (endLen-segStart)/segLen)
		}
		if !started {
			out.MoveTo(lo.X, lo.Y)
			started = true
		}
		out.LineTo(hi.X, hi.Y)
	}
}

func lerpPoint(a, b kinescope.Vec2, t float64) kinescope.Vec2 {
	return kinescope.Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// RepeaterData is a resolved `rp` shape item (spec §4.6 "Repeater: emits
// n copies with cumulative TransformShape").
type RepeaterData struct {
	Copies      *Property `json:"c"`
	Offset      *Property `json:"o"`
	AnchorPoint *Property `json:"tr_a"`
	Position    *Property `json:"tr_p"`
	Scale       *Property `json:"tr_s"`
	Rotation    *Property `json:"tr_r"`
	StartOpacity *Property `json:"tr_so"`
	EndOpacity   *Property `json:"tr_eo"`
}

// Instances returns the per-copy cumulative transform at frame, one entry
// per repeated copy. StartOpacity and EndOpacity are not read, so every
// copy keeps the default opacity.
func (r RepeaterData) Instances(frame float64) []kinescope.Transform {
	n := int(r.Copies.ToScalar().Eval(frame))
	if n <= 0 {
		return nil
	}
	offset := 0.0
	if r.Offset != nil {
		offset = float64(r.Offset.ToScalar().Eval(frame))
	}
	anchor := r.AnchorPoint.ToVec2().Eval(frame)
	pos := r.Position.ToVec2().Eval(frame)
	scale := r.Scale.ToVec2().Eval(frame)
	rot := float64(r.Rotation.ToScalar().Eval(frame))

	out := make([]kinescope.Transform, n)
	for i := 0; i < n; i++ {
		k := offset + float64(i)
		tr := kinescope.DefaultTransform()
		tr.Anchor = anchor
		tr.Position = kinescope.Vec2{X: pos.X * k, Y: pos.Y * k}
		sx, sy := 1.0, 1.0
		if scale.X != 0 {
			sx = math.Pow(scale.X/100, k)
		}
		if scale.Y != 0 {
			sy = math.Pow(scale.Y/100, k)
		}
		tr.Scale = kinescope.Vec2{X: sx, Y: sy}
		tr.Rotation.Z = rot * k
		out[i] = tr
	}
	return out
}

// WiggleParams drives a deterministic pseudo-noise offset, seeded by
// (seed, time, vertex index) as spec §4.6 "Wiggle" requires.
type WiggleParams struct {
	Seed      int64
	Frequency float64
	Amplitude float64
}

// Eval returns a deterministic 2D offset for vertex index i at time t
// (seconds), using a value-noise lattice rather than true gradient
// Perlin noise — deterministic and seed-stable, which is the only
// property spec actually requires here.
func (w WiggleParams) Eval(t float64, index int) kinescope.Vec2 {
	phase := t * w.Frequency
	x := valueNoise(w.Seed, float64(index)*17.0, phase)
	y := valueNoise(w.Seed+1, float64(index)*31.0, phase)
	return kinescope.Vec2{X: (x*2 - 1) * w.Amplitude, Y: (y*2 - 1) * w.Amplitude}
}

// valueNoise is a smoothed 1D hash-based value-noise function over a
// lattice of integer phase steps, parameterized by seed and an extra
// per-sample offset so distinct vertices/channels don't alias.
func valueNoise(seed int64, offset, phase float64) float64 {
	p := phase + offset
	i0 := math.Floor(p)
	f := p - i0
	f = f * f * (3 - 2*f) // smoothstep
	a := hashNoise(seed, int64(i0))
	b := hashNoise(seed, int64(i0)+1)
	return a + (b-a)*f
}

func hashNoise(seed, i int64) float64 {
	h := uint64(seed)*2654435761 + uint64(i)*2246822519
	h ^= h >> 15
	h *= 2654435761
	h ^= h >> 13
	return float64(h%1000000) / 1000000
}

// RoundCornersData is a resolved `rd` shape item (spec §4.6 "RoundCorners:
// inserts cubic segments at polyline corners with radius clamped to half
// shortest adjacent edge").
type RoundCornersData struct {
	Radius *Property `json:"r"`
}

// Apply rounds every corner of shape's polyline approximation by radius,
// clamped per-corner to half the shorter adjacent edge.
func (r RoundCornersData) Apply(shape BezierShapeValue, frame float64) BezierShapeValue {
	radius := float64(r.Radius.ToScalar().Eval(frame))
	if radius <= 0 || len(shape.Vertices) < 3 {
		return shape
	}
	pts := make([]kinescope.Vec2, len(shape.Vertices))
	for i, v := range shape.Vertices {
		pts[i] = v.Point
	}
	n := len(pts)
	out := BezierShapeValue{Closed: shape.Closed}
	segCount := n
	if !shape.Closed {
		segCount = n - 2
	}
	for i := 0; i < n; i++ {
		if !shape.Closed && (i == 0 || i == n-1) {
			out.Vertices = append(out.Vertices, BezierVertex{Point: pts[i]})
			continue
		}
		prev := pts[(i-1+n)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		d1 := math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		d2 := math.Hypot(next.X-cur.X, next.Y-cur.Y)
		rad := math.Min(radius, math.Min(d1, d2)/2)
		if rad <= 0 {
			out.Vertices = append(out.Vertices, BezierVertex{Point: cur})
			continue
		}
		toPrev := normalize(sub(prev, cur))
		toNext := normalize(sub(next, cur))
		a := add(cur, scale(toPrev, rad))
		b := add(cur, scale(toNext, rad))
		out.Vertices = append(out.Vertices,
			BezierVertex{Point: a, OutTangent: scale(toNext, rad*0.5522847498)},
			BezierVertex{Point: b, InTangent: scale(toPrev, rad*0.5522847498)},
		)
	}
	_ = segCount
	return out
}

func sub(a, b kinescope.Vec2) kinescope.Vec2    { return kinescope.Vec2{X: a.X - b.X, Y: a.Y - b.Y} }
func add(a, b kinescope.Vec2) kinescope.Vec2    { return kinescope.Vec2{X: a.X + b.X, Y: a.Y + b.Y} }
func scale(a kinescope.Vec2, s float64) kinescope.Vec2 { return kinescope.Vec2{X: a.X * s, Y: a.Y * s} }
func normalize(a kinescope.Vec2) kinescope.Vec2 {
	l := math.Hypot(a.X, a.Y)
	if l < 1e-9 {
		return kinescope.Vec2{}
	}
	return kinescope.Vec2{X: a.X / l, Y: a.Y / l}
}

// ZigZagData is a resolved `zz` shape item.
// TODO: PointType==1 (smooth) falls back to corner-style below; round the
// zigzag peaks/troughs with a tangent-matched curve instead of a point.
type ZigZagData struct {
	Amplitude *Property `json:"s"`
	Frequency *Property `json:"r"`
	PointType int       `json:"pt"` // 1 = smooth, 2 = corner
}

// Apply perturbs shape's flattened polyline perpendicular to its local
// tangent by a repeating zigzag of the given amplitude/frequency.
func (z ZigZagData) Apply(shape BezierShapeValue, frame float64) BezierShapeValue {
	amp := float64(z.Amplitude.ToScalar().Eval(frame))
	freq := float64(z.Frequency.ToScalar().Eval(frame))
	if amp == 0 || freq <= 0 || len(shape.Vertices) < 2 {
		return shape
	}
	pts := flattenShape(shape, 0.5)
	if len(pts) < 2 {
		return shape
	}
	total := polylineLength(pts)
	step := total / (freq * 2)
	out := BezierShapeValue{Closed: shape.Closed}
	acc := 0.0
	sign := 1.0
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		tangent := normalize(sub(b, a))
		normal := kinescope.Vec2{X: -tangent.Y, Y: tangent.X}
		for acc+segLen >= step && step > 0 {
			t := (step - acc) / segLen
			p := lerpPoint(a, b, t)
			p = add(p, scale(normal, amp*sign))
			out.Vertices = append(out.Vertices, BezierVertex{Point: p})
			sign = -sign
			a = p
			segLen = math.Hypot(b.X-a.X, b.Y-a.Y)
			acc = 0
		}
		acc += segLen
	}
	return out
}

// PuckerBloatData is a resolved `pb` shape item: moves each vertex toward
// (pucker, amount<0) or away from (bloat, amount>0) the path's centroid.
type PuckerBloatData struct {
	Amount *Property `json:"a"`
}

func (pb PuckerBloatData) Apply(shape BezierShapeValue, frame float64) BezierShapeValue {
	amount := float64(pb.Amount.ToScalar().Eval(frame)) / 100
	if amount == 0 || len(shape.Vertices) == 0 {
		return shape
	}
	var cx, cy float64
	for _, v := range shape.Vertices {
		cx += v.Point.X
		cy += v.Point.Y
	}
	n := float64(len(shape.Vertices))
	centroid := kinescope.Vec2{X: cx / n, Y: cy / n}

	out := BezierShapeValue{Closed: shape.Closed, Vertices: make([]BezierVertex, len(shape.Vertices))}
	for i, v := range shape.Vertices {
		out.Vertices[i] = BezierVertex{Point: lerpPoint(centroid, v.Point, 1+amount)}
	}
	return out
}

// TwistData is a resolved `tw` shape item: rotates vertices by an angle
// that grows with distance from Center (the origin when Center is unset),
// reaching the full angle at the farthest vertex.
type TwistData struct {
	Angle  *Property `json:"a"`
	Center *Property `json:"c"`
}

func (tw TwistData) Apply(shape BezierShapeValue, frame float64) BezierShapeValue {
	angle := float64(tw.Angle.ToScalar().Eval(frame)) * math.Pi / 180
	if angle == 0 || len(shape.Vertices) == 0 {
		return shape
	}
	center := kinescope.Vec2{}
	if tw.Center != nil {
		center = tw.Center.ToVec2().Eval(frame)
	}
	var maxR float64
	for _, v := range shape.Vertices {
		r := math.Hypot(v.Point.X-center.X, v.Point.Y-center.Y)
		if r > maxR {
			maxR = r
		}
	}
	out := BezierShapeValue{Closed: shape.Closed, Vertices: make([]BezierVertex, len(shape.Vertices))}
	for i, v := range shape.Vertices {
		r := math.Hypot(v.Point.X-center.X, v.Point.Y-center.Y)
		frac := 0.0
		if maxR > 0 {
			frac = r / maxR
		}
		a := angle * frac
		sin, cos := math.Sincos(a)
		dx, dy := v.Point.X-center.X, v.Point.Y-center.Y
		out.Vertices[i] = BezierVertex{Point: kinescope.Vec2{
			X: center.X + dx*cos - dy*sin,
			Y: center.Y + dx*sin + dy*cos,
		}}
	}
	return out
}

// MergeMode selects a `mm` merge-paths boolean operation.
type MergeMode int

const (
	MergeAdd MergeMode = iota + 1
	MergeSubtract
	MergeIntersect
	MergeExclude
)

// MergePaths combines shapes using even-odd fill-rule stacking: Add
// simply concatenates subpaths (even-odd naturally unions non-overlapping
// regions and XORs overlapping ones). Subtract/Intersect/Exclude are not
// implemented as true boolean ops — no polygon-clipping library exists in
// the reference corpus and hand-rolling a robust Weiler-Atherton clipper
// is out of scope here — so they fall back to Add, concatenating the
// subpaths and relying on even-odd fill for the common, non-overlapping
// case.
func MergePaths(mode MergeMode, shapes []BezierShapeValue) *kinescope.BezierPath {
	out := &kinescope.BezierPath{}
	for _, s := range shapes {
		sub := s.ToBezierPath()
		out.Ops = append(out.Ops, sub.Ops...)
	}
	return out
}
