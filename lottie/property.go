package lottie

import (
	"encoding/json"

	"github.com/kinescope-engine/kinescope"
)

// Property is a parsed Lottie animatable value (`a`/`k` pair), kept in a
// dimension-agnostic raw form until a caller asks for it as a scalar,
// Vec2, or Color via ToScalar/ToVec2/ToColor (spec §4.6 "Model": tolerant
// parsing; §3 "Animatable property").
type Property struct {
	Animated  bool
	Static    []float64
	Keyframes []rawKeyframe

	// Expression is the property's optional Bodymovin "x" field, a
	// JavaScript snippet in the original format; this engine evaluates it
	// with ExprEngine instead (see expr.go). Empty for the overwhelming
	// majority of properties, which carry no expression at all.
	Expression string
}

type rawKeyframe struct {
	Frame      float64
	Start, End []float64
	HasEnd     bool
	InX, InY   float64
	OutX, OutY float64
	Hold       bool
}

type propertyJSON struct {
	Animated   BoolInt         `json:"a"`
	Value      json.RawMessage `json:"k"`
	Expression string          `json:"x,omitempty"`
}

type keyframeJSON struct {
	Frame float64   `json:"t"`
	Start []float64 `json:"s"`
	End   []float64 `json:"e,omitempty"`
	In    *easeHandle `json:"i,omitempty"`
	Out   *easeHandle `json:"o,omitempty"`
	Hold  BoolInt     `json:"h,omitempty"`
}

type easeHandle struct {
	X firstOrSlice `json:"x"`
	Y firstOrSlice `json:"y"`
}

// firstOrSlice decodes either a bare number or an array of numbers,
// keeping only the first component — Lottie gives per-dimension ease
// handles; this engine's Keyframed stores one Easing per segment, so the
// first dimension's curve stands in for the whole keyframe (documented
// simplification, spec's `i`/`o` contract doesn't mandate per-dimension
// easing preservation for correctness, only for pixel-perfect fidelity).
type firstOrSlice float64

func (f *firstOrSlice) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = firstOrSlice(n)
		return nil
	}
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) > 0 {
		*f = firstOrSlice(arr[0])
	}
	return nil
}

func (p *Property) UnmarshalJSON(data []byte) error {
	var pj propertyJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	p.Animated = bool(pj.Animated)
	p.Expression = pj.Expression
	if !p.Animated {
		var single float64
		if err := json.Unmarshal(pj.Value, &single); err == nil {
			p.Static = []float64{single}
			return nil
		}
		var arr []float64
		if err := json.Unmarshal(pj.Value, &arr); err != nil {
			return err
		}
		p.Static = arr
		return nil
	}
	var kfs []keyframeJSON
	if err := json.Unmarshal(pj.Value, &kfs); err != nil {
		return err
	}
	p.Keyframes = make([]rawKeyframe, len(kfs))
	for i, kf := range kfs {
		rk := rawKeyframe{Frame: kf.Frame, Start: kf.Start, Hold: bool(kf.Hold)}
		if kf.End != nil {
			rk.End = kf.End
			rk.HasEnd = true
		}
		if kf.In != nil {
			rk.InX, rk.InY = float64(kf.In.X), float64(kf.In.Y)
		}
		if kf.Out != nil {
			rk.OutX, rk.OutY = float64(kf.Out.X), float64(kf.Out.Y)
		}
		p.Keyframes[i] = rk
	}
	return nil
}

func (rk rawKeyframe) easing() kinescope.Easing {
	if rk.Hold {
		return kinescope.HoldEasing
	}
	if rk.InX == 0 && rk.InY == 0 && rk.OutX == 0 && rk.OutY == 0 {
		return kinescope.LinearEasing
	}
	return kinescope.Easing{
		Kind: kinescope.EasingBezier,
		CP1:  kinescope.Vec2{X: rk.OutX, Y: rk.OutY},
		CP2:  kinescope.Vec2{X: rk.InX, Y: rk.InY},
	}
}

func comp(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// ToScalar resolves the property's first component as a Keyframed[Float64].
func (p *Property) ToScalar() kinescope.Keyframed[kinescope.Float64] {
	if p == nil {
		return kinescope.Keyframed[kinescope.Float64]{}
	}
	if !p.Animated {
		v := kinescope.Float64(comp(p.Static, 0))
		return kinescope.Keyframed[kinescope.Float64]{Keyframes: []kinescope.Keyframe[kinescope.Float64]{
			{Frame: 0, ValueStart: v, ValueEnd: v, ValueEndSet: true},
		}}
	}
	kfs := make([]kinescope.Keyframe[kinescope.Float64], len(p.Keyframes))
	for i, rk := range p.Keyframes {
		kf := kinescope.Keyframe[kinescope.Float64]{
			Frame:      rk.Frame,
			ValueStart: kinescope.Float64(comp(rk.Start, 0)),
			Easing:     rk.easing(),
		}
		if rk.HasEnd {
			kf.ValueEnd = kinescope.Float64(comp(rk.End, 0))
			kf.ValueEndSet = true
		}
		kfs[i] = kf
	}
	return kinescope.Keyframed[kinescope.Float64]{Keyframes: kfs}
}

// ToVec2 resolves the property's first two components as a Keyframed[Vec2].
func (p *Property) ToVec2() kinescope.Keyframed[kinescope.Vec2] {
	if p == nil {
		return kinescope.Keyframed[kinescope.Vec2]{}
	}
	if !p.Animated {
		v := kinescope.Vec2{X: comp(p.Static, 0), Y: comp(p.Static, 1)}
		return kinescope.Keyframed[kinescope.Vec2]{Keyframes: []kinescope.Keyframe[kinescope.Vec2]{
			{Frame: 0, ValueStart: v, ValueEnd: v, ValueEndSet: true},
		}}
	}
	kfs := make([]kinescope.Keyframe[kinescope.Vec2], len(p.Keyframes))
	for i, rk := range p.Keyframes {
		kf := kinescope.Keyframe[kinescope.Vec2]{
			Frame:      rk.Frame,
			ValueStart: kinescope.Vec2{X: comp(rk.Start, 0), Y: comp(rk.Start, 1)},
			Easing:     rk.easing(),
		}
		if rk.HasEnd {
			kf.ValueEnd = kinescope.Vec2{X: comp(rk.End, 0), Y: comp(rk.End, 1)}
			kf.ValueEndSet = true
		}
		kfs[i] = kf
	}
	return kinescope.Keyframed[kinescope.Vec2]{Keyframes: kfs}
}

// ToColor resolves the property's first four components (R,G,B,A, A
// defaulting to 1 when absent, as Lottie color arrays are usually RGB
// only) as a Keyframed[Color].
func (p *Property) ToColor() kinescope.Keyframed[kinescope.Color] {
	if p == nil {
		return kinescope.Keyframed[kinescope.Color]{}
	}
	colorAt := func(v []float64) kinescope.Color {
		a := 1.0
		if len(v) > 3 {
			a = v[3]
		}
		return kinescope.Color{R: comp(v, 0), G: comp(v, 1), B: comp(v, 2), A: a}
	}
	if !p.Animated {
		v := colorAt(p.Static)
		return kinescope.Keyframed[kinescope.Color]{Keyframes: []kinescope.Keyframe[kinescope.Color]{
			{Frame: 0, ValueStart: v, ValueEnd: v, ValueEndSet: true},
		}}
	}
	kfs := make([]kinescope.Keyframe[kinescope.Color], len(p.Keyframes))
	for i, rk := range p.Keyframes {
		kf := kinescope.Keyframe[kinescope.Color]{
			Frame:      rk.Frame,
			ValueStart: colorAt(rk.Start),
			Easing:     rk.easing(),
		}
		if rk.HasEnd {
			kf.ValueEnd = colorAt(rk.End)
			kf.ValueEndSet = true
		}
		kfs[i] = kf
	}
	return kinescope.Keyframed[kinescope.Color]{Keyframes: kfs}
}

// scalarSliceKeyframed evaluates a whole raw float slice per keyframe,
// for Lottie properties whose dimensionality isn't fixed at 1/2/4 (e.g.
// the packed gradient color-stop table in a `gf`/`gs` shape item's `g`
// property). Lerps element-wise when lengths match, holds otherwise.
type scalarSliceKeyframed struct {
	animated bool
	static   []float64
	keyframes []rawKeyframe
}

// ToScalarSlice resolves the property as a raw float-slice timeline.
func (p *Property) ToScalarSlice() scalarSliceKeyframed {
	if p == nil {
		return scalarSliceKeyframed{}
	}
	return scalarSliceKeyframed{animated: p.Animated, static: p.Static, keyframes: p.Keyframes}
}

func (k scalarSliceKeyframed) eval(frame float64) []float64 {
	if !k.animated || len(k.keyframes) == 0 {
		return k.static
	}
	if frame <= k.keyframes[0].Frame {
		return k.keyframes[0].Start
	}
	last := k.keyframes[len(k.keyframes)-1]
	if frame >= last.Frame {
		if last.HasEnd {
			return last.End
		}
		return last.Start
	}
	for i := 0; i < len(k.keyframes)-1; i++ {
		cur, next := k.keyframes[i], k.keyframes[i+1]
		if frame < cur.Frame || frame >= next.Frame {
			continue
		}
		span := next.Frame - cur.Frame
		t := 0.0
		if span > 0 {
			t = (frame - cur.Frame) / span
		}
		t = clamp01(cur.easing().Apply(t))
		// Prefer the next keyframe's start value; cur.End is only a
		// fallback for the trailing keyframe, handled above.
		end := next.Start
		if len(cur.Start) != len(end) {
			return cur.Start
		}
		out := make([]float64, len(cur.Start))
		for j := range out {
			out[j] = cur.Start[j] + (end[j]-cur.Start[j])*t
		}
		return out
	}
	return last.Start
}
