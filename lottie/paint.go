package lottie

import (
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/kinescope-engine/kinescope"
)

// FillData is a resolved `fl` (solid fill) shape item (spec §4.6
// "Paints": "Solid: RGBA + opacity").
type FillData struct {
	Color   *Property `json:"c,omitempty"`
	Opacity *Property `json:"o,omitempty"`
	FillRule int      `json:"r,omitempty"`
}

// ResolvePaint evaluates the fill at frame into a kinescope.Paint.
func (f FillData) ResolvePaint(frame float64) kinescope.Paint {
	c := f.Color.ToColor().Eval(frame)
	op := 1.0
	if f.Opacity != nil {
		op = float64(f.Opacity.ToScalar().Eval(frame)) / 100
	}
	return kinescope.Paint{Kind: kinescope.PaintSolid, Solid: c, Opacity: op}
}

// GradientFillData is a resolved `gf` (gradient fill) shape item.
type GradientFillData struct {
	StartPoint *Property `json:"s,omitempty"`
	EndPoint   *Property `json:"e,omitempty"`
	GradientType int     `json:"t"` // 1 = linear, 2 = radial
	Opacity    *Property `json:"o,omitempty"`
	// Colors packs [offset0, r0,g0,b0, offset1, r1,g1,b1, ...] per the
	// Lottie `g` gradient color encoding.
	Colors *Property `json:"g,omitempty"`
}

func (g GradientFillData) ResolvePaint(frame float64) kinescope.Paint {
	start := g.StartPoint.ToVec2().Eval(frame)
	end := g.EndPoint.ToVec2().Eval(frame)
	op := 1.0
	if g.Opacity != nil {
		op = float64(g.Opacity.ToScalar().Eval(frame)) / 100
	}
	kind := kinescope.PaintLinearGradient
	if g.GradientType == 2 {
		kind = kinescope.PaintRadialGradient
	}
	return kinescope.Paint{
		Kind: kind, Start: start, End: end, Opacity: op,
		Stops: gradientStops(g.Colors, frame),
	}
}

func gradientStops(colors *Property, frame float64) []kinescope.GradientStop {
	if colors == nil {
		return nil
	}
	var raw []float64
	if colors.Animated {
		k := colors.ToScalarSlice()
		raw = k.eval(frame)
	} else {
		raw = colors.Static
	}
	var stops []kinescope.GradientStop
	for i := 0; i+3 < len(raw); i += 4 {
		stops = append(stops, kinescope.GradientStop{
			Offset: raw[i],
			Color:  kinescope.Color{R: raw[i+1], G: raw[i+2], B: raw[i+3], A: 1},
		})
	}
	return stops
}

// StrokeData is a resolved `st` (solid stroke) shape item (spec §4.6
// "Stroke: width, cap, join, miter-limit, dash pattern").
type StrokeData struct {
	Color      *Property `json:"c,omitempty"`
	Opacity    *Property `json:"o,omitempty"`
	Width      *Property `json:"w,omitempty"`
	LineCap    int       `json:"lc,omitempty"`
	LineJoin   int       `json:"lj,omitempty"`
	MiterLimit float64   `json:"ml,omitempty"`
	Dashes     []DashData `json:"d,omitempty"`
}

type DashData struct {
	Kind  string    `json:"n"` // "d" (dash), "g" (gap), "o" (offset)
	Value *Property `json:"v"`
}

func (s StrokeData) ResolvePaint(frame float64) (kinescope.Paint, kinescope.StrokeStyle) {
	c := s.Color.ToColor().Eval(frame)
	op := 1.0
	if s.Opacity != nil {
		op = float64(s.Opacity.ToScalar().Eval(frame)) / 100
	}
	paint := kinescope.Paint{Kind: kinescope.PaintSolid, Solid: c, Opacity: op}

	width := 1.0
	if s.Width != nil {
		width = float64(s.Width.ToScalar().Eval(frame))
	}
	style := kinescope.StrokeStyle{
		Width:      width,
		Cap:        lineCap(s.LineCap),
		Join:       lineJoin(s.LineJoin),
		MiterLimit: s.MiterLimit,
	}
	var dash, gap, offset float64
	for _, d := range s.Dashes {
		v := d.Value.ToScalar().Eval(frame)
		switch d.Kind {
		case "d":
			dash = float64(v)
		case "g":
			gap = float64(v)
		case "o":
			offset = float64(v)
		}
	}
	if dash > 0 {
		style.DashArray = []float64{dash, gap}
		style.DashOffset = offset
	}
	return paint, style
}

func lineCap(v int) vector.LineCap {
	switch v {
	case 2:
		return vector.LineCapRound
	case 3:
		return vector.LineCapSquare
	default:
		return vector.LineCapButt
	}
}

func lineJoin(v int) vector.LineJoin {
	switch v {
	case 2:
		return vector.LineJoinRound
	case 3:
		return vector.LineJoinBevel
	default:
		return vector.LineJoinMiter
	}
}
