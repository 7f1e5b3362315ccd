package lottie

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kinescope-engine/kinescope"
)

// Layer effect type codes (`ef[].ty`), per the public Bodymovin effects
// table. Parameter indices below (`ef[].ef[N]`) follow each effect's
// documented slot order.
const (
	effectTint         = 20
	effectFill         = 21
	effectStroke       = 22
	effectTritone      = 23
	effectLevels       = 24
	effectDropShadow   = 25
	effectGaussianBlur = 29
	effectDisplacement = 38
)

// LayerEffect is one entry of a layer's `ef` array: an effect kind plus
// its parameter list (spec §4.6 "Effects").
type LayerEffect struct {
	Type   int           `json:"ty"`
	Name   string        `json:"nm"`
	Values []EffectValue `json:"ef,omitempty"`
}

// EffectValue is one parameter of a LayerEffect. Most carry a Property
// under `v`, using the same a/k animatable encoding as transform
// properties, so it parses with no extra code.
type EffectValue struct {
	Type  int       `json:"ty"`
	Name  string    `json:"nm"`
	Value *Property `json:"v,omitempty"`
}

func (e *LayerEffect) value(index int) *Property {
	if index < 0 || index >= len(e.Values) {
		return nil
	}
	return e.Values[index].Value
}

func scalarAt(e *LayerEffect, index int, local, def float64) float64 {
	p := e.value(index)
	if p == nil {
		return def
	}
	return float64(p.ToScalar().Eval(local))
}

func colorAt(e *LayerEffect, index int, local float64) kinescope.Color {
	p := e.value(index)
	if p == nil {
		return kinescope.ColorTransparent
	}
	return p.ToColor().Eval(local)
}

// buildFilter turns one resolved effect into an ImageFilter, when the
// effect kind has an expressible Canvas/filter primitive. ok is false for
// effects this interpreter cannot render (documented gaps below).
func buildFilter(e *LayerEffect, local float64) (kinescope.ImageFilter, bool) {
	switch e.Type {
	case effectGaussianBlur:
		radius := scalarAt(e, 0, local, 0)
		return kinescope.NewBlurFilter(radius), true
	case effectDropShadow:
		c := colorAt(e, 0, local)
		c.A *= scalarAt(e, 1, local, 100) / 100
		angle := scalarAt(e, 2, local, 0)
		dist := scalarAt(e, 3, local, 0)
		blur := scalarAt(e, 4, local, 0)
		rad := angle * math.Pi / 180
		dx, dy := dist*math.Cos(rad), -dist*math.Sin(rad)
		return kinescope.NewDropShadowFilter(c, dx, dy, blur), true
	case effectTint:
		black := colorAt(e, 0, local)
		white := colorAt(e, 1, local)
		amount := scalarAt(e, 2, local, 100) / 100
		return tintMatrix(black, white, amount), true
	case effectFill:
		return fillMatrix(colorAt(e, 2, local)), true
	case effectTritone:
		// A three-stop tritone (highlight/midtone/shadow) collapses to a
		// two-stop tint between its highlight and shadow colors — the
		// midtone stop has no representation in a single affine matrix.
		highlight := colorAt(e, 0, local)
		shadow := colorAt(e, 1, local)
		return tintMatrix(shadow, highlight, 1), true
	case effectLevels:
		// TODO: only the master input-black/input-white remap is applied;
		// per-channel levels, gamma and output range are parsed nowhere.
		inBlack := scalarAt(e, 0, local, 0) / 255
		inWhite := scalarAt(e, 1, local, 255) / 255
		return levelsMatrix(inBlack, inWhite), true
	case effectStroke, effectDisplacement:
		// TODO: effect-Stroke (outline traced from alpha) and Displacement
		// Map (per-pixel UV offset sampled from a second layer) have no
		// expressible primitive on the Canvas/ImageFilter surface today.
		return nil, false
	default:
		return nil, false
	}
}

const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// tintMatrix builds a ColorMatrixFilter implementing After Effects' Tint:
// blend each channel toward black+luma*(white-black) by amount.
func tintMatrix(black, white kinescope.Color, amount float64) *kinescope.ColorMatrixFilter {
	f := kinescope.NewColorMatrixFilter()
	deltas := [3]float64{white.R - black.R, white.G - black.G, white.B - black.B}
	offsets := [3]float64{black.R, black.G, black.B}
	lumaW := [3]float64{lumaR, lumaG, lumaB}
	for row := 0; row < 3; row++ {
		base := row * 5
		for in := 0; in < 3; in++ {
			f.Matrix[base+in] = deltas[row] * lumaW[in] * amount
		}
		f.Matrix[base+row] += 1 - amount
		f.Matrix[base+3] = 0
		f.Matrix[base+4] = offsets[row] * amount
	}
	return f
}

// fillMatrix builds a ColorMatrixFilter that replaces RGB with a constant
// color while leaving alpha untouched, matching the effect-Fill effect.
func fillMatrix(c kinescope.Color) *kinescope.ColorMatrixFilter {
	f := kinescope.NewColorMatrixFilter()
	fields := [3]float64{c.R, c.G, c.B}
	for row, v := range fields {
		base := row * 5
		f.Matrix[base+0], f.Matrix[base+1], f.Matrix[base+2], f.Matrix[base+3] = 0, 0, 0, 0
		f.Matrix[base+4] = v
	}
	return f
}

// levelsMatrix builds a ColorMatrixFilter remapping [inBlack,inWhite] to
// [0,1] on each of R/G/B, matching a Levels effect's master input range.
func levelsMatrix(inBlack, inWhite float64) *kinescope.ColorMatrixFilter {
	f := kinescope.NewColorMatrixFilter()
	span := inWhite - inBlack
	if span == 0 {
		span = 1e-6
	}
	scale := 1 / span
	offset := -inBlack * scale
	for row := 0; row < 3; row++ {
		base := row * 5
		f.Matrix[base+row] = scale
		f.Matrix[base+4] = offset
	}
	return f
}

// applyEffects runs l.Effects over content in declaration order, each
// effect ping-ponging into a pooled scratch layer acquired from canvas
// (spec §4.6 "Effects"). Effects with no expressible filter (buildFilter
// returning ok=false) are skipped, leaving that stage's input untouched.
func applyEffects(canvas kinescope.Canvas, l *Layer, local float64, content *ebiten.Image) *ebiten.Image {
	if len(l.Effects) == 0 {
		return content
	}
	bounds := content.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	current := content
	for i := range l.Effects {
		filter, ok := buildFilter(&l.Effects[i], local)
		if !ok {
			continue
		}
		scratch := canvas.PushLayer(w, h).PopLayer()
		filter.Apply(current, scratch)
		current = scratch
	}
	return current
}
