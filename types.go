// Package kinescope is a deterministic, offline video rendering engine.
//
// Given a time t, [Director.RenderFrame] produces a bit-exact raster frame
// and [Director.MixAudio] produces a sample-exact audio chunk. The engine
// composes an arena-backed scene graph ([Arena], [Node]), a flexbox layout
// pass ([ComputeLayout]), a keyframe/spring animation evaluator ([Keyframed],
// [Spring]), and a vector rasteriser (package [kinescope/lottie] plus
// [Canvas]), and feeds the results to a caller-supplied frame/audio sink.
//
// There is no global state: a [Director] is an explicit argument everywhere,
// and the asset cache, font registry, and logging sink are all created and
// passed in explicitly by the host.
package kinescope

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color is an RGBA color with components in [0, 1], unpremultiplied.
// Premultiplication happens at rasterisation time in [Canvas].
type Color struct {
	R, G, B, A float64
}

// ColorTransparent is the zero value: fully transparent black.
var ColorTransparent = Color{}

// ColorWhite is opaque white, the default tint for untinted paints.
var ColorWhite = Color{1, 1, 1, 1}

// ColorMagenta is the placeholder color substituted for missing assets
// (spec §7, AssetMissing policy).
var ColorMagenta = Color{1, 0, 1, 1}

// Lerp linearly interpolates between two colors in unpremultiplied sRGB,
// per spec §3 "Animatable property" / §9 "Pre-multiplied vs unpremultiplied".
func (c Color) Lerp(to Color, t float64) Color {
	return Color{
		R: c.R + (to.R-c.R)*t,
		G: c.G + (to.G-c.G)*t,
		B: c.B + (to.B-c.B)*t,
		A: c.A + (to.A-c.A)*t,
	}
}

func (c Color) toEbitenNRGBA() (r, g, b, a uint8) {
	clamp := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	return clamp(c.R), clamp(c.G), clamp(c.B), clamp(c.A)
}

// toNRGBAColor adapts c to image/color.NRGBA for use with stdlib image
// APIs (e.g. filling a placeholder *ebiten.Image).
func toNRGBAColor(c Color) color.NRGBA {
	r, g, b, a := c.toEbitenNRGBA()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Vec2 is a 2D point, offset, or direction used throughout the data model.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector; used for rotation (x, y, z) and anchor-with-depth
// fields in the transform model (spec §3 Transform).
type Vec3 struct {
	X, Y, Z float64
}

// Size is a width/height pair, the result of an element's Measure call.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle, origin top-left, Y increasing downward
// (spec §3 Layout engine contract).
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies within r, inclusive of edges.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap, including shared edges.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width && r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height && r.Y+r.Height >= other.Y
}

// BlendMode selects a compositing operation for a node or Lottie paint.
// The first eight values match the teacher's compositing set; the
// remainder extend it to the sixteen modes spec §4.6 "Blend modes" lists.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColorBlend
	BlendLuminosity
	// BlendAdd and BlendErase are not part of the Lottie 16 but are kept
	// for the scene-builder's node.set_blend_mode, which also accepts
	// plain additive/erase compositing for Box/Image/Video elements.
	BlendAdd
	BlendErase
	// BlendDstIn implements Porter-Duff destination-in (dst.rgb *
	// src.alpha): the node-mask and track-matte compositing primitive.
	BlendDstIn
)

// EbitenBlend returns the ebiten.Blend that implements this mode at the
// canvas-compositing level. Modes without a native GPU blend-factor
// equivalent (Overlay, ColorDodge, ColorBurn, HardLight, SoftLight,
// Difference, Exclusion, Hue, Saturation, Color, Luminosity) fall back to
// BlendSourceOver here, and no shader pass applies them, so they
// composite as normal alpha-over.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendDstIn:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorZero,
			BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
			BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendDarken:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationMin,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendLighten:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationMax,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// NeedsShaderBlend reports whether this mode has no GPU blend-factor
// equivalent (the modes EbitenBlend draws as BlendSourceOver). The
// renderer does not call it.
func (b BlendMode) NeedsShaderBlend() bool {
	switch b {
	case BlendOverlay, BlendColorDodge, BlendColorBurn, BlendHardLight,
		BlendSoftLight, BlendDifference, BlendExclusion,
		BlendHue, BlendSaturation, BlendColorBlend, BlendLuminosity:
		return true
	default:
		return false
	}
}

// EasingKind selects the interpolation curve for a keyframe segment
// (spec §3 Keyframed<T>).
type EasingKind uint8

const (
	EasingLinear EasingKind = iota
	EasingBezier
	EasingHold
)
