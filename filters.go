package kinescope

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ImageFilter is a single step of the Effect Pipeline (spec §4 "Effect
// Pipeline": "blur, drop-shadow, color matrix, custom shader"). Grounded
// on the teacher's filter.go Filter interface, kept as-is: Apply draws
// src into dst, Padding reports how many extra pixels of border the
// filter needs so its effect isn't clipped at the offscreen layer's edge.
type ImageFilter interface {
	Apply(src, dst *ebiten.Image)
	Padding() int
}

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

const tintShaderSrc = `//kage:unit pixels
package main

var TintColor vec4
var Offset vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src - Offset)
	a := c.a * TintColor.a
	return vec4(TintColor.r*a, TintColor.g*a, TintColor.b*a, a)
}
`

var (
	colorMatrixShader *ebiten.Shader
	tintShader        *ebiten.Shader
)

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("kinescope: invalid built-in color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

func ensureTintShader() *ebiten.Shader {
	if tintShader == nil {
		s, err := ebiten.NewShader([]byte(tintShaderSrc))
		if err != nil {
			panic("kinescope: invalid built-in tint shader: " + err.Error())
		}
		tintShader = s
	}
	return tintShader
}

// ColorMatrixFilter applies a 4x5 row-major color matrix, matching After
// Effects' / Lottie's color-matrix effect semantics.
type ColorMatrixFilter struct {
	Matrix   [20]float64
	uniforms map[string]any
	matrixF32 [20]float32
	shaderOp ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter returns an identity color matrix filter.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{uniforms: make(map[string]any, 1)}
	f.uniforms["Matrix"] = f.matrixF32[:]
	f.Matrix[0], f.Matrix[6], f.Matrix[12], f.Matrix[18] = 1, 1, 1, 1
	return f
}

func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

func (f *ColorMatrixFilter) Padding() int { return 0 }

// BlurFilter applies an iterative Kawase-style downscale/upscale blur —
// no shader needed, bilinear filtering during DrawImage does the work.
// Adapted directly from the teacher's BlurFilter.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

func NewBlurFilter(radius float64) *BlurFilter {
	r := int(math.Round(radius))
	if r < 0 {
		r = 0
	}
	return &BlurFilter{Radius: r}
}

func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	if f.Radius <= 0 {
		f.imgOp.GeoM.Reset()
		f.imgOp.ColorScale.Reset()
		f.imgOp.Filter = ebiten.FilterNearest
		dst.DrawImage(src, &f.imgOp)
		return
	}
	passes := int(math.Ceil(math.Log2(float64(f.Radius))))
	if passes < 1 {
		passes = 1
	}
	srcBounds := src.Bounds()
	w, h := srcBounds.Dx(), srcBounds.Dy()

	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	op := &f.imgOp
	current := src
	for i := 0; i < passes; i++ {
		w = maxInt(w/2, 1)
		h = maxInt(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		scaleDownInto(op, current, f.temps[i])
		current = f.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		scaleDownInto(op, current, f.temps[i])
		current = f.temps[i]
	}
	scaleDownInto(op, current, dst)
}

func scaleDownInto(op *ebiten.DrawImageOptions, src, dst *ebiten.Image) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sw := float64(src.Bounds().Dx())
	sh := float64(src.Bounds().Dy())
	tw := float64(dst.Bounds().Dx())
	th := float64(dst.Bounds().Dy())
	op.GeoM.Scale(tw/sw, th/sh)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (f *BlurFilter) Padding() int { return f.Radius }

// DropShadowFilter renders a blurred, offset, tinted copy of src's alpha
// behind the original (spec §4 "Effect Pipeline": "blur, drop-shadow,
// color matrix, custom shader"). Not present in the teacher, built from
// the teacher's BlurFilter + its tint-shader idiom combined.
type DropShadowFilter struct {
	Color      Color
	OffsetX, OffsetY float64
	BlurRadius float64

	blur     *BlurFilter
	tintOp   ebiten.DrawRectShaderOptions
	uniforms map[string]any
}

func NewDropShadowFilter(c Color, dx, dy, blurRadius float64) *DropShadowFilter {
	return &DropShadowFilter{
		Color: c, OffsetX: dx, OffsetY: dy, BlurRadius: blurRadius,
		blur:     NewBlurFilter(blurRadius),
		uniforms: map[string]any{},
	}
}

func (f *DropShadowFilter) Apply(src, dst *ebiten.Image) {
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	shadowShape := ebiten.NewImage(w, h)
	defer shadowShape.Deallocate()
	shadowShape.DrawImage(src, nil)

	blurred := ebiten.NewImage(w, h)
	defer blurred.Deallocate()
	f.blur.Apply(shadowShape, blurred)

	shader := ensureTintShader()
	f.uniforms["TintColor"] = [4]float32{float32(f.Color.R), float32(f.Color.G), float32(f.Color.B), float32(f.Color.A)}
	f.uniforms["Offset"] = [2]float32{float32(f.OffsetX), float32(f.OffsetY)}
	f.tintOp.Images[0] = blurred
	f.tintOp.Uniforms = f.uniforms
	dst.DrawRectShader(w, h, shader, &f.tintOp)

	var op ebiten.DrawImageOptions
	dst.DrawImage(src, &op)
}

func (f *DropShadowFilter) Padding() int {
	pad := int(math.Ceil(f.BlurRadius))
	ox, oy := int(math.Ceil(math.Abs(f.OffsetX))), int(math.Ceil(math.Abs(f.OffsetY)))
	if ox > pad {
		pad = ox
	}
	if oy > pad {
		pad = oy
	}
	return pad
}

// CustomShaderFilter runs a user-supplied Kage shader over src — spec
// §4.6 "effects" includes arbitrary custom shaders in the filter chain.
type CustomShaderFilter struct {
	Shader   *ebiten.Shader
	Uniforms map[string]any
	padding  int
	shaderOp ebiten.DrawRectShaderOptions
}

func NewCustomShaderFilter(shader *ebiten.Shader, padding int) *CustomShaderFilter {
	return &CustomShaderFilter{Shader: shader, Uniforms: make(map[string]any), padding: padding}
}

func (f *CustomShaderFilter) Apply(src, dst *ebiten.Image) {
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.Uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), f.Shader, &f.shaderOp)
}

func (f *CustomShaderFilter) Padding() int { return f.padding }

// filterChainPadding sums a chain's per-filter padding: "the initial
// offscreen layer is sized to accommodate the sum of all filters'
// Padding() values" — cumulative padding accounting (spec §4, Effect
// Pipeline).
func filterChainPadding(filters []ImageFilter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// applyFilterChain runs filters over src, ping-ponging between pooled
// scratch images, and returns the image holding the final result. The
// caller owns the returned image and must Release it via pool once done
// (unless it is src itself, in which case nothing was acquired).
func applyFilterChain(filters []ImageFilter, src *ebiten.Image, pool *renderTexturePool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var spare *ebiten.Image
	for _, f := range filters {
		next := spare
		if next == nil {
			next = pool.Acquire(w, h)
		} else {
			next.Clear()
		}
		f.Apply(current, next)
		spare = nil
		if current != src {
			spare = current
		}
		current = next
	}
	pool.Release(spare)
	return current
}

// renderTexturePool manages reusable offscreen ebiten.Images keyed by
// power-of-two dimensions, so repeated per-frame effect/mask/composition
// layers don't allocate GPU textures every frame. Adapted verbatim from
// the teacher's rendertarget.go.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

func poolKey(w, h int) uint64 { return uint64(w)<<32 | uint64(h) }

func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw, ph := nextPowerOfTwo(w), nextPowerOfTwo(h)
	key := poolKey(pw, ph)
	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}
	return ebiten.NewImageWithOptions(image.Rect(0, 0, pw, ph), &ebiten.NewImageOptions{Unmanaged: true})
}

func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
