package kinescope

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// TextAlign selects horizontal alignment within the node's box.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// GlyphAnimator animates a contiguous run of glyphs [StartIndex, EndIndex)
// over [Delay, Delay+Duration) of the text element's local clock (spec
// §4.5 "optional per-glyph animators (opacity, offset, scale, rotation
// over index range)").
type GlyphAnimator struct {
	StartIndex, EndIndex int
	Delay, Duration      float64
	Easing               Easing

	OpacityFrom, OpacityTo float64
	OffsetFrom, OffsetTo   Vec2
	ScaleFrom, ScaleTo     float64
	RotationFrom, RotationTo float64
}

// appliesTo reports whether glyph index i falls in this animator's range.
func (g GlyphAnimator) appliesTo(i int) bool {
	return i >= g.StartIndex && i < g.EndIndex
}

// eval returns this animator's (opacity, offset, scale, rotation) at
// local time t, clamped and eased over [Delay, Delay+Duration].
func (g GlyphAnimator) eval(t float64) (opacity float64, offset Vec2, scale float64, rotation float64) {
	span := g.Duration
	if span <= 0 {
		span = 1e-9
	}
	p := clamp((t-g.Delay)/span, 0, 1)
	p = g.Easing.Apply(p)
	opacity = g.OpacityFrom + (g.OpacityTo-g.OpacityFrom)*p
	offset = Vec2{
		X: g.OffsetFrom.X + (g.OffsetTo.X-g.OffsetFrom.X)*p,
		Y: g.OffsetFrom.Y + (g.OffsetTo.Y-g.OffsetFrom.Y)*p,
	}
	scale = g.ScaleFrom + (g.ScaleTo-g.ScaleFrom)*p
	rotation = g.RotationFrom + (g.RotationTo-g.RotationFrom)*p
	return
}

// TextElement renders shaped rich text via ebiten/v2/text/v2, with an
// auto-shrink pass in PostLayout and optional per-glyph animation (spec
// §4.5 "Text").
type TextElement struct {
	Content     string
	Face        *text.GoTextFace
	Color       Color
	Align       TextAlign
	LineSpacing float64

	// AutoShrink, when true, reduces Face.Size in PostLayout until the
	// measured block fits the node's box, down to MinFontSize.
	AutoShrink  bool
	MinFontSize float64

	GlyphAnimators []GlyphAnimator

	localTime    float64
	measuredSize Size
	blockImage   *ebiten.Image
	blockDirty   bool
}

// NewTextElement builds a text element drawing content with face.
func NewTextElement(content string, face *text.GoTextFace) *TextElement {
	return &TextElement{
		Content: content, Face: face, Color: ColorWhite,
		LineSpacing: faceLineSpacing(face), blockDirty: true,
	}
}

func faceLineSpacing(f *text.GoTextFace) float64 {
	if f == nil {
		return 0
	}
	m := f.Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

func (e *TextElement) Update(t, duration float64) {
	e.localTime = t
}

// Measure reports the shaped text block's intrinsic size at the current
// font size (spec's Measurer extension point).
func (e *TextElement) Measure(knownWidth, knownHeight float64, knownWidthOK, knownHeightOK bool) Size {
	if e.Face == nil || e.Content == "" {
		return Size{}
	}
	w, h := text.Measure(e.Content, e.Face, e.LineSpacing)
	return Size{Width: w, Height: h}
}

// PostLayout shrinks the font size to fit rect when AutoShrink is set,
// without altering the node's box (spec §4.3, §4.5 "auto-shrink in
// post_layout").
func (e *TextElement) PostLayout(rect Rect) {
	if e.Face == nil {
		return
	}
	w, h := text.Measure(e.Content, e.Face, e.LineSpacing)
	e.measuredSize = Size{Width: w, Height: h}
	if !e.AutoShrink || rect.Width <= 0 || rect.Height <= 0 {
		e.blockDirty = true
		return
	}
	minSize := e.MinFontSize
	if minSize <= 0 {
		minSize = 1
	}
	for (w > rect.Width || h > rect.Height) && e.Face.Size > minSize {
		scale := math.Min(rect.Width/math.Max(w, 1), rect.Height/math.Max(h, 1))
		newSize := math.Max(minSize, e.Face.Size*scale*0.98)
		if newSize >= e.Face.Size {
			break
		}
		e.Face.Size = newSize
		e.LineSpacing = faceLineSpacing(e.Face)
		w, h = text.Measure(e.Content, e.Face, e.LineSpacing)
	}
	e.measuredSize = Size{Width: w, Height: h}
	e.blockDirty = true
}

func (e *TextElement) alignOffset(rect Rect) float64 {
	switch e.Align {
	case TextAlignCenter:
		return (rect.Width - e.measuredSize.Width) / 2
	case TextAlignRight:
		return rect.Width - e.measuredSize.Width
	default:
		return 0
	}
}

func (e *TextElement) Render(canvas Canvas, ctx *RenderContext) {
	if e.Face == nil || e.Content == "" {
		return
	}
	rect := ctx.Node.LayoutRect
	if len(e.GlyphAnimators) == 0 {
		e.renderBlock(canvas, ctx, rect)
		return
	}
	e.renderGlyphs(canvas, ctx, rect)
}

// renderBlock renders the whole string to a cached image and draws it as
// a unit, mirroring the teacher's emitTTFTextCommand fast path.
func (e *TextElement) renderBlock(canvas Canvas, ctx *RenderContext, rect Rect) {
	w := int(e.measuredSize.Width) + 1
	h := int(e.measuredSize.Height) + 1
	if w <= 0 || h <= 0 {
		return
	}
	if e.blockDirty || e.blockImage == nil {
		if e.blockImage != nil {
			b := e.blockImage.Bounds()
			if b.Dx() != w || b.Dy() != h {
				e.blockImage = ebiten.NewImage(w, h)
			} else {
				e.blockImage.Clear()
			}
		} else {
			e.blockImage = ebiten.NewImage(w, h)
		}
		op := &text.DrawOptions{}
		op.ColorScale.Scale(float32(e.Color.R), float32(e.Color.G), float32(e.Color.B), float32(e.Color.A))
		op.LineSpacing = e.LineSpacing
		text.Draw(e.blockImage, e.Content, e.Face, op)
		e.blockDirty = false
	}
	canvas.Save()
	canvas.Concat([6]float64{1, 0, 0, 1, rect.X + e.alignOffset(rect), rect.Y})
	canvas.DrawImage(e.blockImage, ctx.Opacity, BlendNormal)
	canvas.Restore()
}

// renderGlyphs draws one rune at a time so GlyphAnimators can offset,
// scale, rotate, and fade individual glyphs. Each rune is measured from
// the start of the string to compute its cumulative advance, trading
// quadratic measurement cost for using only the teacher's confirmed
// text.Measure API rather than a per-glyph advance call this codebase
// has no grounded example of.
func (e *TextElement) renderGlyphs(canvas Canvas, ctx *RenderContext, rect Rect) {
	runes := []rune(e.Content)
	baseX := rect.X + e.alignOffset(rect)
	var prevAdvance float64
	for i, r := range runes {
		prefix := string(runes[:i+1])
		w, _ := text.Measure(prefix, e.Face, e.LineSpacing)
		glyphX := prevAdvance
		prevAdvance = w

		opacity, offset, scale, rotation := 1.0, Vec2{}, 1.0, 0.0
		for _, anim := range e.GlyphAnimators {
			if anim.appliesTo(i) {
				opacity, offset, scale, rotation = anim.eval(e.localTime)
			}
		}
		if opacity <= 0 {
			continue
		}

		glyph := ebiten.NewImage(64, 64)
		op := &text.DrawOptions{}
		op.ColorScale.Scale(float32(e.Color.R), float32(e.Color.G), float32(e.Color.B), float32(e.Color.A))
		op.LineSpacing = e.LineSpacing
		text.Draw(glyph, string(r), e.Face, op)

		sin, cos := math.Sincos(rotation * math.Pi / 180)
		local := [6]float64{
			scale * cos, scale * sin, -scale * sin, scale * cos,
			baseX + glyphX + offset.X, rect.Y + offset.Y,
		}
		canvas.Save()
		canvas.Concat(local)
		canvas.DrawImage(glyph, ctx.Opacity*opacity, BlendNormal)
		canvas.Restore()
	}
}
