package kinescope

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ObjectFit selects how ImageElement fits its source into its box (spec
// §4.5 "Image: Object-fit (cover/contain/fill)").
type ObjectFit uint8

const (
	ObjectFitFill ObjectFit = iota
	ObjectFitContain
	ObjectFitCover
)

// ImageElement draws a static raster image, object-fit into its node's
// computed box. PostLayout recomputes the source sub-rect once the box is
// known, so Render itself stays a plain draw.
type ImageElement struct {
	AssetKey string
	Fit      ObjectFit

	img        *ebiten.Image
	srcRect    image.Rectangle
	drawOffset Vec2
	drawScale  Vec2
}

func NewImageElement(assetKey string, fit ObjectFit) *ImageElement {
	return &ImageElement{AssetKey: assetKey, Fit: fit}
}

func (e *ImageElement) Update(t, duration float64) {}

// Measure reports the image's intrinsic pixel size when a dimension is
// Auto, satisfying the Measurer extension point.
func (e *ImageElement) Measure(knownWidth, knownHeight float64, knownWidthOK, knownHeightOK bool) Size {
	if e.img == nil {
		return Size{}
	}
	b := e.img.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// PostLayout derives the source sub-rect and draw transform implementing
// object-fit, without altering the node's box (spec §4.3:
// "post_layout must not alter the node's computed box").
func (e *ImageElement) PostLayout(rect Rect) {
	if e.img == nil {
		e.srcRect = image.Rectangle{}
		return
	}
	b := e.img.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())
	if sw == 0 || sh == 0 || rect.Width == 0 || rect.Height == 0 {
		return
	}
	switch e.Fit {
	case ObjectFitFill:
		e.srcRect = b
		e.drawScale = Vec2{rect.Width / sw, rect.Height / sh}
		e.drawOffset = Vec2{}
	case ObjectFitContain:
		scale := math.Min(rect.Width/sw, rect.Height/sh)
		e.srcRect = b
		e.drawScale = Vec2{scale, scale}
		e.drawOffset = Vec2{(rect.Width - sw*scale) / 2, (rect.Height - sh*scale) / 2}
	case ObjectFitCover:
		scale := math.Max(rect.Width/sw, rect.Height/sh)
		e.srcRect = b
		e.drawScale = Vec2{scale, scale}
		e.drawOffset = Vec2{(rect.Width - sw*scale) / 2, (rect.Height - sh*scale) / 2}
	}
}

func (e *ImageElement) Render(canvas Canvas, ctx *RenderContext) {
	if ctx.Assets != nil && e.img == nil {
		e.img = ctx.Assets.Image(e.AssetKey)
		e.PostLayout(ctx.Node.LayoutRect)
	}
	if e.img == nil {
		return
	}
	canvas.Save()
	canvas.Concat([6]float64{1, 0, 0, 1, ctx.Node.LayoutRect.X, ctx.Node.LayoutRect.Y})
	canvas.Concat([6]float64{e.drawScale.X, 0, 0, e.drawScale.Y, e.drawOffset.X, e.drawOffset.Y})
	canvas.DrawImageRect(e.img, e.srcRect, ctx.Opacity, BlendNormal)
	canvas.Restore()
}
