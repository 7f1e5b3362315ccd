package lottie

import "github.com/kinescope-engine/kinescope"

// Element adapts a Player to kinescope.Element, letting a scene-builder
// embed a Bodymovin animation as an ordinary node (spec §4.5 "Lottie: see
// §4.6"). Lives in this package rather than the root one because Player
// depends on kinescope's animation/vector types — the root package can't
// import lottie back without a cycle, so the adapter has to sit on this
// side of the dependency instead.
type Element struct {
	Player *Player

	localTime float64
}

// NewElement wraps player for embedding inside a kinescope node tree.
func NewElement(player *Player) *Element {
	return &Element{Player: player}
}

func (e *Element) Update(t, duration float64) { e.localTime = t }

// Measure reports the animation's native composition size, letting Auto
// boxes size to it like any other intrinsic-content element.
func (e *Element) Measure(knownWidth, knownHeight float64, knownWidthOK, knownHeightOK bool) kinescope.Size {
	return kinescope.Size{Width: e.Player.Anim.Width, Height: e.Player.Anim.Height}
}

// Render draws the animation into a pooled offscreen layer sized to the
// node's box, scaled uniformly from the composition's native resolution
// (a Lottie composition always fills its box, the same as Composition's
// nested-Director content, rather than applying an Image/Video-style
// object-fit mode).
func (e *Element) Render(canvas kinescope.Canvas, ctx *kinescope.RenderContext) {
	rect := ctx.Node.LayoutRect
	animW, animH := e.Player.Anim.Width, e.Player.Anim.Height
	if animW <= 0 || animH <= 0 || rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	sx := rect.Width / animW
	sy := rect.Height / animH

	layer := canvas.PushLayer(int(rect.Width), int(rect.Height))
	layer.Concat([6]float64{sx, 0, 0, sy, 0, 0})
	e.Player.Render(layer, e.localTime)
	img := layer.PopLayer()

	canvas.Save()
	canvas.Concat([6]float64{1, 0, 0, 1, rect.X, rect.Y})
	canvas.DrawImage(img, ctx.Opacity, kinescope.BlendNormal)
	canvas.Restore()
}
