package kinescope

import "github.com/hajimehoshi/ebiten/v2"

// CompositionElement embeds a fully independent nested Director — its own
// Arena, timeline, and audio tracks — and maps its rendered output into
// the parent's coordinate space (spec §4.5 "Composition: owns a nested
// Director; maps time and viewport into the parent space").
//
// Nested composition playback advances on the parent's clock, offset by
// the composition's own start time, exactly like a precomp layer in the
// Lottie model (spec §4.6 "Timing alignment") generalized to a full
// nested Director rather than just a resolved shape tree.
type CompositionElement struct {
	Nested    *Director
	StartTime float64
	// Size is the nested Director's own render resolution; the parent
	// node's LayoutRect gives the box it must be scaled to fit.
	Size Size

	frame *ebiten.Image
}

// NewCompositionElement wraps a nested Director for embedding inside a
// parent scene's node tree.
func NewCompositionElement(nested *Director, startTime float64) *CompositionElement {
	return &CompositionElement{
		Nested:    nested,
		StartTime: startTime,
		Size:      Size{Width: float64(nested.Width), Height: float64(nested.Height)},
	}
}

// Update renders the nested Director's frame for local time t (spec:
// "updating/rendering it with time tau = t - composition.start"). The
// frame is produced here rather than in Render because RenderFrame can
// fail and Render has no error return; any render failure here leaves
// the composition's last good frame in place, mirroring the Preview
// policy for DecoderFailure.
func (c *CompositionElement) Update(t, duration float64) {
	tau := t - c.StartTime
	if tau < 0 {
		return
	}
	img, err := c.Nested.RenderFrame(tau)
	if err != nil {
		return
	}
	c.frame = img
}

func (c *CompositionElement) Measure(knownWidth, knownHeight float64, knownWidthOK, knownHeightOK bool) Size {
	return c.Size
}

// Render scales the nested frame to fill the node's box exactly (a
// composition always fills its box, unlike Image/Video's object-fit
// modes, since its content is a full rendered sub-movie rather than an
// arbitrary-aspect asset).
func (c *CompositionElement) Render(canvas Canvas, ctx *RenderContext) {
	if c.frame == nil {
		return
	}
	rect := ctx.Node.LayoutRect
	if c.Size.Width == 0 || c.Size.Height == 0 || rect.Width == 0 || rect.Height == 0 {
		return
	}
	sx := rect.Width / c.Size.Width
	sy := rect.Height / c.Size.Height

	canvas.Save()
	canvas.Concat([6]float64{1, 0, 0, 1, rect.X, rect.Y})
	canvas.Concat([6]float64{sx, 0, 0, sy, 0, 0})
	canvas.DrawImage(c.frame, ctx.Opacity, BlendNormal)
	canvas.Restore()
}

// MixAudio returns the nested Director's audio for local time t, or nil
// before StartTime. Director.MixAudio adds it to the parent mix for every
// composition in an active scene; AudioMixer.Nested is not involved.
func (c *CompositionElement) MixAudio(t float64) []float32 {
	tau := t - c.StartTime
	if tau < 0 {
		return nil
	}
	return c.Nested.MixAudio(tau)
}
