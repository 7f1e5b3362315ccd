package kinescope

// VectorElement draws a single static Bezier path with a fill and/or
// stroke (spec §4.5 "Vector: Static path rendering."). Unlike the Lottie
// element, its geometry never animates frame-to-frame.
type VectorElement struct {
	Path   *BezierPath
	Fill   *Paint
	Stroke *Paint
	StrokeStyle StrokeStyle
	EvenOdd bool
}

func NewVectorElement(path *BezierPath) *VectorElement {
	return &VectorElement{Path: path}
}

func (v *VectorElement) Update(t, duration float64) {}

func (v *VectorElement) Render(canvas Canvas, ctx *RenderContext) {
	if v.Path == nil {
		return
	}
	rect := ctx.Node.LayoutRect
	canvas.Save()
	canvas.Concat([6]float64{1, 0, 0, 1, rect.X, rect.Y})
	if v.Fill != nil {
		p := *v.Fill
		p.Opacity = effectiveOpacity(p) * ctx.Opacity
		canvas.FillPath(v.Path, p, v.EvenOdd)
	}
	if v.Stroke != nil {
		p := *v.Stroke
		p.Opacity = effectiveOpacity(p) * ctx.Opacity
		canvas.StrokePath(v.Path, p, v.StrokeStyle)
	}
	canvas.Restore()
}
