package kinescope

// BoxElement draws a rectangle with background, border, corner radius,
// and an unblurred drop shadow (spec §4.5 "Box"). It does not clip its
// subtree: Style.Overflow is not consulted when rendering.
// It carries no state of its own — all drawable geometry lives on the
// owning Node's Style/LayoutRect, reached via ctx.Node.
type BoxElement struct{}

func NewBoxElement() *BoxElement { return &BoxElement{} }

func (b *BoxElement) Update(t, duration float64) {}

func (b *BoxElement) Render(canvas Canvas, ctx *RenderContext) {
	n := ctx.Node
	rect := n.LayoutRect
	style := n.Style

	if style.ShadowColor.A > 0 && style.ShadowBlur >= 0 {
		shadowRect := Rect{
			X: rect.X + style.ShadowOffset.X, Y: rect.Y + style.ShadowOffset.Y,
			Width: rect.Width, Height: rect.Height,
		}
		drawRoundedRect(canvas, shadowRect, style.BorderRadius, Paint{Kind: PaintSolid, Solid: style.ShadowColor, Opacity: ctx.Opacity})
	}

	if style.Background.A > 0 {
		drawRoundedRect(canvas, rect, style.BorderRadius, Paint{Kind: PaintSolid, Solid: style.Background, Opacity: ctx.Opacity})
	}

	if style.BorderWidth > 0 && style.BorderColor.A > 0 {
		p := roundedRectPath(rect, style.BorderRadius)
		canvas.StrokePath(p, Paint{Kind: PaintSolid, Solid: style.BorderColor, Opacity: ctx.Opacity}, StrokeStyle{Width: style.BorderWidth})
	}
}

func drawRoundedRect(canvas Canvas, rect Rect, radius float64, paint Paint) {
	p := roundedRectPath(rect, radius)
	canvas.FillPath(p, paint, false)
}

// roundedRectPath builds a BezierPath for a rectangle with equal corner
// radii on all four corners, using circular-arc-approximating cubic
// Bezier handles (the standard magic constant 0.5522847498 for a
// quarter-circle, reused throughout the Lottie shape pipeline for Ellipse
// and RoundCorners too).
func roundedRectPath(rect Rect, radius float64) *BezierPath {
	r := radius
	maxR := rect.Width / 2
	if rect.Height/2 < maxR {
		maxR = rect.Height / 2
	}
	if r > maxR {
		r = maxR
	}
	if r < 0 {
		r = 0
	}
	x, y, w, h := rect.X, rect.Y, rect.Width, rect.Height
	p := &BezierPath{}
	if r == 0 {
		p.MoveTo(x, y)
		p.LineTo(x+w, y)
		p.LineTo(x+w, y+h)
		p.LineTo(x, y+h)
		p.Close()
		return p
	}
	const k = 0.5522847498
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.CubicTo(x+w-r+k*r, y, x+w, y+r-k*r, x+w, y+r)
	p.LineTo(x+w, y+h-r)
	p.CubicTo(x+w, y+h-r+k*r, x+w-r+k*r, y+h, x+w-r, y+h)
	p.LineTo(x+r, y+h)
	p.CubicTo(x+r-k*r, y+h, x, y+h-r+k*r, x, y+h-r)
	p.LineTo(x, y+r)
	p.CubicTo(x, y+r-k*r, x+r-k*r, y, x+r, y)
	p.Close()
	return p
}
