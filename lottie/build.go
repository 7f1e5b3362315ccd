package lottie

import "github.com/kinescope-engine/kinescope"

// renderShapeItems walks a shapes array in reverse declaration order,
// folding path-producing siblings into an accumulator that later
// fill/stroke/modifier items consume — spec §4.6 "shape-array
// reverse-draw-order with fill/stroke fold-onto-prior-siblings".
func renderShapeItems(canvas kinescope.Canvas, items []Shape, frame, fps float64, exprs *ExprEngine) {
	var acc []BezierShapeValue

	for i := len(items) - 1; i >= 0; i-- {
		s := items[i]
		if bool(s.Hidden) {
			continue
		}
		switch s.Type {
		case ShapeGroup:
			canvas.Save()
			gt := findGroupTransform(s.Items)
			m := transformMatrix(gt, frame, fps, exprs, false)
			canvas.Concat([6]float64(m))
			renderShapeItems(canvas, s.Items, frame, fps, exprs)
			canvas.Restore()

		case ShapePath:
			if s.Path != nil {
				acc = append(acc, s.Path.Eval(frame))
			}
		case ShapeEllipse:
			acc = append(acc, EllipseShape(s, frame))
		case ShapeRect:
			acc = append(acc, RectShape(s, frame))
		case ShapeStar:
			acc = append(acc, StarShape(s, frame))

		case ShapeTrim:
			if s.Trim != nil {
				acc = applyTrimToAll(acc, *s.Trim, frame)
			}
		case ShapeRoundCorner:
			if s.RoundCorner != nil {
				acc = mapShapes(acc, func(v BezierShapeValue) BezierShapeValue { return s.RoundCorner.Apply(v, frame) })
			}
		case ShapeZigZag:
			if s.ZigZag != nil {
				acc = mapShapes(acc, func(v BezierShapeValue) BezierShapeValue { return s.ZigZag.Apply(v, frame) })
			}
		case ShapePuckerBloat:
			if s.PuckerBloat != nil {
				acc = mapShapes(acc, func(v BezierShapeValue) BezierShapeValue { return s.PuckerBloat.Apply(v, frame) })
			}
		case ShapeTwist:
			if s.Twist != nil {
				acc = mapShapes(acc, func(v BezierShapeValue) BezierShapeValue { return s.Twist.Apply(v, frame) })
			}
		case ShapeMerge:
			if s.Merge != nil && len(acc) > 1 {
				path := MergePaths(*s.Merge, acc)
				acc = []BezierShapeValue{{mergedPath: path}}
			}
		case ShapeRepeater:
			if s.Repeater != nil {
				acc = applyRepeater(*s.Repeater, acc, frame)
			}

		case ShapeFill:
			if s.Fill != nil {
				paint := s.Fill.ResolvePaint(frame)
				for _, v := range acc {
					canvas.FillPath(v.ToBezierPath(), paint, s.Fill.FillRule == 2)
				}
			}
		case ShapeGradFill:
			if s.GradFill != nil {
				paint := s.GradFill.ResolvePaint(frame)
				for _, v := range acc {
					canvas.FillPath(v.ToBezierPath(), paint, false)
				}
			}
		case ShapeStroke, ShapeGradStroke:
			if s.Stroke != nil {
				paint, style := s.Stroke.ResolvePaint(frame)
				for _, v := range acc {
					canvas.StrokePath(v.ToBezierPath(), paint, style)
				}
			}
		}
	}
}

func findGroupTransform(items []Shape) *LayerTransform {
	for _, it := range items {
		if it.Type == ShapeTransform && it.Transform != nil {
			return it.Transform
		}
	}
	return nil
}

func mapShapes(in []BezierShapeValue, f func(BezierShapeValue) BezierShapeValue) []BezierShapeValue {
	out := make([]BezierShapeValue, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func applyTrimToAll(in []BezierShapeValue, t TrimPathsData, frame float64) []BezierShapeValue {
	start, end := t.window(frame)
	if t.Mode == 2 { // sequential: each shape gets its own slice of [0,1]
		n := len(in)
		if n == 0 {
			return in
		}
		span := (end - start)
		if span < 0 {
			span += 1
		}
		out := make([]BezierShapeValue, 0, n)
		for i, v := range in {
			s := euclideanMod(start+span*float64(i)/float64(n), 1)
			e := euclideanMod(start+span*float64(i+1)/float64(n), 1)
			out = append(out, polylineToShape(ApplyTrim(v, s, e)))
		}
		return out
	}
	out := make([]BezierShapeValue, len(in))
	for i, v := range in {
		out[i] = polylineToShape(ApplyTrim(v, start, end))
	}
	return out
}

// polylineToShape wraps a trimmed straight-segment BezierPath back into a
// BezierShapeValue (zero tangents — the trim already flattened curvature)
// so it can keep flowing through the same accumulator as untrimmed shapes.
func polylineToShape(p *kinescope.BezierPath) BezierShapeValue {
	var out BezierShapeValue
	for _, op := range p.Ops {
		switch op.Kind {
		case kinescope.PathMoveTo, kinescope.PathLineTo:
			out.Vertices = append(out.Vertices, BezierVertex{Point: op.P})
		case kinescope.PathClose:
			out.Closed = true
		}
	}
	return out
}

func applyRepeater(r RepeaterData, in []BezierShapeValue, frame float64) []BezierShapeValue {
	instances := r.Instances(frame)
	if len(instances) == 0 {
		return in
	}
	var out []BezierShapeValue
	for _, tr := range instances {
		m := repeaterMatrix(tr)
		for _, v := range in {
			out = append(out, transformShapeValue(v, m))
		}
	}
	return out
}

// layerLocalFrame maps a composition-level frame into a layer's own local
// frame, honoring its start time, in/out trim and time stretch (spec §4.6
// "local-time" pipeline step).
func layerLocalFrame(l Layer, frame float64) (local float64, visible bool) {
	stretch := l.TimeStretch
	if stretch == 0 {
		stretch = 1
	}
	if frame < l.InPoint || frame >= l.OutPoint {
		return 0, false
	}
	return (frame - l.StartTime) / stretch, true
}
