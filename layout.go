package kinescope

import "math"

// LayoutHooks lets the caller observe constraint failures without the
// solver aborting the pass (spec §7: LayoutOverconstrained is "report via
// hook; layout proceeds with solver's best effort").
type LayoutHooks struct {
	OnOverconstrained func(h NodeHandle, message string)
}

// ComputeLayout runs a single-pass flexbox solver over root's subtree,
// writing each node's Style-resolved box into its LayoutRect, then
// invokes PostLayout on any node whose Element implements it. Matches
// spec §4.3's contract: inputs are (W, H) plus the style tree and measure
// callbacks; output is per-node {x, y, width, height} in logical pixels,
// origin top-left, Y down.
func ComputeLayout(a *Arena, root NodeHandle, viewport Size, hooks *LayoutHooks) {
	if hooks == nil {
		hooks = &LayoutHooks{}
	}
	rootRect := Rect{0, 0, viewport.Width, viewport.Height}
	n, err := a.Get(root)
	if err != nil {
		return
	}
	n.LayoutRect = rootRect
	layoutChildren(a, root, rootRect, hooks)
	postLayoutWalk(a, root, hooks)
}

func postLayoutWalk(a *Arena, h NodeHandle, hooks *LayoutHooks) {
	n, err := a.Get(h)
	if err != nil {
		return
	}
	if pl, ok := n.Element.(PostLayouter); ok {
		pl.PostLayout(n.LayoutRect)
	}
	for _, c := range n.children {
		postLayoutWalk(a, c, hooks)
	}
}

// flexItem is working state for one child during a single flex layout
// pass; mirrors the classic CSS flexbox algorithm's "flex line" bookkeeping
// but restricted to a single line (no wrapping — spec's element set never
// exercises multi-line flex, so this stays the size a one-pass solver
// needs instead of a general-purpose grid/flex engine).
type flexItem struct {
	handle             NodeHandle
	style              Style
	basis              float64
	grow, shrink       float64
	minMain, maxMain   float64
	crossSize          float64
	hasCrossSize       bool
	mainSize           float64
	mainPos            float64
	crossPos           float64
	marginMainStart    float64
	marginMainEnd      float64
	marginCrossStart   float64
	marginCrossEnd     float64
}

func layoutChildren(a *Arena, parent NodeHandle, contentBox Rect, hooks *LayoutHooks) {
	p, err := a.Get(parent)
	if err != nil {
		return
	}
	style := p.Style
	insetBox := applyPadding(contentBox, style.Padding)

	var flowChildren, absoluteChildren []NodeHandle
	for _, c := range p.children {
		cn, err := a.Get(c)
		if err != nil {
			continue
		}
		if cn.Style.Positioned {
			absoluteChildren = append(absoluteChildren, c)
		} else {
			flowChildren = append(flowChildren, c)
		}
	}

	horizontal := style.Direction == FlexRow || style.Direction == FlexRowReverse
	reversed := style.Direction == FlexRowReverse || style.Direction == FlexColumnReverse

	mainAxisSize, crossAxisSize := insetBox.Width, insetBox.Height
	if !horizontal {
		mainAxisSize, crossAxisSize = insetBox.Height, insetBox.Width
	}

	items := make([]*flexItem, 0, len(flowChildren))
	for _, c := range flowChildren {
		items = append(items, buildFlexItem(a, c, horizontal, mainAxisSize, crossAxisSize))
	}

	resolveMainSizes(items, mainAxisSize, style.Gap, hooks, parent)
	resolveCrossSizesAndPositions(a, items, crossAxisSize, style)
	positionMainAxis(items, mainAxisSize, style.Gap, style.Justify, reversed)

	for _, it := range items {
		rect := flexItemRect(it, insetBox, horizontal)
		cn := a.MustGet(it.handle)
		cn.LayoutRect = rect
		layoutChildren(a, it.handle, rect, hooks)
	}

	for _, c := range absoluteChildren {
		rect := absoluteRect(a.MustGet(c).Style, insetBox)
		cn := a.MustGet(c)
		cn.LayoutRect = rect
		layoutChildren(a, c, rect, hooks)
	}
}

func applyPadding(box Rect, pad EdgeInsets) Rect {
	top, _ := pad.Top.Resolve(box.Height)
	right, _ := pad.Right.Resolve(box.Width)
	bottom, _ := pad.Bottom.Resolve(box.Height)
	left, _ := pad.Left.Resolve(box.Width)
	return Rect{
		X:      box.X + left,
		Y:      box.Y + top,
		Width:  math.Max(0, box.Width-left-right),
		Height: math.Max(0, box.Height-top-bottom),
	}
}

func buildFlexItem(a *Arena, h NodeHandle, horizontal bool, mainAxisSize, crossAxisSize float64) *flexItem {
	n := a.MustGet(h)
	s := n.Style

	mainDim, crossDim := s.Width, s.Height
	minMainDim, maxMainDim := s.MinWidth, s.MaxWidth
	if !horizontal {
		mainDim, crossDim = s.Height, s.Width
		minMainDim, maxMainDim = s.MinHeight, s.MaxHeight
	}

	basis, hasBasis := s.FlexBasis.Resolve(mainAxisSize)
	if !hasBasis {
		basis, hasBasis = mainDim.Resolve(mainAxisSize)
	}
	if !hasBasis {
		basis = measureMainAxis(n, horizontal, mainAxisSize, crossAxisSize)
	}

	minMain, hasMin := minMainDim.Resolve(mainAxisSize)
	if !hasMin {
		minMain = 0
	}
	maxMain, hasMax := maxMainDim.Resolve(mainAxisSize)
	if !hasMax {
		maxMain = math.Inf(1)
	}

	crossSize, hasCrossSize := crossDim.Resolve(crossAxisSize)
	if !hasCrossSize {
		if m, ok := n.Element.(Measurer); ok {
			var sz Size
			if horizontal {
				sz = m.Measure(0, crossAxisSize, false, true)
			} else {
				sz = m.Measure(crossAxisSize, 0, true, false)
			}
			crossSize = pick(horizontal, sz.Height, sz.Width)
			hasCrossSize = true
		}
	}

	pStart, pEnd := marginAxis(s.Margin, horizontal, true)
	cStart, cEnd := marginAxis(s.Margin, horizontal, false)

	return &flexItem{
		handle: h, style: s,
		basis: clamp(basis, minMain, maxMain),
		grow: s.FlexGrow, shrink: s.FlexShrink,
		minMain: minMain, maxMain: maxMain,
		crossSize: crossSize, hasCrossSize: hasCrossSize,
		marginMainStart: pStart, marginMainEnd: pEnd,
		marginCrossStart: cStart, marginCrossEnd: cEnd,
	}
}

func measureMainAxis(n *Node, horizontal bool, mainAxisSize, crossAxisSize float64) float64 {
	m, ok := n.Element.(Measurer)
	if !ok {
		return 0
	}
	var sz Size
	if horizontal {
		sz = m.Measure(0, crossAxisSize, false, true)
	} else {
		sz = m.Measure(crossAxisSize, 0, true, false)
	}
	return pick(horizontal, sz.Width, sz.Height)
}

func marginAxis(m EdgeInsets, horizontal, isMain bool) (start, end float64) {
	if horizontal == isMain {
		s, _ := m.Left.Resolve(0)
		e, _ := m.Right.Resolve(0)
		return s, e
	}
	s, _ := m.Top.Resolve(0)
	e, _ := m.Bottom.Resolve(0)
	return s, e
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// resolveMainSizes runs the grow/shrink distribution pass: if the sum of
// basis sizes is under the available main axis space, surplus is
// distributed by FlexGrow weight; if over, deficit is distributed by
// FlexShrink weight (weighted additionally by basis, per the CSS
// flexbox spec's shrink formula).
func resolveMainSizes(items []*flexItem, mainAxisSize, gap float64, hooks *LayoutHooks, parent NodeHandle) {
	total := 0.0
	for _, it := range items {
		it.mainSize = it.basis
		total += it.basis + it.marginMainStart + it.marginMainEnd
	}
	if len(items) > 1 {
		total += gap * float64(len(items)-1)
	}
	remaining := mainAxisSize - total

	if remaining > 1e-9 {
		growSum := 0.0
		for _, it := range items {
			growSum += it.grow
		}
		if growSum > 0 {
			for _, it := range items {
				share := remaining * (it.grow / growSum)
				it.mainSize = clamp(it.mainSize+share, it.minMain, it.maxMain)
			}
		}
	} else if remaining < -1e-9 {
		shrinkSum := 0.0
		for _, it := range items {
			shrinkSum += it.shrink * it.basis
		}
		if shrinkSum > 0 {
			deficit := -remaining
			overflowed := false
			for _, it := range items {
				weight := it.shrink * it.basis
				share := deficit * (weight / shrinkSum)
				newSize := it.mainSize - share
				if newSize < it.minMain {
					overflowed = true
					newSize = it.minMain
				}
				it.mainSize = newSize
			}
			if overflowed && hooks.OnOverconstrained != nil {
				hooks.OnOverconstrained(parent, "flex children could not shrink below their minimum size")
			}
		}
	}
}

func resolveCrossSizesAndPositions(a *Arena, items []*flexItem, crossAxisSize float64, style Style) {
	for _, it := range items {
		align := style.Align
		if !it.hasCrossSize {
			switch align {
			case AlignStretch:
				it.crossSize = math.Max(0, crossAxisSize-it.marginCrossStart-it.marginCrossEnd)
			default:
				it.crossSize = 0
			}
		}
		switch align {
		case AlignStart, AlignStretch, AlignBaseline:
			it.crossPos = it.marginCrossStart
		case AlignEnd:
			it.crossPos = crossAxisSize - it.crossSize - it.marginCrossEnd
		case AlignCenter:
			it.crossPos = (crossAxisSize-it.crossSize)/2 + it.marginCrossStart/2 - it.marginCrossEnd/2
		}
	}
}

func positionMainAxis(items []*flexItem, mainAxisSize, gap float64, justify Justify, reversed bool) {
	n := len(items)
	if n == 0 {
		return
	}
	used := 0.0
	for _, it := range items {
		used += it.mainSize + it.marginMainStart + it.marginMainEnd
	}
	used += gap * float64(n-1)
	free := math.Max(0, mainAxisSize-used)

	var leading, between float64
	switch justify {
	case JustifyEnd:
		leading = free
	case JustifyCenter:
		leading = free / 2
	case JustifySpaceBetween:
		if n > 1 {
			between = free / float64(n-1)
		}
	case JustifySpaceAround:
		if n > 0 {
			between = free / float64(n)
			leading = between / 2
		}
	case JustifySpaceEvenly:
		between = free / float64(n+1)
		leading = between
	}

	pos := leading
	order := items
	if reversed {
		order = make([]*flexItem, n)
		for i, it := range items {
			order[n-1-i] = it
		}
	}
	for i, it := range order {
		pos += it.marginMainStart
		it.mainPos = pos
		pos += it.mainSize + it.marginMainEnd + gap
		if i < n-1 {
			pos += between
		}
	}
}

func flexItemRect(it *flexItem, container Rect, horizontal bool) Rect {
	if horizontal {
		return Rect{
			X: container.X + it.mainPos, Y: container.Y + it.crossPos,
			Width: it.mainSize, Height: it.crossSize,
		}
	}
	return Rect{
		X: container.X + it.crossPos, Y: container.Y + it.mainPos,
		Width: it.crossSize, Height: it.mainSize,
	}
}

func absoluteRect(s Style, container Rect) Rect {
	left, hasLeft := s.Inset.Left.Resolve(container.Width)
	right, hasRight := s.Inset.Right.Resolve(container.Width)
	top, hasTop := s.Inset.Top.Resolve(container.Height)
	bottom, hasBottom := s.Inset.Bottom.Resolve(container.Height)

	width, hasWidth := s.Width.Resolve(container.Width)
	height, hasHeight := s.Height.Resolve(container.Height)

	var x, w float64
	switch {
	case hasLeft && hasRight:
		x, w = left, math.Max(0, container.Width-left-right)
	case hasLeft:
		x, w = left, pickDefault(hasWidth, width, 0)
	case hasRight:
		w = pickDefault(hasWidth, width, 0)
		x = container.Width - right - w
	default:
		x, w = 0, pickDefault(hasWidth, width, 0)
	}

	var y, h float64
	switch {
	case hasTop && hasBottom:
		y, h = top, math.Max(0, container.Height-top-bottom)
	case hasTop:
		y, h = top, pickDefault(hasHeight, height, 0)
	case hasBottom:
		h = pickDefault(hasHeight, height, 0)
		y = container.Height - bottom - h
	default:
		y, h = 0, pickDefault(hasHeight, height, 0)
	}

	if s.AspectRatio > 0 {
		if hasWidth && !hasHeight {
			h = w / s.AspectRatio
		} else if hasHeight && !hasWidth {
			w = h * s.AspectRatio
		}
	}

	return Rect{X: container.X + x, Y: container.Y + y, Width: w, Height: h}
}

func pickDefault(ok bool, v, def float64) float64 {
	if ok {
		return v
	}
	return def
}
