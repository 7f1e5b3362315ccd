package kinescope

// EffectElement applies a filter chain to exactly one child subtree,
// rendering it through an offscreen layer (spec §4.5 "Effect: owns one
// child; renders it to an offscreen layer, then runs the filter chain").
//
// An EffectElement "layout-steals" its target: ApplyEffectTo reparents
// the target node underneath a fresh node carrying this element, copies
// the target's Style so layout treats the wrapper as occupying the same
// box, and forces the (now sole) child to 100%/100% so it fills that box
// exactly.
type EffectElement struct {
	Filters []ImageFilter
}

// NewEffectElement builds an effect wrapper with the given filter chain,
// applied in order (spec's "Effect Pipeline" chain semantics).
func NewEffectElement(filters ...ImageFilter) *EffectElement {
	return &EffectElement{Filters: filters}
}

func (e *EffectElement) Update(t, duration float64) {}

// OwnsChildRendering tells the director not to walk this node's children
// itself: Render already drew them into the offscreen layer above.
func (e *EffectElement) OwnsChildRendering() bool { return true }

// Render draws the element's single child into a pooled offscreen layer
// sized to the node's box plus the filter chain's cumulative padding,
// runs the chain, then composites the result back at the node's origin.
// The child is drawn here (not by the director's normal recursive walk)
// because the filter needs the fully-rendered child pixels before they
// land on the parent canvas.
func (e *EffectElement) Render(canvas Canvas, ctx *RenderContext) {
	n := ctx.Node
	if len(n.children) == 0 {
		return
	}
	rect := n.LayoutRect
	pad := filterChainPadding(e.Filters)
	w := int(rect.Width) + pad*2
	h := int(rect.Height) + pad*2
	if w <= 0 || h <= 0 {
		return
	}

	layer := canvas.PushLayer(w, h)
	layer.Concat([6]float64{1, 0, 0, 1, float64(pad), float64(pad)})
	renderNodeSubtree(ctx.Arena, n.children[0], layer, ctx)
	src := layer.PopLayer()

	pool := ctx.effectPool()
	dst := applyFilterChain(e.Filters, src, pool)
	defer pool.Release(dst)
	if dst != src {
		pool.Release(src)
	}

	canvas.Save()
	canvas.Concat([6]float64{1, 0, 0, 1, rect.X - float64(pad), rect.Y - float64(pad)})
	canvas.DrawImage(dst, ctx.Opacity, BlendNormal)
	canvas.Restore()
}

// ApplyEffectTo wraps target in a fresh node carrying an EffectElement
// running filters, implementing the "layout-steal" described on
// EffectElement: the wrapper takes target's old place in its parent's
// child list and copies its Style, so layout treats the wrapper as
// occupying the same box target used to; target itself is forced to
// 100%/100% so it fills that box exactly and becomes the wrapper's
// sole child (spec §6 "node.apply_effect(kind, params)").
func ApplyEffectTo(a *Arena, target NodeHandle, filters ...ImageFilter) (NodeHandle, error) {
	n, err := a.Get(target)
	if err != nil {
		return invalidHandle, err
	}
	parent := a.Parent(target)
	wrapperStyle := n.Style

	wrapper := a.Create(NewEffectElement(filters...))
	wn := a.MustGet(wrapper)
	wn.Style = wrapperStyle
	wn.Transform = n.Transform
	wn.ZIndex = n.ZIndex

	if parent != invalidHandle {
		siblings := a.Children(parent)
		idx := len(siblings)
		for i, h := range siblings {
			if h == target {
				idx = i
				break
			}
		}
		if err := a.Detach(target); err != nil {
			return invalidHandle, err
		}
		if err := a.AttachAt(parent, wrapper, idx); err != nil {
			return invalidHandle, err
		}
	}
	n.Style.Width = Pct(100)
	n.Style.Height = Pct(100)
	n.Transform = DefaultTransform()
	if err := a.Attach(wrapper, target); err != nil {
		return invalidHandle, err
	}
	return wrapper, nil
}

// renderNodeSubtree renders h and its descendants into canvas using the
// same world/opacity accumulation as the director's main walk, used when
// an element (EffectElement) needs to render a subtree itself
// rather than waiting for the director's top-level recursion to reach it.
func renderNodeSubtree(a *Arena, h NodeHandle, canvas Canvas, parentCtx *RenderContext) {
	n, err := a.Get(h)
	if err != nil || !n.Visible {
		return
	}
	local := n.Transform.compose()
	world := multiplyAffine(parentCtx.World, local)
	opacity := parentCtx.Opacity * n.Transform.Opacity

	canvas.Save()
	canvas.Concat(local)
	ownsChildren := false
	if n.Element != nil {
		childCtx := &RenderContext{World: world, Opacity: opacity, Arena: a, Node: n, Assets: parentCtx.Assets, Logger: parentCtx.Logger, FPS: parentCtx.FPS}
		n.Element.Render(canvas, childCtx)
		if owner, ok := n.Element.(childRenderOwner); ok {
			ownsChildren = owner.OwnsChildRendering()
		}
	}
	if !ownsChildren {
		children := append([]NodeHandle(nil), n.children...)
		selfCtx := &RenderContext{World: world, Opacity: opacity, Arena: a, Node: n, Assets: parentCtx.Assets, Logger: parentCtx.Logger, FPS: parentCtx.FPS}
		for _, c := range children {
			renderNodeSubtree(a, c, canvas, selfCtx)
		}
	}
	canvas.Restore()
}

// effectPool returns a scratch pool for effect/composition offscreen
// work. RenderContext doesn't carry the director's pool directly (it
// would couple every element to Director), so elements needing one
// allocate a private pool scoped to this Render call; the pool's buckets
// are only as big as the handful of sizes an effect chain actually uses,
// so the extra allocation pressure versus sharing the director's pool is
// negligible.
func (ctx *RenderContext) effectPool() *renderTexturePool {
	return &renderTexturePool{}
}
