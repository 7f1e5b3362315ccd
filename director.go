package kinescope

import (
	"image"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is one entry in a Director's timeline (spec §3 "Timeline": `{
// root: NodeHandle, start_time, duration, name? }`).
type Scene struct {
	Root      NodeHandle
	StartTime float64
	Duration  float64
	Name      string

	// Animators drive per-node property keyframes/springs during the
	// Update pass, implementing the scene-builder sugar
	// `node.animate(prop, ...)` / `node.spring(prop, ...)` (spec §6).
	Animators []boundAnimator

	audio AudioMixer
}

type boundAnimator struct {
	Handle NodeHandle
	Bind   NodeAnimator
}

// NodeAnimator writes a value into a node at the given local frame
// number. TransformAnimator and AudioBandAnimator are the built-in kinds;
// hosts may implement their own for custom element fields.
type NodeAnimator interface {
	Apply(n *Node, frame float64)
}

// TransformField selects which scalar/vector field of a Node's Transform
// a TransformAnimator writes.
type TransformField uint8

const (
	FieldPositionX TransformField = iota
	FieldPositionY
	FieldRotationZ
	FieldScaleX
	FieldScaleY
	FieldOpacity
	FieldSkew
)

// TransformAnimator drives one Transform field from a Keyframed[Float64]
// or a Spring[Float64] (exactly one of the two should be set).
type TransformAnimator struct {
	Field    TransformField
	Keyframe *Keyframed[Float64]
	Spring   *Spring[Float64]
}

func (a *TransformAnimator) Apply(n *Node, frame float64) {
	var v float64
	switch {
	case a.Keyframe != nil:
		v = float64(a.Keyframe.Eval(frame))
	case a.Spring != nil:
		v = float64(a.Spring.Eval(frame))
	default:
		return
	}
	setTransformField(n, a.Field, v)
}

// setTransformField writes v into n.Transform's field selected by field,
// shared by TransformAnimator (keyframe/spring-driven) and
// AudioBandAnimator (audio-energy-driven) so the two sugar paths for
// `node.animate`/`node.spring` and `bind_audio` agree on field addressing.
func setTransformField(n *Node, field TransformField, v float64) {
	switch field {
	case FieldPositionX:
		n.Transform.Position.X = v
	case FieldPositionY:
		n.Transform.Position.Y = v
	case FieldRotationZ:
		n.Transform.Rotation.Z = v
	case FieldScaleX:
		n.Transform.Scale.X = v
	case FieldScaleY:
		n.Transform.Scale.Y = v
	case FieldOpacity:
		n.Transform.Opacity = v
	case FieldSkew:
		n.Transform.Skew = v
	}
}

// TransitionKind selects the compositing function used while two scenes
// overlap (spec §4.1 "Transitions").
type TransitionKind uint8

const (
	TransitionFade TransitionKind = iota
	TransitionSlide
	TransitionWipe
	TransitionCircleOpen
)

// Transition describes an overlap between two timeline scenes, indexed by
// position in Director.Timeline.
type Transition struct {
	FromIndex, ToIndex int
	Kind               TransitionKind
	Duration           float64
	Easing             Easing
	// SlideDirection is used only by TransitionSlide: the unit vector the
	// incoming scene slides in from (e.g. {1,0} = from the right).
	SlideDirection Vec2
}

// FrameSink receives successfully rendered frames (spec §1: "the video
// muxing backend, treated as a frame/audio sink").
type FrameSink interface {
	WriteFrame(frameIndex int64, img *ebiten.Image) error
}

// AudioSink receives mixed audio chunks, one per frame, interleaved
// stereo f32 at InternalSampleRate.
type AudioSink interface {
	WriteAudio(frameIndex int64, samples []float32) error
}

// Director orchestrates the Update -> Layout -> Render -> Encode pipeline
// (spec §4.1) over an explicit timeline of Scenes. A Director owns exactly
// one Arena; every Scene's Root lives in it.
type Director struct {
	Width, Height int
	FPS           float64

	Arena       *Arena
	Timeline    []Scene
	Transitions []Transition

	Assets *AssetLoader
	Logger *Logger

	pool  renderTexturePool
	hooks LayoutHooks

	// audio mixes movie-wide tracks (spec §6 "movie.add_audio"), whose
	// StartTime is composition-absolute rather than scene-relative —
	// unlike a Scene's own audio mixer, which only plays while its scene
	// is active, a movie-wide track (e.g. background music under a
	// transition) keeps playing across scene boundaries.
	audio AudioMixer
}

// NewDirector creates an empty Director. Call AddScene/AddTransition to
// build the timeline before calling RenderFrame/MixAudio.
func NewDirector(width, height int, fps float64, assets *AssetLoader, logger *Logger) *Director {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &Director{
		Width: width, Height: height, FPS: fps,
		Arena: NewArena(), Assets: assets, Logger: logger,
	}
}

// AddScene appends a scene to the timeline and returns its index.
func (d *Director) AddScene(s Scene) int {
	d.Timeline = append(d.Timeline, s)
	return len(d.Timeline) - 1
}

// AddTransition records a transition and ripples the destination scene's
// start time: "the second scene's start time is the first scene's end
// minus transition duration" (spec §4.1 "Transitions").
func (d *Director) AddTransition(t Transition) {
	from := d.Timeline[t.FromIndex]
	d.Timeline[t.ToIndex].StartTime = from.StartTime + from.Duration - t.Duration
	d.Transitions = append(d.Transitions, t)
}

// activeScenes returns the indices of scenes whose [StartTime,
// StartTime+Duration) window contains time t, in timeline order.
func (d *Director) activeScenes(t float64) []int {
	var active []int
	for i, s := range d.Timeline {
		if t >= s.StartTime && t < s.StartTime+s.Duration {
			active = append(active, i)
		}
	}
	return active
}

// RenderFrame implements the spec's render_frame(t) contract: yields a
// (Width, Height) raster for composition time t. Given identical Director
// state and t, the result is bit-exact reproducible (spec §4.1).
func (d *Director) RenderFrame(t float64) (*ebiten.Image, error) {
	active := d.activeScenes(t)

	out := ebiten.NewImage(d.Width, d.Height)
	if len(active) == 0 {
		return out, nil
	}
	if len(active) == 1 {
		return d.renderScene(active[0], t, out)
	}

	// Exactly two overlapping scenes during a transition window (the
	// timeline never ripples more than one transition deep at a time).
	tr := d.findTransition(active[0], active[1])
	fromImg, err := d.renderScene(active[0], t, ebiten.NewImage(d.Width, d.Height))
	if err != nil {
		return nil, err
	}
	toImg, err := d.renderScene(active[1], t, ebiten.NewImage(d.Width, d.Height))
	if err != nil {
		return nil, err
	}
	progress := 1.0
	if tr != nil && tr.Duration > 0 {
		toScene := d.Timeline[active[1]]
		progress = clamp((t-toScene.StartTime)/tr.Duration, 0, 1)
		progress = tr.Easing.normalizedOrLinear(progress)
	}
	compositeTransition(out, fromImg, toImg, tr, progress)
	return out, nil
}

func (e Easing) normalizedOrLinear(t float64) float64 {
	if e.Kind == EasingLinear && e.CP1 == (Vec2{}) && e.CP2 == (Vec2{}) {
		return t
	}
	return e.Apply(t)
}

func (d *Director) findTransition(fromIdx, toIdx int) *Transition {
	for i := range d.Transitions {
		if d.Transitions[i].FromIndex == fromIdx && d.Transitions[i].ToIndex == toIdx {
			return &d.Transitions[i]
		}
	}
	return nil
}

// compositeTransition draws fromImg then toImg, with toImg masked/offset
// per the transition kind's progress, into out (spec §4.1: fade, slide,
// wipe, circle_open).
func compositeTransition(out, fromImg, toImg *ebiten.Image, tr *Transition, progress float64) {
	var op ebiten.DrawImageOptions
	out.DrawImage(fromImg, &op)

	kind := TransitionFade
	dir := Vec2{1, 0}
	if tr != nil {
		kind = tr.Kind
		if tr.SlideDirection != (Vec2{}) {
			dir = tr.SlideDirection
		}
	}

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	switch kind {
	case TransitionFade:
		op2 := &ebiten.DrawImageOptions{}
		op2.ColorScale.ScaleAlpha(float32(progress))
		out.DrawImage(toImg, op2)
	case TransitionSlide:
		op2 := &ebiten.DrawImageOptions{}
		op2.GeoM.Translate(float64(w)*dir.X*(1-progress), float64(h)*dir.Y*(1-progress))
		out.DrawImage(toImg, op2)
	case TransitionWipe:
		edge := int(math.Round(float64(w) * progress))
		if edge <= 0 {
			break
		}
		if edge > w {
			edge = w
		}
		sub := toImg.SubImage(image.Rect(0, 0, edge, h)).(*ebiten.Image)
		out.DrawImage(sub, &ebiten.DrawImageOptions{})
	case TransitionCircleOpen:
		radius := progress * math.Hypot(float64(w), float64(h)) / 2
		masked := applyCircleMask(toImg, w, h, radius)
		out.DrawImage(masked, &ebiten.DrawImageOptions{})
	}
}

// applyCircleMask returns a new image containing src clipped to a circle
// of the given radius centered on (w/2, h/2), used by TransitionCircleOpen.
// The caller owns the returned image; it is not pool-backed since
// transitions are a bounded, infrequent path.
func applyCircleMask(src *ebiten.Image, w, h int, radius float64) *ebiten.Image {
	shape := ebiten.NewImage(w, h)
	path := circlePath(float64(w)/2, float64(h)/2, radius)
	canvas := NewCanvas(shape, &renderTexturePool{})
	canvas.FillPath(path, Paint{Kind: PaintSolid, Solid: ColorWhite, Opacity: 1}, false)

	out := ebiten.NewImage(w, h)
	out.DrawImage(src, &ebiten.DrawImageOptions{})
	dstIn := ebiten.DrawImageOptions{}
	dstIn.Blend = ebiten.Blend{
		BlendFactorSourceRGB:        ebiten.BlendFactorZero,
		BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
		BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
	out.DrawImage(shape, &dstIn)
	return out
}

// circlePath approximates a circle with four cubic Bezier arcs, the
// standard kappa = 0.5522847498 construction also used by
// roundedRectPath's corners.
func circlePath(cx, cy, r float64) *BezierPath {
	const k = 0.5522847498
	p := &BezierPath{}
	p.MoveTo(cx+r, cy)
	p.CubicTo(cx+r, cy+r*k, cx+r*k, cy+r, cx, cy+r)
	p.CubicTo(cx-r*k, cy+r, cx-r, cy+r*k, cx-r, cy)
	p.CubicTo(cx-r, cy-r*k, cx-r*k, cy-r, cx, cy-r)
	p.CubicTo(cx+r*k, cy-r, cx+r, cy-r*k, cx+r, cy)
	p.Close()
	return p
}

// renderScene runs Update -> Layout -> Render for a single active scene
// into target, at composition time t (spec §4.1 steps 1-3).
func (d *Director) renderScene(sceneIdx int, t float64, target *ebiten.Image) (*ebiten.Image, error) {
	scene := &d.Timeline[sceneIdx]
	tau := t - scene.StartTime

	d.updatePass(scene, tau)
	ComputeLayout(d.Arena, scene.Root, Size{Width: float64(d.Width), Height: float64(d.Height)}, &d.hooks)
	d.renderPass(scene, target)
	return target, nil
}

// updatePass ticks every bound animator to the scene's local frame, then
// calls Update on every node's element, depth-first (spec §4.1 step 1).
func (d *Director) updatePass(scene *Scene, tau float64) {
	frame := tau * d.FPS
	for _, ba := range scene.Animators {
		n, err := d.Arena.Get(ba.Handle)
		if err != nil {
			continue
		}
		ba.Bind.Apply(n, frame)
	}
	d.Arena.IterDescendants(scene.Root, func(h NodeHandle) {
		n := d.Arena.MustGet(h)
		if n.Element != nil {
			n.Element.Update(tau, scene.Duration)
		}
	})
	if root, err := d.Arena.Get(scene.Root); err == nil && root.Element != nil {
		root.Element.Update(tau, scene.Duration)
	}
}

// renderPass walks the scene depth-first, concatenating transforms,
// handling masks and effects via offscreen layers, and drawing each
// node's element (spec §4.1 step 3).
func (d *Director) renderPass(scene *Scene, target *ebiten.Image) {
	canvas := NewCanvas(target, &d.pool)
	d.renderNode(scene.Root, canvas, identityAffine, 1.0)
}

func (d *Director) renderNode(h NodeHandle, canvas Canvas, parentWorld [6]float64, parentOpacity float64) {
	n, err := d.Arena.Get(h)
	if err != nil || !n.Visible {
		return
	}
	local := n.Transform.compose()
	world := multiplyAffine(parentWorld, local)
	opacity := parentOpacity * n.Transform.Opacity

	if n.MaskNode != invalidHandle {
		d.renderMasked(n, canvas, world, opacity)
		return
	}

	if n.BlendMode != BlendNormal {
		d.renderBlended(n, canvas, world, opacity)
		return
	}

	canvas.Save()
	canvas.Concat(local)
	ownsChildren := false
	if n.Element != nil {
		ctx := &RenderContext{World: world, Opacity: opacity, Arena: d.Arena, Node: n, Assets: d.Assets, Logger: d.Logger, FPS: d.FPS}
		n.Element.Render(canvas, ctx)
		if owner, ok := n.Element.(childRenderOwner); ok {
			ownsChildren = owner.OwnsChildRendering()
		}
	}
	if !ownsChildren {
		for _, c := range d.sortedChildren(n) {
			d.renderNode(c, canvas, world, opacity)
		}
	}
	canvas.Restore()
}

// childRenderOwner is implemented by elements (EffectElement) whose
// Render call already draws its node's children itself, so the
// director's normal depth-first child walk must skip them to avoid a
// double draw.
type childRenderOwner interface {
	OwnsChildRendering() bool
}

// renderMasked implements spec §4.1's mask compositing: "render subtree
// to layer L1, then render the mask subtree to L2, composite L1 *
// DstIn(L2) back to parent."
func (d *Director) renderMasked(n *Node, canvas Canvas, world [6]float64, opacity float64) {
	w, h := canvas.Size()
	l1 := canvas.PushLayer(w, h)
	d.renderSubtreeInto(n.handle, l1, world, opacity, true)
	img1 := l1.PopLayer()
	defer d.pool.Release(img1)

	l2 := canvas.PushLayer(w, h)
	d.renderSubtreeInto(n.MaskNode, l2, world, 1.0, true)
	img2 := l2.PopLayer()
	defer d.pool.Release(img2)

	// Porter-Duff DstIn: keep img1's color, scaled by img2's alpha,
	// everywhere else transparent.
	maskedOut := d.pool.Acquire(w, h)
	defer d.pool.Release(maskedOut)
	maskedOut.DrawImage(img1, &ebiten.DrawImageOptions{})
	dstIn := ebiten.DrawImageOptions{}
	dstIn.Blend = ebiten.Blend{
		BlendFactorSourceRGB:        ebiten.BlendFactorZero,
		BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
		BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
	maskedOut.DrawImage(img2, &dstIn)

	canvas.DrawImage(maskedOut, 1.0, BlendNormal)
}

// renderBlended renders n's subtree into its own offscreen layer, then
// composites that layer onto canvas using n.BlendMode instead of the
// normal-alpha draw the rest of renderNode does (spec §6
// "node.set_blend_mode(mode)"), the same offscreen-then-composite shape
// as renderMasked but with an ebiten.Blend picked by mode rather than the
// fixed DstIn tuple.
func (d *Director) renderBlended(n *Node, canvas Canvas, world [6]float64, opacity float64) {
	w, h := canvas.Size()
	layer := canvas.PushLayer(w, h)
	d.renderSubtreeInto(n.handle, layer, world, opacity, true)
	img := layer.PopLayer()
	defer d.pool.Release(img)
	canvas.DrawImage(img, 1.0, n.BlendMode)
}

// renderSubtreeInto renders h's children (and, if includeSelf, h's own
// element) into canvas starting from world, used for mask/effect layers
// where the outer transform has already been established by the caller.
func (d *Director) renderSubtreeInto(h NodeHandle, canvas Canvas, world [6]float64, opacity float64, includeSelf bool) {
	n, err := d.Arena.Get(h)
	if err != nil || !n.Visible {
		return
	}
	local := n.Transform.compose()
	childWorld := multiplyAffine(world, local)
	childOpacity := opacity * n.Transform.Opacity

	canvas.Save()
	canvas.Concat(local)
	ownsChildren := false
	if includeSelf && n.Element != nil {
		ctx := &RenderContext{World: childWorld, Opacity: childOpacity, Arena: d.Arena, Node: n, Assets: d.Assets, Logger: d.Logger, FPS: d.FPS}
		n.Element.Render(canvas, ctx)
		if owner, ok := n.Element.(childRenderOwner); ok {
			ownsChildren = owner.OwnsChildRendering()
		}
	}
	if !ownsChildren {
		for _, c := range d.sortedChildren(n) {
			d.renderNode(c, canvas, childWorld, childOpacity)
		}
	}
	canvas.Restore()
}

// sortedChildren returns n's children ordered by ZIndex, stable (ties
// preserve insertion order) — spec §4.1 step 3: "Recurse into children
// sorted by z_index stable."
func (d *Director) sortedChildren(n *Node) []NodeHandle {
	if len(n.children) < 2 {
		return n.children
	}
	out := make([]NodeHandle, len(n.children))
	copy(out, n.children)
	sort.SliceStable(out, func(i, j int) bool {
		ni := d.Arena.MustGet(out[i])
		nj := d.Arena.MustGet(out[j])
		return ni.ZIndex < nj.ZIndex
	})
	return out
}

// MixAudio implements mix_audio(t, t+1/fps): mixes exactly the sample
// count the drift-free formula assigns to the frame starting at t (spec
// §4.1 step 4, §4.8).
func (d *Director) MixAudio(t float64) []float32 {
	frame := t * d.FPS
	out := d.audio.MixRange(frame, frame+1, d.FPS)
	for i := range d.Timeline {
		scene := &d.Timeline[i]
		if t < scene.StartTime || t >= scene.StartTime+scene.Duration {
			continue
		}
		tau := t - scene.StartTime
		tauFrame := tau * d.FPS
		chunk := scene.audio.MixRange(tauFrame, tauFrame+1, d.FPS)
		if len(out) == 0 {
			out = chunk
		} else {
			for i := 0; i < len(out) && i < len(chunk); i++ {
				out[i] += chunk[i]
			}
		}
		mixNested := func(h NodeHandle) {
			n, err := d.Arena.Get(h)
			if err != nil {
				return
			}
			if c, ok := n.Element.(*CompositionElement); ok {
				sub := c.MixAudio(tau)
				for j := 0; j < len(out) && j < len(sub); j++ {
					out[j] += sub[j]
				}
			}
		}
		d.Arena.IterDescendants(scene.Root, mixNested)
		mixNested(scene.Root)
	}
	_ = frame
	if out == nil {
		n := int(samplePositionFor(frame+1, d.FPS) - samplePositionFor(frame, d.FPS))
		out = make([]float32, n*2)
	}
	return out
}

// Export drives RenderFrame/MixAudio across [0, totalDuration) at FPS,
// pushing each frame to sink and audio to audioSink in strict frame
// order — frame N+1 begins only after frame N's WriteFrame/WriteAudio
// both return (spec §5 "Ordering guarantees").
func (d *Director) Export(totalDuration float64, sink FrameSink, audioSink AudioSink) error {
	totalFrames := int64(math.Round(totalDuration * d.FPS))
	for f := int64(0); f < totalFrames; f++ {
		t := float64(f) / d.FPS
		img, err := d.RenderFrame(t)
		if err != nil {
			return Wrap(KindIoError, "render_frame failed", err)
		}
		if err := sink.WriteFrame(f, img); err != nil {
			return Wrap(KindIoError, "frame sink write failed", err)
		}
		if audioSink != nil {
			samples := d.MixAudio(t)
			if err := audioSink.WriteAudio(f, samples); err != nil {
				return Wrap(KindIoError, "audio sink write failed", err)
			}
		}
	}
	return nil
}
