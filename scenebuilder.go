package kinescope

import "github.com/hajimehoshi/ebiten/v2/text/v2"

// Movie is the top-level handle a scripting host gets back from
// new_director (spec §6): one Director plus the movie-wide audio tracks
// that aren't scoped to any single scene.
type Movie struct {
	Director *Director
}

// NewMovie creates an empty movie at the given resolution/frame rate
// (spec §6 "new_director(w, h, fps) -> MovieHandle").
func NewMovie(width, height int, fps float64, assets *AssetLoader, logger *Logger) *Movie {
	return &Movie{Director: NewDirector(width, height, fps, assets, logger)}
}

// AddScene appends a new scene of the given duration and returns a
// builder rooted at it (spec §6 "movie.add_scene(duration) ->
// SceneHandle"). The scene's root node carries no Element of its own —
// it exists purely to anchor the child tree Add* methods build under it.
func (m *Movie) AddScene(duration float64) *SceneBuilder {
	root := m.Director.Arena.Create(nil)
	idx := m.Director.AddScene(Scene{Root: root, Duration: duration})
	return &SceneBuilder{
		NodeBuilder: &NodeBuilder{movie: m, sceneIndex: idx, handle: root},
	}
}

// AddTransition records an overlap between two previously added scenes
// (spec §6 "movie.add_transition(s1, s2, kind, duration, easing)").
func (m *Movie) AddTransition(from, to *SceneBuilder, kind TransitionKind, duration float64, easing Easing) {
	m.Director.AddTransition(Transition{
		FromIndex: from.sceneIndex, ToIndex: to.sceneIndex,
		Kind: kind, Duration: duration, Easing: easing,
	})
}

// AddAudio registers a movie-wide track starting at startTime, composition-
// relative (spec §6 "movie.add_audio(path) -> TrackHandle"; path
// resolution itself is the host's job — callers hand in an already-opened
// PCMSource, e.g. from a WAV/MP3 decoder wired through AssetSource).
func (m *Movie) AddAudio(source PCMSource, startTime float64) *TrackHandle {
	tr := NewAudioTrack(source, startTime)
	m.Director.audio.Tracks = append(m.Director.audio.Tracks, tr)
	return &TrackHandle{movie: m, track: tr}
}

// TrackHandle wraps one registered audio track, exposing the frequency-
// band sampling the scene-builder's bind_audio sugar reads from.
type TrackHandle struct {
	movie *Movie
	track *AudioTrack
}

// Bass samples the track's low-frequency (<250Hz) energy at time t,
// normalized to roughly [0,1] (spec §6 "track.bass(time)").
func (h *TrackHandle) Bass(t float64) float64 { return h.track.BandEnergy(AudioBass, t) }

// Mids samples the track's mid-frequency (250Hz-4kHz) energy at time t.
func (h *TrackHandle) Mids(t float64) float64 { return h.track.BandEnergy(AudioMids, t) }

// Highs samples the track's high-frequency (>4kHz) energy at time t.
func (h *TrackHandle) Highs(t float64) float64 { return h.track.BandEnergy(AudioHighs, t) }

// Loop marks the track as looping once its source runs out.
func (h *TrackHandle) Loop(loop bool) *TrackHandle {
	h.track.Loop = loop
	return h
}

// AudioBandAnimator drives one Transform field directly from a track's
// band energy every frame, rather than from fixed keyframes — the
// NodeAnimator implementation backing `bind_audio` (spec §6 "bind_audio
// (node, track, band, prop)"). Gain/Offset let the caller rescale the
// roughly-[0,1] energy value into whatever range the target field needs
// (e.g. a scale field usually wants something like 1 + energy*0.3, not
// energy itself).
type AudioBandAnimator struct {
	Track  *AudioTrack
	Band   AudioBand
	Field  TransformField
	FPS    float64
	Gain   float64
	Offset float64
}

func (a *AudioBandAnimator) Apply(n *Node, frame float64) {
	tSec := frame / a.FPS
	gain := a.Gain
	if gain == 0 {
		gain = 1
	}
	v := a.Track.BandEnergy(a.Band, tSec)*gain + a.Offset
	setTransformField(n, a.Field, v)
}

// NodeBuilder wraps one node's handle plus enough of its owning scene's
// context (movie, scene index) to build and configure children, mirroring
// the nestable NodeHandle of spec §6 ("scene.add_{...}(props) ->
// NodeHandle (nestable on NodeHandle)").
type NodeBuilder struct {
	movie      *Movie
	sceneIndex int
	handle     NodeHandle
}

// SceneBuilder is the builder returned by Movie.AddScene; it embeds a
// NodeBuilder for the scene's root node, so every Add*/Animate/SetStyle
// method available on a child node is also available directly on the
// scene (applying to its root).
type SceneBuilder struct {
	*NodeBuilder
}

// Handle returns the underlying node handle, for callers that need to
// reach into the Arena directly (tests, or host glue code).
func (nb *NodeBuilder) Handle() NodeHandle { return nb.handle }

func (nb *NodeBuilder) arena() *Arena { return nb.movie.Director.Arena }

// addChild creates a node wrapping element, attaches it under nb, and
// returns a builder for it.
func (nb *NodeBuilder) addChild(element Element) *NodeBuilder {
	h := nb.arena().Create(element)
	nb.arena().Attach(nb.handle, h)
	return &NodeBuilder{movie: nb.movie, sceneIndex: nb.sceneIndex, handle: h}
}

// AddBox appends a Box child (spec §6 "scene.add_box(props)").
func (nb *NodeBuilder) AddBox(style Style) *NodeBuilder {
	c := nb.addChild(NewBoxElement())
	c.SetStyle(style)
	return c
}

// AddText appends a Text child drawing content with face (spec §6
// "scene.add_text(props)").
func (nb *NodeBuilder) AddText(content string, face *text.GoTextFace, color Color, style Style) *NodeBuilder {
	el := NewTextElement(content, face)
	el.Color = color
	c := nb.addChild(el)
	c.SetStyle(style)
	return c
}

// AddImage appends an Image child reading from the given asset key.
func (nb *NodeBuilder) AddImage(assetKey string, fit ObjectFit, style Style) *NodeBuilder {
	c := nb.addChild(NewImageElement(assetKey, fit))
	c.SetStyle(style)
	return c
}

// AddVideo appends a Video child backed by decoder.
func (nb *NodeBuilder) AddVideo(decoder VideoDecoder, fit ObjectFit, mode RenderMode, style Style) *NodeBuilder {
	c := nb.addChild(NewVideoElement(decoder, fit, mode))
	c.SetStyle(style)
	return c
}

// AddSvg appends a static vector-path child — the spec's "svg" node kind
// (spec §6 "scene.add_svg(props)"), built from an already-parsed path
// since no SVG-document parser exists anywhere in the reference corpus
// (an ebiten game engine has no use for one); hosts parse the document
// themselves and hand in the resulting BezierPath, the same geometry type
// every other path-drawing element in this engine already uses.
func (nb *NodeBuilder) AddSvg(path *BezierPath, fill, stroke *Paint, strokeStyle StrokeStyle, style Style) *NodeBuilder {
	v := NewVectorElement(path)
	v.Fill = fill
	v.Stroke = stroke
	v.StrokeStyle = strokeStyle
	c := nb.addChild(v)
	c.SetStyle(style)
	return c
}

// AddComposition appends a nested-Director child (spec §6
// "scene.add_composition(props)").
func (nb *NodeBuilder) AddComposition(nested *Director, startTime float64, style Style) *NodeBuilder {
	c := nb.addChild(NewCompositionElement(nested, startTime))
	c.SetStyle(style)
	return c
}

// AddCustom attaches an already-built Element as a child, the escape
// hatch every externally-supplied Element implementation goes through —
// most notably Lottie content. lottie.Element can't be constructed from
// this package (lottie imports kinescope for its Keyframed/Canvas/Element
// types, so kinescope importing lottie back would cycle); callers build
// their own lottie.NewPlayer + lottie.NewElement and pass the result in
// here instead (spec §6 "scene.add_lottie(props)").
func (nb *NodeBuilder) AddCustom(element Element, style Style) *NodeBuilder {
	c := nb.addChild(element)
	c.SetStyle(style)
	return c
}

// AddLottie is AddCustom under the name the external interface actually
// uses; element is whatever a host built via lottie.NewElement.
func (nb *NodeBuilder) AddLottie(element Element, style Style) *NodeBuilder {
	return nb.AddCustom(element, style)
}

// SetStyle replaces the node's layout/decoration Style (spec §6
// "node.set_style(map)").
func (nb *NodeBuilder) SetStyle(style Style) *NodeBuilder {
	nb.arena().MustGet(nb.handle).Style = style
	return nb
}

// SetMask makes other's rendered alpha mask this node's subtree (spec §6
// "node.set_mask(other_node)").
func (nb *NodeBuilder) SetMask(other *NodeBuilder) *NodeBuilder {
	nb.arena().MustGet(nb.handle).MaskNode = other.handle
	return nb
}

// SetBlendMode composites this node's subtree onto its parent using mode
// instead of normal alpha-over (spec §6 "node.set_blend_mode(mode)").
func (nb *NodeBuilder) SetBlendMode(mode BlendMode) *NodeBuilder {
	nb.arena().MustGet(nb.handle).BlendMode = mode
	return nb
}

// ApplyEffect wraps this node in a filter-chain-running EffectElement
// (spec §6 "node.apply_effect(kind, params)"), returning a builder for
// the new wrapper node — the node that now actually occupies this node's
// old box, with this node forced to fill it at 100%/100% underneath.
// Further chained calls (Animate, SetStyle, ...) on the returned builder
// affect the visible, positioned wrapper; this node's own builder is
// still valid for reaching the unfiltered content directly.
func (nb *NodeBuilder) ApplyEffect(kind EffectKind, params map[string]float64) *NodeBuilder {
	filter := buildFilter(kind, params)
	wrapper, err := ApplyEffectTo(nb.arena(), nb.handle, filter)
	if err != nil {
		return nb
	}
	return &NodeBuilder{movie: nb.movie, sceneIndex: nb.sceneIndex, handle: wrapper}
}

// EffectKind selects which ImageFilter ApplyEffect builds from its params
// map, keeping the scripting-facing API to a flat (kind, params) pair
// rather than exposing the filter constructors' Go types directly.
type EffectKind uint8

const (
	EffectColorMatrix EffectKind = iota
	EffectBlur
	EffectDropShadow
)

func buildFilter(kind EffectKind, params map[string]float64) ImageFilter {
	switch kind {
	case EffectBlur:
		return NewBlurFilter(params["radius"])
	case EffectDropShadow:
		a, ok := params["a"]
		if !ok {
			a = 1
		}
		c := Color{R: params["r"], G: params["g"], B: params["b"], A: a}
		return NewDropShadowFilter(c, params["dx"], params["dy"], params["blur"])
	default:
		f := NewColorMatrixFilter()
		for i := 0; i < 20; i++ {
			if v, ok := params[matrixParamKey(i)]; ok {
				f.Matrix[i] = v
			}
		}
		return f
	}
}

func matrixParamKey(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "m" + string(digits[i])
	}
	return "m" + string(digits[i/10]) + string(digits[i%10])
}

// Animate drives field with a two-keyframe Keyframed[Float64] running
// from start to end over duration seconds, delayed by delay (spec §6
// "node.animate(prop, start, end, duration, easing, delay?)").
func (nb *NodeBuilder) Animate(field TransformField, start, end, duration float64, easing Easing, delay float64) *NodeBuilder {
	fps := nb.movie.Director.FPS
	startFrame := delay * fps
	endFrame := (delay + duration) * fps
	kf := &Keyframed[Float64]{Keyframes: []Keyframe[Float64]{
		{Frame: startFrame, ValueStart: Float64(start), Easing: easing},
		{Frame: endFrame, ValueStart: Float64(end)},
	}}
	nb.bindScene(&TransformAnimator{Field: field, Keyframe: kf})
	return nb
}

// Spring drives field with a stiffness/damping/mass spring settling from
// from to to (spec §6 "node.spring(prop, start, end, {stiffness,
// damping, mass})"). The spring starts integrating the first frame this
// node's scene becomes active, per TransformAnimator.Apply's semantics
// (frame 0 of the scene's local clock).
func (nb *NodeBuilder) Spring(field TransformField, from, to, stiffness, damping, mass float64) *NodeBuilder {
	sp := &Spring[Float64]{
		Stiffness: stiffness, Damping: damping, Mass: mass,
		From: Float64(from), To: Float64(to),
	}
	nb.bindScene(&TransformAnimator{Field: field, Spring: sp})
	return nb
}

// BindAudio drives field directly from track's band energy every frame
// (spec §6 "bind_audio(node, track, band, prop)").
func (nb *NodeBuilder) BindAudio(track *TrackHandle, band AudioBand, field TransformField, gain, offset float64) *NodeBuilder {
	nb.bindScene(&AudioBandAnimator{
		Track: track.track, Band: band, Field: field,
		FPS: nb.movie.Director.FPS, Gain: gain, Offset: offset,
	})
	return nb
}

func (nb *NodeBuilder) bindScene(anim NodeAnimator) {
	scene := &nb.movie.Director.Timeline[nb.sceneIndex]
	scene.Animators = append(scene.Animators, boundAnimator{Handle: nb.handle, Bind: anim})
}
