package lottie

import (
	"strconv"

	"github.com/kinescope-engine/kinescope"
)

// Player ties the parsed model, property resolvers and shape builder into
// a drawable animation: given a Canvas already positioned and scaled to
// the target box, Render(canvas, t) draws one frame (spec §4.5 "Lottie:
// see §4.6").
type Player struct {
	Anim   *Animation
	Assets *kinescope.AssetLoader
	Speed  float64
	Loop   bool

	// Exprs evaluates transform-property expressions ("x" fields) when
	// non-nil; left nil, every property falls back to its plain keyframed
	// value at no extra cost, which is what the overwhelming majority of
	// Lottie exports need since expressions are comparatively rare.
	Exprs *ExprEngine

	assetsByID map[string]*Asset
}

// NewPlayer constructs a Player for anim. assets resolves image-layer and
// precomp-image asset references; pass nil if anim has none.
func NewPlayer(anim *Animation, assets *kinescope.AssetLoader) *Player {
	byID := make(map[string]*Asset, len(anim.Assets))
	for i := range anim.Assets {
		byID[anim.Assets[i].ID] = &anim.Assets[i]
	}
	return &Player{Anim: anim, Assets: assets, Speed: 1, assetsByID: byID}
}

// RawFrame maps local time t (seconds) to a Lottie-native frame index
// (spec §4.6 "Per-frame build": raw_frame = t·fps·speed + ip, looped by
// Euclidean modulo over [ip,op) when Loop is set, else clamped).
func (p *Player) RawFrame(t float64) float64 {
	fps := p.Anim.FrameRate
	raw := t*fps*p.Speed + p.Anim.InPoint
	span := p.Anim.OutPoint - p.Anim.InPoint
	if span <= 0 {
		return p.Anim.InPoint
	}
	if p.Loop {
		return p.Anim.InPoint + euclideanMod(raw-p.Anim.InPoint, span)
	}
	if raw < p.Anim.InPoint {
		return p.Anim.InPoint
	}
	if raw >= p.Anim.OutPoint {
		return p.Anim.OutPoint - 1e-6
	}
	return raw
}

// Render draws the composition at local time t into canvas.
func (p *Player) Render(canvas kinescope.Canvas, t float64) {
	frame := p.RawFrame(t)
	p.renderLayers(canvas, p.Anim.Layers, frame, 1)
}

func (p *Player) renderLayers(canvas kinescope.Canvas, layers []Layer, frame float64, parentOpacity float64) {
	byIndex := make(map[int]*Layer, len(layers))
	for i := range layers {
		byIndex[layers[i].Index] = &layers[i]
	}
	skip := make(map[int]bool)

	// Lottie lists layers front-to-back; draw back-to-front.
	for i := len(layers) - 1; i >= 0; i-- {
		if skip[i] {
			continue
		}
		l := &layers[i]
		if bool(l.Hidden) {
			continue
		}
		local, visible := layerLocalFrame(*l, frame)
		if !visible {
			continue
		}
		op := opacityOf(&l.Transform, frame, p.Anim.FrameRate, p.Exprs) * parentOpacity

		if l.MatteType != MatteNone && i > 0 {
			skip[i-1] = true
			p.renderMatted(canvas, l, &layers[i-1], byIndex, frame, local, op)
			continue
		}
		if len(l.Masks) > 0 {
			p.renderMasked(canvas, l, byIndex, frame, local, op)
			continue
		}
		if len(l.Effects) > 0 {
			p.renderWithEffects(canvas, l, byIndex, frame, local, op)
			continue
		}
		canvas.Save()
		canvas.Concat([6]float64(worldMatrix(l, byIndex, frame, p.Anim.FrameRate, p.Exprs)))
		p.renderLayer(canvas, l, local, op)
		canvas.Restore()
	}
}

// renderMatted composites content through matte using the standard alpha
// track-matte path: render content and matte into offscreen layers at the
// canvas's current size, then DstIn-composite content by matte's alpha.
// Luma matte variants fall back to the same alpha-based compositing —
// there is no luminance-read-back primitive on the Canvas interface, so
// true luma matte support is out of reach here (documented gap).
func (p *Player) renderMatted(canvas kinescope.Canvas, content, matte *Layer, byIndex map[int]*Layer, frame, contentLocal float64, opacity float64) {
	w, h := canvas.Size()
	if w <= 0 || h <= 0 {
		return
	}
	contentLayer := canvas.PushLayer(w, h)
	contentLayer.Concat(canvas.Transform())
	contentLayer.Concat([6]float64(worldMatrix(content, byIndex, frame, p.Anim.FrameRate, p.Exprs)))
	p.renderLayer(contentLayer, content, contentLocal, opacity)
	contentImg := applyEffects(canvas, content, contentLocal, contentLayer.PopLayer())

	matteLocal, matteVisible := layerLocalFrame(*matte, frame)
	matteLayer := canvas.PushLayer(w, h)
	if matteVisible {
		matteLayer.Concat(canvas.Transform())
		matteLayer.Concat([6]float64(worldMatrix(matte, byIndex, frame, p.Anim.FrameRate, p.Exprs)))
		matteOp := opacityOf(&matte.Transform, frame, p.Anim.FrameRate, p.Exprs)
		p.renderLayer(matteLayer, matte, matteLocal, matteOp)
	}
	matteImg := matteLayer.PopLayer()

	inverted := content.MatteType == MatteAlphaInverted || content.MatteType == MatteLumaInverted
	kinescope.CompositeDstIn(canvas, contentImg, matteImg, inverted)
}

// renderWithEffects renders l into an offscreen layer, runs its Effects
// pipeline over the result, and composites the filtered image back onto
// canvas (spec §4.6 "Effects").
func (p *Player) renderWithEffects(canvas kinescope.Canvas, l *Layer, byIndex map[int]*Layer, frame, local, opacity float64) {
	w, h := canvas.Size()
	if w <= 0 || h <= 0 {
		return
	}
	contentLayer := canvas.PushLayer(w, h)
	contentLayer.Concat(canvas.Transform())
	contentLayer.Concat([6]float64(worldMatrix(l, byIndex, frame, p.Anim.FrameRate, p.Exprs)))
	p.renderLayer(contentLayer, l, local, opacity)
	contentImg := contentLayer.PopLayer()

	result := applyEffects(canvas, l, local, contentImg)
	canvas.DrawImage(result, 1, kinescope.BlendNormal)
}

// renderMasked clips content by l.Masks before compositing it onto
// canvas: each mask's alpha is folded into a running accumulator per its
// mode (spec §4.6 "masks"), then the content is DstIn-composited by the
// combined result.
func (p *Player) renderMasked(canvas kinescope.Canvas, l *Layer, byIndex map[int]*Layer, frame, local, opacity float64) {
	w, h := canvas.Size()
	if w <= 0 || h <= 0 {
		return
	}
	wm := worldMatrix(l, byIndex, frame, p.Anim.FrameRate, p.Exprs)

	contentLayer := canvas.PushLayer(w, h)
	contentLayer.Concat(canvas.Transform())
	contentLayer.Concat([6]float64(wm))
	p.renderLayer(contentLayer, l, local, opacity)
	contentImg := applyEffects(canvas, l, local, contentLayer.PopLayer())

	accum := canvas.PushLayer(w, h)
	applied := false
	for i := range l.Masks {
		mask := &l.Masks[i]
		blend, ok := maskBlend(mask.Mode)
		if !ok {
			continue
		}
		if !applied && blend == kinescope.BlendDstIn {
			// Nothing accumulated yet: intersecting against empty would
			// always yield empty, so the first contributing mask always
			// establishes the base region.
			blend = kinescope.BlendNormal
		}
		maskImg := paintMaskAlpha(canvas, mask, wm, local)
		accum.DrawImage(maskImg, 1, blend)
		applied = true
	}
	if !applied {
		accum.DrawImage(contentImg, 1, kinescope.BlendNormal)
		canvas.DrawImage(accum.PopLayer(), 1, kinescope.BlendNormal)
		return
	}
	maskImg := accum.PopLayer()
	kinescope.CompositeDstIn(canvas, contentImg, maskImg, false)
}

func (p *Player) renderLayer(canvas kinescope.Canvas, l *Layer, local float64, opacity float64) {
	blend := blendModeOf(l.BlendMode)
	switch l.Type {
	case LayerShape:
		renderShapeItems(canvas, l.Shapes, local, p.Anim.FrameRate, p.Exprs)
	case LayerPrecomp:
		asset := p.assetsByID[l.RefID]
		if asset == nil {
			return
		}
		remapped := local
		if l.TimeRemap != nil {
			remapped = float64(l.TimeRemap.ToScalar().Eval(local))
		}
		p.renderLayers(canvas, asset.Layers, remapped, opacity)
	case LayerImage:
		asset := p.assetsByID[l.RefID]
		if asset == nil || p.Assets == nil {
			return
		}
		img := p.Assets.Image(asset.ImageRef)
		if img != nil {
			canvas.DrawImage(img, opacity, blend)
		}
	case LayerSolid:
		rect := solidRect(l)
		canvas.FillPath(rect, kinescope.Paint{Kind: kinescope.PaintSolid, Solid: parseHexColor(l.SolidColor), Opacity: opacity}, false)
	case LayerNull:
		// carries only its transform, consumed by descendants' parent chain.
	case LayerText:
		// Document text rendering is delegated to the host's own text
		// stack (spec §4.5's text row); the vector interpreter here only
		// resolves shape/solid/image/precomp/null content.
	}
}

func worldMatrix(l *Layer, byIndex map[int]*Layer, frame, fps float64, exprs *ExprEngine) affine {
	m := transformMatrix(&l.Transform, frame, fps, exprs, bool(l.AutoOrient))
	if l.HasParent {
		if parent, ok := byIndex[l.Parent]; ok && parent != l {
			m = mul(worldMatrix(parent, byIndex, frame, fps, exprs), m)
		}
	}
	return m
}

func solidRect(l *Layer) *kinescope.BezierPath {
	p := &kinescope.BezierPath{}
	p.MoveTo(0, 0)
	p.LineTo(l.Width, 0)
	p.LineTo(l.Width, l.Height)
	p.LineTo(0, l.Height)
	p.Close()
	return p
}

func parseHexColor(s string) kinescope.Color {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) < 6 {
		return kinescope.Color{A: 1}
	}
	r, _ := strconv.ParseUint(s[0:2], 16, 8)
	g, _ := strconv.ParseUint(s[2:4], 16, 8)
	b, _ := strconv.ParseUint(s[4:6], 16, 8)
	return kinescope.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

func blendModeOf(bm int) kinescope.BlendMode {
	if bm < 0 || bm > int(kinescope.BlendLuminosity) {
		return kinescope.BlendNormal
	}
	return kinescope.BlendMode(bm)
}
