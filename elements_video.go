package kinescope

import "github.com/hajimehoshi/ebiten/v2"

// RenderMode selects the frame-fetch policy for VideoElement: export mode
// blocks for a frame-accurate decode; preview mode trades accuracy for
// responsiveness (spec §4.5 "Video").
type RenderMode uint8

const (
	RenderModeExport RenderMode = iota
	RenderModePreview
)

// VideoDecoder yields decoded frames for a video asset. Export-mode
// callers require FrameAt to block until the exact requested time's frame
// is available; preview-mode callers accept FrameAt returning the nearest
// already-decoded frame.
type VideoDecoder interface {
	// FrameAt returns the frame image for time t (seconds) and true, or
	// (nil, false) on decode failure (spec's DecoderFailure kind).
	FrameAt(t float64, mode RenderMode) (*ebiten.Image, bool)
}

// VideoElement draws the current frame of a decoded video track, fit to
// its node's box via the same object-fit policy as ImageElement.
type VideoElement struct {
	Decoder VideoDecoder
	Fit     ObjectFit
	Mode    RenderMode

	currentFrame *ebiten.Image
	lastGoodT    float64
	havePrevious bool
}

func NewVideoElement(decoder VideoDecoder, fit ObjectFit, mode RenderMode) *VideoElement {
	return &VideoElement{Decoder: decoder, Fit: fit, Mode: mode}
}

// Update fetches the frame for local time t. When the decoder reports a
// failure, Update keeps the previous frame in either mode; the failure is
// not returned to the director and is not logged.
func (v *VideoElement) Update(t, duration float64) {
	if v.Decoder == nil {
		return
	}
	frame, ok := v.Decoder.FrameAt(t, v.Mode)
	if !ok {
		return
	}
	v.currentFrame = frame
	v.lastGoodT = t
	v.havePrevious = true
}

func (v *VideoElement) Measure(knownWidth, knownHeight float64, knownWidthOK, knownHeightOK bool) Size {
	if v.currentFrame == nil {
		return Size{}
	}
	b := v.currentFrame.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func (v *VideoElement) Render(canvas Canvas, ctx *RenderContext) {
	if v.currentFrame == nil {
		return
	}
	img := NewImageElement("", v.Fit)
	img.img = v.currentFrame
	img.PostLayout(ctx.Node.LayoutRect)
	img.Render(canvas, ctx)
}
