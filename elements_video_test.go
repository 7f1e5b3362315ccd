package kinescope

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type fakeDecoder struct {
	frame  *ebiten.Image
	ok     bool
	lastT  float64
	lastMode RenderMode
}

func (d *fakeDecoder) FrameAt(t float64, mode RenderMode) (*ebiten.Image, bool) {
	d.lastT = t
	d.lastMode = mode
	return d.frame, d.ok
}

func TestVideoElementUpdateStoresDecodedFrame(t *testing.T) {
	frame := ebiten.NewImage(4, 4)
	dec := &fakeDecoder{frame: frame, ok: true}
	v := NewVideoElement(dec, ObjectFitCover, RenderModeExport)
	v.Update(1.5, 10)
	if v.currentFrame != frame {
		t.Error("Update should store the decoder's returned frame")
	}
	if !v.havePrevious || v.lastGoodT != 1.5 {
		t.Errorf("havePrevious=%v lastGoodT=%v, want true/1.5", v.havePrevious, v.lastGoodT)
	}
	if dec.lastMode != RenderModeExport {
		t.Errorf("decoder should be called with the element's RenderMode, got %v", dec.lastMode)
	}
}

func TestVideoElementUpdateKeepsPreviousFrameOnDecodeFailure(t *testing.T) {
	good := ebiten.NewImage(4, 4)
	dec := &fakeDecoder{frame: good, ok: true}
	v := NewVideoElement(dec, ObjectFitCover, RenderModePreview)
	v.Update(0, 10)

	dec.ok = false
	dec.frame = nil
	v.Update(1, 10)
	if v.currentFrame != good {
		t.Error("a failed decode should not clear the previously decoded frame")
	}
}

func TestVideoElementUpdateNilDecoderIsNoop(t *testing.T) {
	v := NewVideoElement(nil, ObjectFitCover, RenderModeExport)
	v.Update(1, 10)
	if v.currentFrame != nil {
		t.Error("Update with a nil Decoder should leave currentFrame nil")
	}
}

func TestVideoElementMeasureNoFrameIsZero(t *testing.T) {
	v := NewVideoElement(nil, ObjectFitCover, RenderModeExport)
	if got := v.Measure(0, 0, false, false); got != (Size{}) {
		t.Errorf("Measure with no frame = %+v, want zero", got)
	}
}

func TestVideoElementMeasureReportsFrameSize(t *testing.T) {
	dec := &fakeDecoder{frame: ebiten.NewImage(64, 32), ok: true}
	v := NewVideoElement(dec, ObjectFitCover, RenderModeExport)
	v.Update(0, 10)
	got := v.Measure(0, 0, false, false)
	if got.Width != 64 || got.Height != 32 {
		t.Errorf("Measure = %+v, want {64, 32}", got)
	}
}

func TestVideoElementRenderNoFrameIsNoop(t *testing.T) {
	v := NewVideoElement(nil, ObjectFitCover, RenderModeExport)
	n := newNode(v)
	n.LayoutRect = Rect{Width: 10, Height: 10}
	canvas := NewCanvas(ebiten.NewImage(32, 32), &renderTexturePool{})
	v.Render(canvas, &RenderContext{Node: n, Opacity: 1})
}
