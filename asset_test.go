package kinescope

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

type fakeAssetSource struct {
	data map[string][]byte
	err  error
}

func (s *fakeAssetSource) Load(key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.data[key]
	if !ok {
		return nil, errors.New("not found: " + key)
	}
	return b, nil
}

func pngBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestAssetLoaderImageCachesDecodedResult(t *testing.T) {
	src := &fakeAssetSource{data: map[string][]byte{"a": pngBytes(4, 4)}}
	loader := NewAssetLoader(src, DefaultLogger())

	first := loader.Image("a")
	second := loader.Image("a")
	if first != second {
		t.Error("Image should cache and return the same decoded *ebiten.Image on repeat calls")
	}
	b := first.Bounds()
	if b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("decoded image bounds = %dx%d, want 4x4", b.Dx(), b.Dy())
	}
}

func TestAssetLoaderImageNilSourceReturnsPlaceholder(t *testing.T) {
	loader := NewAssetLoader(nil, DefaultLogger())
	img := loader.Image("missing")
	if img != magentaPlaceholder() {
		t.Error("Image with no AssetSource should fall back to the shared magenta placeholder")
	}
}

func TestAssetLoaderImageLoadFailureReturnsPlaceholder(t *testing.T) {
	src := &fakeAssetSource{err: errors.New("boom")}
	loader := NewAssetLoader(src, DefaultLogger())
	img := loader.Image("whatever")
	if img != magentaPlaceholder() {
		t.Error("Image with a failing AssetSource should fall back to the shared magenta placeholder")
	}
}

func TestAssetLoaderImageDecodeFailureReturnsPlaceholder(t *testing.T) {
	src := &fakeAssetSource{data: map[string][]byte{"junk": []byte("not an image")}}
	loader := NewAssetLoader(src, DefaultLogger())
	img := loader.Image("junk")
	if img != magentaPlaceholder() {
		t.Error("Image with undecodable bytes should fall back to the shared magenta placeholder")
	}
}

func TestAssetLoaderImageLogsMissOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")
	loader := NewAssetLoader(nil, logger)

	loader.Image("dup")
	loader.Image("dup")

	out := buf.String()
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "dup") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one log line mentioning the missing key, got %d in %q", count, out)
	}
}

func TestAssetLoaderBytesReturnsSourceData(t *testing.T) {
	src := &fakeAssetSource{data: map[string][]byte{"b": []byte("raw-bytes")}}
	loader := NewAssetLoader(src, DefaultLogger())
	got := loader.Bytes("b")
	if string(got) != "raw-bytes" {
		t.Errorf("Bytes = %q, want %q", got, "raw-bytes")
	}
}

func TestAssetLoaderBytesNilSourceReturnsNil(t *testing.T) {
	loader := NewAssetLoader(nil, DefaultLogger())
	if got := loader.Bytes("x"); got != nil {
		t.Errorf("Bytes with no AssetSource = %v, want nil", got)
	}
}

func TestAssetLoaderBytesLoadFailureReturnsNil(t *testing.T) {
	src := &fakeAssetSource{err: errors.New("fail")}
	loader := NewAssetLoader(src, DefaultLogger())
	if got := loader.Bytes("x"); got != nil {
		t.Errorf("Bytes with a failing AssetSource = %v, want nil", got)
	}
}
