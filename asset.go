package kinescope

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
)

// AssetSource is the capability trait spec §1 scopes asset I/O down to:
// "load bytes by key". Hosts provide one backed by a filesystem,
// embed.FS, zip archive, or network fetch; the engine never opens files
// itself.
type AssetSource interface {
	Load(key string) ([]byte, error)
}

// AssetLoader decodes and caches images referenced by key, substituting a
// placeholder and logging once per key on failure (spec §7:
// "AssetMissing: Substitute a placeholder (magenta rect / silent audio),
// log once per key.").
type AssetLoader struct {
	Source AssetSource
	Logger *Logger

	imageCache map[string]*ebiten.Image
}

// NewAssetLoader creates a loader backed by source, logging misses to
// logger (DefaultLogger() if nil).
func NewAssetLoader(source AssetSource, logger *Logger) *AssetLoader {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &AssetLoader{Source: source, Logger: logger, imageCache: make(map[string]*ebiten.Image)}
}

// placeholderImage is a 1x1 magenta texture, spec's explicit AssetMissing
// placeholder, scaled up to whatever draw size the caller requests via
// its own transform.
var placeholderImage *ebiten.Image

func magentaPlaceholder() *ebiten.Image {
	if placeholderImage == nil {
		placeholderImage = ebiten.NewImage(1, 1)
		placeholderImage.Fill(toNRGBAColor(ColorMagenta))
	}
	return placeholderImage
}

// Image returns the decoded image for key, caching the result. On any
// failure (missing key, undecodable bytes), it logs once per key via
// Logger.Once and returns the magenta placeholder so rendering can
// proceed deterministically.
func (a *AssetLoader) Image(key string) *ebiten.Image {
	if img, ok := a.imageCache[key]; ok {
		return img
	}
	img := a.loadImage(key)
	a.imageCache[key] = img
	return img
}

func (a *AssetLoader) loadImage(key string) *ebiten.Image {
	if a.Source == nil {
		a.Logger.Once("asset:"+key, "no AssetSource configured, key "+key)
		return magentaPlaceholder()
	}
	data, err := a.Source.Load(key)
	if err != nil {
		a.Logger.Once("asset:"+key, "asset load failed: "+err.Error())
		return magentaPlaceholder()
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		a.Logger.Once("asset:"+key, "asset decode failed: "+err.Error())
		return magentaPlaceholder()
	}
	return ebiten.NewImageFromImage(decoded)
}

// Bytes returns the raw bytes for key (used by video/audio decoders and
// the Lottie loader for embedded/base64 assets), or nil + AssetMissing
// logged once.
func (a *AssetLoader) Bytes(key string) []byte {
	if a.Source == nil {
		a.Logger.Once("asset:"+key, "no AssetSource configured, key "+key)
		return nil
	}
	data, err := a.Source.Load(key)
	if err != nil {
		a.Logger.Once("asset:"+key, "asset load failed: "+err.Error())
		return nil
	}
	return data
}
