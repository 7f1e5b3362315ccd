// Package lottie parses and evaluates Bodymovin/Lottie animation JSON,
// resolving it frame-by-frame into a shape tree the host draws with
// kinescope's Canvas. Grounded on the parent package's Keyframed/Spring
// evaluator and transform composition; there is no Lottie parser anywhere
// in the reference corpus, so the model types and tolerant-JSON handling
// here are hand-written against the public Lottie v1.0 spec.
package lottie

import "encoding/json"

// BoolInt decodes Lottie's numeric booleans (0/1) as well as JSON's own
// true/false, tolerating either encoding (spec §4.6 "Model").
type BoolInt bool

func (b *BoolInt) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*b = n != 0
		return nil
	}
	var bb bool
	if err := json.Unmarshal(data, &bb); err != nil {
		return err
	}
	*b = BoolInt(bb)
	return nil
}

// LayerType enumerates Lottie's `ty` field.
type LayerType int

const (
	LayerPrecomp LayerType = 0
	LayerSolid   LayerType = 1
	LayerImage   LayerType = 2
	LayerNull    LayerType = 3
	LayerShape   LayerType = 4
	LayerText    LayerType = 5
)

// MatteType enumerates track-matte modes (`tt`).
type MatteType int

const (
	MatteNone MatteType = 0
	MatteAlpha MatteType = 1
	MatteAlphaInverted MatteType = 2
	MatteLuma MatteType = 3
	MatteLumaInverted MatteType = 4
)

// Animation is the top-level parsed composition (`w`, `h`, `fr`, `ip`,
// `op`, `layers`, `assets`, `bg`).
type Animation struct {
	Version    string  `json:"v"`
	Width      float64 `json:"w"`
	Height     float64 `json:"h"`
	FrameRate  float64 `json:"fr"`
	InPoint    float64 `json:"ip"`
	OutPoint   float64 `json:"op"`
	Name       string  `json:"nm"`
	Background string  `json:"bg"`

	Layers []Layer `json:"layers"`
	Assets []Asset `json:"assets"`
}

// Asset is a precomp (`layers`) or image (`p`, `u`) asset, looked up by
// `id`/`refId`.
type Asset struct {
	ID       string  `json:"id"`
	Layers   []Layer `json:"layers,omitempty"`
	ImageRef string  `json:"p,omitempty"`
	ImagePath string `json:"u,omitempty"`
	Width    float64 `json:"w,omitempty"`
	Height   float64 `json:"h,omitempty"`
}

// Layer is one entry in `layers` (spec §4.6 "Per-frame build").
type Layer struct {
	Type       LayerType `json:"ty"`
	Name       string    `json:"nm"`
	Index      int       `json:"ind"`
	Parent     int       `json:"parent"`
	HasParent  bool      `json:"-"`
	InPoint    float64   `json:"ip"`
	OutPoint   float64   `json:"op"`
	StartTime  float64   `json:"st"`
	TimeStretch float64  `json:"sr"`
	AutoOrient BoolInt   `json:"ao"`
	BlendMode  int       `json:"bm"`
	MatteType  MatteType `json:"tt"`
	Hidden     BoolInt   `json:"hd"`
	ThreeD     BoolInt   `json:"ddd"`

	Transform LayerTransform `json:"ks"`

	Shapes []Shape `json:"shapes,omitempty"`
	Masks  []Mask  `json:"masksProperties,omitempty"`
	Effects []LayerEffect `json:"ef,omitempty"`

	RefID string  `json:"refId,omitempty"`
	Width  float64 `json:"w,omitempty"`
	Height float64 `json:"h,omitempty"`
	SolidColor string `json:"sc,omitempty"`

	TimeRemap *Property `json:"tm,omitempty"`

	Text *TextData `json:"t,omitempty"`
}

// UnmarshalJSON tracks whether `parent` was actually present, since 0 is
// a valid layer index and can't be used as a sentinel.
func (l *Layer) UnmarshalJSON(data []byte) error {
	type alias Layer
	var probe struct {
		alias
		Parent *int `json:"parent"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	*l = Layer(probe.alias)
	if probe.Parent != nil {
		l.Parent = *probe.Parent
		l.HasParent = true
	}
	return nil
}

// LayerTransform is the `ks` transform group: position, anchor, scale,
// rotation, opacity, and (rarely) separated x/y position.
type LayerTransform struct {
	Anchor   *Property `json:"a,omitempty"`
	Position *Property `json:"p,omitempty"`
	PositionX *Property `json:"px,omitempty"`
	PositionY *Property `json:"py,omitempty"`
	Scale    *Property `json:"s,omitempty"`
	Rotation *Property `json:"r,omitempty"`
	Skew     *Property `json:"sk,omitempty"`
	SkewAxis *Property `json:"sa,omitempty"`
	Opacity  *Property `json:"o,omitempty"`
}

// Mask is one entry in `masksProperties` (spec §4.6 "masks").
type Mask struct {
	Mode      string         `json:"mode"`
	Inverted  BoolInt        `json:"inv"`
	Path      *ShapeProperty `json:"pt"`
	Opacity   *Property      `json:"o,omitempty"`
	Expansion *Property      `json:"x,omitempty"`
	Feather   *Property      `json:"f,omitempty"`
}

// TextData is the `t` block for text layers (simplified: document text,
// not the full per-character animator set).
type TextData struct {
	Document TextDocument `json:"d"`
}

type TextDocument struct {
	Keyframes []TextDocumentKeyframe `json:"k"`
}

type TextDocumentKeyframe struct {
	StartTime float64       `json:"t"`
	Value     TextDocValue `json:"s"`
}

type TextDocValue struct {
	Text     string  `json:"t"`
	FontName string  `json:"f"`
	Size     float64 `json:"s"`
	FillColor [4]float64 `json:"fc"`
	Justify  int     `json:"j"`
	LineHeight float64 `json:"lh"`
}
