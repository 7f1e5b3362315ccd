package lottie

import "encoding/json"

// ShapeType enumerates a shape item's `ty` tag.
type ShapeType string

const (
	ShapeGroup      ShapeType = "gr"
	ShapePath       ShapeType = "sh"
	ShapeEllipse    ShapeType = "el"
	ShapeRect       ShapeType = "rc"
	ShapeStar       ShapeType = "sr"
	ShapeFill       ShapeType = "fl"
	ShapeGradFill   ShapeType = "gf"
	ShapeStroke     ShapeType = "st"
	ShapeGradStroke ShapeType = "gs"
	ShapeTransform  ShapeType = "tr"
	ShapeTrim       ShapeType = "tm"
	ShapeRepeater   ShapeType = "rp"
	ShapeRoundCorner ShapeType = "rd"
	ShapeMerge      ShapeType = "mm"
	ShapeZigZag     ShapeType = "zz"
	ShapePuckerBloat ShapeType = "pb"
	ShapeTwist      ShapeType = "tw"
	ShapeOffsetPath ShapeType = "op"
)

// Shape is one item of a shape layer's `shapes` array (spec §4.6 "shape
// array with reverse-draw-order fold-onto-prior-siblings"). It behaves as
// a tagged union: only the field matching Type is populated.
type Shape struct {
	Type   ShapeType `json:"ty"`
	Name   string    `json:"nm,omitempty"`
	Hidden BoolInt   `json:"hd,omitempty"`

	// ShapeGroup
	Items []Shape `json:"-"`

	// ShapePath
	Path *ShapeProperty `json:"-"`

	// ShapeEllipse / ShapeRect / ShapeStar (centered primitives)
	Position *Property `json:"-"`
	Size     *Property `json:"-"`
	Roundness *Property `json:"-"`
	OuterRadius *Property `json:"-"`
	InnerRadius *Property `json:"-"`
	OuterRoundness *Property `json:"-"`
	InnerRoundness *Property `json:"-"`
	Points   *Property `json:"-"`
	Rotation *Property `json:"-"`
	StarType int       `json:"-"`

	Fill       *FillData         `json:"-"`
	GradFill   *GradientFillData `json:"-"`
	Stroke     *StrokeData       `json:"-"`
	Transform  *LayerTransform   `json:"-"`
	Trim       *TrimPathsData    `json:"-"`
	Repeater   *RepeaterData     `json:"-"`
	RoundCorner *RoundCornersData `json:"-"`
	Merge      *MergeMode        `json:"-"`
	ZigZag     *ZigZagData       `json:"-"`
	PuckerBloat *PuckerBloatData `json:"-"`
	Twist      *TwistData        `json:"-"`
}

type shapeEnvelope struct {
	Type   ShapeType       `json:"ty"`
	Name   string          `json:"nm,omitempty"`
	Hidden BoolInt         `json:"hd,omitempty"`
	Items  json.RawMessage `json:"it,omitempty"`
	Raw    json.RawMessage `json:"-"`
}

// UnmarshalJSON dispatches on ty into the matching typed field, mirroring
// how the Lottie JSON schema packs unrelated shape kinds into one array.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var env struct {
		Type   ShapeType       `json:"ty"`
		Name   string          `json:"nm,omitempty"`
		Hidden BoolInt         `json:"hd,omitempty"`
		Items  []Shape         `json:"it,omitempty"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	s.Type = env.Type
	s.Name = env.Name
	s.Hidden = env.Hidden
	s.Items = env.Items

	switch env.Type {
	case ShapePath:
		var v struct {
			Path *ShapeProperty `json:"ks"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Path = v.Path
	case ShapeEllipse, ShapeRect:
		var v struct {
			Position  *Property `json:"p"`
			Size      *Property `json:"s"`
			Roundness *Property `json:"r"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Position, s.Size, s.Roundness = v.Position, v.Size, v.Roundness
	case ShapeStar:
		var v struct {
			Position       *Property `json:"p"`
			OuterRadius    *Property `json:"or"`
			InnerRadius    *Property `json:"ir"`
			OuterRoundness *Property `json:"os"`
			InnerRoundness *Property `json:"is"`
			Points         *Property `json:"pt"`
			Rotation       *Property `json:"r"`
			StarType       int       `json:"sy"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Position, s.OuterRadius, s.InnerRadius = v.Position, v.OuterRadius, v.InnerRadius
		s.OuterRoundness, s.InnerRoundness, s.Points, s.Rotation = v.OuterRoundness, v.InnerRoundness, v.Points, v.Rotation
		s.StarType = v.StarType
	case ShapeFill:
		var v FillData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Fill = &v
	case ShapeGradFill:
		var v GradientFillData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.GradFill = &v
	case ShapeStroke, ShapeGradStroke:
		var v StrokeData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Stroke = &v
	case ShapeTransform:
		var v LayerTransform
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Transform = &v
	case ShapeTrim:
		var v TrimPathsData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Trim = &v
	case ShapeRepeater:
		var v RepeaterData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Repeater = &v
	case ShapeRoundCorner:
		var v RoundCornersData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.RoundCorner = &v
	case ShapeMerge:
		var v struct {
			Mode MergeMode `json:"mm"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Merge = &v.Mode
	case ShapeZigZag:
		var v ZigZagData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.ZigZag = &v
	case ShapePuckerBloat:
		var v PuckerBloatData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.PuckerBloat = &v
	case ShapeTwist:
		var v TwistData
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Twist = &v
	}
	return nil
}
