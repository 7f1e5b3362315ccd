package lottie

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPropertyUnmarshalStaticScalar(t *testing.T) {
	var p Property
	if err := json.Unmarshal([]byte(`{"a":0,"k":50}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Animated {
		t.Error("a:0 should decode as non-animated")
	}
	got := float64(p.ToScalar().Eval(0))
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("static scalar value = %v, want 50", got)
	}
}

func TestPropertyUnmarshalAnimatedKeyframes(t *testing.T) {
	raw := `{"a":1,"k":[{"t":0,"s":[0]},{"t":10,"s":[100]}]}`
	var p Property
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Animated {
		t.Fatal("a:1 should decode as animated")
	}
	mid := float64(p.ToScalar().Eval(5))
	if math.Abs(mid-50) > 1e-9 {
		t.Errorf("midpoint of 0->100 over 10 frames = %v, want 50", mid)
	}
}

func TestPropertyUnmarshalExpressionField(t *testing.T) {
	raw := `{"a":0,"k":10,"x":"value * 2"}`
	var p Property
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.Expression != "value * 2" {
		t.Errorf("Expression = %q, want %q", p.Expression, "value * 2")
	}
}

func TestPropertyUnmarshalNoExpressionLeavesItEmpty(t *testing.T) {
	var p Property
	if err := json.Unmarshal([]byte(`{"a":0,"k":10}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Expression != "" {
		t.Errorf("Expression = %q, want empty when the JSON carries no x field", p.Expression)
	}
}

func TestPropertyToColorDefaultsAlphaWhenAbsent(t *testing.T) {
	var p Property
	if err := json.Unmarshal([]byte(`{"a":0,"k":[1,0,0]}`), &p); err != nil {
		t.Fatal(err)
	}
	c := p.ToColor().Eval(0)
	if c.A != 1 {
		t.Errorf("color alpha with no 4th component = %v, want 1", c.A)
	}
}

func TestPropertyToVec2Components(t *testing.T) {
	var p Property
	if err := json.Unmarshal([]byte(`{"a":0,"k":[3,4]}`), &p); err != nil {
		t.Fatal(err)
	}
	v := p.ToVec2().Eval(0)
	if v.X != 3 || v.Y != 4 {
		t.Errorf("ToVec2 = %+v, want {3, 4}", v)
	}
}

func TestFirstOrSliceDecodesBareNumberAndArray(t *testing.T) {
	var bare firstOrSlice
	if err := json.Unmarshal([]byte(`5`), &bare); err != nil {
		t.Fatal(err)
	}
	if bare != 5 {
		t.Errorf("bare number decode = %v, want 5", bare)
	}
	var arr firstOrSlice
	if err := json.Unmarshal([]byte(`[7, 9]`), &arr); err != nil {
		t.Fatal(err)
	}
	if arr != 7 {
		t.Errorf("array decode should keep only the first component, got %v want 7", arr)
	}
}
