package kinescope

import "testing"

func TestPxResolvesToFixedValueRegardlessOfContainer(t *testing.T) {
	d := Px(42)
	got, ok := d.Resolve(1000)
	if !ok || got != 42 {
		t.Errorf("Px(42).Resolve(1000) = (%v, %v), want (42, true)", got, ok)
	}
}

func TestPctResolvesAsPercentageOfContainer(t *testing.T) {
	d := Pct(50)
	got, ok := d.Resolve(200)
	if !ok || got != 100 {
		t.Errorf("Pct(50).Resolve(200) = (%v, %v), want (100, true)", got, ok)
	}
}

func TestAutoResolveReportsNotOK(t *testing.T) {
	got, ok := Auto.Resolve(500)
	if ok {
		t.Errorf("Auto.Resolve should report ok=false, got value=%v ok=%v", got, ok)
	}
}

func TestDimensionZeroValueIsAuto(t *testing.T) {
	var d Dimension
	if d.Kind != DimAuto {
		t.Errorf("zero-value Dimension.Kind = %v, want DimAuto", d.Kind)
	}
}
