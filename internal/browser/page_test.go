package browser

import (
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestCmToInches(t *testing.T) {
	tests := []struct {
		cm   float64
		want float64
	}{
		{2.54, 1.0},
		{0, 0},
		{21.59, 8.5},
		{27.94, 11.0},
	}
	for _, tt := range tests {
		got := cmToInches(tt.cm)
		if !almostEqual(got, tt.want, 0.001) {
			t.Errorf("cmToInches(%v) = %v, want ~%v", tt.cm, got, tt.want)
		}
	}
}

func TestDefaultPageConfig(t *testing.T) {
	d := DefaultPageConfig()
	if d.Size != Letter {
		t.Errorf("default size = %v, want Letter", d.Size)
	}
	if d.Scale != 1.0 {
		t.Errorf("default scale = %v, want 1.0", d.Scale)
	}
	if !d.PrintBackground {
		t.Error("default PrintBackground = false, want true")
	}
	if d.Margin != UniformMargin(1.5) {
		t.Errorf("default margin = %v, want uniform 1.5", d.Margin)
	}
}

func TestPageConfigResolved_Nil(t *testing.T) {
	var pc *PageConfig
	if r := pc.resolved(); r != DefaultPageConfig() {
		t.Errorf("nil resolved = %+v, want defaults", r)
	}
}

func TestPageConfigResolved_KeepsExplicit(t *testing.T) {
	pc := &PageConfig{Size: A4, Margin: UniformMargin(0.5), Scale: 0.8}
	r := pc.resolved()
	if r.Size != A4 {
		t.Errorf("size = %v, want A4", r.Size)
	}
	if r.Margin != UniformMargin(0.5) {
		t.Errorf("margin = %v, want uniform 0.5", r.Margin)
	}
	if r.Scale != 0.8 {
		t.Errorf("scale = %v, want 0.8", r.Scale)
	}
}

func TestPageConfigResolved_ZeroValues(t *testing.T) {
	r := (&PageConfig{}).resolved()
	if r.Size != Letter || r.Scale != 1.0 || r.Margin != UniformMargin(1.5) {
		t.Errorf("zero config resolved to %+v", r)
	}
}
