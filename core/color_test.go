package core

import (
	"math"
	"testing"
)

func TestColorOperations(t *testing.T) {
	a := NewColor(0.25, 0.5, 1)
	b := NewColor(0.5, 0.5, 0.5)

	result := a.Add(b)
	expected := NewColor(0.75, 1, 1.5)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	result = a.MulColor(b)
	expected = NewColor(0.125, 0.25, 0.5)
	if result != expected {
		t.Errorf("MulColor: expected %v, got %v", expected, result)
	}

	if m := a.Max(); m != 1 {
		t.Errorf("Max: expected 1, got %v", m)
	}
}

func TestColorSqrDistance(t *testing.T) {
	a := NewColor(1, 0, 0)
	b := NewColor(0, 1, 0)
	if d := a.SqrDistance(b); d != 2 {
		t.Errorf("SqrDistance: expected 2, got %v", d)
	}
	if d := a.SqrDistance(a); d != 0 {
		t.Errorf("SqrDistance: expected 0, got %v", d)
	}
}

func TestGammaCorrect(t *testing.T) {
	// Linear segment below 0.018.
	c := NewColor(0.01, 0.01, 0.01).GammaCorrect()
	if math.Abs(float64(c.R-0.045)) > 1e-6 {
		t.Errorf("GammaCorrect: expected 0.045, got %v", c.R)
	}

	// Power segment: 1.099*sqrt(v) - 0.099.
	c = NewColor(0.25, 0.25, 0.25).GammaCorrect()
	expected := 1.099*0.5 - 0.099
	if math.Abs(float64(c.R)-expected) > 1e-5 {
		t.Errorf("GammaCorrect: expected %v, got %v", expected, c.R)
	}

	// White stays approximately white.
	c = ColorWhite.GammaCorrect()
	if math.Abs(float64(c.R-1)) > 1e-5 {
		t.Errorf("GammaCorrect: expected 1, got %v", c.R)
	}
}

func TestToPixel(t *testing.T) {
	if p := ColorBlack.ToPixel(); p != 0 {
		t.Errorf("ToPixel: expected 0, got %#x", p)
	}
	if p := ColorRed.ToPixel(); p != 0x00ff0000 {
		t.Errorf("ToPixel: expected 0x00ff0000, got %#x", p)
	}

	// Out-of-range values clamp instead of wrapping.
	if p := NewColor(10, -3, 0.5).ToPixel(); p != 0x00ff007f {
		t.Errorf("ToPixel: expected 0x00ff007f, got %#x", p)
	}
}

func TestVignette(t *testing.T) {
	c := ColorWhite.Vignette(0, 0, 0.01)
	if c != ColorWhite {
		t.Errorf("Vignette: expected no falloff at center, got %v", c)
	}

	c = ColorWhite.Vignette(100, 0, 0.01)
	if c.R >= 1 {
		t.Errorf("Vignette: expected falloff away from center, got %v", c)
	}
}
