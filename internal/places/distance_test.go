package places

import (
	"math"
	"testing"
)

func TestDistanceZero(t *testing.T) {
	if d := Distance(47.6, -122.3, 47.6, -122.3); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
}

func TestDistanceKnownPair(t *testing.T) {
	// Seattle to Portland, roughly 233 km.
	d := Distance(47.6062, -122.3321, 45.5152, -122.6784)
	if math.Abs(d-233) > 5 {
		t.Errorf("Seattle-Portland = %.1f km, want ~233", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Distance(47.6097, -122.3331, 47.5989, -122.3284)
	b := Distance(47.5989, -122.3284, 47.6097, -122.3331)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", a, b)
	}
	if a <= 0 || a > 2 {
		t.Errorf("downtown pair = %.3f km, want a short positive distance", a)
	}
}
