package geo

import (
	"math"
	"testing"
)

func TestDistanceKMZero(t *testing.T) {
	if d := DistanceKM(-1.2921, 36.8219, -1.2921, 36.8219); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestDistanceKMKnownPair(t *testing.T) {
	// Nairobi CBD to Westlands is roughly 3.4km.
	d := DistanceKM(-1.2864, 36.8172, -1.2676, 36.8062)
	if math.Abs(d-2.4) > 1.5 {
		t.Fatalf("unexpected distance %f", d)
	}
	if d <= 0 {
		t.Fatalf("distance must be positive, got %f", d)
	}
}

func TestDistanceKMSymmetry(t *testing.T) {
	a := DistanceKM(-1.2921, 36.8219, -4.0435, 39.6682)
	b := DistanceKM(-4.0435, 39.6682, -1.2921, 36.8219)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
	// Nairobi to Mombasa is roughly 440km by air.
	if a < 400 || a > 500 {
		t.Fatalf("Nairobi-Mombasa distance out of range: %f", a)
	}
}
