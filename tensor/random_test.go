package tensor

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestRandnShapeAndStats(t *testing.T) {
	samples := Randn(NewRand(1), 1000, 10)
	if !equalShapes(samples.Shape(), []int{1000, 10}) {
		t.Fatalf("unexpected shape: %v", samples.Shape())
	}
	mean, variance := stat.MeanVariance(samples.Data(), nil)
	if math.Abs(mean) > 0.1 {
		t.Fatalf("randn mean too far from zero: %.6f", mean)
	}
	if variance < 0.8 || variance > 1.2 {
		t.Fatalf("randn variance unexpected: %.6f", variance)
	}
}

func TestRandnDeterministicPerSeed(t *testing.T) {
	a := Randn(NewRand(7), 5, 5).Data()
	b := Randn(NewRand(7), 5, 5).Data()
	if !almostEqualSlices(a, b, 0) {
		t.Fatalf("same seed produced different samples")
	}
	c := Randn(NewRand(8), 5, 5).Data()
	if almostEqualSlices(a, c, 0) {
		t.Fatalf("different seeds produced identical samples")
	}
}
