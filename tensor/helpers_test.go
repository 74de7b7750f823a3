package tensor

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

func almostEqualSlices(a, b []float64, tol float64) bool {
	return len(a) == len(b) && floats.EqualApprox(a, b, tol)
}

func equalShapes(a, b []int) bool {
	return sameShape(a, b)
}

func randomTensor(rng *rand.Rand, shape ...int) *Tensor {
	t := Randn(rng, shape...)
	t.SetRequiresGrad(true)
	return t
}

// checkGrad compares the analytic gradient of loss with respect to x against
// central finite differences. loss must rebuild its graph from x on each call.
func checkGrad(t *testing.T, name string, x *Tensor, loss func() *Tensor) {
	t.Helper()
	x.ZeroGrad()
	out := loss()
	if err := out.Backward(); err != nil {
		t.Fatalf("%s: backward failed: %v", name, err)
	}
	analytic := x.Grad()
	if analytic == nil {
		t.Fatalf("%s: expected gradient", name)
	}
	base := x.Data()
	numeric := fd.Gradient(nil, func(v []float64) float64 {
		if err := x.SetData(v); err != nil {
			t.Fatalf("%s: set data: %v", name, err)
		}
		var val float64
		_ = NoGrad(func() error {
			val = loss().Item()
			return nil
		})
		return val
	}, base, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	if err := x.SetData(base); err != nil {
		t.Fatalf("%s: restore data: %v", name, err)
	}
	if !almostEqualSlices(analytic.Data(), numeric, 1e-4) {
		t.Fatalf("%s: gradient mismatch\nanalytic %v\nnumeric  %v", name, analytic.Data(), numeric)
	}
}
