package optim

import (
	"math"
	"testing"

	"github.com/fumitoshi0524/cifarnet/tensor"
)

func almostEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := math.Abs(a[i] - b[i])
		if diff > tol {
			return false
		}
	}
	return true
}

func TestSGDStepAndMomentum(t *testing.T) {
	param := tensor.MustNew([]float64{1, -2}, 2)
	param.SetRequiresGrad(true)

	s := tensor.Sum(param)
	if err := s.Backward(); err != nil {
		t.Fatalf("backward failed: %v", err)
	}
	opt := NewSGD([]*tensor.Tensor{param}, 0.1, 0)
	if err := opt.Step(); err != nil {
		t.Fatalf("sgd step failed: %v", err)
	}
	expected := []float64{0.9, -2.1}
	if !almostEqual(param.Data(), expected, 1e-9) {
		t.Fatalf("unexpected param after SGD step: got %v want %v", param.Data(), expected)
	}

	// Momentum run for two additional updates with constant gradients of ones.
	paramZero := tensor.MustNew([]float64{1, -2}, 2)
	paramZero.SetRequiresGrad(true)
	momentumOpt := NewSGD([]*tensor.Tensor{paramZero}, 0.1, 0.5)
	for i := 0; i < 2; i++ {
		momentumOpt.ZeroGrad()
		s := tensor.Sum(paramZero)
		if err := s.Backward(); err != nil {
			t.Fatalf("momentum backward failed: %v", err)
		}
		if err := momentumOpt.Step(); err != nil {
			t.Fatalf("momentum step failed: %v", err)
		}
	}
	expectedMomentum := []float64{0.75, -2.25}
	if !almostEqual(paramZero.Data(), expectedMomentum, 1e-9) {
		t.Fatalf("unexpected param after momentum SGD: got %v want %v", paramZero.Data(), expectedMomentum)
	}
}

func TestSGDWeightDecay(t *testing.T) {
	param := tensor.MustNew([]float64{2}, 1)
	param.SetRequiresGrad(true)
	if err := tensor.Sum(param).Backward(); err != nil {
		t.Fatalf("backward failed: %v", err)
	}
	opt := NewSGDWithConfig([]*tensor.Tensor{param}, SGDConfig{LR: 0.1, WeightDecay: 0.5})
	if err := opt.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	// update = grad + wd*p = 1 + 1 = 2
	if !almostEqual(param.Data(), []float64{1.8}, 1e-12) {
		t.Fatalf("unexpected param after weight decay: %v", param.Data())
	}
}

func TestSGDSkipsParamsWithoutGrad(t *testing.T) {
	param := tensor.MustNew([]float64{3}, 1)
	param.SetRequiresGrad(true)
	opt := NewSGD([]*tensor.Tensor{param, nil}, 0.1, 0)
	if err := opt.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if param.Data()[0] != 3 {
		t.Fatalf("param without grad should be untouched, got %v", param.Data())
	}
}

func TestSGDConfigValidate(t *testing.T) {
	if err := (SGDConfig{LR: 0.01}).Validate(); err != nil {
		t.Fatalf("plain SGD should validate: %v", err)
	}
	bad := []SGDConfig{
		{LR: 0},
		{LR: 0.01, Momentum: 1},
		{LR: 0.01, WeightDecay: -1},
		{LR: 0.01, Nesterov: true},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
