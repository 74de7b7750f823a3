package tensor

import "testing"

func TestReshapeBackward(t *testing.T) {
	input := MustNew([]float64{1, 2, 3, 4, 5, 6}, 6)
	input.SetRequiresGrad(true)
	reshaped, err := input.Reshape(2, 3)
	if err != nil {
		t.Fatalf("reshape failed: %v", err)
	}
	if !equalShapes(reshaped.Shape(), []int{2, 3}) {
		t.Fatalf("unexpected reshape shape: %v", reshaped.Shape())
	}
	inferred, err := reshaped.Reshape(3, -1)
	if err != nil {
		t.Fatalf("reshape with -1 failed: %v", err)
	}
	if !equalShapes(inferred.Shape(), []int{3, 2}) {
		t.Fatalf("unexpected inferred shape: %v", inferred.Shape())
	}

	sum := Sum(inferred)
	if err := sum.Backward(); err != nil {
		t.Fatalf("backward failed: %v", err)
	}
	grad := input.Grad()
	if grad == nil || !almostEqualSlices(grad.Data(), []float64{1, 1, 1, 1, 1, 1}, 1e-9) {
		t.Fatalf("unexpected grad after reshape: %v", grad)
	}
	if !equalShapes(grad.Shape(), []int{6}) {
		t.Fatalf("grad should keep the leaf shape, got %v", grad.Shape())
	}
}

func TestFlattenKeepsBatch(t *testing.T) {
	input := Zeros(4, 32, 8, 8)
	flat, err := Flatten(input)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	if !equalShapes(flat.Shape(), []int{4, 2048}) {
		t.Fatalf("unexpected flatten shape: %v", flat.Shape())
	}
}

func TestReshapeRejectsSizeMismatch(t *testing.T) {
	if _, err := Zeros(2, 3).Reshape(4, 2); err == nil {
		t.Fatalf("expected size mismatch error")
	}
	if _, err := Zeros(2, 3).Reshape(-1, -1); err == nil {
		t.Fatalf("expected error for two inferred dimensions")
	}
}
