package metrics

import (
	"math"
	"testing"
)

func TestRunningRecordAndReset(t *testing.T) {
	var r Running
	r.Record(40, 10, 2.0)
	r.Record(40, 30, 1.0)
	if r.Seen != 80 || r.Correct != 40 || r.Batches != 2 {
		t.Fatalf("unexpected counters: %+v", r)
	}
	if r.LastLoss != 1.0 {
		t.Fatalf("expected last loss 1.0, got %.2f", r.LastLoss)
	}
	if math.Abs(r.Accuracy()-0.5) > 1e-12 {
		t.Fatalf("unexpected accuracy %.4f", r.Accuracy())
	}
	if math.Abs(r.AvgLoss()-3.0/80) > 1e-12 {
		t.Fatalf("unexpected avg loss %.6f", r.AvgLoss())
	}
	snap := r.Snapshot(3)
	if snap.Epoch != 3 || snap.Seen != 80 || snap.Accuracy != r.Accuracy() {
		t.Fatalf("snapshot mismatch: %+v", snap)
	}
	r.Reset()
	if r != (Running{}) {
		t.Fatalf("running was not reset: %+v", r)
	}
}

func TestRunningEmptyIsZero(t *testing.T) {
	var r Running
	if r.Accuracy() != 0 || r.AvgLoss() != 0 {
		t.Fatalf("empty running should report zeros")
	}
}

func TestCountCorrectSingleExample(t *testing.T) {
	n, err := CountCorrect([]int{4}, []int{4})
	if err != nil {
		t.Fatalf("CountCorrect returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 correct, got %d", n)
	}
	matches, err := Matches([]int{3}, []int{4})
	if err != nil {
		t.Fatalf("Matches returned error: %v", err)
	}
	if len(matches) != 1 || matches[0] {
		t.Fatalf("single mismatch should be a one-element false slice, got %v", matches)
	}
}

func TestCountCorrectBatch(t *testing.T) {
	n, err := CountCorrect([]int{0, 1, 2, 3}, []int{0, 2, 2, 1})
	if err != nil {
		t.Fatalf("CountCorrect returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 correct, got %d", n)
	}
	if _, err := CountCorrect([]int{0}, []int{0, 1}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}
