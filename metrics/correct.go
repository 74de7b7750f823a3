package metrics

import "fmt"

// Matches compares predictions with labels element-wise. The result is always
// a slice with one entry per example, including single-example batches.
func Matches(predicted, labels []int) ([]bool, error) {
	if len(predicted) != len(labels) {
		return nil, fmt.Errorf("metrics: %d predictions for %d labels", len(predicted), len(labels))
	}
	out := make([]bool, len(labels))
	for i := range labels {
		out[i] = predicted[i] == labels[i]
	}
	return out, nil
}

// CountCorrect returns how many predictions equal their label.
func CountCorrect(predicted, labels []int) (int, error) {
	matches, err := Matches(predicted, labels)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, ok := range matches {
		if ok {
			n++
		}
	}
	return n, nil
}
