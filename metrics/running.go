package metrics

// Running accumulates per-phase counters over the batches of one epoch.
type Running struct {
	Seen     int
	Correct  int
	Batches  int
	LastLoss float64
	SumLoss  float64
}

// Record adds one batch: its example count, how many predictions were
// correct and the batch-mean loss.
func (r *Running) Record(examples, correct int, loss float64) {
	r.Seen += examples
	r.Correct += correct
	r.Batches++
	r.LastLoss = loss
	r.SumLoss += loss
}

// Accuracy is Correct/Seen, or 0 before any example was recorded.
func (r *Running) Accuracy() float64 {
	if r.Seen == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Seen)
}

// AvgLoss divides the summed batch losses by the number of examples seen.
// This matches the reported test metric, which sums batch means and
// normalizes per example rather than per batch.
func (r *Running) AvgLoss() float64 {
	if r.Seen == 0 {
		return 0
	}
	return r.SumLoss / float64(r.Seen)
}

// Reset zeroes every counter.
func (r *Running) Reset() {
	*r = Running{}
}

// Summary is the end-of-phase view of a Running.
type Summary struct {
	Epoch    int
	Seen     int
	Correct  int
	AvgLoss  float64
	Accuracy float64
}

// Snapshot captures the current counters for epoch.
func (r *Running) Snapshot(epoch int) Summary {
	return Summary{
		Epoch:    epoch,
		Seen:     r.Seen,
		Correct:  r.Correct,
		AvgLoss:  r.AvgLoss(),
		Accuracy: r.Accuracy(),
	}
}
