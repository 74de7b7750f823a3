package tensor

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// ArgMax returns, for each row of a rank 2 tensor, the column holding the
// largest value. Ties resolve to the lowest column index.
func ArgMax(a *Tensor) ([]int, error) {
	if len(a.shape) != 2 {
		return nil, errors.New("ArgMax expects rank 2 tensor")
	}
	rows, cols := a.shape[0], a.shape[1]
	out := make([]int, rows)
	for i := range out {
		out[i] = floats.MaxIdx(a.data[i*cols : (i+1)*cols])
	}
	return out, nil
}
