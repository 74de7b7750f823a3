package tensor

import (
	"errors"
	"fmt"

	"github.com/fumitoshi0524/cifarnet/internal/parallel"
)

// AddBias2D adds bias [cols] to every row of a [rows, cols].
func AddBias2D(a, bias *Tensor) (*Tensor, error) {
	if len(a.shape) != 2 {
		return nil, errors.New("AddBias2D expects rank 2 tensor input")
	}
	if len(bias.shape) != 1 {
		return nil, errors.New("AddBias2D expects rank 1 bias")
	}
	if a.shape[1] != bias.shape[0] {
		return nil, fmt.Errorf("AddBias2D dimension mismatch: %d columns, %d bias entries", a.shape[1], bias.shape[0])
	}
	rows, cols := a.shape[0], a.shape[1]
	out := a.Clone()
	parallel.For(rows, func(start, end int) {
		for i := start; i < end; i++ {
			offset := i * cols
			for j := 0; j < cols; j++ {
				out.data[offset+j] += bias.data[j]
			}
		}
	})
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, grad)
		}
		if bias.requiresGrad {
			agg := Zeros(bias.shape...)
			for i := 0; i < rows; i++ {
				offset := i * cols
				for j := 0; j < cols; j++ {
					agg.data[j] += grad.data[offset+j]
				}
			}
			accumulate(grads, bias, agg)
		}
	}, a, bias)
	return out, nil
}
