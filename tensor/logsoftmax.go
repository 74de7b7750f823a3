package tensor

import (
	"errors"
	"math"

	"github.com/fumitoshi0524/cifarnet/internal/parallel"
)

// LogSoftmax normalizes each row of a rank 2 tensor into log-probabilities.
// Only axis 1 (or -1) is supported.
func LogSoftmax(a *Tensor, axis int) (*Tensor, error) {
	if len(a.shape) != 2 {
		return nil, errors.New("LogSoftmax expects rank 2 tensor")
	}
	if axis < 0 {
		axis += len(a.shape)
	}
	if axis != 1 {
		return nil, errors.New("LogSoftmax currently supports axis 1 only")
	}
	rows, cols := a.shape[0], a.shape[1]
	out := Zeros(rows, cols)
	parallel.For(rows, func(start, end int) {
		for i := start; i < end; i++ {
			row := a.data[i*cols : (i+1)*cols]
			maxVal := row[0]
			for _, v := range row[1:] {
				if v > maxVal {
					maxVal = v
				}
			}
			sum := 0.0
			for _, v := range row {
				sum += math.Exp(v - maxVal)
			}
			logSum := maxVal + math.Log(sum)
			dst := out.data[i*cols : (i+1)*cols]
			for j, v := range row {
				dst[j] = v - logSum
			}
		}
	})
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		gx := Zeros(a.shape...)
		parallel.For(rows, func(start, end int) {
			for i := start; i < end; i++ {
				offset := i * cols
				sumGrad := 0.0
				for j := 0; j < cols; j++ {
					sumGrad += grad.data[offset+j]
				}
				for j := 0; j < cols; j++ {
					soft := math.Exp(out.data[offset+j])
					gx.data[offset+j] = grad.data[offset+j] - soft*sumGrad
				}
			}
		})
		accumulate(grads, a, gx)
	}, a)
	return out, nil
}
