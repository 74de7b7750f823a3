package tensor

import "github.com/fumitoshi0524/cifarnet/internal/parallel"

// MulScalar returns a*value element-wise.
func MulScalar(a *Tensor, value float64) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] * value
		}
	})
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		scaled := grad.Clone()
		scaled.Scale(value)
		accumulate(grads, a, scaled)
	}, a)
	return out
}
