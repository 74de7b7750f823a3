package tensor

import "github.com/fumitoshi0524/cifarnet/internal/parallel"

// Relu clamps negative entries to zero. The gradient passes through where the
// output is positive.
func Relu(a *Tensor) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			if v := a.data[i]; v > 0 {
				out.data[i] = v
			}
		}
	})
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		g := Zeros(a.shape...)
		parallel.For(len(g.data), func(start, end int) {
			for i := start; i < end; i++ {
				if out.data[i] > 0 {
					g.data[i] = grad.data[i]
				}
			}
		})
		accumulate(grads, a, g)
	}, a)
	return out
}
