package tensor

import "github.com/fumitoshi0524/cifarnet/internal/parallel"

// Scale multiplies every element by v in place. It bypasses autograd.
func (t *Tensor) Scale(v float64) {
	parallel.For(len(t.data), func(start, end int) {
		for i := start; i < end; i++ {
			t.data[i] *= v
		}
	})
}

// AddScaled performs t += alpha*other in place. Optimizers use it to apply
// updates to parameters; it bypasses autograd.
func (t *Tensor) AddScaled(other *Tensor, alpha float64) error {
	if err := ensureSameShape(t, other); err != nil {
		return err
	}
	parallel.For(len(t.data), func(start, end int) {
		for i := start; i < end; i++ {
			t.data[i] += alpha * other.data[i]
		}
	})
	return nil
}
