package tensor

import (
	"errors"
	"fmt"
)

// Reshape returns a view of t with a new shape. One dimension may be -1 and
// is inferred from the element count. The view shares storage with t.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, errors.New("reshape shape required")
	}
	shape = append([]int(nil), shape...)
	total := t.Numel()
	prod := 1
	infer := -1
	for i, dim := range shape {
		if dim == -1 {
			if infer != -1 {
				return nil, errors.New("multiple inferred dimensions")
			}
			infer = i
			continue
		}
		if dim <= 0 {
			return nil, errors.New("invalid reshape dimension")
		}
		prod *= dim
	}
	if infer != -1 {
		if total%prod != 0 {
			return nil, errors.New("cannot infer dimension")
		}
		shape[infer] = total / prod
		prod = total
	}
	if prod != total {
		return nil, fmt.Errorf("reshape size mismatch: %v has %d elements, target %v", t.shape, total, shape)
	}
	out := &Tensor{data: t.data, shape: shape}
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		accumulate(grads, t, wrap(grad.data, t.shape...))
	}, t)
	return out, nil
}

// Flatten collapses every dimension after the first, producing [batch, features].
func Flatten(a *Tensor) (*Tensor, error) {
	if len(a.shape) < 2 {
		return a.Reshape(a.Numel())
	}
	return a.Reshape(a.shape[0], -1)
}
