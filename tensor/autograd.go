package tensor

import (
	"errors"

	"github.com/fumitoshi0524/cifarnet/internal/parallel"
)

// Backward propagates gradients from t, which must be a single-element tensor
// produced by tracked operations, into the grad of every leaf that requires it.
// Intermediate results do not keep their gradients.
func (t *Tensor) Backward() error {
	if t == nil {
		return errors.New("nil tensor")
	}
	if !t.requiresGrad {
		return errors.New("tensor does not require grad")
	}
	if len(t.data) != 1 {
		return errors.New("backward expects a scalar output")
	}
	order := topo(t)
	grads := map[*Tensor]*Tensor{}
	grads[t] = Full(1, t.shape...)
	for i := len(order) - 1; i >= 0; i-- {
		current := order[i]
		grad := grads[current]
		if grad == nil {
			continue
		}
		delete(grads, current)
		if current.node == nil {
			if current.grad == nil {
				current.grad = grad.Clone()
			} else {
				addInPlace(current.grad, grad)
			}
			continue
		}
		current.node.backward(grad, grads)
	}
	return nil
}

func topo(root *Tensor) []*Tensor {
	visited := map[*Tensor]bool{}
	var order []*Tensor
	var visit func(*Tensor)
	visit = func(n *Tensor) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true
		for _, parent := range n.parents {
			visit(parent)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}

func accumulate(grads map[*Tensor]*Tensor, target *Tensor, value *Tensor) {
	if target == nil || value == nil {
		return
	}
	if existing, ok := grads[target]; ok {
		addInPlace(existing, value)
	} else {
		grads[target] = value.Clone()
	}
}

func addInPlace(dst, src *Tensor) {
	if err := ensureSameShape(dst, src); err != nil {
		panic(err)
	}
	parallel.For(len(dst.data), func(start, end int) {
		for i := start; i < end; i++ {
			dst.data[i] += src.data[i]
		}
	})
}

// link marks out as produced from parents when gradients are being tracked.
// Only parents that require grad are recorded.
func link(out *Tensor, backward func(grad *Tensor, grads map[*Tensor]*Tensor), parents ...*Tensor) {
	if !tracked(parents...) {
		return
	}
	kept := make([]*Tensor, 0, len(parents))
	for _, p := range parents {
		if p != nil && p.requiresGrad {
			kept = append(kept, p)
		}
	}
	out.requiresGrad = true
	out.parents = kept
	out.node = &node{backward: backward}
}
