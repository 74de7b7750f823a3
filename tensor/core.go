package tensor

import (
	"errors"
	"fmt"
)

// Tensor is a dense, row-major float64 array that optionally records the
// operations producing it so gradients can be propagated back to its leaves.
type Tensor struct {
	data         []float64
	shape        []int
	grad         *Tensor
	requiresGrad bool
	node         *node
	parents      []*Tensor
}

type node struct {
	backward func(grad *Tensor, grads map[*Tensor]*Tensor)
}

func New(data []float64, shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, errors.New("shape is required")
	}
	total, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if total != len(data) {
		return nil, fmt.Errorf("data and shape mismatch: %d values for shape %v", len(data), shape)
	}
	return &Tensor{
		data:  append([]float64(nil), data...),
		shape: append([]int(nil), shape...),
	}, nil
}

func MustNew(data []float64, shape ...int) *Tensor {
	t, err := New(data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

// wrap adopts data without copying. Callers must not retain data.
func wrap(data []float64, shape ...int) *Tensor {
	return &Tensor{data: data, shape: append([]int(nil), shape...)}
}

func Zeros(shape ...int) *Tensor {
	size, err := volume(shape)
	if err != nil {
		panic(err)
	}
	return wrap(make([]float64, size), shape...)
}

func Full(value float64, shape ...int) *Tensor {
	t := Zeros(shape...)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	return &Tensor{
		data:  append([]float64(nil), t.data...),
		shape: append([]int(nil), t.shape...),
	}
}

func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

func (t *Tensor) Numel() int {
	return len(t.data)
}

func (t *Tensor) Data() []float64 {
	return append([]float64(nil), t.data...)
}

// Item returns the single value held by a one-element tensor such as a loss.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("Item called on tensor with %d elements", len(t.data)))
	}
	return t.data[0]
}

// SetData overwrites the tensor's underlying values. The provided slice must match Numel().
func (t *Tensor) SetData(values []float64) error {
	if len(values) != len(t.data) {
		return errors.New("SetData expects matching element count")
	}
	copy(t.data, values)
	return nil
}

func (t *Tensor) SetRequiresGrad(v bool) {
	t.requiresGrad = v
}

func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

func (t *Tensor) Grad() *Tensor {
	if t.grad == nil {
		return nil
	}
	return t.grad.Clone()
}

func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

func (t *Tensor) Detach() *Tensor {
	return t.Clone()
}

func volume(shape []int) (int, error) {
	total := 1
	for _, dim := range shape {
		if dim <= 0 {
			return 0, fmt.Errorf("invalid shape %v", shape)
		}
		total *= dim
	}
	return total, nil
}

func ensureSameShape(a, b *Tensor) error {
	if !sameShape(a.shape, b.shape) {
		return fmt.Errorf("shape mismatch: %v vs %v", a.shape, b.shape)
	}
	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, dim := range a {
		if dim != b[i] {
			return false
		}
	}
	return true
}
