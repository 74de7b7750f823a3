package tensor

import "github.com/fumitoshi0524/cifarnet/internal/parallel"

func Add(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] + b.data[i]
		}
	})
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, grad)
		}
		if b.requiresGrad {
			accumulate(grads, b, grad)
		}
	}, a, b)
	return out, nil
}

func Sub(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] - b.data[i]
		}
	})
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, grad)
		}
		if b.requiresGrad {
			neg := grad.Clone()
			neg.Scale(-1)
			accumulate(grads, b, neg)
		}
	}, a, b)
	return out, nil
}

func Mul(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := hadamard(a, b)
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, hadamard(grad, b))
		}
		if b.requiresGrad {
			accumulate(grads, b, hadamard(grad, a))
		}
	}, a, b)
	return out, nil
}

func Sum(a *Tensor) *Tensor {
	val := 0.0
	for _, v := range a.data {
		val += v
	}
	out := wrap([]float64{val}, 1)
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		accumulate(grads, a, Full(grad.data[0], a.shape...))
	}, a)
	return out
}

func Mean(a *Tensor) *Tensor {
	return MulScalar(Sum(a), 1.0/float64(a.Numel()))
}

func hadamard(a, b *Tensor) *Tensor {
	if err := ensureSameShape(a, b); err != nil {
		panic(err)
	}
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] * b.data[i]
		}
	})
	return out
}
