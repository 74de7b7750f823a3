package tensor

import (
	"fmt"

	"github.com/fumitoshi0524/cifarnet/internal/parallel"
)

// MatMul multiplies rank 2 tensors a [m, k] and b [k, n].
func MatMul(a, b *Tensor) (*Tensor, error) {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		return nil, fmt.Errorf("matmul expects rank 2 tensors, got %v and %v", a.shape, b.shape)
	}
	if a.shape[1] != b.shape[0] {
		return nil, fmt.Errorf("incompatible shapes for matmul: %v x %v", a.shape, b.shape)
	}
	out := matmulRaw(a, b, false, false)
	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, matmulRaw(grad, b, false, true))
		}
		if b.requiresGrad {
			accumulate(grads, b, matmulRaw(a, grad, true, false))
		}
	}, a, b)
	return out, nil
}

func matmulRaw(a, b *Tensor, transA, transB bool) *Tensor {
	aRows, aCols := shape2D(a, transA)
	bRows, bCols := shape2D(b, transB)
	if aCols != bRows {
		panic("matmulRaw shape mismatch")
	}
	out := Zeros(aRows, bCols)
	parallel.For(aRows, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.data[i*bCols : (i+1)*bCols]
			for k := 0; k < aCols; k++ {
				aik := index2D(a, i, k, transA)
				if aik == 0 {
					continue
				}
				if !transB {
					src := b.data[k*bCols : (k+1)*bCols]
					for j, v := range src {
						row[j] += aik * v
					}
					continue
				}
				for j := 0; j < bCols; j++ {
					row[j] += aik * index2D(b, k, j, true)
				}
			}
		}
	})
	return out
}

func shape2D(t *Tensor, trans bool) (int, int) {
	if len(t.shape) != 2 {
		panic("shape2D expects rank 2 tensor")
	}
	if trans {
		return t.shape[1], t.shape[0]
	}
	return t.shape[0], t.shape[1]
}

func index2D(t *Tensor, row, col int, trans bool) float64 {
	if !trans {
		return t.data[row*t.shape[1]+col]
	}
	return t.data[col*t.shape[1]+row]
}
