package nn

import "github.com/fumitoshi0524/cifarnet/tensor"

// Module is a differentiable function with trainable parameters.
type Module interface {
	Forward(input *tensor.Tensor) (*tensor.Tensor, error)
	Parameters() []*tensor.Tensor
	ZeroGrad()
}

func zeroGrad(params []*tensor.Tensor) {
	for _, p := range params {
		if p != nil {
			p.ZeroGrad()
		}
	}
}
