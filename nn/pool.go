package nn

import "github.com/fumitoshi0524/cifarnet/tensor"

type MaxPool2d struct {
	kernelH int
	kernelW int
	strideH int
	strideW int
	padH    int
	padW    int
}

// NewMaxPool2d creates a max pooling layer. A non-positive stride defaults to
// the kernel size, giving non-overlapping windows.
func NewMaxPool2d(kernelH, kernelW, strideH, strideW, padH, padW int) *MaxPool2d {
	if strideH <= 0 {
		strideH = kernelH
	}
	if strideW <= 0 {
		strideW = kernelW
	}
	return &MaxPool2d{
		kernelH: kernelH,
		kernelW: kernelW,
		strideH: strideH,
		strideW: strideW,
		padH:    padH,
		padW:    padW,
	}
}

func (m *MaxPool2d) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.MaxPool2D(input, m.kernelH, m.kernelW, m.strideH, m.strideW, m.padH, m.padW)
}

func (m *MaxPool2d) Parameters() []*tensor.Tensor {
	return nil
}

func (m *MaxPool2d) ZeroGrad() {}
