package nn

import (
	"math"
	"math/rand"

	"github.com/fumitoshi0524/cifarnet/tensor"
)

type Conv2d struct {
	inChannels  int
	outChannels int
	kernelH     int
	kernelW     int
	strideH     int
	strideW     int
	padH        int
	padW        int
	weight      *tensor.Tensor
	bias        *tensor.Tensor
}

// NewConv2d creates a convolution with He-normal weights drawn from rng and a
// zero bias.
func NewConv2d(rng *rand.Rand, inChannels, outChannels, kernelH, kernelW int, strideH, strideW, padH, padW int, withBias bool) *Conv2d {
	if strideH <= 0 {
		strideH = 1
	}
	if strideW <= 0 {
		strideW = 1
	}
	w := tensor.Randn(rng, outChannels, inChannels, kernelH, kernelW)
	fanIn := float64(inChannels * kernelH * kernelW)
	w.Scale(math.Sqrt(2.0 / fanIn))
	w.SetRequiresGrad(true)
	var b *tensor.Tensor
	if withBias {
		b = tensor.Zeros(outChannels)
		b.SetRequiresGrad(true)
	}
	return &Conv2d{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelH:     kernelH,
		kernelW:     kernelW,
		strideH:     strideH,
		strideW:     strideW,
		padH:        padH,
		padW:        padW,
		weight:      w,
		bias:        b,
	}
}

func (c *Conv2d) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Conv2D(input, c.weight, c.bias, c.strideH, c.strideW, c.padH, c.padW)
}

func (c *Conv2d) Parameters() []*tensor.Tensor {
	params := []*tensor.Tensor{c.weight}
	if c.bias != nil {
		params = append(params, c.bias)
	}
	return params
}

func (c *Conv2d) ZeroGrad() {
	zeroGrad(c.Parameters())
}

func (c *Conv2d) Weight() *tensor.Tensor {
	return c.weight
}

func (c *Conv2d) Bias() *tensor.Tensor {
	return c.bias
}
