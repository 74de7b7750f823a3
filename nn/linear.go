package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/fumitoshi0524/cifarnet/tensor"
)

type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *tensor.Tensor
	bias        *tensor.Tensor
}

// NewLinear creates a fully connected layer whose weight and bias are drawn
// from N(0, 2/(in+out)) using rng.
func NewLinear(rng *rand.Rand, inFeatures, outFeatures int, withBias bool) *Linear {
	w := tensor.Randn(rng, outFeatures, inFeatures)
	scale := math.Sqrt(2.0 / float64(inFeatures+outFeatures))
	w.Scale(scale)
	w.SetRequiresGrad(true)
	var b *tensor.Tensor
	if withBias {
		b = tensor.Randn(rng, outFeatures)
		b.Scale(scale)
		b.SetRequiresGrad(true)
	}
	return &Linear{inFeatures: inFeatures, outFeatures: outFeatures, weight: w, bias: b}
}

func (l *Linear) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	shape := input.Shape()
	x := input
	var err error
	switch len(shape) {
	case 1:
		x, err = input.Reshape(1, shape[0])
	case 2:
	default:
		x, err = tensor.Flatten(input)
	}
	if err != nil {
		return nil, err
	}
	if got := x.Shape()[1]; got != l.inFeatures {
		return nil, fmt.Errorf("Linear expects %d input features, got %d", l.inFeatures, got)
	}
	output, err := tensor.MatMul(x, l.weight.MustTranspose())
	if err != nil {
		return nil, err
	}
	if l.bias != nil {
		output, err = tensor.AddBias2D(output, l.bias)
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

func (l *Linear) Parameters() []*tensor.Tensor {
	params := []*tensor.Tensor{l.weight}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}

func (l *Linear) ZeroGrad() {
	zeroGrad(l.Parameters())
}

func (l *Linear) Weight() *tensor.Tensor {
	return l.weight
}

func (l *Linear) Bias() *tensor.Tensor {
	return l.bias
}
