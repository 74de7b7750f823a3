package nn

import (
	"errors"
	"fmt"
	"math/rand"
)

// LayerKind names a layer type in a declarative architecture.
type LayerKind string

const (
	KindConv2d    LayerKind = "conv2d"
	KindReLU      LayerKind = "relu"
	KindMaxPool2d LayerKind = "maxpool2d"
	KindFlatten   LayerKind = "flatten"
	KindLinear    LayerKind = "linear"
)

// LayerConfig describes one layer. In and Out are channels for conv2d and
// features for linear. Kernel, Stride and Padding are square and apply to
// conv2d and maxpool2d; a zero pooling stride means "same as Kernel".
type LayerConfig struct {
	Kind    LayerKind
	In      int
	Out     int
	Kernel  int
	Stride  int
	Padding int
	NoBias  bool
}

// Build instantiates layers in order and chains them. Every trainable
// parameter is initialized from rng, so equal seeds give equal models.
func Build(layers []LayerConfig, rng *rand.Rand) (*Sequential, error) {
	if len(layers) == 0 {
		return nil, errors.New("architecture has no layers")
	}
	if rng == nil {
		return nil, errors.New("Build requires a random source")
	}
	mods := make([]Module, 0, len(layers))
	for i, cfg := range layers {
		mod, err := cfg.build(rng)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, cfg.Kind, err)
		}
		mods = append(mods, mod)
	}
	return NewSequential(mods...), nil
}

func (c LayerConfig) build(rng *rand.Rand) (Module, error) {
	switch c.Kind {
	case KindConv2d:
		if c.In <= 0 || c.Out <= 0 || c.Kernel <= 0 {
			return nil, errors.New("conv2d needs positive In, Out and Kernel")
		}
		return NewConv2d(rng, c.In, c.Out, c.Kernel, c.Kernel, c.Stride, c.Stride, c.Padding, c.Padding, !c.NoBias), nil
	case KindLinear:
		if c.In <= 0 || c.Out <= 0 {
			return nil, errors.New("linear needs positive In and Out")
		}
		return NewLinear(rng, c.In, c.Out, !c.NoBias), nil
	case KindMaxPool2d:
		if c.Kernel <= 0 {
			return nil, errors.New("maxpool2d needs a positive Kernel")
		}
		return NewMaxPool2d(c.Kernel, c.Kernel, c.Stride, c.Stride, c.Padding, c.Padding), nil
	case KindReLU:
		return Relu(), nil
	case KindFlatten:
		return Flatten(), nil
	default:
		return nil, fmt.Errorf("unknown layer kind %q", c.Kind)
	}
}
