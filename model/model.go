// Package model defines the small CIFAR-10 convolutional classifier.
package model

import (
	"fmt"
	"math/rand"

	"github.com/fumitoshi0524/cifarnet/nn"
	"github.com/fumitoshi0524/cifarnet/tensor"
)

const (
	InputChannels = 3
	InputHeight   = 32
	InputWidth    = 32

	// DefaultClasses is the CIFAR-10 label count.
	DefaultClasses = 10
)

// SimpleCNN returns two conv/relu/pool stages followed by a two-layer
// classifier head emitting one raw logit per class.
func SimpleCNN(classes int) []nn.LayerConfig {
	return []nn.LayerConfig{
		{Kind: nn.KindConv2d, In: InputChannels, Out: 16, Kernel: 3, Stride: 1, Padding: 1},
		{Kind: nn.KindReLU},
		{Kind: nn.KindMaxPool2d, Kernel: 2, Stride: 2},
		{Kind: nn.KindConv2d, In: 16, Out: 32, Kernel: 3, Stride: 1, Padding: 1},
		{Kind: nn.KindReLU},
		{Kind: nn.KindMaxPool2d, Kernel: 2, Stride: 2},
		{Kind: nn.KindFlatten},
		{Kind: nn.KindLinear, In: 32 * (InputHeight / 4) * (InputWidth / 4), Out: 128},
		{Kind: nn.KindReLU},
		{Kind: nn.KindLinear, In: 128, Out: classes},
	}
}

// CNN wraps the built network and rejects inputs of the wrong shape before
// running any kernel.
type CNN struct {
	net *nn.Sequential
}

// New builds SimpleCNN for classes outputs with parameters drawn from rng.
func New(rng *rand.Rand, classes int) (*CNN, error) {
	if classes < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", classes)
	}
	net, err := nn.Build(SimpleCNN(classes), rng)
	if err != nil {
		return nil, fmt.Errorf("build cnn: %w", err)
	}
	return &CNN{net: net}, nil
}

func (m *CNN) Forward(images *tensor.Tensor) (*tensor.Tensor, error) {
	if err := CheckInput(images); err != nil {
		return nil, err
	}
	return m.net.Forward(images)
}

func (m *CNN) Parameters() []*tensor.Tensor {
	return m.net.Parameters()
}

func (m *CNN) ZeroGrad() {
	m.net.ZeroGrad()
}

// Network exposes the underlying layer stack.
func (m *CNN) Network() *nn.Sequential {
	return m.net
}

// CheckInput reports whether images is a non-empty [n, 3, 32, 32] batch.
func CheckInput(images *tensor.Tensor) error {
	if images == nil {
		return fmt.Errorf("nil input")
	}
	shape := images.Shape()
	if len(shape) != 4 || shape[1] != InputChannels || shape[2] != InputHeight || shape[3] != InputWidth {
		return fmt.Errorf("expected input [n %d %d %d], got %v", InputChannels, InputHeight, InputWidth, shape)
	}
	return nil
}
