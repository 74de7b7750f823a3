package optim

import (
	"errors"

	"github.com/fumitoshi0524/cifarnet/tensor"
)

// SGD is plain stochastic gradient descent with optional momentum, Nesterov
// lookahead and L2 weight decay. With the zero config beyond LR it performs
// p -= lr * grad.
type SGD struct {
	params      []*tensor.Tensor
	lr          float64
	momentum    float64
	weightDecay float64
	nesterov    bool
	velocity    map[*tensor.Tensor]*tensor.Tensor
}

type SGDConfig struct {
	LR          float64
	Momentum    float64
	WeightDecay float64
	Nesterov    bool
}

func NewSGD(params []*tensor.Tensor, lr float64, momentum float64) *SGD {
	return NewSGDWithConfig(params, SGDConfig{LR: lr, Momentum: momentum})
}

func NewSGDWithConfig(params []*tensor.Tensor, cfg SGDConfig) *SGD {
	return &SGD{
		params:      append([]*tensor.Tensor(nil), params...),
		lr:          cfg.LR,
		momentum:    cfg.Momentum,
		weightDecay: cfg.WeightDecay,
		nesterov:    cfg.Nesterov,
		velocity:    make(map[*tensor.Tensor]*tensor.Tensor),
	}
}

// Validate reports configurations that cannot train.
func (c SGDConfig) Validate() error {
	if c.LR <= 0 {
		return errors.New("learning rate must be > 0")
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.New("momentum must be in [0, 1)")
	}
	if c.WeightDecay < 0 {
		return errors.New("weight decay must be >= 0")
	}
	if c.Nesterov && c.Momentum == 0 {
		return errors.New("nesterov requires momentum")
	}
	return nil
}

func (o *SGD) Step() error {
	for _, p := range o.params {
		if p == nil {
			continue
		}
		grad := p.Grad()
		if grad == nil {
			continue
		}
		update := grad
		if o.weightDecay > 0 {
			if err := update.AddScaled(p, o.weightDecay); err != nil {
				return err
			}
		}
		if o.momentum > 0 {
			v := o.velocity[p]
			if v == nil {
				v = tensor.Zeros(grad.Shape()...)
				o.velocity[p] = v
			}
			v.Scale(o.momentum)
			if err := v.AddScaled(update, 1.0); err != nil {
				return err
			}
			if o.nesterov {
				if err := update.AddScaled(v, o.momentum); err != nil {
					return err
				}
			} else {
				update = v
			}
		}
		if err := p.AddScaled(update, -o.lr); err != nil {
			return err
		}
	}
	return nil
}

func (o *SGD) LR() float64 {
	return o.lr
}

func (o *SGD) ZeroGrad() {
	for _, p := range o.params {
		if p != nil {
			p.ZeroGrad()
		}
	}
}
