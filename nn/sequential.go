package nn

import (
	"fmt"

	"github.com/fumitoshi0524/cifarnet/tensor"
)

// Sequential chains modules, feeding each output into the next.
type Sequential struct {
	modules []Module
}

func NewSequential(mods ...Module) *Sequential {
	copyMods := make([]Module, len(mods))
	copy(copyMods, mods)
	return &Sequential{modules: copyMods}
}

func (s *Sequential) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	var err error
	out := input
	for idx, m := range s.modules {
		out, err = m.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", idx, err)
		}
	}
	return out, nil
}

func (s *Sequential) Parameters() []*tensor.Tensor {
	var params []*tensor.Tensor
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

func (s *Sequential) ZeroGrad() {
	for _, m := range s.modules {
		m.ZeroGrad()
	}
}

// Len reports the number of chained modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Layer returns the module at position i.
func (s *Sequential) Layer(i int) Module {
	return s.modules[i]
}
