package loss

import (
	"errors"
	"fmt"

	"github.com/fumitoshi0524/cifarnet/tensor"
)

// NLLLoss computes the mean negative log likelihood of the target classes
// given log-probabilities shaped [batch, classes].
func NLLLoss(logProb *tensor.Tensor, targets []int) (*tensor.Tensor, error) {
	shape := logProb.Shape()
	if len(shape) != 2 {
		return nil, errors.New("NLLLoss expects input shape [batch, classes]")
	}
	batch, classes := shape[0], shape[1]
	if len(targets) != batch {
		return nil, fmt.Errorf("target length %d does not match batch size %d", len(targets), batch)
	}
	mask := make([]float64, batch*classes)
	for i, label := range targets {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("target %d at index %d out of range [0, %d)", label, i, classes)
		}
		mask[i*classes+label] = 1
	}
	picked, err := tensor.Mul(logProb, tensor.MustNew(mask, batch, classes))
	if err != nil {
		return nil, err
	}
	return tensor.MulScalar(tensor.Sum(picked), -1.0/float64(batch)), nil
}
