package loss

import "github.com/fumitoshi0524/cifarnet/tensor"

// Func maps raw class scores and integer targets to a scalar loss.
type Func func(logits *tensor.Tensor, targets []int) (*tensor.Tensor, error)

// CrossEntropy applies log-softmax to logits [batch, classes] and returns the
// batch-mean negative log likelihood of targets.
func CrossEntropy(logits *tensor.Tensor, targets []int) (*tensor.Tensor, error) {
	logProb, err := tensor.LogSoftmax(logits, 1)
	if err != nil {
		return nil, err
	}
	return NLLLoss(logProb, targets)
}
