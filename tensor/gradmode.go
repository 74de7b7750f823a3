package tensor

import "sync/atomic"

var noGradDepth int32

// NoGrad runs fn with gradient tracking disabled. Operations executed inside
// fn produce plain tensors that carry no graph, even when their inputs
// require grad.
func NoGrad(fn func() error) error {
	atomic.AddInt32(&noGradDepth, 1)
	defer atomic.AddInt32(&noGradDepth, -1)
	return fn()
}

// GradEnabled reports whether operations currently record a graph.
func GradEnabled() bool {
	return atomic.LoadInt32(&noGradDepth) == 0
}

func tracked(ts ...*Tensor) bool {
	if !GradEnabled() {
		return false
	}
	for _, t := range ts {
		if t != nil && t.requiresGrad {
			return true
		}
	}
	return false
}
