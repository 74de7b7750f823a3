package optim

// Optimizer updates a fixed set of parameters from their accumulated grads.
type Optimizer interface {
	Step() error
	ZeroGrad()
}
