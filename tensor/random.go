package tensor

import "math/rand"

// NewRand returns a deterministic random source for seed. Weight
// initialization and shuffling take such a source explicitly instead of
// sharing package state.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Randn fills a tensor of the given shape with standard normal samples drawn
// from rng.
func Randn(rng *rand.Rand, shape ...int) *Tensor {
	t := Zeros(shape...)
	for i := range t.data {
		t.data[i] = rng.NormFloat64()
	}
	return t
}
