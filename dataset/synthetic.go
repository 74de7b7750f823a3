package dataset

import "math/rand"

// Synthetic builds n images of the given shape whose pixels are a per-class
// prototype plus uniform noise of amplitude noise, clamped to [0, 1]. Labels
// cycle through the classes so every class is represented.
func Synthetic(rng *rand.Rand, n, classes, channels, height, width int, noise float64) (*Dataset, error) {
	features := channels * height * width
	prototypes := make([][]float64, classes)
	for c := range prototypes {
		p := make([]float64, features)
		for i := range p {
			p[i] = rng.Float64()
		}
		prototypes[c] = p
	}
	images := make([]float64, 0, n*features)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		label := i % classes
		labels[i] = label
		for _, v := range prototypes[label] {
			v += (rng.Float64()*2 - 1) * noise
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			images = append(images, v)
		}
	}
	return New(images, labels, channels, height, width)
}
