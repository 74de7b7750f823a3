package dataset

import (
	"github.com/fumitoshi0524/cifarnet/tensor"
	"github.com/pkg/errors"
)

// Batch is an index-aligned group of images and labels.
type Batch struct {
	// Index is the 0-based position of the batch within its epoch.
	Index int
	// Images is shaped [n, channels, height, width].
	Images *tensor.Tensor
	Labels []int
	// Samples holds the dataset positions the batch was drawn from.
	Samples []int
}

// Len reports the number of examples in the batch.
func (b Batch) Len() int {
	return len(b.Labels)
}

// Dataset stores images as contiguous channel-major float64 pixels in [0, 1].
type Dataset struct {
	images   []float64
	labels   []int
	channels int
	height   int
	width    int
}

// New wraps images (count*channels*height*width values) and labels. The
// slices are retained, not copied.
func New(images []float64, labels []int, channels, height, width int) (*Dataset, error) {
	if channels <= 0 || height <= 0 || width <= 0 {
		return nil, errors.Errorf("invalid image shape %dx%dx%d", channels, height, width)
	}
	features := channels * height * width
	if len(images) != len(labels)*features {
		return nil, errors.Errorf("have %d pixel values for %d images of %d values", len(images), len(labels), features)
	}
	return &Dataset{images: images, labels: labels, channels: channels, height: height, width: width}, nil
}

// Count returns the number of samples in the dataset.
func (d *Dataset) Count() int {
	if d == nil {
		return 0
	}
	return len(d.labels)
}

// Features returns the flattened value count per image.
func (d *Dataset) Features() int {
	return d.channels * d.height * d.width
}

// Shape returns channels, height and width of one image.
func (d *Dataset) Shape() (channels, height, width int) {
	return d.channels, d.height, d.width
}

// Label returns the class of sample i.
func (d *Dataset) Label(i int) int {
	return d.labels[i]
}

// Classes returns one more than the largest label, or 0 when empty.
func (d *Dataset) Classes() int {
	top := -1
	for _, l := range d.labels {
		if l > top {
			top = l
		}
	}
	return top + 1
}

// Batch materializes the samples at indices into a [n, c, h, w] tensor.
func (d *Dataset) Batch(indices []int) (Batch, error) {
	if len(indices) == 0 {
		return Batch{}, errors.New("empty batch")
	}
	feat := d.Features()
	data := make([]float64, len(indices)*feat)
	labels := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(d.labels) {
			return Batch{}, errors.Errorf("sample %d out of range [0, %d)", idx, len(d.labels))
		}
		copy(data[i*feat:(i+1)*feat], d.images[idx*feat:(idx+1)*feat])
		labels[i] = d.labels[idx]
	}
	images, err := tensor.New(data, len(indices), d.channels, d.height, d.width)
	if err != nil {
		return Batch{}, err
	}
	return Batch{
		Images:  images,
		Labels:  labels,
		Samples: append([]int(nil), indices...),
	}, nil
}
