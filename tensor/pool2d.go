package tensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/fumitoshi0524/cifarnet/internal/parallel"
)

// MaxPool2D applies 2D max pooling on the input tensor.
// Input shape: [batch, channels, in_h, in_w]
// Within a window the first maximal element (row-major) receives the gradient.
func MaxPool2D(input *Tensor, kernelH, kernelW, strideH, strideW, padH, padW int) (*Tensor, error) {
	if len(input.shape) != 4 {
		return nil, fmt.Errorf("MaxPool2D expects input shape [batch, channels, height, width], got %v", input.shape)
	}
	if kernelH <= 0 || kernelW <= 0 {
		return nil, errors.New("kernel size must be positive")
	}
	if strideH <= 0 || strideW <= 0 {
		return nil, errors.New("stride must be positive")
	}
	batch := input.shape[0]
	channels := input.shape[1]
	inH := input.shape[2]
	inW := input.shape[3]
	outH := (inH+2*padH-kernelH)/strideH + 1
	outW := (inW+2*padW-kernelW)/strideW + 1
	if outH <= 0 || outW <= 0 {
		return nil, errors.New("invalid output size")
	}

	total := batch * channels * outH * outW
	indices := make([]int, total)
	out := Zeros(batch, channels, outH, outW)

	parallel.For(batch*channels, func(start, end int) {
		for nc := start; nc < end; nc++ {
			outBase := nc * outH * outW
			inBase := nc * inH * inW
			for oh := 0; oh < outH; oh++ {
				ihBase := oh*strideH - padH
				outRow := outBase + oh*outW
				for ow := 0; ow < outW; ow++ {
					iwBase := ow*strideW - padW
					bestVal := math.Inf(-1)
					bestIdx := -1
					for kh := 0; kh < kernelH; kh++ {
						ih := ihBase + kh
						if ih < 0 || ih >= inH {
							continue
						}
						inputRow := inBase + ih*inW
						for kw := 0; kw < kernelW; kw++ {
							iw := iwBase + kw
							if iw < 0 || iw >= inW {
								continue
							}
							idx := inputRow + iw
							if val := input.data[idx]; bestIdx < 0 || val > bestVal {
								bestVal = val
								bestIdx = idx
							}
						}
					}
					out.data[outRow+ow] = bestVal
					indices[outRow+ow] = bestIdx
				}
			}
		}
	})

	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		gInput := Zeros(input.shape...)
		// Windows of one (sample, channel) plane only touch that plane.
		parallel.For(batch*channels, func(start, end int) {
			for nc := start; nc < end; nc++ {
				base := nc * outH * outW
				for i := 0; i < outH*outW; i++ {
					src := indices[base+i]
					if src < 0 {
						continue
					}
					gInput.data[src] += grad.data[base+i]
				}
			}
		})
		accumulate(grads, input, gInput)
	}, input)

	return out, nil
}
