package tensor

import (
	"errors"
	"fmt"

	"github.com/fumitoshi0524/cifarnet/internal/parallel"
)

// Conv2D performs a 2D convolution over the input tensor with the provided weights and optional bias.
// Input shape: [batch, in_channels, in_h, in_w]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape (optional): [out_channels]
func Conv2D(input, weight, bias *Tensor, strideH, strideW, padH, padW int) (*Tensor, error) {
	if len(input.shape) != 4 {
		return nil, fmt.Errorf("Conv2D expects input shape [batch, channels, height, width], got %v", input.shape)
	}
	if len(weight.shape) != 4 {
		return nil, errors.New("Conv2D expects weight shape [out_channels, in_channels, kernel_h, kernel_w]")
	}
	if bias != nil && (len(bias.shape) != 1 || bias.shape[0] != weight.shape[0]) {
		return nil, errors.New("bias for Conv2D must be rank 1 with out_channels entries")
	}
	if strideH <= 0 || strideW <= 0 {
		return nil, errors.New("stride must be positive")
	}
	g := convGeom{
		batch:       input.shape[0],
		inChannels:  input.shape[1],
		inH:         input.shape[2],
		inW:         input.shape[3],
		outChannels: weight.shape[0],
		kernelH:     weight.shape[2],
		kernelW:     weight.shape[3],
		strideH:     strideH,
		strideW:     strideW,
		padH:        padH,
		padW:        padW,
	}
	if weight.shape[1] != g.inChannels {
		return nil, fmt.Errorf("kernel in_channels mismatch: weight expects %d, input has %d", weight.shape[1], g.inChannels)
	}
	g.outH = (g.inH+2*padH-g.kernelH)/strideH + 1
	g.outW = (g.inW+2*padW-g.kernelW)/strideW + 1
	if g.outH <= 0 || g.outW <= 0 {
		return nil, errors.New("invalid output size")
	}

	out := Zeros(g.batch, g.outChannels, g.outH, g.outW)
	parallel.For(g.batch*g.outChannels, func(start, end int) {
		for nc := start; nc < end; nc++ {
			n, oc := nc/g.outChannels, nc%g.outChannels
			b := 0.0
			if bias != nil {
				b = bias.data[oc]
			}
			for oh := 0; oh < g.outH; oh++ {
				for ow := 0; ow < g.outW; ow++ {
					acc := 0.0
					g.each(n, oc, oh, ow, func(inputIdx, weightIdx int) {
						acc += input.data[inputIdx] * weight.data[weightIdx]
					})
					out.data[g.outIndex(n, oc, oh, ow)] = acc + b
				}
			}
		}
	})

	link(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if input.requiresGrad {
			gInput := Zeros(input.shape...)
			// Every sample writes only its own slice of gInput.
			parallel.For(g.batch, func(start, end int) {
				for n := start; n < end; n++ {
					for oc := 0; oc < g.outChannels; oc++ {
						for oh := 0; oh < g.outH; oh++ {
							for ow := 0; ow < g.outW; ow++ {
								gVal := grad.data[g.outIndex(n, oc, oh, ow)]
								if gVal == 0 {
									continue
								}
								g.each(n, oc, oh, ow, func(inputIdx, weightIdx int) {
									gInput.data[inputIdx] += weight.data[weightIdx] * gVal
								})
							}
						}
					}
				}
			})
			accumulate(grads, input, gInput)
		}

		if weight.requiresGrad {
			gWeight := Zeros(weight.shape...)
			parallel.For(g.outChannels, func(start, end int) {
				for oc := start; oc < end; oc++ {
					for n := 0; n < g.batch; n++ {
						for oh := 0; oh < g.outH; oh++ {
							for ow := 0; ow < g.outW; ow++ {
								gVal := grad.data[g.outIndex(n, oc, oh, ow)]
								if gVal == 0 {
									continue
								}
								g.each(n, oc, oh, ow, func(inputIdx, weightIdx int) {
									gWeight.data[weightIdx] += input.data[inputIdx] * gVal
								})
							}
						}
					}
				}
			})
			accumulate(grads, weight, gWeight)
		}

		if bias != nil && bias.requiresGrad {
			gBias := Zeros(bias.shape...)
			plane := g.outH * g.outW
			for n := 0; n < g.batch; n++ {
				for oc := 0; oc < g.outChannels; oc++ {
					base := (n*g.outChannels + oc) * plane
					for i := 0; i < plane; i++ {
						gBias.data[oc] += grad.data[base+i]
					}
				}
			}
			accumulate(grads, bias, gBias)
		}
	}, input, weight, bias)

	return out, nil
}

type convGeom struct {
	batch, inChannels, inH, inW   int
	outChannels, kernelH, kernelW int
	strideH, strideW, padH, padW  int
	outH, outW                    int
}

func (g convGeom) outIndex(n, oc, oh, ow int) int {
	return ((n*g.outChannels+oc)*g.outH+oh)*g.outW + ow
}

// each visits every (input, weight) index pair that contributes to output
// position (n, oc, oh, ow), skipping taps that fall into the zero padding.
func (g convGeom) each(n, oc, oh, ow int, fn func(inputIdx, weightIdx int)) {
	for ic := 0; ic < g.inChannels; ic++ {
		for kh := 0; kh < g.kernelH; kh++ {
			ih := oh*g.strideH - g.padH + kh
			if ih < 0 || ih >= g.inH {
				continue
			}
			for kw := 0; kw < g.kernelW; kw++ {
				iw := ow*g.strideW - g.padW + kw
				if iw < 0 || iw >= g.inW {
					continue
				}
				inputIdx := ((n*g.inChannels+ic)*g.inH+ih)*g.inW + iw
				weightIdx := ((oc*g.inChannels+ic)*g.kernelH+kh)*g.kernelW + kw
				fn(inputIdx, weightIdx)
			}
		}
	}
}
