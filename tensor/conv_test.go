package tensor

import "testing"

func naiveConv2DForward(input, weight, bias []float64, batch, inC, inH, inW, outC, k, stride, pad int) []float64 {
	outH := (inH+2*pad-k)/stride + 1
	outW := (inW+2*pad-k)/stride + 1
	out := make([]float64, batch*outC*outH*outW)
	for n := 0; n < batch; n++ {
		for oc := 0; oc < outC; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					acc := bias[oc]
					for ic := 0; ic < inC; ic++ {
						for kh := 0; kh < k; kh++ {
							for kw := 0; kw < k; kw++ {
								ih := oh*stride - pad + kh
								iw := ow*stride - pad + kw
								if ih < 0 || ih >= inH || iw < 0 || iw >= inW {
									continue
								}
								acc += input[((n*inC+ic)*inH+ih)*inW+iw] * weight[((oc*inC+ic)*k+kh)*k+kw]
							}
						}
					}
					out[((n*outC+oc)*outH+oh)*outW+ow] = acc
				}
			}
		}
	}
	return out
}

func TestConv2DMatchesNaive(t *testing.T) {
	rng := NewRand(3)
	input := Randn(rng, 2, 3, 5, 5)
	weight := Randn(rng, 4, 3, 3, 3)
	bias := Randn(rng, 4)

	out, err := Conv2D(input, weight, bias, 1, 1, 1, 1)
	if err != nil {
		t.Fatalf("Conv2D returned error: %v", err)
	}
	if !equalShapes(out.Shape(), []int{2, 4, 5, 5}) {
		t.Fatalf("unexpected output shape: %v", out.Shape())
	}
	expected := naiveConv2DForward(input.Data(), weight.Data(), bias.Data(), 2, 3, 5, 5, 4, 3, 1, 1)
	if !almostEqualSlices(out.Data(), expected, 1e-9) {
		t.Fatalf("conv output mismatch")
	}
}

func TestConv2DGradients(t *testing.T) {
	rng := NewRand(5)
	input := randomTensor(rng, 2, 2, 4, 4)
	weight := randomTensor(rng, 3, 2, 3, 3)
	bias := randomTensor(rng, 3)
	probe := Randn(rng, 2, 3, 4, 4)

	loss := func() *Tensor {
		out, err := Conv2D(input, weight, bias, 1, 1, 1, 1)
		if err != nil {
			t.Fatalf("Conv2D returned error: %v", err)
		}
		weighted, err := Mul(out, probe)
		if err != nil {
			t.Fatalf("mul failed: %v", err)
		}
		return Sum(weighted)
	}
	checkGrad(t, "input", input, loss)
	checkGrad(t, "weight", weight, loss)
	checkGrad(t, "bias", bias, loss)
}

func TestConv2DRejectsChannelMismatch(t *testing.T) {
	input := Zeros(1, 1, 4, 4)
	weight := Zeros(2, 3, 3, 3)
	if _, err := Conv2D(input, weight, nil, 1, 1, 1, 1); err == nil {
		t.Fatalf("expected channel mismatch error")
	}
	if _, err := Conv2D(Zeros(4, 4), weight, nil, 1, 1, 1, 1); err == nil {
		t.Fatalf("expected rank error")
	}
}
