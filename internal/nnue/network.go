//
// corvid - a UCI chess engine in Go
//
// MIT License
//
// Copyright (c) 2024 The Corvid Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package nnue

// Network holds the weights of the single hidden layer network.
// FeatureWeights/FeatureBias form the sparse input -> hidden layer;
// OutputWeights/OutputBias reduce the hidden layer to one centipawn
// score. Everything but OutputBias is quantized as small integers so
// Forward stays cheap to call from the evaluator hot path.
type Network struct {
	FeatureWeights [FeatureSize][L1Size]int16
	FeatureBias    [L1Size]int16
	OutputWeights  [L1Size]int8
	OutputBias     int32
}

// NewNetwork returns a zero-valued network. Call LoadWeights or
// InitRandom before using it for evaluation.
func NewNetwork() *Network {
	return &Network{}
}

// Forward evaluates the network for the given sparse feature set and
// returns a centipawn score.
func (n *Network) Forward(features []int) int {
	var hidden [L1Size]int32
	for i := 0; i < L1Size; i++ {
		hidden[i] = int32(n.FeatureBias[i])
	}
	for _, idx := range features {
		if idx < 0 || idx >= FeatureSize {
			continue
		}
		row := &n.FeatureWeights[idx]
		for i := 0; i < L1Size; i++ {
			hidden[i] += int32(row[i])
		}
	}

	var output int32 = n.OutputBias
	for i := 0; i < L1Size; i++ {
		activated := ClampedReLU(hidden[i] >> InputQuantShift)
		output += int32(activated) * int32(n.OutputWeights[i])
	}

	return int(output * OutputScale >> (OutputQuantShift + 8))
}

// InitRandom fills the network with small deterministic pseudo-random
// weights. Useful for exercising the plumbing in tests; carries no
// actual chess knowledge.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}

	for i := 0; i < FeatureSize; i++ {
		for j := 0; j < L1Size; j++ {
			n.FeatureWeights[i][j] = next() >> 5
		}
	}
	for i := 0; i < L1Size; i++ {
		n.FeatureBias[i] = next() >> 3
	}
	for i := 0; i < L1Size; i++ {
		v := next() >> 6
		if v > 127 {
			v = 127
		} else if v < -128 {
			v = -128
		}
		n.OutputWeights[i] = int8(v)
	}
	n.OutputBias = int32(next()) * 100
}
