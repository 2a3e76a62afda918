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

import (
	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

// StaticEvaluator mirrors evaluator.StaticEvaluator. Declared locally
// instead of imported to avoid a dependency cycle (evaluator does not,
// and should not, need to know about nnue).
type StaticEvaluator interface {
	Evaluate(p *position.Position) Value
}

// BlendedEvaluator combines the classical term-based evaluator with the
// network evaluator, weighting the network's contribution more heavily
// as material comes off the board. Endgames are exactly the positions
// where a small king-relative network tends to generalize better than
// hand-tuned endgame terms, so the blend favors it as GamePhaseFactor
// drops towards zero.
type BlendedEvaluator struct {
	classical StaticEvaluator
	network   StaticEvaluator
}

// NewBlendedEvaluator returns a StaticEvaluator that mixes classical and
// NNUE scores. Either argument may be used standalone by calling its
// Evaluate method directly; this wrapper only adds the blending policy.
func NewBlendedEvaluator(classical StaticEvaluator, network StaticEvaluator) *BlendedEvaluator {
	return &BlendedEvaluator{classical: classical, network: network}
}

// nnueWeight returns the share of the final score taken from the
// network evaluator for a given GamePhaseFactor (1.0 = opening/middlegame
// material still on the board, 0.0 = bare endgame). The network carries
// 40% of the opening evaluation and grows to the whole of the bare
// endgame.
func nnueWeight(gamePhaseFactor float64) float64 {
	return 1.0 - 0.6*gamePhaseFactor
}

// Evaluate blends the classical and network scores for p.
func (e *BlendedEvaluator) Evaluate(p *position.Position) Value {
	classicalScore := e.classical.Evaluate(p)
	networkScore := e.network.Evaluate(p)

	w := nnueWeight(p.GamePhaseFactor())
	blended := float64(networkScore)*w + float64(classicalScore)*(1-w)
	return Value(blended)
}
