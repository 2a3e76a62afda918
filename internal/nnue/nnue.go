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
// Package nnue implements a small NNUE-style (Efficiently Updatable Neural
// Network) static evaluator. Unlike a full two-perspective accumulator
// design it keeps a single fully connected hidden layer computed fresh for
// every position, trading the incremental-update speedup for a much
// smaller and easier to audit implementation while keeping the same
// quantized king-relative feature encoding.
package nnue

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mkern-dev/corvid/internal/logging"
	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

var out = message.NewPrinter(language.German)
var log = logging.GetLog()

// Network architecture constants for the king-relative feature encoding.
const (
	NumKingSquares  = 64
	NumPieceKinds   = 10 // 5 non-king piece types, friendly and enemy
	NumPieceSquares = 64

	// FeatureSize is the size of the sparse binary input vector:
	// kingSquare * (pieceKind * pieceSquare).
	FeatureSize = NumKingSquares * NumPieceKinds * NumPieceSquares

	// L1Size is the width of the single hidden layer.
	L1Size = 256

	// InputQuantShift scales stored weights so inference can stay in
	// integer arithmetic.
	InputQuantShift = 6
	// OutputScale converts the quantized output to centipawns.
	OutputScale = 600
	// OutputQuantShift undoes the weight quantization on the way out.
	OutputQuantShift = 6
)

// ClampedReLU clamps an accumulated activation to the [0,127] range used
// for quantized inference, matching the clipping scheme of the classical
// Stockfish-derived NNUE networks this package is modeled on.
func ClampedReLU(x int32) int8 {
	if x < 0 {
		return 0
	}
	if x > 127 {
		return 127
	}
	return int8(x)
}

// Evaluator is a StaticEvaluator backed by a quantized feed-forward
// network instead of the classical hand-written term evaluation.
// Create one with NewEvaluator.
type Evaluator struct {
	net *Network
}

// NewEvaluator loads a network from weightsFile. An empty path produces a
// randomly-initialized network, which is only useful for exercising the
// plumbing (tests, UCI wiring) since it carries no chess knowledge.
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()
	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(1070372)
		log.Warning("NNUE evaluator started with random weights, no weights file configured")
	}
	return &Evaluator{net: net}, nil
}

// Evaluate returns a centipawn score for the position from the view of the
// side to move, satisfying evaluator.StaticEvaluator.
func (e *Evaluator) Evaluate(p *position.Position) Value {
	us := p.NextPlayer()
	them := us.Flip()
	features := ActiveFeatures(p, us, them)
	return Value(e.net.Forward(features))
}
