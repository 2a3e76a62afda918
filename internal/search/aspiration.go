/*
 * corvid - a UCI chess engine in Go
 *
 * MIT License
 *
 * Copyright (c) 2024 The Corvid Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package search

import (
	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

// aspirationSearch re-searches the same depth with a window centered on the
// previous iteration's score, widening asymmetrically on fail low/high using
// aspirationSteps until the true window is found, falling back to a full
// window search once the steps are exhausted.
func (s *Search) aspirationSearch(p *position.Position, depth int, prevValue Value) Value {
	if prevValue == ValueNA || depth <= 1 {
		return s.rootSearch(p, depth, ValueMin, ValueMax)
	}

	alphaIdx, betaIdx := 0, 0
	alpha := prevValue - aspirationSteps[alphaIdx]
	beta := prevValue + aspirationSteps[betaIdx]
	if alpha < ValueMin {
		alpha = ValueMin
	}
	if beta > ValueMax {
		beta = ValueMax
	}

	for {
		value := s.rootSearch(p, depth, alpha, beta)
		if s.stopConditions() {
			return value
		}

		switch {
		case value <= alpha:
			s.statistics.AspirationResearches++
			alphaIdx++
			if alphaIdx >= len(aspirationSteps) {
				alpha = ValueMin
			} else {
				alpha = prevValue - aspirationSteps[alphaIdx]
				if alpha < ValueMin {
					alpha = ValueMin
				}
			}
		case value >= beta:
			s.statistics.AspirationResearches++
			betaIdx++
			if betaIdx >= len(aspirationSteps) {
				beta = ValueMax
			} else {
				beta = prevValue + aspirationSteps[betaIdx]
				if beta > ValueMax {
					beta = ValueMax
				}
			}
		default:
			return value
		}
	}
}

// mtdf implements MTD(f): a sequence of zero-window rootSearch calls that
// converge lowerBound/upperBound onto the true minimax value, using the
// previous iteration's value as the first guess.
func (s *Search) mtdf(p *position.Position, depth int, firstGuess Value) Value {
	g := firstGuess
	if g == ValueNA {
		g = ValueZero
	}
	upperBound := ValueMax
	lowerBound := ValueMin

	for lowerBound < upperBound {
		var beta Value
		if g == lowerBound {
			beta = g + 1
		} else {
			beta = g
		}
		g = s.rootSearch(p, depth, beta-1, beta)
		if s.stopConditions() {
			return g
		}
		if g < beta {
			upperBound = g
		} else {
			lowerBound = g
		}
	}
	return g
}
