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

package evaluator

import (
	"github.com/mkern-dev/corvid/internal/config"
	. "github.com/mkern-dev/corvid/internal/types"
)

// threat bonuses indexed by the attacked piece's type - threatening a
// queen is worth more than threatening a pawn
var threatMidBonus = [PtLength]int16{0, 0, 5, 15, 15, 25, 40}
var threatEndBonus = [PtLength]int16{0, 0, 10, 20, 20, 30, 45}

// evalThreats scores pressure against the enemy pieces: a bonus per
// attacked enemy piece by its type, an extra bonus when the piece is
// hanging (more attackers than defenders), and a bonus per piece type
// with a safe checking square against the enemy king. Relies on the
// attack tables computed for this position.
func (e *Evaluator) evalThreats(us Color) *Score {
	tmpScore.MidGameValue = 0
	tmpScore.EndGameValue = 0
	them := us.Flip()

	for victims := e.position.OccupiedBb(them) &^ e.position.PiecesBb(them, King); victims != BbZero; {
		sq := victims.PopLsb()

		attackers := e.countAttackers(us, sq)
		if attackers == 0 {
			continue
		}

		victim := e.position.GetPiece(sq).TypeOf()
		tmpScore.MidGameValue += threatMidBonus[victim]
		tmpScore.EndGameValue += threatEndBonus[victim]

		// hanging - likely lost to a direct exchange
		if attackers > e.countAttackers(them, sq) {
			tmpScore.MidGameValue += config.Settings.Eval.HangingPieceBonus
			tmpScore.EndGameValue += config.Settings.Eval.HangingPieceBonus
		}
	}

	// safe checks: a square from which one of our piece types would give
	// check, that we attack with that piece type and the defender doesn't
	// cover at all
	theirKing := e.position.KingSquare(them)
	for pt := Knight; pt <= Queen; pt++ {
		checkFrom := GetAttacksBb(pt, theirKing, e.allPieces) &
			e.attack.Piece[us][pt] &^
			e.attack.All[them] &^
			e.position.OccupiedBb(us)
		if checkFrom != BbZero {
			tmpScore.MidGameValue += config.Settings.Eval.SafeCheckBonus
			tmpScore.EndGameValue += config.Settings.Eval.SafeCheckBonus / 2
		}
	}

	return &tmpScore
}

// countAttackers counts the pieces of color c attacking sq, including
// pawns (which the non-pawn attack tables don't carry).
func (e *Evaluator) countAttackers(c Color, sq Square) int {
	count := e.attack.To[c][sq].PopCount()
	if e.attack.Pawns[c].Has(sq) {
		count++
		if e.attack.PawnsDouble[c].Has(sq) {
			count++
		}
	}
	return count
}
