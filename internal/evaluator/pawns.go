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
	. "github.com/mkern-dev/corvid/internal/config"
	. "github.com/mkern-dev/corvid/internal/types"
)

// evaluatePawns scores the pawn structure of both sides from White's view.
// The result depends only on pawn placement, so it is cached under the
// pawn-only hash key. The king-dependent passed pawn race term is computed
// separately by evaluatePassedKingRace.
func (e *Evaluator) evaluatePawns() *Score {
	tmpScore.MidGameValue = 0
	tmpScore.EndGameValue = 0

	// look on cache table
	if Settings.Eval.UsePawnCache {
		entry := e.pawnCache.getEntry(e.position.PawnKey())
		if entry != nil {
			tmpScore.MidGameValue += entry.score.MidGameValue
			tmpScore.EndGameValue += entry.score.EndGameValue
			return &tmpScore
		}
	}

	// no cache hit - calculate
	whiteMid, whiteEnd := e.pawnStructure(White)
	blackMid, blackEnd := e.pawnStructure(Black)
	tmpScore.MidGameValue = whiteMid - blackMid
	tmpScore.EndGameValue = whiteEnd - blackEnd

	// store in cache
	if Settings.Eval.UsePawnCache {
		e.pawnCache.put(e.position.PawnKey(), &tmpScore)
	}

	return &tmpScore
}

// evaluatePassedKingRace adds the uncached king-dependent passed pawn
// race term on top of the (possibly cached) pawn structure score.
func (e *Evaluator) evaluatePassedKingRace() int16 {
	return e.passedKingRace(White) - e.passedKingRace(Black)
}

// passedKingRace returns the endgame bonus for king proximity to the
// stop squares of one side's passed pawns. King-dependent, so it is NOT
// part of the cached pawn structure score - the cache key covers pawn
// placement only.
func (e *Evaluator) passedKingRace(us Color) int16 {
	them := us.Flip()
	myPawns := e.position.PiecesBb(us, Pawn)
	theirPawns := e.position.PiecesBb(them, Pawn)

	var end int16
	pawns := myPawns
	for pawns != 0 {
		sq := pawns.PopLsb()
		if sq.PassedPawnMask(us)&theirPawns != 0 {
			continue
		}
		front := sq.To(us.MoveDirection())
		if !front.IsValid() {
			continue
		}
		myKingDist := int16(SquareDistance(e.position.KingSquare(us), front))
		theirKingDist := int16(SquareDistance(e.position.KingSquare(them), front))
		end += (theirKingDist - myKingDist) * Settings.Eval.PawnKingProximityBonus
	}
	return end
}

// pawnStructure scores the pawns of one side. All malus config values are
// negative, so every term is an addition here.
func (e *Evaluator) pawnStructure(us Color) (mid int16, end int16) {
	them := us.Flip()
	myPawns := e.position.PiecesBb(us, Pawn)
	theirPawns := e.position.PiecesBb(them, Pawn)

	pawns := myPawns
	for pawns != 0 {
		sq := pawns.PopLsb()
		front := sq.To(us.MoveDirection())

		// how far the pawn has advanced, 1 (own second rank) .. 6
		advance := int16(sq.RankOf())
		if us == Black {
			advance = 7 - advance
		}

		// doubled - more than one own pawn on this file
		if (sq.FileOf().Bb() & myPawns).PopCount() > 1 {
			mid += Settings.Eval.PawnDoubledMidMalus
			end += Settings.Eval.PawnDoubledEndMalus
		}

		// isolated - no own pawns on either neighbour file
		if sq.NeighbourFilesMask()&myPawns == 0 {
			mid += Settings.Eval.PawnIsolatedMidMalus
			end += Settings.Eval.PawnIsolatedEndMalus
		} else {
			// backward - can't be defended by a pawn advance and its stop
			// square is covered by an enemy pawn. Only checked for
			// non-isolated pawns, the isolated malus already covers the rest.
			behind := sq.RanksSouthMask() | sq.RankOf().Bb()
			if us == Black {
				behind = sq.RanksNorthMask() | sq.RankOf().Bb()
			}
			if sq.NeighbourFilesMask()&behind&myPawns == 0 &&
				GetPawnAttacks(us, front)&theirPawns != 0 {
				mid += Settings.Eval.PawnBackwardMidMalus
				end += Settings.Eval.PawnBackwardEndMalus
			}
		}

		// blocked - any piece on the stop square
		if front.IsValid() && e.position.GetPiece(front) != PieceNone {
			mid += Settings.Eval.PawnBlockedMidMalus
			end += Settings.Eval.PawnBlockedEndMalus
		}

		// phalanx - own pawn directly beside it
		if sq.NeighbourFilesMask()&sq.RankOf().Bb()&myPawns != 0 {
			mid += Settings.Eval.PawnPhalanxMidBonus
			end += Settings.Eval.PawnPhalanxEndBonus
		}

		// supported - defended by an own pawn (chain link)
		if GetPawnAttacks(them, sq)&myPawns != 0 {
			mid += Settings.Eval.PawnSupportedMidBonus
			end += Settings.Eval.PawnSupportedEndBonus
		}

		// passed - no enemy pawn can stop or capture it on its way
		if sq.PassedPawnMask(us)&theirPawns == 0 {
			mid += Settings.Eval.PawnPassedMidBonus * advance / 6
			end += Settings.Eval.PawnPassedEndBonus * advance / 6
		}
	}
	return mid, end
}
