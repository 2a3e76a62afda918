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

package movegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkern-dev/corvid/internal/history"
	"github.com/mkern-dev/corvid/internal/moveslice"
	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

func TestMovegenGeneratePseudoLegalMoves(t *testing.T) {
	mg := NewMoveGen()

	pos := position.NewPosition()
	moves := mg.GeneratePseudoLegalMoves(pos, GenAll)
	assert.Equal(t, 20, moves.Len())

	// 86 moves
	pos, _ = position.NewPositionFen("r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3")
	moves = mg.GeneratePseudoLegalMoves(pos, GenAll)
	assert.Equal(t, 86, moves.Len())

	// 218 moves
	pos, _ = position.NewPositionFen("R6R/3Q4/1Q4Q1/4Q3/2Q4Q/Q4Q2/pp1Q4/kBNN1KB1 w - -")
	moves = mg.GeneratePseudoLegalMoves(pos, GenAll)
	assert.Equal(t, 218, moves.Len())

	// captures and non captures of a mode-restricted run must add up to
	// the full generation
	pos, _ = position.NewPositionFen("r3k2r/pbpNqppp/1pn2n2/1B2p3/1b2P3/2PP1N2/PP1nQPPP/R3K2R w KQkq -")
	all := mg.GeneratePseudoLegalMoves(pos, GenAll).Len()
	caps := mg.GeneratePseudoLegalMoves(pos, GenCap).Len()
	quiets := mg.GeneratePseudoLegalMoves(pos, GenNonCap).Len()
	assert.Equal(t, all, caps+quiets)
	assert.Equal(t, 40, all)
}

func TestMovegenGenerateLegalMoves(t *testing.T) {
	mg := NewMoveGen()

	pos := position.NewPosition()
	moves := mg.GenerateLegalMoves(pos, GenAll)
	assert.Equal(t, 20, moves.Len())

	// two pseudo legal moves are illegal here (castling through f1, which
	// the knight on d2 attacks, and the king stepping onto f1)
	pos, _ = position.NewPositionFen("r3k2r/pbpNqppp/1pn2n2/1B2p3/1b2P3/2PP1N2/PP1nQPPP/R3K2R w KQkq -")
	moves = mg.GenerateLegalMoves(pos, GenAll)
	assert.Equal(t, 38, moves.Len())

	pos, _ = position.NewPositionFen("r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3")
	moves = mg.GenerateLegalMoves(pos, GenAll)
	assert.Equal(t, 83, moves.Len())

	pos, _ = position.NewPositionFen("R6R/3Q4/1Q4Q1/4Q3/2Q4Q/Q4Q2/pp1Q4/kBNN1KB1 w - -")
	moves = mg.GenerateLegalMoves(pos, GenAll)
	assert.Equal(t, 218, moves.Len())
}

// every legal move must leave the mover's king out of check after DoMove
func TestMovegenLegality(t *testing.T) {
	mg := NewMoveGen()

	fens := []string{
		position.StartFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq -",
	}

	for _, fen := range fens {
		pos, err := position.NewPositionFen(fen)
		assert.NoError(t, err)
		moves := mg.GenerateLegalMoves(pos, GenAll).Clone()
		for i := 0; i < moves.Len(); i++ {
			mv := moves.At(i)
			assert.True(t, pos.IsLegalMove(mv), "illegal move %s on %s", mv.StringUci(), fen)
			pos.DoMove(mv)
			assert.True(t, pos.WasLegalMove(), "move %s left king in check on %s", mv.StringUci(), fen)
			pos.UndoMove()
		}
	}
}

func TestOnDemand(t *testing.T) {
	mg := NewMoveGen()
	var moves = moveslice.NewMoveSlice(MaxMoves)

	// the streamed generation must produce exactly the pseudo legal move set
	fens := []string{
		position.StartFen,
		"r3k2r/pbpNqppp/1pn2n2/1B2p3/1b2P3/2PP1N2/PP1nQPPP/R3K2R w KQkq -",
		"r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3",
		"R6R/3Q4/1Q4Q1/4Q3/2Q4Q/Q4Q2/pp1Q4/kBNN1KB1 w - -",
	}

	for _, fen := range fens {
		pos, _ := position.NewPositionFen(fen)

		seen := make(map[Move]bool)
		moves.Clear()
		mg.ResetOnDemand()
		for mv := mg.GetNextMove(pos, GenAll); mv != MoveNone; mv = mg.GetNextMove(pos, GenAll) {
			assert.False(t, seen[mv.MoveOf()], "duplicate move %s on %s", mv.StringUci(), fen)
			seen[mv.MoveOf()] = true
			moves.PushBack(mv)
		}

		generated := mg.GeneratePseudoLegalMoves(pos, GenAll)
		assert.Equal(t, generated.Len(), moves.Len(), "stream/bulk mismatch on %s", fen)
		for i := 0; i < generated.Len(); i++ {
			assert.True(t, seen[generated.At(i).MoveOf()], "missing move %s on %s", generated.At(i).StringUci(), fen)
		}
	}
}

func TestOnDemandKillerPv(t *testing.T) {
	mg := NewMoveGen()
	var moves = moveslice.NewMoveSlice(MaxMoves)

	pos, _ := position.NewPositionFen("r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3")
	pv := mg.GetMoveFromUci(pos, "a2b1Q")
	killer := mg.GetMoveFromUci(pos, "b7b6")
	mg.ResetOnDemand()
	mg.SetPvMove(pv)
	mg.StoreKiller(killer)

	for mv := mg.GetNextMove(pos, GenAll); mv != MoveNone; mv = mg.GetNextMove(pos, GenAll) {
		moves.PushBack(mv)
	}

	assert.Equal(t, 86, moves.Len())
	// pv move always comes out first and must not surface again later
	assert.Equal(t, pv.MoveOf(), moves.At(0).MoveOf())
	count := 0
	for i := 0; i < moves.Len(); i++ {
		if moves.At(i).MoveOf() == pv.MoveOf() {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestHasLegalMoves(t *testing.T) {
	mg := NewMoveGen()

	// check mate position
	pos, _ := position.NewPositionFen("rn2kbnr/pbpp1ppp/8/1p2p1q1/4K3/3P4/PPP1PPPP/RNBQ1BNR w kq -")
	assert.False(t, mg.HasLegalMove(pos))
	assert.True(t, pos.HasCheck())

	// stale mate position
	pos, _ = position.NewPositionFen("7k/5K2/6Q1/8/8/8/8/8 b - -")
	assert.False(t, mg.HasLegalMove(pos))
	assert.False(t, pos.HasCheck())

	// only en passant
	pos, _ = position.NewPositionFen("8/8/8/8/5Pp1/6P1/7k/K3BQ2 b - f3")
	assert.True(t, mg.HasLegalMove(pos))
	assert.False(t, pos.HasCheck())
}

func TestMovegenGetMoveFromUci(t *testing.T) {
	pos, _ := position.NewPositionFen("r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3")
	mg := NewMoveGen()

	// invalid pattern
	move := mg.GetMoveFromUci(pos, "8888")
	assert.Equal(t, MoveNone, move)

	// valid move
	move = mg.GetMoveFromUci(pos, "b7b5")
	assert.Equal(t, CreateMove(SqB7, SqB5, Normal, PtNone), move.MoveOf())

	// no piece on a7
	move = mg.GetMoveFromUci(pos, "a7a5")
	assert.Equal(t, MoveNone, move)

	// valid promotion
	move = mg.GetMoveFromUci(pos, "a2a1Q")
	assert.Equal(t, CreateMove(SqA2, SqA1, Promotion, Queen), move.MoveOf())

	// lower case promotions are tolerated
	move = mg.GetMoveFromUci(pos, "a2a1q")
	assert.Equal(t, CreateMove(SqA2, SqA1, Promotion, Queen), move.MoveOf())

	// valid castling
	move = mg.GetMoveFromUci(pos, "e8c8")
	assert.Equal(t, CreateMove(SqE8, SqC8, Castling, PtNone), move.MoveOf())

	// king side castling is not legal here - the bishop on a3 covers f8,
	// which the king would have to cross
	move = mg.GetMoveFromUci(pos, "e8g8")
	assert.Equal(t, MoveNone, move)
}

func TestMovegenGetMoveFromSan(t *testing.T) {
	pos, _ := position.NewPositionFen("r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3")
	mg := NewMoveGen()

	// invalid pattern
	move := mg.GetMoveFromSan(pos, "33")
	assert.Equal(t, MoveNone, move)

	// valid pawn move
	move = mg.GetMoveFromSan(pos, "b5")
	assert.Equal(t, CreateMove(SqB7, SqB5, Normal, PtNone), move.MoveOf())

	// no pawn can reach a5
	move = mg.GetMoveFromSan(pos, "a5")
	assert.Equal(t, MoveNone, move)

	// valid promotion
	move = mg.GetMoveFromSan(pos, "a1Q")
	assert.Equal(t, CreateMove(SqA2, SqA1, Promotion, Queen), move.MoveOf())

	// valid castling
	move = mg.GetMoveFromSan(pos, "O-O-O")
	assert.Equal(t, CreateMove(SqE8, SqC8, Castling, PtNone), move.MoveOf())

	// ambiguous without a disambiguation hint
	move = mg.GetMoveFromSan(pos, "Ne5")
	assert.Equal(t, MoveNone, move)
	move = mg.GetMoveFromSan(pos, "Nde5")
	assert.Equal(t, CreateMove(SqD7, SqE5, Normal, PtNone), move.MoveOf())
	move = mg.GetMoveFromSan(pos, "Nge5")
	assert.Equal(t, CreateMove(SqG6, SqE5, Normal, PtNone), move.MoveOf())
}

func TestMovegenValidateMove(t *testing.T) {
	mg := NewMoveGen()
	pos, _ := position.NewPositionFen("r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq e3")

	assert.True(t, mg.ValidateMove(pos, CreateMove(SqB7, SqB5, Normal, PtNone)))
	assert.True(t, mg.ValidateMove(pos, CreateMove(SqA2, SqB1, Promotion, Queen)))
	assert.False(t, mg.ValidateMove(pos, CreateMove(SqE2, SqE4, Normal, PtNone)))
	assert.False(t, mg.ValidateMove(pos, MoveNone))
}

func TestMovegenHistorySort(t *testing.T) {
	mg := NewMoveGen()
	hist := history.NewHistory()
	mg.SetHistoryData(hist)

	pos := position.NewPosition()

	// give one quiet move a dominant history record; it must come out
	// ahead of all other quiets (but still behind pv/killers if any)
	hist.HistoryCount[White][SqB1][SqC3] = 90_000

	moves := mg.GeneratePseudoLegalMoves(pos, GenAll)
	target := CreateMove(SqB1, SqC3, Normal, PtNone)
	targetIdx := -1
	for i := 0; i < moves.Len(); i++ {
		if moves.At(i).MoveOf() == target {
			targetIdx = i
		}
	}
	assert.True(t, targetIdx >= 0)
	assert.True(t, targetIdx < 4, "history boosted move should sort near the front, got index %d", targetIdx)
}
