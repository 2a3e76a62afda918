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
// Package tablebase defines the collaborator interface the search consults
// at the root for exact endgame results once few enough pieces remain on
// the board; the search does not probe it inside the tree. A probe failure or
// miss is never fatal to the search: it simply falls back to the normal
// evaluator and move generator.
package tablebase

import (
	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

// WDL is the win/draw/loss classification a tablebase returns for a
// position, from the side-to-move's perspective.
type WDL int

// WDL classifications. Cursed win / blessed loss denote results that the
// 50-move rule can flip in practice even though they are exact wins/losses
// without it.
const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1
	WDLWin         WDL = 2
)

// ProbeResult is the outcome of probing a single position.
type ProbeResult struct {
	Found bool
	WDL   WDL
	DTZ   int // distance to the next zeroing move (pawn move or capture)
}

// RootResult is the outcome of probing for a best move at the search root.
type RootResult struct {
	Found bool
	Move  Move
	WDL   WDL
	DTZ   int
}

// Prober is satisfied by any tablebase backend the search can consult.
// Implementations must never block the search thread for long and must
// report misses rather than erroring on anything short of a programming
// bug: a failed probe is treated identically to "not in the tablebase".
type Prober interface {
	// Probe looks up a position's exact result. ok is false if the
	// position is outside the tablebase's coverage or the backend has no
	// data loaded.
	Probe(p *position.Position) (result ProbeResult, ok bool)

	// ProbeRoot finds the best tablebase move (and its DTZ) at the root.
	ProbeRoot(p *position.Position) (result RootResult, ok bool)

	// MaxPieces returns the largest total piece count (both sides,
	// including kings) this backend has data for.
	MaxPieces() int

	// Available reports whether the backend currently has any usable
	// data loaded (e.g. the configured path contains tablebase files).
	Available() bool
}

// NoopProber never finds anything. It is the default Prober used when no
// SyzygyPath is configured, so search code can consult a Prober
// unconditionally without a nil check.
type NoopProber struct{}

var _ Prober = NoopProber{}

func (NoopProber) Probe(*position.Position) (ProbeResult, bool)    { return ProbeResult{}, false }
func (NoopProber) ProbeRoot(*position.Position) (RootResult, bool) { return RootResult{}, false }
func (NoopProber) MaxPieces() int                                  { return 0 }
func (NoopProber) Available() bool                                 { return false }

// ScoreFromWDL converts a WDL classification to a search score from the
// side-to-move's perspective, biased by ply so closer mates/wins sort
// ahead of more distant ones exactly like the engine's own mate scores.
func ScoreFromWDL(wdl WDL, ply int) Value {
	switch wdl {
	case WDLWin:
		return ValueCheckMate - Value(ply) - 1
	case WDLCursedWin:
		return ValueCheckMateThreshold - Value(ply) - 1
	case WDLDraw:
		return ValueDraw
	case WDLBlessedLoss:
		return -ValueCheckMateThreshold + Value(ply) + 1
	case WDLLoss:
		return -ValueCheckMate + Value(ply) + 1
	default:
		return ValueDraw
	}
}

// CountPieces returns the total number of pieces (both colors, including
// kings) currently on the board.
func CountPieces(p *position.Position) int {
	return p.OccupiedAll().PopCount()
}
