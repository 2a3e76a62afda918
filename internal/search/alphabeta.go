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
	"fmt"
	golog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/op/go-logging"

	. "github.com/mkern-dev/corvid/internal/config"
	"github.com/mkern-dev/corvid/internal/movegen"
	"github.com/mkern-dev/corvid/internal/moveslice"
	"github.com/mkern-dev/corvid/internal/position"
	"github.com/mkern-dev/corvid/internal/transpositiontable"
	. "github.com/mkern-dev/corvid/internal/types"
	"github.com/mkern-dev/corvid/internal/util"
)

// trace toggles very verbose per-node logging; left off outside of manual
// debugging sessions since it dominates runtime at any real search depth.
var trace = false

// contemptValue reports the score a drawn node (repetition, 50-move rule,
// insufficient material, stalemate) receives from the mover's perspective.
// A positive Contempt setting makes draws look slightly worse than zero so
// the engine avoids steering into forced repetitions when it judges itself
// ahead; Contempt 0 falls back to the plain ValueDraw.
func contemptValue() Value {
	return ValueDraw - Value(Settings.Search.Contempt)
}

// rootSearch drives the first ply of the tree explicitly rather than folding
// it into search(): root moves carry their own score for re-sorting between
// iterations, which would otherwise mean threading a "ply == 0" special case
// through every branch of the shared recursive routine.
//
// The best move of an iteration lands in pv[0][0] before the next iteration
// starts, so later iterations always begin with at least as good a move as
// the previous one found - a partial iteration can therefore still hand back
// a usable result.
func (s *Search) rootSearch(pos *position.Position, depth int, alpha Value, beta Value) Value {
	if trace {
		s.slog.Debugf("Ply %-2.d Depth %-2.d start: %s", 0, depth, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("Ply %-2.d Depth %-2.d end: %s", 0, depth, s.statistics.CurrentVariation.StringUci())
	}

	nodeBest := ValueNA
	var childValue Value

	for idx, mv := range *s.rootMoves {
		pos.DoMove(mv)
		s.nodesVisited++
		s.statistics.CurrentVariation.PushBack(mv)
		s.statistics.CurrentRootMoveIndex = idx
		s.statistics.CurrentRootMove = mv

		switch {
		case s.checkDrawRepAnd50(pos, 2):
			childValue = contemptValue()
		case !Settings.Search.UsePVS || idx == 0:
			// the first move of a node is assumed to be the PV and gets the
			// full alpha-beta window
			childValue = -s.search(pos, depth-1, 1, -beta, -alpha, true, true)
		default:
			// everything after the assumed PV move first gets a cheap
			// null-window probe; only a fail-high earns a full re-search
			childValue = -s.search(pos, depth-1, 1, -alpha-1, -alpha, false, true)
			if childValue > alpha && childValue < beta && !s.stopConditions() {
				s.statistics.RootPvsResearches++
				childValue = -s.search(pos, depth-1, 1, -beta, -alpha, true, true)
			}
		}

		s.statistics.CurrentVariation.PopBack()
		pos.UndoMove()

		// at least one depth-1 pass must finish before we honor a stop
		// request, otherwise we might return with no best move at all
		if s.stopConditions() && depth > 1 {
			return nodeBest
		}

		s.rootMoves.Set(idx, mv.SetValue(childValue))

		if childValue > nodeBest {
			nodeBest = childValue
			savePV(mv, s.pv[1], s.pv[0])
		}
	}

	return nodeBest
}

// search implements the recursive alpha-beta pass below the root (ply > 0),
// descending until depth reaches zero and quiescence search takes over.
// Nearly every pruning and reduction technique the engine knows about lives
// here; qsearch only trims the set of moves it looks at.
func (s *Search) search(p *position.Position, depth int, ply int, alpha Value, beta Value, isPV bool, doNull bool) Value {
	if trace {
		s.slog.Debugf("%0*s Ply %-2.d Depth %-2.d a:%-6.d b:%-6.d pv:%-6.v start:  %s", ply, "", ply, depth, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("%0*s Ply %-2.d Depth %-2.d a:%-6.d b:%-6.d pv:%-6.v end  :  %s", ply, "", ply, depth, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
	}

	if s.stopConditions() {
		return ValueNA
	}

	if depth == 0 || ply >= MaxDepth {
		return s.qsearch(p, ply, alpha, beta, isPV)
	}

	// Mate Distance Pruning: a shorter mate already found elsewhere makes
	// this branch irrelevant once the window can no longer improve on it.
	if Settings.Search.UseMDP {
		if alpha < -ValueCheckMate+Value(ply) {
			alpha = -ValueCheckMate + Value(ply)
		}
		if beta > ValueCheckMate-Value(ply) {
			beta = ValueCheckMate - Value(ply)
		}
		if alpha >= beta {
			s.statistics.Mdp++
			return alpha
		}
	}

	mover := p.NextPlayer()
	nodeBest := ValueNA
	nodeBestMove := MoveNone
	ttMove := MoveNone
	ttType := ALPHA
	inCheck := p.HasCheck()
	mateThreat := false

	// Transposition table lookup: a deep-enough prior result for this
	// Zobrist key can settle the node outright (EXACT), or tighten the
	// window (ALPHA/BETA) without a full re-search. The stored move,
	// when present, is tried first regardless of whether the stored
	// depth/value end up usable.
	var ttHit *transpositiontable.TtEntry
	if Settings.Search.UseTT {
		ttHit = s.tt.Probe(p.ZobristKey())
		if ttHit != nil {
			s.statistics.TTHit++
			ttMove = ttHit.Move()
			if int(ttHit.Depth()) >= depth {
				stored := valueFromTT(ttHit.Value(), ply)
				canCut := false
				switch {
				case !stored.IsValid():
					canCut = false
				case ttHit.Vtype() == EXACT:
					canCut = true
				case ttHit.Vtype() == ALPHA && stored <= alpha:
					canCut = true
				case ttHit.Vtype() == BETA && stored >= beta:
					canCut = true
				}
				// no TT cutoffs while a singular verification search is
				// excluding a move - the stored entry reflects the full
				// move set including the excluded one
				if canCut && Settings.Search.UseTTValue && s.excludedMove[ply] == MoveNone {
					s.getPVLine(p, s.pv[ply], depth)
					s.statistics.TTCuts++
					return stored
				}
				s.statistics.TTNoCuts++
			}
		} else {
			s.statistics.TTMiss++
		}
	}

	// Reverse Futility Pruning (static null move pruning): if a cheap
	// static eval already clears beta by a depth-scaled margin, assume the
	// real search would too and cut here instead of descending further.
	if Settings.Search.UseRFP && doNull && depth <= 3 && !isPV && !inCheck {
		staticEval := s.evaluate(p, ply)
		margin := rfp[depth]
		if staticEval-margin >= beta {
			s.statistics.RfpPrunings++
			return staticEval - margin
		}
	}

	// Razoring: the mirror image of RFP - a static eval so far below alpha
	// that no quiet continuation will recover drops the node straight into
	// qsearch, which still sees every capture that could prove us wrong.
	if Settings.Search.UseRazoring && !isPV && !inCheck && depth <= 3 &&
		!alpha.IsCheckMateValue() {
		staticEval := s.evaluate(p, ply)
		margin := Value(Settings.Search.RazorMargin * depth)
		if staticEval+margin <= alpha {
			s.statistics.RazorPrunings++
			return s.qsearch(p, ply, alpha, beta, isPV)
		}
	}

	// Null Move Pruning: passing the move entirely and still beating beta
	// suggests any real move would too, except in zugzwang, in check, or
	// on a second consecutive null move (all excluded by the guards below).
	if Settings.Search.UseNullMove &&
		doNull && !isPV &&
		depth >= Settings.Search.NmpDepth &&
		p.MaterialNonPawn(mover) > 0 &&
		!inCheck {

		reduction := Settings.Search.NmpReduction
		if depth > 8 || (depth > 6 && p.GamePhase() >= 3) {
			reduction++
		}
		nullDepth := depth - reduction - 1
		if nullDepth < 0 {
			nullDepth = 0
		}

		p.DoNullMove()
		s.nodesVisited++
		nullValue := -s.search(p, nullDepth, ply+1, -beta, -beta+1, false, false)
		p.UndoNullMove()

		if s.stopConditions() {
			return ValueNA
		}

		if nullValue > ValueCheckMateThreshold {
			// the opponent is "mated" even without us moving - clamp so we
			// never return an unproven mate score
			s.statistics.NMPMateBeta++
			nullValue = ValueCheckMateThreshold
		} else if nullValue < -ValueCheckMateThreshold {
			// we'd be mated if it were our opponent's move again - flag
			// the mate threat so later extensions can react to it
			s.statistics.NMPMateAlpha++
			mateThreat = true
		}

		if nullValue >= beta {
			s.statistics.NullMoveCuts++
			if Settings.Search.UseTT {
				s.storeTT(p, depth, ply, ttMove, nullValue, BETA)
			}
			return nullValue
		}
	}

	// ProbCut: when a capture already beats beta by a safety margin in a
	// much shallower search, betting that the full-depth search would too
	// is nearly always right. Only winning captures are worth the probe.
	if Settings.Search.UseProbCut &&
		!isPV && doNull && !inCheck &&
		depth >= Settings.Search.ProbCutDepth &&
		!beta.IsCheckMateValue() {

		probCutBeta := beta + Value(Settings.Search.ProbCutMargin)
		probCutDepth := depth - 4

		captures := s.mg[ply].GeneratePseudoLegalMoves(p, movegen.GenCap)
		for i := 0; i < captures.Len(); i++ {
			mv := captures.At(i).MoveOf()
			if Settings.Search.UseSEE && see(p, mv) < 0 {
				continue
			}

			p.DoMove(mv)
			if !p.WasLegalMove() {
				p.UndoMove()
				continue
			}
			s.nodesVisited++
			value := -s.search(p, probCutDepth, ply+1, -probCutBeta, -probCutBeta+1, false, false)
			p.UndoMove()

			if s.stopConditions() {
				return ValueNA
			}

			if value >= probCutBeta {
				s.statistics.ProbCuts++
				if Settings.Search.UseTT {
					s.storeTT(p, probCutDepth+1, ply, mv, value, BETA)
				}
				return probCutBeta
			}
		}
	}

	// Internal Iterative Deepening: without a TT move to try first, spend
	// a shallower search just to find one worth ordering ahead of the rest.
	if Settings.Search.UseIID &&
		depth >= Settings.Search.IIDDepth &&
		ttMove == MoveNone &&
		doNull &&
		isPV {

		iidDepth := depth - Settings.Search.IIDReduction
		if iidDepth < 0 {
			iidDepth = 0
		}

		s.search(p, iidDepth, ply, alpha, beta, isPV, true)
		s.statistics.IIDsearches++

		if s.stopConditions() {
			return ValueNA
		}

		if s.pv[ply].Len() > 0 {
			s.statistics.IIDmoves++
			ttMove = (*s.pv[ply])[0].MoveOf()
		}
	}

	// Singular Extension: if every move except the TT move fails well below
	// the TT score in a reduced verification search, the TT move is the
	// only one holding the position together and deserves an extra ply.
	// The verification runs here (not in the move loop) because it shares
	// this ply's move generator with the main loop below.
	singularMove := MoveNone
	if Settings.Search.UseSingularExt &&
		ttMove != MoveNone &&
		depth >= Settings.Search.SingularExtDepth &&
		s.excludedMove[ply] == MoveNone &&
		doNull && !inCheck &&
		ttHit != nil && ttHit.Vtype() == BETA &&
		int(ttHit.Depth()) >= depth-3 {

		ttValue := valueFromTT(ttHit.Value(), ply)
		if ttValue.IsValid() && !ttValue.IsCheckMateValue() {
			singularBeta := ttValue - Value(Settings.Search.SingularExtMargin*depth)
			s.excludedMove[ply] = ttMove
			value := s.search(p, (depth-1)/2, ply, singularBeta-1, singularBeta, false, false)
			s.excludedMove[ply] = MoveNone

			if s.stopConditions() {
				return ValueNA
			}

			if value < singularBeta {
				s.statistics.SingularExtension++
				singularMove = ttMove
			}
		}
	}

	// must run after IID and the singular verification, which both
	// read/write the shared move generator and pv slot for this ply
	moveGen := s.mg[ply]
	moveGen.ResetOnDemand()
	s.pv[ply].Clear()

	if Settings.Search.UseTTMove {
		if ttMove != MoveNone {
			s.statistics.TTMoveUsed++
			moveGen.SetPvMove(ttMove)
		} else {
			s.statistics.NoTTMove++
		}
	}

	var childValue Value
	searched := 0

	for mv := moveGen.GetNextMove(p, movegen.GenAll); mv != MoveNone; mv = moveGen.GetNextMove(p, movegen.GenAll) {
		// the move a singular verification search is testing against is
		// left out so the search measures what the rest can do without it
		if mv == s.excludedMove[ply] {
			continue
		}

		fromSq := mv.From()
		toSq := mv.To()

		if false { // DEBUG
			failed := false
			msg := ""
			switch {
			case !mv.IsValid():
				msg = fmt.Sprintf("Position DoMove: Invalid move %s", mv.String())
				failed = true
			case p.GetPiece(fromSq) == PieceNone:
				msg = fmt.Sprintf("Position DoMove: No piece on %s for move %s", p.GetPiece(fromSq).String(), mv.StringUci())
				failed = true
			case p.GetPiece(fromSq).ColorOf() != mover:
				msg = fmt.Sprintf("Position DoMove: Piece to move does not belong to next player %s", p.GetPiece(fromSq).String())
				failed = true
			case p.GetPiece(toSq).TypeOf() == King:
				msg = fmt.Sprintf("Position DoMove: King cannot be captured!")
				failed = true
			}
			if failed {
				s.log.Criticalf("Search              : Depth %d Ply %d alpha %d beta %d isPv %t doNull %t\n", depth, ply, alpha, beta, isPV, doNull)
				s.log.Criticalf("Position            : %s\n", p.StringFen())
				s.log.Criticalf("Move                : %s\n", mv.String())
				s.log.Criticalf("Moves Searched      : %d\n", searched)
				s.log.Criticalf("ttMove              : %s\n", ttMove.String())
				s.log.Criticalf("bestMove            : %s\n", nodeBestMove.String())
				s.log.Criticalf("MoveGen PV          : %s\n", moveGen.PvMove())
				s.log.Criticalf("MoveGen K1          : %s\n", moveGen.KillerMoves()[0])
				s.log.Criticalf("MoveGen K2          : %s\n", moveGen.KillerMoves()[1])
				s.log.Criticalf("MoveGen Moves       : %s\n", moveGen.GeneratePseudoLegalMoves(p, movegen.GenAll).StringUci())
				s.log.Criticalf(msg)
				panic(msg)
			}
		} // DEBUG

		nextDepth := depth - 1
		reducedDepth := nextDepth
		extension := 0
		extensionApplied := false

		givesCheck := p.GivesCheck(mv)

		// Search extensions: generally less effective than pruning, so
		// kept narrow and only applied when they look likely to pay off.
		// The path budget stops a chain of extensions from searching one
		// line far beyond the nominal depth.
		if Settings.Search.UseExt {
			// somewhat redundant with qsearch already searching every
			// move while in check, but this lets checking moves benefit
			// from the pruning machinery qsearch doesn't have
			if Settings.Search.UseCheckExt && givesCheck {
				s.statistics.CheckExtension++
				extension = 1
			}

			// a mate threat surfaced by the null-move probe above earns
			// one extra ply to look for a way out; off by default since
			// it grows the tree considerably
			if Settings.Search.UseThreatExt && mateThreat {
				s.statistics.ThreatExtension++
				extension = 1
			}

			// the TT move proven singular by the verification search above
			if mv == singularMove {
				extension = 1
			}

			if Settings.Search.UseExtAddDepth && extension > 0 &&
				s.extensionsUsed < Settings.Search.MaxExtensionBudget {
				nextDepth += extension
				reducedDepth = nextDepth
				extensionApplied = true
			}
		}

		// Forward pruning only applies to moves with nothing obviously
		// interesting going for them: not the TT move, not a killer, no
		// promotion, no capture, and no check on either side of the move.
		if !isPV &&
			extension == 0 &&
			mv != ttMove &&
			mv != (*moveGen.KillerMoves())[0] &&
			mv != (*moveGen.KillerMoves())[1] &&
			mv.MoveType() != Promotion &&
			!p.IsCapturingMove(mv) &&
			!inCheck &&
			!givesCheck &&
			!mateThreat {

			materialDelta := p.Material(mover) - p.Material(mover.Flip())
			captureGain := p.GetPiece(toSq).ValueOf()

			// Futility Pruning: if even an optimistic read of the move's
			// material swing falls well short of alpha, assume the next
			// ply would fail low too and skip searching it.
			if Settings.Search.UseFP && depth < 7 {
				margin := fp[depth]
				if materialDelta+captureGain+margin <= alpha {
					if materialDelta+captureGain > nodeBest {
						nodeBest = materialDelta + captureGain
					}
					s.statistics.FpPrunings++
					continue
				}
			}

			// Late Move Pruning: once enough quiet moves have been tried
			// at this node without success, stop looking at the rest.
			if Settings.Search.UseLmp && searched >= LmpMovesSearched(depth) {
				s.statistics.LmpCuts++
				continue
			}

			// Late Move Reduction: moves this far down the ordering
			// rarely raise alpha, so search them shallower first and
			// only restore full depth if they surprise us.
			if Settings.Search.UseLmr &&
				depth >= Settings.Search.LmrDepth &&
				searched >= Settings.Search.LmrMovesSearched {
				reducedDepth -= LmrReduction(depth, searched)
				s.statistics.LmrReductions++
			}
			if reducedDepth < 0 {
				reducedDepth = 0
			}
		}

		p.DoMove(mv)

		if !p.WasLegalMove() {
			p.UndoMove()
			continue
		}

		s.nodesVisited++
		if extensionApplied {
			s.extensionsUsed++
		}
		s.statistics.CurrentVariation.PushBack(mv)
		s.sendSearchUpdateToUci()

		switch {
		case s.checkDrawRepAnd50(p, 2):
			childValue = contemptValue()
		case !Settings.Search.UsePVS || searched == 0:
			// first move of the node is the assumed PV, gets the full window
			childValue = -s.search(p, nextDepth, ply+1, -beta, -alpha, true, true)
		default:
			// null-window probe at the (possibly reduced) depth; only a
			// value above alpha earns a proper re-search
			childValue = -s.search(p, reducedDepth, ply+1, -alpha-1, -alpha, false, true)
			if childValue > alpha && !s.stopConditions() {
				if reducedDepth < nextDepth {
					s.statistics.LmrResearches++
					childValue = -s.search(p, nextDepth, ply+1, -beta, -alpha, true, true)
				} else if childValue < beta {
					s.statistics.PvsResearches++
					childValue = -s.search(p, nextDepth, ply+1, -beta, -alpha, true, true)
				}
			}
		}

		searched++
		s.statistics.CurrentVariation.PopBack()
		p.UndoMove()
		if extensionApplied {
			s.extensionsUsed--
		}

		if s.stopConditions() {
			return ValueNA
		}

		if childValue > nodeBest {
			nodeBest = childValue
			nodeBestMove = mv
			if childValue > alpha {
				savePV(mv, s.pv[ply+1], s.pv[ply])
				if childValue >= beta {
					s.statistics.BetaCuts++
					if searched == 1 {
						s.statistics.BetaCuts1st++
					}
					if Settings.Search.UseKiller && !p.IsCapturingMove(mv) {
						moveGen.StoreKiller(mv)
					}
					// favor deeper cutoffs and repeated ones by scaling
					// the increment with depth
					if Settings.Search.UseHistoryCounter {
						s.history.HistoryCount[mover][fromSq][toSq] += 1 << depth
					}
					if Settings.Search.UseCounterMoves {
						if prevMove := p.LastMove(); prevMove != MoveNone {
							s.history.CounterMoves[prevMove.From()][prevMove.To()] = mv
						}
					}
					if Settings.Search.UseFollowup {
						if prevOwn := p.SecondLastMove(); prevOwn != MoveNone {
							s.history.FollowupMoves[prevOwn.From()][prevOwn.To()] = mv
						}
					}
					ttType = BETA
					break
				}
				// a forceable improvement over alpha - raise the bar for
				// the rest of this ply
				alpha = childValue
				ttType = EXACT
			}
		}
		// no cutoff: decay the history score for this move by the same
		// amount a cutoff would have added, never below zero
		if Settings.Search.UseHistoryCounter {
			s.history.HistoryCount[mover][fromSq][toSq] -= 1 << depth
			if s.history.HistoryCount[mover][fromSq][toSq] < 0 {
				s.history.HistoryCount[mover][fromSq][toSq] = 0
			}
		}
	}

	// no legal move found: checkmate or stalemate
	if searched == 0 && !s.stopConditions() {
		if p.HasCheck() {
			s.statistics.Checkmates++
			nodeBest = -ValueCheckMate + Value(ply)
		} else {
			s.statistics.Stalemates++
			nodeBest = contemptValue()
		}
		ttType = EXACT
	}

	if Settings.Search.UseTT {
		s.storeTT(p, depth, ply, nodeBestMove, nodeBest, ttType)
	}

	return nodeBest
}

// qsearch extends the search past the nominal horizon along "noisy" lines
// (captures, checks, promotions) so a depth-limited search doesn't misjudge
// a position mid-exchange. Once a branch quiets down the static evaluation
// is trusted and returned to the calling ply.
func (s *Search) qsearch(p *position.Position, ply int, alpha Value, beta Value, isPV bool) Value {
	if trace {
		s.slog.Debugf("%0*s Ply %-2.d QSearch     a:%-6.d b:%-6.d pv:%-6.v start:  %s", ply, "", ply, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("%0*s Ply %-2.d QSearch     a:%-6.d b:%-6.d pv:%-6.v end  :  %s", ply, "", ply, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
	}

	if s.statistics.CurrentExtraSearchDepth < ply {
		s.statistics.CurrentExtraSearchDepth = ply
	}

	if !Settings.Search.UseQuiescence || ply >= MaxDepth {
		return s.evaluate(p, ply)
	}

	if Settings.Search.UseMDP {
		if alpha < -ValueCheckMate+Value(ply) {
			alpha = -ValueCheckMate + Value(ply)
		}
		if beta > ValueCheckMate-Value(ply) {
			beta = ValueCheckMate - Value(ply)
		}
		if alpha >= beta {
			s.statistics.Mdp++
			return alpha
		}
	}

	nodeBest := ValueNA
	ttType := ALPHA
	ttMove := MoveNone
	inCheck := p.HasCheck()

	// while in check every move is generated below (it's effectively a
	// normal search node), so standing pat would be unsound here
	if !inCheck {
		staticEval := s.evaluate(p, ply)
		// Standing pat: trust the static eval as a lower bound, since we
		// assume at least one quiet improvement exists from here.
		if Settings.Search.UseQSStandpat && staticEval > alpha {
			if staticEval >= beta {
				s.statistics.StandpatCuts++
				return staticEval
			}
			alpha = staticEval
		}
		nodeBest = staticEval
	}

	var ttHit *transpositiontable.TtEntry
	if Settings.Search.UseQSTT {
		ttHit = s.tt.Probe(p.ZobristKey())
		if ttHit != nil {
			s.statistics.TTHit++
			ttMove = ttHit.Move()
			stored := valueFromTT(ttHit.Value(), ply)
			canCut := false
			switch {
			case !stored.IsValid():
				canCut = false
			case ttHit.Vtype() == EXACT:
				canCut = true
			case ttHit.Vtype() == ALPHA && stored <= alpha:
				canCut = true
			case ttHit.Vtype() == BETA && stored >= beta:
				canCut = true
			}
			if canCut && Settings.Search.UseTTValue {
				s.statistics.TTCuts++
				return stored
			}
			s.statistics.TTNoCuts++
		} else {
			s.statistics.TTMiss++
		}
	}

	nodeBestMove := MoveNone
	moveGen := s.mg[ply]
	moveGen.ResetOnDemand()
	s.pv[ply].Clear()

	if Settings.Search.UseQSTT {
		if ttMove != MoveNone {
			s.statistics.TTMoveUsed++
			moveGen.SetPvMove(ttMove)
		} else {
			s.statistics.NoTTMove++
		}
	}

	var childValue Value
	searched := 0

	// in check, this is effectively a full-width search extension; out of
	// check, the generator restricts itself to captures
	var mode movegen.GenMode
	if inCheck {
		s.statistics.CheckInQS++
		mode = movegen.GenAll
	} else {
		mode = movegen.GenCap
	}

	for mv := moveGen.GetNextMove(p, mode); mv != MoveNone; mv = moveGen.GetNextMove(p, mode) {
		if !inCheck && !s.goodCapture(p, mv) {
			continue
		}

		// Delta pruning: if even pocketing the captured piece plus a
		// safety margin can't lift the stand-pat score back to alpha,
		// the capture can't matter
		if !inCheck && Settings.Search.UseQFP &&
			!alpha.IsCheckMateValue() &&
			nodeBest+p.GetPiece(mv.To()).ValueOf()+deltaPruningMargin <= alpha {
			s.statistics.QFpPrunings++
			continue
		}

		p.DoMove(mv)

		if !p.WasLegalMove() {
			p.UndoMove()
			continue
		}

		s.nodesVisited++
		s.statistics.CurrentVariation.PushBack(mv)
		s.sendSearchUpdateToUci()

		if inCheck && s.checkDrawRepAnd50(p, 2) {
			// only reachable in check: out of check we only generate
			// captures, which already break repetitions and the
			// 50-move count
			childValue = contemptValue()
		} else {
			childValue = -s.qsearch(p, ply+1, -beta, -alpha, isPV)
		}

		searched++
		s.statistics.CurrentVariation.PopBack()
		p.UndoMove()

		if s.stopConditions() {
			return ValueNA
		}

		if childValue > nodeBest {
			nodeBest = childValue
			nodeBestMove = mv
			if childValue > alpha {
				savePV(mv, s.pv[ply+1], s.pv[ply])
				if childValue >= beta {
					s.statistics.BetaCuts++
					if searched == 1 {
						s.statistics.BetaCuts1st++
					}
					if Settings.Search.UseHistoryCounter {
						s.history.HistoryCount[p.NextPlayer()][mv.From()][mv.To()] += 1 << 1
					}
					if Settings.Search.UseCounterMoves {
						if prevMove := p.LastMove(); prevMove != MoveNone {
							s.history.CounterMoves[prevMove.From()][prevMove.To()] = mv
						}
					}
					if Settings.Search.UseFollowup {
						if prevOwn := p.SecondLastMove(); prevOwn != MoveNone {
							s.history.FollowupMoves[prevOwn.From()][prevOwn.To()] = mv
						}
					}
					ttType = BETA
					break
				}
				alpha = childValue
				ttType = EXACT
			}
		}
	}

	if searched == 0 && !s.stopConditions() {
		// a check with zero legal replies is mate; we'd only reach this
		// branch in check since captures exhausting themselves without
		// mate just falls through to the standing-pat value set above
		if p.HasCheck() {
			s.statistics.Checkmates++
			nodeBest = -ValueCheckMate + Value(ply)
			ttType = EXACT
		}
	}

	if Settings.Search.UseQSTT {
		s.storeTT(p, 1, ply, nodeBestMove, nodeBest, ttType)
	}

	return nodeBest
}

// evaluate returns a static score for p, optionally served from the TT's
// eval-cache slot rather than recomputed.
func (s *Search) evaluate(pos *position.Position, ply int) Value {
	s.statistics.LeafPositionsEvaluated++

	value := ValueNA

	if Settings.Search.UseTT && Settings.Search.UseEvalTT {
		if ttHit := s.tt.Probe(pos.ZobristKey()); ttHit != nil {
			s.statistics.TTHit++
			s.statistics.EvaluationsFromTT++
			value = ttHit.Eval()
		}
	}

	if value == ValueNA {
		s.statistics.Evaluations++
		value = s.eval.Evaluate(pos)
		if Settings.Search.UseTT && Settings.Search.UseEvalTT && s.excludedMove[ply] == MoveNone {
			// store into the entry's dedicated eval slot; search value,
			// depth and bound of an existing entry are left untouched
			s.tt.Put(pos.ZobristKey(), MoveNone, 0, ValueNA, Vnone, value)
		}
	}

	return value
}

// goodCapture filters the moves qsearch bothers looking at down to ones
// likely to matter. SEE gives an exact exchange value; the fallback
// heuristic approximates the same idea without it.
func (s *Search) goodCapture(p *position.Position, mv Move) bool {
	if Settings.Search.UseSEE {
		return see(p, mv) > 0
	}
	return p.GetPiece(mv.From()).ValueOf()+50 < p.GetPiece(mv.To()).ValueOf() ||
		// recaptures are always worth a look
		(p.LastMove() != MoveNone && p.LastMove().To() == mv.To() && p.LastCapturedPiece() != PieceNone) ||
		// capturing something undefended is usually good; this misses
		// defenders "behind" the attacker, which only costs us an extra
		// qsearch move rather than a correctness problem
		!p.IsAttacked(mv.To(), p.NextPlayer().Flip())
}

// savePV makes move the new first entry of dest, followed by a copy of src.
func savePV(move Move, src *moveslice.MoveSlice, dest *moveslice.MoveSlice) {
	dest.Clear()
	dest.PushBack(move)
	*dest = append(*dest, *src...)
}

// storeTT records one node's search result in the transposition table.
// Results from a singular verification search are not stored - they were
// computed with a move excluded and would poison the entry for the full
// position.
func (s *Search) storeTT(p *position.Position, depth int, ply int, move Move, value Value, valueType ValueType) {
	if s.excludedMove[ply] != MoveNone {
		return
	}
	s.tt.Put(p.ZobristKey(), move, int8(depth), valueToTT(value, ply), valueType, ValueNA)
}

// getPVLine reconstructs the principal variation by walking the TT chain
// from p forward, rather than recursing back up through the search stack.
func (s *Search) getPVLine(p *position.Position, pv *moveslice.MoveSlice, depth int) {
	pv.Clear()
	steps := 0
	entry := s.tt.GetEntry(p.ZobristKey())
	for entry != nil && entry.Move() != MoveNone && steps < depth {
		pv.PushBack(entry.Move())
		p.DoMove(entry.Move())
		steps++
		entry = s.tt.GetEntry(p.ZobristKey())
	}
	for i := 0; i < steps; i++ {
		p.UndoMove()
	}
}

// valueToTT adjusts a mate score for the node's ply before it's stored, so
// mate distances recorded in the TT are relative to the root.
func valueToTT(value Value, ply int) Value {
	if value.IsCheckMateValue() {
		if value > 0 {
			value += Value(ply)
		} else {
			value -= Value(ply)
		}
	}
	return value
}

// valueFromTT is the inverse of valueToTT, applied when reading a stored
// mate score back out at the current ply.
func valueFromTT(value Value, ply int) Value {
	if value.IsCheckMateValue() {
		if value > 0 {
			value -= Value(ply)
		} else {
			value += Value(ply)
		}
	}
	return value
}

// getSearchTraceLog builds the search-specific logger: a stdout backend at
// the configured level, replaced by an always-debug file backend alongside
// the engine's other logs once that log file can be opened.
func getSearchTraceLog() *logging.Logger {
	searchLog := logging.MustGetLogger("search")

	format := logging.MustStringFormatter(`%{time:15:04:05.000} %{level:-7.7s}:  %{message}`)

	stdoutBackend := logging.NewLogBackend(os.Stdout, "", golog.Lmsgprefix)
	stdoutFormatted := logging.NewBackendFormatter(stdoutBackend, format)
	stdoutLeveled := logging.AddModuleLevel(stdoutFormatted)
	stdoutLeveled.SetLevel(logging.Level(SearchLogLevel), "")
	searchLog.SetBackend(stdoutLeveled)

	programName, _ := os.Executable()
	exeName := strings.TrimSuffix(filepath.Base(programName), ".exe")

	logPath, err := util.ResolveFolder(Settings.Log.LogPath)
	if err != nil {
		golog.Println("Log folder could not be found:", err)
		return searchLog
	}
	searchLogFilePath := filepath.Join(logPath, exeName+"_search.log")

	searchLogFile, err := os.OpenFile(searchLogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		golog.Println("Logfile could not be created:", err)
		return searchLog
	}
	fileBackend := logging.NewLogBackend(searchLogFile, "", golog.Lmsgprefix)
	fileFormatted := logging.NewBackendFormatter(fileBackend, format)
	fileLeveled := logging.AddModuleLevel(fileFormatted)
	fileLeveled.SetLevel(logging.DEBUG, "")
	searchLog.SetBackend(fileLeveled)
	searchLog.Infof("Log %s started at %s:", searchLogFile.Name(), time.Now().String())
	return searchLog
}
