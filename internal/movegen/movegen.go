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

// Package movegen builds moves for a chess position: all pseudo-legal moves
// at once, all legal moves (pseudo-legal filtered through a check test), or
// a phased "on demand" stream that a search loop can consume move by move
// without paying for the moves it never needs.
package movegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/op/go-logging"

	"github.com/mkern-dev/corvid/internal/config"
	"github.com/mkern-dev/corvid/internal/history"
	myLogging "github.com/mkern-dev/corvid/internal/logging"
	"github.com/mkern-dev/corvid/internal/moveslice"
	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

var log *logging.Logger

// GenMode selects which subset of moves a generation pass produces. The
// two bits can be combined; GenAll requests both in one pass.
type GenMode int

const (
	GenZero   GenMode = 0b00
	GenCap    GenMode = 0b01
	GenNonCap GenMode = 0b10
	GenAll    GenMode = 0b11
)

// phase enumerates the steps of the on-demand generator's internal state
// machine. Each phase produces one batch of moves (or none) before handing
// control to the next.
type phase int8

const (
	phaseStart phase = iota
	phasePv
	phasePawnCaptures
	phaseOfficerCaptures
	phaseKingCaptures
	phaseQuietSplit
	phasePawnQuiet
	phaseCastling
	phaseOfficerQuiet
	phaseKingQuiet
	phaseDone
)

// Movegen holds the scratch buffers and phased-generation state needed to
// produce moves for one ply. Construct with NewMoveGen; the zero value is
// not usable.
type Movegen struct {
	pseudoLegal *moveslice.MoveSlice
	legal       *moveslice.MoveSlice
	onDemand    *moveslice.MoveSlice

	killers     [2]Move
	pv          Move
	historyData *history.History

	streamKey  Key
	streamHead int
	stage      phase
	pvConsumed bool
}

// NewMoveGen allocates a move generator with its scratch buffers sized for
// the largest move list a legal chess position can produce.
func NewMoveGen() *Movegen {
	if log == nil {
		log = myLogging.GetLog()
	}
	return &Movegen{
		pseudoLegal: moveslice.NewMoveSlice(MaxMoves),
		legal:       moveslice.NewMoveSlice(MaxMoves),
		onDemand:    moveslice.NewMoveSlice(MaxMoves),
		killers:     [2]Move{MoveNone, MoveNone},
		pv:          MoveNone,
		stage:       phaseStart,
	}
}

// GeneratePseudoLegalMoves returns every move for the side to move matching
// mode, without verifying that the king is safe afterward - callers that
// need only legal moves should use GenerateLegalMoves instead.
//
// The returned slice is pre-sorted: the PV move first, then by the move's
// own ordering value (roughly MVV-LVA for captures, piece/square tables
// otherwise), with stored killers (if present among the generated moves)
// placed after all captures and ahead of the other quiet moves.
func (mg *Movegen) GeneratePseudoLegalMoves(pos *position.Position, mode GenMode) *moveslice.MoveSlice {
	mg.pseudoLegal.Clear()

	if mode&GenCap != 0 {
		mg.addPawnMoves(pos, GenCap, mg.pseudoLegal)
		mg.addCastlingMoves(pos, GenCap, mg.pseudoLegal)
		mg.addKingMoves(pos, GenCap, mg.pseudoLegal)
		mg.addOfficerMoves(pos, GenCap, mg.pseudoLegal)
	}
	if mode&GenNonCap != 0 {
		mg.addPawnMoves(pos, GenNonCap, mg.pseudoLegal)
		mg.addCastlingMoves(pos, GenNonCap, mg.pseudoLegal)
		mg.addKingMoves(pos, GenNonCap, mg.pseudoLegal)
		mg.addOfficerMoves(pos, GenNonCap, mg.pseudoLegal)
	}

	mg.boostPvAndKillers(pos, mg.pseudoLegal)
	mg.pseudoLegal.Sort()
	mg.stripSortValues(mg.pseudoLegal)

	return mg.pseudoLegal
}

// GenerateLegalMoves returns GeneratePseudoLegalMoves filtered down to moves
// that don't leave the mover's own king in check.
func (mg *Movegen) GenerateLegalMoves(pos *position.Position, mode GenMode) *moveslice.MoveSlice {
	mg.legal.Clear()
	mg.GeneratePseudoLegalMoves(pos, mode)
	mg.pseudoLegal.FilterCopy(mg.legal, func(i int) bool {
		return pos.IsLegalMove(mg.pseudoLegal.At(i))
	})
	return mg.legal
}

// GetNextMove streams moves for pos one at a time in phased order - pv
// move, then captures (pawn, officer, king), then quiet moves (pawn,
// castling, officer, king) - returning MoveNone once exhausted.
//
// Killer moves are promoted to the front of whichever phase actually
// generates them, since we can't know in advance whether a stored killer
// is even pseudo-legal here. Calling this again on a different position
// restarts the phases automatically; to reuse it on the SAME position call
// ResetOnDemand first.
func (mg *Movegen) GetNextMove(pos *position.Position, mode GenMode) Move {
	if pos.ZobristKey() != mg.streamKey {
		mg.onDemand.Clear()
		mg.stage = phaseStart
		mg.pvConsumed = false
		mg.streamHead = 0
		mg.streamKey = pos.ZobristKey()
	}

	if mg.onDemand.Len() == 0 {
		mg.advancePhases(pos, mode)
	}

	if mg.onDemand.Len() == 0 {
		mg.streamHead = 0
		mg.pvConsumed = false
		return MoveNone
	}

	// a pv move already handed out once must be skipped wherever else it
	// would surface in a later phase
	if mg.stage != phasePawnCaptures &&
		mg.pvConsumed &&
		(*mg.onDemand)[mg.streamHead].MoveOf() == mg.pv.MoveOf() {

		mg.streamHead++
		mg.pvConsumed = false

		if mg.streamHead >= mg.onDemand.Len() {
			mg.streamHead = 0
			mg.onDemand.Clear()
			mg.advancePhases(pos, mode)
			if mg.onDemand.Len() == 0 {
				return MoveNone
			}
		}
	}

	next := (*mg.onDemand)[mg.streamHead].MoveOf()
	mg.streamHead++
	if mg.streamHead >= mg.onDemand.Len() {
		mg.streamHead = 0
		mg.onDemand.Clear()
	}
	return next
}

// ResetOnDemand restarts the phased generator and clears the stored PV
// move. Killers survive the reset - they are stored per ply and stay
// useful across the sibling nodes that share this generator.
func (mg *Movegen) ResetOnDemand() {
	mg.onDemand.Clear()
	mg.stage = phaseStart
	mg.streamKey = 0
	mg.pv = MoveNone
	mg.pvConsumed = false
	mg.streamHead = 0
}

// SetPvMove marks move to be returned first by GetNextMove.
func (mg *Movegen) SetPvMove(move Move) {
	mg.pv = move.MoveOf()
}

// StoreKiller records move as a killer for this ply, keeping the two most
// recent distinct killers (most recent first).
func (mg *Movegen) StoreKiller(move Move) {
	bare := move.MoveOf()
	switch bare {
	case mg.killers[0]:
		// already the primary killer
	case mg.killers[1]:
		mg.killers[1], mg.killers[0] = mg.killers[0], bare
	default:
		mg.killers[1] = mg.killers[0]
		mg.killers[0] = bare
	}
}

// SetHistoryData hands the generator a pointer to the search's history
// tables so quiet moves can be ordered by how often they cut off before.
// The tables stay owned (and written) by the search; the generator only
// reads them while scoring moves.
func (mg *Movegen) SetHistoryData(historyData *history.History) {
	mg.historyData = historyData
}

// HasLegalMove reports whether pos has at least one legal move, without
// generating (or sorting) the full move list. Checked roughly in order of
// how likely each piece type is to supply the answer.
func (mg *Movegen) HasLegalMove(pos *position.Position) bool {
	mover := pos.NextPlayer()
	moverBb := pos.OccupiedBb(mover)

	kingSq := pos.KingSquare(mover)
	kingTargets := GetPseudoAttacks(King, kingSq) &^ moverBb
	for kingTargets != 0 {
		to := kingTargets.PopLsb()
		if pos.IsLegalMove(CreateMove(kingSq, to, Normal, PtNone)) {
			return true
		}
	}

	pawns := pos.PiecesBb(mover, Pawn)
	enemyBb := pos.OccupiedBb(mover.Flip())

	for _, dir := range [2]Direction{West, East} {
		captures := ShiftBitboard(pawns, mover.MoveDirection()+dir) & enemyBb
		for captures != 0 {
			to := captures.PopLsb()
			from := to.To(mover.Flip().MoveDirection() - dir)
			if pos.IsLegalMove(CreateMove(from, to, Normal, PtNone)) {
				return true
			}
		}
	}

	occupied := pos.OccupiedAll()
	pushes := ShiftBitboard(pawns, mover.MoveDirection()) &^ occupied
	for pushes != 0 {
		to := pushes.PopLsb()
		from := to.To(mover.Flip().MoveDirection())
		if pos.IsLegalMove(CreateMove(from, to, Normal, PtNone)) {
			return true
		}
	}

	for pt := Knight; pt <= Queen; pt++ {
		pieces := pos.PiecesBb(mover, pt)
		for pieces != 0 {
			from := pieces.PopLsb()
			targets := GetPseudoAttacks(pt, from) &^ moverBb
			blockable := pt > Knight
			for targets != 0 {
				to := targets.PopLsb()
				if blockable && Intermediate(from, to)&occupied != 0 {
					continue
				}
				if pos.IsLegalMove(CreateMove(from, to, Normal, PtNone)) {
					return true
				}
			}
		}
	}

	if ep := pos.GetEnPassantSquare(); ep != SqNone {
		for _, dir := range [2]Direction{West, East} {
			src := ShiftBitboard(ep.Bb(), mover.Flip().MoveDirection()+dir) & pawns
			if src != 0 {
				from := src.PopLsb()
				to := from.To(mover.MoveDirection() - dir)
				if pos.IsLegalMove(CreateMove(from, to, EnPassant, PtNone)) {
					return true
				}
			}
		}
	}

	return false
}

var uciMovePattern = regexp.MustCompile("([a-h][1-8][a-h][1-8])([NBRQnbrq])?")

// GetMoveFromUci generates all legal moves for pos and returns the one
// matching uciMove's long algebraic notation, or MoveNone if none match.
// Intended for parsing GUI/protocol input, not for use inside the search.
func (mg *Movegen) GetMoveFromUci(pos *position.Position, uciMove string) Move {
	matches := uciMovePattern.FindStringSubmatch(uciMove)
	if matches == nil {
		return MoveNone
	}

	base := matches[1]
	promo := ""
	if len(matches) == 3 {
		// lower-case promotion letters aren't strictly UCI but show up
		// often enough in hand-written input to tolerate
		promo = strings.ToUpper(matches[2])
	}

	mg.GenerateLegalMoves(pos, GenAll)
	for _, candidate := range *mg.legal {
		if candidate.StringUci() == base+promo {
			return candidate
		}
	}
	return MoveNone
}

var sanMovePattern = regexp.MustCompile("([NBRQK])?([a-h])?([1-8])?x?([a-h][1-8]|O-O-O|O-O)(=?([NBRQ]))?([!?+#]*)?")

// GetMoveFromSan generates all legal moves for pos and returns the one
// matching sanMove's standard algebraic notation, or MoveNone if none (or
// more than one) match unambiguously.
func (mg *Movegen) GetMoveFromSan(pos *position.Position, sanMove string) Move {
	matches := sanMovePattern.FindStringSubmatch(sanMove)
	if matches == nil {
		return MoveNone
	}

	pieceLetter := matches[1]
	fileHint := matches[2]
	rankHint := matches[3]
	destination := matches[4]
	promoLetter := matches[6]

	found := 0
	candidate := MoveNone

	mg.GenerateLegalMoves(pos, GenAll)
	for _, m := range *mg.legal {
		if m.MoveType() == Castling {
			var castleNotation string
			switch m.To() {
			case SqG1, SqG8:
				castleNotation = "O-O"
			case SqC1, SqC8:
				castleNotation = "O-O-O"
			default:
				log.Error("Move type CASTLING but wrong to square: %s %s", castleNotation, m.To().String())
				continue
			}
			if castleNotation == destination {
				candidate = m
				found++
			}
			continue
		}

		if m.To().String() != destination {
			continue
		}

		movedType := pos.GetPiece(m.From()).TypeOf()
		movedLetter := movedType.Char()
		if (len(pieceLetter) == 0 || movedLetter != pieceLetter) &&
			(len(pieceLetter) != 0 || movedType != Pawn) {
			continue
		}
		if len(fileHint) != 0 && m.From().FileOf().String() != fileHint {
			continue
		}
		if len(rankHint) != 0 && m.From().RankOf().String() != rankHint {
			continue
		}
		if (len(promoLetter) != 0 && m.PromotionType().Char() != promoLetter) ||
			(len(promoLetter) == 0 && m.MoveType() == Promotion) {
			continue
		}

		candidate = m
		found++
	}

	switch {
	case found > 1:
		log.Warningf("SAN move %s is ambiguous (%d matches) on %s!", sanMove, found, pos.StringFen())
	case found == 0 || !candidate.IsValid():
		log.Warningf("SAN move not valid! SAN move %s not found on position: %s", sanMove, pos.StringFen())
	default:
		return candidate
	}
	return MoveNone
}

// ValidateMove reports whether move is legal on pos.
func (mg *Movegen) ValidateMove(pos *position.Position, move Move) bool {
	if move == MoveNone {
		return false
	}
	for _, m := range *mg.GenerateLegalMoves(pos, GenAll) {
		if move.MoveOf() == m {
			return true
		}
	}
	return false
}

// PvMove returns the currently configured PV move.
func (mg *Movegen) PvMove() Move {
	return mg.pv
}

// KillerMoves returns a pointer to this generator's stored killer moves.
func (mg *Movegen) KillerMoves() *[2]Move {
	return &mg.killers
}

// String renders a short debug summary of the generator's current state.
func (mg *Movegen) String() string {
	return fmt.Sprintf("MoveGen: { stage: %d, pv: %s, killer1: %s, killer2: %s }",
		mg.stage, mg.pv.String(), mg.killers[0].String(), mg.killers[1].String())
}

// advancePhases runs the phased generator forward until it produces at
// least one move or runs out of phases. Phases are visited in roughly
// best-first order: PV, then captures, then quiet moves.
func (mg *Movegen) advancePhases(pos *position.Position, mode GenMode) {
	for mg.onDemand.Len() == 0 && mg.stage < phaseDone {
		switch mg.stage {
		case phaseStart:
			mg.stage = phasePv
			fallthrough

		case phasePv:
			if mg.pv != MoveNone {
				include := false
				switch mode {
				case GenAll:
					include = true
				case GenCap:
					include = pos.IsCapturingMove(mg.pv)
				case GenNonCap:
					include = !pos.IsCapturingMove(mg.pv)
				}
				if include {
					mg.pvConsumed = true
					mg.onDemand.PushBack(mg.pv)
				}
			}
			if mode&GenCap != 0 {
				mg.stage = phasePawnCaptures
			} else {
				mg.stage = phaseQuietSplit
			}

		case phasePawnCaptures:
			mg.addPawnMoves(pos, GenCap, mg.onDemand)
			mg.stage = phaseOfficerCaptures
		case phaseOfficerCaptures:
			mg.addOfficerMoves(pos, GenCap, mg.onDemand)
			mg.stage = phaseKingCaptures
		case phaseKingCaptures:
			mg.addKingMoves(pos, GenCap, mg.onDemand)
			mg.stage = phaseQuietSplit

		case phaseQuietSplit:
			if mode&GenNonCap != 0 {
				mg.stage = phasePawnQuiet
			} else {
				mg.stage = phaseDone
			}

		case phasePawnQuiet:
			mg.addPawnMoves(pos, GenNonCap, mg.onDemand)
			mg.promoteKillers(pos, mg.onDemand)
			mg.stage = phaseCastling
		case phaseCastling:
			mg.addCastlingMoves(pos, GenNonCap, mg.onDemand)
			mg.promoteKillers(pos, mg.onDemand)
			mg.stage = phaseOfficerQuiet
		case phaseOfficerQuiet:
			mg.addOfficerMoves(pos, GenNonCap, mg.onDemand)
			mg.promoteKillers(pos, mg.onDemand)
			mg.stage = phaseKingQuiet
		case phaseKingQuiet:
			mg.addKingMoves(pos, GenNonCap, mg.onDemand)
			mg.promoteKillers(pos, mg.onDemand)
			mg.stage = phaseDone
		}

		if mg.onDemand.Len() > 0 {
			mg.onDemand.Sort()
		}
	}
}

// boostPvAndKillers assigns an out-of-band sort value to the PV move and
// stored killers so a subsequent Sort() places the PV move first and the
// killers after the captures but ahead of the other quiets. When history
// data is available the remaining moves get a bump from the history
// counters and from being the recorded counter or follow-up move of the
// line leading here.
func (mg *Movegen) boostPvAndKillers(pos *position.Position, ml *moveslice.MoveSlice) {
	ml.ForEach(func(i int) {
		m := ml.At(i)
		switch {
		case m.MoveOf() == mg.pv:
			ml.Set(i, m.SetValue(ValueMax))
		case m.MoveOf() == mg.killers[0]:
			ml.Set(i, m.SetValue(-4000))
		case m.MoveOf() == mg.killers[1]:
			ml.Set(i, m.SetValue(-4001))
		case mg.historyData != nil:
			if value := mg.historyValue(pos, m); value > 0 {
				ml.Set(i, m.SetValue(m.ValueOf()+value))
			}
		}
	})
}

// historyValue computes the sort bonus the history tables give a move:
// the scaled history count plus fixed bonuses when the move is the stored
// counter move for the opponent's last move or the follow-up move for our
// own move two plies back. Only ever increases the value - moves without
// history remain at their static ordering.
func (mg *Movegen) historyValue(pos *position.Position, m Move) Value {
	bare := m.MoveOf()
	us := pos.NextPlayer()

	// the hard cut by 100 means only moves with a meaningful cutoff record
	// influence the static ordering at all; the clamp keeps even extreme
	// counts from lifting a quiet move past the killers
	value := Value(mg.historyData.HistoryCount[us][m.From()][m.To()] / 100)
	if value > 1000 {
		value = 1000
	}

	if config.Settings.Search.UseCounter {
		if last := pos.LastMove(); last != MoveNone &&
			mg.historyData.CounterMoves[last.From()][last.To()] == bare {
			value += 500
		}
	}
	if config.Settings.Search.UseFollowup {
		if prev := pos.SecondLastMove(); prev != MoveNone &&
			mg.historyData.FollowupMoves[prev.From()][prev.To()] == bare {
			value += 200
		}
	}
	return value
}

func (mg *Movegen) stripSortValues(ml *moveslice.MoveSlice) {
	ml.ForEach(func(i int) {
		ml.Set(i, ml.At(i).MoveOf())
	})
}

// promoteKillers re-sorts any killer moves present in m to the very front
// and applies the history sort bonus to the rest. Killers are stored for
// the whole ply and may not even be pseudo-legal here, so we can only act
// on them once the relevant phase has actually produced them - checking
// eagerly would cost a full legality test.
func (mg *Movegen) promoteKillers(pos *position.Position, m *moveslice.MoveSlice) {
	for i := range *m {
		entry := &(*m)[i]
		switch {
		case mg.killers[1] == entry.MoveOf():
			entry.SetValue(Value(-4001))
		case mg.killers[0] == entry.MoveOf():
			entry.SetValue(Value(-4000))
		case mg.historyData != nil:
			if value := mg.historyValue(pos, *entry); value > 0 {
				entry.SetValue(entry.ValueOf() + value)
			}
		}
	}
}

func (mg *Movegen) addPawnMoves(pos *position.Position, mode GenMode, ml *moveslice.MoveSlice) {
	mover := pos.NextPlayer()
	pawns := pos.PiecesBb(mover, Pawn)
	enemy := pos.OccupiedBb(mover.Flip())
	phase := pos.GamePhase()
	piece := MakePiece(mover, Pawn)

	if mode&GenCap != 0 {
		var captures, promoCaptures Bitboard

		for _, dir := range [2]Direction{West, East} {
			captures = ShiftBitboard(pawns, mover.MoveDirection()+dir) & enemy
			promoCaptures = captures & mover.PromotionRankBb()

			for promoCaptures != 0 {
				to := promoCaptures.PopLsb()
				from := to.To(mover.Flip().MoveDirection() - dir)
				base := pos.GetPiece(to).ValueOf() - pos.GetPiece(from).ValueOf() + PosValue(piece, to, phase)
				pushPromotions(ml, from, to, base)
			}

			captures &= ^mover.PromotionRankBb()
			for captures != 0 {
				to := captures.PopLsb()
				from := to.To(mover.Flip().MoveDirection() - dir)
				value := pos.GetPiece(to).ValueOf() - pos.GetPiece(from).ValueOf() + PosValue(piece, to, phase)
				ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
			}
		}

		if ep := pos.GetEnPassantSquare(); ep != SqNone {
			for _, dir := range [2]Direction{West, East} {
				src := ShiftBitboard(ep.Bb(), mover.Flip().MoveDirection()+dir) & pawns
				if src != 0 {
					from := src.PopLsb()
					to := from.To(mover.MoveDirection() - dir)
					value := PosValue(piece, to, phase)
					ml.PushBack(CreateMoveValue(from, to, EnPassant, PtNone, value))
				}
			}
		}
	}

	if mode&GenNonCap != 0 {
		occupied := pos.OccupiedAll()
		singleStep := ShiftBitboard(pawns, mover.MoveDirection()) &^ occupied
		doubleStep := ShiftBitboard(singleStep&mover.PawnDoubleRank(), mover.MoveDirection()) &^ occupied

		promoSteps := singleStep & mover.PromotionRankBb()
		for promoSteps != 0 {
			to := promoSteps.PopLsb()
			from := to.To(mover.Flip().MoveDirection())
			pushPromotions(ml, from, to, Value(-10_000))
		}

		for doubleStep != 0 {
			to := doubleStep.PopLsb()
			from := to.To(mover.Flip().MoveDirection()).To(mover.Flip().MoveDirection())
			value := Value(-10_000) + PosValue(piece, to, phase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}

		singleStep &= ^mover.PromotionRankBb()
		for singleStep != 0 {
			to := singleStep.PopLsb()
			from := to.To(mover.Flip().MoveDirection())
			value := Value(-10_000) + PosValue(piece, to, phase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}
	}
}

// pushPromotions appends the four promotion choices for a from->to pawn
// move. Rook/bishop promotions are sorted below queen/knight since they're
// almost always dominated except in rare stalemate-avoidance lines.
func pushPromotions(ml *moveslice.MoveSlice, from Square, to Square, base Value) {
	ml.PushBack(CreateMoveValue(from, to, Promotion, Queen, base+Queen.ValueOf()))
	ml.PushBack(CreateMoveValue(from, to, Promotion, Knight, base+Knight.ValueOf()))
	ml.PushBack(CreateMoveValue(from, to, Promotion, Rook, base+Rook.ValueOf()-Value(2000)))
	ml.PushBack(CreateMoveValue(from, to, Promotion, Bishop, base+Bishop.ValueOf()-Value(2000)))
}

func (mg *Movegen) addCastlingMoves(pos *position.Position, mode GenMode, ml *moveslice.MoveSlice) {
	if mode&GenNonCap == 0 || pos.CastlingRights() == CastlingNone {
		return
	}

	mover := pos.NextPlayer()
	occupied := pos.OccupiedAll()
	cr := pos.CastlingRights()

	// legality of passing through check is left to IsLegalMove; this only
	// filters out castles blocked by an occupied intermediate square
	if mover == White {
		if cr.Has(CastlingWhiteOO) && Intermediate(SqE1, SqH1)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE1, SqG1, Castling, PtNone, Value(-5000)))
		}
		if cr.Has(CastlingWhiteOOO) && Intermediate(SqE1, SqA1)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE1, SqC1, Castling, PtNone, Value(-5000)))
		}
	} else {
		if cr.Has(CastlingBlackOO) && Intermediate(SqE8, SqH8)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE8, SqG8, Castling, PtNone, Value(-5000)))
		}
		if cr.Has(CastlingBlackOOO) && Intermediate(SqE8, SqA8)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE8, SqC8, Castling, PtNone, Value(-5000)))
		}
	}
}

func (mg *Movegen) addKingMoves(pos *position.Position, mode GenMode, ml *moveslice.MoveSlice) {
	mover := pos.NextPlayer()
	piece := MakePiece(mover, King)
	phase := pos.GamePhase()
	from := pos.PiecesBb(mover, King).PopLsb()
	targets := GetPseudoAttacks(King, from)

	if mode&GenCap != 0 {
		captures := targets & pos.OccupiedBb(mover.Flip())
		for captures != 0 {
			to := captures.PopLsb()
			value := pos.GetPiece(to).ValueOf() - pos.GetPiece(from).ValueOf() + PosValue(piece, to, phase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}
	}
	if mode&GenNonCap != 0 {
		quiet := targets &^ pos.OccupiedAll()
		for quiet != 0 {
			to := quiet.PopLsb()
			value := Value(-10_000) + PosValue(piece, to, phase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}
	}
}

// addOfficerMoves generates knight/bishop/rook/queen moves from the
// magic-bitboard attack tables. Unlike king/knight, sliding-piece attacks
// already account for blockers, so no separate "intermediate squares
// clear" test is needed here.
func (mg *Movegen) addOfficerMoves(pos *position.Position, mode GenMode, ml *moveslice.MoveSlice) {
	mover := pos.NextPlayer()
	phase := pos.GamePhase()
	occupied := pos.OccupiedAll()

	for pt := Knight; pt <= Queen; pt++ {
		piece := MakePiece(mover, pt)
		pieces := pos.PiecesBb(mover, pt)

		for pieces != 0 {
			from := pieces.PopLsb()
			attacks := GetAttacksBb(pt, from, occupied)

			if mode&GenCap != 0 {
				captures := attacks & pos.OccupiedBb(mover.Flip())
				for captures != 0 {
					to := captures.PopLsb()
					value := pos.GetPiece(to).ValueOf() - pos.GetPiece(from).ValueOf() + PosValue(piece, to, phase)
					ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
				}
			}
			if mode&GenNonCap != 0 {
				quiet := attacks &^ occupied
				for quiet != 0 {
					to := quiet.PopLsb()
					value := Value(-10_000) + PosValue(piece, to, phase)
					ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
				}
			}
		}
	}
}
