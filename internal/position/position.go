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

// Package position implements the board representation of the engine: an
// 8x8 piece array backed by per-color/per-piece-type bitboards, a ring of
// undo records for DoMove/UndoMove and repetition detection, and an
// incrementally maintained Zobrist key for transposition lookups. Material
// and piece-square totals are kept up to date on every placePiece/liftPiece
// call rather than recomputed from the board.
//
// NewPosition with no argument returns the standard game's start position.
package position

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/op/go-logging"

	"github.com/mkern-dev/corvid/internal/assert"
	myLogging "github.com/mkern-dev/corvid/internal/logging"
	. "github.com/mkern-dev/corvid/internal/types"
)

var log *logging.Logger

var zobristReady = false

func init() {
	if !zobristReady {
		initZobrist()
		zobristReady = true
	}
}

// StartFen is the FEN of the standard chess starting position.
const StartFen string = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// maxHistory bounds the undo ring; a game can't run longer than MaxMoves plies.
const maxHistory int = MaxMoves

// tri-state for a value that is computed lazily and cached until the next move.
const (
	flagUnknown int = iota
	flagNo
	flagYes
)

// undoState captures everything DoMove/DoNullMove must restore on UndoMove
// or UndoNullMove that isn't already implied by replaying the move backward.
type undoState struct {
	key       Key
	move      Move
	mover     Piece
	captured  Piece
	castle    CastlingRights
	epSquare  Square
	rule50    int
	checkFlag int
}

// Position represents one chess board state, including everything needed to
// make and unmake moves and to hash the position for a transposition table.
// Build one with NewPosition or NewPositionFen - the zero value is not usable.
type Position struct {
	key Key

	// pawn-placement-only hash, maintained alongside key so the
	// evaluator's pawn cache has a ready-made lookup key.
	pawnKey Key

	// core board state - together these fully determine the position
	// (aside from repetition history, which lives separately).
	squares    [SqLength]Piece
	castle     CastlingRights
	epSquare   Square
	rule50     int
	sideToMove Color

	// redundant state, kept in sync by placePiece/liftPiece for speed.
	kingSq     [ColorLength]Square
	ply        int
	pieceBB    [ColorLength][PtLength]Bitboard
	occupiedBB [ColorLength]Bitboard

	// undo ring for DoMove/UndoMove and for n-fold repetition detection.
	histTop int
	past    [maxHistory]undoState

	// running totals, updated incrementally as pieces move.
	material        [ColorLength]Value
	nonPawnMaterial [ColorLength]Value
	pstMid          [ColorLength]Value
	pstEnd          [ColorLength]Value
	phase           int

	// lazily computed and reset to flagUnknown on every move/unmove.
	checkFlag int
}

// NewPosition builds a position from an optional FEN string; with no
// argument it returns the standard game's start position. Any FEN parsing
// error is swallowed - use NewPositionFen directly to observe it.
func NewPosition(fen ...string) *Position {
	if len(fen) == 0 {
		p, _ := NewPositionFen(StartFen)
		return p
	}
	p, _ := NewPositionFen(fen[0])
	return p
}

// NewPositionFen builds a position from the given FEN. Returns nil and an
// error if the FEN could not be parsed.
func NewPositionFen(fen string) (*Position, error) {
	if log == nil {
		log = myLogging.GetLog()
	}
	p := &Position{}
	if err := p.loadFen(fen); err != nil {
		log.Errorf("fen for position setup not valid and position can't be created: %s", err)
		return nil, err
	}
	return p, nil
}

// DoMove plays m on the board. The move is trusted to be at least pseudo
// legal for the current position - callers generate it via the move
// generator or validate it themselves beforehand; DoMove itself does not
// check legality (see IsLegalMove/WasLegalMove for that).
func (p *Position) DoMove(m Move) {
	fromSq := m.From()
	mover := p.squares[fromSq]
	myColor := mover.ColorOf()
	toSq := m.To()
	captured := p.squares[toSq]

	if assert.DEBUG {
		assert.Assert(m.IsValid(), "Position DoMove: Invalid move %s", m.String())
		assert.Assert(mover != PieceNone, "Position DoMove: No piece on %s for move %s", mover.String(), m.StringUci())
		assert.Assert(myColor == p.sideToMove, "Position DoMove: Piece to move does not belong to next player %s", mover.String())
		assert.Assert(captured.TypeOf() != King, "Position DoMove: King cannot be captured yet target piece is %s", captured.String())
	}

	// snapshot everything UndoMove will need, reusing the ring slot instead
	// of allocating a fresh undo record every ply.
	top := p.histTop
	p.past[top] = undoState{
		key:       p.key,
		move:      m,
		mover:     mover,
		captured:  captured,
		castle:    p.castle,
		epSquare:  p.epSquare,
		rule50:    p.rule50,
		checkFlag: p.checkFlag,
	}
	p.histTop++

	switch m.MoveType() {
	case Normal:
		p.applyNormalMove(fromSq, toSq, captured, mover, myColor)
	case Promotion:
		p.applyPromotionMove(m, mover, myColor, toSq, captured, fromSq)
	case EnPassant:
		p.applyEnPassantMove(toSq, myColor, mover, fromSq)
	case Castling:
		p.applyCastlingMove(mover, myColor, toSq, fromSq)
	}

	p.checkFlag = flagUnknown
	p.ply++
	p.sideToMove = p.sideToMove.Flip()
	p.key ^= zobristBase.nextPlayer
}

// UndoMove reverts the most recent DoMove.
func (p *Position) UndoMove() {
	if assert.DEBUG {
		assert.Assert(p.histTop > 0, "Position UndoMove: Cannot undo initial position")
	}

	p.histTop--
	p.ply--
	p.sideToMove = p.sideToMove.Flip()
	top := p.histTop
	move := p.past[top].move

	switch move.MoveType() {
	case Normal:
		p.relocatePiece(move.To(), move.From())
		if p.past[top].captured != PieceNone {
			p.placePiece(p.past[top].captured, move.To())
		}
	case Promotion:
		p.liftPiece(move.To())
		p.placePiece(MakePiece(p.sideToMove, Pawn), move.From())
		if p.past[top].captured != PieceNone {
			p.placePiece(p.past[top].captured, move.To())
		}
	case EnPassant:
		// zobrist key is restored wholesale from the undo record below
		p.relocatePiece(move.To(), move.From())
		p.placePiece(MakePiece(p.sideToMove.Flip(), Pawn), move.To().To(p.sideToMove.Flip().MoveDirection()))
	case Castling:
		// zobrist key and castling rights are likewise restored below
		p.relocatePiece(move.To(), move.From()) // king
		switch move.To() {
		case SqG1:
			p.relocatePiece(SqF1, SqH1)
		case SqC1:
			p.relocatePiece(SqD1, SqA1)
		case SqG8:
			p.relocatePiece(SqF8, SqH8)
		case SqC8:
			p.relocatePiece(SqD8, SqA8)
		default:
			panic("Invalid castle move!")
		}
	}

	p.castle = p.past[top].castle
	p.epSquare = p.past[top].epSquare
	p.rule50 = p.past[top].rule50
	p.checkFlag = p.past[top].checkFlag
	p.key = p.past[top].key
}

// DoNullMove passes the move without changing the board, used by null move
// pruning. An undo record is still pushed so UndoNullMove can restore the
// pre-null state; the external view of the position (FEN, zobrist key)
// before and after a DoNullMove/UndoNullMove pair is identical even though
// the internal history entry used to get there differs.
func (p *Position) DoNullMove() {
	top := p.histTop
	p.past[top] = undoState{
		key:       p.key,
		move:      MoveNone,
		mover:     PieceNone,
		captured:  PieceNone,
		castle:    p.castle,
		epSquare:  p.epSquare,
		rule50:    p.rule50,
		checkFlag: p.checkFlag,
	}
	p.histTop++

	p.checkFlag = flagUnknown
	p.resetEpSquare()
	p.ply++
	p.sideToMove = p.sideToMove.Flip()
	p.key ^= zobristBase.nextPlayer
}

// UndoNullMove reverts a DoNullMove. Only the state, not the undo ring slot
// contents, needs restoring - the slot is about to be overwritten by the
// next DoMove/DoNullMove anyway.
func (p *Position) UndoNullMove() {
	p.histTop--
	p.ply--
	p.sideToMove = p.sideToMove.Flip()
	top := p.histTop
	p.castle = p.past[top].castle
	p.epSquare = p.past[top].epSquare
	p.rule50 = p.past[top].rule50
	p.checkFlag = p.past[top].checkFlag
	p.key = p.past[top].key
}

// IsAttacked reports whether sq is attacked by a piece of color by.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	// reverse-attack from sq outward: if a queen/knight/king/pawn placed on
	// sq would see an attacker's piece of the matching type, the real attack
	// runs the other way and sq is attacked.
	if (GetPawnAttacks(by.Flip(), sq)&p.pieceBB[by][Pawn] != 0) ||
		(GetPseudoAttacks(Knight, sq)&p.pieceBB[by][Knight] != 0) ||
		(GetPseudoAttacks(King, sq)&p.pieceBB[by][King] != 0) {
		return true
	}

	if GetAttacksBb(Bishop, sq, p.OccupiedAll())&p.pieceBB[by][Bishop] > 0 ||
		GetAttacksBb(Rook, sq, p.OccupiedAll())&p.pieceBB[by][Rook] > 0 ||
		GetAttacksBb(Queen, sq, p.OccupiedAll())&p.pieceBB[by][Queen] > 0 {
		return true
	}

	if p.epSquare != SqNone {
		switch by {
		case White:
			if p.squares[p.epSquare.To(South)] == BlackPawn && p.epSquare.To(South) == sq {
				if p.squares[sq.To(West)] == WhitePawn {
					return true
				}
				return p.squares[sq.To(East)] == WhitePawn
			}
		case Black:
			if p.squares[p.epSquare.To(North)] == WhitePawn && p.epSquare.To(North) == sq {
				if p.squares[sq.To(West)] == BlackPawn {
					return true
				}
				return p.squares[sq.To(East)] == BlackPawn
			}
		}
	}
	return false
}

// IsLegalMove reports whether move is legal to play right now: that it
// doesn't leave the mover's own king in check, and - for castling - that
// the king doesn't start, cross, or land on an attacked square.
func (p *Position) IsLegalMove(move Move) bool {
	if move.MoveType() == Castling {
		if p.IsAttacked(move.From(), p.sideToMove.Flip()) {
			return false
		}
		switch move.To() {
		case SqG1:
			if p.IsAttacked(SqF1, p.sideToMove.Flip()) {
				return false
			}
		case SqC1:
			if p.IsAttacked(SqD1, p.sideToMove.Flip()) {
				return false
			}
		case SqG8:
			if p.IsAttacked(SqF8, p.sideToMove.Flip()) {
				return false
			}
		case SqC8:
			if p.IsAttacked(SqD8, p.sideToMove.Flip()) {
				return false
			}
		}
	}
	p.DoMove(move)
	legal := !p.IsAttacked(p.kingSq[p.sideToMove.Flip()], p.sideToMove)
	p.UndoMove()
	return legal
}

// WasLegalMove reports whether the most recently played move (via DoMove)
// was legal: the mover's king isn't left in check, and if the move was
// castling, the king didn't start, cross, or land on an attacked square.
// With an empty history it only checks whether the opponent's king is
// currently attacked.
func (p *Position) WasLegalMove() bool {
	if p.IsAttacked(p.kingSq[p.sideToMove.Flip()], p.sideToMove) {
		return false
	}
	if p.histTop > 0 {
		move := p.past[p.histTop-1].move
		if move.MoveType() == Castling {
			if p.IsAttacked(move.From(), p.sideToMove) {
				return false
			}
			switch move.To() {
			case SqG1:
				if p.IsAttacked(SqF1, p.sideToMove) {
					return false
				}
			case SqC1:
				if p.IsAttacked(SqD1, p.sideToMove) {
					return false
				}
			case SqG8:
				if p.IsAttacked(SqF8, p.sideToMove) {
					return false
				}
			case SqC8:
				if p.IsAttacked(SqD8, p.sideToMove) {
					return false
				}
			}
		}
	}
	return true
}

// HasCheck reports whether the side to move is currently in check. The
// result is cached until the position next changes, so repeated calls on
// the same position are cheap.
func (p *Position) HasCheck() bool {
	if p.checkFlag != flagUnknown {
		return p.checkFlag == flagYes
	}
	inCheck := p.IsAttacked(p.kingSq[p.sideToMove], p.sideToMove.Flip())
	if inCheck {
		p.checkFlag = flagYes
	} else {
		p.checkFlag = flagNo
	}
	return inCheck
}

// IsCapturingMove reports whether move captures a piece on this position,
// including en passant captures.
func (p *Position) IsCapturingMove(move Move) bool {
	return p.occupiedBB[p.sideToMove.Flip()].Has(move.To()) || move.MoveType() == EnPassant
}

// CheckRepetitions reports whether the current position has already
// occurred at least reps times earlier in the game's history (so reps==2
// detects a 3-fold repetition). Search stops scanning back as soon as it
// crosses a position where the half-move clock was reset, since no
// irreversible move can repeat a position from before it.
func (p *Position) CheckRepetitions(reps int) bool {
	count := 0
	i := p.histTop - 2
	clockAt := p.rule50
	for i >= 0 {
		if p.past[i].rule50 >= clockAt {
			break
		}
		clockAt = p.past[i].rule50
		if p.key == p.past[i].key {
			count++
		}
		if count >= reps {
			return true
		}
		i -= 2
	}
	return false
}

// HasInsufficientMaterial reports whether neither side has enough material
// to force a checkmate. This is a conservative approximation - it doesn't
// rule out positions where a mate is only reachable with help from the
// losing side's mistakes.
func (p *Position) HasInsufficientMaterial() bool {
	if p.material[White]+p.material[Black] == 0 {
		return true
	}

	if p.pieceBB[White][Pawn].PopCount() == 0 && p.pieceBB[Black][Pawn].PopCount() == 0 {
		if p.nonPawnMaterial[White] < 400 && p.nonPawnMaterial[Black] < 400 {
			return true
		}
		if (p.nonPawnMaterial[White] == 2*Knight.ValueOf() && p.nonPawnMaterial[Black] <= Bishop.ValueOf()) ||
			(p.nonPawnMaterial[Black] == 2*Knight.ValueOf() && p.nonPawnMaterial[White] <= Bishop.ValueOf()) {
			return true
		}
		if (p.nonPawnMaterial[White] == 2*Bishop.ValueOf() && p.nonPawnMaterial[Black] == Bishop.ValueOf()) ||
			(p.nonPawnMaterial[Black] == 2*Bishop.ValueOf() && p.nonPawnMaterial[White] == Bishop.ValueOf()) {
			return true
		}
		if p.nonPawnMaterial[White] == 2*Bishop.ValueOf() || p.nonPawnMaterial[Black] == 2*Bishop.ValueOf() {
			return false
		}
		if (p.nonPawnMaterial[White] < 2*Bishop.ValueOf() && p.nonPawnMaterial[Black] <= Bishop.ValueOf()) ||
			(p.nonPawnMaterial[White] <= Bishop.ValueOf() && p.nonPawnMaterial[Black] < 2*Bishop.ValueOf()) {
			return true
		}
	}
	return false
}

// GivesCheck reports whether move, if played, would put the opponent of
// the side to move in check - directly, or by revealing an attack from a
// slider once the mover's own piece steps out of the way.
func (p *Position) GivesCheck(move Move) bool {
	us := p.sideToMove
	them := us.Flip()
	kingSq := p.kingSq[them]

	fromSq := move.From()
	toSq := move.To()
	mover := p.squares[fromSq]
	moverType := mover.TypeOf()
	epCaptureSq := SqNone
	moveType := move.MoveType()

	switch moveType {
	case Promotion:
		moverType = move.PromotionType()
	case Castling:
		// the king can't give check; check instead as if the rook had moved,
		// since castling never reveals a check from the king's own square
		moverType = Rook
		switch toSq {
		case SqG1:
			toSq = SqF1
		case SqC1:
			toSq = SqD1
		case SqG8:
			toSq = SqF8
		case SqC8:
			toSq = SqD8
		}
	case EnPassant:
		epCaptureSq = toSq.To(them.MoveDirection())
	}

	afterMove := p.OccupiedAll()
	afterMove.PopSquare(fromSq)
	afterMove.PushSquare(toSq)
	if moveType == EnPassant {
		afterMove.PopSquare(epCaptureSq)
	}

	switch moverType {
	case Pawn:
		if GetPawnAttacks(us, toSq).Has(kingSq) {
			return true
		}
	case King:
		// a king move can never give check directly
	default:
		if GetAttacksBb(moverType, toSq, afterMove).Has(kingSq) {
			return true
		}
	}

	// revealed check: only sliders can discover one, and only once the
	// moving piece (or, for en passant, the captured pawn) clears the line.
	switch {
	case GetAttacksBb(Bishop, kingSq, afterMove)&p.pieceBB[us][Bishop] > 0:
		return true
	case GetAttacksBb(Rook, kingSq, afterMove)&p.pieceBB[us][Rook] > 0:
		return true
	case GetAttacksBb(Queen, kingSq, afterMove)&p.pieceBB[us][Queen] > 0:
		return true
	}

	return false
}

// String renders the FEN, an ASCII board, and a summary of material and
// positional values - useful for logging and debugging.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString(p.StringFen())
	sb.WriteString("\n")
	sb.WriteString(p.StringBoard())
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Next Player    : %s\n", p.sideToMove.String()))
	sb.WriteString(fmt.Sprintf("Game Phase     : %d\n", p.phase))
	sb.WriteString(fmt.Sprintf("Material White : %d\n", p.material[White]))
	sb.WriteString(fmt.Sprintf("Material Black : %d\n", p.material[Black]))
	sb.WriteString(fmt.Sprintf("Pos value White: %d/%d\n", p.pstMid[White], p.pstEnd[White]))
	sb.WriteString(fmt.Sprintf("Pos value Black: %d/%d\n", p.pstMid[Black], p.pstEnd[Black]))
	return sb.String()
}

// StringFen returns the FEN of the current position.
func (p *Position) StringFen() string {
	return p.toFen()
}

// StringBoard returns a printable 8x8 grid of the board's pieces.
func (p *Position) StringBoard() string {
	var sb strings.Builder
	sb.WriteString("+---+---+---+---+---+---+---+---+\n")
	for r := Rank1; r <= Rank8; r++ {
		for f := FileA; f <= FileH; f++ {
			sb.WriteString("| ")
			sb.WriteString(p.squares[SquareOf(f, Rank8-r)].Char())
			sb.WriteString(" ")
		}
		sb.WriteString("|\n+---+---+---+---+---+---+---+---+\n")
	}
	return sb.String()
}

// //////////////////////////////////////////////////////////
// move application helpers
// //////////////////////////////////////////////////////////

func (p *Position) applyNormalMove(fromSq, toSq Square, captured, mover Piece, myColor Color) {
	if p.castle != CastlingNone {
		lost := GetCastlingRights(fromSq) | GetCastlingRights(toSq)
		if lost != CastlingNone {
			p.key ^= zobristBase.castlingRights[p.castle]
			p.castle.Remove(lost)
			p.key ^= zobristBase.castlingRights[p.castle]
		}
	}
	p.resetEpSquare()
	switch {
	case captured != PieceNone:
		p.liftPiece(toSq)
		p.rule50 = 0
	case mover.TypeOf() == Pawn:
		p.rule50 = 0
		if SquareDistance(fromSq, toSq) == 2 {
			p.epSquare = toSq.To(myColor.Flip().MoveDirection())
			p.key ^= zobristBase.enPassantFile[p.epSquare.FileOf()]
		}
	default:
		p.rule50++
	}
	p.relocatePiece(fromSq, toSq)
}

func (p *Position) applyCastlingMove(mover Piece, myColor Color, toSq, fromSq Square) {
	if assert.DEBUG {
		assert.Assert(mover == MakePiece(myColor, King), "Position DoMove: Move type castling but from piece not king")
	}
	switch toSq {
	case SqG1:
		if assert.DEBUG {
			assert.Assert(p.castle.Has(CastlingWhiteOO), "Position DoMove: White king side castling not available")
			assert.Assert(fromSq == SqE1, "Position DoMove: Castling from square not correct")
			assert.Assert(p.squares[SqE1] == WhiteKing, "Position DoMove: SqE1 has no king for castling")
			assert.Assert(p.squares[SqH1] == WhiteRook, "Position DoMove: SqH1 has no rook for castling")
			assert.Assert(p.OccupiedAll()&Intermediate(SqE1, SqH1) == 0, "Position DoMove: Castling king side blocked")
		}
		p.relocatePiece(fromSq, toSq)
		p.relocatePiece(SqH1, SqF1)
		p.key ^= zobristBase.castlingRights[p.castle]
		p.castle.Remove(CastlingWhite)
		p.key ^= zobristBase.castlingRights[p.castle]
	case SqC1:
		if assert.DEBUG {
			assert.Assert(p.castle.Has(CastlingWhiteOOO), "Position DoMove: White queen side castling not available")
			assert.Assert(fromSq == SqE1, "Position DoMove: Castling from square not correct")
			assert.Assert(p.squares[SqE1] == WhiteKing, "Position DoMove: SqE1 has no king for castling")
			assert.Assert(p.squares[SqA1] == WhiteRook, "Position DoMove: SqA1 has no rook for castling")
			assert.Assert(p.OccupiedAll()&Intermediate(SqE1, SqA1) == 0, "Position DoMove: Castling queen side blocked")
		}
		p.relocatePiece(fromSq, toSq)
		p.relocatePiece(SqA1, SqD1)
		p.key ^= zobristBase.castlingRights[p.castle]
		p.castle.Remove(CastlingWhite)
		p.key ^= zobristBase.castlingRights[p.castle]
	case SqG8:
		if assert.DEBUG {
			assert.Assert(p.castle.Has(CastlingBlackOO), "Position DoMove: Black king side castling not available")
			assert.Assert(fromSq == SqE8, "Position DoMove: Castling from square not correct")
			assert.Assert(p.squares[SqE8] == BlackKing, "Position DoMove: SqE8 has no king for castling")
			assert.Assert(p.squares[SqH8] == BlackRook, "Position DoMove: SqH8 has no rook for castling")
			assert.Assert(p.OccupiedAll()&Intermediate(SqE8, SqH8) == 0, "Position DoMove: Castling king side blocked")
		}
		p.relocatePiece(fromSq, toSq)
		p.relocatePiece(SqH8, SqF8)
		p.key ^= zobristBase.castlingRights[p.castle]
		p.castle.Remove(CastlingBlack)
		p.key ^= zobristBase.castlingRights[p.castle]
	case SqC8:
		if assert.DEBUG {
			assert.Assert(p.castle.Has(CastlingBlackOOO), "Position DoMove: Black queen side castling not available")
			assert.Assert(fromSq == SqE8, "Position DoMove: Castling from square not correct")
			assert.Assert(p.squares[SqE8] == BlackKing, "Position DoMove: SqE8 has no king for castling")
			assert.Assert(p.squares[SqA8] == BlackRook, "Position DoMove: SqA8 has no rook for castling")
			assert.Assert(p.OccupiedAll()&Intermediate(SqE8, SqA8) == 0, "Position DoMove: Castling queen side blocked")
		}
		p.relocatePiece(fromSq, toSq)
		p.relocatePiece(SqA8, SqD8)
		p.key ^= zobristBase.castlingRights[p.castle]
		p.castle.Remove(CastlingBlack)
		p.key ^= zobristBase.castlingRights[p.castle]
	default:
		panic("Invalid castle move!")
	}
	p.resetEpSquare()
	p.rule50++
}

func (p *Position) applyEnPassantMove(toSq Square, myColor Color, mover Piece, fromSq Square) {
	capturedSq := toSq.To(myColor.Flip().MoveDirection())
	if assert.DEBUG {
		assert.Assert(mover == MakePiece(myColor, Pawn), "Position DoMove: Move type en passant but from piece not pawn")
		assert.Assert(p.epSquare != SqNone, "Position DoMove: EnPassant move type without en passant")
		assert.Assert(p.squares[capturedSq] == MakePiece(myColor.Flip(), Pawn), "Position DoMove: Captured en passant piece invalid")
	}
	p.liftPiece(capturedSq)
	p.relocatePiece(fromSq, toSq)
	p.resetEpSquare()
	p.rule50 = 0
}

func (p *Position) applyPromotionMove(m Move, mover Piece, myColor Color, toSq Square, captured Piece, fromSq Square) {
	if assert.DEBUG {
		assert.Assert(mover == MakePiece(myColor, Pawn), "Position DoMove: Move type promotion but From piece not Pawn")
		assert.Assert(myColor.PromotionRankBb().Has(toSq), "Position DoMove: Promotion move but wrong Rank")
	}
	if captured != PieceNone {
		p.liftPiece(toSq)
	}
	if p.castle != CastlingNone {
		lost := GetCastlingRights(fromSq) | GetCastlingRights(toSq)
		if lost != CastlingNone {
			p.key ^= zobristBase.castlingRights[p.castle]
			p.castle.Remove(lost)
			p.key ^= zobristBase.castlingRights[p.castle]
		}
	}
	p.liftPiece(fromSq)
	p.placePiece(MakePiece(myColor, m.PromotionType()), toSq)
	p.resetEpSquare()
	p.rule50 = 0
}

func (p *Position) relocatePiece(fromSq, toSq Square) {
	p.placePiece(p.liftPiece(fromSq), toSq)
}

func (p *Position) placePiece(piece Piece, square Square) {
	color := piece.ColorOf()
	pieceType := piece.TypeOf()

	if assert.DEBUG {
		assert.Assert(p.squares[square] == PieceNone, "tried to put piece on an occupied square: %s", square.String())
		assert.Assert(!p.pieceBB[color][pieceType].Has(square), "tried to set bit on pieceBb which is already set: %s", square.String())
		assert.Assert(!p.occupiedBB[color].Has(square), "tried to set bit on occupiedBb which is already set: %s", square.String())
	}

	p.squares[square] = piece
	if pieceType == King {
		p.kingSq[color] = square
	}
	p.pieceBB[color][pieceType].PushSquare(square)
	p.occupiedBB[color].PushSquare(square)
	p.key ^= zobristBase.pieces[piece][square]
	if pieceType == Pawn {
		p.pawnKey ^= zobristBase.pieces[piece][square]
	}

	p.phase += pieceType.GamePhaseValue()
	if p.phase > GamePhaseMax {
		p.phase = GamePhaseMax
	}

	p.material[color] += pieceType.ValueOf()
	if pieceType > Pawn {
		p.nonPawnMaterial[color] += pieceType.ValueOf()
	}
	p.pstMid[color] += PosMidValue(piece, square)
	p.pstEnd[color] += PosEndValue(piece, square)
}

func (p *Position) liftPiece(square Square) Piece {
	removed := p.squares[square]
	color := removed.ColorOf()
	pieceType := removed.TypeOf()

	if assert.DEBUG {
		assert.Assert(p.squares[square] != PieceNone, "tried to remove piece from an empty square: %s", square.String())
		assert.Assert(p.pieceBB[color][pieceType].Has(square), "tried to clear bit from pieceBb which is not set: %s", square.String())
		assert.Assert(p.occupiedBB[color].Has(square), "tried to clear bit from occupiedBb which is not set: %s", square.String())
	}

	p.squares[square] = PieceNone
	p.pieceBB[color][pieceType].PopSquare(square)
	p.occupiedBB[color].PopSquare(square)
	p.key ^= zobristBase.pieces[removed][square]
	if pieceType == Pawn {
		p.pawnKey ^= zobristBase.pieces[removed][square]
	}

	p.phase -= pieceType.GamePhaseValue()
	if p.phase < 0 {
		p.phase = 0
	}

	p.material[color] -= pieceType.ValueOf()
	if pieceType > Pawn {
		p.nonPawnMaterial[color] -= pieceType.ValueOf()
	}
	p.pstMid[color] -= PosMidValue(removed, square)
	p.pstEnd[color] -= PosEndValue(removed, square)
	return removed
}

func (p *Position) resetEpSquare() {
	if p.epSquare != SqNone {
		p.key ^= zobristBase.enPassantFile[p.epSquare.FileOf()]
		p.epSquare = SqNone
	}
}

func (p *Position) toFen() string {
	var fen strings.Builder
	for r := Rank1; r <= Rank8; r++ {
		empties := 0
		for f := FileA; f <= FileH; f++ {
			pc := p.squares[SquareOf(f, Rank8-r)]
			if pc == PieceNone {
				empties++
				continue
			}
			if empties > 0 {
				fen.WriteString(strconv.Itoa(empties))
				empties = 0
			}
			fen.WriteString(pc.String())
		}
		if empties > 0 {
			fen.WriteString(strconv.Itoa(empties))
		}
		if r < Rank8 {
			fen.WriteString("/")
		}
	}
	fen.WriteString(" ")
	fen.WriteString(p.sideToMove.String())
	fen.WriteString(" ")
	fen.WriteString(p.castle.String())
	fen.WriteString(" ")
	fen.WriteString(p.epSquare.String())
	fen.WriteString(" ")
	fen.WriteString(strconv.Itoa(p.rule50))
	fen.WriteString(" ")
	fen.WriteString(strconv.Itoa((p.ply + 1) / 2))

	return fen.String()
}

var (
	// fenBoardPat matches the piece-placement field of a FEN string.
	fenBoardPat = regexp.MustCompile("[0-8pPnNbBrRqQkK/]+")
	// fenSidePat matches the side-to-move field.
	fenSidePat = regexp.MustCompile("^[w|b]$")
	// fenCastlePat matches the castling-rights field.
	fenCastlePat = regexp.MustCompile("^(K?Q?k?q?|-)$")
	// fenEpPat matches the en passant target square field.
	fenEpPat = regexp.MustCompile("^([a-h][1-8]|-)$")
)

// loadFen parses fen and populates the board from scratch. Everything
// beyond the piece-placement field is optional and defaults to the
// standard game's start-of-game values.
func (p *Position) loadFen(fen string) error {
	fen = strings.TrimSpace(fen)
	fields := strings.Split(fen, " ")

	if len(fields) == 0 {
		return errors.New("fen must not be empty")
	}
	if !fenBoardPat.MatchString(fields[0]) {
		return errors.New("fen position contains invalid characters")
	}

	// the board field runs a8..h8, a7..h7, ... with '/' marking the jump to
	// the next rank down.
	sq := SqA8
	for _, c := range fields[0] {
		switch {
		case c == '/':
			sq = sq.To(South).To(South)
		default:
			if n, err := strconv.Atoi(string(c)); err == nil {
				sq = Square(int(sq) + n*int(East))
				continue
			}
			piece := PieceFromChar(string(c))
			if piece == PieceNone {
				return fmt.Errorf("invalid piece character: %s", string(c))
			}
			p.placePiece(piece, sq)
			sq++
		}
	}
	if sq != SqA2 {
		return errors.New("not reached last square (h1) after reading fen")
	}

	p.ply = 1
	p.epSquare = SqNone

	if len(fields) >= 2 {
		if !fenSidePat.MatchString(fields[1]) {
			return errors.New("fen next player contains invalid characters")
		}
		if fields[1] == "b" {
			p.sideToMove = Black
			p.key ^= zobristBase.nextPlayer
			p.ply++
		} else {
			p.sideToMove = White
		}
	}

	if len(fields) >= 3 {
		if !fenCastlePat.MatchString(fields[2]) {
			return errors.New("fen castling rights contains invalid characters")
		}
		if fields[2] != "-" {
			for _, c := range fields[2] {
				switch c {
				case 'K':
					p.castle.Add(CastlingWhiteOO)
				case 'Q':
					p.castle.Add(CastlingWhiteOOO)
				case 'k':
					p.castle.Add(CastlingBlackOO)
				case 'q':
					p.castle.Add(CastlingBlackOOO)
				}
			}
		}
		p.key ^= zobristBase.castlingRights[p.castle]
	}

	if len(fields) >= 4 {
		if !fenEpPat.MatchString(fields[3]) {
			return errors.New("fen en passant square contains invalid characters")
		}
		if fields[3] != "-" {
			p.epSquare = MakeSquare(fields[3])
			p.key ^= zobristBase.enPassantFile[p.epSquare.FileOf()]
		}
	}

	if len(fields) >= 5 {
		n, err := strconv.Atoi(fields[4])
		if err != nil {
			return err
		}
		p.rule50 = n
	}

	if len(fields) >= 6 {
		moveNumber, err := strconv.Atoi(fields[5])
		if err != nil {
			return err
		}
		if moveNumber == 0 {
			moveNumber = 1
		}
		p.ply = 2*moveNumber - (1 - int(p.sideToMove))
	}

	return nil
}

// //////////////////////////////////////////////////////
// Getter and Setter functions
// //////////////////////////////////////////////////////

// PawnKey returns the hash over pawn placement only, used as the
// evaluator's pawn cache key.
func (p *Position) PawnKey() Key {
	return p.pawnKey
}

// ZobristKey returns the current hash key for this position.
func (p *Position) ZobristKey() Key {
	return p.key
}

// NextPlayer returns the side to move.
func (p *Position) NextPlayer() Color {
	return p.sideToMove
}

// GetPiece returns the piece on sq, or PieceNone if it's empty.
func (p *Position) GetPiece(sq Square) Piece {
	return p.squares[sq]
}

// PiecesBb returns the bitboard of pieces of type pt and color c.
func (p *Position) PiecesBb(c Color, pt PieceType) Bitboard {
	return p.pieceBB[c][pt]
}

// OccupiedAll returns a bitboard of every occupied square.
func (p *Position) OccupiedAll() Bitboard {
	return p.occupiedBB[White] | p.occupiedBB[Black]
}

// OccupiedBb returns a bitboard of the squares occupied by color c.
func (p *Position) OccupiedBb(c Color) Bitboard {
	return p.occupiedBB[c]
}

// GamePhase returns the current game phase value - 24 (GamePhaseMax) at the
// start of the game, trending toward 0 as officers come off the board.
func (p *Position) GamePhase() int {
	return p.phase
}

// GamePhaseFactor returns GamePhase scaled to the 0..1 range.
func (p *Position) GamePhaseFactor() float64 {
	return float64(p.phase) / GamePhaseMax
}

// GetEnPassantSquare returns the en passant target square, or SqNone.
func (p *Position) GetEnPassantSquare() Square {
	return p.epSquare
}

// CastlingRights returns the position's current castling rights.
func (p *Position) CastlingRights() CastlingRights {
	return p.castle
}

// KingSquare returns the square of color c's king.
func (p *Position) KingSquare(c Color) Square {
	return p.kingSq[c]
}

// HalfMoveClock returns the 50-move-rule ply counter.
func (p *Position) HalfMoveClock() int {
	return p.rule50
}

// Material returns the material value for color c.
func (p *Position) Material(c Color) Value {
	return p.material[c]
}

// MaterialNonPawn returns the non-pawn material value for color c.
func (p *Position) MaterialNonPawn(c Color) Value {
	return p.nonPawnMaterial[c]
}

// PsqMidValue returns color c's piece-square value for the opening/middlegame.
// Typically blended with PsqEndValue using GamePhaseFactor.
func (p *Position) PsqMidValue(c Color) Value {
	return p.pstMid[c]
}

// PsqEndValue returns color c's piece-square value for the endgame.
// Typically blended with PsqMidValue using GamePhaseFactor.
func (p *Position) PsqEndValue(c Color) Value {
	return p.pstEnd[c]
}

// LastMove returns the most recently played move, or MoveNone if the
// position has no history yet.
func (p *Position) LastMove() Move {
	if p.histTop <= 0 {
		return MoveNone
	}
	return p.past[p.histTop-1].move
}

// SecondLastMove returns the move played two plies ago, or MoveNone if
// the history is shorter than that.
func (p *Position) SecondLastMove() Move {
	if p.histTop <= 1 {
		return MoveNone
	}
	return p.past[p.histTop-2].move
}

// LastCapturedPiece returns the piece captured by the last move, or
// PieceNone if that move wasn't a capture or there is no history.
func (p *Position) LastCapturedPiece() Piece {
	if p.histTop <= 0 {
		return PieceNone
	}
	return p.past[p.histTop-1].captured
}

// WasCapturingMove reports whether the last move was a capture.
func (p *Position) WasCapturingMove() bool {
	return p.LastCapturedPiece() != PieceNone
}
