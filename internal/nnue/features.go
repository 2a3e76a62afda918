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

// mirrorSquare flips a square vertically (rank 1 <-> rank 8) so a
// perspective can be evaluated as if it were always the side to move
// looking up the board from the first rank.
func mirrorSquare(sq Square) Square {
	return Square(uint8(sq) ^ 56)
}

// pieceKind maps a non-king piece type to a 0-4 slot. King pieces and
// PtNone have no feature representation and return -1.
func pieceKind(pt PieceType) int {
	switch pt {
	case Pawn:
		return 0
	case Knight:
		return 1
	case Bishop:
		return 2
	case Rook:
		return 3
	case Queen:
		return 4
	default:
		return -1
	}
}

// featureIndex computes the sparse feature index for a single piece as
// seen from the perspective of color `us`, whose king stands on
// `kingSquare`. Pieces belonging to `us` occupy kind slots 0-4, pieces
// belonging to the opponent occupy slots 5-9, so the same network
// weights can be reused regardless of which side is actually on move.
func featureIndex(us Color, kingSquare Square, pieceColor Color, pieceType PieceType, pieceSquare Square) int {
	kind := pieceKind(pieceType)
	if kind < 0 {
		return -1
	}
	if pieceColor != us {
		kind += 5
	}

	ks := kingSquare
	sq := pieceSquare
	if us == Black {
		ks = mirrorSquare(kingSquare)
		sq = mirrorSquare(pieceSquare)
	}

	return int(ks)*(NumPieceKinds*NumPieceSquares) + kind*NumPieceSquares + int(sq)
}

// ActiveFeatures returns the indices of every set input feature for the
// position, encoded from the perspective of `us` (normally the side to
// move) with `them` its opponent.
func ActiveFeatures(p *position.Position, us Color, them Color) []int {
	features := make([]int, 0, 32)
	kingSquare := p.KingSquare(us)

	for _, c := range [2]Color{us, them} {
		for pt := Pawn; pt <= Queen; pt++ {
			bb := p.PiecesBb(c, pt)
			for bb != 0 {
				sq := bb.PopLsb()
				idx := featureIndex(us, kingSquare, c, pt, sq)
				if idx >= 0 {
					features = append(features, idx)
				}
			}
		}
	}
	return features
}
