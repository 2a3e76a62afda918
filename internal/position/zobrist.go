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
package position

import (
	. "github.com/mkern-dev/corvid/internal/types"
)

// zobristKeys holds one random 64-bit Key per (piece, square) pair plus the
// keys for castling rights, the en passant file and the side to move. A
// position's hash is the XOR of the keys for everything currently on the
// board - DoMove/UndoMove flip individual keys in and out rather than
// recomputing the whole key from scratch.
type zobristKeys struct {
	pieces         [PieceLength][SqLength]Key
	castlingRights [CastlingLength]Key
	enPassantFile  [8]Key
	nextPlayer     Key
}

var zobristBase zobristKeys

// zobristSeed is fixed so that Zobrist keys - and therefore position hashes
// produced by this binary - are stable across runs and hosts.
const zobristSeed = 1070372

// initZobrist fills zobristBase with random keys. Called once from the
// package init so it happens before any Position is created.
func initZobrist() {
	rnd := NewRandom(zobristSeed)
	for pc := PieceNone; pc < PieceLength; pc++ {
		for sq := SqA1; sq <= SqH8; sq++ {
			zobristBase.pieces[pc][sq] = Key(rnd.Rand64())
		}
	}
	for cr := CastlingRights(CastlingNone); cr < CastlingLength; cr++ {
		zobristBase.castlingRights[cr] = Key(rnd.Rand64())
	}
	for f := FileA; f <= FileH; f++ {
		zobristBase.enPassantFile[f] = Key(rnd.Rand64())
	}
	zobristBase.nextPlayer = Key(rnd.Rand64())
}
