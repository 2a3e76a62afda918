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
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/mkern-dev/corvid/internal/config"
	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

//noinspection GoStructInitializationWithoutFieldNames
func TestEvaluatorValueFromScore(t *testing.T) {
	e := NewEvaluator()
	v := Value(0)

	e.gamePhaseFactor = 1.0
	e.score = Score{10, 0}
	v = e.value()
	assert.EqualValues(t, 10, v)
	e.gamePhaseFactor = 0.0
	v = e.value()
	assert.EqualValues(t, 0, v)
	e.gamePhaseFactor = 0.5
	v = e.value()
	assert.EqualValues(t, 5, v)

	e.gamePhaseFactor = 1.0
	e.score = Score{50, 50}
	v = e.value()
	assert.EqualValues(t, 50, v)
	e.gamePhaseFactor = 0.0
	v = e.value()
	assert.EqualValues(t, 50, v)
}

func TestEvaluateStartPosition(t *testing.T) {
	e := NewEvaluator()
	p := position.NewPosition()
	value := e.Evaluate(p)
	// the start position is symmetric - only the tempo bonus for the side
	// to move remains
	assert.EqualValues(t, Value(Settings.Eval.Tempo), value)
}

// eval must be identical for a position and its color mirror, each seen
// from its own side to move
func TestEvaluatorSymmetry(t *testing.T) {
	e := NewEvaluator()

	pairs := [][2]string{
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1"},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
			"r3k2r/pppbbppp/2n2q1P/1P2p3/3pn3/BN2PNP1/P1PPQPB1/R3K2R b KQkq - 0 1"},
		{"1r4k1/PBP2ppp/b5r1/2Q1pP2/4p3/2Q1Q1N1/1PPN3P/R3K2R w KQ - 0 1",
			"r3k2r/1ppn3p/2q1q1n1/4P3/2q1Pp2/B5R1/pbp2PPP/1R4K1 b kq - 0 1"},
		{"4k3/pppp4/8/8/8/8/4PPPP/4K3 w - - 0 1",
			"4k3/4pppp/8/8/8/8/PPPP4/4K3 b - - 0 1"},
	}

	for _, pair := range pairs {
		white, err := position.NewPositionFen(pair[0])
		assert.NoError(t, err)
		black, err := position.NewPositionFen(pair[1])
		assert.NoError(t, err)
		assert.Equal(t, e.Evaluate(white), e.Evaluate(black),
			"eval asymmetry between %s and %s", pair[0], pair[1])
	}
}

func TestEvaluateInsufficientMaterial(t *testing.T) {
	e := NewEvaluator()

	prev := Settings.Search.Contempt
	defer func() { Settings.Search.Contempt = prev }()

	Settings.Search.Contempt = 0
	p, _ := position.NewPositionFen("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.EqualValues(t, ValueDraw, e.Evaluate(p))

	// with contempt a draw counts against the side to move
	Settings.Search.Contempt = 20
	assert.EqualValues(t, ValueDraw-Value(20), e.Evaluate(p))

	// KB vs K is also a draw
	p, _ = position.NewPositionFen("4k3/8/8/8/8/8/4B3/4K3 w - - 0 1")
	Settings.Search.Contempt = 0
	assert.EqualValues(t, ValueDraw, e.Evaluate(p))
}

func TestEvaluateMaterialImbalance(t *testing.T) {
	e := NewEvaluator()

	// a queen up must evaluate clearly positive for the side to move
	p, _ := position.NewPositionFen("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	value := e.Evaluate(p)
	assert.True(t, value > 500, "queen-up position evaluated at %d", value)

	// and clearly negative seen from the other side
	p, _ = position.NewPositionFen("4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	value = e.Evaluate(p)
	assert.True(t, value < -500, "queen-down position evaluated at %d", value)
}

func TestEvalMobility(t *testing.T) {
	e := NewEvaluator()

	// a lone centralized knight reaches 8 squares
	p, _ := position.NewPositionFen("4k3/8/8/8/3N4/8/8/4K3 w - - 0 1")
	e.InitEval(p)
	score := *e.evalMobility(White)
	assert.EqualValues(t, 8*mobilityMidBonus[Knight], score.MidGameValue)
	assert.EqualValues(t, 8*mobilityEndBonus[Knight], score.EndGameValue)

	// a cornered knight reaches only 2
	p, _ = position.NewPositionFen("4k3/8/8/8/8/8/8/N3K3 w - - 0 1")
	e.InitEval(p)
	score = *e.evalMobility(White)
	assert.EqualValues(t, 2*mobilityMidBonus[Knight], score.MidGameValue)
}

func TestIsOutpost(t *testing.T) {
	e := NewEvaluator()

	// knight on d5, guarded by the c4 pawn, no black pawns anywhere
	p, _ := position.NewPositionFen("4k3/8/8/3N4/2P5/8/8/4K3 w - - 0 1")
	e.InitEval(p)
	assert.True(t, e.isOutpost(White, Black, SqD5))

	// black e7 pawn could advance and kick the knight - no outpost
	p, _ = position.NewPositionFen("4k3/4p3/8/3N4/2P5/8/8/4K3 w - - 0 1")
	e.InitEval(p)
	assert.False(t, e.isOutpost(White, Black, SqD5))

	// unguarded square is no outpost either
	p, _ = position.NewPositionFen("4k3/8/8/3N4/8/8/8/4K3 w - - 0 1")
	e.InitEval(p)
	assert.False(t, e.isOutpost(White, Black, SqD5))

	// own half never counts
	p, _ = position.NewPositionFen("4k3/8/8/8/8/3N4/2P5/4K3 w - - 0 1")
	e.InitEval(p)
	assert.False(t, e.isOutpost(White, Black, SqD3))
}

func TestEvalThreats(t *testing.T) {
	e := NewEvaluator()

	// white rook attacks the undefended black queen: queen threat plus
	// hanging bonus; the black queen's counter-threat against the
	// defended rook is worth less
	p, _ := position.NewPositionFen("4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	e.InitEval(p)
	e.attack.Compute(p)

	white := *e.evalThreats(White)
	black := *e.evalThreats(Black)
	assert.True(t, white.MidGameValue > 0)
	assert.True(t, white.MidGameValue > black.MidGameValue,
		"queen threat %d should outweigh rook threat %d", white.MidGameValue, black.MidGameValue)

	// no contact - no threats either way
	p = position.NewPosition()
	e.InitEval(p)
	e.attack.Compute(p)
	white = *e.evalThreats(White)
	black = *e.evalThreats(Black)
	assert.EqualValues(t, white.MidGameValue, black.MidGameValue)
}

func TestEvalKingSafety(t *testing.T) {
	Settings.Eval.UseAttacksInEval = true
	e := NewEvaluator()

	// sheltered king behind its pawns
	p, _ := position.NewPositionFen("6k1/8/8/8/8/8/6PP/6K1 w - - 0 1")
	e.InitEval(p)
	e.attack.Compute(p)
	sheltered := *e.evalKing(White)

	// same king stripped bare with a pawn storm rolling in
	p, _ = position.NewPositionFen("6k1/8/8/8/6pp/8/8/6K1 w - - 0 1")
	e.InitEval(p)
	e.attack.Compute(p)
	stormed := *e.evalKing(White)

	assert.True(t, sheltered.MidGameValue > stormed.MidGameValue,
		"sheltered king %d should score better than stormed king %d",
		sheltered.MidGameValue, stormed.MidGameValue)
}
