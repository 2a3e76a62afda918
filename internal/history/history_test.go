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

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/mkern-dev/corvid/internal/types"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	assert.NotNil(t, h)
	assert.EqualValues(t, 0, h.HistoryCount[White][SqE2][SqE4])
	assert.Equal(t, MoveNone, h.CounterMoves[SqE2][SqE4])
	assert.Equal(t, MoveNone, h.FollowupMoves[SqE2][SqE4])
}

func TestHistoryTables(t *testing.T) {
	h := NewHistory()

	h.HistoryCount[White][SqE2][SqE4] = 1 << 10
	h.HistoryCount[Black][SqE7][SqE5] = 1 << 5
	assert.EqualValues(t, 1024, h.HistoryCount[White][SqE2][SqE4])
	assert.EqualValues(t, 32, h.HistoryCount[Black][SqE7][SqE5])
	// tables are per color
	assert.EqualValues(t, 0, h.HistoryCount[Black][SqE2][SqE4])

	counter := CreateMove(SqB8, SqC6, Normal, PtNone)
	h.CounterMoves[SqE2][SqE4] = counter
	assert.Equal(t, counter, h.CounterMoves[SqE2][SqE4])

	followup := CreateMove(SqG8, SqF6, Normal, PtNone)
	h.FollowupMoves[SqE7][SqE5] = followup
	assert.Equal(t, followup, h.FollowupMoves[SqE7][SqE5])
}
