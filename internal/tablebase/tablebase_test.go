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
package tablebase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

func TestNoopProber(t *testing.T) {
	p := NoopProber{}
	assert.False(t, p.Available())
	assert.Equal(t, 0, p.MaxPieces())

	pos := position.NewPosition()
	_, found := p.Probe(pos)
	assert.False(t, found)

	_, found = p.ProbeRoot(pos)
	assert.False(t, found)
}

func TestCountPieces(t *testing.T) {
	pos := position.NewPosition()
	assert.EqualValues(t, 32, CountPieces(pos))

	pos, err := position.NewPositionFen("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, CountPieces(pos))
}

func TestScoreFromWDL(t *testing.T) {
	assert.True(t, ScoreFromWDL(WDLWin, 0) > 0)
	assert.True(t, ScoreFromWDL(WDLCursedWin, 0) > 0)
	assert.EqualValues(t, ValueDraw, ScoreFromWDL(WDLDraw, 0))
	assert.True(t, ScoreFromWDL(WDLBlessedLoss, 0) < 0)
	assert.True(t, ScoreFromWDL(WDLLoss, 0) < 0)
	// closer wins score higher than more distant ones
	assert.True(t, ScoreFromWDL(WDLWin, 1) < ScoreFromWDL(WDLWin, 0))
}

func TestSyzygyProberEmptyPath(t *testing.T) {
	sp := NewSyzygyProber("")
	assert.False(t, sp.Available())
	assert.Equal(t, 0, sp.MaxPieces())
}

func TestSyzygyProberMissingDir(t *testing.T) {
	sp := NewSyzygyProber(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.False(t, sp.Available())
}

func TestSyzygyProberScansFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"KQvK.rtbw", "KQvK.rtbz", "KRvK.rtbw", "notes.txt"} {
		f, err := os.Create(filepath.Join(dir, name))
		assert.NoError(t, err)
		f.Close()
	}

	sp := NewSyzygyProber(dir)
	assert.True(t, sp.Available())
	assert.True(t, sp.MaxPieces() >= 3)

	// a Syzygy prober without a decoder always misses, even with a file
	// present for the position's material signature.
	pos := position.NewPosition()
	_, found := sp.Probe(pos)
	assert.False(t, found)

	sp.SetPath("")
	assert.False(t, sp.Available())
}

func TestMaterialKey(t *testing.T) {
	pos := position.NewPosition()
	assert.Equal(t, "KQRRBBNNPPPPPPPPvKQRRBBNNPPPPPPPP", materialKey(pos))
}
