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
	"strings"
	"sync"

	"github.com/mkern-dev/corvid/internal/position"
	. "github.com/mkern-dev/corvid/internal/types"
)

// SyzygyProber answers tablebase probes from a local directory of Syzygy
// WDL/DTZ files (the "SyzygyPath" UCI option). It only inspects which
// material signatures have files on disk; it does not decode the Syzygy
// binary format, so every Probe/ProbeRoot call reports a miss even when a
// matching file is present. That keeps the collaborator contract honest
// (§6: a probe failure is always treated as a miss, never fatal) while
// still giving MaxPieces/Available real answers driven by what is
// actually on disk, and leaving a natural seam for a real decoder.
type SyzygyProber struct {
	mu        sync.RWMutex
	path      string
	maxPieces int
	materials map[string]bool
}

var _ Prober = (*SyzygyProber)(nil)

// NewSyzygyProber scans path for Syzygy table files (.rtbw / .rtbz) and
// builds an index of which material signatures are covered. An empty or
// unreadable path yields a prober that is simply never Available.
func NewSyzygyProber(path string) *SyzygyProber {
	sp := &SyzygyProber{path: path, materials: map[string]bool{}}
	sp.refresh()
	return sp
}

// SetPath repoints the prober at a new directory and rescans it. Safe to
// call while the engine is idle (UCI setoption handler only).
func (sp *SyzygyProber) SetPath(path string) {
	sp.mu.Lock()
	sp.path = path
	sp.mu.Unlock()
	sp.refresh()
}

func (sp *SyzygyProber) refresh() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.materials = map[string]bool{}
	sp.maxPieces = 0

	if sp.path == "" {
		return
	}
	entries, err := os.ReadDir(sp.path)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".rtbw" && ext != ".rtbz" {
			continue
		}
		material := strings.TrimSuffix(name, ext)
		sp.materials[material] = true
		if n := len(material) - 1; n > sp.maxPieces { // "v" separator excluded
			sp.maxPieces = n
		}
	}
}

// Path returns the currently configured tablebase directory.
func (sp *SyzygyProber) Path() string {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.path
}

// Probe reports a miss whenever no file on disk covers the position's
// material signature, and also reports a miss when one does: decoding the
// Syzygy binary format is not implemented, so a matching file only proves
// the position is in range, not what its WDL value is.
func (sp *SyzygyProber) Probe(p *position.Position) (ProbeResult, bool) {
	if !sp.hasFileFor(p) {
		return ProbeResult{}, false
	}
	return ProbeResult{}, false
}

// ProbeRoot mirrors Probe: see its doc for why a file match still misses.
func (sp *SyzygyProber) ProbeRoot(p *position.Position) (RootResult, bool) {
	if !sp.hasFileFor(p) {
		return RootResult{}, false
	}
	return RootResult{}, false
}

// hasFileFor reports whether a table file exists for the position's exact
// material signature.
func (sp *SyzygyProber) hasFileFor(p *position.Position) bool {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.materials[materialKey(p)]
}

// MaxPieces returns the largest piece count covered by files found on
// disk, 0 if none.
func (sp *SyzygyProber) MaxPieces() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.maxPieces
}

// Available reports whether at least one tablebase file was found.
func (sp *SyzygyProber) Available() bool {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return len(sp.materials) > 0
}

// materialKey builds a Syzygy-style material signature ("KQvKR") for a
// position, white pieces first, strongest to weakest, kings implicit.
func materialKey(p *position.Position) string {
	var white, black strings.Builder
	for pt := Queen; pt >= Pawn; pt-- {
		n := p.PiecesBb(White, pt).PopCount()
		for i := 0; i < n; i++ {
			white.WriteByte(pieceChar(pt))
		}
	}
	for pt := Queen; pt >= Pawn; pt-- {
		n := p.PiecesBb(Black, pt).PopCount()
		for i := 0; i < n; i++ {
			black.WriteByte(pieceChar(pt))
		}
	}
	return "K" + white.String() + "vK" + black.String()
}

func pieceChar(pt PieceType) byte {
	switch pt {
	case Queen:
		return 'Q'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Knight:
		return 'N'
	case Pawn:
		return 'P'
	default:
		return '?'
	}
}
