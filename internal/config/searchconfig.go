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

package config

// searchConfiguration is a data structure to hold the configuration of an
// instance of a search.
type searchConfiguration struct {
	// Opening book
	UseBook    bool
	BookPath   string
	BookFile   string
	BookFormat string

	// Tablebase
	SyzygyPath string

	// Draw score offset (UCI Contempt option), in centipawns from the
	// side to move's perspective at the node where the draw is scored.
	Contempt int

	// Threads is accepted from UCI for compatibility with tournament
	// managers; the core search is single-threaded and only Threads=1
	// is honored. A Lazy-SMP implementation would read this to size its
	// worker pool without touching the core search loop.
	Threads int

	// UseChess960 enables Fischer Random castling rules (rook-targeted
	// castling notation, home-square relaxation). Accepted from UCI for
	// compatibility; the core move generator does not yet special-case it.
	UseChess960 bool

	// Ponder
	UsePonder bool

	// Quiescence search
	UseQuiescence bool
	UseQSStandpat bool
	UseSEE        bool

	// Move ordering
	UsePVS            bool
	UseKiller         bool
	UseCounter        bool
	UseFollowup       bool
	UseHistoryCounter bool
	UseCounterMoves   bool
	UseIID            bool
	IIDDepth          int
	IIDReduction      int

	// Iterative deepening root search strategy
	UseAspiration bool
	UseMTDf       bool

	// Transposition Table
	UseTT      bool
	TTSize     int
	UseTTMove  bool
	UseTTValue bool
	UseQSTT    bool
	UseEvalTT  bool

	// Prunings pre move gen
	UseMDP        bool
	UseRFP        bool
	UseRazoring   bool
	RazorMargin   int
	UseNullMove   bool
	NmpDepth      int
	NmpReduction  int
	UseProbCut    bool
	ProbCutDepth  int
	ProbCutMargin int

	// extensions of search depth
	UseExt             bool
	UseExtAddDepth     bool
	UseCheckExt        bool
	UseThreatExt       bool
	UseSingularExt     bool
	SingularExtDepth   int
	SingularExtMargin  int
	MaxExtensionBudget int

	// prunings after move generation but before making move
	UseFP            bool
	UseQFP           bool
	UseLmp           bool
	UseLmr           bool
	LmrDepth         int
	LmrMovesSearched int

	// quiescence search move selection
	UsePromNonQuiet bool
}

// sets defaults which might be overwritten by config file
func init() {
	Settings.Search.UseBook = true
	Settings.Search.BookPath = "./assets/books"
	Settings.Search.BookFile = "book.txt"
	Settings.Search.BookFormat = "Simple"

	Settings.Search.SyzygyPath = ""
	Settings.Search.Contempt = 0
	Settings.Search.Threads = 1
	Settings.Search.UseChess960 = false

	Settings.Search.UsePonder = true

	Settings.Search.UseQuiescence = true
	Settings.Search.UseQSStandpat = true
	Settings.Search.UseSEE = true

	Settings.Search.UsePVS = true
	Settings.Search.UseKiller = true
	Settings.Search.UseCounter = true
	Settings.Search.UseFollowup = true
	Settings.Search.UseHistoryCounter = true
	Settings.Search.UseCounterMoves = true
	Settings.Search.UseIID = true
	Settings.Search.IIDDepth = 6
	Settings.Search.IIDReduction = 2

	Settings.Search.UseAspiration = true
	Settings.Search.UseMTDf = false

	Settings.Search.UseTT = true
	Settings.Search.TTSize = 128
	Settings.Search.UseTTMove = true
	Settings.Search.UseTTValue = true
	Settings.Search.UseQSTT = true
	Settings.Search.UseEvalTT = false

	Settings.Search.UseMDP = true
	Settings.Search.UseRFP = false
	Settings.Search.UseRazoring = true
	Settings.Search.RazorMargin = 300
	Settings.Search.UseNullMove = true
	Settings.Search.NmpDepth = 3
	Settings.Search.NmpReduction = 2
	Settings.Search.UseProbCut = true
	Settings.Search.ProbCutDepth = 5
	Settings.Search.ProbCutMargin = 100

	Settings.Search.UseExt = true
	Settings.Search.UseExtAddDepth = true
	Settings.Search.UseCheckExt = true
	Settings.Search.UseThreatExt = false
	Settings.Search.UseSingularExt = true
	Settings.Search.SingularExtDepth = 8
	Settings.Search.SingularExtMargin = 2
	Settings.Search.MaxExtensionBudget = 16

	Settings.Search.UseFP = false
	Settings.Search.UseQFP = true
	Settings.Search.UseLmp = true
	Settings.Search.UseLmr = true
	Settings.Search.LmrDepth = 3
	Settings.Search.LmrMovesSearched = 3

	Settings.Search.UsePromNonQuiet = true

}

// set defaults for configurations here in case a configuration
// is not available from the config file
func setupSearch() {

}
