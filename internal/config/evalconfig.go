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
package config

type evalConfiguration struct {

	// evaluation values
	UseMaterialEval    bool
	UsePositionalEval  bool
	UseLazyEval        bool
	LazyEvalThreshold  int16

	Tempo int16

	// NNUE override
	UseNNUE         bool
	NNUEWeightsFile string

	UseAttacksInEval bool

	// mobility is scored per piece type with tapered per-square bonuses
	// (tables in the evaluator)
	UseMobility bool

	UseAdvancedPieceEval bool
	BishopPairBonus      int16
	MinorBehindPawnBonus int16
	BishopPawnMalus      int16
	BishopCenterAimBonus int16
	BishopBlockedMalus   int16
	RookOnQueenFileBonus int16
	RookOnOpenFileBonus  int16
	RookTrappedMalus     int16
	KingRingAttacksBonus int16
	OutpostMidBonus      int16
	OutpostEndBonus      int16

	UseKingEval               bool
	KingCastlePawnShieldBonus int16
	PawnStormMalus            int16
	KingOpenFileMalus         int16
	KingSemiOpenFileMalus     int16

	// THREATS
	UseThreatsEval    bool
	HangingPieceBonus int16
	SafeCheckBonus    int16

	// PAWNS
	UsePawnEval   bool
	UsePawnCache  bool
	PawnCacheSize int

	PawnIsolatedMidMalus  int16
	PawnIsolatedEndMalus  int16
	PawnDoubledMidMalus   int16
	PawnDoubledEndMalus   int16
	PawnPassedMidBonus    int16
	PawnPassedEndBonus    int16
	PawnBlockedMidMalus   int16
	PawnBlockedEndMalus   int16
	PawnPhalanxMidBonus   int16
	PawnPhalanxEndBonus   int16
	PawnSupportedMidBonus int16
	PawnSupportedEndBonus int16
	PawnBackwardMidMalus  int16
	PawnBackwardEndMalus  int16

	// per square of king distance difference to a passed pawn's stop square
	PawnKingProximityBonus int16
}

// sets defaults which might be overwritten by config file.
func init() {

	Settings.Eval.UseMaterialEval = true
	Settings.Eval.UsePositionalEval = true

	Settings.Eval.UseLazyEval = false
	Settings.Eval.LazyEvalThreshold = 700

	Settings.Eval.Tempo = 34

	Settings.Eval.UseNNUE = false
	Settings.Eval.NNUEWeightsFile = "./assets/nnue/corvid.nnue"

	Settings.Eval.UseAttacksInEval = true

	Settings.Eval.UseMobility = true

	Settings.Eval.UseAdvancedPieceEval = true
	Settings.Eval.KingCastlePawnShieldBonus = 15
	Settings.Eval.KingRingAttacksBonus = 10 // per piece and attacked king ring square
	Settings.Eval.MinorBehindPawnBonus = 15 // per piece and times game phase
	Settings.Eval.BishopPairBonus = 20      // once
	Settings.Eval.BishopPawnMalus = 5       // per pawn and times ~game phase
	Settings.Eval.BishopCenterAimBonus = 20 // per bishop and times game phase
	Settings.Eval.BishopBlockedMalus = 40   // per bishop
	Settings.Eval.RookOnQueenFileBonus = 6  // per rook
	Settings.Eval.RookOnOpenFileBonus = 25  // per rook and time game phase
	Settings.Eval.RookTrappedMalus = 40     // per rook and time game phase
	Settings.Eval.OutpostMidBonus = 25      // per knight/bishop on an outpost
	Settings.Eval.OutpostEndBonus = 10

	Settings.Eval.UseKingEval = true
	Settings.Eval.PawnStormMalus = 8        // per enemy pawn near the king, scaled by advancement
	Settings.Eval.KingOpenFileMalus = 25    // per fully open file in the king zone
	Settings.Eval.KingSemiOpenFileMalus = 12 // per half open file in the king zone

	Settings.Eval.UseThreatsEval = true
	Settings.Eval.HangingPieceBonus = 20 // per enemy piece with more attackers than defenders
	Settings.Eval.SafeCheckBonus = 15    // per piece type with an undefended checking square

	Settings.Eval.UsePawnEval = true
	Settings.Eval.UsePawnCache = true
	Settings.Eval.PawnCacheSize = 64

	Settings.Eval.PawnIsolatedMidMalus = -10
	Settings.Eval.PawnIsolatedEndMalus = -20
	Settings.Eval.PawnDoubledMidMalus = -10
	Settings.Eval.PawnDoubledEndMalus = -30
	Settings.Eval.PawnPassedMidBonus = 20
	Settings.Eval.PawnPassedEndBonus = 40
	Settings.Eval.PawnBlockedMidMalus = -2
	Settings.Eval.PawnBlockedEndMalus = -20
	Settings.Eval.PawnPhalanxMidBonus = 4
	Settings.Eval.PawnPhalanxEndBonus = 4
	Settings.Eval.PawnSupportedMidBonus = 10
	Settings.Eval.PawnSupportedEndBonus = 15
	Settings.Eval.PawnBackwardMidMalus = -8
	Settings.Eval.PawnBackwardEndMalus = -12
	Settings.Eval.PawnKingProximityBonus = 4
}

// set defaults for configurations here in case a configuration
// is not available from the config file.
func setupEval() {

}
