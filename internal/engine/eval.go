// Package engine runs parallel searches over board positions: a pool of
// searchers on dedicated OS threads, the search algorithms they run, and
// the evaluation and transposition table they share.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

// phaseWeight counts towards the middlegame phase, 24 at the start.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

const maxPhase = 24

const tempoBonus = 10

const (
	bishopPairMgBonus = 25
	bishopPairEgBonus = 50

	rookOpenFileMg     = 20
	rookOpenFileEg     = 25
	rookSemiOpenFileMg = 10
	rookSemiOpenFileEg = 15

	doubledPawnMgPenalty  = -15
	doubledPawnEgPenalty  = -20
	isolatedPawnMgPenalty = -20
	isolatedPawnEgPenalty = -25
)

// passedPawnBonus is indexed by relative rank.
var passedPawnBonus = [8]int{0, 10, 20, 40, 70, 120, 200, 0}

// Piece-square tables are written with rank 8 on the first row, so White
// looks up sq.Mirror() and Black looks up sq.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [...][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST,
}

// Evaluate returns the static evaluation from the side to move's view.
func Evaluate(pos *board.Position) int {
	return evaluate(pos, nil)
}

// EvaluateWithPawnTable is Evaluate with the pawn-structure term cached.
func EvaluateWithPawnTable(pos *board.Position, pt *PawnTable) int {
	return evaluate(pos, pt)
}

func evaluate(pos *board.Position, pt *PawnTable) int {
	var mg, eg, phase int

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces(c, pt)
			for bb != 0 {
				sq := bb.PopLSB()
				idx := sq
				if c == board.White {
					idx = sq.Mirror()
				}
				mg += sign * pieceValues[pt]
				eg += sign * pieceValues[pt]
				if pt == board.King {
					mg += sign * kingMidgamePST[idx]
					eg += sign * kingEndgamePST[idx]
				} else {
					mg += sign * psts[pt][idx]
					eg += sign * psts[pt][idx]
				}
				phase += phaseWeight[pt]
			}
		}

		if pos.Count(c, board.Bishop) >= 2 {
			mg += sign * bishopPairMgBonus
			eg += sign * bishopPairEgBonus
		}
		rmg, reg := rooksOnFiles(pos, c)
		mg += sign * rmg
		eg += sign * reg
	}

	pmg, peg := pawnStructureCached(pos, pt)
	mg += pmg
	eg += peg

	phase = min(phase, maxPhase)
	score := (mg*phase + eg*(maxPhase-phase)) / maxPhase
	if pos.SideToMove() == board.Black {
		score = -score
	}
	return score + tempoBonus
}

// EvaluateMaterial returns the material balance from the side to move's view.
func EvaluateMaterial(pos *board.Position) int {
	if pos.SideToMove() == board.Black {
		return -pos.Material()
	}
	return pos.Material()
}

func rooksOnFiles(pos *board.Position, c board.Color) (mg, eg int) {
	own := pos.Pieces(c, board.Pawn)
	enemy := pos.Pieces(c.Other(), board.Pawn)
	rooks := pos.Pieces(c, board.Rook)
	for rooks != 0 {
		file := board.FileMask[rooks.PopLSB().File()]
		switch {
		case own&file != 0:
		case enemy&file == 0:
			mg += rookOpenFileMg
			eg += rookOpenFileEg
		default:
			mg += rookSemiOpenFileMg
			eg += rookSemiOpenFileEg
		}
	}
	return mg, eg
}

func pawnStructureCached(pos *board.Position, pt *PawnTable) (mg, eg int) {
	if pt == nil {
		return pawnStructure(pos)
	}
	key := PawnKey(pos)
	if mg, eg, found := pt.Probe(key); found {
		return mg, eg
	}
	mg, eg = pawnStructure(pos)
	pt.Store(key, mg, eg)
	return mg, eg
}

// pawnStructure scores doubled, isolated and passed pawns from White's view.
// It depends on the pawn bitboards only, so it can be cached by PawnKey.
func pawnStructure(pos *board.Position) (mg, eg int) {
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		own := pos.Pieces(c, board.Pawn)
		enemy := pos.Pieces(c.Other(), board.Pawn)

		for pawns := own; pawns != 0; {
			sq := pawns.PopLSB()
			file := sq.File()

			if own&board.FileMask[file]&^board.SquareBB(sq) != 0 {
				// Counted once per pawn, so a doubled pair costs twice.
				mg += sign * doubledPawnMgPenalty / 2
				eg += sign * doubledPawnEgPenalty / 2
			}
			if own&adjacentFiles(file) == 0 {
				mg += sign * isolatedPawnMgPenalty
				eg += sign * isolatedPawnEgPenalty
			}
			if enemy&passedMask(sq, c) == 0 {
				bonus := passedPawnBonus[sq.RelativeRank(c)]
				mg += sign * bonus / 2
				eg += sign * bonus
			}
		}
	}
	return mg, eg
}

func adjacentFiles(file int) board.Bitboard {
	var bb board.Bitboard
	if file > 0 {
		bb |= board.FileMask[file-1]
	}
	if file < 7 {
		bb |= board.FileMask[file+1]
	}
	return bb
}

// passedMask is the span in front of a pawn on sq on its own and the
// adjacent files.
func passedMask(sq board.Square, c board.Color) board.Bitboard {
	files := board.FileMask[sq.File()] | adjacentFiles(sq.File())
	var ahead board.Bitboard
	if c == board.White {
		for r := sq.Rank() + 1; r < 8; r++ {
			ahead |= board.RankMask[r]
		}
	} else {
		for r := 0; r < sq.Rank(); r++ {
			ahead |= board.RankMask[r]
		}
	}
	return files & ahead
}
