package engine

import (
	"sort"

	"golang.org/x/exp/slices"

	"github.com/hailam/chesscore/internal/board"
)

// RootMove is one legal move at the root with its latest score.
type RootMove struct {
	Move      board.Move
	Score     int
	PrevScore int
	Depth     int
	PV        []board.Move
}

// RootMoves is the ordered root-move list of one searcher. The head is
// the current best move.
type RootMoves []RootMove

// NewRootMoves builds the root-move list for the legal moves of pos.
func NewRootMoves(pos *board.Position) RootMoves {
	moves := pos.GenerateMoves()
	rm := make(RootMoves, moves.Len())
	for i, m := range moves.Slice() {
		rm[i] = RootMove{Move: m, Score: -Infinity, PrevScore: -Infinity, PV: []board.Move{m}}
	}
	return rm
}

// Clone returns a deep copy, so searchers never share PV slices.
func (rm RootMoves) Clone() RootMoves {
	out := slices.Clone(rm)
	for i := range out {
		out[i].PV = slices.Clone(out[i].PV)
	}
	return out
}

// Find returns the index of m, or -1.
func (rm RootMoves) Find(m board.Move) int {
	return slices.IndexFunc(rm, func(r RootMove) bool { return r.Move == m })
}

// Best returns the head move, or NoMove for an empty list.
func (rm RootMoves) Best() board.Move {
	if len(rm) == 0 {
		return board.NoMove
	}
	return rm[0].Move
}

// Sort orders the list by score, best first. Ties keep their order so the
// previous best stays ahead of equal alternatives.
func (rm RootMoves) Sort() {
	sort.SliceStable(rm, func(i, j int) bool { return rm[i].Score > rm[j].Score })
}

// beginIteration saves the last scores and marks every move unsearched.
func (rm RootMoves) beginIteration() {
	for i := range rm {
		rm[i].PrevScore = rm[i].Score
		rm[i].Score = -Infinity
	}
}

// abortIteration restores the scores of the last completed iteration.
func (rm RootMoves) abortIteration() {
	for i := range rm {
		rm[i].Score = rm[i].PrevScore
	}
}
