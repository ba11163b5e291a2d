package engine

import "github.com/hailam/chesscore/internal/board"

// Minimax is a plain fixed-depth negamax without pruning or tables. It is
// the reference the pruned searches are checked against. Every searcher
// of the pool runs the same full search.
type Minimax struct {
	// Depth is used when the limits carry no depth; 0 means 3.
	Depth int
}

// Search implements Algorithm.
func (mm Minimax) Search(s *Searcher) {
	depth := s.Limits().Depth
	if depth <= 0 {
		depth = mm.Depth
	}
	if depth <= 0 {
		depth = 3
	}
	depth = min(depth, MaxPly-1)

	pos := s.Position()
	rm := s.RootMoves()
	rm.beginIteration()
	for i := range rm {
		pos.ApplyMove(rm[i].Move)
		score, ok := minimax(s, pos, depth-1, 1)
		pos.UndoMove()
		if !ok {
			rm.abortIteration()
			return
		}
		rm[i].Score = -score
		rm[i].Depth = depth
		rm[i].PV = []board.Move{rm[i].Move}
	}
	rm.Sort()
	s.SetDepthCompleted(depth)
	if s.IsMain() {
		s.reportIteration(depth)
	}
}

// minimax returns the negamax score of pos, or ok=false once stopped.
func minimax(s *Searcher, pos *board.Position, depth, ply int) (score int, ok bool) {
	if s.Visit() {
		return 0, false
	}
	if pos.IsDraw() {
		return 0, true
	}
	moves := pos.GenerateMoves()
	if moves.Len() == 0 {
		if pos.InCheck() {
			return -MateScore + ply, true
		}
		return 0, true
	}
	if depth <= 0 {
		return Evaluate(pos), true
	}

	best := -Infinity
	for _, m := range moves.Slice() {
		pos.ApplyMove(m)
		v, ok := minimax(s, pos, depth-1, ply+1)
		pos.UndoMove()
		if !ok {
			return 0, false
		}
		best = max(best, -v)
	}
	return best, true
}
