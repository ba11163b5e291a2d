package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	GoodCaptureBase = 1000000  // Base score for captures
	KillerScore1    = 900000   // First killer move
	KillerScore2    = 800000   // Second killer move
	CounterScore    = 700000   // Refutation of the previous move
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MoveOrderer keeps the per-searcher ordering heuristics. It is never
// shared between searchers.
type MoveOrderer struct {
	killers      [MaxPly][2]board.Move
	history      [2][64][64]int
	counterMoves [12][64]board.Move
}

// Clear resets killers and counter moves and ages history.
func (mo *MoveOrderer) Clear() {
	mo.killers = [MaxPly][2]board.Move{}
	mo.counterMoves = [12][64]board.Move{}
	for c := range mo.history {
		for i := range mo.history[c] {
			for j := range mo.history[c][i] {
				mo.history[c][i][j] /= 2
			}
		}
	}
}

// ScoreMoves assigns an ordering score to every move of the list.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	counter := mo.counterMove(pos)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		scores[i] = mo.scoreMove(pos, m, ply, ttMove)
		if m == counter && scores[i] < CounterScore {
			scores[i] = CounterScore
		}
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}
	from, to := m.From(), m.To()

	if pos.IsCapture(m) {
		attacker := pos.PieceAt(from).Type()
		victim := board.Pawn
		if !m.IsEnPassant() {
			victim = pos.PieceAt(to).Type()
		}
		score := GoodCaptureBase + mvvLva[victim][attacker]*1000
		if m.IsPromotion() {
			score += int(m.Promotion()) * 100
		}
		return score
	}

	if m.IsPromotion() {
		return GoodCaptureBase - 1000 + int(m.Promotion())*100
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}
	return mo.history[pos.SideToMove()][from][to]
}

// PickMove selects the best remaining move and moves it to index.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateQuiet records a quiet move that caused a beta cutoff.
func (mo *MoveOrderer) UpdateQuiet(pos *board.Position, m board.Move, ply, depth int) {
	if ply < MaxPly && mo.killers[ply][0] != m {
		mo.killers[ply][1] = mo.killers[ply][0]
		mo.killers[ply][0] = m
	}

	h := &mo.history[pos.SideToMove()]
	h[m.From()][m.To()] += depth * depth
	if h[m.From()][m.To()] > 400000 {
		for i := range h {
			for j := range h[i] {
				h[i][j] /= 2
			}
		}
	}

	if prev := pos.LastMove(); prev.IsOK() {
		if pc := pos.PieceAt(prev.To()); pc != board.NoPiece {
			mo.counterMoves[pc][prev.To()] = m
		}
	}
}

// counterMove returns the stored reply to the move that led to pos.
func (mo *MoveOrderer) counterMove(pos *board.Position) board.Move {
	prev := pos.LastMove()
	if !prev.IsOK() {
		return board.NoMove
	}
	pc := pos.PieceAt(prev.To())
	if pc == board.NoPiece {
		return board.NoMove
	}
	return mo.counterMoves[pc][prev.To()]
}
