package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// AlphaBeta is iterative-deepening principal variation search with a
// quiescence search, null-move pruning and the pool's shared transposition
// table. Helpers search with a depth offset of id%3 so that lazy SMP
// spreads them over several depths.
type AlphaBeta struct{}

// Search implements Algorithm.
func (AlphaBeta) Search(s *Searcher) {
	ab := &abSearch{
		s:       s,
		pos:     s.Position(),
		tt:      s.TT(),
		orderer: s.orderer,
		pawns:   s.pawns,
	}
	ab.iterate()
}

type abSearch struct {
	s       *Searcher
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	pawns   *PawnTable
	pv      PVTable
	stop    bool
}

func (ab *abSearch) iterate() {
	s := ab.s
	limits := s.Limits()
	maxDepth := limits.MaxDepth()
	offset := 0
	if !s.IsMain() {
		offset = s.ID() % 3
	}

	for depth := 1; depth <= maxDepth; depth++ {
		d := min(depth+offset, maxDepth)
		if s.Stopped() {
			return
		}
		if !ab.searchRoot(d) {
			return
		}
		s.SetDepthCompleted(d)

		if !s.IsMain() {
			if d == maxDepth {
				return
			}
			continue
		}
		s.reportIteration(d)
		if s.pool.timer.PastOptimum() {
			return
		}
		if best := s.RootMoves()[0].Score; !limits.Infinite && (best > MateScore-MaxPly || best < -MateScore+MaxPly) {
			return
		}
	}
}

// searchRoot runs one iteration over the root moves. It reports false when
// the iteration was cut short; completed moves keep their new scores.
func (ab *abSearch) searchRoot(depth int) bool {
	rm := ab.s.RootMoves()
	rm.beginIteration()
	alpha, beta := -Infinity, Infinity
	completed := 0

	for i := range rm {
		m := rm[i].Move
		ab.pos.ApplyMove(m)
		var score int
		if i == 0 {
			score = -ab.negamax(depth-1, 1, -beta, -alpha)
		} else {
			score = -ab.negamax(depth-1, 1, -alpha-1, -alpha)
			if score > alpha && !ab.stop {
				score = -ab.negamax(depth-1, 1, -beta, -alpha)
			}
		}
		ab.pos.UndoMove()
		if ab.stop {
			break
		}
		completed++

		if score > alpha {
			alpha = score
			rm[i].Score = score
			rm[i].Depth = depth
			pv := make([]board.Move, 0, ab.pv.length[1])
			pv = append(pv, m)
			for j := 1; j < ab.pv.length[1]; j++ {
				pv = append(pv, ab.pv.moves[1][j])
			}
			rm[i].PV = pv
		}
	}

	if completed == 0 {
		rm.abortIteration()
		return false
	}
	rm.Sort()
	return !ab.stop
}

func (ab *abSearch) visit() bool {
	if !ab.stop && ab.s.Visit() {
		ab.stop = true
	}
	return ab.stop
}

func (ab *abSearch) evaluate() int {
	return EvaluateWithPawnTable(ab.pos, ab.pawns)
}

func (ab *abSearch) negamax(depth, ply, alpha, beta int) int {
	ab.pv.length[ply] = ply
	if ab.visit() {
		return 0
	}
	pos := ab.pos
	if ply >= MaxPly-1 {
		return ab.evaluate()
	}
	if pos.IsDraw() {
		return 0
	}

	inCheck := pos.InCheck()
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return ab.quiescence(ply, alpha, beta)
	}

	alphaOrig := alpha
	key := pos.Key()
	ttMove := board.NoMove
	if e, ok := ab.tt.Probe(key); ok {
		ttMove = e.BestMove
		if int(e.Depth) >= depth {
			score := AdjustScoreFromTT(int(e.Score), ply)
			switch e.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score >= beta {
					return score
				}
			case TTUpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	// Null move pruning: skip it in check, after another null move, and
	// with only pawns left where zugzwang is common.
	if !inCheck && depth >= 3 && beta < MateScore-MaxPly &&
		pos.LastMove() != board.NullMove && pos.NonPawnMaterial(pos.SideToMove()) > 0 {
		r := min(2+depth/4, depth-1)
		pos.ApplyNullMove()
		score := -ab.negamax(depth-1-r, ply+1, -beta, -beta+1)
		pos.UndoNullMove()
		if ab.stop {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	moves := pos.GenerateMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}
	scores := ab.orderer.ScoreMoves(pos, moves, ply, ttMove)

	best := -Infinity
	bestMove := board.NoMove
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)
		quiet := !pos.IsTactical(m)

		pos.ApplyMove(m)
		var score int
		if i == 0 {
			score = -ab.negamax(depth-1, ply+1, -beta, -alpha)
		} else {
			score = -ab.negamax(depth-1, ply+1, -alpha-1, -alpha)
			if score > alpha && score < beta && !ab.stop {
				score = -ab.negamax(depth-1, ply+1, -beta, -alpha)
			}
		}
		pos.UndoMove()
		if ab.stop {
			return 0
		}

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			ab.pv.moves[ply][ply] = m
			for j := ply + 1; j < ab.pv.length[ply+1]; j++ {
				ab.pv.moves[ply][j] = ab.pv.moves[ply+1][j]
			}
			ab.pv.length[ply] = ab.pv.length[ply+1]
		}
		if alpha >= beta {
			if quiet {
				ab.orderer.UpdateQuiet(pos, m, ply, depth)
			}
			break
		}
	}

	flag := TTExact
	switch {
	case best <= alphaOrig:
		flag = TTUpperBound
	case best >= beta:
		flag = TTLowerBound
	}
	ab.tt.Store(key, depth, AdjustScoreToTT(best, ply), flag, bestMove)
	return best
}

// quiescence resolves captures and promotions, or every evasion when in
// check, until the position is quiet.
func (ab *abSearch) quiescence(ply, alpha, beta int) int {
	ab.pv.length[ply] = ply
	if ab.visit() {
		return 0
	}
	pos := ab.pos
	if ply >= MaxPly-1 {
		return ab.evaluate()
	}

	inCheck := pos.InCheck()
	var moves *board.MoveList
	standPat := -Infinity
	if inCheck {
		moves = pos.GenerateMovesOfType(board.Evasions)
		if moves.Len() == 0 {
			return -MateScore + ply
		}
	} else {
		standPat = ab.evaluate()
		if standPat >= beta {
			return standPat
		}
		alpha = max(alpha, standPat)
		moves = pos.GenerateMovesOfType(board.Captures)
	}

	scores := ab.orderer.ScoreMoves(pos, moves, ply, board.NoMove)
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		// Delta pruning: even winning the piece cannot reach alpha.
		if !inCheck && !m.IsPromotion() {
			gain := PawnValue
			if !m.IsEnPassant() {
				gain = pieceValues[pos.PieceAt(m.To()).Type()]
			}
			if standPat+gain+200 < alpha {
				continue
			}
		}

		pos.ApplyMove(m)
		score := -ab.quiescence(ply+1, -beta, -alpha)
		pos.UndoMove()
		if ab.stop {
			return 0
		}
		if score >= beta {
			return score
		}
		alpha = max(alpha, score)
	}
	return alpha
}
