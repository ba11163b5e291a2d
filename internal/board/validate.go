package board

import "fmt"

// Validate runs the full invariant sweep: occupancy partition, piece
// counts, one king per side, en passant rank, mailbox agreement, and the
// cached hash and checkers against values recomputed from scratch.
func (p *Position) Validate() error {
	if p.occ[White]&p.occ[Black] != 0 {
		return fmt.Errorf("%w: color occupancies overlap on %v", ErrCorrupt, (p.occ[White] & p.occ[Black]).Squares())
	}
	if p.occ[White]|p.occ[Black] != p.occAll {
		return fmt.Errorf("%w: color occupancies do not cover total occupancy", ErrCorrupt)
	}

	var union Bitboard
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.pieces[c][pt]
			if union&bb != 0 {
				return fmt.Errorf("%w: %s %s bitboard overlaps another piece", ErrCorrupt, c, pt)
			}
			if bb&^p.occ[c] != 0 {
				return fmt.Errorf("%w: %s %s outside %s occupancy", ErrCorrupt, c, pt, c)
			}
			if bb.PopCount() != int(p.counts[c][pt]) {
				return fmt.Errorf("%w: %s %s count %d, bitboard holds %d", ErrCorrupt, c, pt, p.counts[c][pt], bb.PopCount())
			}
			union |= bb
		}
		if n := p.pieces[c][King].PopCount(); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrCorrupt, c, n)
		}
	}
	if union != p.occAll {
		return fmt.Errorf("%w: piece bitboards do not cover total occupancy", ErrCorrupt)
	}
	if p.typeBB(Pawn)&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawn on a back rank", ErrCorrupt)
	}

	for sq := A1; sq <= H8; sq++ {
		pc := p.board[sq]
		if pc == NoPiece {
			if p.occAll.Has(sq) {
				return fmt.Errorf("%w: %s occupied but mailbox empty", ErrCorrupt, sq)
			}
			continue
		}
		if !p.pieces[pc.Color()][pc.Type()].Has(sq) {
			return fmt.Errorf("%w: mailbox has %s on %s, bitboards disagree", ErrCorrupt, pc, sq)
		}
	}

	st := p.state
	if ep := st.epSquare; ep != NoSquare && ep.RelativeRank(p.turn) != 5 {
		return fmt.Errorf("%w: en passant square %s with %s to move", ErrCorrupt, ep, p.turn)
	}
	if ep := st.epSquare; ep != NoSquare {
		pusher := p.turn.Other()
		if p.board[ep] != NoPiece || p.board[ep.Forward(p.turn)] != NoPiece ||
			p.board[ep.Backward(p.turn)] != NewPiece(Pawn, pusher) {
			return fmt.Errorf("%w: en passant square %s without a double-pushed %s pawn", ErrCorrupt, ep, pusher)
		}
	}
	if key := p.computeKey(); key != st.key {
		return fmt.Errorf("%w: key %016x, recomputed %016x", ErrCorrupt, st.key, key)
	}
	them := p.turn.Other()
	if checkers := p.AttackersTo(p.KingSquare(p.turn), p.occAll) & p.occ[them]; checkers != st.checkers {
		return fmt.Errorf("%w: checkers %v, recomputed %v", ErrCorrupt, st.checkers.Squares(), checkers.Squares())
	}
	if p.AttackersTo(p.KingSquare(them), p.occAll)&p.occ[p.turn] != 0 {
		return fmt.Errorf("%w: side not to move is in check", ErrCorrupt)
	}
	return nil
}

func (p *Position) mustBeValid(m Move) {
	if err := p.Validate(); err != nil {
		panic(fmt.Errorf("after %s: %w", m, err))
	}
}
