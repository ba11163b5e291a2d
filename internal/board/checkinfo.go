package board

// setCheckInfo refreshes the blocker, pinner and check-square caches of
// st for the current placement and side to move.
func (p *Position) setCheckInfo(st *StateRecord) {
	for c := White; c <= Black; c++ {
		st.blockers[c], st.pinners[c.Other()] = p.sliderBlockers(p.occ[c.Other()], p.KingSquare(c))
	}

	them := p.turn.Other()
	ksq := p.KingSquare(them)
	st.checkSquares[Pawn] = PawnAttacks(ksq, them)
	st.checkSquares[Knight] = KnightAttacks(ksq)
	st.checkSquares[Bishop] = BishopAttacks(ksq, p.occAll)
	st.checkSquares[Rook] = RookAttacks(ksq, p.occAll)
	st.checkSquares[Queen] = st.checkSquares[Bishop] | st.checkSquares[Rook]
	st.checkSquares[King] = Empty
}

// sliderBlockers returns the pieces standing alone between ksq and one
// of the given sliders, and the sliders whose lone blocker has the same
// color as the king on ksq.
func (p *Position) sliderBlockers(sliders Bitboard, ksq Square) (blockers, pinners Bitboard) {
	snipers := sliders & ((RookAttacks(ksq, Empty) & (p.typeBB(Queen) | p.typeBB(Rook))) |
		(BishopAttacks(ksq, Empty) & (p.typeBB(Queen) | p.typeBB(Bishop))))
	occ := p.occAll ^ snipers
	own := p.occ[p.board[ksq].Color()]

	for snipers != 0 {
		s := snipers.PopLSB()
		b := Between(ksq, s) & occ
		if b != 0 && !b.MoreThanOne() {
			blockers |= b
			if b&own != 0 {
				pinners |= SquareBB(s)
			}
		}
	}
	return blockers, pinners
}

// GivesCheck reports whether the legal move m checks the opponent.
func (p *Position) GivesCheck(m Move) bool {
	us, them := p.turn, p.turn.Other()
	from, to := m.From(), m.To()
	ksq := p.KingSquare(them)
	pt := p.board[from].Type()

	if p.state.checkSquares[pt].Has(to) {
		return true
	}

	// Discovered check: a blocker of the enemy king leaves the line.
	if p.state.blockers[them].Has(from) && (!Aligned(from, to, ksq) || m.IsCastling()) {
		return true
	}

	switch m.Type() {
	case Promotion:
		return Attacks(m.Promotion(), to, p.occAll^SquareBB(from)).Has(ksq)

	case EnPassant:
		capSq := NewSquare(to.File(), from.Rank())
		occ := (p.occAll ^ SquareBB(from) ^ SquareBB(capSq)) | SquareBB(to)
		return RookAttacks(ksq, occ)&(p.pieces[us][Queen]|p.pieces[us][Rook]) != 0 ||
			BishopAttacks(ksq, occ)&(p.pieces[us][Queen]|p.pieces[us][Bishop]) != 0

	case Castling:
		rfrom, rto := castlingRook(from, to)
		occ := (p.occAll ^ SquareBB(from) ^ SquareBB(rfrom)) | SquareBB(rto) | SquareBB(to)
		return RookAttacks(rto, occ).Has(ksq)
	}
	return false
}

// LegalMove reports whether the pseudo-legal move m leaves the mover's
// king safe.
func (p *Position) LegalMove(m Move) bool {
	us, them := p.turn, p.turn.Other()
	from, to := m.From(), m.To()
	ksq := p.KingSquare(us)

	if m.IsEnPassant() {
		capSq := to.Backward(us)
		occ := (p.occAll ^ SquareBB(from) ^ SquareBB(capSq)) | SquareBB(to)
		return p.AttackersTo(ksq, occ)&p.occ[them]&^SquareBB(capSq) == 0
	}

	if from == ksq {
		if m.IsCastling() {
			if p.InCheck() {
				return false
			}
			step := Square(1)
			if to < from {
				step = ^Square(0) // wraps to -1
			}
			for s := from + step; ; s += step {
				if p.IsAttacked(s, them) {
					return false
				}
				if s == to {
					return true
				}
			}
		}
		return p.AttackersTo(to, p.occAll^SquareBB(from))&p.occ[them] == 0
	}

	if checkers := p.state.checkers; checkers != 0 {
		if checkers.MoreThanOne() {
			return false
		}
		if (Between(ksq, checkers.LSB())|checkers)&SquareBB(to) == 0 {
			return false
		}
	}

	return !p.Pinned(us).Has(from) || Aligned(from, to, ksq)
}
