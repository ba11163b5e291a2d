package board

import "fmt"

// ApplyMove plays m, which the caller guarantees is legal in p.
// A move that breaks an invariant panics with ErrCorrupt wrapped.
func (p *Position) ApplyMove(m Move) {
	if !m.IsOK() {
		panic(fmt.Errorf("%w: cannot apply %s", ErrIllegalMove, m))
	}
	us, them := p.turn, p.turn.Other()
	from, to := m.From(), m.To()
	pc := p.board[from]
	if pc.Color() != us {
		panic(fmt.Errorf("%w: %s has no %s piece on %s", ErrIllegalMove, m, us, from))
	}
	pt := pc.Type()
	givesCheck := p.GivesCheck(m)

	prev := p.state
	st := prev.partialCopy()
	st.rule50++
	st.ply++
	st.lastMove = m
	st.key ^= zobristSideToMove

	if m.IsCastling() {
		rfrom, rto := castlingRook(from, to)
		p.movePiece(from, to)
		p.movePiece(rfrom, rto)
		st.key ^= zobristPiece[us][King][from] ^ zobristPiece[us][King][to] ^
			zobristPiece[us][Rook][rfrom] ^ zobristPiece[us][Rook][rto]
	} else {
		capSq := to
		if m.IsEnPassant() {
			capSq = to.Backward(us)
		}
		if victim := p.board[capSq]; victim != NoPiece {
			st.captured = victim.Type()
			p.removePiece(capSq)
			st.key ^= zobristPiece[them][st.captured][capSq]
			st.rule50 = 0
		}
		p.movePiece(from, to)
		st.key ^= zobristPiece[us][pt][from] ^ zobristPiece[us][pt][to]
	}

	if prev.epSquare != NoSquare {
		st.key ^= zobristEnPassant[prev.epSquare.File()]
		st.epSquare = NoSquare
	}

	if mask := castlingMask[from] | castlingMask[to]; st.castling&mask != 0 {
		st.key ^= zobristCastling[st.castling]
		st.castling &^= mask
		st.key ^= zobristCastling[st.castling]
	}

	if pt == Pawn {
		if from^to == 16 {
			st.epSquare = from.Forward(us)
			st.key ^= zobristEnPassant[st.epSquare.File()]
		} else if m.IsPromotion() {
			promo := m.Promotion()
			p.removePiece(to)
			p.putPiece(NewPiece(promo, us), to)
			st.key ^= zobristPiece[us][Pawn][to] ^ zobristPiece[us][promo][to]
		}
		st.rule50 = 0
	}

	p.turn = them
	p.state = st
	p.halfMoves++
	p.depth++

	if givesCheck {
		st.checkers = p.AttackersTo(p.KingSquare(them), p.occAll) & p.occ[us]
	}
	p.setCheckInfo(st)
	p.mustBeValid(m)
}

// UndoMove takes back the last move played by this instance.
// Undoing past the copy boundary panics with ErrUndoBoundary.
func (p *Position) UndoMove() {
	st := p.state
	p.checkUndo()
	m := st.lastMove
	if !m.IsOK() {
		panic(fmt.Errorf("%w: last record holds %s, not a move", ErrUndoBoundary, m))
	}

	p.turn = p.turn.Other()
	us, them := p.turn, p.turn.Other()
	from, to := m.From(), m.To()

	if m.IsPromotion() {
		p.removePiece(to)
		p.putPiece(NewPiece(Pawn, us), to)
	}

	if m.IsCastling() {
		rfrom, rto := castlingRook(from, to)
		p.movePiece(to, from)
		p.movePiece(rto, rfrom)
	} else {
		p.movePiece(to, from)
		if st.captured != NoPieceType {
			capSq := to
			if m.IsEnPassant() {
				capSq = to.Backward(us)
			}
			p.putPiece(NewPiece(st.captured, them), capSq)
		}
	}

	p.state = st.prev
	p.halfMoves--
	p.depth--
	p.mustBeValid(m)
}

// ApplyNullMove passes the turn. It panics if the side to move is in check.
func (p *Position) ApplyNullMove() {
	if p.InCheck() {
		panic(fmt.Errorf("%w: %s", ErrInCheck, p.ToFEN()))
	}
	prev := p.state
	st := prev.partialCopy()
	st.rule50++
	st.ply++
	st.lastMove = NullMove
	st.key ^= zobristSideToMove
	if prev.epSquare != NoSquare {
		st.key ^= zobristEnPassant[prev.epSquare.File()]
		st.epSquare = NoSquare
	}

	p.turn = p.turn.Other()
	p.state = st
	p.halfMoves++
	p.depth++
	p.setCheckInfo(st)
	p.mustBeValid(NullMove)
}

// UndoNullMove reverses ApplyNullMove.
func (p *Position) UndoNullMove() {
	p.checkUndo()
	if p.state.lastMove != NullMove {
		panic(fmt.Errorf("%w: last record holds %s, not a null move", ErrUndoBoundary, p.state.lastMove))
	}
	p.turn = p.turn.Other()
	p.state = p.state.prev
	p.halfMoves--
	p.depth--
	p.mustBeValid(NullMove)
}

func (p *Position) checkUndo() {
	if p.depth == 0 || p.state.prev == nil {
		panic(fmt.Errorf("%w: depth %d, ply %d", ErrUndoBoundary, p.depth, p.state.ply))
	}
}
