package board

import "fmt"

// GenType selects a category of legal moves.
type GenType uint8

const (
	All         GenType = iota
	Captures            // captures, en passant and every promotion
	Quiets              // everything not in Captures, castling included
	QuietChecks         // quiets that give check; invalid while in check
	Evasions            // all legal moves when in check, otherwise none
	NonEvasions         // all legal moves when not in check, otherwise none
)

func (g GenType) String() string {
	switch g {
	case All:
		return "all"
	case Captures:
		return "captures"
	case Quiets:
		return "quiets"
	case QuietChecks:
		return "quiet-checks"
	case Evasions:
		return "evasions"
	case NonEvasions:
		return "non-evasions"
	}
	return fmt.Sprintf("GenType(%d)", uint8(g))
}

// GenerateMoves returns every legal move in generation order.
func (p *Position) GenerateMoves() *MoveList {
	return p.GenerateMovesOfType(All)
}

// GenerateMovesOfType returns the legal moves of category t.
func (p *Position) GenerateMovesOfType(t GenType) *MoveList {
	ml := &MoveList{}
	switch t {
	case QuietChecks:
		if p.InCheck() {
			panic(fmt.Errorf("%w: quiet checks requested while in check", ErrIllegalMove))
		}
	case Evasions:
		if !p.InCheck() {
			return ml
		}
	case NonEvasions:
		if p.InCheck() {
			return ml
		}
	}

	p.generatePseudoLegal(ml)
	ml.filter(func(m Move) bool {
		if !p.LegalMove(m) {
			return false
		}
		switch t {
		case Captures:
			return p.IsTactical(m)
		case Quiets:
			return !p.IsTactical(m)
		case QuietChecks:
			return !p.IsTactical(m) && p.GivesCheck(m)
		}
		return true
	})
	return ml
}

// IsCapture reports whether m removes an enemy piece.
func (p *Position) IsCapture(m Move) bool {
	return m.IsEnPassant() || (!m.IsCastling() && p.board[m.To()] != NoPiece)
}

// IsTactical reports whether m is a capture or a promotion.
func (p *Position) IsTactical(m Move) bool {
	return m.IsPromotion() || p.IsCapture(m)
}

func (p *Position) generatePseudoLegal(ml *MoveList) {
	us := p.turn
	p.generatePawnMoves(ml, us)

	targets := ^p.occ[us]
	for pt := Knight; pt <= King; pt++ {
		pieces := p.pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			attacks := Attacks(pt, from, p.occAll) & targets
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}
	p.generateCastling(ml, us)
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color) {
	them := us.Other()
	pawns := p.pieces[us][Pawn]
	empty := ^p.occAll
	promoRank := RelativeRankMask(us, 7)

	push1 := pawns.Forward(us) & empty
	push2 := (push1 & RelativeRankMask(us, 2)).Forward(us) & empty

	for b := push1; b != 0; {
		to := b.PopLSB()
		addPawnMove(ml, to.Backward(us), to, promoRank)
	}
	for b := push2; b != 0; {
		to := b.PopLSB()
		ml.Add(NewMove(to.Backward(us).Backward(us), to))
	}
	for b := pawns; b != 0; {
		from := b.PopLSB()
		for att := PawnAttacks(from, us) & p.occ[them]; att != 0; {
			addPawnMove(ml, from, att.PopLSB(), promoRank)
		}
	}

	if ep := p.state.epSquare; ep != NoSquare {
		for b := PawnAttacks(ep, them) & pawns; b != 0; {
			ml.Add(NewEnPassant(b.PopLSB(), ep))
		}
	}
}

func addPawnMove(ml *MoveList, from, to Square, promoRank Bitboard) {
	if !promoRank.Has(to) {
		ml.Add(NewMove(from, to))
		return
	}
	for _, pt := range [...]PieceType{Queen, Rook, Bishop, Knight} {
		ml.Add(NewPromotion(from, to, pt))
	}
}

// generateCastling emits castling moves whose path is empty. Attacked
// squares on the king's path are rejected by LegalMove.
func (p *Position) generateCastling(ml *MoveList, us Color) {
	ksq := p.KingSquare(us)
	if ksq != E1.Relative(us) || p.InCheck() {
		return
	}
	for _, kingSide := range [...]bool{true, false} {
		if !p.state.castling.CanCastle(us, kingSide) {
			continue
		}
		to := C1.Relative(us)
		if kingSide {
			to = G1.Relative(us)
		}
		rfrom, _ := castlingRook(ksq, to)
		if p.board[rfrom] != NewPiece(Rook, us) || Between(ksq, rfrom)&p.occAll != 0 {
			continue
		}
		ml.Add(NewCastling(ksq, to))
	}
}

// HasLegalMoves reports whether the side to move can move at all.
func (p *Position) HasLegalMoves() bool {
	ml := &MoveList{}
	p.generatePseudoLegal(ml)
	for _, m := range ml.Slice() {
		if p.LegalMove(m) {
			return true
		}
	}
	return false
}

func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw reports a draw by the fifty-move rule, insufficient material or
// repetition. Repetition is found by walking the shared record chain, so
// it also sees plies played before the last copy boundary.
func (p *Position) IsDraw() bool {
	if p.state.rule50 >= 100 && !p.IsCheckmate() {
		return true
	}
	return p.IsInsufficientMaterial() || p.IsRepetition()
}

// IsRepetition reports whether the current position occurred before
// since the last irreversible move.
func (p *Position) IsRepetition() bool {
	st := p.state
	for i := 2; i <= st.rule50; i += 2 {
		if st.prev == nil || st.prev.prev == nil {
			return false
		}
		st = st.prev.prev
		if st.key == p.state.key {
			return true
		}
	}
	return false
}

// IsInsufficientMaterial reports whether neither side can mate:
// bare kings, or a single minor piece against a bare king.
func (p *Position) IsInsufficientMaterial() bool {
	if p.typeBB(Pawn)|p.typeBB(Rook)|p.typeBB(Queen) != 0 {
		return false
	}
	minors := (p.typeBB(Knight) | p.typeBB(Bishop)).PopCount()
	return minors <= 1
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := p.GenerateMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for _, m := range moves.Slice() {
		p.ApplyMove(m)
		nodes += p.Perft(depth - 1)
		p.UndoMove()
	}
	return nodes
}

// Divide returns the perft count below each root move, keyed by UCI string.
func (p *Position) Divide(depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth < 1 {
		return out
	}
	for _, m := range p.GenerateMoves().Slice() {
		p.ApplyMove(m)
		out[m.String()] = p.Perft(depth - 1)
		p.UndoMove()
	}
	return out
}
