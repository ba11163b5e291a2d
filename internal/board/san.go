package board

import (
	"fmt"
	"strings"
)

// SAN returns the Standard Algebraic Notation of the legal move m.
func (p *Position) SAN(m Move) string {
	if !m.IsOK() {
		return "--"
	}
	from, to := m.From(), m.To()
	pt := p.board[from].Type()

	var sb strings.Builder
	switch {
	case m.IsCastling() && to > from:
		sb.WriteString("O-O")
	case m.IsCastling():
		sb.WriteString("O-O-O")
	default:
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(p.disambiguation(m, pt))
		}
		if p.IsCapture(m) {
			if pt == Pawn {
				sb.WriteByte(byte('a' + from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion()])
		}
	}

	if p.GivesCheck(m) {
		next := p.ShallowClone()
		next.ApplyMove(m)
		if next.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}

// disambiguation returns the file, rank or square that tells m apart from
// other legal moves of the same piece type to the same square.
func (p *Position) disambiguation(m Move, pt PieceType) string {
	from := m.From()
	sameFile, sameRank, ambiguous := false, false, false
	for _, other := range p.GenerateMoves().Slice() {
		of := other.From()
		if other.To() != m.To() || of == from || p.board[of].Type() != pt {
			continue
		}
		ambiguous = true
		sameFile = sameFile || of.File() == from.File()
		sameRank = sameRank || of.Rank() == from.Rank()
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// ParseSAN resolves a SAN string against the legal moves of p.
func (p *Position) ParseSAN(s string) (Move, error) {
	orig := s
	s = strings.TrimRight(strings.TrimSpace(s), "+#!?")
	if s == "0-0" {
		s = "O-O"
	} else if s == "0-0-0" {
		s = "O-O-O"
	}
	moves := p.GenerateMoves()

	if s == "O-O" || s == "O-O-O" {
		for _, m := range moves.Slice() {
			if m.IsCastling() && (m.To() > m.From()) == (s == "O-O") {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, orig)
	}

	promo := NoPieceType
	if i := strings.IndexByte(s, '='); i >= 0 && i+1 < len(s) {
		promo = PieceFromChar(s[i+1]).Type()
		s = s[:i]
	}
	capture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && strings.IndexByte("NBRQK", s[0]) >= 0 {
		pt = PieceFromChar(s[0]).Type()
		s = s[1:]
	}
	if len(s) < 2 {
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %v", ErrIllegalMove, orig, err)
	}
	file, rank := -1, -1
	for _, c := range s[:len(s)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		}
	}

	for _, m := range moves.Slice() {
		from := m.From()
		switch {
		case m.To() != dest || p.board[from].Type() != pt || m.IsCastling():
		case file >= 0 && from.File() != file:
		case rank >= 0 && from.Rank() != rank:
		case capture && !p.IsCapture(m):
		case promo != NoPieceType && (!m.IsPromotion() || m.Promotion() != promo):
		case promo == NoPieceType && m.IsPromotion():
		default:
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, orig)
}

// MovesToSAN renders a line of moves played from p. p is not modified.
func (p *Position) MovesToSAN(moves []Move) []string {
	out := make([]string, len(moves))
	line := p.ShallowClone()
	for i, m := range moves {
		out[i] = line.SAN(m)
		line.ApplyMove(m)
	}
	return out
}
