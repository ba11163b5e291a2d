package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a position from Forsyth-Edwards Notation. The two
// clock fields may be omitted and default to "0 1". A full-move number
// below 1 is read as 1.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	p := emptyPosition()
	st := p.state

	if err := parsePlacement(p, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		p.turn = White
	case "b":
		p.turn = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	if parts[2] != "-" {
		for _, ch := range parts[2] {
			i := strings.IndexRune("KQkq", ch)
			if i < 0 {
				return nil, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, parts[2])
			}
			st.castling |= 1 << i
		}
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant field: %v", ErrInvalidFEN, err)
		}
		st.epSquare = sq
	}

	fullMove := 1
	if len(parts) > 4 {
		n, err := strconv.Atoi(parts[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, parts[4])
		}
		st.rule50 = n
	}
	if len(parts) > 5 {
		n, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, parts[5])
		}
		fullMove = max(n, 1)
	}
	p.halfMoves = (fullMove-1)*2 + int(p.turn)

	for c := White; c <= Black; c++ {
		if n := p.pieces[c][King].PopCount(); n != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, n)
		}
	}

	st.key = p.computeKey()
	st.checkers = p.AttackersTo(p.KingSquare(p.turn), p.occAll) & p.occ[p.turn.Other()]
	p.setCheckInfo(st)

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return p, nil
}

// MustParseFEN is ParseFEN for trusted input; malformed FEN panics.
func MustParseFEN(fen string) *Position {
	p, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return p
}

func parsePlacement(p *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc := PieceFromChar(ch)
			if pc == NoPiece {
				return fmt.Errorf("%w: piece %q", ErrInvalidFEN, ch)
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			p.putPiece(pc, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}
	return nil
}

// ToFEN exports the position. ParseFEN(p.ToFEN()) reproduces p.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteByte("wb"[p.turn])
	sb.WriteByte(' ')
	sb.WriteString(p.state.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.state.epSquare.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.state.rule50))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfMoves/2 + 1))
	return sb.String()
}
