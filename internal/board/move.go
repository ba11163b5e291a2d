package board

import "fmt"

// Move packs a move into 16 bits:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bits 12-13 promotion piece (0=knight .. 3=queen)
//	bits 14-15 move type
//
// Castling is encoded as the king's two-square step.
type Move uint16

// MoveType tags the special cases a position must handle on apply.
type MoveType uint16

const (
	Normal    MoveType = 0 << 14
	Promotion MoveType = 1 << 14
	EnPassant MoveType = 2 << 14
	Castling  MoveType = 3 << 14
)

const (
	// NoMove is the zero move, a1a1.
	NoMove Move = 0
	// NullMove marks a passed turn in the state chain, b1b1.
	NullMove Move = Move(B1) | Move(B1)<<6
)

// NewMove builds a normal move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a promotion to promo, which must be Knight..Queen.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | Move(Promotion)
}

// NewEnPassant builds an en passant capture; to is the empty target square.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(EnPassant)
}

// NewCastling builds a castling move from the king's origin and destination.
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(Castling)
}

func (m Move) From() Square {
	return Square(m & 0x3F)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

func (m Move) Type() MoveType {
	return MoveType(m) & (3 << 14)
}

// Promotion returns the promoted piece type. Meaningful only for promotions.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

func (m Move) IsPromotion() bool { return m.Type() == Promotion }
func (m Move) IsEnPassant() bool { return m.Type() == EnPassant }
func (m Move) IsCastling() bool  { return m.Type() == Castling }

// IsOK reports whether m is an ordinary move rather than NoMove or NullMove.
func (m Move) IsOK() bool {
	return m.From() != m.To()
}

// String returns the UCI form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if !m.IsOK() {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove resolves a UCI move string against the legal moves of pos.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}
	moves := pos.GenerateMoves()
	for _, m := range moves.Slice() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q in %s", ErrIllegalMove, s, pos.ToFEN())
}

// MoveList is a fixed-capacity move buffer. 256 bounds the legal moves of
// any reachable position.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends m.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int          { return ml.count }
func (ml *MoveList) Get(i int) Move    { return ml.moves[i] }
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }
func (ml *MoveList) Swap(i, j int)     { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }
func (ml *MoveList) Clear()            { ml.count = 0 }

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for _, x := range ml.moves[:ml.count] {
		if x == m {
			return true
		}
	}
	return false
}

// Slice returns the live moves. The slice aliases the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// filter keeps only the moves for which keep returns true.
func (ml *MoveList) filter(keep func(Move) bool) {
	n := 0
	for _, m := range ml.moves[:ml.count] {
		if keep(m) {
			ml.moves[n] = m
			n++
		}
	}
	ml.count = n
}
