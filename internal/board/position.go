package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a bit set of the four castling options.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, ch := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// CanCastle reports whether c still holds the right on the given wing.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	r := WhiteQueenSide
	if kingSide {
		r = WhiteKingSide
	}
	if c == Black {
		r <<= 2
	}
	return r
}

// castlingMask holds the rights lost when a move touches a square.
var castlingMask = func() (m [64]CastlingRights) {
	m[E1] = WhiteKingSide | WhiteQueenSide
	m[H1] = WhiteKingSide
	m[A1] = WhiteQueenSide
	m[E8] = BlackKingSide | BlackQueenSide
	m[H8] = BlackKingSide
	m[A8] = BlackQueenSide
	return m
}()

// castlingRook returns the rook's origin and destination for a king
// move from kingFrom to kingTo.
func castlingRook(kingFrom, kingTo Square) (from, to Square) {
	if kingTo > kingFrom {
		return kingFrom + 3, kingFrom + 1
	}
	return kingFrom - 4, kingFrom - 1
}

// StateRecord is the per-ply derived and undo data of a position.
// A record is never modified after the position publishes it, so a tail
// of the chain can be shared by any number of positions on any number
// of goroutines.
type StateRecord struct {
	castling CastlingRights
	rule50   int
	ply      int
	epSquare Square
	key      uint64
	captured PieceType

	checkers     Bitboard
	blockers     [2]Bitboard // pieces shielding each color's king from a slider
	pinners      [2]Bitboard // sliders pinning a piece of the opposite color
	checkSquares [6]Bitboard // where each piece type of the side to move would give check

	lastMove Move
	prev     *StateRecord
}

func (st *StateRecord) Key() uint64              { return st.key }
func (st *StateRecord) Castling() CastlingRights { return st.castling }
func (st *StateRecord) Rule50() int              { return st.rule50 }
func (st *StateRecord) Ply() int                 { return st.ply }
func (st *StateRecord) EnPassant() Square        { return st.epSquare }
func (st *StateRecord) Captured() PieceType      { return st.captured }
func (st *StateRecord) LastMove() Move           { return st.lastMove }
func (st *StateRecord) Prev() *StateRecord       { return st.prev }

// partialCopy copies the fields that carry over into the next ply.
// Everything recomputed on apply starts zero.
func (st *StateRecord) partialCopy() *StateRecord {
	return &StateRecord{
		castling: st.castling,
		rule50:   st.rule50,
		ply:      st.ply,
		epSquare: st.epSquare,
		key:      st.key,
		captured: NoPieceType,
		prev:     st,
	}
}

// Position is one chess position together with its history.
//
// The bitboards and mailbox are owned by value. The state record chain
// is shared: depth counts how many records this instance pushed since
// its last copy boundary, and only those may be undone.
type Position struct {
	turn      Color
	pieces    [2][6]Bitboard
	occ       [2]Bitboard
	occAll    Bitboard
	board     [64]Piece
	counts    [2][6]uint8
	halfMoves int
	depth     int
	state     *StateRecord
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	return MustParseFEN(StartFEN)
}

func emptyPosition() *Position {
	p := &Position{state: &StateRecord{epSquare: NoSquare, captured: NoPieceType}}
	for sq := range p.board {
		p.board[sq] = NoPiece
	}
	return p
}

// ShallowClone returns an independent copy that shares history but
// cannot undo any of it. Use it to hand a fresh root to a search.
func (p *Position) ShallowClone() *Position {
	c := *p
	c.depth = 0
	return &c
}

// ParallelClone returns an independent copy that keeps the undo depth,
// so it may walk back to the same frontier as p.
func (p *Position) ParallelClone() *Position {
	c := *p
	return &c
}

// DeepClone duplicates the entire record chain. Debug use only: it
// costs time and memory proportional to the game length.
func (p *Position) DeepClone() *Position {
	c := *p
	var head, tail *StateRecord
	for st := p.state; st != nil; st = st.prev {
		dup := *st
		dup.prev = nil
		if head == nil {
			head = &dup
		} else {
			tail.prev = &dup
		}
		tail = &dup
	}
	c.state = head
	return &c
}

func (p *Position) putPiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.pieces[c][pt] |= bb
	p.occ[c] |= bb
	p.occAll |= bb
	p.board[sq] = pc
	p.counts[c][pt]++
}

func (p *Position) removePiece(sq Square) {
	pc := p.board[sq]
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.pieces[c][pt] &^= bb
	p.occ[c] &^= bb
	p.occAll &^= bb
	p.board[sq] = NoPiece
	p.counts[c][pt]--
}

func (p *Position) movePiece(from, to Square) {
	pc := p.board[from]
	c, pt := pc.Color(), pc.Type()
	fromTo := SquareBB(from) | SquareBB(to)
	p.pieces[c][pt] ^= fromTo
	p.occ[c] ^= fromTo
	p.occAll ^= fromTo
	p.board[from] = NoPiece
	p.board[to] = pc
}

func (p *Position) typeBB(pt PieceType) Bitboard {
	return p.pieces[White][pt] | p.pieces[Black][pt]
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color { return p.turn }

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece { return p.board[sq] }

// Pieces returns the bitboard of c's pieces of type pt.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard { return p.pieces[c][pt] }

// Occupied returns the squares held by c.
func (p *Position) Occupied(c Color) Bitboard { return p.occ[c] }

// AllOccupied returns every occupied square.
func (p *Position) AllOccupied() Bitboard { return p.occAll }

// Count returns how many pieces of type pt color c has.
func (p *Position) Count(c Color, pt PieceType) int { return int(p.counts[c][pt]) }

// KingSquare returns c's king square.
func (p *Position) KingSquare(c Color) Square { return p.pieces[c][King].LSB() }

func (p *Position) State() *StateRecord      { return p.state }
func (p *Position) Key() uint64              { return p.state.key }
func (p *Position) Castling() CastlingRights { return p.state.castling }
func (p *Position) EnPassant() Square        { return p.state.epSquare }
func (p *Position) Rule50() int              { return p.state.rule50 }
func (p *Position) Ply() int                 { return p.state.ply }
func (p *Position) LastMove() Move           { return p.state.lastMove }
func (p *Position) Captured() PieceType      { return p.state.captured }
func (p *Position) Checkers() Bitboard       { return p.state.checkers }
func (p *Position) InCheck() bool            { return p.state.checkers != 0 }

// HalfMoves returns the plies played since the game start.
func (p *Position) HalfMoves() int { return p.halfMoves }

// Depth returns how many plies this instance may still undo.
func (p *Position) Depth() int { return p.depth }

// Blockers returns the pieces of either color shielding c's king.
func (p *Position) Blockers(c Color) Bitboard { return p.state.blockers[c] }

// Pinners returns c's sliders that pin an enemy piece to the enemy king.
func (p *Position) Pinners(c Color) Bitboard { return p.state.pinners[c] }

// Pinned returns c's pieces that may not leave the line to their king.
func (p *Position) Pinned(c Color) Bitboard { return p.state.blockers[c] & p.occ[c] }

// CheckSquares returns the squares from which a piece of type pt of the
// side to move would attack the enemy king.
func (p *Position) CheckSquares(pt PieceType) Bitboard { return p.state.checkSquares[pt] }

// Material returns the material balance from White's view.
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += PieceValue[pt] * (int(p.counts[White][pt]) - int(p.counts[Black][pt]))
	}
	return score
}

// NonPawnMaterial returns c's material excluding pawns and king.
func (p *Position) NonPawnMaterial(c Color) int {
	score := 0
	for pt := Knight; pt < King; pt++ {
		score += PieceValue[pt] * int(p.counts[c][pt])
	}
	return score
}

// String draws the board with rank 8 on top and appends the FEN.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString(" +---+---+---+---+---+---+---+---+\n")
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			fmt.Fprintf(&sb, " | %s", p.board[NewSquare(file, rank)])
		}
		fmt.Fprintf(&sb, " | %d\n +---+---+---+---+---+---+---+---+\n", rank+1)
	}
	sb.WriteString("   a   b   c   d   e   f   g   h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\nKey: %016X\n", p.ToFEN(), p.state.key)
	sb.WriteString("Checkers:")
	for _, sq := range p.state.checkers.Squares() {
		sb.WriteString(" " + sq.String())
	}
	sb.WriteByte('\n')
	return sb.String()
}
