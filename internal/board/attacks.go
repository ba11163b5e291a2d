package board

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard

	betweenBB [64][64]Bitboard // strictly between two aligned squares
	lineBB    [64][64]Bitboard // the full edge-to-edge line through two aligned squares
)

func init() {
	initZobrist()
	initMagics()
	initLeaperAttacks()
	initLines()
}

func initLeaperAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&NotFileA | (bb<<15)&NotFileH |
			(bb>>17)&NotFileH | (bb>>15)&NotFileA |
			(bb<<10)&NotFileAB | (bb<<6)&NotFileGH |
			(bb>>10)&NotFileGH | (bb>>6)&NotFileAB

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.PawnAttacksBB(White)
		pawnAttacks[Black][sq] = bb.PawnAttacksBB(Black)
	}
}

func initLines() {
	for a := A1; a <= H8; a++ {
		for b := A1; b <= H8; b++ {
			if a == b {
				continue
			}
			for _, dirs := range [][4][2]int{rookDirections, bishopDirections} {
				if !slidingAttacks(a, Empty, dirs).Has(b) {
					continue
				}
				lineBB[a][b] = (slidingAttacks(a, Empty, dirs) & slidingAttacks(b, Empty, dirs)) |
					SquareBB(a) | SquareBB(b)
				betweenBB[a][b] = slidingAttacks(a, SquareBB(b), dirs) & slidingAttacks(b, SquareBB(a), dirs)
			}
		}
	}
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }
func KingAttacks(sq Square) Bitboard   { return kingAttacks[sq] }

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns diagonal attacks from sq under occupancy occ.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return m.attacks[m.index(occ)]
}

// RookAttacks returns orthogonal attacks from sq under occupancy occ.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	m := &rookMagics[sq]
	return m.attacks[m.index(occ)]
}

func QueenAttacks(sq Square, occ Bitboard) Bitboard {
	return BishopAttacks(sq, occ) | RookAttacks(sq, occ)
}

// Attacks returns the attacks of a non-pawn piece type from sq.
func Attacks(pt PieceType, sq Square, occ Bitboard) Bitboard {
	switch pt {
	case Knight:
		return KnightAttacks(sq)
	case Bishop:
		return BishopAttacks(sq, occ)
	case Rook:
		return RookAttacks(sq, occ)
	case Queen:
		return QueenAttacks(sq, occ)
	case King:
		return KingAttacks(sq)
	}
	panic("board: Attacks called with pawn or empty piece type")
}

// Between returns the squares strictly between a and b, or Empty when the
// two squares do not share a rank, file or diagonal.
func Between(a, b Square) Bitboard {
	return betweenBB[a][b]
}

// Line returns the whole line through a and b, or Empty when not aligned.
func Line(a, b Square) Bitboard {
	return lineBB[a][b]
}

// Aligned reports whether c lies on the line through a and b.
func Aligned(a, b, c Square) bool {
	return lineBB[a][b].Has(c)
}

// AttackersTo returns every piece of either color attacking sq, assuming
// occupancy occ. Passing a modified occ answers "what if" queries with
// pieces hypothetically removed.
func (p *Position) AttackersTo(sq Square, occ Bitboard) Bitboard {
	return (pawnAttacks[Black][sq] & p.pieces[White][Pawn]) |
		(pawnAttacks[White][sq] & p.pieces[Black][Pawn]) |
		(KnightAttacks(sq) & p.typeBB(Knight)) |
		(KingAttacks(sq) & p.typeBB(King)) |
		(BishopAttacks(sq, occ) & (p.typeBB(Bishop) | p.typeBB(Queen))) |
		(RookAttacks(sq, occ) & (p.typeBB(Rook) | p.typeBB(Queen)))
}

// IsAttacked reports whether color by attacks sq with the current occupancy.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	return p.AttackersTo(sq, p.occAll)&p.occ[by] != 0
}
