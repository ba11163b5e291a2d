package board

// Zobrist keys. Piece keys are indexed by color and type; the castling
// table covers all 16 right combinations so a mask change is one XOR pair.
var (
	zobristPiece      [2][6][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	for cr := range zobristCastling {
		zobristCastling[cr] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// computeKey hashes the position from scratch.
func (p *Position) computeKey() uint64 {
	var key uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.pieces[c][pt]
			for bb != 0 {
				key ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.turn == Black {
		key ^= zobristSideToMove
	}
	key ^= zobristCastling[p.state.castling]
	if p.state.epSquare != NoSquare {
		key ^= zobristEnPassant[p.state.epSquare.File()]
	}
	return key
}
