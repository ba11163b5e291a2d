package board

import "math/bits"

// magic is the fancy-magic lookup data for one slider on one square.
type magic struct {
	mask    Bitboard
	magic   uint64
	shift   uint
	attacks []Bitboard
}

func (m *magic) index(occ Bitboard) uint {
	return uint((uint64(occ&m.mask) * m.magic) >> m.shift)
}

var (
	bishopMagics [64]magic
	rookMagics   [64]magic

	bishopTable [5248]Bitboard
	rookTable   [102400]Bitboard
)

var (
	rookDirections   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// initMagics searches magic multipliers at startup with a fixed seed, so
// the tables are identical on every run.
func initMagics() {
	rng := newPRNG(0x1D3A5C7E9B2F4861)
	findMagics(&rookMagics, rookTable[:], rookDirections, rng)
	findMagics(&bishopMagics, bishopTable[:], bishopDirections, rng)
}

func findMagics(magics *[64]magic, table []Bitboard, dirs [4][2]int, rng *prng) {
	var occupancy, reference [4096]Bitboard
	var epoch [4096]int
	attempt := 0
	offset := 0

	for sq := A1; sq <= H8; sq++ {
		m := &magics[sq]
		m.mask = relevantMask(sq, dirs)
		n := m.mask.PopCount()
		m.shift = uint(64 - n)
		size := 1 << n
		m.attacks = table[offset : offset+size]
		offset += size

		// Enumerate every subset of the mask (carry-rippler).
		count := 0
		for b := Empty; ; {
			occupancy[count] = b
			reference[count] = slidingAttacks(sq, b, dirs)
			count++
			b = (b - m.mask) & m.mask
			if b == 0 {
				break
			}
		}

		for i := 0; i < count; {
			for m.magic = 0; bits.OnesCount64((m.magic*uint64(m.mask))>>56) < 6; {
				m.magic = rng.sparse()
			}
			attempt++
			for i = 0; i < count; i++ {
				idx := m.index(occupancy[i])
				if epoch[idx] < attempt {
					epoch[idx] = attempt
					m.attacks[idx] = reference[i]
				} else if m.attacks[idx] != reference[i] {
					break
				}
			}
		}
	}
}

// relevantMask is the set of squares whose occupancy can change the
// slider's attacks. Board edges are excluded unless the slider sits on them.
func relevantMask(sq Square, dirs [4][2]int) Bitboard {
	edges := ((Rank1 | Rank8) &^ RankMask[sq.Rank()]) | ((FileA | FileH) &^ FileMask[sq.File()])
	return slidingAttacks(sq, Empty, dirs) &^ edges
}

// slidingAttacks walks each ray until it leaves the board or hits a piece.
func slidingAttacks(sq Square, occ Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			s := NewSquare(f, r)
			attacks |= SquareBB(s)
			if occ.Has(s) {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}
