package engine

import "github.com/hailam/chesscore/internal/board"

// PawnEntry stores cached pawn structure evaluation.
type PawnEntry struct {
	Key     uint64
	MgScore int16 // Middlegame score
	EgScore int16 // Endgame score
}

// PawnTable is a hash table for caching pawn structure evaluations.
// It is owned by a single searcher and not safe for concurrent use.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a new pawn hash table with the given size in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	const entrySize = 16
	numEntries := max(sizeMB, 1) * 1024 * 1024 / entrySize
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}
	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// PawnKey hashes the pawn bitboards of both sides. Zero is reserved for
// empty table slots, so a pawnless position maps to a fixed non-zero key.
func PawnKey(pos *board.Position) uint64 {
	w := uint64(pos.Pieces(board.White, board.Pawn))
	b := uint64(pos.Pieces(board.Black, board.Pawn))
	return mix64(w^mix64(b^0x9E3779B97F4A7C15)) | 1
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return x
}

// Probe looks up a pawn structure evaluation in the hash table.
func (pt *PawnTable) Probe(key uint64) (mg, eg int, found bool) {
	entry := &pt.entries[key&pt.mask]
	if entry.Key == key {
		return int(entry.MgScore), int(entry.EgScore), true
	}
	return 0, 0, false
}

// Store saves a pawn structure evaluation in the hash table.
func (pt *PawnTable) Store(key uint64, mg, eg int) {
	entry := &pt.entries[key&pt.mask]
	entry.Key = key
	entry.MgScore = int16(mg)
	entry.EgScore = int16(eg)
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	clear(pt.entries)
}
