package board

import "testing"

type perftCase struct {
	name  string
	fen   string
	nodes []uint64 // nodes[i] is perft(i+1)
}

var perftSuite = []perftCase{
	{"start", StartFEN, []uint64{20, 400, 8902, 197281}},
	// Kiwipete: castling, pins and en passant in one position.
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", []uint64{48, 2039, 97862}},
	{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -", []uint64{14, 191, 2812, 43238}},
	{"position4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467}},
	{"position5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []uint64{44, 1486, 62379}},
	// The en passant capture would expose the black king along the rank.
	{"ep-pin", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []uint64{6, 94}},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftSuite {
		t.Run(tc.name, func(t *testing.T) {
			pos := MustParseFEN(tc.fen)
			before := pos.ToFEN()
			for i, want := range tc.nodes {
				depth := i + 1
				if testing.Short() && want > 100000 {
					continue
				}
				if got := pos.Perft(depth); got != want {
					t.Errorf("perft(%d) = %d, want %d", depth, got, want)
				}
			}
			if after := pos.ToFEN(); after != before {
				t.Errorf("perft left the position changed: %q -> %q", before, after)
			}
		})
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	pos := MustParseFEN(perftSuite[1].fen)
	var sum uint64
	for _, n := range pos.Divide(2) {
		sum += n
	}
	if sum != 2039 {
		t.Errorf("divide(2) sums to %d, want 2039", sum)
	}
	if len(pos.Divide(0)) != 0 {
		t.Error("divide(0) should be empty")
	}
}
