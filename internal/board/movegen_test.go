package board

import (
	"errors"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

func uciSet(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	sort.Strings(out)
	return out
}

func equalSorted(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dragontoothMoves(fen string) []string {
	b := dragontoothmg.ParseFen(fen)
	moves := b.GenerateLegalMoves()
	out := make([]string, len(moves))
	for i := range moves {
		out[i] = moves[i].String()
	}
	sort.Strings(out)
	return out
}

func notnilMoves(t *testing.T, fen string) []string {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("notnil/chess rejects %q: %v", fen, err)
	}
	game := chess.NewGame(opt)
	var out []string
	for _, m := range game.ValidMoves() {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

// TestGeneratorMatchesOracles walks random games and compares the legal
// move set at every ply with two independent generators.
func TestGeneratorMatchesOracles(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	for _, fen := range walkFENs {
		pos := MustParseFEN(fen)
		for ply := 0; ply < 40; ply++ {
			cur := pos.ToFEN()
			ours := uciSet(pos.GenerateMoves().Slice())

			if dt := dragontoothMoves(cur); !equalSorted(ours, dt) {
				t.Fatalf("%s\nours:         %v\ndragontoothmg: %v", cur, ours, dt)
			}
			if nn := notnilMoves(t, cur); !equalSorted(ours, nn) {
				t.Fatalf("%s\nours:   %v\nnotnil: %v", cur, ours, nn)
			}
			if len(ours) == 0 {
				break
			}
			moves := pos.GenerateMoves()
			pos.ApplyMove(moves.Get(rng.IntN(moves.Len())))
		}
	}
}

func TestGenTypesPartition(t *testing.T) {
	for _, fen := range walkFENs {
		pos := MustParseFEN(fen)
		all := pos.GenerateMovesOfType(All)
		caps := pos.GenerateMovesOfType(Captures)
		quiets := pos.GenerateMovesOfType(Quiets)

		if caps.Len()+quiets.Len() != all.Len() {
			t.Errorf("%s: %d captures + %d quiets != %d moves", fen, caps.Len(), quiets.Len(), all.Len())
		}
		for _, m := range caps.Slice() {
			if quiets.Contains(m) || !all.Contains(m) || !pos.IsTactical(m) {
				t.Errorf("%s: capture %s misfiled", fen, m)
			}
		}
		for _, m := range pos.GenerateMovesOfType(QuietChecks).Slice() {
			if !quiets.Contains(m) || !pos.GivesCheck(m) {
				t.Errorf("%s: quiet check %s misfiled", fen, m)
			}
		}
		if pos.GenerateMovesOfType(NonEvasions).Len() != all.Len() {
			t.Errorf("%s: non-evasions differ from all moves out of check", fen)
		}
		if pos.GenerateMovesOfType(Evasions).Len() != 0 {
			t.Errorf("%s: evasions generated out of check", fen)
		}
	}
}

func TestGenTypesInCheck(t *testing.T) {
	pos := MustParseFEN("4k3/8/8/8/8/5N2/4r3/R3K3 w - - 0 1")
	evasions := pos.GenerateMovesOfType(Evasions)
	if got := uciSet(evasions.Slice()); !equalSorted(got, uciSet(pos.GenerateMoves().Slice())) {
		t.Errorf("evasions %v differ from all legal moves", got)
	}
	if evasions.Len() == 0 {
		t.Fatal("no evasions")
	}
	if pos.GenerateMovesOfType(NonEvasions).Len() != 0 {
		t.Error("non-evasions generated in check")
	}
	if err := recoverErr(t, func() { pos.GenerateMovesOfType(QuietChecks) }); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("quiet checks in check: %v", err)
	}
}

func TestSAN(t *testing.T) {
	tests := []struct {
		fen  string
		uci  string
		want string
	}{
		{StartFEN, "g1f3", "Nf3"},
		{StartFEN, "e2e4", "e4"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", "O-O-O"},
		{"7k/P7/8/8/8/8/8/K7 w - - 0 1", "a7a8q", "a8=Q+"},
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", "Ra8#"},
		{"4k3/8/8/8/8/8/4K3/R6R w - - 0 1", "a1d1", "Rad1"},
		{"4k3/8/8/8/8/8/4K3/R6R w - - 0 1", "h1d1", "Rhd1"},
		{"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2", "e4d5", "exd5"},
	}
	for _, tc := range tests {
		pos := MustParseFEN(tc.fen)
		m := mustMove(t, pos, tc.uci)
		if got := pos.SAN(m); got != tc.want {
			t.Errorf("SAN(%s) = %q, want %q", tc.uci, got, tc.want)
		}
		back, err := pos.ParseSAN(tc.want)
		if err != nil || back != m {
			t.Errorf("ParseSAN(%q) = %v, %v; want %s", tc.want, back, err, tc.uci)
		}
	}

	if _, err := NewPosition().ParseSAN("Qh5"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("ParseSAN of an illegal move: %v", err)
	}

	line := NewPosition().MovesToSAN([]Move{NewMove(E2, E4), NewMove(E7, E5), NewMove(G1, F3)})
	if !equalSorted(line, []string{"e4", "e5", "Nf3"}) {
		t.Errorf("MovesToSAN = %v", line)
	}
}

func TestLeaperAttacks(t *testing.T) {
	tests := []struct {
		sq           Square
		king, knight int
	}{
		{A1, 3, 2},
		{H8, 3, 2},
		{E4, 8, 8},
		{A4, 5, 4},
	}
	for _, tc := range tests {
		if n := KingAttacks(tc.sq).PopCount(); n != tc.king {
			t.Errorf("KingAttacks(%s) has %d squares, want %d", tc.sq, n, tc.king)
		}
		if n := KnightAttacks(tc.sq).PopCount(); n != tc.knight {
			t.Errorf("KnightAttacks(%s) has %d squares, want %d", tc.sq, n, tc.knight)
		}
		if KingAttacks(tc.sq) != Attacks(King, tc.sq, Empty) {
			t.Errorf("Attacks(King, %s) disagrees with KingAttacks", tc.sq)
		}
	}
	if !KingAttacks(E4).Has(D5) || KingAttacks(E4).Has(E6) {
		t.Error("KingAttacks(E4) has the wrong squares")
	}
}
