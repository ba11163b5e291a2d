package engine

import (
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func TestEvaluateSymmetry(t *testing.T) {
	if got := Evaluate(board.NewPosition()); got != tempoBonus {
		t.Errorf("start position evaluates to %d, want tempo %d", got, tempoBonus)
	}

	// The same structure with colors swapped and mirrored scores the same
	// for the side to move.
	white := board.MustParseFEN("4k3/pp6/8/8/3N4/8/PPP5/4K2R w K - 0 1")
	black := board.MustParseFEN("4k2r/ppp5/8/3n4/8/8/PP6/4K3 b k - 0 1")
	if w, b := Evaluate(white), Evaluate(black); w != b {
		t.Errorf("mirrored positions evaluate to %d and %d", w, b)
	}

	up := board.MustParseFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if Evaluate(up) <= 0 {
		t.Error("a queen up should evaluate positive for the side to move")
	}
	down := board.MustParseFEN("4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	if Evaluate(down) >= 0 {
		t.Error("a queen down should evaluate negative for the side to move")
	}
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1)
	pos := board.NewPosition()
	key := PawnKey(pos)

	if _, _, found := pt.Probe(key); found {
		t.Error("expected cache miss on first probe")
	}
	pt.Store(key, -15, -20)
	mg, eg, found := pt.Probe(key)
	if !found || mg != -15 || eg != -20 {
		t.Errorf("Probe = %d, %d, %v; want -15, -20, true", mg, eg, found)
	}

	pos.ApplyMove(board.NewMove(board.E2, board.E4))
	if PawnKey(pos) == key {
		t.Error("pawn key should change when a pawn moves")
	}
	pos.UndoMove()
	if PawnKey(pos) != key {
		t.Error("pawn key should be restored by undo")
	}

	knight := board.MustParseFEN(board.StartFEN)
	knight.ApplyMove(board.NewMove(board.G1, board.F3))
	if PawnKey(knight) != key {
		t.Error("a knight move should not change the pawn key")
	}

	if got, want := EvaluateWithPawnTable(pos, pt), Evaluate(pos); got == want {
		// The stored entry is fake, so the cached evaluation must differ.
		t.Errorf("cached evaluation ignored the pawn table: %d", got)
	}
}

func TestTranspositionTable(t *testing.T) {
	tt := NewTranspositionTable(1)
	if tt.Size()&(tt.Size()-1) != 0 {
		t.Fatalf("size %d is not a power of two", tt.Size())
	}
	const key = 0xDEADBEEFCAFEF00D
	m := board.NewMove(board.E2, board.E4)

	if _, ok := tt.Probe(key); ok {
		t.Fatal("hit on an empty table")
	}
	tt.Store(key, 5, 42, TTExact, m)
	e, ok := tt.Probe(key)
	if !ok || e.BestMove != m || e.Score != 42 || e.Depth != 5 || e.Flag != TTExact {
		t.Fatalf("Probe = %+v, %v", e, ok)
	}

	// A shallower result of the same generation does not replace.
	tt.Store(key, 3, 7, TTLowerBound, board.NoMove)
	if e, _ := tt.Probe(key); e.Depth != 5 {
		t.Errorf("shallow store replaced a deeper entry: %+v", e)
	}
	// A new generation always replaces.
	tt.NewSearch()
	tt.Store(key, 1, 7, TTLowerBound, board.NoMove)
	if e, _ := tt.Probe(key); e.Depth != 1 {
		t.Errorf("old-generation entry not replaced: %+v", e)
	}

	tt.Clear()
	if _, ok := tt.Probe(key); ok {
		t.Error("hit after Clear")
	}

	mate := MateScore - 5
	if got := AdjustScoreFromTT(AdjustScoreToTT(mate, 3), 3); got != mate {
		t.Errorf("mate score round trip = %d, want %d", got, mate)
	}
	if got := AdjustScoreFromTT(AdjustScoreToTT(-mate, 4), 4); got != -mate {
		t.Errorf("mated score round trip = %d, want %d", got, -mate)
	}
}

func TestTimeManager(t *testing.T) {
	var tm TimeManager

	tm.Init(Limits{MoveTime: 250 * time.Millisecond}, board.White, 0)
	if tm.OptimumTime() != 250*time.Millisecond || tm.MaximumTime() != 250*time.Millisecond {
		t.Errorf("movetime: optimum %v, maximum %v", tm.OptimumTime(), tm.MaximumTime())
	}

	tm.Init(Limits{Depth: 5}, board.White, 0)
	if tm.OptimumTime() != 0 || tm.ShouldStop() || tm.PastOptimum() {
		t.Error("untimed search should never stop on time")
	}

	var clock Limits
	clock.Time[board.White] = 60 * time.Second
	clock.Time[board.Black] = time.Second
	tm.Init(clock, board.White, 0)
	// 60s over 50 moves = 1.2s, trimmed to 85% in the opening.
	if got, want := tm.OptimumTime(), 1020*time.Millisecond; got != want {
		t.Errorf("optimum = %v, want %v", got, want)
	}
	if got, want := tm.MaximumTime(), 5100*time.Millisecond; got != want {
		t.Errorf("maximum = %v, want %v", got, want)
	}

	tm.Init(clock, board.Black, 200)
	if tm.MaximumTime() > 950*time.Millisecond {
		t.Errorf("maximum %v exceeds 95%% of the remaining clock", tm.MaximumTime())
	}
	if !clock.UseTimeManagement() {
		t.Error("clock limits should use time management")
	}
}

func TestRootMovesSortKeepsTies(t *testing.T) {
	rm := NewRootMoves(board.NewPosition())
	if len(rm) != 20 {
		t.Fatalf("%d root moves, want 20", len(rm))
	}
	first, second := rm[0].Move, rm[1].Move
	for i := range rm {
		rm[i].Score = 0
	}
	rm[5].Score = 10
	rm.Sort()
	if rm[1].Move != first || rm[2].Move != second {
		t.Error("stable sort reordered equal scores")
	}
	if rm.Find(rm[0].Move) != 0 || rm.Find(board.NoMove) != -1 {
		t.Error("Find returned the wrong index")
	}

	c := rm.Clone()
	c[0].PV[0] = board.NoMove
	if rm[0].PV[0] == board.NoMove {
		t.Error("Clone shares PV storage")
	}
}

func TestAlgorithmsAgreeOnTactics(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"back rank mate", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8"},
		{"hanging queen", "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1", "d2d5"},
		{"black mates", "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
	}
	algorithms := []struct {
		name string
		algo Algorithm
	}{
		{"alphabeta", AlphaBeta{}},
		{"minimax", Minimax{}},
	}
	for _, a := range algorithms {
		pool := NewThreadPool(1)
		pool.SetAlgorithm(a.algo)
		for _, tc := range tests {
			t.Run(a.name+"/"+tc.name, func(t *testing.T) {
				pos := board.MustParseFEN(tc.fen)
				if got := pool.Search(pos, Limits{Depth: 3}); got.String() != tc.want {
					t.Errorf("best move %s, want %s", got, tc.want)
				}
			})
		}
		if err := pool.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAlphaBetaFindsMateScore(t *testing.T) {
	pool := NewThreadPool(2)
	defer pool.Close()

	pos := board.MustParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	pool.Search(pos, Limits{Depth: 4})
	res := pool.Result()
	if res.Score != MateScore-1 {
		t.Errorf("score %d, want mate in one (%d)", res.Score, MateScore-1)
	}
	if got := UCIScore(res.Score); got != "mate 1" {
		t.Errorf("UCIScore = %q, want %q", got, "mate 1")
	}
	if got := ScoreToString(res.Score); got != "Mate in 1" {
		t.Errorf("ScoreToString = %q", got)
	}
}

func TestTranspositionHitRate(t *testing.T) {
	tt := NewTranspositionTable(1)
	if r := tt.HitRate(); r != 0 {
		t.Errorf("empty table hit rate = %v", r)
	}
	key := board.NewPosition().Key()
	tt.Store(key, 4, 0, TTExact, board.NoMove)
	tt.Probe(key)
	tt.Probe(key + 1)
	if r := tt.HitRate(); r != 50 {
		t.Errorf("hit rate = %v, want 50", r)
	}
	tt.NewSearch()
	if r := tt.HitRate(); r != 0 {
		t.Errorf("hit rate after NewSearch = %v, want 0", r)
	}
}
