package uci

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// safeBuffer is written by the driver and the primary searcher.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// run feeds script to a fresh driver and returns everything it printed.
func run(t *testing.T, threads int, script string) string {
	t.Helper()
	pool := engine.NewThreadPool(threads)
	defer pool.Close()
	out := &safeBuffer{}
	u := New(pool, strings.NewReader(script), out)

	done := make(chan error, 1)
	go func() { done <- u.Run() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("driver did not finish; output so far:\n%s", out.String())
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, 1, "uci\nisready\nquit\n")
	for _, want := range []string{"id name chesscore", "option name Threads", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestGoDepthPrintsBestMove(t *testing.T) {
	out := run(t, 2, "position startpos moves e2e4\ngo depth 3\nisready\n")
	if !strings.Contains(out, "info depth 3 ") {
		t.Errorf("no depth 3 info line:\n%s", out)
	}
	i := strings.LastIndex(out, "bestmove ")
	if i < 0 {
		t.Fatalf("no bestmove:\n%s", out)
	}
	fields := strings.Fields(out[i:])
	pos, _ := ParsePosition([]string{"startpos", "moves", "e2e4"})
	if _, err := board.ParseMove(fields[1], pos); err != nil {
		t.Errorf("bestmove %s is not legal: %v", fields[1], err)
	}
}

func TestGoInfiniteStop(t *testing.T) {
	out := run(t, 2, "go infinite\nstop\n")
	if strings.Count(out, "bestmove ") != 1 {
		t.Errorf("want exactly one bestmove:\n%s", out)
	}
}

func TestGoOnMatedPosition(t *testing.T) {
	out := run(t, 1, "position fen R6k/6pp/8/8/8/8/8/K7 b - - 0 1\ngo depth 2\n")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("want bestmove 0000:\n%s", out)
	}
}

func TestSetOption(t *testing.T) {
	pool := engine.NewThreadPool(1)
	defer pool.Close()
	u := New(pool, strings.NewReader(""), &safeBuffer{})

	u.handleSetOption(strings.Fields("name Threads value 3"))
	if pool.Size() != 3 {
		t.Errorf("Threads: pool has %d searchers", pool.Size())
	}
	u.handleSetOption(strings.Fields("name Hash value 2"))
	u.handleSetOption(strings.Fields("name Clear Hash"))
	u.handleSetOption(strings.Fields("name Algorithm value minimax"))

	pos := board.NewPosition()
	if m := pool.Search(pos, engine.Limits{Depth: 2}); !pos.GenerateMoves().Contains(m) {
		t.Errorf("illegal move %s after setoption", m)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		args string
		fen  string
	}{
		{"startpos", board.StartFEN},
		{"startpos moves e2e4 e7e5 g1f3", "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"},
		{"fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1 moves e1g1", "4k3/8/8/8/8/8/8/5RK1 b - - 1 1"},
	}
	for _, tc := range tests {
		pos, err := ParsePosition(strings.Fields(tc.args))
		if err != nil {
			t.Errorf("%s: %v", tc.args, err)
			continue
		}
		if got := pos.ToFEN(); got != tc.fen {
			t.Errorf("%s: got %s, want %s", tc.args, got, tc.fen)
		}
	}

	if _, err := ParsePosition(strings.Fields("startpos moves e2e5")); !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("illegal move: got %v", err)
	}
	if _, err := ParsePosition(strings.Fields("fen not a fen")); !errors.Is(err, board.ErrInvalidFEN) {
		t.Errorf("bad fen: got %v", err)
	}
	if _, err := ParsePosition(nil); err == nil {
		t.Error("empty position command accepted")
	}
}

func TestParseGo(t *testing.T) {
	l := ParseGo(strings.Fields("wtime 60000 btime 30000 winc 1000 binc 500 movestogo 20 depth 9 nodes 5000"))
	if l.Time[board.White] != time.Minute || l.Time[board.Black] != 30*time.Second {
		t.Errorf("clock = %v", l.Time)
	}
	if l.Inc[board.White] != time.Second || l.Inc[board.Black] != 500*time.Millisecond {
		t.Errorf("inc = %v", l.Inc)
	}
	if l.MovesToGo != 20 || l.Depth != 9 || l.Nodes != 5000 {
		t.Errorf("limits = %+v", l)
	}
	if !l.UseTimeManagement() {
		t.Error("clock limits should use time management")
	}

	l = ParseGo(strings.Fields("movetime 250 infinite depth"))
	if l.MoveTime != 250*time.Millisecond || !l.Infinite || l.Depth != 0 {
		t.Errorf("limits = %+v", l)
	}
	if l.Start.IsZero() {
		t.Error("start time not set")
	}
}

func TestPerft(t *testing.T) {
	out := run(t, 1, "perft 3\n")
	if !strings.Contains(out, "Nodes searched: 8902") {
		t.Errorf("perft 3 output:\n%s", out)
	}
	if !strings.Contains(out, "e2e4: 600") {
		t.Errorf("divide missing e2e4:\n%s", out)
	}
}

func TestDisplay(t *testing.T) {
	out := run(t, 1, "position startpos moves e2e4\nd\n")
	if n := strings.Count(out, "Fen: "); n != 1 {
		t.Errorf("Fen line printed %d times:\n%s", n, out)
	}
	if !strings.Contains(out, "Fen: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1") {
		t.Errorf("display lacks the FEN:\n%s", out)
	}
	if strings.Count(out, "Key: ") != 1 {
		t.Errorf("Key line not printed once:\n%s", out)
	}
}

func TestMinimaxInfiniteWaitsForStop(t *testing.T) {
	pool := engine.NewThreadPool(1)
	defer pool.Close()
	out := &safeBuffer{}
	in, feed := io.Pipe()
	u := New(pool, in, out)
	done := make(chan error, 1)
	go func() { done <- u.Run() }()

	io.WriteString(feed, "setoption name Algorithm value minimax\ngo infinite\n")
	time.Sleep(300 * time.Millisecond)
	if strings.Contains(out.String(), "bestmove") {
		t.Fatalf("bestmove before stop:\n%s", out.String())
	}
	io.WriteString(feed, "stop\nquit\n")
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("driver did not finish; output so far:\n%s", out.String())
	}
	feed.Close()
	if strings.Count(out.String(), "bestmove ") != 1 {
		t.Errorf("want exactly one bestmove:\n%s", out.String())
	}
}
