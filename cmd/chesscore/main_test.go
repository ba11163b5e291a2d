package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

func TestRunPerft(t *testing.T) {
	var out bytes.Buffer
	fens := []string{
		board.StartFEN,
		" r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	if err := runPerft(&out, fens, 2); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	for i, want := range []string{"perft(2) = 400\t", "perft(2) = 2039\t", "perft(2) = 191\t", "total\t2630"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestRunPerftBadFEN(t *testing.T) {
	err := runPerft(&bytes.Buffer{}, []string{board.StartFEN, "nonsense"}, 1)
	if !errors.Is(err, board.ErrInvalidFEN) {
		t.Errorf("got %v, want ErrInvalidFEN", err)
	}
}

func TestAnalyseUsesCache(t *testing.T) {
	pool := engine.NewThreadPool(2)
	defer pool.Close()
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	pos := board.MustParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	var out bytes.Buffer
	if err := analyse(&out, pool, store, pos, engine.Limits{Depth: 3}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "bestmove a1a8 score Mate in 1") {
		t.Errorf("first analysis:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "pv Ra8#") {
		t.Errorf("pv not in SAN:\n%s", out.String())
	}

	a, ok, err := store.LoadAnalysis(pos.Key())
	if err != nil || !ok || a.BestMove != "a1a8" {
		t.Fatalf("stored analysis = %+v, %v, %v", a, ok, err)
	}

	out.Reset()
	if err := analyse(&out, pool, store, pos, engine.Limits{Depth: 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(cached") {
		t.Errorf("second analysis did not use the cache:\n%s", out.String())
	}
}

func TestAnalyseIgnoresForeignCacheEntry(t *testing.T) {
	pool := engine.NewThreadPool(1)
	defer pool.Close()
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	pos := board.MustParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	// Same key, different board: a colliding record must not be trusted.
	err = store.SaveAnalysis(&storage.Analysis{
		Key:      pos.Key(),
		FEN:      board.StartFEN,
		BestMove: "e2e4",
		Depth:    20,
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := analyse(&out, pool, store, pos, engine.Limits{Depth: 3}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "(cached") || !strings.HasPrefix(out.String(), "bestmove a1a8") {
		t.Errorf("foreign cache entry was used:\n%s", out.String())
	}
}

func TestSameBoard(t *testing.T) {
	a := "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	if !sameBoard(a, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 12 40") {
		t.Error("clocks should not matter")
	}
	if sameBoard(a, "6k1/5ppp/8/8/8/8/8/R5K1 b - - 0 1") {
		t.Error("side to move should matter")
	}
	if sameBoard(a, "") {
		t.Error("empty FEN matched")
	}
}
