package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

type perftResult struct {
	fen     string
	nodes   uint64
	elapsed time.Duration
}

// runPerft counts the move tree of every FEN concurrently and prints the
// results in input order. A bad FEN cancels the remaining work.
func runPerft(w io.Writer, fens []string, depth int) error {
	results := make([]perftResult, len(fens))
	g, ctx := errgroup.WithContext(context.Background())

	for i, fen := range fens {
		i, fen := i, fen
		fen = strings.TrimSpace(fen)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pos, err := board.ParseFEN(fen)
			if err != nil {
				return fmt.Errorf("perft %q: %w", fen, err)
			}
			start := time.Now()
			n := pos.Perft(depth)
			results[i] = perftResult{fen: fen, nodes: n, elapsed: time.Since(start)}
			log.Debug().Str("fen", fen).Int("depth", depth).Uint64("nodes", n).Msg("perft-done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var total uint64
	for _, r := range results {
		fmt.Fprintf(w, "%s\tperft(%d) = %d\t%v\n", r.fen, depth, r.nodes, r.elapsed.Round(time.Millisecond))
		total += r.nodes
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "total\t%d\n", total)
	}
	return nil
}
