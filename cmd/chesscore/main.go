package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/diagram"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	fenFlag    = flag.String("fen", board.StartFEN, "position to analyse; ';' separates several for -perft")
	depth      = flag.Int("depth", 0, "search depth (0 = until another limit)")
	nodes      = flag.Uint64("nodes", 0, "node limit")
	movetime   = flag.Duration("movetime", 0, "time limit per search")
	threads    = flag.Int("threads", 0, "searcher threads (default $CHESSCORE_THREADS or 1)")
	perftDepth = flag.Int("perft", 0, "run perft to this depth on every -fen")
	dbDir      = flag.String("db", "", "cache analyses in this directory (default $CHESSCORE_DB)")
	dbMemory   = flag.Bool("db-memory", false, "cache analyses in memory only")
	pngPath    = flag.String("png", "", "write a diagram of the position to this file")
	pngSize    = flag.Int("png-size", 400, "diagram size in pixels")
	uciMode    = flag.Bool("uci", false, "run the UCI protocol on stdin/stdout")
	debug      = flag.Bool("debug", false, "enable debug logging")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("chesscore")
		os.Exit(1)
	}
}

func run() error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("cpu-profile")
	}

	if *perftDepth > 0 {
		return runPerft(os.Stdout, strings.Split(*fenFlag, ";"), *perftDepth)
	}

	pool := engine.Global()
	defer func() {
		if err := pool.KillAll(); err != nil {
			log.Error().Err(err).Msg("pool-shutdown")
		}
	}()
	if err := pool.SetThreadCount(threadCount()); err != nil {
		return err
	}

	if *uciMode {
		return uci.New(pool, os.Stdin, os.Stdout).Run()
	}

	pos, err := board.ParseFEN(*fenFlag)
	if err != nil {
		return err
	}
	if *pngPath != "" {
		if err := diagram.WritePNG(*pngPath, pos, *pngSize); err != nil {
			return err
		}
		log.Info().Str("path", *pngPath).Int("size", *pngSize).Msg("diagram-written")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	return analyse(os.Stdout, pool, store, pos, engine.Limits{
		Depth:    *depth,
		Nodes:    *nodes,
		MoveTime: *movetime,
	})
}

// threadCount resolves -threads with the CHESSCORE_THREADS fallback.
func threadCount() int {
	if *threads > 0 {
		return *threads
	}
	if s := os.Getenv("CHESSCORE_THREADS"); s != "" {
		n, err := strconv.Atoi(s)
		if err == nil {
			return n
		}
		log.Warn().Str("value", s).Msg("ignoring CHESSCORE_THREADS")
	}
	return 1
}

// openStore opens the analysis cache named by -db-memory, -db or
// CHESSCORE_DB. It returns nil when none is configured.
func openStore() (*storage.Storage, error) {
	if *dbMemory {
		return storage.OpenInMemory()
	}
	dir := *dbDir
	if dir == "" {
		dir = os.Getenv("CHESSCORE_DB")
	}
	if dir == "" {
		return nil, nil
	}
	return storage.Open(dir)
}

// sameBoard compares placement, side, castling and en passant of two
// FENs, ignoring the clocks.
func sameBoard(a, b string) bool {
	fa, fb := strings.Fields(a), strings.Fields(b)
	return len(fa) >= 4 && len(fb) >= 4 && slices.Equal(fa[:4], fb[:4])
}

// analyse searches pos, or reuses a cached analysis that is at least as
// deep as the requested depth.
func analyse(w io.Writer, pool *engine.ThreadPool, store *storage.Storage, pos *board.Position, limits engine.Limits) error {
	if pos.GenerateMoves().Len() == 0 {
		fmt.Fprintf(w, "no legal moves in %s\n", pos.ToFEN())
		return nil
	}
	if limits.Depth == 0 && limits.Nodes == 0 && limits.MoveTime == 0 {
		limits.Depth = 8
	}

	if store != nil && limits.Depth > 0 {
		a, ok, err := store.LoadAnalysis(pos.Key())
		if err != nil {
			return err
		}
		if ok && a.Depth >= limits.Depth && sameBoard(a.FEN, pos.ToFEN()) {
			log.Debug().Str("fen", a.FEN).Int("depth", a.Depth).Msg("cache-hit")
			fmt.Fprintf(w, "bestmove %s score %s depth %d nodes %d (cached %s)\n",
				a.BestMove, engine.ScoreToString(a.Score), a.Depth, a.Nodes, a.SearchedAt.Format(time.RFC3339))
			return nil
		}
	}

	start := time.Now()
	pool.Search(pos, limits)
	res := pool.Result()
	n := pool.Nodes()
	fmt.Fprintf(w, "bestmove %s score %s depth %d nodes %d time %v\n",
		res.Move, engine.ScoreToString(res.Score), res.Depth, n, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(w, "pv %s\n", strings.Join(pos.MovesToSAN(res.PV), " "))

	if store == nil {
		return nil
	}
	return store.SaveAnalysis(&storage.Analysis{
		Key:      pos.Key(),
		FEN:      pos.ToFEN(),
		BestMove: res.Move.String(),
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    n,
	})
}
