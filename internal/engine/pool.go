package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/gate"
)

// MaxThreads caps the number of searchers in a pool.
const MaxThreads = 256

var (
	// ErrNoRootMoves is raised when a search is started on a position
	// without legal moves.
	ErrNoRootMoves = errors.New("engine: no legal root moves")
	// ErrPoolClosed is raised when a search is started on a pool without
	// a live primary searcher.
	ErrPoolClosed = errors.New("engine: thread pool has no live primary searcher")
)

// ThreadPool drives a fixed set of searchers through search rounds. The
// primary (index 0) wakes on the main gate and coordinates the helpers,
// which all wake on the rest gate.
//
// UCISearch, Search, SetThreadCount, SetHashSize, ClearHash and KillAll
// are serialized by a control mutex, so concurrent callers queue. Stop is
// lock-free and may be called at any time.
type ThreadPool struct {
	ctl sync.Mutex

	searchers []*Searcher
	main      *gate.Gate
	rest      *gate.Gate
	stop      atomic.Bool
	stopped   gate.Flag // mirrors stop for goroutines that block on it

	stdout atomic.Bool
	outMu  sync.Mutex
	out    io.Writer

	tt        *TranspositionTable
	algorithm Algorithm
	timer     TimeManager
}

var (
	globalPool *ThreadPool
	globalOnce sync.Once
)

// Global returns the process-wide pool, building it with one searcher on
// first use. The pool is built on a bootstrap goroutine that is joined
// before Global returns.
func Global() *ThreadPool {
	globalOnce.Do(func() {
		ready := make(chan *ThreadPool)
		go func() { ready <- NewThreadPool(1) }()
		globalPool = <-ready
	})
	return globalPool
}

// NewThreadPool returns a pool with n searchers running AlphaBeta.
// n is clamped to [1, MaxThreads].
func NewThreadPool(n int) *ThreadPool {
	tp := &ThreadPool{
		main:      gate.New(),
		rest:      gate.New(),
		out:       os.Stdout,
		tt:        NewTranspositionTable(DefaultHashMB),
		algorithm: AlphaBeta{},
	}
	tp.setStop(true)
	tp.attach(clampThreads(n))
	return tp
}

func clampThreads(n int) int {
	return min(max(n, 1), MaxThreads)
}

// attach spawns searchers until the pool has n of them.
func (tp *ThreadPool) attach(n int) {
	for len(tp.searchers) < n {
		id := len(tp.searchers)
		g := tp.rest
		if id == 0 {
			g = tp.main
		}
		s := newSearcher(id, tp, g)
		tp.searchers = append(tp.searchers, s)
		go s.run()
	}
}

// Size returns the number of searchers.
func (tp *ThreadPool) Size() int {
	return len(tp.searchers)
}

// SetThreadCount replaces every searcher with n fresh ones, n clamped to
// [1, MaxThreads]. It waits for a running search to finish first and
// returns the failures of the old searchers.
func (tp *ThreadPool) SetThreadCount(n int) error {
	tp.ctl.Lock()
	defer tp.ctl.Unlock()

	n = clampThreads(n)
	tp.WaitForFinish()
	err := tp.killAll()
	tp.attach(n)
	log.Debug().Int("threads", n).Msg("pool-resize")
	return err
}

// SetAlgorithm changes the search run by every searcher.
func (tp *ThreadPool) SetAlgorithm(a Algorithm) {
	tp.ctl.Lock()
	defer tp.ctl.Unlock()
	tp.WaitForFinish()
	tp.algorithm = a
}

// SetHashSize replaces the shared transposition table.
func (tp *ThreadPool) SetHashSize(mb int) {
	tp.ctl.Lock()
	defer tp.ctl.Unlock()
	tp.WaitForFinish()
	tp.tt = NewTranspositionTable(mb)
	log.Debug().Int("mb", mb).Uint64("entries", tp.tt.Size()).Msg("hash-resize")
}

// ClearHash empties the transposition table and every searcher's
// ordering and pawn caches.
func (tp *ThreadPool) ClearHash() {
	tp.ctl.Lock()
	defer tp.ctl.Unlock()
	tp.WaitForFinish()
	tp.tt.Clear()
	for _, s := range tp.searchers {
		s.orderer.Clear()
		s.pawns.Clear()
	}
}

// SetStdout toggles the info and bestmove lines printed by the primary.
func (tp *ThreadPool) SetStdout(on bool) {
	tp.stdout.Store(on)
}

// SetOutput redirects the primary's lines. The default is os.Stdout.
func (tp *ThreadPool) SetOutput(w io.Writer) {
	tp.outMu.Lock()
	tp.out = w
	tp.outMu.Unlock()
}

func (tp *ThreadPool) printf(format string, args ...any) {
	if !tp.stdout.Load() {
		return
	}
	tp.outMu.Lock()
	fmt.Fprintf(tp.out, format, args...)
	tp.outMu.Unlock()
}

// Stop asks every searcher to finish its round.
func (tp *ThreadPool) Stop() {
	tp.setStop(true)
}

func (tp *ThreadPool) setStop(v bool) {
	tp.stop.Store(v)
	tp.stopped.Set(v)
}

// Stopped reports whether the stop flag is set.
func (tp *ThreadPool) Stopped() bool {
	return tp.stop.Load()
}

// WaitForFinish blocks until no searcher is searching.
func (tp *ThreadPool) WaitForFinish() {
	for _, s := range tp.searchers {
		s.searching.Await(false)
	}
}

// KillAll stops the search, waits for it, and joins every searcher. Join
// failures are logged and returned joined; the remaining searchers are
// joined regardless. Calling it on an empty pool returns nil.
func (tp *ThreadPool) KillAll() error {
	tp.ctl.Lock()
	defer tp.ctl.Unlock()
	return tp.killAll()
}

// Close is KillAll.
func (tp *ThreadPool) Close() error {
	return tp.KillAll()
}

func (tp *ThreadPool) killAll() error {
	if len(tp.searchers) == 0 {
		return nil
	}
	tp.setStop(true)
	tp.WaitForFinish()

	for _, s := range tp.searchers {
		s.kill.Store(true)
	}
	tp.main.Open()
	tp.rest.Open()

	var errs []error
	for _, s := range tp.searchers {
		if err := <-s.done; err != nil {
			log.Error().Err(err).Int("searcher", s.id).Msg("searcher-failed")
			errs = append(errs, err)
		}
	}
	n := len(tp.searchers)
	tp.searchers = nil
	tp.main.Close()
	tp.rest.Close()
	log.Debug().Int("threads", n).Int("failed", len(errs)).Msg("pool-killed")
	return errors.Join(errs...)
}

// UCISearch starts a search of pos and returns once the primary has begun.
// The primary prints bestmove when the round ends. It panics with
// ErrNoRootMoves when pos has no legal moves.
func (tp *ThreadPool) UCISearch(pos *board.Position, limits Limits) {
	tp.ctl.Lock()
	defer tp.ctl.Unlock()
	tp.uciSearch(pos, limits)
}

func (tp *ThreadPool) uciSearch(pos *board.Position, limits Limits) {
	if len(tp.searchers) == 0 || tp.searchers[0].dead.Load() {
		panic(ErrPoolClosed)
	}
	if limits.Start.IsZero() {
		limits.Start = time.Now()
	}

	root := NewRootMoves(pos)
	if len(root) == 0 {
		panic(fmt.Errorf("%w: %s", ErrNoRootMoves, pos.ToFEN()))
	}

	tp.WaitForFinish()
	tp.timer.Init(limits, pos.SideToMove(), pos.HalfMoves())
	tp.setStop(false)
	tp.tt.NewSearch()

	for _, s := range tp.searchers {
		s.reset(pos, limits, root)
	}
	primary := tp.searchers[0]
	primary.helpers = tp.searchers[1:]

	log.Debug().
		Int("threads", len(tp.searchers)).
		Int("depth", limits.Depth).
		Uint64("nodes", limits.Nodes).
		Dur("movetime", limits.MoveTime).
		Str("fen", pos.ToFEN()).
		Msg("search-start")

	primary.searching.Set(true)
	tp.main.Open()
	primary.started.Await(true)
	tp.main.Close()
}

// Search runs a full search of pos and returns the primary's best move.
func (tp *ThreadPool) Search(pos *board.Position, limits Limits) board.Move {
	tp.ctl.Lock()
	defer tp.ctl.Unlock()
	tp.uciSearch(pos, limits)
	tp.WaitForFinish()
	return tp.searchers[0].rootMoves.Best()
}

// BestMove waits for the current round to finish and returns the head
// of the primary's root moves.
func (tp *ThreadPool) BestMove() board.Move {
	return tp.Result().Move
}

// Result waits for the current round to finish and returns the primary's
// best root move.
func (tp *ThreadPool) Result() RootMove {
	tp.WaitForFinish()
	if len(tp.searchers) == 0 || len(tp.searchers[0].rootMoves) == 0 {
		return RootMove{}
	}
	rm := tp.searchers[0].rootMoves[0]
	rm.PV = append([]board.Move(nil), rm.PV...)
	return rm
}

// Nodes returns the nodes visited by all searchers this round.
func (tp *ThreadPool) Nodes() uint64 {
	var n uint64
	for _, s := range tp.searchers {
		n += s.nodes.Load()
	}
	return n
}

// Searchers returns the pool's searchers in id order.
func (tp *ThreadPool) Searchers() []*Searcher {
	return tp.searchers
}
