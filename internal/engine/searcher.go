package engine

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/gate"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// pollInterval is the number of nodes between two checks of the stop
// flag and the search limits. It must be a power of two.
const pollInterval = 1024

// Algorithm is the search a Searcher runs once per round. Implementations
// must be safe for concurrent use by every searcher of a pool, must poll
// Searcher.Visit or Searcher.Stopped, and must leave the best move at the
// head of the searcher's root moves when they return.
type Algorithm interface {
	Search(s *Searcher)
}

// Searcher is one worker of a ThreadPool. It owns an independent position
// copy and runs on its own locked OS thread. Between rounds it sleeps on
// its wake gate: the main gate for the primary, the shared rest gate for
// every helper.
type Searcher struct {
	id   int
	pool *ThreadPool
	gate *gate.Gate
	seen uint64 // last gate epoch this searcher ran under

	pos       *board.Position
	limits    Limits
	rootMoves RootMoves
	helpers   []*Searcher // primary only: helpers of the current round

	nodes          atomic.Uint64
	depthCompleted atomic.Int32
	kill           atomic.Bool
	dead           atomic.Bool

	searching gate.Flag // set by the pool before a wake, cleared by the searcher
	started   gate.Flag // cleared by the pool, set by the searcher once awake

	orderer *MoveOrderer
	pawns   *PawnTable

	done chan error
}

func newSearcher(id int, pool *ThreadPool, g *gate.Gate) *Searcher {
	return &Searcher{
		id:      id,
		pool:    pool,
		gate:    g,
		seen:    g.Epoch(),
		orderer: &MoveOrderer{},
		pawns:   NewPawnTable(1),
		done:    make(chan error, 1),
	}
}

// ID returns the searcher's index in its pool; 0 is the primary.
func (s *Searcher) ID() int { return s.id }

// IsMain reports whether s is the primary searcher.
func (s *Searcher) IsMain() bool { return s.id == 0 }

// Position returns the searcher's own position copy.
func (s *Searcher) Position() *board.Position { return s.pos }

// Limits returns the limits of the current round.
func (s *Searcher) Limits() Limits { return s.limits }

// RootMoves returns the searcher's root-move list.
func (s *Searcher) RootMoves() RootMoves { return s.rootMoves }

// Nodes returns the nodes visited this round.
func (s *Searcher) Nodes() uint64 { return s.nodes.Load() }

// DepthCompleted returns the deepest fully searched iteration.
func (s *Searcher) DepthCompleted() int { return int(s.depthCompleted.Load()) }

// SetDepthCompleted records a finished iteration.
func (s *Searcher) SetDepthCompleted(d int) { s.depthCompleted.Store(int32(d)) }

// TT returns the transposition table shared by the pool.
func (s *Searcher) TT() *TranspositionTable { return s.pool.tt }

// Visit counts one node and reports whether the search must stop. The
// limits are checked every pollInterval nodes.
func (s *Searcher) Visit() bool {
	if s.nodes.Add(1)&(pollInterval-1) != 0 {
		return false
	}
	return s.Stopped()
}

// Stopped checks the node and time limits and reports whether the round
// is over for this searcher. Only the primary enforces the clock.
func (s *Searcher) Stopped() bool {
	tp := s.pool
	if s.limits.Nodes > 0 && tp.Nodes() >= s.limits.Nodes {
		tp.setStop(true)
	}
	if s.IsMain() && tp.timer.ShouldStop() {
		tp.setStop(true)
	}
	return tp.stop.Load() || s.kill.Load()
}

// reset prepares the searcher for a round. Called by the pool while the
// searcher is idle.
func (s *Searcher) reset(pos *board.Position, limits Limits, root RootMoves) {
	s.nodes.Store(0)
	s.depthCompleted.Store(0)
	s.pos = pos.ShallowClone()
	s.limits = limits
	s.rootMoves = root.Clone()
	s.started.Set(false)
}

// run is the body of the searcher's goroutine. A panic is recovered into
// the error delivered on done.
func (s *Searcher) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var err error
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("searcher %d: %w", s.id, e)
			} else {
				err = fmt.Errorf("searcher %d: %v", s.id, r)
			}
			s.dead.Store(true)
			s.pool.setStop(true)
			s.started.Set(true)
			s.searching.Set(false)
		}
		s.done <- err
	}()
	s.idleLoop()
}

func (s *Searcher) idleLoop() {
	for {
		s.seen = s.gate.WaitNext(s.seen)
		if s.kill.Load() {
			return
		}
		s.started.Set(true)
		if s.IsMain() {
			s.mainSearch()
		} else {
			s.pool.algorithm.Search(s)
		}
		s.searching.Set(false)
	}
}

// mainSearch runs the primary's round: wake the helpers, search, stop the
// helpers and report.
func (s *Searcher) mainSearch() {
	tp := s.pool
	for _, h := range s.helpers {
		if !h.dead.Load() {
			h.searching.Set(true)
		}
	}
	tp.rest.Open()

	tp.algorithm.Search(s)

	// An infinite round reports only after stop, even when the search
	// ran out of depth first.
	if s.limits.Infinite {
		tp.stopped.Await(true)
	}
	tp.setStop(true)
	for _, h := range s.helpers {
		h.searching.Await(false)
	}
	tp.rest.Close()

	best := s.rootMoves.Best()
	log.Debug().
		Str("best", best.String()).
		Int("depth", s.DepthCompleted()).
		Uint64("nodes", tp.Nodes()).
		Int("hashfull", tp.tt.HashFull()).
		Float64("tt-hit-rate", tp.tt.HitRate()).
		Msg("search-done")
	tp.printf("bestmove %s\n", best)
}

// reportIteration prints the UCI info line for a finished iteration.
func (s *Searcher) reportIteration(depth int) {
	tp := s.pool
	if !tp.stdout.Load() || len(s.rootMoves) == 0 {
		return
	}
	elapsed := tp.timer.Elapsed()
	nodes := tp.Nodes()
	nps := uint64(0)
	if ms := elapsed.Milliseconds(); ms > 0 {
		nps = nodes * 1000 / uint64(ms)
	}
	head := s.rootMoves[0]
	pv := make([]string, len(head.PV))
	for i, m := range head.PV {
		pv[i] = m.String()
	}
	tp.printf("info depth %d score %s nodes %d nps %d hashfull %d time %d pv %s\n",
		depth, UCIScore(head.Score), nodes, nps, tp.tt.HashFull(), elapsed.Milliseconds(), strings.Join(pv, " "))
}

// UCIScore formats a score for an info line.
func UCIScore(score int) string {
	switch {
	case score > MateScore-MaxPly:
		return fmt.Sprintf("mate %d", (MateScore-score+1)/2)
	case score < -MateScore+MaxPly:
		return fmt.Sprintf("mate -%d", (MateScore+score)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

// ScoreToString renders a score for humans.
func ScoreToString(score int) string {
	switch {
	case score > MateScore-MaxPly:
		return fmt.Sprintf("Mate in %d", (MateScore-score+1)/2)
	case score < -MateScore+MaxPly:
		return fmt.Sprintf("Mated in %d", (MateScore+score)/2)
	}
	return fmt.Sprintf("%+.2f", float64(score)/100)
}
