package engine

import (
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// Limits bounds a search. The zero value searches to MaxPly until stopped.
type Limits struct {
	Depth     int              // maximum depth (0 = no limit)
	Nodes     uint64           // maximum nodes summed over all searchers (0 = no limit)
	MoveTime  time.Duration    // fixed time per move (overrides the clock)
	Infinite  bool             // search until stopped
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int              // moves until next time control (0 = sudden death)
	Start     time.Time        // when the request arrived; zero means now
}

// UseTimeManagement reports whether the limits describe a tournament clock
// rather than a fixed allotment.
func (l Limits) UseTimeManagement() bool {
	return !l.Infinite && l.MoveTime == 0 && (l.Time[board.White] > 0 || l.Time[board.Black] > 0)
}

// MaxDepth returns the depth cap for iterative deepening.
func (l Limits) MaxDepth() int {
	if l.Depth > 0 && l.Depth < MaxPly {
		return l.Depth
	}
	return MaxPly - 1
}

// TimeManager handles time allocation for a search. It is shared by every
// searcher of a pool; Init is only called while no search is running.
type TimeManager struct {
	mu          sync.RWMutex
	optimumTime time.Duration
	maximumTime time.Duration
	startTime   time.Time
}

// Init prepares the manager for a new search. ply is the game ply.
func (tm *TimeManager) Init(limits Limits, us board.Color, ply int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.startTime = limits.Start
	if tm.startTime.IsZero() {
		tm.startTime = time.Now()
	}

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	if !limits.UseTimeManagement() || limits.Time[us] == 0 {
		tm.optimumTime = 0
		tm.maximumTime = 0
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	// Sudden death: expect more moves early in the game
	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = min(max(50-ply/4, 10), 50)
	}

	baseTime := timeLeft/time.Duration(mtg) + inc*9/10
	tm.optimumTime = baseTime
	if ply < 8 {
		tm.optimumTime = baseTime * 85 / 100
	}

	// 5x optimum or 80% of remaining, whichever is smaller
	tm.maximumTime = min(tm.optimumTime*5, timeLeft*8/10)
	tm.maximumTime = min(tm.maximumTime, timeLeft*95/100)

	tm.optimumTime = max(tm.optimumTime, 10*time.Millisecond)
	tm.maximumTime = max(tm.maximumTime, 50*time.Millisecond)
}

// Elapsed returns the time since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move, or 0 when untimed.
func (tm *TimeManager) OptimumTime() time.Duration {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.optimumTime
}

// MaximumTime returns the hard limit for this move, or 0 when untimed.
func (tm *TimeManager) MaximumTime() time.Duration {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.maximumTime
}

// ShouldStop reports whether the hard limit has passed.
func (tm *TimeManager) ShouldStop() bool {
	limit := tm.MaximumTime()
	return limit > 0 && tm.Elapsed() >= limit
}

// PastOptimum reports whether the target time has passed, so no new
// iteration should start.
func (tm *TimeManager) PastOptimum() bool {
	opt := tm.OptimumTime()
	return opt > 0 && tm.Elapsed() >= opt
}
