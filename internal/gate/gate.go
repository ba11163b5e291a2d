// Package gate provides the wake-up primitives used by the search thread
// pool: a re-armable level-triggered Gate and an awaitable boolean Flag.
package gate

import "sync"

// Gate is a two-state barrier. While open, Wait returns immediately, so a
// waiter that arrives late still passes. Every Open starts a new epoch;
// WaitNext lets a caller block until the gate has been opened again since
// the epoch it last saw, even if the gate was closed in between.
//
// The zero value is a closed gate at epoch 0.
type Gate struct {
	mu    sync.Mutex
	cond  *sync.Cond
	open  bool
	epoch uint64
}

// New returns a closed gate.
func New() *Gate {
	return &Gate{}
}

func (g *Gate) init() {
	if g.cond == nil {
		g.cond = sync.NewCond(&g.mu)
	}
}

// Open opens the gate, starts a new epoch and wakes every waiter.
func (g *Gate) Open() {
	g.mu.Lock()
	g.init()
	g.open = true
	g.epoch++
	g.mu.Unlock()
	g.cond.Broadcast()
}

// Close closes the gate. Waiters already released are unaffected.
func (g *Gate) Close() {
	g.mu.Lock()
	g.open = false
	g.mu.Unlock()
}

// Wait blocks until the gate is open.
func (g *Gate) Wait() {
	g.mu.Lock()
	g.init()
	for !g.open {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

// WaitNext blocks until the epoch differs from seen and returns the
// current epoch.
func (g *Gate) WaitNext(seen uint64) uint64 {
	g.mu.Lock()
	g.init()
	for g.epoch == seen {
		g.cond.Wait()
	}
	e := g.epoch
	g.mu.Unlock()
	return e
}

// IsOpen reports whether the gate is open.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Epoch returns the number of times the gate has been opened.
func (g *Gate) Epoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}
