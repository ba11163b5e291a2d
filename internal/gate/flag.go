package gate

import "sync"

// Flag is a mutex-guarded bool that can be waited on.
// The zero value is false.
type Flag struct {
	mu   sync.Mutex
	cond *sync.Cond
	v    bool
}

// Set stores v and wakes every goroutine blocked in Await.
func (f *Flag) Set(v bool) {
	f.mu.Lock()
	if f.cond == nil {
		f.cond = sync.NewCond(&f.mu)
	}
	f.v = v
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Load returns the current value.
func (f *Flag) Load() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

// Await blocks until the flag holds v.
func (f *Flag) Await(v bool) {
	f.mu.Lock()
	if f.cond == nil {
		f.cond = sync.NewCond(&f.mu)
	}
	for f.v != v {
		f.cond.Wait()
	}
	f.mu.Unlock()
}
