package generation

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned when a newer request started after this one.
var ErrSuperseded = errors.New("generation: superseded by a newer request")

// Tracker stamps requests of one view so only the latest result is applied.
type Tracker struct {
	mu      sync.Mutex
	current uint64
	cancel  context.CancelFunc
}

// Ticket identifies one request.
type Ticket struct {
	t   *Tracker
	gen uint64
}

// Begin starts a new generation and cancels the previous one's context.
func (t *Tracker) Begin(ctx context.Context) (Ticket, context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.current++
	t.cancel = cancel
	gen := t.current
	t.mu.Unlock()
	return Ticket{t: t, gen: gen}, cctx
}

// Current reports whether no later Begin happened.
func (k Ticket) Current() bool {
	if k.t == nil {
		return false
	}
	k.t.mu.Lock()
	defer k.t.mu.Unlock()
	return k.t.current == k.gen
}

// Commit runs fn while holding the tracker, so a concurrent Begin cannot
// slip in between the check and the write.
func (k Ticket) Commit(fn func()) error {
	if k.t == nil {
		return ErrSuperseded
	}
	k.t.mu.Lock()
	defer k.t.mu.Unlock()
	if k.t.current != k.gen {
		return ErrSuperseded
	}
	fn()
	return nil
}

func (k Ticket) Generation() uint64 { return k.gen }

// Stop cancels the running generation, if any.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.current++
}
