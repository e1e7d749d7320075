package module

import (
	"context"
	"sync"
)

// Future is a module registration that may not have happened yet.
type Future struct {
	once  sync.Once
	done  chan struct{}
	entry Entry
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(e Entry) {
	f.once.Do(func() {
		f.entry = e
		close(f.done)
	})
}

// Done is closed once the module is registered.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the module is registered or ctx ends.
func (f *Future) Wait(ctx context.Context) (Entry, error) {
	select {
	case <-f.done:
		return f.entry, nil
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}

// Then runs fn in its own goroutine once the module is registered or ctx ends.
func (f *Future) Then(ctx context.Context, fn func(Entry)) {
	go func() {
		if e, err := f.Wait(ctx); err == nil {
			fn(e)
		}
	}()
}
