package urlstate

import (
	"context"
	"sync"
)

// Dependent caches a value derived from one state key, e.g. the FileInfo of
// "fid". It is invalidated only when that key's value changes and refetched
// lazily on the next Get.
type Dependent[T any] struct {
	state *Synchronizer
	key   string
	fetch func(ctx context.Context, value string) (T, error)

	mu         sync.Mutex
	valid      bool
	fetchedFor string
	value      T
	fetches    int
}

func NewDependent[T any](s *Synchronizer, key string, fetch func(ctx context.Context, value string) (T, error)) *Dependent[T] {
	d := &Dependent[T]{state: s, key: key, fetch: fetch}
	s.OnChange(func(c Change) {
		if c.Has(key) {
			d.Invalidate()
		}
	})
	return d
}

// Get returns the value for the current state. ok is false when the key is unset.
func (d *Dependent[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T
	cur := d.state.Value(d.key)
	if cur == "" {
		return zero, false, nil
	}
	d.mu.Lock()
	if d.valid && d.fetchedFor == cur {
		v := d.value
		d.mu.Unlock()
		return v, true, nil
	}
	d.mu.Unlock()

	v, err := d.fetch(ctx, cur)
	if err != nil {
		return zero, false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetches++
	// The key may have moved on while fetching; keep only a matching result.
	if d.state.Value(d.key) == cur {
		d.valid = true
		d.fetchedFor = cur
		d.value = v
	}
	return v, true, nil
}

func (d *Dependent[T]) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.valid = false
}

// Fetches counts completed fetches.
func (d *Dependent[T]) Fetches() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetches
}
