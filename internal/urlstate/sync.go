package urlstate

import (
	"sync"
)

// Location abstracts the browser address bar.
type Location interface {
	Hash() string
	// PushHash sets the fragment and adds a browser history entry.
	PushHash(hash string)
}

// Change describes one state transition.
type Change struct {
	Prev State
	Next State
	Keys []string
	// FromBrowser is set for back/forward navigation.
	FromBrowser bool
}

// Has reports whether key is among the changed keys.
func (c Change) Has(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

type Listener func(Change)

// maxPending bounds the pushes remembered for echo suppression.
const maxPending = 32

// Synchronizer keeps State and the URL fragment in step.
type Synchronizer struct {
	loc   Location
	codec Codec

	mu        sync.Mutex
	state     State
	nextID    int
	listeners []listenerEntry
	// pending holds our pushes whose hashchange has not come back yet,
	// oldest first.
	pending []string
}

type listenerEntry struct {
	id int
	fn Listener
}

// New reads the initial state from loc.
func New(loc Location, codec Codec) *Synchronizer {
	if codec == nil {
		codec = QueryCodec{}
	}
	s := &Synchronizer{loc: loc, codec: codec, state: State{}}
	if loc != nil {
		s.state = codec.Decode(loc.Hash())
	}
	return s
}

func (s *Synchronizer) Codec() Codec { return s.codec }

// State returns a copy of the current state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Synchronizer) Value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[key]
}

// Hash is the encoded current state.
func (s *Synchronizer) Hash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.Encode(s.state)
}

// SetStateValue writes the given keys; empty values unset. Returns the changed keys.
func (s *Synchronizer) SetStateValue(kv map[string]string) []string {
	return s.apply(func(st State) {
		for k, v := range kv {
			if v == "" {
				delete(st, k)
			} else {
				st[k] = v
			}
		}
	})
}

func (s *Synchronizer) UnsetStateValue(keys ...string) []string {
	return s.apply(func(st State) {
		for _, k := range keys {
			delete(st, k)
		}
	})
}

// SetState replaces the whole map.
func (s *Synchronizer) SetState(m State) []string {
	return s.apply(func(st State) {
		for k := range st {
			delete(st, k)
		}
		for k, v := range m {
			if v != "" {
				st[k] = v
			}
		}
	})
}

func (s *Synchronizer) apply(mutate func(State)) []string {
	s.mu.Lock()
	prev := s.state.Clone()
	next := s.state.Clone()
	mutate(next)
	keys := prev.Changed(next)
	if len(keys) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.state = next
	hash := s.codec.Encode(next)
	s.pending = append(s.pending, hash)
	if len(s.pending) > maxPending {
		s.pending = s.pending[len(s.pending)-maxPending:]
	}
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	if s.loc != nil {
		s.loc.PushHash(hash)
	}
	notify(listeners, Change{Prev: prev, Next: next.Clone(), Keys: keys})
	return keys
}

// HashChanged handles a hashchange reported by the browser. A hash equal to
// one of our pushes still waiting for its echo is that echo and is ignored,
// together with the older pending ones. Any other hash is a browser
// navigation and forgets the pending pushes. Returns the change and whether
// anything changed.
func (s *Synchronizer) HashChanged(hash string) (Change, bool) {
	return s.rebuild(hash, true)
}

// Load replaces the state from hash without pushing, as on page load.
func (s *Synchronizer) Load(hash string) (Change, bool) {
	return s.rebuild(hash, false)
}

func (s *Synchronizer) rebuild(hash string, echo bool) (Change, bool) {
	next := s.codec.Decode(hash)
	canonical := s.codec.Encode(next)

	s.mu.Lock()
	if echo {
		for i, p := range s.pending {
			if p == canonical {
				s.pending = s.pending[i+1:]
				s.mu.Unlock()
				return Change{}, false
			}
		}
	}
	s.pending = nil
	prev := s.state.Clone()
	keys := prev.Changed(next)
	if len(keys) == 0 {
		s.mu.Unlock()
		return Change{}, false
	}
	s.state = next
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	change := Change{Prev: prev, Next: next.Clone(), Keys: keys, FromBrowser: true}
	notify(listeners, change)
	return change, true
}

// OnChange registers l and returns a function removing it.
func (s *Synchronizer) OnChange(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Synchronizer) snapshotLocked() []Listener {
	out := make([]Listener, len(s.listeners))
	for i, e := range s.listeners {
		out[i] = e.fn
	}
	return out
}

func notify(listeners []Listener, c Change) {
	for _, l := range listeners {
		l(c)
	}
}

// MemoryLocation is a Location kept in memory. Pushes are recorded.
type MemoryLocation struct {
	mu     sync.Mutex
	hash   string
	pushes []string
	onPush func(string)
}

func NewMemoryLocation(hash string, onPush func(string)) *MemoryLocation {
	return &MemoryLocation{hash: trimHash(hash), onPush: onPush}
}

func (l *MemoryLocation) Hash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hash
}

func (l *MemoryLocation) PushHash(hash string) {
	l.mu.Lock()
	l.hash = hash
	l.pushes = append(l.pushes, hash)
	cb := l.onPush
	l.mu.Unlock()
	if cb != nil {
		cb(hash)
	}
}

// Replace sets the hash without recording a push, as back/forward does.
func (l *MemoryLocation) Replace(hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hash = trimHash(hash)
}

func (l *MemoryLocation) Pushes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.pushes...)
}
