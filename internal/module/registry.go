package module

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Type is the page region a module lives in.
type Type string

const (
	TypeHeader          Type = "header"
	TypeAccordion       Type = "accordion"
	TypeCenter          Type = "center"
	TypeContextMenu     Type = "contextmenu"
	TypeTextContextMenu Type = "textcontextmenu"
	TypeDiagram         Type = "diagram"
	TypeInfoTree        Type = "infotree"
)

var (
	ErrMissingType     = errors.New("module: type is required")
	ErrInvalidID       = errors.New("module: id must be a non-empty string")
	ErrDuplicateModule = errors.New("module: id already registered")
	ErrNotFound        = errors.New("module: not found")
)

// Module is anything registered into a region. Further behaviour is
// discovered through the capability interfaces.
type Module interface {
	ID() string
}

// Options describe where a module goes.
type Options struct {
	Type Type
	// Service is the backend service the module talks to, if it is bound to one.
	Service  string
	Priority *int
}

// Priority is a helper for Options.Priority.
func Priority(p int) *int { return &p }

// Entry is a registered module with its options.
type Entry struct {
	Module   Module
	Type     Type
	Service  string
	Priority *int
}

func (e Entry) ID() string { return e.Module.ID() }

// FileTypeResolver answers whether a service handles a file type.
type FileTypeResolver interface {
	ServesFileType(service, fileType string) bool
}

// Filter narrows Modules. Zero fields match everything.
type Filter struct {
	Type     Type
	FileType string
}

// Registry holds the modules of one session.
type Registry struct {
	resolver  FileTypeResolver
	overrides Overrides

	mu      sync.RWMutex
	entries map[string]Entry
	waiters map[string]*Future
}

func New(resolver FileTypeResolver, overrides Overrides) *Registry {
	return &Registry{
		resolver:  resolver,
		overrides: overrides,
		entries:   make(map[string]Entry),
		waiters:   make(map[string]*Future),
	}
}

// Register adds m once. A disabled id is skipped without error.
func (r *Registry) Register(m Module, opts Options) error {
	if opts.Type == "" {
		return ErrMissingType
	}
	if m == nil || strings.TrimSpace(m.ID()) == "" {
		return ErrInvalidID
	}
	id := m.ID()
	if r.overrides.Disabled(id) {
		return nil
	}
	if p, ok := r.overrides.Priorities[id]; ok {
		opts.Priority = Priority(p)
	}

	r.mu.Lock()
	if _, exists := r.entries[id]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateModule, id)
	}
	e := Entry{Module: m, Type: opts.Type, Service: opts.Service, Priority: opts.Priority}
	r.entries[id] = e
	f := r.waiters[id]
	delete(r.waiters, id)
	r.mu.Unlock()

	if f != nil {
		f.resolve(e)
	}
	return nil
}

// MustRegister panics on a registration error. Use it for start-up wiring.
func (r *Registry) MustRegister(m Module, opts Options) {
	if err := r.Register(m, opts); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Modules returns the matching entries. Prioritized entries come first in
// ascending priority, the rest follow in reverse id order.
func (r *Registry) Modules(f Filter) []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.FileType != "" && e.Service != "" {
			if r.resolver == nil || !r.resolver.ServesFileType(e.Service, f.FileType) {
				continue
			}
		}
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Priority != nil && b.Priority != nil:
			if *a.Priority != *b.Priority {
				return *a.Priority < *b.Priority
			}
			return a.ID() < b.ID()
		case a.Priority != nil:
			return true
		case b.Priority != nil:
			return false
		default:
			return a.ID() > b.ID()
		}
	})
	return out
}

// ModuleAsync returns a future resolving once id is registered.
func (r *Registry) ModuleAsync(id string) *Future {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		f := newFuture()
		f.resolve(e)
		return f
	}
	if f, ok := r.waiters[id]; ok {
		return f
	}
	f := newFuture()
	r.waiters[id] = f
	return f
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
