package export

import (
	"context"
	"strings"
	"sync"

	"codecompass/internal/diagram"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryStore keeps exports for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	objs map[string]object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objs: make(map[string]object)}
}

func (s *MemoryStore) Put(_ context.Context, id string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[strings.TrimSpace(id)] = object{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objs[strings.TrimSpace(id)]
	if !ok {
		return nil, "", diagram.ErrExportNotFound
	}
	return append([]byte(nil), o.data...), o.contentType, nil
}
