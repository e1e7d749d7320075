package localstate

import (
	"context"
	"strings"
	"sync"
	"time"

	memcache "codecompass/internal/cache/memory"
	repo "codecompass/internal/gateway/repository/localstate"
)

type Store = repo.Store

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 4096,
	}
}

// CachedStore is a read-through, write-through cache in front of an origin store.
type CachedStore struct {
	origin Store
	states *memcache.LRUTTL[string, repo.State]
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin: origin,
		states: memcache.NewLRUTTL[string, repo.State](cfg.MaxEntries, 0, cfg.TTL),
	}
}

func (s *CachedStore) Load(ctx context.Context, clientID string) (repo.State, error) {
	key := strings.TrimSpace(clientID)
	if st, ok := s.states.Get(key); ok {
		return st, nil
	}
	st, err := s.origin.Load(ctx, key)
	if err != nil {
		return repo.State{}, err
	}
	s.states.Set(key, st, 0)
	return st, nil
}

func (s *CachedStore) Save(ctx context.Context, clientID string, st repo.State) error {
	key := strings.TrimSpace(clientID)
	if err := s.origin.Save(ctx, key, st); err != nil {
		s.states.Delete(key)
		return err
	}
	s.states.Set(key, st, 0)
	return nil
}

// MemoryStore is the origin used when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]repo.State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]repo.State)}
}

func (s *MemoryStore) Load(_ context.Context, clientID string) (repo.State, error) {
	key := strings.TrimSpace(clientID)
	if key == "" {
		return repo.State{}, repo.ErrClientRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[key], nil
}

func (s *MemoryStore) Save(_ context.Context, clientID string, st repo.State) error {
	key := strings.TrimSpace(clientID)
	if key == "" {
		return repo.ErrClientRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = st
	return nil
}
