package service

import (
	"sort"
	"strings"
	"sync"

	"connectrpc.com/connect"
)

// Set holds one Registry per opened workspace for the lifetime of the process.
type Set struct {
	baseURL    string
	httpClient connect.HTTPClient

	mu   sync.Mutex
	byWS map[string]*Registry
}

func NewSet(baseURL string, httpClient connect.HTTPClient) *Set {
	return &Set{
		baseURL:    baseURL,
		httpClient: httpClient,
		byWS:       make(map[string]*Registry),
	}
}

// For returns the registry of a workspace, creating it on first use.
func (s *Set) For(workspace string) *Registry {
	ws := strings.TrimSpace(workspace)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.byWS[ws]; ok {
		return r
	}
	r := New(s.baseURL, ws, s.httpClient)
	s.byWS[ws] = r
	return r
}

// Global returns a registry for the workspace-independent services.
func (s *Set) Global() *Registry { return s.For("") }

func (s *Set) Workspaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.byWS))
	for ws := range s.byWS {
		if ws != "" {
			out = append(out, ws)
		}
	}
	sort.Strings(out)
	return out
}
