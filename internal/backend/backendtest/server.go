// Package backendtest provides a fake analysis backend speaking the Connect
// JSON protocol, for tests of packages that call the backend.
package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Handler answers one procedure. A returned error becomes a Connect "internal" error.
type Handler func(req json.RawMessage) (any, error)

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
}

func New() *Server {
	s := &Server{
		handlers: make(map[string]Handler),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Handle registers h for a procedure path such as "/ws1/ProjectService/getFileInfo".
func (s *Server) Handle(path string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = h
}

// Reply registers a fixed response for a procedure path.
func (s *Server) Reply(path string, v any) {
	s.Handle(path, func(json.RawMessage) (any, error) { return v, nil })
}

// Calls reports how many times a procedure path was invoked.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimRight(r.URL.Path, "/")
	s.mu.Lock()
	h, ok := s.handlers[path]
	s.calls[path]++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "unimplemented", "message": "no handler for " + path})
		return
	}
	body, _ := io.ReadAll(r.Body)
	out, err := h(json.RawMessage(body))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "internal", "message": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}
