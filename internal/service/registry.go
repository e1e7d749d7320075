package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"connectrpc.com/connect"

	"codecompass/internal/backend"
)

// FileTypeLister is implemented by clients whose service handles a set of file types.
type FileTypeLister interface {
	FileTypes(ctx context.Context) ([]string, error)
}

// Constructor builds a client bound to a transport.
type Constructor[T any] func(backend.Transport) (T, error)

// Ctor adapts an infallible client constructor.
func Ctor[T any](fn func(backend.Transport) T) Constructor[T] {
	return func(t backend.Transport) (T, error) { return fn(t), nil }
}

// workspaceIndependent services are reached at /<ServiceName> instead of /<workspace>/<ServiceName>.
var workspaceIndependent = map[string]bool{
	backend.PluginService:    true,
	backend.WorkspaceService: true,
}

// Registry caches service clients for one workspace.
type Registry struct {
	baseURL    string
	workspace  string
	httpClient connect.HTTPClient

	mu               sync.Mutex
	clients          map[string]any
	fileTypeServices map[string]string
	serviceFileTypes map[string][]string
}

func New(baseURL, workspace string, httpClient connect.HTTPClient) *Registry {
	return &Registry{
		baseURL:          strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		workspace:        strings.Trim(strings.TrimSpace(workspace), "/"),
		httpClient:       httpClient,
		clients:          make(map[string]any),
		fileTypeServices: make(map[string]string),
		serviceFileTypes: make(map[string][]string),
	}
}

func (r *Registry) Workspace() string { return r.workspace }

// Endpoint returns the URL a service with the given endpoint path is reached at.
func (r *Registry) Endpoint(name, endpointPath string) string {
	p := strings.Trim(strings.TrimSpace(endpointPath), "/")
	if workspaceIndependent[name] || r.workspace == "" {
		return r.baseURL + "/" + p
	}
	return r.baseURL + "/" + r.workspace + "/" + p
}

// Add returns the client registered under name, constructing it on first use.
// Clients exposing FileTypes have each declared type recorded for ServiceForFileType.
// A failing constructor or file type enumeration is returned and nothing is cached.
func Add[T any](ctx context.Context, r *Registry, name, endpointPath string, ctor Constructor[T]) (T, error) {
	var zero T
	if r == nil {
		return zero, fmt.Errorf("service registry is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return zero, fmt.Errorf("service name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.clients[name]; ok {
		client, ok := existing.(T)
		if !ok {
			return zero, fmt.Errorf("service %s is registered as %T", name, existing)
		}
		return client, nil
	}

	client, err := ctor(backend.Transport{
		HTTPClient: r.httpClient,
		URL:        r.Endpoint(name, endpointPath),
		Service:    name,
	})
	if err != nil {
		return zero, fmt.Errorf("construct %s: %w", name, err)
	}

	if lister, ok := any(client).(FileTypeLister); ok {
		types, err := lister.FileTypes(ctx)
		if err != nil {
			return zero, fmt.Errorf("list file types of %s: %w", name, err)
		}
		for _, ft := range types {
			ft = normalizeFileType(ft)
			if ft == "" {
				continue
			}
			r.fileTypeServices[ft] = name
			r.serviceFileTypes[name] = append(r.serviceFileTypes[name], ft)
		}
	}

	r.clients[name] = client
	return client, nil
}

// Get returns an already constructed client.
func Get[T any](r *Registry, name string) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[strings.TrimSpace(name)]
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// ServiceForFileType picks the service registered for a file's language.
func (r *Registry) ServiceForFileType(fileType string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.fileTypeServices[normalizeFileType(fileType)]
	return name, ok
}

// FileTypesOf lists the file types a service declared.
func (r *Registry) FileTypesOf(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.serviceFileTypes[name]...)
}

// ServesFileType reports whether the named service declared fileType.
func (r *Registry) ServesFileType(name, fileType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fileTypeServices[normalizeFileType(fileType)] == name
}

func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.clients))
	for name := range r.clients {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalizeFileType(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }
