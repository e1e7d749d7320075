package diagram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"codecompass/internal/backend"
	"codecompass/internal/module"
)

// DefaultCacheSize is the number of processed diagrams kept per viewer.
const DefaultCacheSize = 32

// Handler translates a diagram type and a node id into a server-rendered
// SVG document. Handlers are registered as modules of type diagram.
type Handler interface {
	module.Module
	DiagramTypes(ctx context.Context, nodeID string) ([]backend.DiagramType, error)
	GetDiagram(ctx context.Context, diagramType, nodeID string) (string, error)
	MouseOverInfo(ctx context.Context, diagramType, nodeID string) (Info, error)
}

// LegendProvider is implemented by handlers that can explain their symbols.
type LegendProvider interface {
	Legend(ctx context.Context, diagramType string) (string, error)
}

// Info is the text preview shown on hover.
type Info struct {
	Text  string
	Range *backend.FileRange
}

// Request addresses one diagram.
type Request struct {
	Handler     string
	DiagramType string
	NodeID      string
}

func (r Request) String() string {
	return r.Handler + "/" + r.DiagramType + "/" + r.NodeID
}

// Diagram is a processed SVG ready to be inserted into the page.
type Diagram struct {
	Request
	SVG string
}

// Error reports a failed diagram request.
type Error struct {
	Request Request
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("diagram %s: %v", e.Request, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var ErrNotHandler = errors.New("module is not a diagram handler")

// Viewer looks up diagram handlers, fetches and post-processes their SVG.
type Viewer struct {
	modules *module.Registry
	cache   *lru.Cache[Request, string]

	mu    sync.Mutex
	hover *time.Timer
}

func NewViewer(modules *module.Registry, cacheSize int) (*Viewer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, err := lru.New[Request, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Viewer{modules: modules, cache: c}, nil
}

// Handler resolves a handler id through the module registry.
func (v *Viewer) Handler(id string) (Handler, error) {
	e, ok := v.modules.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", module.ErrNotFound, id)
	}
	h, ok := e.Module.(Handler)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotHandler, id)
	}
	return h, nil
}

// Show fetches the diagram for req. Failures are logged and returned as *Error.
func (v *Viewer) Show(ctx context.Context, req Request) (Diagram, error) {
	if strings.TrimSpace(req.NodeID) == "" || req.DiagramType == "" {
		return Diagram{}, v.fail(req, errors.New("missing node or diagram type"))
	}
	if svg, ok := v.cache.Get(req); ok {
		return Diagram{Request: req, SVG: svg}, nil
	}
	h, err := v.Handler(req.Handler)
	if err != nil {
		return Diagram{}, v.fail(req, err)
	}
	raw, err := h.GetDiagram(ctx, req.DiagramType, req.NodeID)
	if err != nil {
		return Diagram{}, v.fail(req, err)
	}
	svg, err := processSVG(raw, svgAnnotation{Handler: req.Handler, DiagramType: req.DiagramType})
	if err != nil {
		return Diagram{}, v.fail(req, err)
	}
	v.cache.Add(req, svg)
	return Diagram{Request: req, SVG: svg}, nil
}

// DrillDown regenerates the current diagram centred on nodeID.
func (v *Viewer) DrillDown(ctx context.Context, current Request, nodeID string) (Diagram, error) {
	next := current
	next.NodeID = nodeID
	return v.Show(ctx, next)
}

func (v *Viewer) MouseOver(ctx context.Context, req Request) (Info, error) {
	h, err := v.Handler(req.Handler)
	if err != nil {
		return Info{}, err
	}
	return h.MouseOverInfo(ctx, req.DiagramType, req.NodeID)
}

// ScheduleHover fetches the hover info for req after delay and hands it to fn.
// There is a single timer slot: a new hover replaces the slot but the earlier
// timer keeps running, so a quick re-hover can deliver both previews.
func (v *Viewer) ScheduleHover(ctx context.Context, delay time.Duration, req Request, fn func(Info, error)) {
	t := time.AfterFunc(delay, func() {
		fn(v.MouseOver(ctx, req))
	})
	v.mu.Lock()
	v.hover = t
	v.mu.Unlock()
}

// CancelHover stops the timer currently in the slot.
func (v *Viewer) CancelHover() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hover == nil {
		return false
	}
	stopped := v.hover.Stop()
	v.hover = nil
	return stopped
}

// Legend returns the handler's legend SVG, or "" when it has none.
func (v *Viewer) Legend(ctx context.Context, handler, diagramType string) (string, error) {
	h, err := v.Handler(handler)
	if err != nil {
		return "", err
	}
	lp, ok := h.(LegendProvider)
	if !ok {
		return "", nil
	}
	raw, err := lp.Legend(ctx, diagramType)
	if err != nil || strings.TrimSpace(raw) == "" {
		return "", err
	}
	return processSVG(raw, svgAnnotation{Handler: handler, DiagramType: diagramType})
}

// Types lists the diagram types handler offers for nodeID.
func (v *Viewer) Types(ctx context.Context, handler, nodeID string) ([]backend.DiagramType, error) {
	h, err := v.Handler(handler)
	if err != nil {
		return nil, err
	}
	return h.DiagramTypes(ctx, nodeID)
}

// Forget drops cached diagrams, e.g. after a workspace switch.
func (v *Viewer) Forget() { v.cache.Purge() }

func (v *Viewer) fail(req Request, err error) error {
	log.Printf("diagram: %s failed: %v", req, err)
	return &Error{Request: req, Err: err}
}
