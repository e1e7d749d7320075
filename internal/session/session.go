package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"codecompass/internal/backend"
	"codecompass/internal/diagram"
	"codecompass/internal/eventbus"
	localstate "codecompass/internal/gateway/repository/localstate"
	"codecompass/internal/history"
	"codecompass/internal/module"
	"codecompass/internal/render"
	"codecompass/internal/service"
	"codecompass/internal/urlstate"
	"codecompass/internal/views"
)

// Deps are the process-wide pieces a session is built from.
type Deps struct {
	Services *service.Set
	// Workspace is the workspace asked for in the page URL. Empty falls back
	// to the one stored for the client.
	Workspace string
	ClientID  string

	LocalState localstate.Store
	Exports    diagram.ExportStore
	// ExportURL is the public base of exported diagrams.
	ExportURL string

	Overrides module.Overrides
	Codec     urlstate.Codec
	Location  urlstate.Location
	Sink      views.Sink

	// AsyncLoads lets views fetch in the background. Handle then returns
	// once the URL state and history are updated.
	AsyncLoads bool

	Themes       []string
	DefaultTheme string
	HistorySize  int
	DiagramCache int
}

// Session is the server side of one browser tab.
type Session struct {
	deps     Deps
	services *service.Registry
	modules  *module.Registry
	bus      *eventbus.Bus
	state    *urlstate.Synchronizer
	history  *history.Tree
	diagrams *diagram.Viewer
	host     *views.Host
	views    *views.Views

	mu     sync.Mutex
	local  localstate.State
	theme  string
	cancel []func()
}

// navigationTopics move the URL state and the history.
var navigationTopics = []eventbus.Topic{
	eventbus.TopicOpenFile,
	eventbus.TopicShowDiagram,
	eventbus.TopicRunSearch,
	eventbus.TopicShowBlame,
	eventbus.TopicShowCommit,
	eventbus.TopicShowMetrics,
	eventbus.TopicShowInfoTree,
	eventbus.TopicSelectCenter,
}

func New(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Services == nil {
		return nil, fmt.Errorf("session: service set is required")
	}
	if deps.Sink == nil {
		return nil, fmt.Errorf("session: sink is required")
	}
	if deps.Codec == nil {
		deps.Codec = urlstate.QueryCodec{}
	}
	if deps.HistorySize <= 0 {
		deps.HistorySize = history.DefaultMaxNodes
	}
	if deps.DiagramCache <= 0 {
		deps.DiagramCache = diagram.DefaultCacheSize
	}

	s := &Session{deps: deps}
	s.loadLocal(ctx)

	ws := strings.TrimSpace(deps.Workspace)
	if ws == "" {
		ws = s.local.Workspace
	}
	s.services = deps.Services.For(ws)
	s.modules = module.New(s.services, deps.Overrides)
	s.bus = eventbus.New()
	s.state = urlstate.New(deps.Location, deps.Codec)
	s.history = history.New(deps.HistorySize)

	viewer, err := diagram.NewViewer(s.modules, deps.DiagramCache)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.diagrams = viewer

	s.theme = firstNonEmpty(s.local.Theme, deps.DefaultTheme)
	s.host = &views.Host{
		Services: s.services,
		Global:   deps.Services.Global(),
		Modules:  s.modules,
		Bus:      s.bus,
		State:    s.state,
		History:  s.history,
		Diagrams: viewer,
		Sink:     deps.Sink,
		Theme:    s.Theme,
		Themes:   deps.Themes,
		Async:    deps.AsyncLoads,
		File: urlstate.NewDependent(s.state, urlstate.KeyFile, func(ctx context.Context, id string) (backend.FileInfo, error) {
			project, err := service.Project(ctx, s.services)
			if err != nil {
				return backend.FileInfo{}, err
			}
			return project.GetFileInfo(ctx, id)
		}),
	}
	if deps.Exports != nil {
		s.host.Exporter = diagram.NewExporter(deps.Exports, deps.ExportURL)
	}

	// The navigation subscriber goes first so views see the new URL state.
	for _, t := range navigationTopics {
		s.cancel = append(s.cancel, s.bus.Subscribe(t, s.navigate))
	}

	plugins, err := s.plugins(ctx)
	if err != nil {
		log.Printf("session: plugin list unavailable: %v", err)
	}
	v, err := views.Register(ctx, s.host, plugins)
	if err != nil {
		return nil, err
	}
	s.views = v

	s.subscribeLocal()
	s.cancel = append(s.cancel,
		eventbus.On(s.bus, func(_ context.Context, e eventbus.SelectAccordion) {
			deps.Sink.Select("accordion", e.ModuleID)
		}),
		eventbus.On(s.bus, func(_ context.Context, e eventbus.SelectCenter) {
			deps.Sink.Select("center", e.ModuleID)
		}),
	)

	if ws != "" && ws != s.local.Workspace {
		s.updateLocal(ctx, func(st *localstate.State) { st.Workspace = ws })
	}
	return s, nil
}

func (s *Session) plugins(ctx context.Context) ([]string, error) {
	client, err := service.Plugins(ctx, s.deps.Services.Global())
	if err != nil {
		return nil, err
	}
	return client.GetPlugins(ctx)
}

func (s *Session) Bus() *eventbus.Bus            { return s.bus }
func (s *Session) Modules() *module.Registry     { return s.modules }
func (s *Session) State() *urlstate.Synchronizer { return s.state }
func (s *Session) History() *history.Tree        { return s.history }
func (s *Session) Services() *service.Registry   { return s.services }
func (s *Session) Workspace() string             { return s.services.Workspace() }

func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Start draws the page layout and every view that renders without a
// navigation, then restores hash. An empty hash restores the last file and
// search of the client instead.
func (s *Session) Start(ctx context.Context, hash string) error {
	layout, err := render.Page(s.Layout())
	if err != nil {
		return err
	}
	s.deps.Sink.Region("layout", layout)

	for _, e := range s.modules.Modules(module.Filter{}) {
		if r, ok := e.Module.(views.Refresher); ok {
			r.Refresh(ctx)
		}
	}

	if strings.Trim(hash, "#") != "" {
		s.Restore(ctx, hash)
		return nil
	}
	st := s.localState()
	if st.Search.Text != "" {
		s.bus.Publish(ctx, eventbus.RunSearch{
			Text:       st.Search.Text,
			Type:       st.Search.Type,
			FileFilter: st.Search.FileFilter,
			DirFilter:  st.Search.DirFilter,
		})
	}
	if st.FileID != "" {
		s.bus.Publish(ctx, eventbus.OpenFile{FileID: st.FileID})
	}
	if st.Accordion != "" {
		s.deps.Sink.Select("accordion", st.Accordion)
	}
	return nil
}

// Layout lists the registered panes per region.
func (s *Session) Layout() render.Layout {
	center := firstNonEmpty(s.state.Value(urlstate.KeyCenter), views.TextID)
	accordion := s.localState().Accordion

	l := render.Layout{Theme: s.Theme()}
	for _, e := range s.modules.Modules(module.Filter{Type: module.TypeHeader}) {
		l.Header = append(l.Header, render.Pane{ID: e.ID(), Title: title(e)})
	}
	for i, e := range s.modules.Modules(module.Filter{Type: module.TypeAccordion}) {
		selected := e.ID() == accordion || (accordion == "" && i == 0)
		l.Accordion = append(l.Accordion, render.Pane{
			ID:       e.ID(),
			Title:    title(e),
			Selected: selected,
			Action:   render.Publish(eventbus.SelectAccordion{ModuleID: e.ID()}),
		})
	}
	for _, e := range s.modules.Modules(module.Filter{Type: module.TypeCenter}) {
		l.Center = append(l.Center, render.Pane{
			ID:       e.ID(),
			Title:    title(e),
			Selected: e.ID() == center,
			Action:   render.Publish(eventbus.SelectCenter{ModuleID: e.ID()}),
		})
	}
	return l
}

func title(e module.Entry) string {
	if n, ok := e.Module.(module.Named); ok {
		return n.Title()
	}
	return e.ID()
}

// OpenFile is the programmatic way to show a file.
func (s *Session) OpenFile(ctx context.Context, fileID string, sel *backend.Range, newSession bool) {
	s.bus.Publish(ctx, eventbus.OpenFile{FileID: fileID, Selection: sel, NewSession: newSession})
}

// navigate records a navigation event in the URL state and the history.
// Replayed events only reproduce a state that is already there.
func (s *Session) navigate(ctx context.Context, e eventbus.Event) {
	if eventbus.IsReplay(ctx) {
		return
	}
	nav, ok := views.NavigationOf(e)
	if !ok {
		return
	}
	from := s.state.Hash()
	if len(s.state.SetStateValue(nav.Set)) == 0 {
		return
	}
	newSession := false
	if o, ok := e.(eventbus.OpenFile); ok {
		newSession = o.NewSession
	}
	s.history.Add(from, s.state.Hash(), nav.Label, newSession)
	s.refreshHistory(ctx)
}

func (s *Session) refreshHistory(ctx context.Context) {
	if s.views != nil && s.views.History != nil {
		s.views.History.Refresh(ctx)
	}
}

// Restore loads hash as on a page load and replays every view that has
// something to show for it.
func (s *Session) Restore(ctx context.Context, hash string) {
	s.state.Load(hash)
	s.replay(ctx, nil)
}

// HashChanged handles browser back/forward. Only views whose keys changed
// are replayed.
func (s *Session) HashChanged(ctx context.Context, hash string) {
	change, ok := s.state.HashChanged(hash)
	if !ok {
		return
	}
	s.history.Navigate(hash)
	s.refreshHistory(ctx)
	s.replay(ctx, change.Keys)
}

// GoTo jumps to a node of the browsing history.
func (s *Session) GoTo(ctx context.Context, nodeID int) error {
	n, ok := s.history.Select(nodeID)
	if !ok {
		return fmt.Errorf("history node %d: %w", nodeID, module.ErrNotFound)
	}
	keys := s.state.SetState(s.state.Codec().Decode(n.To))
	s.refreshHistory(ctx)
	if len(keys) > 0 {
		s.replay(ctx, keys)
	}
	return nil
}

// replay publishes the event each URL-stateful module rebuilds from the
// current state. changed limits it to modules reading one of those keys; nil
// replays all.
func (s *Session) replay(ctx context.Context, changed []string) {
	ctx = eventbus.WithReplay(ctx)
	st := s.state.State()
	for _, e := range s.modules.Modules(module.Filter{}) {
		m, ok := e.Module.(module.URLStateful)
		if !ok {
			continue
		}
		if changed != nil && !intersects(m.StateKeys(), changed) {
			continue
		}
		if ev, ok := m.FromState(st); ok {
			s.bus.Publish(ctx, ev)
		}
	}
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// Close detaches the session from its bus and stops pending work.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	for _, c := range cancel {
		c()
	}
	s.diagrams.CancelHover()
	s.host.Wait()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
