package views

import (
	"context"
	"encoding/json"
	"html/template"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecompass/internal/backend"
	"codecompass/internal/backend/backendtest"
	"codecompass/internal/diagram"
	"codecompass/internal/eventbus"
	"codecompass/internal/history"
	"codecompass/internal/module"
	"codecompass/internal/service"
	"codecompass/internal/urlstate"
)

type fakeSink struct {
	mu       sync.Mutex
	regions  map[string]template.HTML
	selected map[string]string
}

func (s *fakeSink) Region(id string, html template.HTML) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions[id] = html
}

func (s *fakeSink) Select(group, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[group] = id
}

func (s *fakeSink) Notify(string, string) {}

func (s *fakeSink) region(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.regions[id])
}

func newTestHost(t *testing.T, srv *backendtest.Server) (*Host, *fakeSink) {
	t.Helper()
	set := service.NewSet(srv.URL, srv.Client())
	services := set.For("ws1")
	modules := module.New(services, module.Overrides{})
	viewer, err := diagram.NewViewer(modules, 0)
	require.NoError(t, err)
	state := urlstate.New(urlstate.NewMemoryLocation("", nil), nil)
	sink := &fakeSink{regions: map[string]template.HTML{}, selected: map[string]string{}}
	h := &Host{
		Services: services,
		Global:   set.Global(),
		Modules:  modules,
		Bus:      eventbus.New(),
		State:    state,
		History:  history.New(0),
		Diagrams: viewer,
		Sink:     sink,
		Theme:    func() string { return "light" },
		Themes:   []string{"light", "dark"},
	}
	h.File = urlstate.NewDependent(state, urlstate.KeyFile, func(ctx context.Context, id string) (backend.FileInfo, error) {
		return h.fileInfo(ctx, id)
	})
	return h, sink
}

func newTestBackend(t *testing.T) *backendtest.Server {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)
	srv.Reply("/ws1/CppService/getFileTypes", []string{"CPP"})
	return srv
}

func TestNavigationRoundTrip(t *testing.T) {
	srv := newTestBackend(t)
	h, _ := newTestHost(t, srv)

	sel := &backend.Range{StartPos: backend.Position{Line: 3, Column: 1}, EndPos: backend.Position{Line: 4, Column: 7}}
	tests := []struct {
		name  string
		event eventbus.Event
		view  module.URLStateful
	}{
		{"open file", eventbus.OpenFile{FileID: "main.cpp", Selection: sel}, NewText(h)},
		{"diagram", eventbus.ShowDiagram{Handler: "language.CppService", DiagramType: "call", NodeID: "n1"}, NewDiagram(h)},
		{"search", eventbus.RunSearch{Text: "main", Type: "text", FileFilter: "*.cpp"}, NewSearchResults(h)},
		{"search page", eventbus.RunSearch{Text: "main", Type: "text", Page: 2}, NewSearchResults(h)},
		{"blame", eventbus.ShowBlame{FileID: "main.cpp", RepoID: "r1"}, NewGitBlame(h)},
		{"commit", eventbus.ShowCommit{RepoID: "r1", CommitID: "abcdef0123", BranchID: "refs/heads/main"}, NewCommitView(h)},
		{"metrics", eventbus.ShowMetrics{FileID: "src", MetricsType: "loc"}, NewMetrics(h)},
		{"info tree", eventbus.ShowInfoTree{Handler: "language.CppService.infotree", NodeID: "n1"}, NewInfoTree(h)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav, ok := NavigationOf(tt.event)
			require.True(t, ok)
			assert.NotEmpty(t, nav.Label)

			st := urlstate.State{}
			for k, v := range nav.Set {
				if v != "" {
					st[k] = v
				}
			}
			// The state must survive the trip through the address bar.
			st = urlstate.QueryCodec{}.Decode(urlstate.QueryCodec{}.Encode(st))

			got, ok := tt.view.FromState(st)
			require.True(t, ok)
			if diff := cmp.Diff(tt.event, got); diff != "" {
				t.Fatalf("rebuilt event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchPageReachesURL(t *testing.T) {
	nav, ok := NavigationOf(eventbus.RunSearch{Text: "main", Page: 3})
	require.True(t, ok)
	assert.Equal(t, "3", nav.Set[urlstate.KeySearchPage])
	assert.Equal(t, "Search main (page 4)", nav.Label)

	// Going back to the first page clears the key.
	nav, _ = NavigationOf(eventbus.RunSearch{Text: "main"})
	v, present := nav.Set[urlstate.KeySearchPage]
	assert.True(t, present)
	assert.Empty(t, v)
}

func TestNavigationOfOtherEvents(t *testing.T) {
	_, ok := NavigationOf(eventbus.SetTheme{Theme: "dark"})
	assert.False(t, ok)
	_, ok = NavigationOf(eventbus.SelectAccordion{ModuleID: FileManagerID})
	assert.False(t, ok)
}

func TestFromStateNeedsItsCenter(t *testing.T) {
	srv := newTestBackend(t)
	h, _ := newTestHost(t, srv)

	st := urlstate.State{urlstate.KeyFile: "main.cpp", urlstate.KeyCenter: GitBlameID}
	_, ok := NewText(h).FromState(st)
	assert.False(t, ok, "text must not replay while blame owns the center")
	_, ok = NewGitBlame(h).FromState(st)
	assert.True(t, ok)
	_, ok = NewDiagram(h).FromState(st)
	assert.False(t, ok)
}

func TestRegisterGatesPlugins(t *testing.T) {
	srv := newTestBackend(t)

	h, _ := newTestHost(t, srv)
	v, err := Register(context.Background(), h, nil)
	require.NoError(t, err)
	assert.Nil(t, v.SearchBox)
	assert.Empty(t, v.Languages)
	for _, id := range []string{SearchBoxID, SearchResultsID, GitNavigatorID, MetricsID} {
		_, ok := h.Modules.Get(id)
		assert.False(t, ok, id)
	}
	for _, id := range []string{TextID, DiagramID, FileManagerID, InfoTreeID, BrowsingHistoryID, FileDiagramsID} {
		_, ok := h.Modules.Get(id)
		assert.True(t, ok, id)
	}

	h2, _ := newTestHost(t, srv)
	v, err = Register(context.Background(), h2, []string{"search", "Git", "cpp"})
	require.NoError(t, err)
	require.NotNil(t, v.SearchBox)
	require.Len(t, v.Languages, 1)
	for _, id := range []string{SearchBoxID, SearchResultsID, GitNavigatorID, GitBlameID, CommitViewID, "language.CppService", "language.CppService.menu", "language.CppService.infotree"} {
		_, ok := h2.Modules.Get(id)
		assert.True(t, ok, id)
	}
	_, ok := h2.Modules.Get(MetricsID)
	assert.False(t, ok)

	menus := h2.Modules.Modules(module.Filter{Type: module.TypeTextContextMenu, FileType: "CPP"})
	require.Len(t, menus, 1)
	assert.Equal(t, "language.CppService.menu", menus[0].ID())
}

func TestFileManagerExpandAndTarget(t *testing.T) {
	srv := newTestBackend(t)
	srv.Reply("/ws1/ProjectService/getRootFiles", []backend.FileInfo{
		{ID: "readme", Name: "README", Type: "TXT"},
		{ID: "src", Name: "src", IsDirectory: true},
	})
	srv.Handle("/ws1/ProjectService/getChildFiles", func(raw json.RawMessage) (any, error) {
		var req backend.FileIDRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		return []backend.FileInfo{{ID: req.FileID + "/main.cpp", Name: "main.cpp", Type: "CPP"}}, nil
	})
	h, sink := newTestHost(t, srv)
	fm := NewFileManager(h)
	ctx := context.Background()

	fm.Refresh(ctx)
	html := sink.region(FileManagerID)
	assert.Contains(t, html, "README")
	// Directories come first.
	assert.Less(t, strings.Index(html, ">src<"), strings.Index(html, ">README<"))

	_, ok := fm.Target("filemanager-1")
	assert.False(t, ok, "a directory is not a file target")
	target, ok := fm.Target("filemanager-2")
	require.True(t, ok)
	assert.Equal(t, module.Target{FileID: "readme", FileType: "TXT"}, target)

	require.NoError(t, fm.Expand(ctx, "filemanager-1"))
	assert.Contains(t, sink.region(FileManagerID), "main.cpp")
	target, ok = fm.Target("filemanager-3")
	require.True(t, ok)
	assert.Equal(t, "src/main.cpp", target.FileID)
	assert.Equal(t, "CPP", target.FileType)

	assert.Error(t, fm.Expand(ctx, "filemanager-99"))
}

func TestInfoTreeFromLanguage(t *testing.T) {
	srv := newTestBackend(t)
	srv.Reply("/ws1/CppService/getProperties", map[string]string{"Name": "main", "Kind": "function"})
	srv.Reply("/ws1/CppService/getReferenceTypes", []backend.ReferenceType{{ID: "callers", Name: "Callers", Count: 2}})
	srv.Reply("/ws1/CppService/getReferences", []backend.AstNodeInfo{
		{ID: "c1", AstNodeValue: "run()", Range: backend.FileRange{File: "run.cpp", Range: backend.Range{StartPos: backend.Position{Line: 7}}}},
	})
	h, sink := newTestHost(t, srv)
	ctx := context.Background()
	v, err := Register(ctx, h, []string{"cpp"})
	require.NoError(t, err)

	h.Bus.Publish(ctx, eventbus.ShowInfoTree{Handler: "language.CppService.infotree", NodeID: "n1"})
	html := sink.region(InfoTreeID)
	assert.Contains(t, html, "Kind")
	assert.Contains(t, html, "Callers (2)")
	assert.Equal(t, InfoTreeID, sink.selected["accordion"])

	// Properties are sorted: Kind, Name, then the reference group.
	require.NoError(t, v.InfoTree.Expand(ctx, "infotree-3"))
	html = sink.region(InfoTreeID)
	assert.Contains(t, html, "run()")
	assert.Contains(t, html, "line 7")
}

func TestInfoTreeUnknownHandler(t *testing.T) {
	srv := newTestBackend(t)
	h, sink := newTestHost(t, srv)
	NewInfoTree(h)

	h.Bus.Publish(context.Background(), eventbus.ShowInfoTree{Handler: "nope", NodeID: "n1"})
	assert.Contains(t, sink.region(InfoTreeID), "No info tree")
}
