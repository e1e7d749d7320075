package views

import (
	"context"
	"encoding/json"
	"strings"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
	"codecompass/internal/generation"
	"codecompass/internal/module"
	"codecompass/internal/render"
	"codecompass/internal/service"
	"codecompass/internal/urlstate"
)

// Accordion module ids.
const (
	FileManagerID     = "filemanager"
	SearchResultsID   = "searchresults"
	InfoTreeID        = "infotree"
	BrowsingHistoryID = "browsinghistory"
	GitNavigatorID    = "gitnavigator"
)

// SearchPageSize is the number of files per search result page.
const SearchPageSize = 10

// FileManager is the lazily loaded project tree.
type FileManager struct {
	base
	tree *render.TreeStore
}

func NewFileManager(h *Host) *FileManager {
	return &FileManager{
		base: newBase(h, FileManagerID, "File manager"),
		tree: render.NewTreeStore(FileManagerID),
	}
}

// Refresh reloads the root directories.
func (v *FileManager) Refresh(ctx context.Context) {
	k, ctx := v.gen.Begin(ctx)
	project, err := service.Project(ctx, v.host.Services)
	if err != nil {
		v.fail(k, "Cannot load files", err)
		return
	}
	roots, err := project.GetRootFiles(ctx)
	if err != nil {
		v.fail(k, "Cannot load files", err)
		return
	}
	if !k.Current() {
		return
	}
	v.tree.Reset()
	for _, r := range fileRecords(project, roots) {
		v.tree.Add("", r)
	}
	out, err := v.tree.Render("No files")
	if err != nil {
		v.fail(k, "Cannot render files", err)
		return
	}
	v.show(k, out)
}

func (v *FileManager) Expand(ctx context.Context, nodeID string) error {
	if err := v.tree.Expand(ctx, nodeID); err != nil {
		return err
	}
	out, err := v.tree.Render("No files")
	if err != nil {
		return err
	}
	v.set(out)
	return nil
}

// Target resolves a tree node to the file it shows.
func (v *FileManager) Target(nodeID string) (module.Target, bool) {
	rec, ok := v.tree.Get(nodeID)
	if !ok || rec.Action.Topic != string(eventbus.TopicOpenFile) {
		return module.Target{}, false
	}
	var e eventbus.OpenFile
	if err := json.Unmarshal([]byte(rec.Action.Payload), &e); err != nil || e.FileID == "" {
		return module.Target{}, false
	}
	return module.Target{FileID: e.FileID, FileType: rec.Class}, true
}

// fileRecords lists directories first. Directories load their children on
// expand, files open in the text view.
func fileRecords(project *backend.ProjectClient, files []backend.FileInfo) []render.Record {
	dirs := make([]render.Record, 0, len(files))
	var plain []render.Record
	for _, f := range files {
		f := f
		if f.IsDirectory {
			dirs = append(dirs, render.Record{
				Label: f.Name,
				Class: "dir",
				Loader: func(ctx context.Context) ([]render.Record, error) {
					kids, err := project.GetChildFiles(ctx, f.ID)
					if err != nil {
						return nil, err
					}
					return fileRecords(project, kids), nil
				},
			})
			continue
		}
		plain = append(plain, render.Record{
			Label:  f.Name,
			Class:  f.Type,
			Action: render.Publish(eventbus.OpenFile{FileID: f.ID}),
		})
	}
	return append(dirs, plain...)
}

// SearchResults lists the files matching the last search.
type SearchResults struct {
	base
}

func NewSearchResults(h *Host) *SearchResults {
	v := &SearchResults{base: newBase(h, SearchResultsID, "Search results")}
	eventbus.On(h.Bus, v.search)
	return v
}

func (v *SearchResults) search(ctx context.Context, e eventbus.RunSearch) {
	v.host.Sink.Select("accordion", v.id)
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		if strings.TrimSpace(e.Text) == "" {
			v.show(k, render.Empty("No result"))
			return
		}
		client, err := service.Search(ctx, v.host.Services)
		if err != nil {
			v.fail(k, "Search failed", err)
			return
		}
		res, err := client.Search(ctx, backend.SearchParams{
			Text:       e.Text,
			Type:       e.Type,
			FileFilter: e.FileFilter,
			DirFilter:  e.DirFilter,
			PageSize:   SearchPageSize,
			PageNumber: e.Page,
		})
		if err != nil {
			v.fail(k, "Search failed", err)
			return
		}
		out, err := render.SearchResults(render.Search{Query: e, Result: res, PageSize: SearchPageSize})
		if err != nil {
			v.fail(k, "Cannot render results", err)
			return
		}
		v.show(k, out)
	})
}

func (v *SearchResults) StateKeys() []string {
	return []string{urlstate.KeySearchText, urlstate.KeySearchType, urlstate.KeySearchFileFilter, urlstate.KeySearchDirFilter, urlstate.KeySearchPage}
}

func (v *SearchResults) FromState(s urlstate.State) (eventbus.Event, bool) {
	if s[urlstate.KeySearchText] == "" {
		return nil, false
	}
	return eventbus.RunSearch{
		Text:       s[urlstate.KeySearchText],
		Type:       s[urlstate.KeySearchType],
		FileFilter: s[urlstate.KeySearchFileFilter],
		DirFilter:  s[urlstate.KeySearchDirFilter],
		Page:       parsePage(s[urlstate.KeySearchPage]),
	}, true
}

// InfoTree shows what a language handler knows about an AST node.
type InfoTree struct {
	base
	tree *render.TreeStore
}

func NewInfoTree(h *Host) *InfoTree {
	v := &InfoTree{
		base: newBase(h, InfoTreeID, "Info tree"),
		tree: render.NewTreeStore(InfoTreeID),
	}
	eventbus.On(h.Bus, v.showTree)
	eventbus.On(h.Bus, v.showDocumentation)
	return v
}

func (v *InfoTree) showTree(ctx context.Context, e eventbus.ShowInfoTree) {
	v.host.Sink.Select("accordion", v.id)
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		entry, ok := v.host.Modules.Get(e.Handler)
		contributor, isTree := entry.Module.(module.InfoTreeContributor)
		if !ok || !isTree {
			v.fail(k, "No info tree", handlerError(e.Handler))
			return
		}
		nodes, err := contributor.InfoTree(ctx, e.NodeID, e.FileID)
		if err != nil {
			v.fail(k, "Cannot load info tree", err)
			return
		}
		if !k.Current() {
			return
		}
		v.tree.Reset()
		addInfoNodes(v.tree, "", nodes)
		out, err := v.tree.Render("No information")
		if err != nil {
			v.fail(k, "Cannot render info tree", err)
			return
		}
		v.show(k, out)
	})
}

func (v *InfoTree) showDocumentation(ctx context.Context, e eventbus.ShowDocumentation) {
	v.host.Sink.Select("accordion", v.id)
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		entry, ok := v.host.Modules.Get(e.Handler)
		doc, isDoc := entry.Module.(interface {
			Documentation(ctx context.Context, nodeID string) (string, string, error)
		})
		if !ok || !isDoc {
			v.fail(k, "No documentation", handlerError(e.Handler))
			return
		}
		title, text, err := doc.Documentation(ctx, e.NodeID)
		if err != nil {
			v.fail(k, "Cannot load documentation", err)
			return
		}
		if strings.TrimSpace(text) == "" {
			v.show(k, render.Empty("No documentation for "+title))
			return
		}
		out, err := render.Documentation(title, text)
		if err != nil {
			v.fail(k, "Cannot render documentation", err)
			return
		}
		v.show(k, out)
	})
}

func (v *InfoTree) Expand(ctx context.Context, nodeID string) error {
	if err := v.tree.Expand(ctx, nodeID); err != nil {
		return err
	}
	out, err := v.tree.Render("No information")
	if err != nil {
		return err
	}
	v.set(out)
	return nil
}

func addInfoNodes(tree *render.TreeStore, parent string, nodes []module.InfoNode) {
	for _, n := range nodes {
		tree.Add(parent, infoRecord(n))
	}
}

func infoRecord(n module.InfoNode) render.Record {
	r := render.Record{Label: n.Label, Value: n.Value, Action: render.Publish(n.Event)}
	switch {
	case n.Load != nil:
		load := n.Load
		r.Loader = func(ctx context.Context) ([]render.Record, error) {
			kids, err := load(ctx)
			if err != nil {
				return nil, err
			}
			return infoRecords(kids), nil
		}
	case len(n.Children) > 0:
		kids := n.Children
		r.Loader = func(context.Context) ([]render.Record, error) { return infoRecords(kids), nil }
	}
	return r
}

func infoRecords(nodes []module.InfoNode) []render.Record {
	out := make([]render.Record, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, infoRecord(n))
	}
	return out
}

// InfoTreeState is the "node" value of an info tree: handler and node id.
func InfoTreeState(e eventbus.ShowInfoTree) string {
	return e.Handler + ":" + e.NodeID
}

func (v *InfoTree) StateKeys() []string { return []string{urlstate.KeyNode} }

func (v *InfoTree) FromState(s urlstate.State) (eventbus.Event, bool) {
	handler, node, ok := strings.Cut(s[urlstate.KeyNode], ":")
	if !ok || handler == "" || node == "" {
		return nil, false
	}
	return eventbus.ShowInfoTree{Handler: handler, NodeID: node, FileID: s[urlstate.KeyFile]}, true
}

// BrowsingHistory draws the navigation tree of the session.
type BrowsingHistory struct {
	base
}

func NewBrowsingHistory(h *Host) *BrowsingHistory {
	return &BrowsingHistory{base: newBase(h, BrowsingHistoryID, "Browsing history")}
}

func (v *BrowsingHistory) Refresh(context.Context) {
	out, err := render.HistoryTree(v.host.History)
	if err != nil {
		v.set(render.ErrorBox("Cannot render history", err))
		return
	}
	v.set(out)
}

// GitNavigator lists repositories and their branches and tags.
type GitNavigator struct {
	base
	tree *render.TreeStore
}

func NewGitNavigator(h *Host) *GitNavigator {
	return &GitNavigator{
		base: newBase(h, GitNavigatorID, "Git navigator"),
		tree: render.NewTreeStore(GitNavigatorID),
	}
}

func (v *GitNavigator) Refresh(ctx context.Context) {
	k, ctx := v.gen.Begin(ctx)
	git, err := service.Git(ctx, v.host.Services)
	if err != nil {
		v.fail(k, "Cannot load repositories", err)
		return
	}
	repos, err := git.GetRepositoryList(ctx)
	if err != nil {
		v.fail(k, "Cannot load repositories", err)
		return
	}
	if !k.Current() {
		return
	}
	v.tree.Reset()
	for _, repo := range repos {
		repo := repo
		v.tree.Add("", render.Record{
			Label: repo.Name,
			Value: repo.Path,
			Loader: func(ctx context.Context) ([]render.Record, error) {
				refs, err := git.GetReferenceList(ctx, repo.ID)
				if err != nil {
					return nil, err
				}
				out := make([]render.Record, 0, len(refs))
				for _, ref := range refs {
					out = append(out, render.Record{
						Label:  strings.TrimPrefix(strings.TrimPrefix(ref.Name, "refs/heads/"), "refs/tags/"),
						Value:  ref.Kind,
						Class:  ref.Kind,
						Action: render.Publish(eventbus.ShowCommit{RepoID: repo.ID, CommitID: ref.Target, BranchID: ref.Name}),
					})
				}
				return out, nil
			},
		})
	}
	out, err := v.tree.Render("No repositories")
	if err != nil {
		v.fail(k, "Cannot render repositories", err)
		return
	}
	v.show(k, out)
}

func (v *GitNavigator) Expand(ctx context.Context, nodeID string) error {
	if err := v.tree.Expand(ctx, nodeID); err != nil {
		return err
	}
	out, err := v.tree.Render("No repositories")
	if err != nil {
		return err
	}
	v.set(out)
	return nil
}
