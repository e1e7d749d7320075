package views

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"codecompass/internal/backend"
	"codecompass/internal/diagram"
	"codecompass/internal/eventbus"
	"codecompass/internal/generation"
	"codecompass/internal/render"
	"codecompass/internal/service"
	"codecompass/internal/urlstate"
)

// Center module ids.
const (
	TextID       = "text"
	DiagramID    = "diagram"
	GitBlameID   = "gitblame"
	CommitViewID = "commitview"
	MetricsID    = "metrics"
)

// HoverDelay is how long the pointer rests on a diagram element before its
// preview is fetched.
const HoverDelay = 500 * time.Millisecond

// fileInfo returns the file info for id, served from the "fid" dependent when
// it tracks the same file.
func (h *Host) fileInfo(ctx context.Context, id string) (backend.FileInfo, error) {
	if h.File != nil && h.State != nil && h.State.Value(urlstate.KeyFile) == id {
		if info, ok, err := h.File.Get(ctx); err == nil && ok {
			return info, nil
		}
	}
	project, err := service.Project(ctx, h.Services)
	if err != nil {
		return backend.FileInfo{}, err
	}
	return project.GetFileInfo(ctx, id)
}

// Text shows the content of one file.
type Text struct {
	base
}

func NewText(h *Host) *Text {
	v := &Text{base: newBase(h, TextID, "Text")}
	eventbus.On(h.Bus, v.open)
	return v
}

func (v *Text) open(ctx context.Context, e eventbus.OpenFile) {
	v.host.Sink.Select("center", v.id)
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		info, err := v.host.fileInfo(ctx, e.FileID)
		if err != nil {
			v.fail(k, "Cannot open file", err)
			return
		}
		project, err := service.Project(ctx, v.host.Services)
		if err != nil {
			v.fail(k, "Cannot open file", err)
			return
		}
		content, err := project.GetFileContent(ctx, info.ID)
		if err != nil {
			v.fail(k, "Cannot load "+info.Name, err)
			return
		}
		parents, err := project.GetParentFiles(ctx, info.ID)
		if err != nil {
			parents = nil
		}
		crumb, err := render.Breadcrumb(parents, info)
		if err != nil {
			v.fail(k, "Cannot render "+info.Name, err)
			return
		}
		src, err := render.SourceView(render.Source{File: info, Content: content, Selection: e.Selection})
		if err != nil {
			v.fail(k, "Cannot render "+info.Name, err)
			return
		}
		v.show(k, crumb+src)
	})
}

func (v *Text) StateKeys() []string {
	return []string{urlstate.KeyFile, urlstate.KeySelection, urlstate.KeyCenter}
}

func (v *Text) FromState(s urlstate.State) (eventbus.Event, bool) {
	fid := s[urlstate.KeyFile]
	if fid == "" {
		return nil, false
	}
	if c := s[urlstate.KeyCenter]; c != "" && c != TextID {
		return nil, false
	}
	sel, _ := urlstate.ParseSelection(s[urlstate.KeySelection])
	return eventbus.OpenFile{FileID: fid, Selection: sel}, true
}

// Diagram shows the diagram of one handler for one node.
type Diagram struct {
	base

	dmu     sync.Mutex
	current diagram.Diagram
}

func NewDiagram(h *Host) *Diagram {
	v := &Diagram{base: newBase(h, DiagramID, "Diagram")}
	eventbus.On(h.Bus, v.showDiagram)
	return v
}

func (v *Diagram) showDiagram(ctx context.Context, e eventbus.ShowDiagram) {
	v.host.Sink.Select("center", v.id)
	v.host.Diagrams.CancelHover()
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		req := diagram.Request{Handler: e.Handler, DiagramType: e.DiagramType, NodeID: e.NodeID}
		pane := render.DiagramPane{Title: e.NodeID}
		if h, err := v.host.Diagrams.Handler(e.Handler); err == nil {
			if n, ok := h.(interface{ Title() string }); ok {
				pane.Title = n.Title()
			}
		}

		d, err := v.host.Diagrams.Show(ctx, req)
		if err != nil {
			pane.Error = err.Error()
		} else {
			pane.SVG = template.HTML(d.SVG)
			pane.Export = render.Action{Type: render.ActionExport, Region: v.id}
		}

		if types, err := v.host.Diagrams.Types(ctx, e.Handler, e.NodeID); err == nil {
			for _, t := range types {
				next := e
				next.DiagramType = t.ID
				pane.Types = append(pane.Types, render.Option{Label: t.Name, Selected: t.ID == e.DiagramType, Action: render.Publish(next)})
			}
		}
		if legend, err := v.host.Diagrams.Legend(ctx, e.Handler, e.DiagramType); err == nil && legend != "" {
			pane.Legend = template.HTML(legend)
		}

		out, rerr := render.Diagram(pane)
		if rerr != nil {
			v.fail(k, "Cannot render diagram", rerr)
			return
		}
		if v.show(k, out) && err == nil {
			v.dmu.Lock()
			v.current = d
			v.dmu.Unlock()
		}
	})
}

// Current returns the diagram on screen.
func (v *Diagram) Current() (diagram.Diagram, bool) {
	v.dmu.Lock()
	defer v.dmu.Unlock()
	return v.current, v.current.SVG != ""
}

// DrillDown publishes the current diagram centred on nodeID, so it lands in
// the URL and the history like any other navigation.
func (v *Diagram) DrillDown(ctx context.Context, handler, nodeID string) error {
	cur, ok := v.Current()
	if !ok {
		return errors.New("no diagram shown")
	}
	if handler == "" {
		handler = cur.Handler
	}
	v.host.Bus.Publish(ctx, eventbus.ShowDiagram{Handler: handler, DiagramType: cur.DiagramType, NodeID: nodeID})
	return nil
}

// Hover schedules the preview of nodeID into the tooltip region.
func (v *Diagram) Hover(ctx context.Context, nodeID string) {
	cur, ok := v.Current()
	if !ok || nodeID == "" {
		return
	}
	req := cur.Request
	req.NodeID = nodeID
	v.host.Diagrams.ScheduleHover(ctx, HoverDelay, req, func(info diagram.Info, err error) {
		if err != nil {
			return
		}
		tip, err := render.Tooltip(info.Text)
		if err != nil {
			return
		}
		v.host.Sink.Region("tooltip", tip)
	})
}

// Export stores the current diagram and returns its download URL.
func (v *Diagram) Export(ctx context.Context) (string, error) {
	if v.host.Exporter == nil {
		return "", errors.New("diagram export is not configured")
	}
	cur, ok := v.Current()
	if !ok {
		return "", errors.New("no diagram shown")
	}
	_, url, err := v.host.Exporter.Export(ctx, cur)
	return url, err
}

func (v *Diagram) StateKeys() []string {
	return []string{urlstate.KeyCenter, urlstate.KeyDiagramHandler, urlstate.KeyDiagramType, urlstate.KeyDiagramNode}
}

func (v *Diagram) FromState(s urlstate.State) (eventbus.Event, bool) {
	if s[urlstate.KeyCenter] != DiagramID || s[urlstate.KeyDiagramNode] == "" {
		return nil, false
	}
	return eventbus.ShowDiagram{
		Handler:     s[urlstate.KeyDiagramHandler],
		DiagramType: s[urlstate.KeyDiagramType],
		NodeID:      s[urlstate.KeyDiagramNode],
	}, true
}

// GitBlame shows a file with the commit of every line.
type GitBlame struct {
	base
}

func NewGitBlame(h *Host) *GitBlame {
	v := &GitBlame{base: newBase(h, GitBlameID, "Git blame")}
	eventbus.On(h.Bus, v.blame)
	return v
}

func (v *GitBlame) blame(ctx context.Context, e eventbus.ShowBlame) {
	v.host.Sink.Select("center", v.id)
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		info, err := v.host.fileInfo(ctx, e.FileID)
		if err != nil {
			v.fail(k, "Cannot blame file", err)
			return
		}
		git, err := service.Git(ctx, v.host.Services)
		if err != nil {
			v.fail(k, "Cannot blame "+info.Name, err)
			return
		}
		repo, err := git.GetRepositoryByProjectPath(ctx, info.Path)
		if err != nil {
			v.fail(k, "Cannot blame "+info.Name, err)
			return
		}
		if !repo.IsInRepository {
			v.show(k, render.Empty(info.Name+" is not in a git repository"))
			return
		}
		repoID := e.RepoID
		if repoID == "" {
			repoID = repo.RepoID
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(info.Path, repo.RepoPath), "/")
		hunks, err := git.GetBlameInfo(ctx, repoID, repo.CommitID, rel)
		if err != nil {
			v.fail(k, "Cannot blame "+info.Name, err)
			return
		}
		project, err := service.Project(ctx, v.host.Services)
		if err != nil {
			v.fail(k, "Cannot blame "+info.Name, err)
			return
		}
		content, err := project.GetFileContent(ctx, info.ID)
		if err != nil {
			v.fail(k, "Cannot load "+info.Name, err)
			return
		}
		lines := render.SplitLines(content)
		out, err := render.SourceView(render.Source{File: info, Content: content, Blame: render.BlameGutter(repoID, hunks, len(lines))})
		if err != nil {
			v.fail(k, "Cannot render "+info.Name, err)
			return
		}
		v.show(k, out)
	})
}

func (v *GitBlame) StateKeys() []string {
	return []string{urlstate.KeyCenter, urlstate.KeyFile, urlstate.KeyRepo}
}

func (v *GitBlame) FromState(s urlstate.State) (eventbus.Event, bool) {
	if s[urlstate.KeyCenter] != GitBlameID || s[urlstate.KeyFile] == "" {
		return nil, false
	}
	return eventbus.ShowBlame{FileID: s[urlstate.KeyFile], RepoID: s[urlstate.KeyRepo]}, true
}

// CommitView shows one commit and its diff.
type CommitView struct {
	base
}

func NewCommitView(h *Host) *CommitView {
	v := &CommitView{base: newBase(h, CommitViewID, "Commit")}
	eventbus.On(h.Bus, v.commit)
	return v
}

func (v *CommitView) commit(ctx context.Context, e eventbus.ShowCommit) {
	v.host.Sink.Select("center", v.id)
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		git, err := service.Git(ctx, v.host.Services)
		if err != nil {
			v.fail(k, "Cannot load commit", err)
			return
		}
		c, err := git.GetCommit(ctx, e.RepoID, e.CommitID)
		if err != nil {
			v.fail(k, "Cannot load commit "+shortID(e.CommitID), err)
			return
		}
		out, err := render.CommitDiff(c)
		if err != nil {
			v.fail(k, "Cannot render commit", err)
			return
		}
		v.show(k, out)
	})
}

func (v *CommitView) StateKeys() []string {
	return []string{urlstate.KeyCenter, urlstate.KeyRepo, urlstate.KeyCommit, urlstate.KeyBranch}
}

func (v *CommitView) FromState(s urlstate.State) (eventbus.Event, bool) {
	if s[urlstate.KeyCenter] != CommitViewID || s[urlstate.KeyRepo] == "" || s[urlstate.KeyCommit] == "" {
		return nil, false
	}
	return eventbus.ShowCommit{RepoID: s[urlstate.KeyRepo], CommitID: s[urlstate.KeyCommit], BranchID: s[urlstate.KeyBranch]}, true
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Metrics draws a treemap of one metric below a directory.
type Metrics struct {
	base
}

func NewMetrics(h *Host) *Metrics {
	v := &Metrics{base: newBase(h, MetricsID, "Metrics")}
	eventbus.On(h.Bus, v.metrics)
	return v
}

func (v *Metrics) metrics(ctx context.Context, e eventbus.ShowMetrics) {
	v.host.Sink.Select("center", v.id)
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		client, err := service.Metrics(ctx, v.host.Services)
		if err != nil {
			v.fail(k, "Cannot load metrics", err)
			return
		}
		names, err := client.GetMetricsTypeNames(ctx)
		if err != nil {
			v.fail(k, "Cannot load metrics", err)
			return
		}
		if len(names) == 0 {
			v.show(k, render.Empty("No metrics"))
			return
		}
		metricsType := e.MetricsType
		if metricsType == "" {
			metricsType = names[0].Type
		}

		root, err := client.GetMetrics(ctx, e.FileID, v.fileTypes(), metricsType)
		if err != nil {
			v.fail(k, "Cannot load metrics", err)
			return
		}

		opts := make([]render.Option, 0, len(names))
		for _, n := range names {
			opts = append(opts, render.Option{
				Label:    n.Name,
				Selected: n.Type == metricsType,
				Action:   render.Publish(eventbus.ShowMetrics{FileID: e.FileID, MetricsType: n.Type}),
			})
		}
		choices, err := render.Choices("metricstype", opts)
		if err != nil {
			v.fail(k, "Cannot render metrics", err)
			return
		}
		treemap, err := render.MetricsTreemap(render.Metrics{Root: root, MetricsType: metricsType})
		if err != nil {
			v.fail(k, "Cannot render metrics", err)
			return
		}
		v.show(k, choices+treemap)
	})
}

// fileTypes are the file types of every language service seen so far.
func (v *Metrics) fileTypes() []string {
	var out []string
	for _, name := range v.host.Services.Names() {
		out = append(out, v.host.Services.FileTypesOf(name)...)
	}
	return out
}

func (v *Metrics) StateKeys() []string {
	return []string{urlstate.KeyCenter, urlstate.KeyFile, urlstate.KeyMetricsType}
}

func (v *Metrics) FromState(s urlstate.State) (eventbus.Event, bool) {
	if s[urlstate.KeyCenter] != MetricsID {
		return nil, false
	}
	return eventbus.ShowMetrics{FileID: s[urlstate.KeyFile], MetricsType: s[urlstate.KeyMetricsType]}, true
}

var errNoHandler = errors.New("no such handler")

func handlerError(id string) error { return fmt.Errorf("%w: %s", errNoHandler, id) }
