package views

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
	"codecompass/internal/module"
	"codecompass/internal/service"
	"codecompass/internal/urlstate"
)

// Plugins that enable a view instead of a language.
const (
	PluginGit     = "git"
	PluginMetrics = "metrics"
	PluginSearch  = "search"
)

// Views are the modules built for one session, by role.
type Views struct {
	Text        *Text
	Diagram     *Diagram
	FileManager *FileManager
	InfoTree    *InfoTree
	History     *BrowsingHistory
	SearchBox   *SearchBox
	Languages   []*Language
}

// Register builds every view of a session and registers it. plugins gates
// git, metrics, search and the languages; the remaining views always exist.
func Register(ctx context.Context, h *Host, plugins []string) (*Views, error) {
	enabled := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		enabled[strings.ToLower(strings.TrimSpace(p))] = true
	}

	v := &Views{
		Text:        NewText(h),
		Diagram:     NewDiagram(h),
		FileManager: NewFileManager(h),
		InfoTree:    NewInfoTree(h),
		History:     NewBrowsingHistory(h),
	}

	type reg struct {
		m    module.Module
		opts module.Options
	}
	regs := []reg{
		{NewWorkspaceSelector(h), module.Options{Type: module.TypeHeader, Priority: module.Priority(10)}},
		{NewThemeSwitch(h), module.Options{Type: module.TypeHeader}},
		{v.FileManager, module.Options{Type: module.TypeAccordion, Priority: module.Priority(10)}},
		{v.InfoTree, module.Options{Type: module.TypeAccordion, Priority: module.Priority(30)}},
		{v.History, module.Options{Type: module.TypeAccordion, Priority: module.Priority(40)}},
		{v.Text, module.Options{Type: module.TypeCenter, Priority: module.Priority(10)}},
		{v.Diagram, module.Options{Type: module.TypeCenter, Priority: module.Priority(20)}},
	}
	if enabled[PluginSearch] {
		v.SearchBox = NewSearchBox(h)
		regs = append(regs,
			reg{v.SearchBox, module.Options{Type: module.TypeHeader, Priority: module.Priority(20)}},
			reg{NewSearchResults(h), module.Options{Type: module.TypeAccordion, Priority: module.Priority(20)}},
		)
	}
	if enabled[PluginGit] {
		regs = append(regs,
			reg{NewGitNavigator(h), module.Options{Type: module.TypeAccordion, Priority: module.Priority(50)}},
			reg{NewGitBlame(h), module.Options{Type: module.TypeCenter}},
			reg{NewCommitView(h), module.Options{Type: module.TypeCenter}},
		)
	}
	if enabled[PluginMetrics] {
		regs = append(regs, reg{NewMetrics(h), module.Options{Type: module.TypeCenter}})
	}

	fd := &FileDiagrams{host: h}
	regs = append(regs,
		reg{fd, module.Options{Type: module.TypeDiagram}},
		reg{fileMenu{fd}, module.Options{Type: module.TypeContextMenu, Priority: module.Priority(10)}},
	)

	for _, p := range plugins {
		name := strings.ToLower(strings.TrimSpace(p))
		if name == "" || name == PluginGit || name == PluginMetrics || name == PluginSearch {
			continue
		}
		svc := backend.LanguageServiceName(name)
		client, err := service.Language(ctx, h.Services, svc)
		if err != nil {
			// One broken language must not take the others down.
			log.Printf("views: language %s unavailable: %v", svc, err)
			continue
		}
		lang := NewLanguage(h, svc, client)
		v.Languages = append(v.Languages, lang)
		regs = append(regs,
			reg{lang, module.Options{Type: module.TypeDiagram, Service: svc}},
			reg{LanguageInfoTree{lang}, module.Options{Type: module.TypeInfoTree, Service: svc}},
			reg{LanguageMenu{lang}, module.Options{Type: module.TypeTextContextMenu, Service: svc}},
		)
	}

	for _, r := range regs {
		if err := h.Modules.Register(r.m, r.opts); err != nil {
			return nil, fmt.Errorf("register %s: %w", r.m.ID(), err)
		}
	}
	return v, nil
}

// fileMenu registers the file diagrams under their own context menu id.
type fileMenu struct{ *FileDiagrams }

func (m fileMenu) ID() string { return FileDiagramsID + ".menu" }

// Navigation describes how an event moves the URL state. Empty values unset.
type Navigation struct {
	Set   map[string]string
	Label string
}

// NavigationOf maps a navigation event to its URL state change. ok is false
// for events that do not navigate.
func NavigationOf(e eventbus.Event) (Navigation, bool) {
	switch e := e.(type) {
	case eventbus.OpenFile:
		return Navigation{
			Set: map[string]string{
				urlstate.KeyFile:      e.FileID,
				urlstate.KeySelection: urlstate.FormatSelection(e.Selection),
				urlstate.KeyCenter:    TextID,
			},
			Label: "Open " + e.FileID,
		}, true
	case eventbus.ShowDiagram:
		return Navigation{
			Set: map[string]string{
				urlstate.KeyCenter:         DiagramID,
				urlstate.KeyDiagramHandler: e.Handler,
				urlstate.KeyDiagramType:    e.DiagramType,
				urlstate.KeyDiagramNode:    e.NodeID,
			},
			Label: "Diagram " + e.DiagramType + " of " + e.NodeID,
		}, true
	case eventbus.RunSearch:
		label := "Search " + e.Text
		if e.Page > 0 {
			label += fmt.Sprintf(" (page %d)", e.Page+1)
		}
		return Navigation{
			Set: map[string]string{
				urlstate.KeySearchText:       e.Text,
				urlstate.KeySearchType:       e.Type,
				urlstate.KeySearchFileFilter: e.FileFilter,
				urlstate.KeySearchDirFilter:  e.DirFilter,
				urlstate.KeySearchPage:       formatPage(e.Page),
			},
			Label: label,
		}, true
	case eventbus.ShowBlame:
		return Navigation{
			Set:   map[string]string{urlstate.KeyCenter: GitBlameID, urlstate.KeyFile: e.FileID, urlstate.KeyRepo: e.RepoID},
			Label: "Blame " + e.FileID,
		}, true
	case eventbus.ShowCommit:
		return Navigation{
			Set: map[string]string{
				urlstate.KeyCenter: CommitViewID,
				urlstate.KeyRepo:   e.RepoID,
				urlstate.KeyCommit: e.CommitID,
				urlstate.KeyBranch: e.BranchID,
			},
			Label: "Commit " + shortID(e.CommitID),
		}, true
	case eventbus.ShowMetrics:
		return Navigation{
			Set:   map[string]string{urlstate.KeyCenter: MetricsID, urlstate.KeyFile: e.FileID, urlstate.KeyMetricsType: e.MetricsType},
			Label: "Metrics " + e.MetricsType,
		}, true
	case eventbus.ShowInfoTree:
		return Navigation{
			Set:   map[string]string{urlstate.KeyNode: InfoTreeState(e)},
			Label: "Info " + e.NodeID,
		}, true
	case eventbus.SelectCenter:
		return Navigation{
			Set:   map[string]string{urlstate.KeyCenter: e.ModuleID},
			Label: "Show " + e.ModuleID,
		}, true
	}
	return Navigation{}, false
}

// formatPage leaves the first page out of the URL.
func formatPage(p int32) string {
	if p <= 0 {
		return ""
	}
	return strconv.FormatInt(int64(p), 10)
}

func parsePage(v string) int32 {
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}
