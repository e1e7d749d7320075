package views

import (
	"context"
	"strings"

	"codecompass/internal/eventbus"
	"codecompass/internal/generation"
	"codecompass/internal/render"
	"codecompass/internal/service"
	"codecompass/internal/urlstate"
)

// Header module ids.
const (
	WorkspaceSelectorID = "workspaceselector"
	SearchBoxID         = "searchbox"
	ThemeSwitchID       = "themeswitch"
)

// SuggestLimit caps the number of search completions.
const SuggestLimit = 10

// WorkspaceSelector lists the workspaces of the backend.
type WorkspaceSelector struct {
	base
}

func NewWorkspaceSelector(h *Host) *WorkspaceSelector {
	return &WorkspaceSelector{base: newBase(h, WorkspaceSelectorID, "Workspace")}
}

func (v *WorkspaceSelector) Refresh(ctx context.Context) {
	k, ctx := v.gen.Begin(ctx)
	client, err := service.Workspaces(ctx, v.host.Global)
	if err != nil {
		v.fail(k, "Cannot load workspaces", err)
		return
	}
	list, err := client.GetWorkspaces(ctx)
	if err != nil {
		v.fail(k, "Cannot load workspaces", err)
		return
	}
	current := v.host.Services.Workspace()
	opts := make([]render.Option, 0, len(list))
	for _, ws := range list {
		label := ws.ID
		if d := strings.TrimSpace(ws.Description); d != "" {
			label = d
		}
		opts = append(opts, render.Option{
			Label:    label,
			Selected: ws.ID == current,
			Action:   render.Action{Type: render.ActionWorkspace, NodeID: ws.ID},
		})
	}
	out, err := render.Choices("workspace", opts)
	if err != nil {
		v.fail(k, "Cannot render workspaces", err)
		return
	}
	v.show(k, out)
}

// SearchBox is the search form with its completions.
type SearchBox struct {
	base
}

func NewSearchBox(h *Host) *SearchBox {
	v := &SearchBox{base: newBase(h, SearchBoxID, "Search")}
	eventbus.On(h.Bus, v.searched)
	return v
}

func (v *SearchBox) Refresh(ctx context.Context) {
	v.draw(ctx, v.query())
}

// searched keeps the form in step with searches started elsewhere, e.g. a
// replayed URL.
func (v *SearchBox) searched(ctx context.Context, e eventbus.RunSearch) {
	v.draw(ctx, e)
}

func (v *SearchBox) query() eventbus.RunSearch {
	s := v.host.State.State()
	return eventbus.RunSearch{
		Text:       s[urlstate.KeySearchText],
		Type:       s[urlstate.KeySearchType],
		FileFilter: s[urlstate.KeySearchFileFilter],
		DirFilter:  s[urlstate.KeySearchDirFilter],
	}
}

func (v *SearchBox) draw(ctx context.Context, q eventbus.RunSearch) {
	v.load(ctx, func(ctx context.Context, k generation.Ticket) {
		client, err := service.Search(ctx, v.host.Services)
		if err != nil {
			v.fail(k, "Search is unavailable", err)
			return
		}
		types, err := client.GetSearchTypes(ctx)
		if err != nil {
			v.fail(k, "Search is unavailable", err)
			return
		}
		out, err := render.SearchForm(render.SearchBox{Query: q, Types: types})
		if err != nil {
			v.fail(k, "Cannot render search", err)
			return
		}
		v.show(k, out)
	})
}

// Suggest writes completions of text below the search box.
func (v *SearchBox) Suggest(ctx context.Context, q eventbus.RunSearch) error {
	client, err := service.Search(ctx, v.host.Services)
	if err != nil {
		return err
	}
	var words []string
	if strings.TrimSpace(q.Text) != "" {
		words, err = client.SuggestSearch(ctx, q.Text, SuggestLimit)
		if err != nil {
			return err
		}
	}
	out, err := render.Suggestions(q, words)
	if err != nil {
		return err
	}
	v.host.Sink.Region("suggestions", out)
	return nil
}

// ThemeSwitch offers the configured themes.
type ThemeSwitch struct {
	base
}

func NewThemeSwitch(h *Host) *ThemeSwitch {
	v := &ThemeSwitch{base: newBase(h, ThemeSwitchID, "Theme")}
	eventbus.On(h.Bus, func(ctx context.Context, e eventbus.SetTheme) {
		v.host.Sink.Select("theme", e.Theme)
		v.draw(e.Theme)
	})
	return v
}

func (v *ThemeSwitch) Refresh(context.Context) {
	cur := ""
	if v.host.Theme != nil {
		cur = v.host.Theme()
	}
	v.draw(cur)
}

func (v *ThemeSwitch) draw(current string) {
	opts := make([]render.Option, 0, len(v.host.Themes))
	for _, t := range v.host.Themes {
		opts = append(opts, render.Option{Label: t, Selected: t == current, Action: render.Publish(eventbus.SetTheme{Theme: t})})
	}
	out, err := render.Choices("theme", opts)
	if err != nil {
		out = render.ErrorBox("Cannot render themes", err)
	}
	v.set(out)
}
