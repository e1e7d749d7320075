package render

import (
	"html/template"
	"strconv"

	"codecompass/internal/backend"
	"codecompass/internal/history"
)

// Breadcrumb renders the path of a file from its parents, root first.
func Breadcrumb(parents []backend.FileInfo, file backend.FileInfo) (template.HTML, error) {
	crumbs := make([]string, 0, len(parents)+1)
	for _, p := range parents {
		crumbs = append(crumbs, p.Name)
	}
	crumbs = append(crumbs, file.Name)
	return execute("breadcrumb", crumbs)
}

// ErrorBox is the generic failure widget.
func ErrorBox(title string, err error) template.HTML {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	h, rerr := execute("errorbox", struct{ Title, Message string }{title, msg})
	if rerr != nil {
		return template.HTML(template.HTMLEscapeString(title + ": " + msg))
	}
	return h
}

// Empty renders a placeholder message.
func Empty(msg string) template.HTML {
	return template.HTML(`<p class="cc-empty">` + template.HTMLEscapeString(msg) + `</p>`)
}

type historyRow struct {
	Depth   int
	Label   string
	Time    string
	Current bool
	Action  Action
}

// HistoryTree renders the browsing history, one row per node indented by depth.
func HistoryTree(t *history.Tree) (template.HTML, error) {
	var rows []historyRow
	t.Walk(func(n *history.Node, depth int) {
		label := n.Label
		if label == "" {
			label = n.To
		}
		rows = append(rows, historyRow{
			Depth:   depth,
			Label:   label,
			Time:    n.Time.Format("15:04:05"),
			Current: t.IsCurrent(n),
			Action:  Action{Type: ActionHistory, NodeID: strconv.Itoa(n.ID)},
		})
	})
	return execute("history", rows)
}

// MenuItem is one context menu entry.
type MenuItem struct {
	Label  string
	Action Action
}

func Menu(items []MenuItem) (template.HTML, error) {
	return execute("menu", items)
}

// Option is one choice of a select box.
type Option struct {
	Label    string
	Selected bool
	Action   Action
}

// Choices renders a list of selectable options, e.g. workspaces or themes.
func Choices(name string, opts []Option) (template.HTML, error) {
	return execute("choices", struct {
		Name    string
		Options []Option
	}{name, opts})
}

// Pane is one module slot of the page layout.
type Pane struct {
	ID       string
	Title    string
	Selected bool
	Action   Action
}

// Layout lists the panes of each region.
type Layout struct {
	Header    []Pane
	Accordion []Pane
	Center    []Pane
	Theme     string
}

// Page renders the region skeleton the views fill.
func Page(l Layout) (template.HTML, error) {
	return execute("layout", l)
}

// DiagramPane is the model of the diagram view.
type DiagramPane struct {
	SVG    template.HTML
	Title  string
	Types  []Option
	Legend template.HTML
	Export Action
	Error  string
}

func Diagram(d DiagramPane) (template.HTML, error) {
	return execute("diagram", d)
}

// Tooltip renders a hover preview.
func Tooltip(text string) (template.HTML, error) {
	return execute("tooltip", text)
}

// Documentation renders node documentation as preformatted text.
func Documentation(title, doc string) (template.HTML, error) {
	return execute("documentation", struct{ Title, Doc string }{title, doc})
}

const miscTemplates = `
{{define "breadcrumb"}}<nav class="cc-breadcrumb">{{range $i, $c := .}}{{if $i}} / {{end}}<span>{{$c}}</span>{{end}}</nav>{{end}}
{{define "errorbox"}}<div class="cc-error" role="alert"><strong>{{.Title}}</strong>{{with .Message}}<p>{{.}}</p>{{end}}</div>{{end}}
{{define "history"}}<ul class="cc-history">{{range .}}<li class="depth-{{.Depth}}{{if .Current}} current{{end}}" {{action .Action}}><span class="cc-time">{{.Time}}</span> {{.Label}}</li>{{else}}<li class="cc-empty">No history</li>{{end}}</ul>{{end}}
{{define "menu"}}<ul class="cc-menu" role="menu">{{range .}}<li role="menuitem" {{action .Action}}>{{.Label}}</li>{{else}}<li class="cc-empty">No actions</li>{{end}}</ul>{{end}}
{{define "choices"}}<ul class="cc-choices" data-name="{{.Name}}">{{range .Options}}<li class="{{if .Selected}}selected{{end}}" {{action .Action}}>{{.Label}}</li>{{end}}</ul>{{end}}
{{define "layout"}}<div class="cc-layout theme-{{.Theme}}"><header id="cc-header">{{range .Header}}<div class="cc-slot" id="region-{{.ID}}"></div>{{end}}</header><aside id="cc-accordion">{{range .Accordion}}<section class="cc-pane{{if .Selected}} open{{end}}" data-pane="{{.ID}}"><h2 {{action .Action}}>{{.Title}}</h2><div class="cc-slot" id="region-{{.ID}}"></div></section>{{end}}</aside><main id="cc-center"><nav class="cc-tabs">{{range .Center}}<a class="{{if .Selected}}selected{{end}}" data-pane="{{.ID}}" {{action .Action}}>{{.Title}}</a>{{end}}</nav>{{range .Center}}<div class="cc-slot cc-tab{{if .Selected}} selected{{end}}" id="region-{{.ID}}" data-pane="{{.ID}}"></div>{{end}}</main><div id="region-contextmenu" class="cc-popup"></div><div id="region-tooltip" class="cc-popup"></div></div>{{end}}
{{define "diagram"}}<div class="cc-diagram">{{with .Title}}<h3>{{.}}</h3>{{end}}{{if .Types}}<ul class="cc-choices" data-name="diagramtype">{{range .Types}}<li class="{{if .Selected}}selected{{end}}" {{action .Action}}>{{.Label}}</li>{{end}}</ul>{{end}}{{if .Error}}<p class="cc-empty">No diagram</p><p class="cc-detail">{{.Error}}</p>{{else}}<div class="cc-canvas">{{.SVG}}</div>{{if not .Export.IsZero}}<button {{action .Export}}>Export</button>{{end}}{{end}}{{with .Legend}}<details class="cc-legend"><summary>Legend</summary>{{.}}</details>{{end}}</div>{{end}}
{{define "tooltip"}}<div class="cc-tooltip"><pre>{{.}}</pre></div>{{end}}
{{define "documentation"}}<div class="cc-doc"><h3>{{.Title}}</h3><pre>{{.Doc}}</pre></div>{{end}}
`
