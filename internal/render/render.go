package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"log"
	"strings"

	"codecompass/internal/eventbus"
)

// Message types the browser bridge understands on click.
const (
	ActionPublish = "publish"
	ActionExpand  = "expand"
	ActionHistory = "history"
	ActionExport  = "export"
	ActionMenu    = "contextmenu"

	// ActionWorkspace reloads the page on another workspace.
	ActionWorkspace = "workspace"
)

// Action is what a click on a rendered element sends back to the session.
type Action struct {
	Type    string
	Topic   string
	Payload string
	NodeID  string
	Region  string
}

func (a Action) IsZero() bool { return a.Type == "" }

// Publish builds the action that publishes e.
func Publish(e eventbus.Event) Action {
	if e == nil {
		return Action{}
	}
	b, err := json.Marshal(e)
	if err != nil {
		log.Printf("render: encode %s payload: %v", e.Topic(), err)
		return Action{}
	}
	return Action{Type: ActionPublish, Topic: string(e.Topic()), Payload: string(b)}
}

// Expand asks the owner of region to load the children of a tree node.
func Expand(region, nodeID string) Action {
	return Action{Type: ActionExpand, Region: region, NodeID: nodeID}
}

func attrs(a Action) template.HTMLAttr {
	if a.IsZero() {
		return ""
	}
	var sb strings.Builder
	write := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(&sb, ` %s="%s"`, k, html.EscapeString(v))
	}
	write("data-cc-type", a.Type)
	write("data-cc-topic", a.Topic)
	write("data-cc-payload", a.Payload)
	write("data-cc-node", a.NodeID)
	write("data-cc-region", a.Region)
	return template.HTMLAttr(strings.TrimSpace(sb.String()))
}

var funcs = template.FuncMap{
	"action":    attrs,
	"diffClass": diffClass,
	"add":       func(a, b int) int { return a + b },
	"f1":        func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

var templates = template.Must(template.New("render").Funcs(funcs).Parse(strings.Join([]string{
	treeTemplates,
	sourceTemplates,
	searchTemplates,
	gitTemplates,
	metricsTemplates,
	miscTemplates,
}, "\n")))

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
