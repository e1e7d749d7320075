package module

import (
	"context"
	"html/template"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
	"codecompass/internal/urlstate"
)

// Renderer produces the module's current HTML.
type Renderer interface {
	Render(ctx context.Context) (template.HTML, error)
}

// Named modules have a display title for tabs and accordion headers.
type Named interface {
	Title() string
}

// URLStateful modules can rebuild the event that led to a URL state. It is
// used on reload and browser back/forward.
type URLStateful interface {
	StateKeys() []string
	FromState(st urlstate.State) (eventbus.Event, bool)
}

// Target is what a context menu was opened on.
type Target struct {
	FileID   string
	FileType string
	NodeID   string
	Position *backend.Position
}

// MenuItem publishes Event when clicked.
type MenuItem struct {
	Label string
	Event eventbus.Event
}

type ContextMenuContributor interface {
	ContextMenu(ctx context.Context, t Target) ([]MenuItem, error)
}

// InfoNode is one row of an info tree. Load, when set, fetches the children
// on expand.
type InfoNode struct {
	Label    string
	Value    string
	Event    eventbus.Event
	Children []InfoNode
	Load     func(ctx context.Context) ([]InfoNode, error)
}

// InfoTreeContributor supplies the info tree of an AST node or a file.
type InfoTreeContributor interface {
	InfoTree(ctx context.Context, nodeID, fileID string) ([]InfoNode, error)
}
