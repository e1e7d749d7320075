package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"codecompass/internal/backend"
	"codecompass/internal/diagram"
	"codecompass/internal/eventbus"
	"codecompass/internal/module"
	"codecompass/internal/service"
)

// LanguageID is the diagram handler id of a language service.
func LanguageID(serviceName string) string { return "language." + serviceName }

// Language serves one language service: it is the diagram handler, and its
// InfoTree and Menu companions are registered as separate modules.
type Language struct {
	host    *Host
	service string
	client  *backend.LanguageClient
}

func NewLanguage(h *Host, serviceName string, client *backend.LanguageClient) *Language {
	return &Language{host: h, service: serviceName, client: client}
}

func (l *Language) ID() string    { return LanguageID(l.service) }
func (l *Language) Title() string { return strings.TrimSuffix(l.service, "Service") }

func (l *Language) DiagramTypes(ctx context.Context, nodeID string) ([]backend.DiagramType, error) {
	return l.client.GetDiagramTypes(ctx, nodeID)
}

func (l *Language) GetDiagram(ctx context.Context, diagramType, nodeID string) (string, error) {
	return l.client.GetDiagram(ctx, nodeID, diagramType)
}

func (l *Language) MouseOverInfo(ctx context.Context, _ string, nodeID string) (diagram.Info, error) {
	n, err := l.client.GetAstNodeInfo(ctx, nodeID)
	if err != nil {
		return diagram.Info{}, err
	}
	r := n.Range
	text := n.AstNodeValue
	if text == "" {
		text = n.SymbolType + " " + n.AstNodeType
	}
	return diagram.Info{Text: text, Range: &r}, nil
}

func (l *Language) Legend(ctx context.Context, diagramType string) (string, error) {
	return l.client.GetDiagramLegend(ctx, diagramType)
}

func (l *Language) Documentation(ctx context.Context, nodeID string) (string, string, error) {
	n, err := l.client.GetAstNodeInfo(ctx, nodeID)
	if err != nil {
		return "", "", err
	}
	doc, err := l.client.GetDocumentation(ctx, nodeID)
	return n.AstNodeValue, doc, err
}

// nodeAt resolves the AST node under a text position.
func (l *Language) nodeAt(ctx context.Context, t module.Target) (backend.AstNodeInfo, error) {
	if t.NodeID != "" {
		return l.client.GetAstNodeInfo(ctx, t.NodeID)
	}
	if t.Position == nil || t.FileID == "" {
		return backend.AstNodeInfo{}, fmt.Errorf("no position given")
	}
	return l.client.GetAstNodeInfoByPosition(ctx, t.FileID, *t.Position)
}

// LanguageMenu contributes the text context menu of a language.
type LanguageMenu struct{ *Language }

func (m LanguageMenu) ID() string { return m.Language.ID() + ".menu" }

func (m LanguageMenu) ContextMenu(ctx context.Context, t module.Target) ([]module.MenuItem, error) {
	node, err := m.nodeAt(ctx, t)
	if err != nil {
		return nil, err
	}
	if node.ID == "" {
		return nil, nil
	}
	items := []module.MenuItem{
		{Label: "Info Tree", Event: eventbus.ShowInfoTree{Handler: LanguageInfoTree{m.Language}.ID(), NodeID: node.ID, FileID: t.FileID}},
		{Label: "Documentation", Event: eventbus.ShowDocumentation{Handler: m.Language.ID(), NodeID: node.ID}},
	}
	if node.Range.File != "" {
		sel := node.Range.Range
		items = append(items, module.MenuItem{
			Label: "Jump to definition",
			Event: eventbus.OpenFile{FileID: node.Range.File, Selection: &sel},
		})
	}
	types, err := m.client.GetDiagramTypes(ctx, node.ID)
	if err != nil {
		return items, err
	}
	for _, dt := range types {
		items = append(items, module.MenuItem{
			Label: "Diagram: " + dt.Name,
			Event: eventbus.ShowDiagram{Handler: m.Language.ID(), DiagramType: dt.ID, NodeID: node.ID, FileID: t.FileID},
		})
	}
	return items, nil
}

// LanguageInfoTree contributes the info tree of a selected AST node.
type LanguageInfoTree struct{ *Language }

func (i LanguageInfoTree) ID() string { return i.Language.ID() + ".infotree" }

func (i LanguageInfoTree) InfoTree(ctx context.Context, nodeID, _ string) ([]module.InfoNode, error) {
	props, err := i.client.GetProperties(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]module.InfoNode, 0, len(keys)+4)
	for _, k := range keys {
		out = append(out, module.InfoNode{Label: k, Value: props[k]})
	}

	refTypes, err := i.client.GetReferenceTypes(ctx, nodeID)
	if err != nil {
		return out, err
	}
	for _, rt := range refTypes {
		rt := rt
		label := rt.Name
		if rt.Count > 0 {
			label = fmt.Sprintf("%s (%d)", rt.Name, rt.Count)
		}
		out = append(out, module.InfoNode{
			Label: label,
			Load: func(ctx context.Context) ([]module.InfoNode, error) {
				refs, err := i.client.GetReferences(ctx, nodeID, rt.ID)
				if err != nil {
					return nil, err
				}
				kids := make([]module.InfoNode, 0, len(refs))
				for _, r := range refs {
					sel := r.Range.Range
					kids = append(kids, module.InfoNode{
						Label: r.AstNodeValue,
						Value: fmt.Sprintf("line %d", r.Range.Range.StartPos.Line),
						Event: eventbus.OpenFile{FileID: r.Range.File, Selection: &sel},
					})
				}
				return kids, nil
			},
		})
	}
	return out, nil
}

// FileDiagrams is the diagram handler for file level diagrams. The node id
// is a file id; the language is picked from the file type.
type FileDiagrams struct {
	host *Host
}

const FileDiagramsID = "filediagrams"

func (f *FileDiagrams) ID() string    { return FileDiagramsID }
func (f *FileDiagrams) Title() string { return "File diagrams" }

func (f *FileDiagrams) language(ctx context.Context, fileID string) (*backend.LanguageClient, error) {
	project, err := service.Project(ctx, f.host.Services)
	if err != nil {
		return nil, err
	}
	info, err := project.GetFileInfo(ctx, fileID)
	if err != nil {
		return nil, err
	}
	lc, ok, err := service.LanguageForFile(ctx, f.host.Services, info.Type)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no language service for file type %q", info.Type)
	}
	return lc, nil
}

func (f *FileDiagrams) DiagramTypes(ctx context.Context, fileID string) ([]backend.DiagramType, error) {
	lc, err := f.language(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return lc.GetFileDiagramTypes(ctx, fileID)
}

func (f *FileDiagrams) GetDiagram(ctx context.Context, diagramType, fileID string) (string, error) {
	lc, err := f.language(ctx, fileID)
	if err != nil {
		return "", err
	}
	return lc.GetFileDiagram(ctx, fileID, diagramType)
}

func (f *FileDiagrams) MouseOverInfo(ctx context.Context, _ string, nodeID string) (diagram.Info, error) {
	project, err := service.Project(ctx, f.host.Services)
	if err != nil {
		return diagram.Info{}, err
	}
	info, err := project.GetFileInfo(ctx, nodeID)
	if err != nil {
		return diagram.Info{}, err
	}
	return diagram.Info{Text: info.Path}, nil
}

// ContextMenu offers the file diagrams in the file manager.
func (f *FileDiagrams) ContextMenu(ctx context.Context, t module.Target) ([]module.MenuItem, error) {
	if t.FileID == "" {
		return nil, nil
	}
	types, err := f.DiagramTypes(ctx, t.FileID)
	if err != nil {
		return nil, err
	}
	items := make([]module.MenuItem, 0, len(types))
	for _, dt := range types {
		items = append(items, module.MenuItem{
			Label: "Diagram: " + dt.Name,
			Event: eventbus.ShowDiagram{Handler: FileDiagramsID, DiagramType: dt.ID, NodeID: t.FileID, FileID: t.FileID},
		})
	}
	return items, nil
}
