package backend

import (
	"context"
	"strings"
)

type NodeIDRequest struct {
	NodeID string `json:"astNodeId"`
}

type PositionRequest struct {
	FileID   string   `json:"fileId"`
	Position Position `json:"pos"`
}

type DiagramRequest struct {
	ID          string `json:"id"`
	DiagramType string `json:"diagramId"`
}

type DiagramTypeRequest struct {
	DiagramType string `json:"diagramId"`
}

type ReferencesRequest struct {
	NodeID      string `json:"astNodeId"`
	ReferenceID string `json:"referenceId"`
}

// LanguageClient reaches one language service (CppService, PythonService, ...).
type LanguageClient struct {
	service string

	getFileTypes             *unary[Empty, []string]
	getAstNodeInfo           *unary[NodeIDRequest, AstNodeInfo]
	getAstNodeInfoByPosition *unary[PositionRequest, AstNodeInfo]
	getDiagramTypes          *unary[NodeIDRequest, []DiagramType]
	getDiagram               *unary[DiagramRequest, string]
	getFileDiagramTypes      *unary[FileIDRequest, []DiagramType]
	getFileDiagram           *unary[DiagramRequest, string]
	getDiagramLegend         *unary[DiagramTypeRequest, string]
	getReferenceTypes        *unary[NodeIDRequest, []ReferenceType]
	getReferences            *unary[ReferencesRequest, []AstNodeInfo]
	getDocumentation         *unary[NodeIDRequest, string]
	getProperties            *unary[NodeIDRequest, map[string]string]
}

func NewLanguageClient(t Transport) *LanguageClient {
	return &LanguageClient{
		service:                  t.Service,
		getFileTypes:             newUnary[Empty, []string](t, "getFileTypes"),
		getAstNodeInfo:           newUnary[NodeIDRequest, AstNodeInfo](t, "getAstNodeInfo"),
		getAstNodeInfoByPosition: newUnary[PositionRequest, AstNodeInfo](t, "getAstNodeInfoByPosition"),
		getDiagramTypes:          newUnary[NodeIDRequest, []DiagramType](t, "getDiagramTypes"),
		getDiagram:               newUnary[DiagramRequest, string](t, "getDiagram"),
		getFileDiagramTypes:      newUnary[FileIDRequest, []DiagramType](t, "getFileDiagramTypes"),
		getFileDiagram:           newUnary[DiagramRequest, string](t, "getFileDiagram"),
		getDiagramLegend:         newUnary[DiagramTypeRequest, string](t, "getDiagramLegend"),
		getReferenceTypes:        newUnary[NodeIDRequest, []ReferenceType](t, "getReferenceTypes"),
		getReferences:            newUnary[ReferencesRequest, []AstNodeInfo](t, "getReferences"),
		getDocumentation:         newUnary[NodeIDRequest, string](t, "getDocumentation"),
		getProperties:            newUnary[NodeIDRequest, map[string]string](t, "getProperties"),
	}
}

// Service returns the name of the service this client is bound to.
func (c *LanguageClient) Service() string { return c.service }

// FileTypes lets the service registry learn which file types this service handles.
func (c *LanguageClient) FileTypes(ctx context.Context) ([]string, error) {
	return c.GetFileTypes(ctx)
}

func (c *LanguageClient) GetFileTypes(ctx context.Context) ([]string, error) {
	out, err := c.getFileTypes.call(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *LanguageClient) GetAstNodeInfo(ctx context.Context, nodeID string) (AstNodeInfo, error) {
	out, err := c.getAstNodeInfo.call(ctx, &NodeIDRequest{NodeID: strings.TrimSpace(nodeID)})
	if err != nil {
		return AstNodeInfo{}, err
	}
	return *out, nil
}

func (c *LanguageClient) GetAstNodeInfoByPosition(ctx context.Context, fileID string, pos Position) (AstNodeInfo, error) {
	out, err := c.getAstNodeInfoByPosition.call(ctx, &PositionRequest{FileID: strings.TrimSpace(fileID), Position: pos})
	if err != nil {
		return AstNodeInfo{}, err
	}
	return *out, nil
}

func (c *LanguageClient) GetDiagramTypes(ctx context.Context, nodeID string) ([]DiagramType, error) {
	out, err := c.getDiagramTypes.call(ctx, &NodeIDRequest{NodeID: strings.TrimSpace(nodeID)})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetDiagram returns a server-rendered SVG document.
func (c *LanguageClient) GetDiagram(ctx context.Context, nodeID, diagramType string) (string, error) {
	out, err := c.getDiagram.call(ctx, &DiagramRequest{ID: strings.TrimSpace(nodeID), DiagramType: diagramType})
	if err != nil {
		return "", err
	}
	return *out, nil
}

func (c *LanguageClient) GetFileDiagramTypes(ctx context.Context, fileID string) ([]DiagramType, error) {
	out, err := c.getFileDiagramTypes.call(ctx, &FileIDRequest{FileID: strings.TrimSpace(fileID)})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *LanguageClient) GetFileDiagram(ctx context.Context, fileID, diagramType string) (string, error) {
	out, err := c.getFileDiagram.call(ctx, &DiagramRequest{ID: strings.TrimSpace(fileID), DiagramType: diagramType})
	if err != nil {
		return "", err
	}
	return *out, nil
}

func (c *LanguageClient) GetDiagramLegend(ctx context.Context, diagramType string) (string, error) {
	out, err := c.getDiagramLegend.call(ctx, &DiagramTypeRequest{DiagramType: diagramType})
	if err != nil {
		return "", err
	}
	return *out, nil
}

func (c *LanguageClient) GetReferenceTypes(ctx context.Context, nodeID string) ([]ReferenceType, error) {
	out, err := c.getReferenceTypes.call(ctx, &NodeIDRequest{NodeID: strings.TrimSpace(nodeID)})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *LanguageClient) GetReferences(ctx context.Context, nodeID, referenceID string) ([]AstNodeInfo, error) {
	out, err := c.getReferences.call(ctx, &ReferencesRequest{NodeID: strings.TrimSpace(nodeID), ReferenceID: referenceID})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetDocumentation returns an HTML fragment produced by the backend.
func (c *LanguageClient) GetDocumentation(ctx context.Context, nodeID string) (string, error) {
	out, err := c.getDocumentation.call(ctx, &NodeIDRequest{NodeID: strings.TrimSpace(nodeID)})
	if err != nil {
		return "", err
	}
	return *out, nil
}

func (c *LanguageClient) GetProperties(ctx context.Context, nodeID string) (map[string]string, error) {
	out, err := c.getProperties.call(ctx, &NodeIDRequest{NodeID: strings.TrimSpace(nodeID)})
	if err != nil {
		return nil, err
	}
	return *out, nil
}
