package diagram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const svgContentType = "image/svg+xml"

// ErrExportNotFound is returned by stores for unknown export ids.
var ErrExportNotFound = errors.New("export not found")

// ExportStore keeps exported diagrams.
type ExportStore interface {
	Put(ctx context.Context, id string, data []byte, contentType string) error
	Get(ctx context.Context, id string) ([]byte, string, error)
}

// Exporter saves rendered diagrams and hands out download links.
type Exporter struct {
	store   ExportStore
	baseURL string
}

func NewExporter(store ExportStore, baseURL string) *Exporter {
	return &Exporter{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

// Export stores d as a standalone SVG document and returns its id and URL.
func (e *Exporter) Export(ctx context.Context, d Diagram) (string, string, error) {
	if e == nil || e.store == nil {
		return "", "", errors.New("diagram export is not configured")
	}
	if strings.TrimSpace(d.SVG) == "" {
		return "", "", errors.New("nothing to export")
	}
	id := uuid.NewString()
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + withNamespace(d.SVG)
	if err := e.store.Put(ctx, id, []byte(doc), svgContentType); err != nil {
		return "", "", fmt.Errorf("export %s: %w", d.Request, err)
	}
	return id, e.baseURL + "/export/" + id, nil
}

func (e *Exporter) Open(ctx context.Context, id string) ([]byte, string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, "", ErrExportNotFound
	}
	return e.store.Get(ctx, id)
}

// withNamespace adds the SVG namespace the HTML serializer leaves out.
func withNamespace(svg string) string {
	if strings.Contains(svg, "xmlns=") {
		return svg
	}
	return strings.Replace(svg, "<svg", `<svg xmlns="http://www.w3.org/2000/svg"`, 1)
}
