package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"codecompass/internal/diagram"
)

type ExportHandler struct {
	exporter *diagram.Exporter
}

func NewExportHandler(exporter *diagram.Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// HandleExport serves GET /export/{id}.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		http.Error(w, "export is not configured", http.StatusNotFound)
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	data, contentType, err := h.exporter.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, diagram.ErrExportNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("export: open %s: %v", id, err)
		http.Error(w, "export unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `inline; filename="`+id+`.svg"`)
	_, _ = w.Write(data)
}
