package handler

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
)

//go:embed static
var staticFiles embed.FS

// StaticHandler serves the bridge script and other page assets.
func StaticHandler() http.Handler {
	return http.FileServer(http.FS(staticFiles))
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
.cc-pane > .cc-slot, .cc-tab { display: none; }
.cc-pane.open > .cc-slot, .cc-tab.selected { display: block; }
.cc-popup:empty { display: none; }
.cc-line.selected { background: #fff3b0; }
.theme-dark { background: #1e1e1e; color: #ddd; }
</style>
</head>
<body data-workspace="{{.Workspace}}">
<div id="region-layout"><p class="cc-empty">Connecting…</p></div>
<script src="/static/bridge.js"></script>
</body>
</html>
`))

type pageView struct {
	Title     string
	Workspace string
}

// PageHandler serves the page shell. Everything inside #region-layout
// arrives over the websocket.
type PageHandler struct {
	Title string
}

func NewPageHandler(title string) *PageHandler {
	if strings.TrimSpace(title) == "" {
		title = "CodeCompass"
	}
	return &PageHandler{Title: title}
}

func (h *PageHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ensureClientID(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	v := pageView{Title: h.Title, Workspace: strings.TrimSpace(r.URL.Query().Get("workspace"))}
	if err := pageTemplate.Execute(w, v); err != nil {
		log.Printf("page: render failed: %v", err)
	}
}
