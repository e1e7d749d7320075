package server

import (
	"net/http"

	"codecompass/internal/gateway/handler"
	"codecompass/internal/gateway/middleware"
)

type Handlers struct {
	Page    *handler.PageHandler
	Session *handler.SessionHandler
	Export  *handler.ExportHandler
	// Proxy receives every path the gateway does not serve. Nil answers 404.
	Proxy http.Handler
}

func NewMux(h Handlers) http.Handler {
	mux := http.NewServeMux()

	// Page
	mux.Handle("GET /{$}", middleware.Compress(http.HandlerFunc(h.Page.HandlePage)))
	mux.Handle("GET /static/", middleware.Compress(handler.StaticHandler()))

	// Session bridge
	mux.HandleFunc("GET /ws", h.Session.HandleWS)

	mux.Handle("GET /export/{id}", middleware.Compress(http.HandlerFunc(h.Export.HandleExport)))
	mux.HandleFunc("GET /healthz", handler.HandleHealth)

	if h.Proxy != nil {
		mux.Handle("/", h.Proxy)
	}

	// Middleware
	return middleware.RequestID(middleware.CORS(mux))
}
