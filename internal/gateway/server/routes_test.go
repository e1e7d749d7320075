package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecompass/internal/diagram"
	"codecompass/internal/gateway/handler"
	"codecompass/internal/gateway/middleware"
	exportrepo "codecompass/internal/gateway/repository/export"
	"codecompass/internal/session"
)

func newTestMux(proxy http.Handler) http.Handler {
	return NewMux(Handlers{
		Page:    handler.NewPageHandler(""),
		Session: handler.NewSessionHandler(session.Deps{}),
		Export:  handler.NewExportHandler(diagram.NewExporter(exportrepo.NewMemoryStore(), "")),
		Proxy:   proxy,
	})
}

func TestRoutes(t *testing.T) {
	proxy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "proxied "+r.URL.Path)
	})
	mux := newTestMux(proxy)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "region-layout")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ws1/ProjectService/getFileInfo", strings.NewReader("{}")))
	assert.Equal(t, "proxied /ws1/ProjectService/getFileInfo", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/0b7c6a3e-6f7e-4c43-9a59-111111111111", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDIsKept(t *testing.T) {
	mux := newTestMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(middleware.RequestIDHeader))
}

func TestPreflight(t *testing.T) {
	mux := newTestMux(nil)
	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPageIsCompressed(t *testing.T) {
	srv := httptest.NewServer(newTestMux(nil))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/static/bridge.js", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}
