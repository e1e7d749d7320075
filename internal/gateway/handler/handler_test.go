package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecompass/internal/backend"
	"codecompass/internal/backend/backendtest"
	"codecompass/internal/diagram"
	exportrepo "codecompass/internal/gateway/repository/export"
	"codecompass/internal/service"
	"codecompass/internal/session"
)

func TestPageSetsClientCookieOnce(t *testing.T) {
	h := NewPageHandler("")

	rec := httptest.NewRecorder()
	h.HandlePage(rec, httptest.NewRequest(http.MethodGet, "/?workspace=ws1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="region-layout"`)
	assert.Contains(t, body, `data-workspace="ws1"`)
	assert.Contains(t, body, "/static/bridge.js")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ClientCookie, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.HandlePage(rec, req)
	assert.Empty(t, rec.Result().Cookies())
}

func TestInvalidClientCookieIsReplaced(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: "not-a-uuid"})
	id, fresh := clientID(req)
	assert.True(t, fresh)
	assert.NotEqual(t, "not-a-uuid", id)
}

func TestStaticBridgeScript(t *testing.T) {
	srv := httptest.NewServer(StaticHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/static/bridge.js")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hashchange")
}

func TestExportHandler(t *testing.T) {
	store := exportrepo.NewMemoryStore()
	exporter := diagram.NewExporter(store, "http://gw")
	id, link, err := exporter.Export(context.Background(), diagram.Diagram{SVG: `<svg><g class="node"></g></svg>`})
	require.NoError(t, err)
	assert.Equal(t, "http://gw/export/"+id, link)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /export/{id}", NewExportHandler(exporter).HandleExport)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `xmlns="http://www.w3.org/2000/svg"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackendProxy(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "backend:"+r.URL.Path)
	}))
	defer backendSrv.Close()

	proxy, err := NewBackendProxy(backendSrv.URL)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ws1/ProjectService/getFileInfo", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "backend:/ws1/ProjectService/getFileInfo", rec.Body.String())

	_, err = NewBackendProxy("localhost")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func newFakeBackend(t *testing.T) *backendtest.Server {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	srv.Reply("/PluginService/getPlugins", []string{})
	srv.Reply("/ws1/ProjectService/getFileInfo", backend.FileInfo{ID: "main.cpp", Name: "main.cpp", Type: "CPP", Path: "/src/main.cpp"})
	srv.Reply("/ws1/ProjectService/getFileContent", "int main() {}\n")
	srv.Reply("/ws1/ProjectService/getParentFiles", []backend.FileInfo{})
	return srv
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	resp *http.Response
}

func dialSession(t *testing.T, h *SessionHandler, query string) *wsClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn, resp: resp}
}

// waitFor reads messages until match accepts one.
func (c *wsClient) waitFor(match func(wsOutbound) bool) wsOutbound {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		var out wsOutbound
		if err := c.conn.ReadJSON(&out); err != nil {
			c.t.Fatalf("read: %v", err)
		}
		if match(out) {
			return out
		}
	}
}

func (c *wsClient) send(msg any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func isType(typ string) func(wsOutbound) bool {
	return func(o wsOutbound) bool { return o.Type == typ }
}

func isRegion(id string) func(wsOutbound) bool {
	return func(o wsOutbound) bool { return o.Type == "region" && o.Region == id }
}

func TestSessionBridgeOpenFile(t *testing.T) {
	srv := newFakeBackend(t)
	h := NewSessionHandler(session.Deps{Services: service.NewSet(srv.URL, srv.Client())})
	c := dialSession(t, h, "workspace=ws1")

	var gotCookie bool
	for _, ck := range c.resp.Cookies() {
		gotCookie = gotCookie || ck.Name == ClientCookie
	}
	assert.True(t, gotCookie, "upgrade response must name the client")

	sub := c.waitFor(isType("subscribed"))
	assert.Equal(t, "ws1", sub.ID)
	layout := c.waitFor(isRegion("layout"))
	assert.Contains(t, layout.HTML, "region-filemanager")

	c.send(map[string]any{"type": "publish", "topic": "openFile", "payload": map[string]string{"fileId": "main.cpp"}})
	// The hash and the loaded text travel separately and may come in any order.
	var hash, text wsOutbound
	c.waitFor(func(o wsOutbound) bool {
		switch {
		case o.Type == "hash":
			hash = o
		case o.Type == "region" && o.Region == "text":
			text = o
		}
		return hash.Type != "" && text.Type != ""
	})
	assert.Contains(t, hash.Hash, "fid=main.cpp")
	assert.Contains(t, text.HTML, "int main()")
}

func TestSessionBridgeAppliesHashChangesInOrder(t *testing.T) {
	srv := newFakeBackend(t)
	h := NewSessionHandler(session.Deps{Services: service.NewSet(srv.URL, srv.Client())})
	sessions := make(chan *session.Session, 1)
	h.New = func(ctx context.Context, deps session.Deps) (*session.Session, error) {
		s, err := session.New(ctx, deps)
		if err == nil {
			sessions <- s
		}
		return s, err
	}
	c := dialSession(t, h, "workspace=ws1")
	c.waitFor(isRegion("layout"))
	sess := <-sessions

	var last string
	for i := 0; i < 30; i++ {
		last = fmt.Sprintf("center=text&fid=f%d", i)
		c.send(map[string]string{"type": "hashchange", "hash": last})
	}
	// The bad history jump queues behind the hashchanges, so its error
	// arrives once all of them were applied.
	c.send(map[string]string{"type": "history", "nodeId": "x"})
	c.waitFor(func(o wsOutbound) bool {
		return o.Type == "error" && strings.Contains(o.Message, `history node "x"`)
	})

	assert.Equal(t, last, sess.State().Hash())
}

func TestSessionBridgeRestoresHash(t *testing.T) {
	srv := newFakeBackend(t)
	h := NewSessionHandler(session.Deps{Services: service.NewSet(srv.URL, srv.Client())})
	c := dialSession(t, h, "workspace=ws1&hash=center%3Dtext%26fid%3Dmain.cpp")

	text := c.waitFor(isRegion("text"))
	assert.Contains(t, text.HTML, "int main()")
}

func TestSessionBridgeErrors(t *testing.T) {
	srv := newFakeBackend(t)
	h := NewSessionHandler(session.Deps{Services: service.NewSet(srv.URL, srv.Client())})
	c := dialSession(t, h, "workspace=ws1")
	c.waitFor(isRegion("layout"))

	c.send(map[string]string{"type": "ping"})
	c.waitFor(isType("pong"))

	c.send(map[string]string{"type": "teleport"})
	e := c.waitFor(isType("error"))
	assert.Equal(t, "invalid_argument", e.Code)

	c.send(map[string]string{"type": ""})
	e = c.waitFor(isType("error"))
	assert.Equal(t, "type is required", e.Message)
}

func TestSessionBridgeReportsFailedSession(t *testing.T) {
	h := NewSessionHandler(session.Deps{})
	h.New = func(context.Context, session.Deps) (*session.Session, error) {
		return nil, errors.New("backend down")
	}
	c := dialSession(t, h, "")
	e := c.waitFor(isType("error"))
	assert.Equal(t, "unavailable", e.Code)
	assert.Equal(t, "backend down", e.Message)
}

func TestPeerQueueDropsOldest(t *testing.T) {
	p := newWSPeer("#a=1")
	assert.Equal(t, "a=1", p.Hash())
	for i := 0; i < wsQueueSize+5; i++ {
		p.Notify("n", string(rune('a'+i%26)))
	}
	assert.Len(t, p.out, wsQueueSize)

	first := <-p.out
	raw, err := json.Marshal(first)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notify","kind":"n","message":"f"}`, string(raw))
}

func TestPeerKeepsLatestHashWhenQueueIsFull(t *testing.T) {
	p := newWSPeer("")
	for i := 0; i < wsQueueSize+5; i++ {
		p.Region("text", "x")
	}
	p.PushHash("fid=a")
	p.PushHash("fid=b")
	for i := 0; i < wsQueueSize; i++ {
		p.Region("text", "y")
	}
	assert.Equal(t, "fid=b", p.Hash())
	assert.Len(t, p.hashReady, 1)

	hash, ok := p.takeHash()
	require.True(t, ok)
	assert.Equal(t, "fid=b", hash)
	_, ok = p.takeHash()
	assert.False(t, ok, "coalesced hashes are sent once")
}
