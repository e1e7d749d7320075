package handler

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codecompass/internal/session"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsQueueSize = 256
	wsInboxSize = 64
)

// sideMessages neither move the URL state nor the history, so they run
// next to the ordered queue instead of waiting behind it.
var sideMessages = map[string]bool{
	session.MsgExpand:      true,
	session.MsgContextMenu: true,
	session.MsgSuggest:     true,
	session.MsgExport:      true,
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsOutbound struct {
	Type    string `json:"type"`
	Region  string `json:"region,omitempty"`
	HTML    string `json:"html,omitempty"`
	Hash    string `json:"hash,omitempty"`
	Group   string `json:"group,omitempty"`
	ID      string `json:"id,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SessionHandler serves the websocket every page opens. Each connection owns
// one session.
type SessionHandler struct {
	base session.Deps
	// New builds the session; tests swap it.
	New func(ctx context.Context, deps session.Deps) (*session.Session, error)
}

// NewSessionHandler takes the process-wide part of the session deps.
// Workspace, client, location and sink are filled per connection.
func NewSessionHandler(base session.Deps) *SessionHandler {
	return &SessionHandler{base: base, New: session.New}
}

func (h *SessionHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	header := http.Header{}
	clientID := ensureClientIDHeader(header, r)

	conn, err := wsUpgrader.Upgrade(w, r, header)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		log.Printf("ws: set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	peer := newWSPeer(r.URL.Query().Get("hash"))
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-peer.out:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-peer.hashReady:
				hash, ok := peer.takeHash()
				if !ok {
					continue
				}
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(wsOutbound{Type: "hash", Hash: hash}); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	deps := h.base
	deps.Workspace = strings.TrimSpace(r.URL.Query().Get("workspace"))
	deps.ClientID = clientID
	deps.Location = peer
	deps.Sink = peer
	deps.AsyncLoads = true

	sess, err := h.New(ctx, deps)
	if err != nil {
		peer.push(wsOutbound{Type: "error", Code: "unavailable", Message: err.Error()})
		drain(peer, writerDone)
		cancel()
		<-writerDone
		return
	}
	defer sess.Close()

	peer.push(wsOutbound{Type: "subscribed", ID: sess.Workspace()})
	if err := sess.Start(ctx, peer.Hash()); err != nil {
		peer.push(wsOutbound{Type: "error", Code: "internal", Message: err.Error()})
	}

	dispatch := func(in session.Message) {
		if err := sess.Handle(ctx, in); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("ws: %s %s: %v", in.Type, in.Topic, err)
			peer.push(wsOutbound{Type: "error", Code: errorCode(err), Message: err.Error()})
		}
	}

	// Messages that navigate are applied one at a time in arrival order.
	// The views load in the background, so a slow backend does not hold
	// the queue.
	var wg sync.WaitGroup
	inbox := make(chan session.Message, wsInboxSize)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for in := range inbox {
			if ctx.Err() != nil {
				continue
			}
			dispatch(in)
		}
	}()
	defer func() {
		close(inbox)
		wg.Wait()
	}()

	for {
		var in session.Message
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		switch msgType {
		case "":
			peer.push(wsOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
			continue
		case "ping":
			peer.push(wsOutbound{Type: "pong"})
			continue
		case session.MsgHashChange:
			peer.replace(in.Hash)
		}

		if sideMessages[msgType] {
			wg.Add(1)
			go func(in session.Message) {
				defer wg.Done()
				dispatch(in)
			}(in)
			continue
		}
		select {
		case inbox <- in:
		case <-ctx.Done():
			<-writerDone
			return
		}
	}
}

func errorCode(err error) string {
	if errors.Is(err, session.ErrUnsupported) {
		return "invalid_argument"
	}
	return "internal"
}

// drain gives the writer a moment to flush a final error before closing.
func drain(p *wsPeer, done <-chan struct{}) {
	deadline := time.After(wsWriteWait)
	for {
		if len(p.out) == 0 {
			return
		}
		select {
		case <-done:
			return
		case <-deadline:
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// wsPeer is the browser tab as the session sees it: the address bar and the
// regions of the page.
// Hash updates skip the queue: only the latest one is kept until the writer
// sends it, so a full queue never loses the address bar.
type wsPeer struct {
	out       chan wsOutbound
	hashReady chan struct{}

	mu        sync.Mutex
	hash      string
	outHash   string
	hashDirty bool
}

func newWSPeer(hash string) *wsPeer {
	return &wsPeer{
		out:       make(chan wsOutbound, wsQueueSize),
		hashReady: make(chan struct{}, 1),
		hash:      strings.TrimPrefix(hash, "#"),
	}
}

func (p *wsPeer) Hash() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hash
}

func (p *wsPeer) PushHash(hash string) {
	p.mu.Lock()
	p.hash = strings.TrimPrefix(hash, "#")
	p.outHash = hash
	p.hashDirty = true
	p.mu.Unlock()
	select {
	case p.hashReady <- struct{}{}:
	default:
	}
}

// takeHash returns the hash waiting to be sent, if any.
func (p *wsPeer) takeHash() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hashDirty {
		return "", false
	}
	p.hashDirty = false
	return p.outHash, true
}

func (p *wsPeer) replace(hash string) {
	p.mu.Lock()
	p.hash = strings.TrimPrefix(hash, "#")
	p.mu.Unlock()
}

func (p *wsPeer) Region(id string, html template.HTML) {
	p.push(wsOutbound{Type: "region", Region: id, HTML: string(html)})
}

func (p *wsPeer) Select(group, id string) {
	p.push(wsOutbound{Type: "select", Group: group, ID: id})
}

func (p *wsPeer) Notify(kind, msg string) {
	p.push(wsOutbound{Type: "notify", Kind: kind, Message: msg})
}

// push never blocks. A full queue loses its oldest message.
func (p *wsPeer) push(out wsOutbound) {
	select {
	case p.out <- out:
		return
	default:
	}
	select {
	case <-p.out:
	default:
	}
	select {
	case p.out <- out:
	default:
	}
}
