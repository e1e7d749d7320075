package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ClientCookie names the browser; persisted local state is keyed by it.
const ClientCookie = "cc_client"

const clientCookieMaxAge = 365 * 24 * 60 * 60

// clientID returns the id in the request cookie, or a fresh one.
func clientID(r *http.Request) (string, bool) {
	if c, err := r.Cookie(ClientCookie); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
			return id.String(), false
		}
	}
	return uuid.NewString(), true
}

func clientCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   clientCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func ensureClientID(w http.ResponseWriter, r *http.Request) string {
	id, fresh := clientID(r)
	if fresh {
		http.SetCookie(w, clientCookie(id))
	}
	return id
}

// ensureClientIDHeader is ensureClientID for the websocket upgrade, which
// takes its response headers separately.
func ensureClientIDHeader(h http.Header, r *http.Request) string {
	id, fresh := clientID(r)
	if fresh {
		h.Add("Set-Cookie", clientCookie(id).String())
	}
	return id
}
