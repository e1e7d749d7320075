package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Service names as exposed by the backend.
const (
	ProjectService   = "ProjectService"
	SearchService    = "SearchService"
	GitService       = "GitService"
	MetricsService   = "MetricsService"
	PluginService    = "PluginService"
	WorkspaceService = "WorkspaceService"
)

// LanguageServiceName maps a language plugin name ("cpp") to its service name ("CppService").
func LanguageServiceName(plugin string) string {
	p := strings.TrimSpace(plugin)
	if p == "" {
		return ""
	}
	return strings.ToUpper(p[:1]) + p[1:] + "Service"
}

// Transport binds a client to one service endpoint.
type Transport struct {
	HTTPClient connect.HTTPClient
	// URL is the service endpoint, e.g. http://backend/<workspace>/ProjectService.
	URL     string
	Service string
}

func (t Transport) httpClient() connect.HTTPClient {
	if t.HTTPClient == nil {
		return http.DefaultClient
	}
	return t.HTTPClient
}

// Empty is the request of parameterless procedures.
type Empty struct{}

type unary[Req, Res any] struct {
	service string
	method  string
	client  *connect.Client[Req, Res]
}

func newUnary[Req, Res any](t Transport, method string) *unary[Req, Res] {
	url := strings.TrimRight(t.URL, "/") + "/" + method
	return &unary[Req, Res]{
		service: t.Service,
		method:  method,
		client:  connect.NewClient[Req, Res](t.httpClient(), url, connect.WithCodec(jsonCodec{})),
	}
}

func (u *unary[Req, Res]) call(ctx context.Context, req *Req) (*Res, error) {
	resp, err := u.client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", u.service, u.method, err)
	}
	return resp.Msg, nil
}
