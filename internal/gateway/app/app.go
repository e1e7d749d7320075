package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codecompass/internal/diagram"
	"codecompass/internal/gateway/config"
	"codecompass/internal/gateway/handler"
	"codecompass/internal/gateway/server"
	"codecompass/internal/service"
	"codecompass/internal/session"
)

const backendTimeout = 30 * time.Second

type App struct {
	server *server.Server
	stores *gatewayStores
}

// New wires the gateway from cfg. Pass nil to load the config from the
// environment.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// Dependencies
	stores, err := initStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	services := service.NewSet(cfg.BackendURL, &http.Client{Timeout: backendTimeout})
	publicURL := strings.TrimRight(cfg.PublicURL, "/")

	layout := cfg.Layout
	sessionHandler := handler.NewSessionHandler(session.Deps{
		Services:     services,
		LocalState:   stores.localState,
		Exports:      stores.exports,
		ExportURL:    publicURL,
		Overrides:    layout.Overrides(),
		Codec:        layout.Codec(),
		Themes:       layout.Themes,
		DefaultTheme: layout.DefaultTheme,
		HistorySize:  layout.HistorySize,
		DiagramCache: layout.DiagramCache,
	})
	exportHandler := handler.NewExportHandler(diagram.NewExporter(stores.exports, publicURL))

	proxy, err := handler.NewBackendProxy(cfg.BackendURL)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	// Routing & Server
	mux := server.NewMux(server.Handlers{
		Page:    handler.NewPageHandler(""),
		Session: sessionHandler,
		Export:  exportHandler,
		Proxy:   proxy,
	})
	srv := server.New(cfg.Addr, mux)

	return &App{
		server: srv,
		stores: stores,
	}, nil
}

func (a *App) Addr() string { return a.server.Addr() }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.stores.Close(); err == nil {
		err = cerr
	}
	return err
}
