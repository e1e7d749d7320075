package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codecompass/internal/gateway/config"
)

var (
	backendFlag string
	layoutFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "webgui",
	Short: "CodeCompass web front-end gateway",
	Long: `webgui serves the CodeCompass browser front-end. Each browser tab gets a
server-side session that talks to the analysis backend and pushes rendered
panels over a websocket.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "",
		"Backend base URL (default: BACKEND_URL or http://localhost:6251)")
	rootCmd.PersistentFlags().StringVar(&layoutFlag, "layout", "",
		"Layout file (yaml, toml or json) with module overrides and themes")
}

// loadConfig reads the environment and lets persistent flags override it.
// Flags > environment > .env > defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backendFlag != "" {
		cfg.BackendURL = backendFlag
	}
	if layoutFlag != "" {
		cfg.LayoutFile = layoutFlag
		if err := cfg.LoadLayout(); err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
	}
	return cfg, nil
}
