package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codecompass/internal/gateway/app"
	"codecompass/internal/gateway/config"
)

var (
	servePort      string
	servePublicURL string
	serveBoltPath  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "Port or address to listen on (default: PORT)")
	serveCmd.Flags().StringVar(&servePublicURL, "public-url", "", "Public base URL used in export links")
	serveCmd.Flags().StringVar(&serveBoltPath, "state-file", "", "bbolt file for client state when no DATABASE_URL is set")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Addr = config.NormalizeAddr(servePort)
	}
	if servePublicURL != "" {
		cfg.PublicURL = servePublicURL
	}
	if serveBoltPath != "" {
		cfg.BoltPath = serveBoltPath
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			return err
		}
		return nil
	case sig := <-shutdown:
		log.Printf("Received %s, shutting down server...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}
