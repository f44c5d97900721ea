package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-defender/internal/platform/web"
	"github.com/vovakirdan/math-defender/internal/storage"
)

var flagWebAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the web socket server",
	Long: `Start an HTTP server for browser clients.

Endpoints:
  GET /ws?codec=json|msgpack&seed=N   - Play one game over a web socket
  GET /scores?filter=+&tier=easy      - Best sessions and totals of a category
  GET /sessions?limit=20              - Latest sessions of every category
  GET /stats                          - Totals of every category played
  GET /healthz                        - Liveness probe

Clients send {"type": "filter|tier|start|restart|answer|abort", "value": ...}
and receive snapshot frames at web.broadcast_hz plus a result frame for
every command. With codec=msgpack the same messages travel as binary frames.

Examples:
  defender web
  defender web --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	Run:  runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagWebAddr, "addr", web.DefaultServerConfig().Address, "HTTP listen address (env DEFENDER_WEB_ADDR)")
}

func runWeb(cmd *cobra.Command, _ []string) {
	defender, source := loadConfig()
	logger, err := newLogger(os.Stderr)
	if err != nil {
		fail(err)
	}

	cfg := web.ServerConfig{Address: flagWebAddr, TickRate: flagFPS}
	if !cmd.Flags().Changed("addr") && env.WebAddr != "" {
		cfg.Address = env.WebAddr
	}

	store, err := storage.Open()
	if err != nil {
		logger.Warn("could not open session history", "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	server := web.NewServer(cfg, defender, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("config loaded", "source", source)
	if err := server.ListenAndServe(ctx); err != nil {
		fail(err)
	}
}
