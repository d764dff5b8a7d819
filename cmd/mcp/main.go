package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	mcpadapter "github.com/kirillkom/dinelog/internal/adapters/mcp"
	"github.com/kirillkom/dinelog/internal/bootstrap"
	"github.com/kirillkom/dinelog/internal/config"
	"github.com/kirillkom/dinelog/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol.
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := mcpadapter.NewServer(app.ResolveUC, app.FilterUC, app.NormalizeUC)
	if err := server.Serve(); err != nil {
		slog.Error("mcp_server_error", "error", err)
	}
}
