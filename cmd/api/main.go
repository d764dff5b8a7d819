package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sony/gobreaker/v2"

	httpadapter "github.com/kirillkom/dinelog/internal/adapters/http"
	"github.com/kirillkom/dinelog/internal/bootstrap"
	"github.com/kirillkom/dinelog/internal/config"
	"github.com/kirillkom/dinelog/internal/observability/logging"
	"github.com/kirillkom/dinelog/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app.Executor.Observe(func(operation string, _, to gobreaker.State) {
		httpMetrics.RecordBreakerTransition(serviceName, operation, to.String())
	})

	router := httpadapter.NewRouter(cfg, app.ResolveUC, app.FilterUC, app.NormalizeUC, app.Submitter(), app.SessionsUC).
		WithMetrics(httpMetrics).
		Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "store_backend", cfg.StoreBackend, "llm_provider", cfg.LLMProvider)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
