package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/dinelog/internal/bootstrap"
	"github.com/kirillkom/dinelog/internal/config"
	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
	"github.com/kirillkom/dinelog/internal/core/usecase"
	"github.com/kirillkom/dinelog/internal/observability/logging"
	"github.com/kirillkom/dinelog/internal/observability/metrics"
)

const serviceName = "worker"

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
	if app.Queue == nil {
		slog.Error("worker_requires_queue", "hint", "set NATS_URL")
		os.Exit(1)
	}

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	app.ProcessUC.Observe(func(_ domain.ItemNameBatch, items []domain.NormalizedItem, elapsed time.Duration, err error) {
		workerMetrics.FinishBatch(serviceName, elapsed, err)
		matched := usecase.CountMatched(items)
		workerMetrics.RecordNormalized(serviceName, matched, len(items)-matched)
	})

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "item_name_backend", cfg.ItemNameBackend)
	err = app.Queue.SubscribeItemNameBatches(ctx, batchHandler(app.ProcessUC, workerMetrics))
	if err != nil {
		slog.Error("worker_subscribe_error", "error", err)
		os.Exit(1)
	}
}

func batchHandler(processor ports.ItemNameBatchProcessor, workerMetrics *metrics.WorkerMetrics) func(context.Context, domain.ItemNameBatch) error {
	return func(ctx context.Context, batch domain.ItemNameBatch) error {
		if !batch.SubmittedAt.IsZero() {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(batch.SubmittedAt))
		}
		workerMetrics.StartBatch(serviceName, len(batch.Names))

		processCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		return processor.ProcessBatch(processCtx, batch)
	}
}
