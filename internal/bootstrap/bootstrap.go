package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/dinelog/internal/config"
	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
	"github.com/kirillkom/dinelog/internal/core/usecase"
	"github.com/kirillkom/dinelog/internal/infrastructure/llm"
	"github.com/kirillkom/dinelog/internal/infrastructure/llm/embedcache"
	"github.com/kirillkom/dinelog/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/dinelog/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/dinelog/internal/infrastructure/queue/nats"
	"github.com/kirillkom/dinelog/internal/infrastructure/repository/memory"
	"github.com/kirillkom/dinelog/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/dinelog/internal/infrastructure/resilience"
	"github.com/kirillkom/dinelog/internal/infrastructure/session/redis"
	"github.com/kirillkom/dinelog/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config   config.Config
	Executor *resilience.Executor

	Places  ports.PlaceRepository
	Reviews ports.ReviewRepository
	Queue   ports.ItemNameQueue

	ResolveUC   *usecase.ResolveQueryUseCase
	FilterUC    *usecase.StructuredQueryUseCase
	NormalizeUC *usecase.NormalizeItemNameUseCase
	SubmitUC    *usecase.SubmitItemNamesUseCase
	ProcessUC   *usecase.ProcessItemNameBatchUseCase
	SessionsUC  *usecase.SessionHistoryUseCase

	closers []func()
}

func New(ctx context.Context, cfg config.Config) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	app.Executor = resilience.NewExecutor(resilienceConfig(cfg))

	var db *sql.DB
	if cfg.UsesPostgres() {
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		app.onClose(func() { _ = db.Close() })
		if err = postgres.EnsureSchema(ctx, db); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	var memStore *memory.Store
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		app.Places = postgres.NewPlaceRepository(db)
		app.Reviews = postgres.NewReviewRepository(db)
	default:
		memStore = memory.NewStore()
		app.Places = memStore
		app.Reviews = memStore
	}

	itemNames, err := newItemNameStore(cfg, db)
	if err != nil {
		return nil, err
	}
	sessions, err := app.newSessionStore(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	completer, embedder, err := app.newModelClients(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EmbedCacheSize > 0 {
		cached, cacheErr := embedcache.New(embedder, cfg.EmbedCacheSize)
		if cacheErr != nil {
			return nil, fmt.Errorf("init embedding cache: %w", cacheErr)
		}
		embedder = cached
	}

	if strings.TrimSpace(cfg.NATSURL) != "" {
		queue, queueErr := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: app.Executor,
		})
		if queueErr != nil {
			return nil, fmt.Errorf("init message queue: %w", queueErr)
		}
		app.onClose(queue.Close)
		app.Queue = queue
		app.SubmitUC = usecase.NewSubmitItemNamesUseCase(queue)
	}

	app.FilterUC = usecase.NewStructuredQueryUseCase(app.Places, app.Reviews)
	app.ResolveUC = usecase.NewResolveQueryUseCase(
		llm.NewQueryClassifier(completer),
		app.FilterUC,
		llm.NewRelevanceRanker(completer),
		app.Places,
		app.Reviews,
		sessions,
		usecase.ResolveOptions{ParallelReads: cfg.ResolveParallelReads},
	)
	app.NormalizeUC = usecase.NewNormalizeItemNameUseCase(embedder, itemNames, usecase.NormalizeOptions{
		Serialize:  cfg.NormalizeSerialize,
		BatchEmbed: cfg.NormalizeBatchEmbed,
	})
	app.ProcessUC = usecase.NewProcessItemNameBatchUseCase(app.NormalizeUC)
	app.SessionsUC = usecase.NewSessionHistoryUseCase(sessions)

	if path := strings.TrimSpace(cfg.SeedFile); path != "" {
		if memStore != nil {
			err = memStore.LoadSeedFile(ctx, path)
		} else {
			err = app.importSeedFile(ctx, path)
		}
		if err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		slog.Info("seed_file_loaded", "path", path, "store_backend", cfg.StoreBackend)
	}

	return app, nil
}

// Submitter returns nil when no queue is configured, so callers can test the
// interface value directly.
func (a *App) Submitter() ports.ItemNameSubmitter {
	if a.SubmitUC == nil {
		return nil
	}
	return a.SubmitUC
}

// Import upserts every place and review of seed. With a queue configured the
// item names of each review are submitted for normalization.
func (a *App) Import(ctx context.Context, seed memory.Seed) (ImportStats, error) {
	return a.upsertSeed(ctx, seed, a.SubmitUC != nil)
}

func (a *App) upsertSeed(ctx context.Context, seed memory.Seed, submit bool) (ImportStats, error) {
	var stats ImportStats
	for _, place := range seed.Places {
		if err := a.Places.UpsertPlace(ctx, place); err != nil {
			return stats, fmt.Errorf("upsert place %s: %w", place.PlaceID, err)
		}
		stats.Places++
	}
	for _, review := range seed.Reviews {
		if err := a.Reviews.UpsertReview(ctx, review); err != nil {
			return stats, fmt.Errorf("upsert review %s: %w", review.ID, err)
		}
		stats.Reviews++
		if !submit {
			continue
		}
		batch, err := a.SubmitUC.SubmitReview(ctx, review)
		if err != nil {
			return stats, fmt.Errorf("submit item names for review %s: %w", review.ID, err)
		}
		if batch != nil {
			stats.Batches++
		}
	}
	return stats, nil
}

type ImportStats struct {
	Places  int
	Reviews int
	Batches int
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *App) importSeedFile(ctx context.Context, path string) error {
	seed, err := memory.ReadSeedFile(path)
	if err != nil {
		return err
	}
	_, err = a.upsertSeed(ctx, seed, false)
	return err
}

func (a *App) newModelClients(ctx context.Context, cfg config.Config) (ports.ChatCompleter, ports.Embedder, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiGenModel, cfg.GeminiEmbedModel, a.Executor)
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini client: %w", err)
		}
		return gemini.NewChatCompleter(client), gemini.NewEmbedder(client), nil
	default:
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.WithExecutor(a.Executor))
		return ollama.NewChatCompleter(client), ollama.NewEmbedder(client), nil
	}
}

func newItemNameStore(cfg config.Config, db *sql.DB) (ports.ItemNameStore, error) {
	switch cfg.ItemNameBackend {
	case config.BackendPostgres:
		return postgres.NewItemNameRepository(db), nil
	case config.BackendQdrant:
		return qdrant.NewItemNameStore(cfg.QdrantURL, cfg.QdrantItemCollection), nil
	case config.BackendMemory, "":
		return memory.NewItemNameStore(), nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "item name backend", fmt.Errorf("unsupported backend %q", cfg.ItemNameBackend))
	}
}

func (a *App) newSessionStore(ctx context.Context, cfg config.Config, db *sql.DB) (ports.SessionStore, error) {
	switch cfg.SessionBackend {
	case config.BackendPostgres:
		return postgres.NewSessionRepository(db), nil
	case config.BackendRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Duration(cfg.SessionTTLSeconds)*time.Second)
		a.onClose(func() { _ = store.Close() })
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return store, nil
	default:
		return memory.NewSessionStore(), nil
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	if cfg.LLMRetryMaxAttempts > 0 {
		rc.RetryMaxAttempts = cfg.LLMRetryMaxAttempts
	}
	rc.BreakerEnabled = cfg.LLMBreakerEnabled
	return rc
}
