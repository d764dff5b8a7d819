package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

type ResolveOptions struct {
	// ParallelReads loads all places and reviews concurrently on the
	// full-text path.
	ParallelReads bool
}

// ResolveQueryUseCase routes a free-text query through classification and
// then the structured, full-text or hybrid strategy.
type ResolveQueryUseCase struct {
	classifier ports.QueryClassifier
	executor   ports.StructuredFilter
	ranker     ports.RelevanceRanker
	places     ports.PlaceRepository
	reviews    ports.ReviewRepository
	sessions   ports.SessionStore
	opts       ResolveOptions
	now        func() time.Time
}

func NewResolveQueryUseCase(
	classifier ports.QueryClassifier,
	executor ports.StructuredFilter,
	ranker ports.RelevanceRanker,
	places ports.PlaceRepository,
	reviews ports.ReviewRepository,
	sessions ports.SessionStore,
	opts ResolveOptions,
) *ResolveQueryUseCase {
	return &ResolveQueryUseCase{
		classifier: classifier,
		executor:   executor,
		ranker:     ranker,
		places:     places,
		reviews:    reviews,
		sessions:   sessions,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ResolveQueryUseCase) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.QueryResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve query", errors.New("query is required"))
	}

	classification, err := uc.classifier.Classify(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("classify query: %w", err)
	}
	if !classification.OK() {
		slog.Warn("query_classification_failed", "reason", classification.Failure.Reason)
		return nil, domain.WrapError(domain.ErrClassificationParse, "classify query", classification.Failure)
	}

	parsed := classification.Query
	var result *domain.QueryResult
	switch parsed.Type {
	case domain.QueryTypeStructured:
		result, err = uc.executor.Filter(ctx, parsed.Parameters.ToStructuredQuery(req.Center))
	case domain.QueryTypeFullText:
		result, err = uc.resolveFullText(ctx, query)
	case domain.QueryTypeHybrid:
		result, err = uc.resolveHybrid(ctx, query, parsed.Parameters.ToStructuredQuery(req.Center))
	default:
		return nil, domain.WrapError(domain.ErrClassificationParse, "classify query", fmt.Errorf("unknown query type %q", parsed.Type))
	}
	if err != nil {
		return nil, err
	}
	result.Type = parsed.Type

	uc.recordSession(ctx, req.SessionID, query, result)
	return result, nil
}

func (uc *ResolveQueryUseCase) resolveFullText(ctx context.Context, query string) (*domain.QueryResult, error) {
	places, reviews, err := uc.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return uc.rank(ctx, query, domain.RankModeFullText, places, reviews)
}

func (uc *ResolveQueryUseCase) resolveHybrid(ctx context.Context, query string, structured domain.StructuredQuery) (*domain.QueryResult, error) {
	narrowed, err := uc.executor.Filter(ctx, structured)
	if err != nil {
		return nil, err
	}
	return uc.rank(ctx, query, domain.RankModeHybrid, narrowed.Places, narrowed.Reviews)
}

func (uc *ResolveQueryUseCase) rank(
	ctx context.Context,
	query string,
	mode domain.RankMode,
	places []domain.Place,
	reviews []domain.Review,
) (*domain.QueryResult, error) {
	if len(places) == 0 || len(reviews) == 0 {
		return domain.EmptyResult(""), nil
	}

	judgement, err := uc.ranker.Rank(ctx, domain.RankRequest{
		Query:   query,
		Mode:    mode,
		Places:  places,
		Reviews: reviews,
	})
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}
	if !judgement.OK() {
		slog.Warn("relevance_rank_degraded", "mode", string(mode), "reason", judgement.Failure.Reason)
		degraded := domain.EmptyResult("")
		degraded.RankingDegraded = true
		return degraded, nil
	}

	keptPlaces, keptReviews := mergeRanked(places, reviews, judgement)
	return &domain.QueryResult{Places: keptPlaces, Reviews: keptReviews}, nil
}

func (uc *ResolveQueryUseCase) loadAll(ctx context.Context) ([]domain.Place, []domain.Review, error) {
	var (
		places  []domain.Place
		reviews []domain.Review
	)
	loadPlaces := func(ctx context.Context) error {
		var err error
		places, err = uc.places.FindPlaces(ctx, domain.PlaceCriteria{})
		if err != nil {
			return queryExecutionError("find places", err)
		}
		return nil
	}
	loadReviews := func(ctx context.Context) error {
		var err error
		reviews, err = uc.reviews.FindReviews(ctx, domain.ReviewCriteria{})
		if err != nil {
			return queryExecutionError("find reviews", err)
		}
		return nil
	}

	if !uc.opts.ParallelReads {
		if err := loadPlaces(ctx); err != nil {
			return nil, nil, err
		}
		if err := loadReviews(ctx); err != nil {
			return nil, nil, err
		}
		return places, reviews, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loadPlaces(gctx) })
	g.Go(func() error { return loadReviews(gctx) })
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return places, reviews, nil
}

func (uc *ResolveQueryUseCase) recordSession(ctx context.Context, sessionID, query string, result *domain.QueryResult) {
	if uc.sessions == nil || strings.TrimSpace(sessionID) == "" {
		return
	}
	now := uc.now()
	turns := []domain.SessionMessage{
		{ID: uuid.NewString(), SessionID: sessionID, Role: domain.RoleUser, Content: query, CreatedAt: now},
		{ID: uuid.NewString(), SessionID: sessionID, Role: domain.RoleAssistant, Content: summarizeResult(result), CreatedAt: now},
	}
	for _, turn := range turns {
		if err := uc.sessions.Append(ctx, turn); err != nil {
			slog.Warn("session_append_failed", "session_id", sessionID, "error", err.Error())
			return
		}
	}
}

func summarizeResult(result *domain.QueryResult) string {
	ids := make([]string, 0, len(result.Places))
	for _, p := range result.Places {
		ids = append(ids, p.PlaceID)
	}
	summary := fmt.Sprintf("%s: %d places, %d reviews", result.Type, len(result.Places), len(result.Reviews))
	if len(ids) > 0 {
		summary += " [" + strings.Join(ids, ", ") + "]"
	}
	if result.RankingDegraded {
		summary += " (ranking degraded)"
	}
	return summary
}
