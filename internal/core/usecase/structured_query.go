package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/filter"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

var errGenericStore = errors.New("store query failed")

// StructuredQueryUseCase runs the two-pass filter: reviews first, then the
// places they reference, then reviews again against the surviving places.
type StructuredQueryUseCase struct {
	places  ports.PlaceRepository
	reviews ports.ReviewRepository
	now     func() time.Time
}

func NewStructuredQueryUseCase(places ports.PlaceRepository, reviews ports.ReviewRepository) *StructuredQueryUseCase {
	return &StructuredQueryUseCase{
		places:  places,
		reviews: reviews,
		now:     time.Now,
	}
}

func (uc *StructuredQueryUseCase) Filter(ctx context.Context, query domain.StructuredQuery) (*domain.QueryResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if query.EmptyDateRange() {
		return domain.EmptyResult(domain.QueryTypeStructured), nil
	}

	reviews, err := uc.reviews.FindReviews(ctx, domain.ReviewCriteriaFor(query))
	if err != nil {
		return nil, queryExecutionError("find reviews", err)
	}
	if len(reviews) == 0 {
		return domain.EmptyResult(domain.QueryTypeStructured), nil
	}

	places, err := uc.places.FindPlaces(ctx, domain.PlaceCriteriaFor(query, filter.DistinctPlaceIDs(reviews)))
	if err != nil {
		return nil, queryExecutionError("find places", err)
	}
	if query.OpenNow {
		places = filter.Places(places, filter.OpenAt(uc.now()))
	}

	places, reviews = filter.Rejoin(places, reviews)
	return &domain.QueryResult{
		Type:    domain.QueryTypeStructured,
		Places:  places,
		Reviews: reviews,
	}, nil
}

// queryExecutionError logs the store failure and hides it behind a generic
// message.
func queryExecutionError(op string, cause error) error {
	slog.Error("structured_query_failed", "operation", op, "error", cause.Error())
	return domain.WrapError(domain.ErrQueryExecution, op, errGenericStore)
}
