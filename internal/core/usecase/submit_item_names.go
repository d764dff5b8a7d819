package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

// SubmitItemNamesUseCase queues item names for the normalization worker.
type SubmitItemNamesUseCase struct {
	queue ports.ItemNameQueue
	now   func() time.Time
}

func NewSubmitItemNamesUseCase(queue ports.ItemNameQueue) *SubmitItemNamesUseCase {
	return &SubmitItemNamesUseCase{
		queue: queue,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SubmitItemNamesUseCase) Submit(ctx context.Context, batch domain.ItemNameBatch) (*domain.ItemNameBatch, error) {
	names := make([]string, 0, len(batch.Names))
	for _, name := range batch.Names {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit item names", errors.New("at least one item name is required"))
	}

	queued := &domain.ItemNameBatch{
		ReviewID:    strings.TrimSpace(batch.ReviewID),
		Names:       names,
		SubmittedAt: uc.now(),
	}
	if err := uc.queue.PublishItemNameBatch(ctx, *queued); err != nil {
		return nil, fmt.Errorf("publish item name batch: %w", err)
	}
	return queued, nil
}

// SubmitReview enqueues the item names of a review, if it has any.
func (uc *SubmitItemNamesUseCase) SubmitReview(ctx context.Context, review domain.Review) (*domain.ItemNameBatch, error) {
	names := review.ItemNames()
	if len(names) == 0 {
		return nil, nil
	}
	return uc.Submit(ctx, domain.ItemNameBatch{ReviewID: review.ID, Names: names})
}
