package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

// BatchObserver is called once per processed batch with the items normalized
// before any failure.
type BatchObserver func(batch domain.ItemNameBatch, items []domain.NormalizedItem, elapsed time.Duration, err error)

// ProcessItemNameBatchUseCase normalizes one queued batch in order.
type ProcessItemNameBatchUseCase struct {
	normalizer ports.ItemNameNormalizer
	observer   BatchObserver
}

func NewProcessItemNameBatchUseCase(normalizer ports.ItemNameNormalizer) *ProcessItemNameBatchUseCase {
	return &ProcessItemNameBatchUseCase{normalizer: normalizer}
}

func (uc *ProcessItemNameBatchUseCase) Observe(fn BatchObserver) {
	uc.observer = fn
}

func (uc *ProcessItemNameBatchUseCase) ProcessBatch(ctx context.Context, batch domain.ItemNameBatch) error {
	started := time.Now()
	items, err := uc.normalizer.NormalizeAll(ctx, batch.Names)
	if uc.observer != nil {
		uc.observer(batch, items, time.Since(started), err)
	}
	if err != nil {
		return fmt.Errorf("normalize batch review=%s after %d/%d names: %w", batch.ReviewID, len(items), len(batch.Names), err)
	}

	matched := CountMatched(items)
	slog.Info("item_name_batch_processed",
		"review_id", batch.ReviewID,
		"names", len(items),
		"matched", matched,
		"new_clusters", len(items)-matched,
	)
	return nil
}

// CountMatched reports how many items joined an existing cluster.
func CountMatched(items []domain.NormalizedItem) int {
	matched := 0
	for _, item := range items {
		if item.Matched {
			matched++
		}
	}
	return matched
}
