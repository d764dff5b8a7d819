package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

func TestSubmitItemNamesDropsBlanksAndPublishesRawNames(t *testing.T) {
	queue := &itemNameQueueFake{}
	uc := NewSubmitItemNamesUseCase(queue)

	batch, err := uc.Submit(context.Background(), domain.ItemNameBatch{ReviewID: " r1 ", Names: []string{" Fries ", "", "Shake"}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if batch.ReviewID != "r1" || len(batch.Names) != 2 || batch.SubmittedAt.IsZero() {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if len(queue.published) != 1 || queue.published[0].Names[0] != " Fries " {
		t.Fatalf("unexpected published %+v", queue.published)
	}
}

func TestSubmitItemNamesRejectsEmptyBatch(t *testing.T) {
	uc := NewSubmitItemNamesUseCase(&itemNameQueueFake{})
	_, err := uc.Submit(context.Background(), domain.ItemNameBatch{Names: []string{" "}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSubmitItemNamesPublishError(t *testing.T) {
	uc := NewSubmitItemNamesUseCase(&itemNameQueueFake{err: errors.New("nats down")})
	if _, err := uc.Submit(context.Background(), domain.ItemNameBatch{Names: []string{"x"}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSubmitReviewWithoutItemsIsNoop(t *testing.T) {
	queue := &itemNameQueueFake{}
	uc := NewSubmitItemNamesUseCase(queue)
	batch, err := uc.SubmitReview(context.Background(), domain.Review{ID: "r1"})
	if err != nil || batch != nil || len(queue.published) != 0 {
		t.Fatalf("expected no-op, got batch=%v err=%v", batch, err)
	}
}

func TestProcessItemNameBatchNormalizesInOrder(t *testing.T) {
	store := &itemNameStoreFake{}
	embedder := &embedderFake{vectors: map[string][]float32{"Fries": {1, 0}, "fries": {1, 0.01}}}
	uc := NewProcessItemNameBatchUseCase(NewNormalizeItemNameUseCase(embedder, store, NormalizeOptions{}))

	if err := uc.ProcessBatch(context.Background(), domain.ItemNameBatch{Names: []string{"Fries", "fries"}}); err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(store.records) != 2 || store.records[1].StandardizedName != "Fries" {
		t.Fatalf("unexpected corpus %+v", store.records)
	}
}

func TestProcessItemNameBatchNotifiesObserver(t *testing.T) {
	embedder := &embedderFake{vectors: map[string][]float32{"Fries": {1, 0}, "fries": {1, 0.01}, "Shake": {0, 1}}}
	uc := NewProcessItemNameBatchUseCase(NewNormalizeItemNameUseCase(embedder, &itemNameStoreFake{}, NormalizeOptions{}))

	var observed []domain.NormalizedItem
	calls := 0
	uc.Observe(func(_ domain.ItemNameBatch, items []domain.NormalizedItem, _ time.Duration, err error) {
		calls++
		observed = items
		if err != nil {
			t.Fatalf("unexpected observed error %v", err)
		}
	})
	if err := uc.ProcessBatch(context.Background(), domain.ItemNameBatch{Names: []string{"Fries", "fries", "Shake"}}); err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if calls != 1 || len(observed) != 3 || CountMatched(observed) != 1 {
		t.Fatalf("unexpected observation calls=%d items=%+v", calls, observed)
	}
}

func TestProcessItemNameBatchPropagatesEmbeddingError(t *testing.T) {
	uc := NewProcessItemNameBatchUseCase(NewNormalizeItemNameUseCase(&embedderFake{err: errors.New("down")}, &itemNameStoreFake{}, NormalizeOptions{}))
	err := uc.ProcessBatch(context.Background(), domain.ItemNameBatch{Names: []string{"x"}})
	if !domain.IsKind(err, domain.ErrEmbedding) {
		t.Fatalf("expected embedding error, got %v", err)
	}
}

func TestSessionHistory(t *testing.T) {
	store := newSessionStoreFake()
	uc := NewSessionHistoryUseCase(store)

	if _, err := uc.History(context.Background(), "missing"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_ = store.Append(context.Background(), domain.SessionMessage{SessionID: "s", Content: "hi"})
	msgs, err := uc.History(context.Background(), "s")
	if err != nil || len(msgs) != 1 {
		t.Fatalf("unexpected history %v err=%v", msgs, err)
	}
	if err := uc.Reset(context.Background(), "s"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := uc.Reset(context.Background(), ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
