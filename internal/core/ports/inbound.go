package ports

import (
	"context"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

// QueryResolver is the inbound contract for natural-language query resolution.
type QueryResolver interface {
	Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.QueryResult, error)
}

// StructuredFilter is the inbound contract for typed review/place filtering.
type StructuredFilter interface {
	Filter(ctx context.Context, query domain.StructuredQuery) (*domain.QueryResult, error)
}

// ItemNameNormalizer maps raw item names onto canonical names.
type ItemNameNormalizer interface {
	Normalize(ctx context.Context, raw string) (domain.NormalizedItem, error)
	NormalizeAll(ctx context.Context, raws []string) ([]domain.NormalizedItem, error)
}

// ItemNameSubmitter queues item names for asynchronous normalization.
type ItemNameSubmitter interface {
	Submit(ctx context.Context, batch domain.ItemNameBatch) (*domain.ItemNameBatch, error)
}

// ItemNameBatchProcessor normalizes a queued batch.
type ItemNameBatchProcessor interface {
	ProcessBatch(ctx context.Context, batch domain.ItemNameBatch) error
}

// SessionReader exposes recorded query sessions.
type SessionReader interface {
	History(ctx context.Context, sessionID string) ([]domain.SessionMessage, error)
	Reset(ctx context.Context, sessionID string) error
}
