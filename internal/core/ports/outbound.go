package ports

import (
	"context"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

// Embedder builds vectors for item names.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChatCompleter is the raw chat-completion capability.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.CompletionOptions) (string, error)
}

// QueryClassifier classifies a free-text query. Malformed model output is
// reported through Classification.Failure, transport failures as errors.
type QueryClassifier interface {
	Classify(ctx context.Context, query string) (domain.Classification, error)
}

// RelevanceRanker selects the candidates relevant to a query.
type RelevanceRanker interface {
	Rank(ctx context.Context, req domain.RankRequest) (domain.RelevanceJudgement, error)
}

type PlaceRepository interface {
	FindPlaces(ctx context.Context, criteria domain.PlaceCriteria) ([]domain.Place, error)
	UpsertPlace(ctx context.Context, place domain.Place) error
}

type ReviewRepository interface {
	FindReviews(ctx context.Context, criteria domain.ReviewCriteria) ([]domain.Review, error)
	UpsertReview(ctx context.Context, review domain.Review) error
}

// ItemNameStore is the append-only normalization corpus. ListItemNames
// returns records oldest first.
type ItemNameStore interface {
	ListItemNames(ctx context.Context) ([]domain.ItemNameRecord, error)
	AppendItemName(ctx context.Context, record domain.ItemNameRecord) error
}

// SessionStore keeps per-session query history.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) ([]domain.SessionMessage, error)
	Append(ctx context.Context, msg domain.SessionMessage) error
	Clear(ctx context.Context, sessionID string) error
}

// ItemNameQueue publishes/consumes item-name normalization batches.
type ItemNameQueue interface {
	PublishItemNameBatch(ctx context.Context, batch domain.ItemNameBatch) error
	SubscribeItemNameBatches(ctx context.Context, handler func(context.Context, domain.ItemNameBatch) error) error
}
