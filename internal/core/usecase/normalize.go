package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

type NormalizeOptions struct {
	// Serialize holds a process-wide lock across embed, scan and append.
	Serialize bool
	// BatchEmbed embeds a whole NormalizeAll batch in one call.
	BatchEmbed bool
}

// NormalizeItemNameUseCase clusters raw item names greedily onto canonical
// names. Every call appends exactly one corpus record, and clusters are never
// merged or re-assigned afterwards.
type NormalizeItemNameUseCase struct {
	embedder  ports.Embedder
	store     ports.ItemNameStore
	opts      NormalizeOptions
	threshold float64
	mu        sync.Mutex
	now       func() time.Time
}

func NewNormalizeItemNameUseCase(
	embedder ports.Embedder,
	store ports.ItemNameStore,
	opts NormalizeOptions,
) *NormalizeItemNameUseCase {
	return &NormalizeItemNameUseCase{
		embedder:  embedder,
		store:     store,
		opts:      opts,
		threshold: ItemNameSimilarityThreshold,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *NormalizeItemNameUseCase) Normalize(ctx context.Context, raw string) (domain.NormalizedItem, error) {
	name, err := checkItemName(raw)
	if err != nil {
		return domain.NormalizedItem{}, err
	}

	uc.lock()
	defer uc.unlock()

	vector, err := uc.embedOne(ctx, name)
	if err != nil {
		return domain.NormalizedItem{}, err
	}
	return uc.assign(ctx, name, vector)
}

// NormalizeAll normalizes raws one at a time in order. Records appended for
// earlier names are visible when matching later ones.
func (uc *NormalizeItemNameUseCase) NormalizeAll(ctx context.Context, raws []string) ([]domain.NormalizedItem, error) {
	names := make([]string, 0, len(raws))
	for _, raw := range raws {
		name, err := checkItemName(raw)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return []domain.NormalizedItem{}, nil
	}

	if !uc.opts.BatchEmbed {
		out := make([]domain.NormalizedItem, 0, len(names))
		for _, name := range names {
			item, err := uc.Normalize(ctx, name)
			if err != nil {
				return out, err
			}
			out = append(out, item)
		}
		return out, nil
	}

	vectors, err := uc.embedBatch(ctx, names)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NormalizedItem, 0, len(names))
	for i, name := range names {
		uc.lock()
		item, err := uc.assign(ctx, name, vectors[i])
		uc.unlock()
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (uc *NormalizeItemNameUseCase) assign(ctx context.Context, name string, vector []float32) (domain.NormalizedItem, error) {
	corpus, err := uc.store.ListItemNames(ctx)
	if err != nil {
		return domain.NormalizedItem{}, domain.WrapError(domain.ErrQueryExecution, "list item names", err)
	}

	result := domain.NormalizedItem{Input: name, StandardizedName: name}
	if best, score, ok := nearestRecord(corpus, vector); ok {
		result.Similarity = score
		if score >= uc.threshold {
			result.StandardizedName = best.StandardizedName
			result.Matched = true
		}
	}

	record := domain.ItemNameRecord{
		ID:               uuid.NewString(),
		InputName:        name,
		StandardizedName: result.StandardizedName,
		Embedding:        vector,
		CreatedAt:        uc.now(),
	}
	if err := uc.store.AppendItemName(ctx, record); err != nil {
		return domain.NormalizedItem{}, domain.WrapError(domain.ErrQueryExecution, "append item name", err)
	}
	return result, nil
}

// nearestRecord picks the highest-scoring record, keeping the earliest on
// ties. Records without an embedding score 0.
func nearestRecord(corpus []domain.ItemNameRecord, vector []float32) (domain.ItemNameRecord, float64, bool) {
	bestIdx := -1
	bestScore := 0.0
	for i, record := range corpus {
		score := 0.0
		if len(record.Embedding) > 0 {
			score = CosineSimilarity(record.Embedding, vector)
		}
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	if bestIdx < 0 {
		return domain.ItemNameRecord{}, 0, false
	}
	return corpus[bestIdx], bestScore, true
}

func (uc *NormalizeItemNameUseCase) embedOne(ctx context.Context, name string) ([]float32, error) {
	vector, err := uc.embedder.EmbedQuery(ctx, name)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed item name", err)
	}
	if len(vector) == 0 {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed item name", errors.New("empty embedding"))
	}
	return vector, nil
}

func (uc *NormalizeItemNameUseCase) embedBatch(ctx context.Context, names []string) ([][]float32, error) {
	vectors, err := uc.embedder.Embed(ctx, names)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed item names", err)
	}
	if len(vectors) != len(names) {
		return nil, domain.WrapError(
			domain.ErrEmbedding,
			"embed item names",
			fmt.Errorf("vectors/names mismatch: %d/%d", len(vectors), len(names)),
		)
	}
	return vectors, nil
}

func (uc *NormalizeItemNameUseCase) lock() {
	if uc.opts.Serialize {
		uc.mu.Lock()
	}
}

func (uc *NormalizeItemNameUseCase) unlock() {
	if uc.opts.Serialize {
		uc.mu.Unlock()
	}
}

// checkItemName rejects blank input. Accepted names are returned verbatim so
// the stored input and any new canonical name are the caller's exact text.
func checkItemName(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "normalize item name", errors.New("item name is required"))
	}
	return raw, nil
}
