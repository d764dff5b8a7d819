// Package embedcache memoizes embeddings in an in-process LRU keyed by the
// exact input text.
package embedcache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kirillkom/dinelog/internal/core/ports"
)

const defaultSize = 10000

type Embedder struct {
	next  ports.Embedder
	cache *lru.Cache[string, []float32]
}

func New(next ports.Embedder, size int) (*Embedder, error) {
	if size <= 0 {
		size = defaultSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{next: next, cache: cache}, nil
}

// Embed only sends cache misses downstream and preserves input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))
	for i, text := range texts {
		if vector, ok := e.cache.Get(text); ok {
			out[i] = cloneVector(vector)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := e.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("embedding cache: vectors/texts mismatch: %d/%d", len(vectors), len(missTexts))
	}
	for j, vector := range vectors {
		e.cache.Add(missTexts[j], cloneVector(vector))
		out[missIdx[j]] = vector
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := e.cache.Get(text); ok {
		return cloneVector(vector), nil
	}
	vector, err := e.next.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, cloneVector(vector))
	return vector, nil
}

func (e *Embedder) Len() int {
	return e.cache.Len()
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
