package domain

import "time"

// ItemNameRecord is one entry of the append-only normalization corpus.
type ItemNameRecord struct {
	ID               string    `json:"id"`
	InputName        string    `json:"input_name"`
	StandardizedName string    `json:"standardized_name"`
	Embedding        []float32 `json:"embedding,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NormalizedItem reports how a single raw name was resolved.
type NormalizedItem struct {
	Input            string  `json:"input"`
	StandardizedName string  `json:"standardized_name"`
	Matched          bool    `json:"matched"`
	Similarity       float64 `json:"similarity"`
}

// ItemNameBatch is the queued unit of asynchronous normalization work.
type ItemNameBatch struct {
	ReviewID    string    `json:"review_id,omitempty"`
	Names       []string  `json:"names"`
	SubmittedAt time.Time `json:"submitted_at"`
}
