package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

// ItemNameRepository persists the normalization corpus. Insertion order is
// kept by the seq column.
type ItemNameRepository struct {
	db *sql.DB
}

func NewItemNameRepository(db *sql.DB) *ItemNameRepository {
	return &ItemNameRepository{db: db}
}

func (r *ItemNameRepository) AppendItemName(ctx context.Context, record domain.ItemNameRecord) error {
	var embedding interface{}
	if len(record.Embedding) > 0 {
		raw, err := json.Marshal(record.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		embedding = raw
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO item_names (id, input_name, standardized_name, embedding, created_at)
VALUES ($1, $2, $3, $4, $5)
`, record.ID, record.InputName, record.StandardizedName, embedding, createdAt)
	if err != nil {
		return fmt.Errorf("insert item name: %w", err)
	}
	return nil
}

func (r *ItemNameRepository) ListItemNames(ctx context.Context) ([]domain.ItemNameRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, input_name, standardized_name, embedding, created_at
FROM item_names
ORDER BY seq ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query item names: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ItemNameRecord, 0)
	for rows.Next() {
		var (
			record    domain.ItemNameRecord
			embedding []byte
		)
		if err := rows.Scan(&record.ID, &record.InputName, &record.StandardizedName, &embedding, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item name: %w", err)
		}
		if len(embedding) > 0 {
			if err := json.Unmarshal(embedding, &record.Embedding); err != nil {
				return nil, fmt.Errorf("decode embedding %s: %w", record.ID, err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item names: %w", err)
	}
	return records, nil
}
