package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) UpsertReview(ctx context.Context, review domain.Review) error {
	items := review.ItemReviews
	if items == nil {
		items = []domain.ItemReview{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal item reviews: %w", err)
	}
	wouldReturn := review.WouldReturn
	if wouldReturn == "" {
		wouldReturn = domain.WouldReturnUnspecified
	}
	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
INSERT INTO reviews (id, place_id, visit_date, would_return, review_text, reviewer_name, item_reviews, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (id) DO UPDATE SET
	place_id = EXCLUDED.place_id,
	visit_date = EXCLUDED.visit_date,
	would_return = EXCLUDED.would_return,
	review_text = EXCLUDED.review_text,
	reviewer_name = EXCLUDED.reviewer_name,
	item_reviews = EXCLUDED.item_reviews,
	updated_at = EXCLUDED.updated_at
`, review.ID, review.PlaceID, review.VisitDate, string(wouldReturn), review.Text, review.ReviewerName, itemsJSON, now)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) FindReviews(ctx context.Context, criteria domain.ReviewCriteria) ([]domain.Review, error) {
	var where whereClause
	if len(criteria.WouldReturn) > 0 {
		values := make([]string, 0, len(criteria.WouldReturn))
		for _, v := range criteria.WouldReturn {
			values = append(values, string(v))
		}
		where.in("would_return", values)
	}
	if criteria.DateFrom != "" || criteria.DateTo != "" {
		where.add("visit_date <> ''")
	}
	if criteria.DateFrom != "" {
		where.add("visit_date >= " + where.arg(criteria.DateFrom))
	}
	if criteria.DateTo != "" {
		where.add("visit_date <= " + where.arg(criteria.DateTo))
	}
	if pattern := itemPattern(criteria.ItemNames); pattern != "" {
		where.add("EXISTS (SELECT 1 FROM jsonb_array_elements(item_reviews) AS ir WHERE ir->>'item' ~* " + where.arg(pattern) + ")")
	}

	query := `
SELECT id, place_id, visit_date, would_return, review_text, reviewer_name, item_reviews
FROM reviews
` + where.String() + `
ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// itemPattern ORs the requested names into one case-insensitive substring
// regex. Blank names are ignored.
func itemPattern(names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(name))
	}
	return strings.Join(parts, "|")
}

func scanReview(row rowScanner) (domain.Review, error) {
	var (
		review      domain.Review
		wouldReturn string
		items       []byte
	)
	if err := row.Scan(
		&review.ID,
		&review.PlaceID,
		&review.VisitDate,
		&wouldReturn,
		&review.Text,
		&review.ReviewerName,
		&items,
	); err != nil {
		return domain.Review{}, fmt.Errorf("scan review: %w", err)
	}
	review.WouldReturn = domain.ParseWouldReturn(wouldReturn)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &review.ItemReviews); err != nil {
			return domain.Review{}, fmt.Errorf("decode item reviews %s: %w", review.ID, err)
		}
	}
	return review, nil
}
