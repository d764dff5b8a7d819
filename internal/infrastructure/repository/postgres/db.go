package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schemaLockKey = int64(2026101501)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates every table the service reads or writes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS places (
	place_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	viewport JSONB,
	opening_hours JSONB,
	price_level INTEGER NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_places_lat_lng ON places(latitude, longitude);

CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	place_id TEXT NOT NULL,
	visit_date TEXT NOT NULL DEFAULT '',
	would_return TEXT NOT NULL,
	review_text TEXT NOT NULL DEFAULT '',
	reviewer_name TEXT NOT NULL DEFAULT '',
	item_reviews JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id);
CREATE INDEX IF NOT EXISTS idx_reviews_visit_date ON reviews(visit_date);

CREATE TABLE IF NOT EXISTS item_names (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	input_name TEXT NOT NULL,
	standardized_name TEXT NOT NULL,
	embedding JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS session_messages (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_messages_session ON session_messages(session_id, seq);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// whereClause accumulates AND-ed conditions with positional arguments.
type whereClause struct {
	conds []string
	args  []interface{}
}

func (w *whereClause) arg(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereClause) add(cond string) {
	w.conds = append(w.conds, cond)
}

// in renders "column IN (...)". An empty list matches nothing.
func (w *whereClause) in(column string, values []string) {
	if len(values) == 0 {
		w.add("FALSE")
		return
	}
	placeholders := make([]string, 0, len(values))
	for _, v := range values {
		placeholders = append(placeholders, w.arg(v))
	}
	w.add(column + " IN (" + strings.Join(placeholders, ", ") + ")")
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// marshalNullable stores a nil pointer as SQL NULL.
func marshalNullable[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
