package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Append(ctx context.Context, msg domain.SessionMessage) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO session_messages (id, session_id, role, content, created_at)
VALUES ($1, $2, $3, $4, $5)
`, msg.ID, msg.SessionID, string(msg.Role), msg.Content, createdAt)
	if err != nil {
		return fmt.Errorf("insert session message: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) ([]domain.SessionMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, role, content, created_at
FROM session_messages
WHERE session_id = $1
ORDER BY seq ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SessionMessage, 0)
	for rows.Next() {
		var (
			msg  domain.SessionMessage
			role string
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session message: %w", err)
		}
		msg.Role = domain.ChatRole(role)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session messages: %w", err)
	}
	return out, nil
}

func (r *SessionRepository) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_messages WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session messages: %w", err)
	}
	return nil
}
