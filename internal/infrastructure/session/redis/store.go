package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

const keyPrefix = "dinelog:session:"

// SessionStore keeps each session as a Redis list of JSON messages. The TTL
// is refreshed on every append.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *SessionStore {
	return NewWithClient(goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db}), ttl)
}

func NewWithClient(client *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}

func (s *SessionStore) Append(ctx context.Context, msg domain.SessionMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal session message: %w", err)
	}
	key := keyPrefix + msg.SessionID

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append session message: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) ([]domain.SessionMessage, error) {
	raw, err := s.client.LRange(ctx, keyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read session: %w", err)
	}
	out := make([]domain.SessionMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.SessionMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode session message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
