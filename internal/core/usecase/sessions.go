package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

type SessionHistoryUseCase struct {
	store ports.SessionStore
}

func NewSessionHistoryUseCase(store ports.SessionStore) *SessionHistoryUseCase {
	return &SessionHistoryUseCase{store: store}
}

func (uc *SessionHistoryUseCase) History(ctx context.Context, sessionID string) ([]domain.SessionMessage, error) {
	if err := requireSessionID(sessionID); err != nil {
		return nil, err
	}
	messages, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "session history", errors.New("session not found"))
	}
	return messages, nil
}

func (uc *SessionHistoryUseCase) Reset(ctx context.Context, sessionID string) error {
	if err := requireSessionID(sessionID); err != nil {
		return err
	}
	return uc.store.Clear(ctx, sessionID)
}

func requireSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "session", errors.New("session id is required"))
	}
	return nil
}
