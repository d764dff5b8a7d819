// Package memory holds process-local implementations of the repository ports.
// They back the default local setup and the CLI when no database is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/filter"
)

// Store keeps places and reviews in insertion order.
type Store struct {
	mu         sync.RWMutex
	places     []domain.Place
	placeIndex map[string]int
	reviews    []domain.Review
	reviewIdx  map[string]int
}

func NewStore() *Store {
	return &Store{
		placeIndex: make(map[string]int),
		reviewIdx:  make(map[string]int),
	}
}

// Seed is the on-disk shape accepted by LoadSeedFile and the import command.
type Seed struct {
	Places  []domain.Place  `json:"places"`
	Reviews []domain.Review `json:"reviews"`
}

func ReadSeedFile(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return seed, nil
}

// LoadSeedFile upserts every place and review from a JSON seed file.
func (s *Store) LoadSeedFile(ctx context.Context, path string) error {
	seed, err := ReadSeedFile(path)
	if err != nil {
		return err
	}
	for _, p := range seed.Places {
		if err := s.UpsertPlace(ctx, p); err != nil {
			return err
		}
	}
	for _, r := range seed.Reviews {
		if err := s.UpsertReview(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpsertPlace(_ context.Context, place domain.Place) error {
	if place.PlaceID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "upsert place", fmt.Errorf("place_id is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.placeIndex[place.PlaceID]; ok {
		s.places[i] = place
		return nil
	}
	s.placeIndex[place.PlaceID] = len(s.places)
	s.places = append(s.places, place)
	return nil
}

func (s *Store) UpsertReview(_ context.Context, review domain.Review) error {
	if review.ID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "upsert review", fmt.Errorf("id is required"))
	}
	review.WouldReturn = domain.ParseWouldReturn(string(review.WouldReturn))
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.reviewIdx[review.ID]; ok {
		s.reviews[i] = review
		return nil
	}
	s.reviewIdx[review.ID] = len(s.reviews)
	s.reviews = append(s.reviews, review)
	return nil
}

func (s *Store) FindPlaces(_ context.Context, criteria domain.PlaceCriteria) ([]domain.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Places(s.places, filter.ForPlaces(criteria)), nil
}

func (s *Store) FindReviews(_ context.Context, criteria domain.ReviewCriteria) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Reviews(s.reviews, filter.ForReviews(criteria)), nil
}

// ItemNameStore is an append-only in-memory corpus.
type ItemNameStore struct {
	mu      sync.RWMutex
	records []domain.ItemNameRecord
}

func NewItemNameStore() *ItemNameStore {
	return &ItemNameStore{}
}

func (s *ItemNameStore) ListItemNames(context.Context) ([]domain.ItemNameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ItemNameRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *ItemNameStore) AppendItemName(_ context.Context, record domain.ItemNameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// SessionStore keeps session turns per id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string][]domain.SessionMessage
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string][]domain.SessionMessage)}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) ([]domain.SessionMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.sessions[sessionID]
	out := make([]domain.SessionMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *SessionStore) Append(_ context.Context, msg domain.SessionMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[msg.SessionID] = append(s.sessions[msg.SessionID], msg)
	return nil
}

func (s *SessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
