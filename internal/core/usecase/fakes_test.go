package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/filter"
)

type embedderFake struct {
	vectors    map[string][]float32
	err        error
	queryCalls int
	batchCalls int
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, f.vectors[text])
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

type itemNameStoreFake struct {
	mu        sync.Mutex
	records   []domain.ItemNameRecord
	listErr   error
	appendErr error
}

func (f *itemNameStoreFake) ListItemNames(context.Context) ([]domain.ItemNameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.ItemNameRecord(nil), f.records...), nil
}

func (f *itemNameStoreFake) AppendItemName(_ context.Context, record domain.ItemNameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, record)
	return nil
}

type placeRepoFake struct {
	places   []domain.Place
	err      error
	criteria []domain.PlaceCriteria
}

func (f *placeRepoFake) FindPlaces(_ context.Context, criteria domain.PlaceCriteria) ([]domain.Place, error) {
	f.criteria = append(f.criteria, criteria)
	if f.err != nil {
		return nil, f.err
	}
	return filter.Places(f.places, filter.ForPlaces(criteria)), nil
}

func (f *placeRepoFake) UpsertPlace(_ context.Context, place domain.Place) error {
	f.places = append(f.places, place)
	return nil
}

type reviewRepoFake struct {
	reviews  []domain.Review
	err      error
	criteria []domain.ReviewCriteria
}

func (f *reviewRepoFake) FindReviews(_ context.Context, criteria domain.ReviewCriteria) ([]domain.Review, error) {
	f.criteria = append(f.criteria, criteria)
	if f.err != nil {
		return nil, f.err
	}
	return filter.Reviews(f.reviews, filter.ForReviews(criteria)), nil
}

func (f *reviewRepoFake) UpsertReview(_ context.Context, review domain.Review) error {
	f.reviews = append(f.reviews, review)
	return nil
}

type classifierFake struct {
	cls   domain.Classification
	err   error
	query string
}

func (f *classifierFake) Classify(_ context.Context, query string) (domain.Classification, error) {
	f.query = query
	if f.err != nil {
		return domain.Classification{}, f.err
	}
	return f.cls, nil
}

type rankerFake struct {
	judgement domain.RelevanceJudgement
	err       error
	requests  []domain.RankRequest
}

func (f *rankerFake) Rank(_ context.Context, req domain.RankRequest) (domain.RelevanceJudgement, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return domain.RelevanceJudgement{}, f.err
	}
	return f.judgement, nil
}

type sessionStoreFake struct {
	messages  map[string][]domain.SessionMessage
	appendErr error
}

func newSessionStoreFake() *sessionStoreFake {
	return &sessionStoreFake{messages: map[string][]domain.SessionMessage{}}
}

func (f *sessionStoreFake) Get(_ context.Context, sessionID string) ([]domain.SessionMessage, error) {
	return f.messages[sessionID], nil
}

func (f *sessionStoreFake) Append(_ context.Context, msg domain.SessionMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages[msg.SessionID] = append(f.messages[msg.SessionID], msg)
	return nil
}

func (f *sessionStoreFake) Clear(_ context.Context, sessionID string) error {
	delete(f.messages, sessionID)
	return nil
}

type itemNameQueueFake struct {
	published []domain.ItemNameBatch
	err       error
}

func (f *itemNameQueueFake) PublishItemNameBatch(_ context.Context, batch domain.ItemNameBatch) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, batch)
	return nil
}

func (f *itemNameQueueFake) SubscribeItemNameBatches(context.Context, func(context.Context, domain.ItemNameBatch) error) error {
	return errors.New("not implemented")
}

func geoPlace(id, name string, lat, lng float64) domain.Place {
	return domain.Place{PlaceID: id, Name: name, Geometry: domain.NewGeoJSONPoint(domain.GeoPoint{Lat: lat, Lng: lng})}
}

func reviewIDsOf(reviews []domain.Review) []string {
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.ID)
	}
	return out
}

func placeIDsOf(places []domain.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.PlaceID)
	}
	return out
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// assertJoinConsistent fails when a review references a missing place or a
// place has no review.
func assertJoinConsistent(t interface{ Fatalf(string, ...any) }, res *domain.QueryResult) {
	placeIDs := map[string]bool{}
	for _, p := range res.Places {
		placeIDs[p.PlaceID] = true
	}
	reviewed := map[string]bool{}
	for _, r := range res.Reviews {
		if !placeIDs[r.PlaceID] {
			t.Fatalf("review %s references missing place %s", r.ID, r.PlaceID)
		}
		reviewed[r.PlaceID] = true
	}
	for id := range placeIDs {
		if !reviewed[id] {
			t.Fatalf("place %s has no review in result", id)
		}
	}
}
