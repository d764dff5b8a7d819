package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

func scenarioRepos() (*placeRepoFake, *reviewRepoFake) {
	places := &placeRepoFake{places: []domain.Place{
		geoPlace("A", "Luigi's", 40.7128, -74.0060),
		geoPlace("B", "Sushi Zen", 40.7306, -73.9352),
		geoPlace("C", "Far Away Diner", 42.36, -71.06),
	}}
	reviews := &reviewRepoFake{reviews: []domain.Review{
		{ID: "r1", PlaceID: "A", WouldReturn: domain.WouldReturnYes, VisitDate: "2024-08-01",
			ItemReviews: []domain.ItemReview{{Item: "Caesar Salad"}}},
		{ID: "r2", PlaceID: "B", WouldReturn: domain.WouldReturnNo, VisitDate: "2024-01-01",
			ItemReviews: []domain.ItemReview{{Item: "Salmon Nigiri"}}},
		{ID: "r3", PlaceID: "C", WouldReturn: domain.WouldReturnYes, VisitDate: "2024-05-05"},
		{ID: "r4", PlaceID: "GHOST", WouldReturn: domain.WouldReturnYes, VisitDate: "2024-06-06"},
	}}
	return places, reviews
}

func TestStructuredFilterWouldReturnScenario(t *testing.T) {
	places := &placeRepoFake{places: []domain.Place{geoPlace("A", "A", 0, 0), geoPlace("B", "B", 0, 0)}}
	reviews := &reviewRepoFake{reviews: []domain.Review{
		{ID: "ra", PlaceID: "A", WouldReturn: domain.WouldReturnYes, VisitDate: "2024-08-01"},
		{ID: "rb", PlaceID: "B", WouldReturn: domain.WouldReturnNo, VisitDate: "2024-01-01"},
	}}
	uc := NewStructuredQueryUseCase(places, reviews)

	res, err := uc.Filter(context.Background(), domain.StructuredQuery{WouldReturn: domain.WouldReturnSet{Yes: true}})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if !sameIDs(placeIDsOf(res.Places), []string{"A"}) || !sameIDs(reviewIDsOf(res.Reviews), []string{"ra"}) {
		t.Fatalf("unexpected result places=%v reviews=%v", placeIDsOf(res.Places), reviewIDsOf(res.Reviews))
	}
}

func TestStructuredFilterEmptyReviewMatchShortCircuits(t *testing.T) {
	places, reviews := scenarioRepos()
	uc := NewStructuredQueryUseCase(places, reviews)

	res, err := uc.Filter(context.Background(), domain.StructuredQuery{DateFrom: "2030-01-01", DateTo: "2030-12-31"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(res.Places) != 0 || len(res.Reviews) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if res.Places == nil || res.Reviews == nil {
		t.Fatalf("expected empty non-nil slices")
	}
	if len(places.criteria) != 0 {
		t.Fatalf("expected places not to be queried")
	}
}

func TestStructuredFilterGeoRadiusDropsReviewsOfFilteredPlaces(t *testing.T) {
	places, reviews := scenarioRepos()
	uc := NewStructuredQueryUseCase(places, reviews)

	radius := 10.0
	res, err := uc.Filter(context.Background(), domain.StructuredQuery{
		Center:      &domain.GeoPoint{Lat: 40.7128, Lng: -74.0060},
		RadiusMiles: &radius,
		WouldReturn: domain.WouldReturnSet{Yes: true},
	})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if !sameIDs(placeIDsOf(res.Places), []string{"A"}) || !sameIDs(reviewIDsOf(res.Reviews), []string{"r1"}) {
		t.Fatalf("unexpected result places=%v reviews=%v", placeIDsOf(res.Places), reviewIDsOf(res.Reviews))
	}
	assertJoinConsistent(t, res)

	criteria := places.criteria[0]
	if criteria.Within == nil || criteria.Within.Miles != 10 {
		t.Fatalf("expected radius to be pushed into place criteria, got %+v", criteria)
	}
	if !sameIDs(criteria.PlaceIDs, []string{"A", "C", "GHOST"}) {
		t.Fatalf("expected candidate ids from surviving reviews, got %v", criteria.PlaceIDs)
	}
}

func TestStructuredFilterDropsDanglingReviews(t *testing.T) {
	places, reviews := scenarioRepos()
	uc := NewStructuredQueryUseCase(places, reviews)

	res, err := uc.Filter(context.Background(), domain.StructuredQuery{DateFrom: "2024-06-01"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if !sameIDs(reviewIDsOf(res.Reviews), []string{"r1"}) {
		t.Fatalf("expected dangling review to be dropped, got %v", reviewIDsOf(res.Reviews))
	}
	assertJoinConsistent(t, res)
}

func TestStructuredFilterPlaceNameAndItems(t *testing.T) {
	places, reviews := scenarioRepos()
	uc := NewStructuredQueryUseCase(places, reviews)

	res, err := uc.Filter(context.Background(), domain.StructuredQuery{
		PlaceName:    "zen",
		ItemsOrdered: []string{"nigiri", "caesar"},
	})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if !sameIDs(placeIDsOf(res.Places), []string{"B"}) || !sameIDs(reviewIDsOf(res.Reviews), []string{"r2"}) {
		t.Fatalf("unexpected result places=%v reviews=%v", placeIDsOf(res.Places), reviewIDsOf(res.Reviews))
	}
}

func TestStructuredFilterOpenNow(t *testing.T) {
	places, reviews := scenarioRepos()
	places.places[0].OpeningHours = &domain.OpeningHours{Periods: []domain.OpeningPeriod{
		{Open: domain.DayTime{Day: int(time.Wednesday), Time: "1100"}, Close: &domain.DayTime{Day: int(time.Wednesday), Time: "2200"}},
	}}
	uc := NewStructuredQueryUseCase(places, reviews)
	uc.now = func() time.Time { return time.Date(2024, 8, 7, 12, 0, 0, 0, time.UTC) }

	res, err := uc.Filter(context.Background(), domain.StructuredQuery{OpenNow: true})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if !sameIDs(placeIDsOf(res.Places), []string{"A"}) || !sameIDs(reviewIDsOf(res.Reviews), []string{"r1"}) {
		t.Fatalf("unexpected result places=%v reviews=%v", placeIDsOf(res.Places), reviewIDsOf(res.Reviews))
	}
}

func TestStructuredFilterStoreFailure(t *testing.T) {
	_, reviews := scenarioRepos()
	uc := NewStructuredQueryUseCase(&placeRepoFake{err: errors.New("syntax error at or near")}, reviews)

	_, err := uc.Filter(context.Background(), domain.StructuredQuery{})
	if !domain.IsKind(err, domain.ErrQueryExecution) {
		t.Fatalf("expected query execution error, got %v", err)
	}
	if strings.Contains(err.Error(), "syntax error") {
		t.Fatalf("store cause must not leak")
	}
}

func TestStructuredFilterRejectsInvalidQuery(t *testing.T) {
	places, reviews := scenarioRepos()
	uc := NewStructuredQueryUseCase(places, reviews)

	radius := -1.0
	_, err := uc.Filter(context.Background(), domain.StructuredQuery{RadiusMiles: &radius})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestStructuredFilterReversedDateRangeIsEmpty(t *testing.T) {
	places, reviews := scenarioRepos()
	uc := NewStructuredQueryUseCase(places, reviews)

	res, err := uc.Filter(context.Background(), domain.StructuredQuery{DateFrom: "2024-12-31", DateTo: "2024-01-01"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(res.Places) != 0 || len(res.Reviews) != 0 {
		t.Fatalf("expected empty result, got %d places %d reviews", len(res.Places), len(res.Reviews))
	}
	if res.Places == nil || res.Reviews == nil {
		t.Fatalf("expected empty non-nil slices")
	}
}
