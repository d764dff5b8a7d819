// Package filter builds composable in-process predicates from typed review
// and place criteria.
package filter

import (
	"strings"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/geo"
)

type ReviewPredicate func(domain.Review) bool

type PlacePredicate func(domain.Place) bool

func AllReviews(preds ...ReviewPredicate) ReviewPredicate {
	return func(r domain.Review) bool {
		for _, pred := range preds {
			if !pred(r) {
				return false
			}
		}
		return true
	}
}

func AllPlaces(preds ...PlacePredicate) PlacePredicate {
	return func(p domain.Place) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// WouldReturnIn passes reviews whose value is in the set. An empty set passes
// everything.
func WouldReturnIn(values []domain.WouldReturn) ReviewPredicate {
	if len(values) == 0 {
		return func(domain.Review) bool { return true }
	}
	allowed := make(map[domain.WouldReturn]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(r domain.Review) bool {
		_, ok := allowed[r.WouldReturn]
		return ok
	}
}

// VisitedBetween is an inclusive ISO date range; empty bounds are open.
func VisitedBetween(from, to string) ReviewPredicate {
	if from == "" && to == "" {
		return func(domain.Review) bool { return true }
	}
	return func(r domain.Review) bool {
		if r.VisitDate == "" {
			return false
		}
		if from != "" && r.VisitDate < from {
			return false
		}
		if to != "" && r.VisitDate > to {
			return false
		}
		return true
	}
}

// OrderedAnyOf passes reviews with an item whose raw name contains any of the
// requested names, case-insensitively.
func OrderedAnyOf(items []string) ReviewPredicate {
	needles := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			needles = append(needles, item)
		}
	}
	if len(needles) == 0 {
		return func(domain.Review) bool { return true }
	}
	return func(r domain.Review) bool {
		for _, ir := range r.ItemReviews {
			name := strings.ToLower(ir.Item)
			for _, needle := range needles {
				if strings.Contains(name, needle) {
					return true
				}
			}
		}
		return false
	}
}

func ForReviews(c domain.ReviewCriteria) ReviewPredicate {
	return AllReviews(
		WouldReturnIn(c.WouldReturn),
		VisitedBetween(c.DateFrom, c.DateTo),
		OrderedAnyOf(c.ItemNames),
	)
}

// PlaceIDIn passes places in ids. A nil slice passes everything.
func PlaceIDIn(ids []string) PlacePredicate {
	if ids == nil {
		return func(domain.Place) bool { return true }
	}
	set := toSet(ids)
	return func(p domain.Place) bool {
		_, ok := set[p.PlaceID]
		return ok
	}
}

func NameContains(fragment string) PlacePredicate {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return func(domain.Place) bool { return true }
	}
	return func(p domain.Place) bool {
		return strings.Contains(strings.ToLower(p.Name), fragment)
	}
}

func WithinRadius(r *domain.RadiusFilter) PlacePredicate {
	if r == nil {
		return func(domain.Place) bool { return true }
	}
	return func(p domain.Place) bool {
		return geo.WithinRadius(r.Center, p.Location(), r.Miles)
	}
}

func OpenAt(t time.Time) PlacePredicate {
	return func(p domain.Place) bool {
		return geo.OpenAt(p.OpeningHours, t)
	}
}

func ForPlaces(c domain.PlaceCriteria) PlacePredicate {
	return AllPlaces(
		PlaceIDIn(c.PlaceIDs),
		NameContains(c.NameContains),
		WithinRadius(c.Within),
	)
}

func Reviews(in []domain.Review, pred ReviewPredicate) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func Places(in []domain.Place, pred PlacePredicate) []domain.Place {
	out := make([]domain.Place, 0, len(in))
	for _, p := range in {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// DistinctPlaceIDs returns the referenced place ids in first-seen order.
func DistinctPlaceIDs(reviews []domain.Review) []string {
	seen := make(map[string]struct{}, len(reviews))
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.PlaceID]; ok {
			continue
		}
		seen[r.PlaceID] = struct{}{}
		out = append(out, r.PlaceID)
	}
	return out
}

// Rejoin drops reviews whose place is absent and places without a review,
// leaving a join-consistent pair.
func Rejoin(places []domain.Place, reviews []domain.Review) ([]domain.Place, []domain.Review) {
	placeIDs := make(map[string]struct{}, len(places))
	for _, p := range places {
		placeIDs[p.PlaceID] = struct{}{}
	}
	keptReviews := make([]domain.Review, 0, len(reviews))
	reviewed := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if _, ok := placeIDs[r.PlaceID]; !ok {
			continue
		}
		keptReviews = append(keptReviews, r)
		reviewed[r.PlaceID] = struct{}{}
	}
	keptPlaces := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if _, ok := reviewed[p.PlaceID]; ok {
			keptPlaces = append(keptPlaces, p)
		}
	}
	return keptPlaces, keptReviews
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
