package usecase

import (
	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/filter"
)

// mergeRanked intersects the model's judgement with the candidate sets. Ids
// outside the candidates are ignored. A place survives when it was ranked or
// is referenced by a kept review, and the final pair is rejoined so that no
// place lacks a review and no review lacks its place.
func mergeRanked(
	places []domain.Place,
	reviews []domain.Review,
	judgement domain.RelevanceJudgement,
) ([]domain.Place, []domain.Review) {
	rankedReviews := make(map[string]struct{}, len(judgement.ReviewIDs))
	for _, id := range judgement.ReviewIDs {
		rankedReviews[id] = struct{}{}
	}
	rankedPlaces := make(map[string]struct{}, len(judgement.PlaceIDs))
	for _, id := range judgement.PlaceIDs {
		rankedPlaces[id] = struct{}{}
	}

	keptReviews := make([]domain.Review, 0, len(judgement.ReviewIDs))
	referenced := make(map[string]struct{})
	for _, r := range reviews {
		if _, ok := rankedReviews[r.ID]; !ok {
			continue
		}
		keptReviews = append(keptReviews, r)
		referenced[r.PlaceID] = struct{}{}
	}

	keptPlaces := make([]domain.Place, 0, len(places))
	for _, p := range places {
		_, ranked := rankedPlaces[p.PlaceID]
		_, used := referenced[p.PlaceID]
		if ranked || used {
			keptPlaces = append(keptPlaces, p)
		}
	}

	return filter.Rejoin(keptPlaces, keptReviews)
}
