package domain

// RankMode selects how strictly the ranker judges relevance.
type RankMode string

const (
	RankModeFullText RankMode = "full-text"
	RankModeHybrid   RankMode = "hybrid"
)

type RankRequest struct {
	Query   string
	Mode    RankMode
	Places  []Place
	Reviews []Review
}

// RelevanceJudgement holds the ids the model judged relevant, or a failure
// when its response was unusable.
type RelevanceJudgement struct {
	PlaceIDs  []string
	ReviewIDs []string
	Failure   *ParseFailure
}

func (j RelevanceJudgement) OK() bool {
	return j.Failure == nil
}

// RankedPlace and RankedReview are the projections shown to the model.
type RankedPlace struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Location GeoPoint `json:"location"`
}

type RankedReview struct {
	ID          string      `json:"id"`
	PlaceID     string      `json:"placeId"`
	Text        string      `json:"text"`
	VisitDate   string      `json:"visitDate,omitempty"`
	WouldReturn WouldReturn `json:"wouldReturn"`
}

func ProjectPlaces(places []Place) []RankedPlace {
	out := make([]RankedPlace, 0, len(places))
	for _, p := range places {
		out = append(out, RankedPlace{ID: p.PlaceID, Name: p.Name, Address: p.Address, Location: p.Location()})
	}
	return out
}

func ProjectReviews(reviews []Review) []RankedReview {
	out := make([]RankedReview, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, RankedReview{
			ID:          r.ID,
			PlaceID:     r.PlaceID,
			Text:        r.Text,
			VisitDate:   r.VisitDate,
			WouldReturn: r.WouldReturn,
		})
	}
	return out
}
