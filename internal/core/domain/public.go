package domain

// PublicPlace is the outward shape of a place: coordinates flattened to a
// lat/lng pair.
type PublicPlace struct {
	PlaceID      string        `json:"placeId"`
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	Location     GeoPoint      `json:"location"`
	Viewport     *Viewport     `json:"viewport,omitempty"`
	OpeningHours *OpeningHours `json:"openingHours,omitempty"`
	PriceLevel   int           `json:"priceLevel,omitempty"`
	Category     string        `json:"category,omitempty"`
}

type PublicReview struct {
	ID           string       `json:"id"`
	PlaceID      string       `json:"placeId"`
	VisitDate    string       `json:"visitDate,omitempty"`
	WouldReturn  WouldReturn  `json:"wouldReturn"`
	Text         string       `json:"text"`
	ReviewerName string       `json:"reviewerName,omitempty"`
	ItemReviews  []ItemReview `json:"itemReviews,omitempty"`
}

type PublicResult struct {
	QueryType       QueryType      `json:"queryType,omitempty"`
	Places          []PublicPlace  `json:"places"`
	Reviews         []PublicReview `json:"reviews"`
	RankingDegraded bool           `json:"rankingDegraded,omitempty"`
}

func ToPublicPlace(p Place) PublicPlace {
	return PublicPlace{
		PlaceID:      p.PlaceID,
		Name:         p.Name,
		Address:      p.Address,
		Location:     p.Location(),
		Viewport:     p.Viewport,
		OpeningHours: p.OpeningHours,
		PriceLevel:   p.PriceLevel,
		Category:     p.Category,
	}
}

func ToPublicReview(r Review) PublicReview {
	return PublicReview{
		ID:           r.ID,
		PlaceID:      r.PlaceID,
		VisitDate:    r.VisitDate,
		WouldReturn:  r.WouldReturn,
		Text:         r.Text,
		ReviewerName: r.ReviewerName,
		ItemReviews:  r.ItemReviews,
	}
}

func ToPublicResult(res *QueryResult) PublicResult {
	out := PublicResult{Places: []PublicPlace{}, Reviews: []PublicReview{}}
	if res == nil {
		return out
	}
	out.QueryType = res.Type
	out.RankingDegraded = res.RankingDegraded
	for _, p := range res.Places {
		out.Places = append(out.Places, ToPublicPlace(p))
	}
	for _, r := range res.Reviews {
		out.Reviews = append(out.Reviews, ToPublicReview(r))
	}
	return out
}
