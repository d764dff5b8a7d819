package domain

// ReviewCriteria is the typed review-side filter. Zero-valued fields place no
// restriction.
type ReviewCriteria struct {
	WouldReturn []WouldReturn
	DateFrom    string
	DateTo      string
	ItemNames   []string
}

// RadiusFilter keeps places within Miles of Center by great-circle distance.
type RadiusFilter struct {
	Center GeoPoint
	Miles  float64
}

// PlaceCriteria is the typed place-side filter. A nil PlaceIDs slice means
// any place; a non-nil empty slice matches nothing.
type PlaceCriteria struct {
	PlaceIDs     []string
	NameContains string
	Within       *RadiusFilter
}

// ReviewCriteriaFor projects the review-side filters of a structured query.
func ReviewCriteriaFor(q StructuredQuery) ReviewCriteria {
	return ReviewCriteria{
		WouldReturn: q.WouldReturn.Values(),
		DateFrom:    q.DateFrom,
		DateTo:      q.DateTo,
		ItemNames:   append([]string(nil), q.ItemsOrdered...),
	}
}

// PlaceCriteriaFor projects the place-side filters of a structured query onto
// the given candidate ids.
func PlaceCriteriaFor(q StructuredQuery, placeIDs []string) PlaceCriteria {
	criteria := PlaceCriteria{
		PlaceIDs:     placeIDs,
		NameContains: q.PlaceName,
	}
	if center, miles, ok := q.GeoFilter(); ok {
		criteria.Within = &RadiusFilter{Center: center, Miles: miles}
	}
	return criteria
}
