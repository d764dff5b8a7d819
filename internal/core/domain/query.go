package domain

import (
	"errors"
	"fmt"
	"strings"
)

type QueryType string

const (
	QueryTypeStructured QueryType = "structured"
	QueryTypeFullText   QueryType = "full-text"
	QueryTypeHybrid     QueryType = "hybrid"
)

func (t QueryType) Valid() bool {
	switch t {
	case QueryTypeStructured, QueryTypeFullText, QueryTypeHybrid:
		return true
	default:
		return false
	}
}

// WouldReturnSet selects reviews by their would-return value. An empty set
// places no restriction.
type WouldReturnSet struct {
	Yes          bool `json:"yes,omitempty"`
	No           bool `json:"no,omitempty"`
	NotSpecified bool `json:"notSpecified,omitempty"`
}

func (s WouldReturnSet) Any() bool {
	return s.Yes || s.No || s.NotSpecified
}

func (s WouldReturnSet) Values() []WouldReturn {
	out := make([]WouldReturn, 0, 3)
	if s.Yes {
		out = append(out, WouldReturnYes)
	}
	if s.No {
		out = append(out, WouldReturnNo)
	}
	if s.NotSpecified {
		out = append(out, WouldReturnUnspecified)
	}
	return out
}

type DateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// QueryParameters is the extraction schema filled in by the classifier.
// Every field the model omits stays nil.
type QueryParameters struct {
	Location     *GeoPoint       `json:"location"`
	Radius       *float64        `json:"radius"`
	DateRange    *DateRange      `json:"dateRange"`
	PlaceName    *string         `json:"placeName"`
	WouldReturn  *WouldReturnSet `json:"wouldReturn"`
	ItemsOrdered []string        `json:"itemsOrdered"`
	OpenNow      *bool           `json:"openNow"`
}

type ParsedQuery struct {
	Type       QueryType       `json:"queryType"`
	Parameters QueryParameters `json:"queryParameters"`
}

// ParseFailure describes a model response that could not be used.
type ParseFailure struct {
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitempty"`
}

func (f *ParseFailure) Error() string {
	if f == nil {
		return "parse failure"
	}
	return f.Reason
}

// Classification is either a parsed query or a parse failure, never both.
type Classification struct {
	Query   ParsedQuery
	Failure *ParseFailure
}

func (c Classification) OK() bool {
	return c.Failure == nil
}

// StructuredQuery is the typed filter request handled by the executor.
type StructuredQuery struct {
	Center       *GeoPoint      `json:"center,omitempty"`
	RadiusMiles  *float64       `json:"radiusMiles,omitempty"`
	WouldReturn  WouldReturnSet `json:"wouldReturn"`
	PlaceName    string         `json:"placeName,omitempty"`
	DateFrom     string         `json:"dateFrom,omitempty"`
	DateTo       string         `json:"dateTo,omitempty"`
	ItemsOrdered []string       `json:"itemsOrdered,omitempty"`
	OpenNow      bool           `json:"openNow,omitempty"`
}

func (q StructuredQuery) Validate() error {
	if q.RadiusMiles != nil && *q.RadiusMiles < 0 {
		return WrapError(ErrInvalidInput, "validate structured query", errors.New("radius must be non-negative"))
	}
	if q.Center != nil {
		if q.Center.Lat < -90 || q.Center.Lat > 90 || q.Center.Lng < -180 || q.Center.Lng > 180 {
			return WrapError(ErrInvalidInput, "validate structured query", fmt.Errorf("center out of range: %v", *q.Center))
		}
	}
	return nil
}

// EmptyDateRange reports a visit-date range no review can fall into.
func (q StructuredQuery) EmptyDateRange() bool {
	return q.DateFrom != "" && q.DateTo != "" && q.DateFrom > q.DateTo
}

// GeoFilter reports whether the query carries both a center and a radius.
func (q StructuredQuery) GeoFilter() (GeoPoint, float64, bool) {
	if q.Center == nil || q.RadiusMiles == nil {
		return GeoPoint{}, 0, false
	}
	return *q.Center, *q.RadiusMiles, true
}

// ToStructuredQuery converts classifier output into executor input. The
// fallback center is the caller's position, used when the model extracted a
// radius without coordinates.
func (p QueryParameters) ToStructuredQuery(fallbackCenter *GeoPoint) StructuredQuery {
	q := StructuredQuery{}
	if p.Radius != nil {
		radius := *p.Radius
		q.RadiusMiles = &radius
		switch {
		case p.Location != nil:
			center := *p.Location
			q.Center = &center
		case fallbackCenter != nil:
			center := *fallbackCenter
			q.Center = &center
		}
	}
	if p.WouldReturn != nil {
		q.WouldReturn = *p.WouldReturn
	}
	if p.PlaceName != nil {
		q.PlaceName = strings.TrimSpace(*p.PlaceName)
	}
	if p.DateRange != nil {
		if p.DateRange.Start != nil {
			q.DateFrom = strings.TrimSpace(*p.DateRange.Start)
		}
		if p.DateRange.End != nil {
			q.DateTo = strings.TrimSpace(*p.DateRange.End)
		}
	}
	for _, item := range p.ItemsOrdered {
		if item = strings.TrimSpace(item); item != "" {
			q.ItemsOrdered = append(q.ItemsOrdered, item)
		}
	}
	if p.OpenNow != nil {
		q.OpenNow = *p.OpenNow
	}
	return q
}

type ResolveRequest struct {
	Query     string    `json:"query"`
	Center    *GeoPoint `json:"center,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
}

type QueryResult struct {
	Type            QueryType `json:"query_type,omitempty"`
	Places          []Place   `json:"places"`
	Reviews         []Review  `json:"reviews"`
	RankingDegraded bool      `json:"ranking_degraded,omitempty"`
}

func EmptyResult(queryType QueryType) *QueryResult {
	return &QueryResult{Type: queryType, Places: []Place{}, Reviews: []Review{}}
}
