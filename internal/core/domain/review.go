package domain

import "strings"

type WouldReturn string

const (
	WouldReturnYes         WouldReturn = "yes"
	WouldReturnNo          WouldReturn = "no"
	WouldReturnUnspecified WouldReturn = "not-specified"
)

// ParseWouldReturn maps loosely formatted input onto the tri-state value.
// Anything that is not clearly yes or no is treated as not specified.
func ParseWouldReturn(raw string) WouldReturn {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "y":
		return WouldReturnYes
	case "no", "false", "n":
		return WouldReturnNo
	default:
		return WouldReturnUnspecified
	}
}

type ItemReview struct {
	Item    string `json:"item"`
	Comment string `json:"comment"`
}

type Review struct {
	ID           string       `json:"id"`
	PlaceID      string       `json:"place_id"`
	VisitDate    string       `json:"visit_date,omitempty"`
	WouldReturn  WouldReturn  `json:"would_return"`
	Text         string       `json:"text"`
	ReviewerName string       `json:"reviewer_name,omitempty"`
	ItemReviews  []ItemReview `json:"item_reviews,omitempty"`
}

// ItemNames returns the raw item names in review order.
func (r Review) ItemNames() []string {
	out := make([]string, 0, len(r.ItemReviews))
	for _, item := range r.ItemReviews {
		if strings.TrimSpace(item.Item) == "" {
			continue
		}
		out = append(out, item.Item)
	}
	return out
}
