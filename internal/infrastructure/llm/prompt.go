package llm

import (
	"encoding/json"
	"fmt"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

const (
	classificationMaxTokens = 500
	rankingMaxTokens        = 2000
	maxQueryChars           = 2000
)

const classificationInstructions = `You classify search queries over a personal diary of restaurant reviews.
Return a strict JSON object with keys:
queryType (one of "structured", "full-text", "hybrid") and queryParameters (object).
queryParameters keys, null when the query does not mention them:
location (object with lat, lng numbers), radius (number, miles),
dateRange (object with start, end as YYYY-MM-DD strings or null),
placeName (string), wouldReturn (object with boolean keys yes, no, notSpecified),
itemsOrdered (array of strings), openNow (boolean).
Classification rule:
- only structured fields (location, radius, dates, place name, would-return, items ordered, open now) => "structured"
- only free narrative content (taste, atmosphere, service, opinions) => "full-text"
- both => "hybrid"
No markdown, no extra keys.`

func buildClassificationMessages(query string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: classificationInstructions},
		{Role: domain.RoleUser, Content: "Query:\n" + truncate(query, maxQueryChars)},
	}
}

func buildRankingMessages(req domain.RankRequest) ([]domain.ChatMessage, error) {
	places, err := json.Marshal(domain.ProjectPlaces(req.Places))
	if err != nil {
		return nil, fmt.Errorf("marshal place candidates: %w", err)
	}
	reviews, err := json.Marshal(domain.ProjectReviews(req.Reviews))
	if err != nil {
		return nil, fmt.Errorf("marshal review candidates: %w", err)
	}

	instructions := `You select restaurant places and reviews relevant to a search query.
Return a strict JSON object with keys placeIds (array of strings) and reviewIds (array of strings).
Only use ids that appear in the candidates. Return empty arrays when nothing is relevant.
No markdown, no extra keys.`
	if req.Mode == domain.RankModeHybrid {
		instructions += `
The candidates already satisfy the structured part of the query.
Keep a review only if its text explicitly or contextually matches the query; mentioning the same place or dish without matching the query is not enough.`
	}

	user := fmt.Sprintf("Query:\n%s\n\nPlaces:\n%s\n\nReviews:\n%s\n", truncate(req.Query, maxQueryChars), places, reviews)
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: instructions},
		{Role: domain.RoleUser, Content: user},
	}, nil
}
