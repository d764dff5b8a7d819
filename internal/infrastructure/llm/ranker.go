package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

// RelevanceRanker asks the chat model which candidates match the query.
type RelevanceRanker struct {
	completer ports.ChatCompleter
}

func NewRelevanceRanker(completer ports.ChatCompleter) *RelevanceRanker {
	return &RelevanceRanker{completer: completer}
}

func (r *RelevanceRanker) Rank(ctx context.Context, req domain.RankRequest) (domain.RelevanceJudgement, error) {
	messages, err := buildRankingMessages(req)
	if err != nil {
		return domain.RelevanceJudgement{}, err
	}
	raw, err := r.completer.Complete(ctx, messages, domain.CompletionOptions{
		MaxTokens:   rankingMaxTokens,
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return domain.RelevanceJudgement{}, fmt.Errorf("complete ranking: %w", err)
	}
	return parseJudgement(raw), nil
}

func parseJudgement(raw string) domain.RelevanceJudgement {
	var payload struct {
		PlaceIDs  *[]string `json:"placeIds"`
		ReviewIDs *[]string `json:"reviewIds"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return domain.RelevanceJudgement{Failure: &domain.ParseFailure{
			Reason: fmt.Sprintf("%v: parse ranking json: %v", domain.ErrExtractionParse, err),
			Raw:    truncate(raw, 512),
		}}
	}
	if payload.PlaceIDs == nil || payload.ReviewIDs == nil {
		return domain.RelevanceJudgement{Failure: &domain.ParseFailure{
			Reason: fmt.Sprintf("%v: response must contain placeIds and reviewIds", domain.ErrExtractionParse),
			Raw:    truncate(raw, 512),
		}}
	}
	return domain.RelevanceJudgement{
		PlaceIDs:  *payload.PlaceIDs,
		ReviewIDs: *payload.ReviewIDs,
	}
}
