package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

// QueryClassifier asks the chat model for the query type and the extracted
// structured parameters.
type QueryClassifier struct {
	completer ports.ChatCompleter
}

func NewQueryClassifier(completer ports.ChatCompleter) *QueryClassifier {
	return &QueryClassifier{completer: completer}
}

func (c *QueryClassifier) Classify(ctx context.Context, query string) (domain.Classification, error) {
	raw, err := c.completer.Complete(ctx, buildClassificationMessages(query), domain.CompletionOptions{
		MaxTokens:   classificationMaxTokens,
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("complete classification: %w", err)
	}
	return parseClassification(raw), nil
}

func parseClassification(raw string) domain.Classification {
	var payload struct {
		QueryType       string                 `json:"queryType"`
		QueryParameters domain.QueryParameters `json:"queryParameters"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return domain.Classification{Failure: &domain.ParseFailure{
			Reason: fmt.Sprintf("parse classification json: %v", err),
			Raw:    truncate(raw, 512),
		}}
	}

	queryType := normalizeQueryType(payload.QueryType)
	if !queryType.Valid() {
		return domain.Classification{Failure: &domain.ParseFailure{
			Reason: fmt.Sprintf("unknown query type %q", payload.QueryType),
			Raw:    truncate(raw, 512),
		}}
	}
	return domain.Classification{Query: domain.ParsedQuery{
		Type:       queryType,
		Parameters: payload.QueryParameters,
	}}
}

func normalizeQueryType(raw string) domain.QueryType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "structured":
		return domain.QueryTypeStructured
	case "full-text", "fulltext", "full_text", "full text":
		return domain.QueryTypeFullText
	case "hybrid":
		return domain.QueryTypeHybrid
	default:
		return domain.QueryType(raw)
	}
}
