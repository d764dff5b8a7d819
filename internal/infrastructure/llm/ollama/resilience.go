package ollama

import (
	"errors"
	"strings"

	"github.com/kirillkom/dinelog/internal/infrastructure/resilience"
)

// classifyOllamaError treats a model that is still loading as retryable even
// when Ollama answers with a 4xx.
func classifyOllamaError(err error) resilience.ErrorClassification {
	var statusErr *resilience.HTTPStatusError
	if errors.As(err, &statusErr) && strings.Contains(strings.ToLower(statusErr.Body), "loading model") {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ClassifyHTTPError(err)
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	return resilience.WrapTemporary(operation, err, classifyOllamaError)
}
