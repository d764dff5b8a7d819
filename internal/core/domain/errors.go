package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")

	// ErrClassificationParse marks a classifier response that was not valid JSON.
	ErrClassificationParse = errors.New("query classification failed")
	// ErrExtractionParse marks an unusable relevance-ranking response. It is
	// degraded to an empty judgement and never returned to callers.
	ErrExtractionParse = errors.New("relevance extraction failed")
	ErrQueryExecution  = errors.New("query execution failed")
	ErrEmbedding       = errors.New("embedding service failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
