package httpadapter

import (
	"net/http"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrClassificationParse), domain.IsKind(err, domain.ErrEmbedding):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicErrorMessage keeps store and model internals out of responses.
func publicErrorMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		return err.Error()
	case http.StatusBadGateway:
		if domain.IsKind(err, domain.ErrEmbedding) {
			return "embedding failed"
		}
		return "query failed"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return "internal error"
	}
}
