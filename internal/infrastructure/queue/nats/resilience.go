package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/infrastructure/resilience"
)

// connectionErrors are broker-side failures worth a retry.
var connectionErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrConnectionDraining,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
}

func classifyNATSError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case isBatchRejected(err):
		// The broker is healthy; the batch itself is unusable.
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err), isConnectionError(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

func isConnectionError(err error) bool {
	for _, target := range connectionErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isBatchRejected(err error) bool {
	return errors.Is(err, nats.ErrMaxPayload) || errors.Is(err, nats.ErrBadSubject)
}

// wrapPublishError maps a publish failure onto a domain kind: an oversized
// batch is the caller's fault, a broker outage is temporary.
func wrapPublishError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, nats.ErrMaxPayload) {
		return domain.WrapError(domain.ErrInvalidInput, "nats publish", errors.New("item name batch exceeds the broker payload limit"))
	}
	return resilience.WrapTemporary("nats publish", err, classifyNATSError)
}
