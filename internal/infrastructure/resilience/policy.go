package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// DefaultConfig performs a single attempt per call. A failed model or broker
// call fails the surrounding operation unless operators raise
// RetryMaxAttempts.
func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    1,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// withDefaults replaces unset or out-of-range fields with DefaultConfig
// values. BreakerEnabled is taken as given.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	out := c

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	out.RetryInitialBackoff = positiveOr(out.RetryInitialBackoff, def.RetryInitialBackoff)
	out.RetryMaxBackoff = max(positiveOr(out.RetryMaxBackoff, def.RetryMaxBackoff), out.RetryInitialBackoff)
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	out.BreakerOpenTimeout = positiveOr(out.BreakerOpenTimeout, def.BreakerOpenTimeout)
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}
	return out
}

// backoffAfter returns the wait before the attempt following the given one.
// The first wait is RetryInitialBackoff, then it grows geometrically and is
// capped at RetryMaxBackoff.
func (c Config) backoffAfter(attempt int) time.Duration {
	wait := float64(c.RetryInitialBackoff)
	for i := 1; i < attempt; i++ {
		wait *= c.RetryMultiplier
		if wait >= float64(c.RetryMaxBackoff) {
			return c.RetryMaxBackoff
		}
	}
	return min(time.Duration(wait), c.RetryMaxBackoff)
}

// shouldTrip opens the breaker once enough requests were seen in the current
// window and the failure ratio reached the threshold.
func (c Config) shouldTrip(counts gobreaker.Counts) bool {
	if counts.Requests < c.BreakerMinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.BreakerFailureRatio
}

func positiveOr(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
