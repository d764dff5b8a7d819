package resilience

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestWithDefaultsFillsUnsetFields(t *testing.T) {
	cfg := Config{RetryInitialBackoff: time.Second, RetryMaxBackoff: time.Millisecond, BreakerFailureRatio: 2}.withDefaults()

	if cfg.RetryMaxAttempts != 1 {
		t.Fatalf("expected single attempt by default, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryMaxBackoff != time.Second {
		t.Fatalf("expected max backoff raised to initial backoff, got %v", cfg.RetryMaxBackoff)
	}
	if cfg.BreakerFailureRatio != 0.5 {
		t.Fatalf("expected out-of-range ratio replaced, got %v", cfg.BreakerFailureRatio)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected BreakerEnabled to be kept as given")
	}
}

func TestBackoffAfterGrowsAndCaps(t *testing.T) {
	cfg := Config{
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     350 * time.Millisecond,
		RetryMultiplier:     2,
	}.withDefaults()

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 350 * time.Millisecond, 350 * time.Millisecond}
	for i, w := range want {
		if got := cfg.backoffAfter(i + 1); got != w {
			t.Fatalf("backoffAfter(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestShouldTripNeedsMinimumRequests(t *testing.T) {
	cfg := Config{BreakerMinRequests: 4, BreakerFailureRatio: 0.5}.withDefaults()

	if cfg.shouldTrip(gobreaker.Counts{Requests: 3, TotalFailures: 3}) {
		t.Fatalf("expected no trip below minimum requests")
	}
	if !cfg.shouldTrip(gobreaker.Counts{Requests: 4, TotalFailures: 2}) {
		t.Fatalf("expected trip at failure ratio threshold")
	}
	if cfg.shouldTrip(gobreaker.Counts{Requests: 4, TotalFailures: 1}) {
		t.Fatalf("expected no trip below ratio")
	}
}
