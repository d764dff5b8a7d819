package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestHTTPServerMetricsRecordsQueryOutcomes(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.RecordQuery("api", "/v1/query", "hybrid", 0, true, 10*time.Millisecond, nil)
	m.RecordQuery("api", "/v1/query", "", 0, false, time.Millisecond, errors.New("boom"))
	m.RecordNormalization("api", "matched")
	m.RecordBreakerTransition("api", "ollama.chat", "open")

	out := scrape(t, m.Handler())
	for _, want := range []string{
		`dinelog_query_resolutions_total{endpoint="/v1/query",query_type="hybrid",service="api",status="success"} 1`,
		`dinelog_query_resolutions_total{endpoint="/v1/query",query_type="unknown",service="api",status="error"} 1`,
		`dinelog_query_ranking_degraded_total{endpoint="/v1/query",query_type="hybrid",service="api"} 1`,
		`dinelog_query_empty_results_total{endpoint="/v1/query",query_type="hybrid",service="api"} 1`,
		`dinelog_item_names_normalized_total{outcome="matched",service="api"} 1`,
		`dinelog_resilience_breaker_state_changes_total{operation="ollama.chat",service="api",to="open"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}

func TestMiddlewareNormalizesSessionPaths(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	h := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/v1/sessions/abc", nil))

	out := scrape(t, m.Handler())
	want := `dinelog_http_requests_total{method="DELETE",path="/v1/sessions/{session_id}",service="api",status="204"} 1`
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in metrics output", want)
	}
}

func TestWorkerMetricsBatchLifecycle(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartBatch("worker", 3)
	m.RecordNormalized("worker", 2, 1)
	m.ObserveQueueLag("worker", -time.Second)
	m.FinishBatch("worker", time.Second, nil)

	out := scrape(t, m.Handler())
	for _, want := range []string{
		`dinelog_worker_item_name_batches_total{service="worker",status="success"} 1`,
		`dinelog_worker_item_names_normalized_total{outcome="matched",service="worker"} 2`,
		`dinelog_worker_item_names_normalized_total{outcome="new",service="worker"} 1`,
		`dinelog_worker_item_name_batches_in_flight{service="worker"} 0`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}
