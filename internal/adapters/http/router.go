package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/dinelog/internal/config"
	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
	"github.com/kirillkom/dinelog/internal/observability/metrics"
)

const (
	serviceName  = "api"
	maxBodyBytes = 1 << 20
)

type Router struct {
	cfg        config.Config
	resolver   ports.QueryResolver
	filter     ports.StructuredFilter
	normalizer ports.ItemNameNormalizer
	submitter  ports.ItemNameSubmitter
	sessions   ports.SessionReader
	metrics    *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	resolver ports.QueryResolver,
	filter ports.StructuredFilter,
	normalizer ports.ItemNameNormalizer,
	submitter ports.ItemNameSubmitter,
	sessions ports.SessionReader,
) *Router {
	return &Router{
		cfg:        cfg,
		resolver:   resolver,
		filter:     filter,
		normalizer: normalizer,
		submitter:  submitter,
		sessions:   sessions,
	}
}

// WithMetrics enables request and domain metrics plus the /metrics endpoint.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/query", rt.resolveQuery)
	mux.HandleFunc("POST /v1/filter", rt.filterReviews)
	mux.HandleFunc("POST /v1/item-names/normalize", rt.normalizeItemNames)
	mux.HandleFunc("POST /v1/item-names/batches", rt.submitItemNames)
	mux.HandleFunc("GET /v1/sessions/{sessionId}", rt.sessionHistory)
	mux.HandleFunc("DELETE /v1/sessions/{sessionId}", rt.resetSession)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	validator, err := loadOpenAPIRouter()
	if err != nil {
		slog.Error("openapi_router_init_failed", "error", err)
	}

	var handler http.Handler = mux
	handler = openAPIValidationMiddleware(handler, validator)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resolveRequest struct {
	Query     string           `json:"query"`
	Location  *domain.GeoPoint `json:"location"`
	SessionID string           `json:"sessionId"`
}

func (rt *Router) resolveQuery(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}

	start := time.Now()
	result, err := rt.resolver.Resolve(r.Context(), domain.ResolveRequest{
		Query:     req.Query,
		Center:    req.Location,
		SessionID: strings.TrimSpace(req.SessionID),
	})
	rt.recordQuery("/v1/query", result, time.Since(start), err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ToPublicResult(result))
}

func (rt *Router) filterReviews(w http.ResponseWriter, r *http.Request) {
	var params domain.QueryParameters
	if !decodeJSON(w, r, &params) {
		return
	}

	start := time.Now()
	result, err := rt.filter.Filter(r.Context(), params.ToStructuredQuery(nil))
	rt.recordQuery("/v1/filter", result, time.Since(start), err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ToPublicResult(result))
}

type normalizeRequest struct {
	Name  string   `json:"name"`
	Names []string `json:"names"`
}

func (rt *Router) normalizeItemNames(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Names) == 0 {
		item, err := rt.normalizer.Normalize(r.Context(), req.Name)
		if err != nil {
			rt.recordNormalization("error")
			writeDomainError(w, r, err)
			return
		}
		rt.recordNormalized([]domain.NormalizedItem{item})
		writeJSON(w, http.StatusOK, item)
		return
	}

	items, err := rt.normalizer.NormalizeAll(r.Context(), req.Names)
	if err != nil {
		rt.recordNormalization("error")
		writeDomainError(w, r, err)
		return
	}
	rt.recordNormalized(items)
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type submitRequest struct {
	ReviewID string   `json:"reviewId"`
	Names    []string `json:"names"`
}

func (rt *Router) submitItemNames(w http.ResponseWriter, r *http.Request) {
	if rt.submitter == nil {
		writeError(w, r, http.StatusServiceUnavailable, "asynchronous normalization is not configured")
		return
	}
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	batch, err := rt.submitter.Submit(r.Context(), domain.ItemNameBatch{ReviewID: req.ReviewID, Names: req.Names})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, batch)
}

func (rt *Router) sessionHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := rt.sessions.History(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (rt *Router) resetSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessions.Reset(r.Context(), r.PathValue("sessionId")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) recordQuery(endpoint string, result *domain.QueryResult, duration time.Duration, err error) {
	if rt.metrics == nil {
		return
	}
	var (
		queryType string
		reviews   int
		degraded  bool
	)
	if result != nil {
		queryType = string(result.Type)
		reviews = len(result.Reviews)
		degraded = result.RankingDegraded
	}
	rt.metrics.RecordQuery(serviceName, endpoint, queryType, reviews, degraded, duration, err)
}

func (rt *Router) recordNormalized(items []domain.NormalizedItem) {
	for _, item := range items {
		if item.Matched {
			rt.recordNormalization("matched")
			continue
		}
		rt.recordNormalization("new")
	}
}

func (rt *Router) recordNormalization(outcome string) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordNormalization(serviceName, outcome)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http_request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeError(w, r, status, publicErrorMessage(status, err))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":      message,
		"request_id": requestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
