package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchbridge/internal/domain"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/searchbridge/internal/usecase/health"
	"github.com/kailas-cloud/searchbridge/internal/version"
)

// MaxBatchSize limits the number of requests in one multi-search call.
const MaxBatchSize = 50

// maxBodyBytes limits the multi-search request body.
const maxBodyBytes = 1 << 20

// ErrorCode is a machine-readable error code in error responses.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeInvalidRequest   ErrorCode = "invalid_request"
	CodeMalformedFilter  ErrorCode = "malformed_filter"
	CodeInvalidGeoFilter ErrorCode = "invalid_geo_filter"
	CodeBackendError     ErrorCode = "backend_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MultiSearchRequest is the body of POST /multi_search.
type MultiSearchRequest struct {
	Requests []WidgetRequest `json:"requests"`
}

// WidgetRequest is one search as sent by the widget layer.
type WidgetRequest struct {
	IndexName string         `json:"indexName"`
	Params    map[string]any `json:"params"`
}

// MultiSearchResponse carries the backend results verbatim, one per search.
type MultiSearchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// Searcher translates and executes a batch of widget requests.
type Searcher interface {
	Search(ctx context.Context, reqs []request.Request) ([]json.RawMessage, error)
}

// HealthChecker aggregates dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the multi-search HTTP API.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		geoFilterHandler,
		detailHandler(domain.ErrMalformedFilter, http.StatusBadRequest, CodeMalformedFilter),
		detailHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeInvalidRequest),
		sentinelHandler(domain.ErrBackend, http.StatusBadGateway, CodeBackendError),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/multi_search", s.MultiSearch)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// MultiSearch handles POST /multi_search.
func (s *Server) MultiSearch(w http.ResponseWriter, r *http.Request) {
	var body MultiSearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body.Requests) == 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "requests must not be empty")
		return
	}
	if len(body.Requests) > MaxBatchSize {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest,
			fmt.Sprintf("too many requests in batch (max %d)", MaxBatchSize))
		return
	}

	reqs := make([]request.Request, 0, len(body.Requests))
	for i, wr := range body.Requests {
		req, err := request.New(wr.IndexName, wr.Params)
		if err != nil {
			s.handleDomainError(w, fmt.Errorf("request %d: %w", i, err))
			return
		}
		reqs = append(reqs, req)
	}

	results, err := s.search.Search(r.Context(), reqs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if results == nil {
		results = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, MultiSearchResponse{Results: results})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrMalformedFilter,
		domain.ErrInvalidGeoFilter,
		domain.ErrInvalidRequest,
		domain.ErrBackend,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// detailHandler is sentinelHandler for client errors whose text only echoes the request.
func detailHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// geoFilterHandler writes the user-facing geo message as is.
func geoFilterHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidGeoFilter) {
		return false
	}
	var gfe *domain.GeoFilterError
	if errors.As(err, &gfe) {
		msg = gfe.Message
	}
	writeError(w, http.StatusBadRequest, CodeInvalidGeoFilter, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
