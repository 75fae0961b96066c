// Package typesense executes translated batches against a Typesense server.
package typesense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchbridge/internal/domain"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/params"
	"github.com/kailas-cloud/searchbridge/internal/metrics"
)

// APIKeyHeader carries the backend API key.
const APIKeyHeader = "X-TYPESENSE-API-KEY"

const (
	multiSearchPath = "/multi_search"
	healthPath      = "/health"
	maxErrorBody    = 4 << 10
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL        string // e.g. "http://localhost:8108"
	APIKey         string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	Logger         *zap.Logger
	HTTPClient     *http.Client // optional, overrides the timeouts above
}

// Client is a Typesense multi-search client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client. Timeouts default to 5s to connect and 10s per request.
func NewClient(cfg *Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		connect := cfg.ConnectTimeout
		if connect <= 0 {
			connect = 5 * time.Second
		}
		request := cfg.RequestTimeout
		if request <= 0 {
			request = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout: request,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   connect,
					KeepAlive: 60 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(base.String(), "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// MultiSearch posts the envelope to /multi_search with the common parameters
// in the query string. A federated (union) response comes back as a single result.
func (c *Client) MultiSearch(
	ctx context.Context, body params.Envelope, common params.SearchParameters,
) ([]json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal multi search body: %w", err)
	}

	endpoint := c.baseURL + multiSearchPath
	if q := encodeCommon(common); q != "" {
		endpoint += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create multi search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req, "multi_search")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode multi search response: %w", domain.ErrBackend, err)
	}
	if resp.Results == nil {
		return []json.RawMessage{raw}, nil
	}
	return resp.Results, nil
}

// Health reports an error unless the server answers {"ok": true}.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	raw, err := c.do(req, "health")
	if err != nil {
		return err
	}
	var resp struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || !resp.OK {
		return fmt.Errorf("%w: backend reports unhealthy", domain.ErrBackend)
	}
	return nil
}

func (c *Client) do(req *http.Request, operation string) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	duration := time.Since(start)
	metrics.BackendRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(operation, "error").Inc()
		c.logger.Error("Backend request failed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrBackend, operation, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		metrics.BackendRequestsTotal.WithLabelValues(operation, strconv.Itoa(res.StatusCode)).Inc()
		msg := errorMessage(res.Body)
		c.logger.Warn("Backend returned an error",
			zap.String("operation", operation),
			zap.Int("status", res.StatusCode),
			zap.String("message", msg),
			zap.Duration("duration", duration),
		)
		return nil, &StatusError{Code: res.StatusCode, Message: msg}
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("%w: read %s response: %w", domain.ErrBackend, operation, err)
	}
	metrics.BackendRequestsTotal.WithLabelValues(operation, "success").Inc()
	return raw, nil
}

// StatusError is a non-2xx backend response. It unwraps to domain.ErrBackend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Code)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return domain.ErrBackend }

// errorMessage extracts {"message": "..."} from an error body, falling back to the raw text.
func errorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(raw))
}

// encodeCommon renders common parameters as a query string, keys sorted.
func encodeCommon(common params.SearchParameters) string {
	if len(common) == 0 {
		return ""
	}
	v := make(url.Values, len(common))
	for k, val := range common {
		v.Set(k, queryValue(val))
	}
	return v.Encode()
}

func queryValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
