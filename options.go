package searchbridge

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/searchbridge/internal/config"
)

// Options holds the translation settings: sort and filter allow-lists,
// facet_by suffixes, special-character fields, geo field, union and
// additional search parameters. It has the same shape as the adapter
// section of the server's YAML config.
type Options = config.AdapterConfig

// SortOption is an allowed sort spec.
type SortOption = config.SortOption

// FilterOption is the facet filter setting of a field.
type FilterOption = config.FilterOption

// Option configures the Adapter.
type Option interface {
	apply(*adapterConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*adapterConfig)

func (f optionFunc) apply(c *adapterConfig) { f(c) }

type adapterConfig struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client

	options Options

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBackend sets the Typesense node, e.g. "http://localhost:8108", and its API key.
// Without a backend only Translate is available.
func WithBackend(baseURL, apiKey string) Option {
	return optionFunc(func(c *adapterConfig) {
		c.baseURL = baseURL
		c.apiKey = apiKey
	})
}

// WithTimeout sets the per-request backend timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *adapterConfig) {
		c.timeout = d
	})
}

// WithHTTPClient overrides the HTTP client used for the backend.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *adapterConfig) {
		c.httpClient = hc
	})
}

// WithOptions sets the translation settings. The adapter keeps its own copy.
func WithOptions(o Options) Option {
	return optionFunc(func(c *adapterConfig) {
		c.options = o
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *adapterConfig) {
		c.logger = l
	})
}

// WithMetrics registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *adapterConfig) {
		c.metricsReg = reg
	})
}
