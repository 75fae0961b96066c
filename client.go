package searchbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchbridge/internal/domain/search/request"
	"github.com/kailas-cloud/searchbridge/internal/transport/typesense"
	searchuc "github.com/kailas-cloud/searchbridge/internal/usecase/search"
)

// ErrNoBackend is returned by Search and Health when no backend was configured.
var ErrNoBackend = errors.New("searchbridge: backend not configured (use WithBackend)")

// Request is one widget search: an index identifier, optionally carrying a
// "/sort/<spec>" suffix, and its loosely typed params.
type Request struct {
	IndexName string         `json:"indexName"`
	Params    map[string]any `json:"params"`
}

// Translation is a composed batch: the per-search parameters, the union flag
// as configured, and the parameters shared by every search.
type Translation struct {
	Searches []map[string]any `json:"searches"`
	Union    any              `json:"union,omitempty"`
	Common   map[string]any   `json:"common"`
}

// Adapter is the searchbridge SDK entry point.
type Adapter struct {
	svc     *searchuc.Service
	backend *typesense.Client
	obs     *observer
}

// New creates an Adapter. It does not contact the backend.
func New(opts ...Option) (*Adapter, error) {
	cfg := &adapterConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	a := &Adapter{obs: obs}
	if cfg.baseURL != "" {
		a.backend, err = typesense.NewClient(&typesense.Config{
			BaseURL:        cfg.baseURL,
			APIKey:         cfg.apiKey,
			RequestTimeout: cfg.timeout,
			HTTPClient:     cfg.httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("searchbridge: %w", err)
		}
	}

	var backend searchuc.Backend
	if a.backend != nil {
		backend = a.backend
	}
	a.svc = searchuc.New(backend, cfg.options.Options(), nil)
	return a, nil
}

// Translate composes the backend batch for reqs without any network call.
func (a *Adapter) Translate(reqs []Request) (Translation, error) {
	start := time.Now()
	t, err := a.translate(reqs)
	a.obs.observe("translate", len(reqs), start, err)
	return t, err
}

func (a *Adapter) translate(reqs []Request) (Translation, error) {
	parsed, err := parseRequests(reqs)
	if err != nil {
		return Translation{}, err
	}
	body, common, err := a.svc.Compose(parsed)
	if err != nil {
		return Translation{}, fmt.Errorf("searchbridge: %w", err)
	}

	t := Translation{
		Searches: make([]map[string]any, 0, len(body.Searches)),
		Union:    body.Union,
		Common:   map[string]any(common),
	}
	for _, sp := range body.Searches {
		t.Searches = append(t.Searches, map[string]any(sp))
	}
	return t, nil
}

// Search translates reqs and executes the batch. Results are the backend's
// per-search responses, in order. A union search yields a single result.
func (a *Adapter) Search(ctx context.Context, reqs []Request) ([]json.RawMessage, error) {
	start := time.Now()
	results, err := a.search(ctx, reqs)
	a.obs.observe("search", len(reqs), start, err)
	return results, err
}

func (a *Adapter) search(ctx context.Context, reqs []Request) ([]json.RawMessage, error) {
	if a.backend == nil {
		return nil, ErrNoBackend
	}
	parsed, err := parseRequests(reqs)
	if err != nil {
		return nil, err
	}
	results, err := a.svc.Search(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("searchbridge: %w", err)
	}
	return results, nil
}

// Health checks backend connectivity.
func (a *Adapter) Health(ctx context.Context) error {
	if a.backend == nil {
		return ErrNoBackend
	}
	if err := a.backend.Health(ctx); err != nil {
		return fmt.Errorf("searchbridge: %w", err)
	}
	return nil
}

func parseRequests(reqs []Request) ([]request.Request, error) {
	out := make([]request.Request, 0, len(reqs))
	for i, r := range reqs {
		req, err := request.New(r.IndexName, r.Params)
		if err != nil {
			return nil, fmt.Errorf("searchbridge: request %d: %w", i, err)
		}
		out = append(out, req)
	}
	return out, nil
}
