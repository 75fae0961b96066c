package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchbridge/internal/domain"
	"github.com/kailas-cloud/searchbridge/internal/domain/geo"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/filter"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/options"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/params"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/request"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/sortby"
	"github.com/kailas-cloud/searchbridge/internal/logger"
	"github.com/kailas-cloud/searchbridge/internal/metrics"
)

// Service translates widget requests into one backend multi-search call.
type Service struct {
	backend Backend
	opts    *options.Options
	logger  *zap.Logger
}

// New creates a search service. A nil opts means no allow-lists or overrides.
func New(backend Backend, opts *options.Options, logger *zap.Logger) *Service {
	if opts == nil {
		opts = options.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, opts: opts, logger: logger}
}

// Search translates reqs and performs the batch. Translation errors are
// returned before the backend is called; backend errors are returned as is.
func (s *Service) Search(ctx context.Context, reqs []request.Request) ([]json.RawMessage, error) {
	body, common, err := s.Compose(reqs)
	metrics.TranslationsTotal.WithLabelValues(translationStatus(err)).Inc()
	if err != nil {
		return nil, err
	}
	metrics.SearchesPerBatch.Observe(float64(len(body.Searches)))

	results, err := s.backend.MultiSearch(ctx, body, common)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Error("Multi search failed",
			zap.Int("searches", len(body.Searches)),
			zap.Error(err),
		)
		return nil, err //nolint:wrapcheck // backend errors propagate unchanged
	}
	return results, nil
}

// Compose builds the batch envelope and the common parameters.
//
// Conversational state of the first search (q, conversation, conversation_id,
// conversation_model_id) moves to the common parameters and is removed from
// every search. When union is enabled the envelope carries the configured
// value and the first search's page and per_page are copied to the common
// parameters.
func (s *Service) Compose(reqs []request.Request) (params.Envelope, params.SearchParameters, error) {
	if len(reqs) == 0 {
		return params.Envelope{}, nil, fmt.Errorf("%w: no requests", domain.ErrInvalidRequest)
	}

	searches := make([]params.SearchParameters, 0, len(reqs))
	for i, req := range reqs {
		p, err := s.BuildSearchParameters(req)
		if err != nil {
			return params.Envelope{}, nil, fmt.Errorf("request %d (%s): %w", i, req.IndexName(), err)
		}
		searches = append(searches, p)
	}

	common := params.SearchParameters{}
	first := searches[0]

	if first.IsConversational() {
		for _, key := range params.ConversationalKeys {
			if v, ok := first[key]; ok {
				common[key] = v
			}
		}
		for _, sp := range searches {
			for _, key := range params.ConversationalKeys {
				delete(sp, key)
			}
		}
	}

	body := params.Envelope{Searches: searches}
	if union, ok := s.opts.Union(); ok {
		body.Union = union
		for _, key := range []string{params.Page, params.PerPage} {
			if v, ok := first[key]; ok {
				common[key] = v
			}
		}
	}
	return body, common, nil
}

// BuildSearchParameters translates a single widget request. Configured
// additional parameters come first, request-derived values override them,
// and the request's own searchParameters override both.
func (s *Service) BuildSearchParameters(req request.Request) (params.SearchParameters, error) {
	p := req.Params()
	dir := s.resolveSort(req.IndexName(), p.SortBy)
	collection := dir.Collection

	for _, key := range req.Unused() {
		s.logger.Debug("Ignoring unsupported search param",
			zap.String("index", req.IndexName()),
			zap.String("param", key),
		)
	}

	filterBy, err := s.filterBy(req, collection)
	if err != nil {
		return nil, err
	}

	out := params.SearchParameters(s.opts.SearchParameters(collection))
	out[params.Collection] = collection

	out[params.Q] = params.DefaultQuery
	if p.Query != "" {
		out[params.Q] = p.Query
	}

	page := 1
	if p.Page != nil {
		page = *p.Page + 1
	}
	out[params.Page] = page

	if p.HitsPerPage != nil {
		out[params.PerPage] = *p.HitsPerPage
	}
	if filterBy != "" {
		out[params.FilterBy] = filterBy
	}
	if facetBy := filter.FacetBy(p.Facets, collection, s.opts); facetBy != "" {
		out[params.FacetBy] = facetBy
	}
	if p.MaxValuesPerFacet != nil {
		out[params.MaxFacetValues] = *p.MaxValuesPerFacet
	}
	if p.FacetName != "" {
		out[params.FacetQuery] = p.FacetName + ":" + p.FacetQuery
	}
	if p.HighlightPreTag != "" {
		out[params.HighlightStartTag] = p.HighlightPreTag
	}
	if p.HighlightPostTag != "" {
		out[params.HighlightEndTag] = p.HighlightPostTag
	}
	if len(p.RuleContexts) > 0 {
		out[params.OverrideTags] = strings.Join(p.RuleContexts, ",")
	}
	if dir.HasSort() {
		out[params.SortBy] = dir.SortBy
		if dir.EnableOverrides != nil {
			out[params.EnableOverrides] = *dir.EnableOverrides
		}
	}

	for k, v := range p.SearchParameters {
		out[k] = v
	}

	if queryBy, ok := out.String(params.QueryBy); ok && !out.Has(params.HighlightFullFields) {
		out[params.HighlightFullFields] = queryBy
	}
	return out, nil
}

// resolveSort prefers a sort embedded in the index identifier over the sortBy param.
func (s *Service) resolveSort(indexName, sortBy string) sortby.Directive {
	dir := sortby.Resolve(indexName, s.opts)
	if dir.HasSort() || sortBy == "" {
		return dir
	}
	spec := sortBy
	if _, embedded, ok := strings.Cut(sortBy, sortby.Separator); ok {
		spec = embedded
	}
	return sortby.ResolveSpec(dir.Collection, spec, s.opts)
}

// filterBy conjoins the verbatim filters string with the translated facet,
// numeric and geo expressions.
func (s *Service) filterBy(req request.Request, collection string) (string, error) {
	reg := s.opts.Registry()

	facets, err := filter.Facets(req.FacetFilters(), collection, reg, s.opts)
	if err != nil {
		return "", fmt.Errorf("facet filters: %w", err)
	}
	numeric, err := filter.Numeric(req.NumericFilters(), reg)
	if err != nil {
		return "", fmt.Errorf("numeric filters: %w", err)
	}
	geoFilter, err := geo.Adapt(req.Geo(), s.opts.GeoLocationField())
	if err != nil {
		return "", err //nolint:wrapcheck // geo errors carry a user-facing message
	}
	return filter.Conjoin(req.Params().Filters, facets, numeric, geoFilter), nil
}

func translationStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMalformedFilter):
		return "malformed_filter"
	case errors.Is(err, domain.ErrInvalidGeoFilter):
		return "invalid_geo"
	default:
		return "invalid_request"
	}
}
