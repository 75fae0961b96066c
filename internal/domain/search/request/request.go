// Package request models one widget search request as received from the
// client: an index identifier plus loosely typed params.
package request

import (
	"fmt"
	"slices"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/kailas-cloud/searchbridge/internal/domain"
	"github.com/kailas-cloud/searchbridge/internal/domain/geo"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/filter"
)

// Params are the widget params understood by the translator. Unknown keys are
// reported by Request.Unused and otherwise ignored.
type Params struct {
	Query             string              `json:"query"`
	Page              *int                `json:"page"`
	HitsPerPage       *int                `json:"hitsPerPage"`
	Filters           string              `json:"filters"`
	NumericFilters    any                 `json:"numericFilters"`
	FacetFilters      any                 `json:"facetFilters"`
	FacetsRefinements map[string][]string `json:"facetsRefinements"`
	Facets            []string            `json:"facets"`
	MaxValuesPerFacet *int                `json:"maxValuesPerFacet"`
	FacetName         string              `json:"facetName"`
	FacetQuery        string              `json:"facetQuery"`
	HighlightPreTag   string              `json:"highlightPreTag"`
	HighlightPostTag  string              `json:"highlightPostTag"`
	RuleContexts      []string            `json:"ruleContexts"`
	SortBy            string              `json:"sortBy"`
	InsideBoundingBox any                 `json:"insideBoundingBox"`
	AroundLatLng      string              `json:"aroundLatLng"`
	AroundRadius      any                 `json:"aroundRadius"`
	InsidePolygon     any                 `json:"insidePolygon"`
	SearchParameters  map[string]any      `json:"searchParameters"`
}

// Request is a decoded widget request with its filter tokens normalized.
type Request struct {
	indexName      string
	params         Params
	numericFilters []string
	facetFilters   []filter.FacetEntry
	unused         []string
}

// New decodes raw params. Scalars are coerced where the widget layer is loose
// ("2" for a page, a single string for a list).
func New(indexName string, raw map[string]any) (Request, error) {
	if indexName == "" {
		return Request{}, fmt.Errorf("%w: indexName is required", domain.ErrInvalidRequest)
	}

	var p Params
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &p,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Request{}, fmt.Errorf("create params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Request{}, fmt.Errorf("%w: decode params of %q: %w", domain.ErrInvalidRequest, indexName, err)
	}

	numeric, err := numericTokens(p.NumericFilters)
	if err != nil {
		return Request{}, err
	}
	facets, err := facetEntries(p.FacetFilters)
	if err != nil {
		return Request{}, err
	}
	facets = append(facets, refinementEntries(p.FacetsRefinements)...)

	unused := slices.Clone(md.Unused)
	sort.Strings(unused)

	return Request{
		indexName:      indexName,
		params:         p,
		numericFilters: numeric,
		facetFilters:   facets,
		unused:         unused,
	}, nil
}

// IndexName returns the index identifier, possibly carrying a "/sort/" segment.
func (r Request) IndexName() string { return r.indexName }

// Params returns the decoded params.
func (r Request) Params() Params { return r.params }

// NumericFilters returns numeric tokens flattened in input order.
func (r Request) NumericFilters() []string { return r.numericFilters }

// FacetFilters returns facetFilters entries followed by facetsRefinements.
func (r Request) FacetFilters() []filter.FacetEntry { return r.facetFilters }

// Geo returns the geo constraints.
func (r Request) Geo() geo.Query {
	return geo.Query{
		InsideBoundingBox: r.params.InsideBoundingBox,
		AroundLatLng:      r.params.AroundLatLng,
		AroundRadius:      r.params.AroundRadius,
		InsidePolygon:     r.params.InsidePolygon,
	}
}

// Unused returns param keys the translator does not understand, sorted.
func (r Request) Unused() []string { return r.unused }

// numericTokens accepts a string, a list of strings, or a list mixing strings
// and nested lists; nested lists are flattened.
func numericTokens(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		var out []string
		for _, e := range t {
			inner, err := numericTokens(e)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: numericFilters: unsupported element %T", domain.ErrInvalidRequest, v)
}

// facetEntries maps bare strings to AND tokens and arrays to OR groups.
func facetEntries(v any) ([]filter.FacetEntry, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return []filter.FacetEntry{filter.AndToken(t)}, nil
	case []string:
		out := make([]filter.FacetEntry, 0, len(t))
		for _, s := range t {
			out = append(out, filter.AndToken(s))
		}
		return out, nil
	case []any:
		out := make([]filter.FacetEntry, 0, len(t))
		for _, e := range t {
			switch el := e.(type) {
			case string:
				out = append(out, filter.AndToken(el))
			case []string:
				if len(el) > 0 {
					out = append(out, filter.OrGroup(el...))
				}
			case []any:
				group, err := stringList(el)
				if err != nil {
					return nil, err
				}
				if len(group) > 0 {
					out = append(out, filter.OrGroup(group...))
				}
			default:
				return nil, fmt.Errorf("%w: facetFilters: unsupported element %T", domain.ErrInvalidRequest, e)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: facetFilters: unsupported value %T", domain.ErrInvalidRequest, v)
}

// refinementEntries turns {field: [values]} into literal AND entries, fields sorted.
func refinementEntries(refinements map[string][]string) []filter.FacetEntry {
	fields := make([]string, 0, len(refinements))
	for f := range refinements {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []filter.FacetEntry
	for _, f := range fields {
		for _, v := range refinements[f] {
			if v == "" {
				continue
			}
			out = append(out, filter.Refinement(f, v))
		}
	}
	return out
}

func stringList(in []any) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, e := range in {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("%w: facetFilters: OR group element %T is not a string", domain.ErrInvalidRequest, e)
		}
		out = append(out, s)
	}
	return out, nil
}
