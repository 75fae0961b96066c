// Package options holds the immutable adapter configuration consulted during
// translation: sort allow-lists, exact-match policies, facet_by suffixes,
// the special-character field registry and batch-level settings.
package options

import (
	"maps"
	"math"

	"github.com/kailas-cloud/searchbridge/internal/domain/geo"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/sortby"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/token"
)

// FilterOption is the per-field facet filter setting. A nil ExactMatch keeps the default (true).
type FilterOption struct {
	ExactMatch *bool
}

// Config is the raw configuration. New copies it, so later changes to the maps are not observed.
type Config struct {
	SortByOptions                      map[string]sortby.Option
	CollectionSpecificSortByOptions    map[string]map[string]sortby.Option
	FilterByOptions                    map[string]FilterOption
	CollectionSpecificFilterByOptions  map[string]map[string]FilterOption
	FacetByOptions                     map[string]string
	CollectionSpecificFacetByOptions   map[string]map[string]string
	FacetableFieldsWithSpecialChars    []string
	GeoLocationField                   string
	Union                              any
	AdditionalSearchParameters         map[string]any
	CollectionSpecificSearchParameters map[string]map[string]any
}

// Options is safe for concurrent use; nothing mutates it after New.
type Options struct {
	sortBy           map[string]sortby.Option
	sortByCollection map[string]map[string]sortby.Option
	filterBy         map[string]FilterOption
	filterByColl     map[string]map[string]FilterOption
	facetBy          map[string]string
	facetByColl      map[string]map[string]string
	registry         token.Registry
	geoField         string
	union            any
	params           map[string]any
	paramsColl       map[string]map[string]any
}

// New builds Options from cfg.
func New(cfg Config) *Options {
	geoField := cfg.GeoLocationField
	if geoField == "" {
		geoField = geo.DefaultField
	}
	return &Options{
		sortBy:           maps.Clone(cfg.SortByOptions),
		sortByCollection: cloneNested(cfg.CollectionSpecificSortByOptions),
		filterBy:         maps.Clone(cfg.FilterByOptions),
		filterByColl:     cloneNested(cfg.CollectionSpecificFilterByOptions),
		facetBy:          maps.Clone(cfg.FacetByOptions),
		facetByColl:      cloneNested(cfg.CollectionSpecificFacetByOptions),
		registry:         token.NewRegistry(cfg.FacetableFieldsWithSpecialChars),
		geoField:         geoField,
		union:            cfg.Union,
		params:           maps.Clone(cfg.AdditionalSearchParameters),
		paramsColl:       cloneNested(cfg.CollectionSpecificSearchParameters),
	}
}

// Default returns Options with no allow-lists or overrides.
func Default() *Options { return New(Config{}) }

// SortOption looks spec up for collection first, then globally.
func (o *Options) SortOption(collection, spec string) (sortby.Option, bool) {
	if opt, ok := o.sortByCollection[collection][spec]; ok {
		return opt, true
	}
	opt, ok := o.sortBy[spec]
	return opt, ok
}

// ExactMatch resolves the exact-match policy of a facet key; the default is true.
func (o *Options) ExactMatch(collection, key string) bool {
	if opt, ok := o.filterByColl[collection][key]; ok && opt.ExactMatch != nil {
		return *opt.ExactMatch
	}
	if opt, ok := o.filterBy[key]; ok && opt.ExactMatch != nil {
		return *opt.ExactMatch
	}
	return true
}

// FacetByOption returns the facet_by suffix configured for field.
func (o *Options) FacetByOption(collection, field string) (string, bool) {
	if s, ok := o.facetByColl[collection][field]; ok {
		return s, true
	}
	s, ok := o.facetBy[field]
	return s, ok
}

// Registry returns the special-character field registry.
func (o *Options) Registry() token.Registry { return o.registry }

// GeoLocationField returns the field targeted by geo filters.
func (o *Options) GeoLocationField() string { return o.geoField }

// Union returns the configured union value and whether it enables union
// search. Anything except nil, false, "", and zero numbers counts as enabled,
// so the string "true" enables it.
func (o *Options) Union() (any, bool) {
	return o.union, Truthy(o.union)
}

// SearchParameters returns a fresh map of the additional search parameters for
// collection: global entries first, then collection-specific ones on top.
func (o *Options) SearchParameters(collection string) map[string]any {
	out := make(map[string]any, len(o.params)+len(o.paramsColl[collection]))
	maps.Copy(out, o.params)
	maps.Copy(out, o.paramsColl[collection])
	return out
}

// Truthy applies loose truthiness to a configuration value.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}

func cloneNested[V any](m map[string]map[string]V) map[string]map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]map[string]V, len(m))
	for k, v := range m {
		out[k] = maps.Clone(v)
	}
	return out
}
