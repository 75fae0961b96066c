package filter

import "strings"

// FacetOptioner returns the configured facet_by suffix of a field, e.g. "(sort_by: _alpha:asc)".
type FacetOptioner interface {
	FacetByOption(collection, field string) (string, bool)
}

// FacetBy renders the facet_by parameter for the requested facet names.
func FacetBy(facets []string, collection string, opts FacetOptioner) string {
	out := make([]string, 0, len(facets))
	for _, f := range facets {
		if f == "" {
			continue
		}
		if opts != nil {
			if suffix, ok := opts.FacetByOption(collection, f); ok {
				f += suffix
			}
		}
		out = append(out, f)
	}
	return strings.Join(out, ",")
}
