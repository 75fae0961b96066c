// Package sortby resolves sort directives embedded in index identifiers of the
// form "<collection>/sort/<field>:<direction>" against configured allow-lists.
package sortby

import "strings"

// Separator splits the collection name from the sort spec.
const Separator = "/sort/"

// Option is the configured entry for an allowed sort spec.
// EnableOverrides is copied verbatim into the search parameters when set.
type Option struct {
	EnableOverrides *bool
}

// Lookup finds the allowed option for spec, collection-specific entries first.
type Lookup interface {
	SortOption(collection, spec string) (Option, bool)
}

// Directive is the resolved collection and, when allowed, its sort.
type Directive struct {
	Collection      string
	SortBy          string
	EnableOverrides *bool
}

// HasSort reports whether an allowed sort was resolved.
func (d Directive) HasSort() bool { return d.SortBy != "" }

// Resolve splits indexName on the first "/sort/" segment. Specs missing from
// the allow-lists are dropped and only the base collection is kept.
func Resolve(indexName string, lookup Lookup) Directive {
	collection, spec, ok := strings.Cut(indexName, Separator)
	if !ok {
		return Directive{Collection: indexName}
	}
	return ResolveSpec(collection, spec, lookup)
}

// ResolveSpec validates spec for collection.
func ResolveSpec(collection, spec string, lookup Lookup) Directive {
	d := Directive{Collection: collection}
	if spec == "" || lookup == nil {
		return d
	}
	opt, ok := lookup.SortOption(collection, spec)
	if !ok {
		return d
	}
	d.SortBy = spec
	if opt.EnableOverrides != nil {
		v := *opt.EnableOverrides
		d.EnableOverrides = &v
	}
	return d
}
