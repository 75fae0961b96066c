package filter

import (
	"strings"

	"github.com/kailas-cloud/searchbridge/internal/domain/search/token"
)

// FacetEntry is one element of a facetFilters list: either a single token
// conjoined with its siblings, or a group of tokens on one field whose values
// are OR-combined. A refinement carries an already split token that is never
// re-parsed.
type FacetEntry struct {
	tokens  []string
	literal *token.Token
}

// AndToken wraps a bare facet token.
func AndToken(raw string) FacetEntry {
	return FacetEntry{tokens: []string{raw}}
}

// OrGroup wraps tokens that were supplied together as an array.
func OrGroup(raw ...string) FacetEntry {
	return FacetEntry{tokens: raw}
}

// Refinement is a selected facet value. The value is taken literally, so
// "-XL" selects XL with a dash and "12:30" keeps its colon.
func Refinement(field, value string) FacetEntry {
	t := token.Literal(field, value)
	return FacetEntry{literal: &t}
}

// ExactMatcher resolves the exact-match policy of a facet field key within a collection.
type ExactMatcher interface {
	ExactMatch(collection, key string) bool
}

// facetField collects OR-combined values of one field, split by polarity.
type facetField struct {
	tok      token.Token
	included []string
	excluded []string
}

// Facets translates facetFilters entries into a filter expression, e.g.
//
//	[OrGroup("brand:Apple", "brand:Samsung"), AndToken("color:-red")]
//	  -> "brand:=[`Apple`,`Samsung`] && color:!=[`red`]"
//
// collection scopes the exact-match lookup; a nil policy means exact match everywhere.
func Facets(entries []FacetEntry, collection string, reg token.Registry, policy ExactMatcher) (string, error) {
	expr := newExpression()
	for _, e := range entries {
		fields, err := parseEntry(e, reg)
		if err != nil {
			return "", err
		}
		for _, f := range fields {
			exact := policy == nil || policy.ExactMatch(collection, f.tok.Key())
			var clauses []string
			if len(f.included) > 0 {
				clauses = append(clauses, facetClause(f.tok.Field(), f.included, false, exact))
			}
			if len(f.excluded) > 0 {
				clauses = append(clauses, facetClause(f.tok.Field(), f.excluded, true, exact))
			}
			expr.add(f.tok.Join(), clauses...)
		}
	}
	return expr.String(), nil
}

// parseEntry groups an entry's tokens by field key in first-encounter order.
func parseEntry(e FacetEntry, reg token.Registry) ([]*facetField, error) {
	if e.literal != nil {
		return []*facetField{{tok: *e.literal, included: []string{e.literal.Value()}}}, nil
	}

	var order []*facetField
	byKey := make(map[string]*facetField)
	for _, raw := range e.tokens {
		t, err := token.ParseFacet(raw, reg)
		if err != nil {
			return nil, err
		}
		f, ok := byKey[t.Key()]
		if !ok {
			f = &facetField{tok: t}
			byKey[t.Key()] = f
			order = append(order, f)
		}
		if t.Negated() {
			f.excluded = append(f.excluded, t.Value())
		} else {
			f.included = append(f.included, t.Value())
		}
	}
	return order, nil
}

// facetClause renders "field:=[...]", "field:[...]", "field:!=[...]" or "field:![...]".
func facetClause(field string, values []string, negated, exact bool) string {
	var op string
	switch {
	case negated && exact:
		op = "!="
	case negated:
		op = "!"
	case exact:
		op = "="
	}

	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeValue(v)
	}
	return field + ":" + op + "[" + strings.Join(escaped, ",") + "]"
}

// EscapeValue wraps a facet value in backticks. Boolean and numeric literals
// are left bare so the backend compares them as such.
func EscapeValue(v string) string {
	if v == "true" || v == "false" || token.IsNumber(v) {
		return v
	}
	return "`" + v + "`"
}
