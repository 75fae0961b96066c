package token

import (
	"slices"
	"strings"
)

// Registry holds field names containing characters that would otherwise be
// read as separators or operators (":", "<", ">", "="). A registered name is
// taken literally when it prefixes a token.
type Registry struct {
	fields []string
}

// NewRegistry builds a registry from literal field names. Empty names are dropped
// and duplicates collapsed. Matching is longest-prefix-first.
func NewRegistry(fields []string) Registry {
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	slices.SortStableFunc(out, func(a, b string) int { return len(b) - len(a) })
	return Registry{fields: out}
}

// Fields returns the registered names, longest first.
func (r Registry) Fields() []string { return slices.Clone(r.fields) }

// match returns the longest registered name that prefixes s and is directly
// followed by a string accepted by next.
func (r Registry) match(s string, next func(rest string) bool) (string, bool) {
	for _, f := range r.fields {
		if strings.HasPrefix(s, f) && next(s[len(f):]) {
			return f, true
		}
	}
	return "", false
}
