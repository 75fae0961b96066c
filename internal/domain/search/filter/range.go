package filter

import (
	"strings"

	"github.com/kailas-cloud/searchbridge/internal/domain"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/token"
)

// Range is an inclusive numeric range clause "field:=[lower..upper]".
type Range struct {
	Field string
	Lower string
	Upper string
}

// ParseRange reads back a single range clause produced by Numeric.
func ParseRange(clause string) (Range, error) {
	i := strings.LastIndex(clause, ":=[")
	if i <= 0 || !strings.HasSuffix(clause, "]") {
		return Range{}, domain.NewMalformedFilter(clause, "expected <field>:=[<lower>..<upper>]")
	}
	lower, upper, ok := strings.Cut(clause[i+3:len(clause)-1], "..")
	if !ok || !token.IsNumber(lower) || !token.IsNumber(upper) {
		return Range{}, domain.NewMalformedFilter(clause, "range bounds must be numeric")
	}
	return Range{Field: clause[:i], Lower: lower, Upper: upper}, nil
}
