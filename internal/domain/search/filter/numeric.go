package filter

import (
	"fmt"

	"github.com/kailas-cloud/searchbridge/internal/domain/search/token"
)

// numericField collects the clauses of one (join, field) pair. A "<=" and a
// ">=" on the same field collapse into one inclusive range that takes the
// position of the first bound seen.
type numericField struct {
	join    string
	field   string
	lower   string
	upper   string
	hasLow  bool
	hasUp   bool
	rangeAt int
	clauses []string
}

func (f *numericField) add(t token.Token) {
	switch t.Operator() {
	case token.GTE, token.LTE:
		if !f.hasLow && !f.hasUp {
			f.rangeAt = len(f.clauses)
			f.clauses = append(f.clauses, "")
		}
		if t.Operator() == token.GTE {
			f.lower, f.hasLow = t.Value(), true
		} else {
			f.upper, f.hasUp = t.Value(), true
		}
	default:
		f.clauses = append(f.clauses, fmt.Sprintf("%s:%s%s", f.field, t.Operator(), t.Value()))
	}
}

func (f *numericField) render() []string {
	switch {
	case f.hasLow && f.hasUp:
		f.clauses[f.rangeAt] = fmt.Sprintf("%s:=[%s..%s]", f.field, f.lower, f.upper)
	case f.hasLow:
		f.clauses[f.rangeAt] = fmt.Sprintf("%s:>=%s", f.field, f.lower)
	case f.hasUp:
		f.clauses[f.rangeAt] = fmt.Sprintf("%s:<=%s", f.field, f.upper)
	}
	return f.clauses
}

// Numeric translates numeric filter tokens, e.g.
//
//	["field1<=634", "field1>=289", "$prices(amount)=5"] -> "field1:=[289..634] && $prices(amount:=5)"
//
// Repeated bounds of the same kind keep the last value. An empty input yields "".
func Numeric(raw []string, reg token.Registry) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var order []*numericField
	fields := make(map[[2]string]*numericField)
	for _, r := range raw {
		t, err := token.ParseNumeric(r, reg)
		if err != nil {
			return "", err
		}
		key := [2]string{t.Join(), t.Field()}
		f, ok := fields[key]
		if !ok {
			f = &numericField{join: t.Join(), field: t.Field()}
			fields[key] = f
			order = append(order, f)
		}
		f.add(t)
	}

	expr := newExpression()
	for _, f := range order {
		expr.add(f.join, f.render()...)
	}
	return expr.String(), nil
}
