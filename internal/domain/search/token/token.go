// Package token splits raw widget filter tokens into join prefix, field path,
// operator, value and negation.
package token

import (
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchbridge/internal/domain"
)

// Operator is a comparison operator of a filter token.
type Operator string

// Supported operators.
const (
	LTE   Operator = "<="
	GTE   Operator = ">="
	LT    Operator = "<"
	GT    Operator = ">"
	NE    Operator = "!="
	EQ    Operator = "="
	Facet Operator = ":"
)

// numericOperators is ordered so two-character operators win over their prefixes.
var numericOperators = []Operator{LTE, GTE, NE, LT, GT, EQ}

// Token is a parsed filter token.
type Token struct {
	join    string
	field   string
	op      Operator
	value   string
	negated bool
}

// Join returns the joined collection name, empty for plain tokens.
func (t Token) Join() string { return t.join }

// IsJoin reports whether the token references a joined collection.
func (t Token) IsJoin() bool { return t.join != "" }

// Field returns the field path, relative to the joined collection for join tokens.
func (t Token) Field() string { return t.field }

// Operator returns the comparison operator.
func (t Token) Operator() Operator { return t.op }

// Value returns the raw value with any negation marker stripped.
func (t Token) Value() string { return t.value }

// Negated reports whether a facet token excludes its value.
func (t Token) Negated() bool { return t.negated }

// Key identifies the field across collections: "$coll(field)" for join tokens,
// the bare field path otherwise.
func (t Token) Key() string {
	if t.join == "" {
		return t.field
	}
	return "$" + t.join + "(" + t.field + ")"
}

// ParseNumeric parses a numeric filter such as "price<=10" or
// "$product_prices(price.current)>=100".
func ParseNumeric(raw string, reg Registry) (Token, error) {
	j, err := splitJoin(raw)
	if err != nil {
		return Token{}, err
	}
	t := Token{join: j.collection, field: j.field}

	rest := j.tail
	if t.field == "" {
		if f, ok := reg.match(rest, startsWithNumericOperator); ok {
			t.field, rest = f, rest[len(f):]
		} else {
			i := indexNumericOperator(rest)
			if i <= 0 {
				return Token{}, domain.NewMalformedFilter(raw, "no comparison operator after a field name")
			}
			t.field, rest = rest[:i], rest[i:]
		}
	}

	op, ok := leadingNumericOperator(rest)
	if !ok {
		return Token{}, domain.NewMalformedFilter(raw, "expected a comparison operator")
	}
	t.op = op
	t.value = strings.TrimSpace(rest[len(op):])

	if !IsNumber(t.value) {
		return Token{}, domain.NewMalformedFilter(raw, "value "+strconv.Quote(t.value)+" is not numeric")
	}
	return t, nil
}

// ParseFacet parses a facet filter such as "brand:Apple", "brand:-Apple" or
// "$product_prices(retailer):Amazon". Without a registry match the field ends
// at the last colon.
func ParseFacet(raw string, reg Registry) (Token, error) {
	j, err := splitJoin(raw)
	if err != nil {
		return Token{}, err
	}
	t := Token{join: j.collection, field: j.field, op: Facet}

	rest := j.tail
	var value string
	switch {
	case t.field != "":
		v, ok := strings.CutPrefix(rest, ":")
		if !ok {
			return Token{}, domain.NewMalformedFilter(raw, "expected ':' after the joined field")
		}
		value = v
	default:
		if f, ok := reg.match(rest, startsWithColon); ok {
			t.field, value = f, rest[len(f)+1:]
			break
		}
		i := strings.LastIndexByte(rest, ':')
		if i <= 0 {
			return Token{}, domain.NewMalformedFilter(raw, "expected <field>:<value>")
		}
		t.field, value = rest[:i], rest[i+1:]
	}

	switch {
	case strings.HasPrefix(value, `\-`):
		value = value[1:]
	case strings.HasPrefix(value, "-"):
		t.negated = true
		value = value[1:]
	}
	if value == "" {
		return Token{}, domain.NewMalformedFilter(raw, "empty facet value")
	}
	t.value = value
	return t, nil
}

// Literal builds an included facet token from an already split field and
// value. Neither part is interpreted: a leading "-" or an embedded ":" stays
// in the value.
func Literal(field, value string) Token {
	return Token{field: field, op: Facet, value: value}
}

// joinExpr is a token split around an optional "$collection(...)" prefix.
// field is set only when the operator follows the closing parenthesis.
type joinExpr struct {
	collection string
	field      string
	tail       string
}

func splitJoin(raw string) (joinExpr, error) {
	if !strings.HasPrefix(raw, "$") {
		return joinExpr{tail: raw}, nil
	}
	open := strings.IndexByte(raw, '(')
	if open <= 1 {
		return joinExpr{}, domain.NewMalformedFilter(raw, "join prefix needs a collection name followed by '('")
	}

	depth, closing := 0, -1
	for i := open; i < len(raw); i++ {
		switch raw[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			closing = i
			break
		}
	}
	if closing < 0 {
		return joinExpr{}, domain.NewMalformedFilter(raw, "unbalanced parentheses in join prefix")
	}

	inner, rest := raw[open+1:closing], raw[closing+1:]
	if inner == "" {
		return joinExpr{}, domain.NewMalformedFilter(raw, "empty join expression")
	}
	j := joinExpr{collection: raw[1:open]}
	if rest == "" {
		// "$coll(field<=3)": operator and value live inside the parentheses.
		j.tail = inner
	} else {
		j.field, j.tail = inner, rest
	}
	return j, nil
}

func leadingNumericOperator(s string) (Operator, bool) {
	for _, op := range numericOperators {
		if strings.HasPrefix(s, string(op)) {
			return op, true
		}
	}
	return "", false
}

func startsWithNumericOperator(s string) bool {
	_, ok := leadingNumericOperator(s)
	return ok
}

func startsWithColon(s string) bool { return strings.HasPrefix(s, ":") }

func indexNumericOperator(s string) int {
	for i := range len(s) {
		if startsWithNumericOperator(s[i:]) {
			return i
		}
	}
	return -1
}

// IsNumber reports whether s is a finite decimal number.
func IsNumber(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}
