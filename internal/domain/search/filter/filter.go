// Package filter serializes parsed widget filter tokens into the backend's
// boolean filter_by expression.
package filter

import "strings"

// And is the logical conjunction used between clauses.
const And = " && "

// expression accumulates clauses in first-encounter order. Every plain clause
// takes its own slot; all clauses of one joined collection share the slot
// opened by the first of them and render as "$collection(a && b)".
type expression struct {
	slots []*slot
	joins map[string]*slot
}

type slot struct {
	join    string
	clauses []string
}

func newExpression() *expression {
	return &expression{joins: make(map[string]*slot)}
}

func (e *expression) add(join string, clauses ...string) {
	if len(clauses) == 0 {
		return
	}
	if join == "" {
		e.slots = append(e.slots, &slot{clauses: clauses})
		return
	}
	s, ok := e.joins[join]
	if !ok {
		s = &slot{join: join}
		e.joins[join] = s
		e.slots = append(e.slots, s)
	}
	s.clauses = append(s.clauses, clauses...)
}

func (e *expression) String() string {
	parts := make([]string, 0, len(e.slots))
	for _, s := range e.slots {
		inner := strings.Join(s.clauses, And)
		if s.join != "" {
			inner = "$" + s.join + "(" + inner + ")"
		}
		parts = append(parts, inner)
	}
	return strings.Join(parts, And)
}

// Conjoin joins the non-empty expressions with And.
func Conjoin(exprs ...string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, And)
}
