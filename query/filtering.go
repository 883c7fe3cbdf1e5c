package query

import (
	"fmt"
	"strings"
)

// FilterParam is the query-string key read by ParseFiltering.
const FilterParam = "filter"

// Operator is a comparison token in a filter clause.
type Operator string

// Supported operators.
const (
	OpLessOrEqual    Operator = "<="
	OpLess           Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpGreater        Operator = ">"
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpContains       Operator = "=@"
	OpNotContains    Operator = "!@"
	OpStartsWith     Operator = "=^"
	OpEndsWith       Operator = "=$"
)

// Reserved operators are recognized by the scanner but rejected.
const (
	OpMatches    Operator = "=~"
	OpNotMatches Operator = "!~"
)

// operatorTable is scanned in order at every position. Two-byte tokens
// precede the one-byte tokens they start with, so "<=" never splits as "<".
var operatorTable = []Operator{
	OpLessOrEqual,
	OpLess,
	OpGreaterOrEqual,
	OpGreater,
	OpEqual,
	OpNotEqual,
	OpContains,
	OpNotContains,
	OpStartsWith,
	OpEndsWith,
	OpMatches,
	OpNotMatches,
}

var operatorDescriptions = map[Operator]string{
	OpEqual:          "Equals",
	OpNotEqual:       "Not equals",
	OpLessOrEqual:    "Less than or equal",
	OpLess:           "Less than",
	OpGreaterOrEqual: "Greater than or equal",
	OpGreater:        "Greater than",
	OpContains:       "Contains",
	OpNotContains:    "Does not contain",
	OpStartsWith:     "Starts with",
	OpEndsWith:       "Ends with",
}

// Operators returns the supported operators in scan order.
func Operators() []Operator {
	out := make([]Operator, 0, len(operatorTable))
	for _, op := range operatorTable {
		if op.Supported() {
			out = append(out, op)
		}
	}
	return out
}

// Supported reports whether op may appear in a filter.
func (op Operator) Supported() bool {
	_, ok := operatorDescriptions[op]
	return ok
}

// Description is a short human-readable name for op.
func (op Operator) Description() string {
	return operatorDescriptions[op]
}

// FilterClause is a single field/operator/value comparison.
type FilterClause struct {
	Field     string   `json:"field" yaml:"field"`
	Operation Operator `json:"operation" yaml:"operation"`
	Value     string   `json:"value" yaml:"value"`
}

// FilterGroup is a disjunction: a row matches when any clause matches.
type FilterGroup struct {
	AnyOf []FilterClause `json:"anyOf" yaml:"anyOf"`
}

// Filter is a conjunction of groups: a row matches when every group matches.
type Filter struct {
	AllOf []FilterGroup `json:"allOf" yaml:"allOf"`
}

// Fields returns the distinct fields referenced by f in first-seen order.
func (f *Filter) Fields() []string {
	if f == nil {
		return nil
	}
	var all []string
	for _, g := range f.AllOf {
		for _, c := range g.AnyOf {
			all = append(all, c.Field)
		}
	}
	return distinct(all)
}

// Filtering describes the restrictions a client asked for.
type Filtering struct {
	Query            string   `json:"query,omitempty" yaml:"query,omitempty"`
	Filter           *Filter  `json:"filter,omitempty" yaml:"filter,omitempty"`
	FilterableFields []string `json:"filterableFields,omitempty" yaml:"filterableFields,omitempty"`
}

// ParseFiltering parses a filter expression:
//
//	expr   := group (';' group)*     AND
//	group  := clause (',' clause)*   OR
//	clause := field operator value
//
// A nil filterable list accepts any field.
func ParseFiltering(raw string, filterable []string) (Filtering, error) {
	fi := Filtering{FilterableFields: filterable}
	if raw == "" {
		return fi, nil
	}

	fi.Query = raw
	groups := strings.Split(raw, ";")
	filter := &Filter{AllOf: make([]FilterGroup, 0, len(groups))}

	for _, group := range groups {
		clauses := strings.Split(group, ",")
		g := FilterGroup{AnyOf: make([]FilterClause, 0, len(clauses))}
		for _, clause := range clauses {
			c, err := parseClause(clause)
			if err != nil {
				return Filtering{}, err
			}
			g.AnyOf = append(g.AnyOf, c)
		}
		filter.AllOf = append(filter.AllOf, g)
	}

	if bad := disallowed(filter.Fields(), filterable); len(bad) > 0 {
		return Filtering{}, fieldError(FilterParam, fieldsMessage("filtering", bad))
	}

	fi.Filter = filter
	return fi, nil
}

func parseClause(clause string) (FilterClause, error) {
	idx, op, ok := findOperator(clause)
	if !ok {
		return FilterClause{}, fieldError(FilterParam, "invalid filtering expression: "+clause)
	}
	if !op.Supported() {
		return FilterClause{}, fieldError(FilterParam, fmt.Sprintf("unsupported filtering operator %q: %s", op, clause))
	}
	return FilterClause{
		Field:     clause[:idx],
		Operation: op,
		Value:     clause[idx+len(op):],
	}, nil
}

// findOperator returns the leftmost operator in s.
func findOperator(s string) (int, Operator, bool) {
	for i := range len(s) {
		for _, op := range operatorTable {
			if strings.HasPrefix(s[i:], string(op)) {
				return i, op, true
			}
		}
	}
	return 0, "", false
}
