package query

import "strings"

// SortParam is the query-string key read by ParseSorting.
const SortParam = "sort"

// SortOrder is the direction of a single sort key.
type SortOrder string

// Sort orders.
const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "des"
)

// SortField is one key of a sort request.
type SortField struct {
	Field string    `json:"field" yaml:"field"`
	Order SortOrder `json:"order" yaml:"order"`
}

// Sorting describes the ordering a client asked for. Sort keeps the order
// of the query string, which is the precedence callers must apply.
type Sorting struct {
	Query          string      `json:"query,omitempty" yaml:"query,omitempty"`
	Sort           []SortField `json:"sort,omitempty" yaml:"sort,omitempty"`
	SortableFields []string    `json:"sortableFields,omitempty" yaml:"sortableFields,omitempty"`
}

// ParseSorting parses a comma-separated list of fields, each optionally
// prefixed with '-' (descending) or '+' (ascending). A nil sortable list
// accepts any field.
func ParseSorting(raw string, sortable []string) (Sorting, error) {
	s := Sorting{SortableFields: sortable}
	if raw == "" {
		return s, nil
	}

	s.Query = raw
	tokens := strings.Split(raw, ",")
	s.Sort = make([]SortField, 0, len(tokens))
	fields := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		sf := SortField{Field: tok, Order: Ascending}
		switch {
		case strings.HasPrefix(tok, "-"):
			sf = SortField{Field: tok[1:], Order: Descending}
		case strings.HasPrefix(tok, "+"):
			sf = SortField{Field: tok[1:], Order: Ascending}
		}
		s.Sort = append(s.Sort, sf)
		fields = append(fields, sf.Field)
	}

	if bad := disallowed(distinct(fields), sortable); len(bad) > 0 {
		return Sorting{}, fieldError(SortParam, fieldsMessage("sorting", bad))
	}

	return s, nil
}

// Fields returns the requested sort fields in precedence order.
func (s Sorting) Fields() []string {
	out := make([]string, len(s.Sort))
	for i, sf := range s.Sort {
		out[i] = sf.Field
	}
	return out
}
