package query

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query-string keys read by ParsePagination.
const (
	LimitParam  = "limit"
	OffsetParam = "offset"
)

// FallbackLimit is used when neither the query nor the route supplies a limit.
const FallbackLimit = 10

// PaginationBounds are the limits a route declares. Zero means undeclared.
type PaginationBounds struct {
	MinLimit     int `json:"minLimit,omitempty" yaml:"minLimit,omitempty"`
	MaxLimit     int `json:"maxLimit,omitempty" yaml:"maxLimit,omitempty"`
	DefaultLimit int `json:"defaultLimit,omitempty" yaml:"defaultLimit,omitempty"`
}

// Clamp returns b with DefaultLimit moved inside [MinLimit, MaxLimit]. An
// undeclared DefaultLimit is taken to be FallbackLimit first.
func (b PaginationBounds) Clamp() PaginationBounds {
	if b.DefaultLimit <= 0 {
		b.DefaultLimit = FallbackLimit
	}
	if b.MaxLimit > 0 && b.DefaultLimit > b.MaxLimit {
		b.DefaultLimit = b.MaxLimit
	}
	if b.DefaultLimit < b.MinLimit {
		b.DefaultLimit = b.MinLimit
	}
	return b
}

// Pagination describes the page a client asked for. Count stays nil until
// the handler reports the total number of items.
type Pagination struct {
	Query        string `json:"query,omitempty" yaml:"query,omitempty"`
	Count        *int   `json:"count,omitempty" yaml:"count,omitempty"`
	Limit        int    `json:"limit" yaml:"limit"`
	Offset       int    `json:"offset" yaml:"offset"`
	MinLimit     int    `json:"minLimit,omitempty" yaml:"minLimit,omitempty"`
	MaxLimit     int    `json:"maxLimit,omitempty" yaml:"maxLimit,omitempty"`
	DefaultLimit int    `json:"defaultLimit,omitempty" yaml:"defaultLimit,omitempty"`
}

// ParsePagination reads limit and offset from values and checks them
// against bounds.
//
// Missing or non-numeric values fall back to 0 for offset and to the
// declared default (or FallbackLimit), kept within bounds, for limit. The canonical Query is
// rebuilt only from the parameters that were actually present.
func ParsePagination(values url.Values, bounds PaginationBounds) (Pagination, error) {
	rawLimit, hasLimit := lookup(values, LimitParam)
	rawOffset, hasOffset := lookup(values, OffsetParam)

	offset, err := strconv.Atoi(rawOffset)
	if err != nil {
		offset = 0
	}

	limit, err := strconv.Atoi(rawLimit)
	if err != nil {
		limit = bounds.Clamp().DefaultLimit
	}

	var errs []FieldError
	if limit <= 0 {
		errs = append(errs, FieldError{Field: LimitParam, Message: "limit must be a positive number"})
	}
	if offset < 0 {
		errs = append(errs, FieldError{Field: OffsetParam, Message: "offset must not be less than 0"})
	}
	if len(errs) > 0 {
		return Pagination{}, &ValidationError{Errors: errs}
	}

	p := Pagination{
		Limit:        limit,
		Offset:       offset,
		MinLimit:     bounds.MinLimit,
		MaxLimit:     bounds.MaxLimit,
		DefaultLimit: bounds.DefaultLimit,
	}

	switch {
	case hasLimit && hasOffset:
		p.Query = LimitParam + "=" + rawLimit + "&" + OffsetParam + "=" + rawOffset
	case hasLimit:
		p.Query = LimitParam + "=" + rawLimit
	case hasOffset:
		p.Query = OffsetParam + "=" + rawOffset
	}

	if bounds.MinLimit > 0 && limit < bounds.MinLimit {
		return Pagination{}, fieldError(LimitParam, fmt.Sprintf("limit can't be smaller than %d", bounds.MinLimit))
	}
	if bounds.MaxLimit > 0 && limit > bounds.MaxLimit {
		return Pagination{}, fieldError(LimitParam, fmt.Sprintf("limit can't be larger than %d", bounds.MaxLimit))
	}

	return p, nil
}

// lookup distinguishes a present-but-empty parameter from a missing one.
func lookup(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
