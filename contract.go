package stdresp

import (
	"slices"
	"strings"

	"github.com/bjaus/stdresp/query"
)

// ResponseType selects how a route's result is written.
type ResponseType int

const (
	// ResponseUnset means the route made no declaration. On a resolved
	// Contract it means the result is written as-is without validation.
	ResponseUnset ResponseType = iota
	// ResponseStandard wraps the result in an Envelope.
	ResponseStandard
	// ResponseRaw writes the validated result without an Envelope.
	ResponseRaw
)

// String returns "standard", "raw" or "" for ResponseUnset.
func (t ResponseType) String() string {
	switch t {
	case ResponseStandard:
		return "standard"
	case ResponseRaw:
		return "raw"
	default:
		return ""
	}
}

// Feature is a set of query features a route accepts.
type Feature uint8

// Query features.
const (
	FeaturePagination Feature = 1 << iota
	FeatureSorting
	FeatureFiltering
)

// Has reports whether every feature in x is in f.
func (f Feature) Has(x Feature) bool { return f&x == x && x != 0 }

// String lists the features, e.g. "pagination,sorting".
func (f Feature) String() string {
	var names []string
	if f.Has(FeaturePagination) {
		names = append(names, "pagination")
	}
	if f.Has(FeatureSorting) {
		names = append(names, "sorting")
	}
	if f.Has(FeatureFiltering) {
		names = append(names, "filtering")
	}
	return strings.Join(names, ",")
}

// Default pagination bounds applied to paginated declarations.
const (
	DefaultMinLimit     = 1
	DefaultDefaultLimit = query.FallbackLimit
)

// Contract is the resolved, immutable declaration of a route. It is built
// once at registration and shared by every request to the route.
type Contract struct {
	Type             ResponseType
	Description      string
	Features         Feature
	Pagination       query.PaginationBounds
	SortableFields   []string
	FilterableFields []string
}

// Intercepted reports whether results pass through validation.
func (c Contract) Intercepted() bool { return c.Type != ResponseUnset }

// StandardResponse declares that a route's result is wrapped in an Envelope
// and which query features it accepts. A nil field list accepts any field.
type StandardResponse struct {
	Description string

	Paginated    bool
	MinLimit     int // default: 1
	MaxLimit     int
	DefaultLimit int // default: 10

	Sorted         bool
	SortableFields []string

	Filtered         bool
	FilterableFields []string
}

func (s StandardResponse) contract() Contract {
	c := Contract{
		Type:        ResponseStandard,
		Description: s.Description,
	}
	if s.Paginated {
		c.Features |= FeaturePagination
		c.Pagination = query.PaginationBounds{
			MinLimit:     s.MinLimit,
			MaxLimit:     s.MaxLimit,
			DefaultLimit: s.DefaultLimit,
		}
		if c.Pagination.MinLimit == 0 {
			c.Pagination.MinLimit = DefaultMinLimit
		}
		c.Pagination = c.Pagination.Clamp()
	}
	if s.Sorted {
		c.Features |= FeatureSorting
		c.SortableFields = slices.Clone(s.SortableFields)
	}
	if s.Filtered {
		c.Features |= FeatureFiltering
		c.FilterableFields = slices.Clone(s.FilterableFields)
	}
	return c
}

// RawResponse declares that a route's result is written without an
// Envelope. The description is informational only.
type RawResponse struct {
	Description string
}

func (r RawResponse) contract() Contract {
	return Contract{Type: ResponseRaw, Description: r.Description}
}

// mergeContracts layers over on top of base. The response type and
// description of over win when set; features are the union of both, and
// each feature's settings come from the layer that enables it, over first.
func mergeContracts(base, over Contract) Contract {
	out := base
	if over.Type != ResponseUnset {
		out.Type = over.Type
	}
	if over.Description != "" {
		out.Description = over.Description
	}
	out.Features = base.Features | over.Features
	if over.Features.Has(FeaturePagination) {
		out.Pagination = over.Pagination
	}
	if over.Features.Has(FeatureSorting) {
		out.SortableFields = over.SortableFields
	}
	if over.Features.Has(FeatureFiltering) {
		out.FilterableFields = over.FilterableFields
	}
	// Raw routes never parse query features.
	if out.Type == ResponseRaw {
		out.Features = 0
		out.Pagination = query.PaginationBounds{}
		out.SortableFields = nil
		out.FilterableFields = nil
	}
	return out
}

// RouteContract pairs a route identity with its contract.
type RouteContract struct {
	Method   string
	Pattern  string
	Contract Contract
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}
