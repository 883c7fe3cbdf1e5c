package stdresp

import (
	"errors"
	"slices"
	"sync"

	"github.com/bjaus/stdresp/query"
)

// Params holds the descriptors parsed from one request's query string.
// A fresh Params is created for every request; handlers may amend it (for
// instance to report the total item count) before the envelope is built.
//
// Params is safe for use by multiple goroutines.
type Params struct {
	mu         sync.Mutex
	requestID  string
	pagination query.Pagination
	sorting    query.Sorting
	filtering  query.Filtering
	message    string
}

// PaginationUpdate lists the pagination fields a handler may override.
// Nil fields are left unchanged.
type PaginationUpdate struct {
	Count  *int
	Limit  *int
	Offset *int
}

// SortingUpdate replaces the parsed sort keys when Sort is non-nil.
type SortingUpdate struct {
	Sort []query.SortField
}

// FilteringUpdate replaces the parsed filter when Filter is non-nil.
type FilteringUpdate struct {
	Filter *query.Filter
}

// parseParams builds the Params for a request. On failure it also returns
// the feature whose parameters were rejected.
func parseParams(rawQuery string, c Contract, requestID string) (*Params, Feature, error) {
	p := &Params{requestID: requestID}

	values, err := query.Values(rawQuery)
	if f, fe, ok := malformed(err, c.Features); ok {
		return nil, f, &query.ValidationError{Errors: []query.FieldError{fe}}
	}

	if c.Features.Has(FeaturePagination) {
		pg, err := query.ParsePagination(values, c.Pagination)
		if err != nil {
			return nil, FeaturePagination, err
		}
		p.pagination = pg
	}

	if c.Features.Has(FeatureSorting) {
		s, err := query.ParseSorting(values.Get(query.SortParam), c.SortableFields)
		if err != nil {
			return nil, FeatureSorting, err
		}
		p.sorting = s
	}

	if c.Features.Has(FeatureFiltering) {
		f, err := query.ParseFiltering(values.Get(query.FilterParam), c.FilterableFields)
		if err != nil {
			return nil, FeatureFiltering, err
		}
		p.filtering = f
	}

	return p, 0, nil
}

// malformed picks the first undecodable parameter that belongs to one of
// the route's features. Undecodable parameters the route never reads are
// left to the handler.
func malformed(err error, features Feature) (Feature, query.FieldError, bool) {
	var verr *query.ValidationError
	if !errors.As(err, &verr) {
		return 0, query.FieldError{}, false
	}
	for _, fe := range verr.Errors {
		if f := featureOf(fe.Field); f != 0 && features.Has(f) {
			return f, fe, true
		}
	}
	return 0, query.FieldError{}, false
}

func featureOf(param string) Feature {
	switch param {
	case query.LimitParam, query.OffsetParam:
		return FeaturePagination
	case query.SortParam:
		return FeatureSorting
	case query.FilterParam:
		return FeatureFiltering
	default:
		return 0
	}
}

// RequestID returns the id assigned by the RequestID middleware, if any.
func (p *Params) RequestID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestID
}

// PaginationInfo returns a copy of the pagination descriptor.
func (p *Params) PaginationInfo() query.Pagination {
	p.mu.Lock()
	defer p.mu.Unlock()
	pg := p.pagination
	if pg.Count != nil {
		n := *pg.Count
		pg.Count = &n
	}
	return pg
}

// SetPaginationInfo merges u into the pagination descriptor.
func (p *Params) SetPaginationInfo(u PaginationUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u.Count != nil {
		n := *u.Count
		p.pagination.Count = &n
	}
	if u.Limit != nil {
		p.pagination.Limit = *u.Limit
	}
	if u.Offset != nil {
		p.pagination.Offset = *u.Offset
	}
}

// SetCount records the total number of items available.
func (p *Params) SetCount(n int) {
	p.SetPaginationInfo(PaginationUpdate{Count: &n})
}

// SortingInfo returns a copy of the sorting descriptor.
func (p *Params) SortingInfo() query.Sorting {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.sorting
	s.Sort = slices.Clone(s.Sort)
	s.SortableFields = slices.Clone(s.SortableFields)
	return s
}

// SetSortingInfo merges u into the sorting descriptor.
func (p *Params) SetSortingInfo(u SortingUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u.Sort != nil {
		p.sorting.Sort = slices.Clone(u.Sort)
	}
}

// FilteringInfo returns a copy of the filtering descriptor.
func (p *Params) FilteringInfo() query.Filtering {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.filtering
	f.Filter = cloneFilter(f.Filter)
	f.FilterableFields = slices.Clone(f.FilterableFields)
	return f
}

// SetFilteringInfo merges u into the filtering descriptor.
func (p *Params) SetFilteringInfo(u FilteringUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u.Filter != nil {
		p.filtering.Filter = cloneFilter(u.Filter)
	}
}

// SetMessage sets the envelope message.
func (p *Params) SetMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.message = msg
}

// Message returns the envelope message.
func (p *Params) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

func cloneFilter(f *query.Filter) *query.Filter {
	if f == nil {
		return nil
	}
	out := &query.Filter{AllOf: make([]query.FilterGroup, len(f.AllOf))}
	for i, g := range f.AllOf {
		out.AllOf[i] = query.FilterGroup{AnyOf: slices.Clone(g.AnyOf)}
	}
	return out
}
