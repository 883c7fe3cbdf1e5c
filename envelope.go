package stdresp

import (
	"reflect"

	"github.com/bjaus/stdresp/query"
)

// Envelope is the standard response shape. The Is* flags are set exactly
// when the matching descriptor is present; IsArray is set when Data is a
// slice or array.
//
// Clients decode into Envelope[T] with the route's element type:
//
//	var env stdresp.Envelope[[]Book]
type Envelope[T any] struct {
	Success     bool              `json:"success"`
	IsArray     bool              `json:"isArray,omitempty"`
	IsPaginated bool              `json:"isPaginated,omitempty"`
	IsSorted    bool              `json:"isSorted,omitempty"`
	IsFiltered  bool              `json:"isFiltered,omitempty"`
	Message     string            `json:"message,omitempty"`
	Pagination  *query.Pagination `json:"pagination,omitempty"`
	Sorting     *query.Sorting    `json:"sorting,omitempty"`
	Filtering   *query.Filtering  `json:"filtering,omitempty"`
	Data        T                 `json:"data"`
}

// Wrap builds the envelope for data using the descriptors in p, including
// only the features c enables. A nil p is treated as empty.
func Wrap(data any, p *Params, c Contract) Envelope[any] {
	if p == nil {
		p = &Params{}
	}

	env := Envelope[any]{
		Success: true,
		IsArray: isSequence(data),
		Message: p.Message(),
		Data:    normalizeData(data),
	}

	if c.Features.Has(FeaturePagination) {
		pg := p.PaginationInfo()
		env.Pagination = &pg
		env.IsPaginated = true
	}
	if c.Features.Has(FeatureSorting) {
		s := p.SortingInfo()
		env.Sorting = &s
		env.IsSorted = true
	}
	if c.Features.Has(FeatureFiltering) {
		f := p.FilteringInfo()
		env.Filtering = &f
		env.IsFiltered = true
	}

	return env
}

// normalizeData turns a nil slice into an empty one so that an array
// envelope always encodes data as [].
func normalizeData(data any) any {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return data
}
