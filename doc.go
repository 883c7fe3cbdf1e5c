// Package stdresp is a generics-first HTTP API framework that gives every
// route the same response shape. Handlers return plain Go values and the
// framework wraps them in an Envelope carrying a success flag, an optional
// message, and descriptors of the pagination, sorting and filtering the
// client requested through the query string.
//
// The core handler signature removes http.ResponseWriter and *http.Request:
//
//	type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
//
// Routes declare which query features they accept:
//
//	r := stdresp.New()
//	stdresp.Get(r, "/books", listBooks, stdresp.WithStandardResponse(stdresp.StandardResponse{
//	    Paginated:      true,
//	    MaxLimit:       50,
//	    Sorted:         true,
//	    SortableFields: []string{"title", "year"},
//	    Filtered:       true,
//	}))
//
// Before the handler runs, limit, offset, sort and filter are parsed and
// checked against the declaration; invalid input is rejected with a 400
// problem response. The handler reads and amends the parsed descriptors
// through ParamsFrom:
//
//	func listBooks(ctx context.Context, _ *stdresp.Void) (*[]Book, error) {
//	    p := stdresp.ParamsFrom(ctx)
//	    books, total := store.List(p.PaginationInfo(), p.SortingInfo(), p.FilteringInfo())
//	    p.SetCount(total)
//	    return &books, nil
//	}
//
// which yields
//
//	{"success":true,"isArray":true,"isPaginated":true,"pagination":{...},"data":[...]}
//
// Routes declared with WithRawResponse skip the envelope. Routes with no
// declaration are wrapped unless the router was built with
// WithInterceptAll(false).
package stdresp
