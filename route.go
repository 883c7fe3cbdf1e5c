package stdresp

import (
	"net/http"
	"reflect"
)

// routeInfo holds metadata for a registered route, used for request
// dispatch and for reporting contracts.
type routeInfo struct {
	method  string
	pattern string
	status  int

	// declared is what the route options asked for; contract is the
	// result after config and group declarations are layered in.
	declared Contract
	contract Contract

	respType reflect.Type

	handler http.Handler
}

// RouteOption configures a route at registration time.
type RouteOption func(*routeInfo)

// WithStatus sets the default HTTP status code for the response.
func WithStatus(code int) RouteOption {
	return func(ri *routeInfo) {
		ri.status = code
	}
}

// WithStandardResponse declares that the route's result is wrapped in an
// Envelope and which query features it parses.
func WithStandardResponse(s StandardResponse) RouteOption {
	return func(ri *routeInfo) {
		ri.declared = s.contract()
	}
}

// WithRawResponse declares that the route's result is written without an
// Envelope. The response validator still applies.
func WithRawResponse(raw RawResponse) RouteOption {
	return func(ri *routeInfo) {
		ri.declared = raw.contract()
	}
}
