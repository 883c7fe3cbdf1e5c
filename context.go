package stdresp

import (
	"context"
	"net/http"
)

type contextKey[T any] struct{}

// SetValue stores a typed value in the request context. For use in middleware.
func SetValue[T any](r *http.Request, val T) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey[T]{}, val)
	return r.WithContext(ctx)
}

// GetValue retrieves a typed value from the request context. For use in handlers.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}

type paramsKey struct{}

func withParams(ctx context.Context, p *Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, p)
}

// ParamsFrom returns the request-scoped descriptors of the current request.
// It never returns nil: outside a route that parses query features it
// returns an empty, detached Params whose setters affect nothing.
func ParamsFrom(ctx context.Context) *Params {
	if p, ok := ctx.Value(paramsKey{}).(*Params); ok && p != nil {
		return p
	}
	return &Params{}
}
