package stdresp

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Router is the central type that holds routes, middleware, and configuration.
// It implements http.Handler.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware
	routes     []routeInfo
	contracts  map[string]Contract

	validator    Validator
	errorHandler ErrorHandler

	interceptAll  bool
	responseCheck responseCheck
	violationMsg  string
	declared      map[string]Contract

	logger  *slog.Logger
	metrics *metrics

	mu sync.Mutex
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithValidator sets a global request validator.
func WithValidator(v Validator) RouterOption {
	return func(r *Router) {
		r.validator = v
	}
}

// ErrorHandler is a custom error response writer.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WithErrorHandler sets a custom error handler for the router.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// WithInterceptAll controls routes that declare neither a standard nor a
// raw response. When true (the default) their results are wrapped in an
// Envelope; when false they are written unchanged.
func WithInterceptAll(on bool) RouterOption {
	return func(r *Router) {
		r.interceptAll = on
	}
}

// WithResponseValidator sets the predicate every intercepted result must
// satisfy. Passing nil rejects every result.
func WithResponseValidator(fn ResponseValidator) RouterOption {
	return func(r *Router) {
		r.responseCheck = responseCheck{fn: fn, set: true}
	}
}

// WithValidationErrorMessage sets the message logged when the response
// validator rejects a result.
func WithValidationErrorMessage(msg string) RouterOption {
	return func(r *Router) {
		r.violationMsg = msg
	}
}

// WithLogger sets the logger used for contract violations.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// WithMetrics registers the router's Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) RouterOption {
	return func(r *Router) {
		if reg != nil {
			r.metrics = newMetrics(reg)
		}
	}
}

// New creates a new Router with the given options.
func New(opts ...RouterOption) *Router {
	r := &Router{
		mux:          http.NewServeMux(),
		contracts:    make(map[string]Contract),
		interceptAll: true,
		violationMsg: DefaultValidationErrorMessage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Use adds middleware to the router. Middleware is applied in the order added.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(r.mux)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

// Handle mounts a plain http.Handler, e.g. a metrics endpoint. Such routes
// carry no contract and never pass through the response pipeline.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mux.Handle(pattern, h)
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Contract returns the resolved contract of a registered route.
func (r *Router) Contract(method, pattern string) (Contract, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[routeKey(method, pattern)]
	return c, ok
}

// Contracts returns every registered route's contract, sorted by pattern
// then method.
func (r *Router) Contracts() []RouteContract {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RouteContract, 0, len(r.routes))
	for _, ri := range r.routes {
		out = append(out, RouteContract{Method: ri.method, Pattern: ri.pattern, Contract: ri.contract})
	}
	slices.SortFunc(out, func(a, b RouteContract) int {
		if c := strings.Compare(a.Pattern, b.Pattern); c != 0 {
			return c
		}
		return strings.Compare(a.Method, b.Method)
	})
	return out
}

// resolveContract layers configuration, group and route declarations and
// applies the intercept-all default.
func (r *Router) resolveContract(method, pattern string, group, route Contract) Contract {
	c := r.declared[routeKey(method, pattern)]
	c = mergeContracts(c, group)
	c = mergeContracts(c, route)
	if c.Type == ResponseUnset && r.interceptAll {
		c.Type = ResponseStandard
	}
	return c
}

// addRoute registers a routeInfo with the router's mux and stores it
// with its contract. Global middleware is applied in ServeHTTP, not
// here. Only group middleware is baked into ri.handler.
func (r *Router) addRoute(ri routeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mux.Handle(routeKey(ri.method, ri.pattern), ri.handler)
	r.routes = append(r.routes, ri)
	r.contracts[routeKey(ri.method, ri.pattern)] = ri.contract
}
