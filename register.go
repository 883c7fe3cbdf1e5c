package stdresp

import (
	"net/http"
	"reflect"
)

// Registrar is the interface accepted by the registration functions.
// Both *Router and *Group implement it.
type Registrar interface {
	addRoute(ri routeInfo)
	owner() *Router
	pathPrefix() string
	routeMiddleware() []Middleware
	groupContract() Contract
}

func (r *Router) owner() *Router                { return r }
func (r *Router) pathPrefix() string            { return "" }
func (r *Router) routeMiddleware() []Middleware { return nil }
func (r *Router) groupContract() Contract       { return Contract{} }

// register is the internal generic registration function.
func register[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	ri := routeInfo{
		method:   method,
		pattern:  pattern,
		respType: reflect.TypeFor[Resp](),
	}

	for _, opt := range opts {
		opt(&ri)
	}

	// Determine default status: Void response → 204, otherwise 200.
	if ri.status == 0 {
		if ri.respType == reflect.TypeFor[Void]() {
			ri.status = http.StatusNoContent
		} else {
			ri.status = http.StatusOK
		}
	}

	r := reg.owner()
	fullPattern := reg.pathPrefix() + pattern
	ri.contract = r.resolveContract(method, fullPattern, reg.groupContract(), ri.declared)

	ri.handler = buildHandler(h, r.pipelineFor(method, fullPattern, ri.status, ri.contract))

	// Apply route-level middleware (from Group).
	routeMW := reg.routeMiddleware()
	for i := len(routeMW) - 1; i >= 0; i-- {
		ri.handler = routeMW[i](ri.handler)
	}

	reg.addRoute(ri)
}

// buildHandler wraps a typed Handler into an http.Handler.
//
// Query features are parsed before the request is decoded, so a rejected
// limit, sort or filter never reaches the handler. After the handler the
// result is validated and, for standard routes, wrapped in an Envelope.
func buildHandler[Req, Resp any](h Handler[Req, Resp], p *pipeline) http.Handler {
	isVoid := reflect.TypeFor[Resp]() == reflect.TypeFor[Void]()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, err := p.begin(r)
		if err != nil {
			p.writeErr(w, r, err)
			return
		}

		req, err := decodeRequest[Req](r)
		if err != nil {
			p.writeErr(w, r, Error(http.StatusBadRequest, err.Error()))
			return
		}

		// Run SelfValidator if implemented.
		if sv, ok := any(req).(SelfValidator); ok {
			if err := sv.Validate(); err != nil {
				p.writeErr(w, r, err)
				return
			}
		}

		// Run global validator if set.
		if p.validator != nil {
			if err := p.validator.Validate(req); err != nil {
				p.writeErr(w, r, err)
				return
			}
		}

		resp, err := h(r.Context(), req)
		if err != nil {
			p.writeErr(w, r, err)
			return
		}

		// A result that is itself an error skips validation and wrapping.
		if resp != nil {
			if rerr, ok := any(resp).(error); ok {
				p.writeErr(w, r, rerr)
				return
			}
		}

		if isVoid {
			w.WriteHeader(p.status)
			return
		}

		var data any
		if resp != nil {
			data = *resp
		}

		body, err := p.finish(r, data)
		if err != nil {
			p.writeErr(w, r, err)
			return
		}
		if body == nil {
			w.WriteHeader(p.status)
			return
		}

		encodeResponse(w, any(resp), body, p.status)
	})
}

// Get registers a GET handler.
func Get[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler.
func Post[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler.
func Put[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler.
func Patch[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler.
func Delete[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, h, opts...)
}
