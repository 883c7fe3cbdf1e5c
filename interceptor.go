package stdresp

import (
	"log/slog"
	"net/http"
)

// pipeline carries everything a route's handler needs from the router.
// It is built once per route and never modified.
type pipeline struct {
	method   string
	pattern  string
	status   int
	contract Contract

	validator    Validator
	errorHandler ErrorHandler

	check        responseCheck
	violationMsg string
	logger       *slog.Logger
	metrics      *metrics
}

func (r *Router) pipelineFor(method, pattern string, status int, c Contract) *pipeline {
	return &pipeline{
		method:       method,
		pattern:      pattern,
		status:       status,
		contract:     c,
		validator:    r.validator,
		errorHandler: r.errorHandler,
		check:        r.responseCheck,
		violationMsg: r.violationMsg,
		logger:       r.logger,
		metrics:      r.metrics,
	}
}

func (p *pipeline) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if p.errorHandler != nil {
		p.errorHandler(w, r, err)
		return
	}
	writeErrorResponse(w, err)
}

// begin parses the route's query features into a fresh Params and stores
// it in the request context.
func (p *pipeline) begin(r *http.Request) (*http.Request, error) {
	if !p.contract.Intercepted() {
		return r, nil
	}

	params, feature, err := parseParams(r.URL.RawQuery, p.contract, GetRequestID(r))
	if err != nil {
		p.metrics.rejected(feature)
		return r, err
	}

	return r.WithContext(withParams(r.Context(), params)), nil
}

// finish turns the handler's result into the response body. A nil body
// with a nil error means there is nothing to encode.
func (p *pipeline) finish(r *http.Request, data any) (any, error) {
	if !p.contract.Intercepted() {
		p.metrics.responded(ResponseUnset)
		return data, nil
	}

	if data == nil {
		p.violation(r, "handler returned no data")
		return nil, ErrContractViolation
	}
	if !p.check.valid(data) {
		p.violation(r, p.violationMsg)
		return nil, ErrContractViolation
	}

	p.metrics.responded(p.contract.Type)

	if p.contract.Type == ResponseRaw {
		return data, nil
	}
	return Wrap(data, ParamsFrom(r.Context()), p.contract), nil
}

func (p *pipeline) violation(r *http.Request, msg string) {
	p.metrics.violated()

	attrs := []slog.Attr{
		slog.String("method", p.method),
		slog.String("route", p.pattern),
		slog.String("response_type", p.contract.Type.String()),
	}
	if id := GetRequestID(r); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	p.logger.LogAttrs(r.Context(), slog.LevelError, msg, attrs...)
}
