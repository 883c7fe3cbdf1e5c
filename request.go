package stdresp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/bjaus/stdresp/query"
)

// RawRequest can be embedded in a request type to get access to
// the underlying *http.Request.
type RawRequest struct {
	Request *http.Request
}

// requestCategory describes how a request type should be decoded.
type requestCategory int

const (
	catVoid     requestCategory = iota // Void: no params, no body
	catBodyOnly                        // entire struct is the body (no param tags, no Body field)
	catParams                          // has param tags or injected fields but no Body field
	catMixed                           // has Body field (params from tagged fields, body from Body)
)

// classifyRequest determines how a request type should be decoded.
func classifyRequest(t reflect.Type) requestCategory {
	if t == reflect.TypeFor[Void]() {
		return catVoid
	}
	if hasBodyField(t) {
		return catMixed
	}
	if hasParamTags(t) || hasInjectedField(t) {
		return catParams
	}
	return catBodyOnly
}

// decodeRequest creates a new Req value and populates it from the HTTP request.
func decodeRequest[Req any](r *http.Request) (*Req, error) {
	req := new(Req)
	t := reflect.TypeFor[Req]()
	cat := classifyRequest(t)

	if cat == catVoid {
		return req, nil
	}

	if t.Kind() == reflect.Struct {
		if err := bindParams(req, r); err != nil {
			return nil, err
		}
	}

	switch cat {
	case catBodyOnly:
		if err := decodeBody(r, req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	case catMixed:
		bodyField := reflect.ValueOf(req).Elem().FieldByName("Body")
		bodyPtr := bodyField.Addr().Interface()
		if err := decodeBody(r, bodyPtr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	}

	return req, nil
}

// bindParams binds path, query, header, and cookie values to struct fields
// and injects *Params and RawRequest fields.
func bindParams(target any, r *http.Request) error {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "Body" {
			continue
		}

		field := v.Field(i)

		switch f.Type {
		case reflect.TypeFor[*Params]():
			field.Set(reflect.ValueOf(ParamsFrom(r.Context())))
			continue
		case reflect.TypeFor[RawRequest]():
			field.Set(reflect.ValueOf(RawRequest{Request: r}))
			continue
		}

		for _, src := range paramSources {
			name, _ := tagOptions(f.Tag.Get(src.tag))
			if name == "" {
				continue
			}
			val := src.lookup(r, name)
			if val == "" {
				val = f.Tag.Get("default")
			}
			if val == "" {
				continue
			}
			if err := setFieldValue(field, val); err != nil {
				return fmt.Errorf("%w: %s: %w", src.err, name, err)
			}
		}
	}

	return nil
}

// paramSource reads one kind of request parameter.
type paramSource struct {
	tag    string
	err    error
	lookup func(r *http.Request, name string) string
}

var paramSources = []paramSource{
	{tag: "path", err: ErrBindPath, lookup: func(r *http.Request, name string) string {
		return r.PathValue(name)
	}},
	{tag: "query", err: ErrBindQuery, lookup: func(r *http.Request, name string) string {
		values, _ := query.Values(r.URL.RawQuery)
		return values.Get(name)
	}},
	{tag: "header", err: ErrBindHeader, lookup: func(r *http.Request, name string) string {
		return r.Header.Get(name)
	}},
	{tag: "cookie", err: ErrBindCookie, lookup: func(r *http.Request, name string) string {
		if c, err := r.Cookie(name); err == nil {
			return c.Value
		}
		return ""
	}},
}

// setFieldValue sets a reflect.Value from a string, supporting common types.
func setFieldValue(field reflect.Value, value string) error {
	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}

// decodeBody decodes the request body as JSON into target.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
