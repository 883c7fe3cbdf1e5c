package query

import (
	"net/http"
	"strings"
)

// FieldError describes a single rejected query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by every parser in this package when the
// query string cannot be accepted. It is always a client error.
//
//nolint:errname // mirrors the api-level ValidationError naming
type ValidationError struct {
	Errors []FieldError
}

// Error joins the field messages.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// StatusCode returns http.StatusBadRequest.
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// disallowed returns the entries of fields not present in allowed, keeping
// their order. A nil allow-list permits everything.
func disallowed(fields, allowed []string) []string {
	if allowed == nil {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[f] = struct{}{}
	}
	var out []string
	for _, f := range fields {
		if _, ok := set[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// fieldsMessage renders "invalid <kind> field: a" or "invalid <kind> fields: a, b".
func fieldsMessage(kind string, fields []string) string {
	noun := "field"
	if len(fields) > 1 {
		noun = "fields"
	}
	return "invalid " + kind + " " + noun + ": " + strings.Join(fields, ", ")
}

// distinct returns fields with duplicates removed, first occurrence wins.
func distinct(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
