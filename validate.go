package stdresp

import (
	"encoding/json"
	"reflect"

	"github.com/tidwall/gjson"
)

// SelfValidator is implemented by request types that validate themselves.
type SelfValidator interface {
	Validate() error
}

// Validator validates any request.
type Validator interface {
	Validate(req any) error
}

// ResponseValidator reports whether a single outgoing item may be sent.
// For slice and array results it is called once per element.
type ResponseValidator func(item any) bool

// DefaultValidationErrorMessage is logged when a ResponseValidator rejects
// a result and no other message was configured.
const DefaultValidationErrorMessage = "Validation failed for your return value. " +
	"Did you accidentally return a document directly from your ORM instead of building a DTO or similar class? " +
	"This can lead to potential data leaks."

// DenyFields returns a ResponseValidator that rejects any item whose JSON
// form contains one of the given gjson paths, e.g. "password", "_id" or
// "owner.token". Items that cannot be encoded are rejected.
func DenyFields(paths ...string) ResponseValidator {
	return func(item any) bool {
		b, err := json.Marshal(item)
		if err != nil {
			return false
		}
		for _, res := range gjson.GetManyBytes(b, paths...) {
			if res.Exists() {
				return false
			}
		}
		return true
	}
}

// responseCheck applies a configured ResponseValidator.
type responseCheck struct {
	fn  ResponseValidator
	set bool
}

// valid reports whether data may be sent. A configured but nil predicate
// rejects everything.
func (rc responseCheck) valid(data any) bool {
	if !rc.set {
		return true
	}
	if rc.fn == nil {
		return false
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := range v.Len() {
			if !rc.fn(v.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return rc.fn(data)
}
