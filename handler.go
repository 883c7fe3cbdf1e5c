package stdresp

import (
	"context"
	"reflect"
)

// Void is used as a type parameter when a request has no parameters/body
// or a response has no body (results in 204 No Content). Void responses are
// never wrapped in an Envelope.
type Void struct{}

// Handler is the core typed handler signature. The framework owns
// serialization; handlers never see http.ResponseWriter or *http.Request.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)

// isSequence reports whether v holds a slice or an array.
func isSequence(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
