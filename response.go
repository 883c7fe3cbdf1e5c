package stdresp

import (
	"encoding/json"
	"net/http"
)

// CookieSetter is optionally implemented by response types to set cookies.
type CookieSetter interface {
	Cookies() []*http.Cookie
}

// HeaderSetter is optionally implemented by response types to set response headers.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// encodeResponse writes body as JSON. Cookies, headers and a StatusCoder
// override are taken from src, the handler's own result, so they survive
// wrapping in an Envelope.
func encodeResponse(w http.ResponseWriter, src, body any, defaultStatus int) {
	if cs, ok := src.(CookieSetter); ok {
		for _, c := range cs.Cookies() {
			http.SetCookie(w, c)
		}
	}
	if hs, ok := src.(HeaderSetter); ok {
		hs.SetHeaders(w.Header())
	}

	status := defaultStatus
	if sc, ok := src.(StatusCoder); ok {
		status = sc.StatusCode()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(body)
}

// writeErrorResponse writes an error as an RFC 9457 problem details response.
func writeErrorResponse(w http.ResponseWriter, err error) {
	problem := problemFor(err)

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(problem)
}
