package query

import (
	"net/url"
	"strings"
)

// Values parses a raw query string, splitting pairs on '&' only. Unlike
// url.ParseQuery it keeps ';' inside values, which the filter grammar uses
// to separate groups.
//
// Pairs that fail to unescape are left out of the result and reported in
// the returned *ValidationError, one FieldError per pair. Well-formed
// pairs are always returned.
func Values(rawQuery string) (url.Values, error) {
	values := make(url.Values)
	var errs []FieldError

	for pair := range strings.SplitSeq(strings.TrimPrefix(rawQuery, "?"), "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			errs = append(errs, FieldError{Field: rawKey, Message: "invalid escape sequence in parameter name " + rawKey})
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			errs = append(errs, FieldError{Field: key, Message: "invalid escape sequence in " + key})
			continue
		}
		values[key] = append(values[key], value)
	}

	if len(errs) > 0 {
		return values, &ValidationError{Errors: errs}
	}
	return values, nil
}
