package stdresp_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/stdresp"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		target     string
		status     int
		wantSubstr []string
		wantLevel  string
	}{
		"request is logged": {
			target:     "/books",
			status:     http.StatusOK,
			wantSubstr: []string{"msg=request", "method=GET", "path=/books", "status=200"},
			wantLevel:  "level=INFO",
		},
		"query is logged": {
			target:     "/books?limit=5&sort=-year",
			status:     http.StatusOK,
			wantSubstr: []string{`query="limit=5&sort=-year"`},
			wantLevel:  "level=INFO",
		},
		"server errors log at error level": {
			target:     "/books",
			status:     http.StatusBadGateway,
			wantSubstr: []string{"status=502"},
			wantLevel:  "level=ERROR",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			h := stdresp.RequestID()(stdresp.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})))

			serve(t, h, http.MethodGet, tc.target, nil)

			out := buf.String()
			for _, s := range tc.wantSubstr {
				assert.Contains(t, out, s)
			}
			assert.Contains(t, out, tc.wantLevel)
			assert.Contains(t, out, "request_id=")
		})
	}
}

func TestLogger_no_query(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := stdresp.Logger(slog.New(slog.NewTextHandler(&buf, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	serve(t, h, http.MethodGet, "/books", nil)
	assert.NotContains(t, buf.String(), "query=")
	assert.NotContains(t, buf.String(), "request_id=")
}
