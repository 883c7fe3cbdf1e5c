package stdresp_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/stdresp"
)

type tenant struct {
	Name string
}

func TestSetValue_GetValue(t *testing.T) {
	t.Parallel()

	withTenant := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, stdresp.SetValue(r, tenant{Name: "acme"}))
		})
	}

	r := stdresp.New(stdresp.WithInterceptAll(false))
	r.Use(withTenant)
	stdresp.Get(r, "/tenant", func(ctx context.Context, _ *stdresp.Void) (*tenant, error) {
		tn, ok := stdresp.GetValue[tenant](ctx)
		if !ok {
			return nil, stdresp.Error(http.StatusUnauthorized, "no tenant")
		}
		return &tn, nil
	})

	rec := serve(t, r, http.MethodGet, "/tenant", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", decode[tenant](t, rec).Name)
}

func TestGetValue_missing(t *testing.T) {
	t.Parallel()

	v, ok := stdresp.GetValue[tenant](context.Background())
	assert.False(t, ok)
	assert.Zero(t, v)
}
