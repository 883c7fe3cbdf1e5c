package stdresp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/stdresp"
	"github.com/bjaus/stdresp/query"
)

type book struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

type bookRecord struct {
	Title    string `json:"title"`
	Password string `json:"password,omitempty"`
}

var shelf = []book{
	{Title: "Dune", Year: 1965},
	{Title: "Emma", Year: 1815},
	{Title: "Ulysses", Year: 1922},
}

type listBooks struct {
	Params *stdresp.Params
}

func listHandler(_ context.Context, req *listBooks) (*[]book, error) {
	pg := req.Params.PaginationInfo()
	req.Params.SetCount(len(shelf))

	end := min(pg.Offset+pg.Limit, len(shelf))
	start := min(pg.Offset, end)
	out := shelf[start:end]
	return &out, nil
}

func TestPipeline_standard_envelope(t *testing.T) {
	t.Parallel()

	r := stdresp.New()
	stdresp.Get(r, "/books", listHandler, stdresp.WithStandardResponse(stdresp.StandardResponse{
		Paginated:        true,
		MaxLimit:         20,
		Sorted:           true,
		SortableFields:   []string{"title", "year"},
		Filtered:         true,
		FilterableFields: []string{"year"},
	}))

	rec := serve(t, r, http.MethodGet, "/books?limit=2&offset=1&sort=-year,title&filter=year>1900", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[stdresp.Envelope[[]book]](t, rec)
	assert.True(t, env.Success)
	assert.True(t, env.IsArray)
	assert.True(t, env.IsPaginated)
	assert.True(t, env.IsSorted)
	assert.True(t, env.IsFiltered)
	assert.Equal(t, shelf[1:3], env.Data)

	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Limit)
	assert.Equal(t, 1, env.Pagination.Offset)
	assert.Equal(t, 20, env.Pagination.MaxLimit)
	assert.Equal(t, "limit=2&offset=1", env.Pagination.Query)
	require.NotNil(t, env.Pagination.Count)
	assert.Equal(t, 3, *env.Pagination.Count)

	require.NotNil(t, env.Sorting)
	assert.Equal(t, []query.SortField{
		{Field: "year", Order: query.Descending},
		{Field: "title", Order: query.Ascending},
	}, env.Sorting.Sort)

	require.NotNil(t, env.Filtering)
	require.NotNil(t, env.Filtering.Filter)
	assert.Equal(t, query.FilterClause{Field: "year", Operation: query.OpGreater, Value: "1900"},
		env.Filtering.Filter.AllOf[0].AnyOf[0])
}

func TestPipeline_filter_groups(t *testing.T) {
	t.Parallel()

	r := stdresp.New()
	stdresp.Get(r, "/books", listHandler, stdresp.WithStandardResponse(stdresp.StandardResponse{
		Filtered:         true,
		FilterableFields: []string{"author", "year"},
	}))

	for name, target := range map[string]string{
		"unescaped": "/books?filter=author==John,author==Jake;year>=1890,year<=2000",
		"escaped":   "/books?filter=author%3D%3DJohn%2Cauthor%3D%3DJake%3Byear%3E%3D1890%2Cyear%3C%3D2000",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(t, r, http.MethodGet, target, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			env := decode[stdresp.Envelope[[]book]](t, rec)
			require.NotNil(t, env.Filtering)
			assert.Equal(t, "author==John,author==Jake;year>=1890,year<=2000", env.Filtering.Query)
			require.NotNil(t, env.Filtering.Filter)
			assert.Equal(t, []query.FilterGroup{
				{AnyOf: []query.FilterClause{
					{Field: "author", Operation: query.OpEqual, Value: "John"},
					{Field: "author", Operation: query.OpEqual, Value: "Jake"},
				}},
				{AnyOf: []query.FilterClause{
					{Field: "year", Operation: query.OpGreaterOrEqual, Value: "1890"},
					{Field: "year", Operation: query.OpLessOrEqual, Value: "2000"},
				}},
			}, env.Filtering.Filter.AllOf)
		})
	}
}

func TestPipeline_malformed_escape(t *testing.T) {
	t.Parallel()

	r := stdresp.New()
	stdresp.Get(r, "/books", listHandler, stdresp.WithStandardResponse(stdresp.StandardResponse{Filtered: true}))

	rec := serve(t, r, http.MethodGet, "/books?filter=year%zz", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	pd := decode[stdresp.ProblemDetail](t, rec)
	require.Len(t, pd.Errors, 1)
	assert.Equal(t, "filter", pd.Errors[0].Field)
	assert.Equal(t, "invalid escape sequence in filter", pd.Errors[0].Message)

	// Parameters the route does not read are left alone.
	rec = serve(t, r, http.MethodGet, "/books?sort=%zz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPipeline_default_limit_within_bounds(t *testing.T) {
	t.Parallel()

	r := stdresp.New()
	stdresp.Get(r, "/books", listHandler, stdresp.WithStandardResponse(stdresp.StandardResponse{Paginated: true, MaxLimit: 2}))

	rec := serve(t, r, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[stdresp.Envelope[[]book]](t, rec)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Limit)
	assert.Equal(t, 2, env.Pagination.DefaultLimit)
	assert.Len(t, env.Data, 2)
}

func TestPipeline_envelope_omits_disabled_features(t *testing.T) {
	t.Parallel()

	type Stats struct {
		Books int `json:"books"`
	}

	r := stdresp.New()
	stdresp.Get(r, "/stats", func(_ context.Context, _ *stdresp.Void) (*Stats, error) {
		return &Stats{Books: 3}, nil
	})

	rec := serve(t, r, http.MethodGet, "/stats?limit=-4&sort=nope", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `true`, string(raw["success"]))
	assert.JSONEq(t, `{"books":3}`, string(raw["data"]))
	for _, key := range []string{"isArray", "isPaginated", "isSorted", "isFiltered", "pagination", "sorting", "filtering", "message"} {
		assert.NotContains(t, raw, key)
	}
}

func TestPipeline_empty_list_is_array(t *testing.T) {
	t.Parallel()

	r := stdresp.New()
	stdresp.Get(r, "/books", func(_ context.Context, _ *stdresp.Void) (*[]book, error) {
		var none []book
		return &none, nil
	})

	rec := serve(t, r, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"isArray":true,"data":[]}`, rec.Body.String())
}

func TestPipeline_query_rejected_before_handler(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		target    string
		wantField string
		wantMsg   string
	}{
		"non-positive limit": {
			target:    "/books?limit=0",
			wantField: "limit",
			wantMsg:   "limit must be a positive number",
		},
		"negative offset": {
			target:    "/books?offset=-1",
			wantField: "offset",
			wantMsg:   "offset must not be less than 0",
		},
		"limit above max": {
			target:    "/books?limit=100",
			wantField: "limit",
			wantMsg:   "limit can't be larger than 20",
		},
		"disallowed sort field": {
			target:    "/books?sort=isbn,-author",
			wantField: "sort",
			wantMsg:   "invalid sorting fields: isbn, author",
		},
		"malformed filter": {
			target:    "/books?filter=year",
			wantField: "filter",
			wantMsg:   "invalid filtering expression: year",
		},
		"disallowed filter field": {
			target:    "/books?filter=isbn==1",
			wantField: "filter",
			wantMsg:   "invalid filtering field: isbn",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			called := false
			r := stdresp.New()
			stdresp.Get(r, "/books", func(ctx context.Context, req *listBooks) (*[]book, error) {
				called = true
				return listHandler(ctx, req)
			}, stdresp.WithStandardResponse(stdresp.StandardResponse{
				Paginated:        true,
				MaxLimit:         20,
				Sorted:           true,
				SortableFields:   []string{"title", "year"},
				Filtered:         true,
				FilterableFields: []string{"year"},
			}))

			rec := serve(t, r, http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, called)

			pd := decode[stdresp.ProblemDetail](t, rec)
			require.Len(t, pd.Errors, 1)
			assert.Equal(t, tc.wantField, pd.Errors[0].Field)
			assert.Equal(t, tc.wantMsg, pd.Errors[0].Message)
		})
	}
}

func TestPipeline_raw_response(t *testing.T) {
	t.Parallel()

	r := stdresp.New(stdresp.WithResponseValidator(stdresp.DenyFields("password")))
	stdresp.Get(r, "/health", func(_ context.Context, _ *stdresp.Void) (*map[string]string, error) {
		return &map[string]string{"status": "ok"}, nil
	}, stdresp.WithRawResponse(stdresp.RawResponse{Description: "liveness"}))
	stdresp.Get(r, "/leak", func(_ context.Context, _ *stdresp.Void) (*bookRecord, error) {
		return &bookRecord{Title: "Dune", Password: "hunter2"}, nil
	}, stdresp.WithRawResponse(stdresp.RawResponse{}))

	rec := serve(t, r, http.MethodGet, "/health?limit=-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(t, r, http.MethodGet, "/leak", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestPipeline_intercept_all(t *testing.T) {
	t.Parallel()

	handler := func(_ context.Context, _ *stdresp.Void) (*bookRecord, error) {
		return &bookRecord{Title: "Dune", Password: "hunter2"}, nil
	}

	tests := map[string]struct {
		interceptAll bool
		wantStatus   int
		wantBody     string
	}{
		"undeclared routes are wrapped and validated": {
			interceptAll: true,
			wantStatus:   http.StatusBadGateway,
		},
		"undeclared routes pass through": {
			interceptAll: false,
			wantStatus:   http.StatusOK,
			wantBody:     `{"title":"Dune","password":"hunter2"}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := stdresp.New(
				stdresp.WithInterceptAll(tc.interceptAll),
				stdresp.WithResponseValidator(stdresp.DenyFields("password")),
			)
			stdresp.Get(r, "/user", handler)

			rec := serve(t, r, http.MethodGet, "/user", nil)
			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestPipeline_validator_rejects_any_element(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := stdresp.New(
		stdresp.WithLogger(logger),
		stdresp.WithResponseValidator(stdresp.DenyFields("password")),
		stdresp.WithValidationErrorMessage("dto required"),
	)
	stdresp.Get(r, "/users", func(_ context.Context, _ *stdresp.Void) (*[]bookRecord, error) {
		return &[]bookRecord{{Title: "a"}, {Title: "b", Password: "x"}}, nil
	}, stdresp.WithStandardResponse(stdresp.StandardResponse{}))

	rec := serve(t, r, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), `"data"`)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dto required", entry["msg"])
	assert.Equal(t, "/users", entry["route"])
	assert.Equal(t, "standard", entry["response_type"])
}

func TestPipeline_nil_validator_rejects(t *testing.T) {
	t.Parallel()

	r := stdresp.New(
		stdresp.WithLogger(slog.New(slog.DiscardHandler)),
		stdresp.WithResponseValidator(nil),
	)
	stdresp.Get(r, "/books", func(_ context.Context, _ *stdresp.Void) (*[]book, error) {
		return &shelf, nil
	})

	rec := serve(t, r, http.MethodGet, "/books", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPipeline_nil_result(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := stdresp.New(stdresp.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	stdresp.Get(r, "/books", func(_ context.Context, _ *stdresp.Void) (*[]book, error) {
		return nil, nil
	})

	rec := serve(t, r, http.MethodGet, "/books", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, buf.String(), "handler returned no data")
}

type notFound struct{ id string }

func (e notFound) Error() string   { return "no book " + e.id }
func (e notFound) StatusCode() int { return http.StatusNotFound }

func TestPipeline_error_valued_result(t *testing.T) {
	t.Parallel()

	r := stdresp.New()
	stdresp.Get(r, "/books/{id}", func(_ context.Context, _ *stdresp.Void) (*notFound, error) {
		return &notFound{id: "9"}, nil
	})

	rec := serve(t, r, http.MethodGet, "/books/9", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no book 9", decode[stdresp.ProblemDetail](t, rec).Detail)
}

func TestPipeline_message(t *testing.T) {
	t.Parallel()

	type Req struct {
		Params *stdresp.Params
	}

	r := stdresp.New()
	stdresp.Post(r, "/books", func(_ context.Context, req *Req) (*book, error) {
		req.Params.SetMessage("created")
		return &shelf[0], nil
	})

	rec := serve(t, r, http.MethodPost, "/books", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[stdresp.Envelope[book]](t, rec)
	assert.Equal(t, "created", env.Message)
	assert.False(t, env.IsArray)
}

func TestPipeline_requests_are_isolated(t *testing.T) {
	t.Parallel()

	type Req struct {
		Params *stdresp.Params
		Tag    string `query:"tag"`
	}

	r := stdresp.New()
	stdresp.Get(r, "/books", func(_ context.Context, req *Req) (*[]book, error) {
		if req.Tag != "" {
			req.Params.SetCount(len(req.Tag))
			req.Params.SetMessage(req.Tag)
		}
		return &shelf, nil
	}, stdresp.WithStandardResponse(stdresp.StandardResponse{Paginated: true}))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			tag := ""
			if i%2 == 0 {
				tag = fmt.Sprintf("t%d", i)
			}
			rec := serve(t, r, http.MethodGet, "/books?tag="+tag, nil)
			assert.Equal(t, http.StatusOK, rec.Code)

			var env stdresp.Envelope[[]book]
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tag, env.Message)
			if tag == "" {
				assert.Nil(t, env.Pagination.Count)
			} else if assert.NotNil(t, env.Pagination.Count) {
				assert.Equal(t, len(tag), *env.Pagination.Count)
			}
		}()
	}
	wg.Wait()
}

type created struct {
	ID string `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }

func (created) SetHeaders(h http.Header) { h.Set("Location", "/books/1") }

func TestPipeline_response_hooks_survive_wrapping(t *testing.T) {
	t.Parallel()

	r := stdresp.New()
	stdresp.Post(r, "/books", func(_ context.Context, _ *stdresp.Void) (*created, error) {
		return &created{ID: "1"}, nil
	})

	rec := serve(t, r, http.MethodPost, "/books", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/books/1", rec.Header().Get("Location"))
	assert.Equal(t, "1", decode[stdresp.Envelope[created]](t, rec).Data.ID)
}
