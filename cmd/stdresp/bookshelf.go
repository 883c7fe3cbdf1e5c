package main

import (
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bjaus/stdresp"
	"github.com/bjaus/stdresp/query"
)

// Book is the public shape of a shelf entry.
type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
}

// bookRecord is the stored form. It must never be returned directly.
type bookRecord struct {
	Book
	InternalNotes string `json:"internalNotes"`
}

type shelf struct {
	mu     sync.RWMutex
	books  map[string]*bookRecord
	nextID int
}

func newShelf() *shelf {
	s := &shelf{books: make(map[string]*bookRecord), nextID: 1}
	for _, b := range []Book{
		{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: "scifi"},
		{Title: "Emma", Author: "Jane Austen", Year: 1815, Genre: "classic"},
		{Title: "Ulysses", Author: "James Joyce", Year: 1922, Genre: "classic"},
		{Title: "Neuromancer", Author: "William Gibson", Year: 1984, Genre: "scifi"},
		{Title: "Beloved", Author: "Toni Morrison", Year: 1987, Genre: "fiction"},
	} {
		s.add(b)
	}
	return s
}

func (s *shelf) add(b Book) Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.books[b.ID] = &bookRecord{Book: b, InternalNotes: "acquired " + time.Now().Format(time.DateOnly)}
	return b
}

func (s *shelf) get(id string) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.books[id]
	if !ok {
		return Book{}, false
	}
	return rec.Book, true
}

func (s *shelf) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return false
	}
	delete(s.books, id)
	return true
}

func (s *shelf) records() []bookRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]bookRecord, 0, len(s.books))
	for _, rec := range s.books {
		out = append(out, *rec)
	}
	slices.SortFunc(out, func(a, b bookRecord) int { return compareValues(a.ID, b.ID) })
	return out
}

func (s *shelf) all() []Book {
	recs := s.records()
	out := make([]Book, len(recs))
	for i, rec := range recs {
		out[i] = rec.Book
	}
	return out
}

// Requests

type listBooksReq struct {
	Params *stdresp.Params
}

type bookIDReq struct {
	ID string `path:"id"`
}

type createBookReq struct {
	Params *stdresp.Params
	Body   Book
}

func (r *createBookReq) Validate() error {
	if strings.TrimSpace(r.Body.Title) == "" {
		return stdresp.Error(http.StatusUnprocessableEntity, "title is required")
	}
	return nil
}

type healthResp struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

var (
	sortableFields   = []string{"title", "author", "year"}
	filterableFields = []string{"title", "author", "year", "genre"}
)

func newRouter(s *shelf, cfg *stdresp.Config, reg *prometheus.Registry, logger *slog.Logger) *stdresp.Router {
	r := stdresp.New(
		stdresp.WithConfig(cfg),
		stdresp.WithLogger(logger),
		stdresp.WithMetrics(reg),
		stdresp.WithResponseValidator(stdresp.DenyFields("internalNotes")),
	)

	r.Use(stdresp.Recovery())
	r.Use(stdresp.RequestID())
	r.Use(stdresp.Logger(logger))

	r.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	stdresp.Get(r, "/health", func(_ context.Context, _ *stdresp.Void) (*healthResp, error) {
		return &healthResp{Status: "ok", Time: time.Now().UTC()}, nil
	}, stdresp.WithRawResponse(stdresp.RawResponse{Description: "liveness probe"}))

	v1 := r.Group("/v1")

	stdresp.Get(v1, "/books", func(_ context.Context, req *listBooksReq) (*[]Book, error) {
		books := s.all()
		books = filterBooks(books, req.Params.FilteringInfo().Filter)
		sortBooks(books, req.Params.SortingInfo().Sort)

		pg := req.Params.PaginationInfo()
		req.Params.SetCount(len(books))

		end := min(pg.Offset+pg.Limit, len(books))
		start := min(pg.Offset, end)
		page := books[start:end]
		return &page, nil
	}, stdresp.WithStandardResponse(stdresp.StandardResponse{
		Description:      "list books",
		Paginated:        true,
		MaxLimit:         100,
		DefaultLimit:     20,
		Sorted:           true,
		SortableFields:   sortableFields,
		Filtered:         true,
		FilterableFields: filterableFields,
	}))

	stdresp.Get(v1, "/books/{id}", func(_ context.Context, req *bookIDReq) (*Book, error) {
		b, ok := s.get(req.ID)
		if !ok {
			return nil, stdresp.Errorf(http.StatusNotFound, "book %s not found", req.ID)
		}
		return &b, nil
	})

	stdresp.Post(v1, "/books", func(_ context.Context, req *createBookReq) (*Book, error) {
		b := s.add(req.Body)
		req.Params.SetMessage("book created")
		return &b, nil
	}, stdresp.WithStatus(http.StatusCreated))

	stdresp.Delete(v1, "/books/{id}", func(_ context.Context, req *bookIDReq) (*stdresp.Void, error) {
		if !s.remove(req.ID) {
			return nil, stdresp.Errorf(http.StatusNotFound, "book %s not found", req.ID)
		}
		return nil, nil
	})

	stdresp.Get(v1, "/export", func(_ context.Context, _ *stdresp.Void) (*[]Book, error) {
		books := s.all()
		return &books, nil
	}, stdresp.WithRawResponse(stdresp.RawResponse{Description: "full shelf dump"}))

	// Returns stored records as-is; the response validator turns this into a 502.
	stdresp.Get(v1, "/records", func(_ context.Context, _ *stdresp.Void) (*[]bookRecord, error) {
		recs := s.records()
		return &recs, nil
	}, stdresp.WithStandardResponse(stdresp.StandardResponse{Description: "stored records"}))

	return r
}

func bookField(b Book, field string) string {
	switch field {
	case "title":
		return b.Title
	case "author":
		return b.Author
	case "year":
		return strconv.Itoa(b.Year)
	case "genre":
		return b.Genre
	default:
		return ""
	}
}

// compareValues compares numerically when both sides are integers.
func compareValues(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func matches(b Book, c query.FilterClause) bool {
	v := bookField(b, c.Field)
	lv, lc := strings.ToLower(v), strings.ToLower(c.Value)

	switch c.Operation {
	case query.OpEqual:
		return compareValues(v, c.Value) == 0
	case query.OpNotEqual:
		return compareValues(v, c.Value) != 0
	case query.OpLess:
		return compareValues(v, c.Value) < 0
	case query.OpLessOrEqual:
		return compareValues(v, c.Value) <= 0
	case query.OpGreater:
		return compareValues(v, c.Value) > 0
	case query.OpGreaterOrEqual:
		return compareValues(v, c.Value) >= 0
	case query.OpContains:
		return strings.Contains(lv, lc)
	case query.OpNotContains:
		return !strings.Contains(lv, lc)
	case query.OpStartsWith:
		return strings.HasPrefix(lv, lc)
	case query.OpEndsWith:
		return strings.HasSuffix(lv, lc)
	default:
		return false
	}
}

func filterBooks(books []Book, f *query.Filter) []Book {
	if f == nil {
		return books
	}
	return slices.DeleteFunc(books, func(b Book) bool {
		for _, g := range f.AllOf {
			if !slices.ContainsFunc(g.AnyOf, func(c query.FilterClause) bool { return matches(b, c) }) {
				return true
			}
		}
		return false
	})
}

func sortBooks(books []Book, keys []query.SortField) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(books, func(a, b Book) int {
		for _, k := range keys {
			c := compareValues(bookField(a, k.Field), bookField(b, k.Field))
			if k.Order == query.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
