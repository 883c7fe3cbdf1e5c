// Package apitest provides typed test helpers for stdresp routers.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bjaus/stdresp"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient creates a test client from a router.
func NewClient(t testing.TB, r *stdresp.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a decoded response. Body is set for 2xx JSON responses,
// Problem for application/problem+json responses.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Problem *stdresp.ProblemDetail
}

// Get sends a GET request and decodes the body as Resp.
func Get[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodGet, path, nil)
}

// GetEnvelope sends a GET request to a standard route and decodes the
// envelope around T.
func GetEnvelope[T any](t testing.TB, c *Client, path string) *Response[stdresp.Envelope[T]] {
	t.Helper()
	return do[stdresp.Envelope[T]](t, c, http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, body)
}

// Put sends a PUT request with a JSON body.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPut, path, body)
}

// Delete sends a DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodDelete, path, nil)
}

func do[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("apitest: marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
	}

	if resp.StatusCode == http.StatusNoContent {
		return result
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/problem+json") {
		var pd stdresp.ProblemDetail
		if err := json.NewDecoder(resp.Body).Decode(&pd); err != nil {
			t.Fatalf("apitest: decode problem: %v", err)
		}
		result.Problem = &pd
		return result
	}

	var decoded Resp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if errors.Is(err, io.EOF) {
			return result
		}
		t.Fatalf("apitest: decode body: %v", err)
	}
	result.Body = &decoded

	return result
}
