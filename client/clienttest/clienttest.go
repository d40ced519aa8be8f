// Package clienttest provides a fake client.Transport for testing code that
// uses generated clients without starting an HTTP server.
package clienttest

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/broady/shapegen/client"
)

// Transport answers requests from canned replies keyed by route path and
// records every request it receives. Paths without a reply get a 404 with an
// empty body. It is safe for concurrent use.
type Transport struct {
	mu       sync.Mutex
	replies  map[string]*Reply
	requests []*client.Request
}

// New returns a Transport with no replies.
func New() *Transport {
	return &Transport{replies: make(map[string]*Reply)}
}

// On returns the reply for path, creating a 200 reply with a null body on
// first use.
func (t *Transport) On(path string) *Reply {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.replies[path]
	if !ok {
		r = &Reply{status: http.StatusOK, body: []byte("null"), headers: make(http.Header)}
		t.replies[path] = r
	}
	return r
}

// Do implements client.Transport.
func (t *Transport) Do(ctx context.Context, req *client.Request) (*client.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.requests = append(t.requests, cloneRequest(req))
	r := t.replies[req.Path]
	t.mu.Unlock()

	if r == nil {
		return &client.Response{Status: http.StatusNotFound, Headers: make(http.Header)}, nil
	}
	return r.response()
}

// Requests returns the requests received so far, in order.
func (t *Transport) Requests() []*client.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*client.Request(nil), t.requests...)
}

// Last returns the most recent request to path, failing the test if there
// is none.
func (t *Transport) Last(tb testing.TB, path string) *client.Request {
	tb.Helper()
	reqs := t.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Path == path {
			return reqs[i]
		}
	}
	tb.Fatalf("no request to %s (got %d requests)", path, len(reqs))
	return nil
}

func cloneRequest(req *client.Request) *client.Request {
	c := *req
	c.Body = append([]byte(nil), req.Body...)
	c.Headers = maps.Clone(req.Headers)
	return &c
}

// Reply is a canned response, configured with a fluent API.
type Reply struct {
	mu      sync.Mutex
	status  int
	body    []byte
	headers http.Header
	err     error
}

// Status sets the status code.
func (r *Reply) Status(code int) *Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = code
	return r
}

// JSON sets the body to the JSON encoding of v. It panics if v cannot be
// encoded.
func (r *Reply) JSON(v any) *Reply {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("clienttest: encode reply: %v", err))
	}
	return r.Body(string(data))
}

// Body sets the raw body.
func (r *Reply) Body(body string) *Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.body = []byte(body)
	return r
}

// Header adds a response header.
func (r *Reply) Header(key, value string) *Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headers.Add(key, value)
	return r
}

// Fail makes the transport return err instead of a response, as a network
// failure would.
func (r *Reply) Fail(err error) *Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

func (r *Reply) response() (*client.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &client.Response{
		Status:  r.status,
		Headers: r.headers.Clone(),
		Body:    append([]byte(nil), r.body...),
	}, nil
}

// AssertJSONBody compares the request body with the JSON encoding of
// expected, ignoring formatting and key order.
func AssertJSONBody(tb testing.TB, req *client.Request, expected any) {
	tb.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		tb.Fatalf("encode expected body: %v", err)
	}
	var expectedData, actualData any
	if err := json.Unmarshal(expectedJSON, &expectedData); err != nil {
		tb.Fatalf("decode expected body: %v", err)
	}
	if err := json.Unmarshal(req.Body, &actualData); err != nil {
		tb.Fatalf("request body is not JSON: %v\nBody: %s", err, req.Body)
	}

	expectedStr, _ := json.MarshalIndent(expectedData, "", "  ")
	actualStr, _ := json.MarshalIndent(actualData, "", "  ")
	if string(expectedStr) != string(actualStr) {
		tb.Errorf("request body mismatch:\nExpected:\n%s\nActual:\n%s", expectedStr, actualStr)
	}
}

// AssertHeader checks that the request carried a header with the expected
// value. Header names are compared case-insensitively.
func AssertHeader(tb testing.TB, req *client.Request, key, expectedValue string) {
	tb.Helper()
	for k, v := range req.Headers {
		if strings.EqualFold(k, key) {
			if v != expectedValue {
				tb.Errorf("expected header %s=%s, got %s", key, expectedValue, v)
			}
			return
		}
	}
	tb.Errorf("expected header %s=%s, header not sent", key, expectedValue)
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(tb testing.TB, req *client.Request, v any) {
	tb.Helper()
	if err := json.Unmarshal(req.Body, v); err != nil {
		tb.Fatalf("failed to decode request: %v\nBody: %s", err, req.Body)
	}
}
