package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ContentTypeJSON is the content type of every request made by Call.
const ContentTypeJSON = "application/json"

// maxBodySize bounds how much of a response body HTTPTransport reads.
const maxBodySize = 32 << 20

// Request is one call of a route.
type Request struct {
	// Path is the route path relative to the transport's base, such as
	// "/pets.list".
	Path        string
	Body        []byte
	Headers     map[string]string
	ContentType string
}

// Response is what a Transport received. Any status is a Response; only
// failures to exchange a request at all are errors.
type Response struct {
	Status   int
	Headers  http.Header
	Body     []byte
	Duration time.Duration
}

// Transport sends requests. Implementations must be safe for concurrent use.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport posts requests to BaseURL + Request.Path.
type HTTPTransport struct {
	BaseURL string

	// Client defaults to http.DefaultClient.
	Client *http.Client

	// Header is added to every request. Request headers win.
	Header http.Header
}

// NewHTTPTransport returns a transport for the API served at baseURL.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{BaseURL: baseURL}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	url := strings.TrimRight(t.BaseURL, "/") + req.Path
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range t.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	ct := req.ContentType
	if ct == "" {
		ct = ContentTypeJSON
	}
	hreq.Header.Set("Content-Type", ct)
	hreq.Header.Set("Accept", ct)
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}

	c := t.Client
	if c == nil {
		c = http.DefaultClient
	}
	resp, err := c.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{
		Status:   resp.StatusCode,
		Headers:  resp.Header,
		Body:     body,
		Duration: time.Since(start),
	}, nil
}
