package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a request when neither the request nor the transport
// configures one.
const DefaultTimeout = 60 * time.Second

// Request describes one outbound HTTP exchange.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration // zero uses the transport default
}

// Response is the raw outcome of an exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Transport performs one HTTP exchange.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Options configures the HTTP transport.
type Options struct {
	// Client is the underlying HTTP client. Defaults to a fresh http.Client.
	Client *http.Client
	// Timeout applies when a request carries none.
	Timeout time.Duration
	// MaxBodyBytes caps the response body read into memory. Zero means no cap.
	MaxBodyBytes int64
}

// HTTP is a Transport backed by net/http.
type HTTP struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// NewHTTP creates an HTTP transport.
func NewHTTP(optFns ...func(o *Options)) *HTTP {
	opts := Options{
		Timeout: DefaultTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Client == nil {
		opts.Client = &http.Client{}
	}

	return &HTTP{
		client:  opts.Client,
		timeout: opts.Timeout,
		maxBody: opts.MaxBodyBytes,
	}
}

// Do sends req and reads the full response body.
func (t *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("transport: nil request")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = t.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: %w", method, req.URL, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if t.maxBody > 0 {
		reader = io.LimitReader(resp.Body, t.maxBody)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Do implements Transport.
func (f Func) Do(ctx context.Context, req *Request) (*Response, error) { return f(ctx, req) }
