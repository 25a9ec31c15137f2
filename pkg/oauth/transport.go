package oauth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Request is an outbound provider call built by the client.
type Request struct {
	Header map[string]string
	Method string // http.MethodGet or http.MethodPost
	URL    string
	Body   []byte
}

// Transport sends provider requests and returns the raw response body.
// Transport failures are returned as-is by the client.
type Transport interface {
	Send(ctx context.Context, req *Request) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) ([]byte, error)

func (f TransportFunc) Send(ctx context.Context, req *Request) ([]byte, error) { return f(ctx, req) }

// HTTPTransport is the default Transport backed by net/http.
// Bodies of 4xx responses are returned so the error checker can read
// provider error payloads; 5xx responses fail with ErrRequestFailed.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport. A nil client means http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Send performs the request. An *http.Client stored in ctx under oauth2.HTTPClient
// takes precedence over the configured one, as in golang.org/x/oauth2.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) ([]byte, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), req.URL, body)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build request: %w", err))
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.httpClient(ctx).Do(httpReq)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("%s %s: %w", httpReq.Method, req.URL, err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, fmt.Errorf("unexpected nil response from %s", req.URL))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("request failed: status=%d body=%s", resp.StatusCode, data))
	}
	return data, nil
}

func (t *HTTPTransport) httpClient(ctx context.Context) *http.Client {
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && c != nil {
		return c
	}
	if t.client != nil {
		return t.client
	}
	return http.DefaultClient
}
