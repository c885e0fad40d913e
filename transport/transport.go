// Package transport defines the authenticated console session used for all
// control-plane calls. The session is built once by an authenticator and is
// read-only afterwards; it is safe for sequential reuse but carries no
// concurrency discipline of its own.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Session posts JSON request envelopes to a console endpoint with the
// authenticated cookies or tokens attached. Implementations are supplied by
// an authenticator collaborator; tests use a session bound to a scripted
// backend.
type Session interface {
	Post(ctx context.Context, url string, body any) (*Response, error)
}

// Response holds the status and raw body of one control-plane round trip.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the response body into v. An empty body decodes to nothing
// and returns nil.
func (r *Response) JSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// StatusError is the generic remote failure: a non-2xx response. It carries
// the response body so callers can surface the service's error text.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPSession is a Session over a plain *http.Client. The client is expected
// to carry the authenticated console cookies in its jar.
type HTTPSession struct {
	client *http.Client
}

// NewHTTPSession wraps client as a Session. A nil client falls back to
// http.DefaultClient.
func NewHTTPSession(client *http.Client) *HTTPSession {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSession{client: client}
}

// Post JSON-encodes body and issues a POST to url. Transport-level failures
// return an error; non-2xx statuses do not, the caller inspects the
// returned Response.
func (s *HTTPSession) Post(ctx context.Context, url string, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

var _ Session = (*HTTPSession)(nil)
