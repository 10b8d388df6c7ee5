// Package httpjson holds the request/response plumbing shared by the
// provider and ledger clients.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// maxSnippet bounds how much of a response body goes into an error message.
const maxSnippet = 512

// StatusError is a non-200 response. Body holds the raw response for diagnostics.
type StatusError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > maxSnippet {
		body = body[:maxSnippet]
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, bytes.TrimSpace(body))
}

// Request describes one call.
type Request struct {
	Op      string // used in errors, e.g. "fetching movements"
	Method  string
	URL     string
	Headers map[string]string
	Body    any // JSON-encoded when non-nil
}

// Do performs req and returns the response body. Any status other than 200 is a *StatusError.
func Do(ctx context.Context, client *http.Client, req Request) ([]byte, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", req.Op, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", req.Op, err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", req.Op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: req.Op, StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}

// DoJSON performs req and decodes the response body into out.
func DoJSON(ctx context.Context, client *http.Client, req Request, out any) error {
	data, err := Do(ctx, client, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", req.Op, err)
	}
	return nil
}

// LoggingTransport logs every round trip at debug level.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *log.Logger
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		t.Logger.Debug("http request failed", "method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "err", err)
		return nil, err
	}
	t.Logger.Debug("http", "method", req.Method, "host", req.URL.Host, "path", req.URL.Path,
		"status", resp.StatusCode, "took", time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// NewClient returns the client shared by every component of a run.
// A zero timeout disables the per-request deadline.
func NewClient(timeout time.Duration, logger *log.Logger) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &LoggingTransport{Base: http.DefaultTransport, Logger: logger},
	}
}
