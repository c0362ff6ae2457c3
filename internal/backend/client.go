// Package backend is the single HTTP entry point to the recruitment platform's
// REST API. Every feature of the dashboard goes through Client.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 16 << 20

var (
	// ErrUnauthorized matches any APIError carrying 401 or 403.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrNoToken is returned when login succeeds without a token.
	ErrNoToken = errors.New("backend: no token received from server")
	// ErrNotEmployer is returned when the logged in account is not an employer.
	ErrNotEmployer = errors.New("backend: access restricted to employers only")
)

// TokenSource yields the currently persisted bearer token.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// Recorder observes backend calls.
type Recorder interface {
	ObserveBackend(op, outcome string, elapsed time.Duration)
}

// APIError is the normalized failure of a backend call. Status is zero for
// transport failures.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("backend: %s: status %d: %s", e.Op, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnauthorized) match rejected tokens.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Unauthorized()
}

// Unauthorized reports whether the backend rejected the caller's token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// SafeMessage returns the text shown to the employer.
func (e *APIError) SafeMessage() string { return e.Message }

// Client talks to the backend. It holds no per-user state: the token is read
// from the TokenSource on every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	recorder   Recorder
	logger     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger attaches a logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs a Client rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = TokenFunc(func(context.Context) string { return "" })
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// Headers builds the headers of an authorized call from the token persisted
// right now. A missing token still produces a Bearer header; the backend
// rejects it.
func (c *Client) Headers(ctx context.Context) http.Header {
	return bearerHeaders(c.tokens.Token(ctx))
}

func bearerHeaders(token string) http.Header {
	h := make(http.Header, 2)
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")
	return h
}

type formField struct {
	name  string
	value string
}

type multipartBody struct {
	fields []formField
	file   *Upload
	// fileField names the part carrying file.
	fileField string
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	json   any
	form   *multipartBody
	// anonymous calls carry no Authorization header.
	anonymous bool
	// token overrides the TokenSource when explicitToken is set.
	token         string
	explicitToken bool
}

// do issues one request and decodes a 2xx body into out when out is non-nil.
// A *[]byte out receives the raw body. It returns the response status.
func (c *Client) do(ctx context.Context, cl call, out any) (status int, err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.ObserveBackend(cl.op, outcome(status, err), time.Since(start))
		}
	}()

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return 0, &APIError{Op: cl.op, Message: genericMessage(cl.op), Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request", slog.String("op", cl.op), slog.Any("error", err))
		return 0, &APIError{Op: cl.op, Message: genericMessage(cl.op), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &APIError{Op: cl.op, Status: resp.StatusCode, Message: genericMessage(cl.op), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &APIError{Op: cl.op, Status: resp.StatusCode, Message: errorMessage(cl.op, body)}
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = body
		return resp.StatusCode, nil
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, &APIError{Op: cl.op, Status: resp.StatusCode, Message: genericMessage(cl.op), Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var (
		body        io.Reader
		contentType = "application/json"
	)
	switch {
	case cl.form != nil:
		buf, ct, err := encodeMultipart(cl.form)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case cl.json != nil:
		data, err := json.Marshal(cl.json)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, err
	}
	if !cl.anonymous {
		headers := c.Headers(ctx)
		if cl.explicitToken {
			headers = bearerHeaders(cl.token)
		}
		for k, v := range headers {
			req.Header[k] = v
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func encodeMultipart(form *multipartBody) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, f := range form.fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if form.file != nil && len(form.file.Data) > 0 {
		name := form.file.Filename
		if name == "" {
			name = "upload"
		}
		part, err := writer.CreateFormFile(form.fileField, name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(form.file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

// list runs a collection call; "no content" and empty bodies yield an empty,
// non-nil slice.
func list[T any](ctx context.Context, c *Client, cl call) ([]T, error) {
	var out []T
	if _, err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// errorMessage prefers the backend's "message" field, then a JSON string or
// short plain-text body, then a generic line naming the operation.
func errorMessage(op string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return genericMessage(op)
	}
	if gjson.ValidBytes(trimmed) {
		parsed := gjson.ParseBytes(trimmed)
		if parsed.Type == gjson.String && parsed.String() != "" {
			return parsed.String()
		}
		for _, key := range []string{"message", "error", "detail"} {
			if v := parsed.Get(key); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
		return genericMessage(op)
	}
	text := string(trimmed)
	if len(text) > 300 || strings.HasPrefix(text, "<") {
		return genericMessage(op)
	}
	return text
}

func genericMessage(op string) string {
	return "Error trying to " + op + "."
}

func outcome(status int, err error) string {
	switch {
	case err == nil:
		return "ok"
	case status == 0:
		return "network_error"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
