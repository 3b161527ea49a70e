// Package api implements the marketplace REST client.
//
// Every backend response uses a common envelope {resultCode, msg, data};
// a request succeeds only when the HTTP status is ok and the resultCode
// starts with "200-" or "201-". On failure the envelope's msg becomes the
// user-facing error, falling back to a generic one when the body can't be
// parsed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyeonlog/jangteo/internal/core/auth"
)

// CredentialSource yields the current client credentials, if any.
// auth.Store satisfies it; the client treats auth.ErrNotLoggedIn as
// "no credentials" and sends unauthenticated requests.
type CredentialSource interface {
	Load(ctx context.Context) (auth.Credentials, error)
}

// Client is the marketplace REST client.
type Client struct {
	base   *url.URL
	httpc  *http.Client
	creds  CredentialSource
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithCredentials attaches a credential source consulted on every request.
func WithCredentials(src CredentialSource) Option {
	return func(c *Client) { c.creds = src }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	c := &Client{
		base:   base,
		httpc:  http.DefaultClient,
		logger: log.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BuildURL resolves an API path (optionally relative, e.g. an image path
// returned by the backend) against the client's base URL.
func (c *Client) BuildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return c.base.ResolveReference(ref).String()
}

// envelope is the backend's common response wrapper.
type envelope struct {
	ResultCode string          `json:"resultCode"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// successCode reports whether a resultCode indicates success.
func successCode(rc string) bool {
	return strings.HasPrefix(rc, "200-") || strings.HasPrefix(rc, "201-")
}

// get issues a GET request and decodes the envelope data into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// postJSON issues a POST with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json", out)
}

// delete issues a DELETE request.
func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", out)
}

// maxImages is the backend's per-submission attachment limit, checked
// locally before any upload starts.
const maxImages = 5

// filePart names a file to attach to a multipart request.
type filePart struct {
	field string
	path  string
}

// submitMultipart issues a multipart/form-data request with the given
// string fields and file attachments. Used for item creation/editing and
// chat sends, which carry image uploads.
func (c *Client) submitMultipart(ctx context.Context, method, path string, fields url.Values, files []filePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, values := range fields {
		for _, value := range values {
			if value == "" {
				continue
			}
			if err := w.WriteField(name, value); err != nil {
				return fmt.Errorf("write form field %s: %w", name, err)
			}
		}
	}

	for _, fp := range files {
		f, err := os.Open(fp.path)
		if err != nil {
			return fmt.Errorf("open attachment: %w", err)
		}
		part, err := w.CreateFormFile(fp.field, filepath.Base(fp.path))
		if err != nil {
			f.Close()
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return fmt.Errorf("copy attachment: %w", err)
		}
		f.Close()
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	return c.do(ctx, method, path, nil, &buf, w.FormDataContentType(), out)
}

// do performs a request, enforces the response envelope, and decodes the
// data payload into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.BuildURL(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	c.attachCredentials(ctx, req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	var env envelope
	parseErr := json.Unmarshal(raw, &env)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || parseErr != nil || !successCode(env.ResultCode) {
		apiErr := &Error{StatusCode: resp.StatusCode, ResultCode: env.ResultCode, Msg: env.Msg}
		if parseErr != nil {
			// Not the envelope; fall back to the raw body when it's short
			// enough to be a plain error string.
			if s := strings.TrimSpace(string(raw)); s != "" && len(s) < 200 {
				apiErr.Msg = s
			}
		}
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("result_code", env.ResultCode).
			Msg("request rejected")
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, ResultCode: env.ResultCode, Msg: "unexpected response shape"}
	}
	return nil
}

// attachCredentials adds auth headers when credentials are available.
// Missing credentials are not an error; the request goes out anonymous.
func (c *Client) attachCredentials(ctx context.Context, req *http.Request) {
	if c.creds == nil {
		return
	}
	creds, err := c.creds.Load(ctx)
	if err != nil {
		return
	}
	if creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	if creds.APIKey != "" {
		req.Header.Set("X-Api-Key", creds.APIKey)
	}
}
