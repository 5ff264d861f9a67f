// Package api is the HTTP client of the movie catalog backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/movie-admin/internal/errs"
)

const maxBody = 8 << 20

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto errs sentinels.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusNotFound:
		return errs.ErrNotFound
	default:
		return nil
	}
}

// File is an optional upload (poster, logo, portrait).
type File struct {
	Name   string
	Reader io.Reader
}

// Client talks to the backend. Every request carries the bearer token from
// the token source, when there is one, and a fresh X-Request-ID.
type Client struct {
	base  *url.URL
	hc    *http.Client
	token func() string
	log   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.hc.Timeout = d } }

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(fn func() string) Option { return func(c *Client) { c.token = fn } }

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New returns a client rooted at baseURL (e.g. https://host/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:  u,
		hc:    &http.Client{Timeout: 30 * time.Second},
		token: func() string { return "" },
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetTokenSource replaces the token source after construction; the session
// store and the client depend on each other.
func (c *Client) SetTokenSource(fn func() string) { c.token = fn }

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, bytes.NewReader(b), "application/json", out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path, part string, payload any, fileField string, file *File, out any) error {
	body, ctype, err := multipartBody(part, payload, fileField, file)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, body, ctype, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := strings.TrimSpace(c.token()); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rid := uuid.Must(uuid.NewV4()).String()
	req.Header.Set("X-Request-ID", rid)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	// only metadata, never payloads or tokens
	c.log.Debug("api",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
		zap.String("request_id", rid),
	)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodeBody(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// decodeBody accepts both bare payloads and {"data": payload} envelopes.
func decodeBody(data []byte, out any) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if json.Unmarshal(data, &env) == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			data = env.Data
		}
	}
	return json.Unmarshal(data, out)
}

func errorMessage(data []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if s := strings.TrimSpace(string(data)); s != "" && len(s) < 512 && !strings.HasPrefix(s, "<") {
		return s
	}
	return http.StatusText(status)
}

// multipartBody builds a form with a JSON part named part and an optional file.
func multipartBody(part string, payload any, fileField string, file *File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="blob"`, part))
	h.Set("Content-Type", "application/json")
	pw, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(pw).Encode(payload); err != nil {
		return nil, "", err
	}

	if file != nil && file.Reader != nil {
		fw, err := w.CreateFormFile(fileField, filepath.Base(file.Name))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, file.Reader); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
