package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/devnotes/internal/buildinfo"
	"github.com/dmitrijs2005/devnotes/internal/client/models"
	"github.com/dmitrijs2005/devnotes/internal/common"
	"github.com/dmitrijs2005/devnotes/internal/logging"
)

// maxErrorBodyBytes bounds how much of a non-2xx body is read for its
// message. Successful bodies are decoded as a stream with no limit.
const maxErrorBodyBytes = 64 << 10

var userAgent = "devnotes-client/" + buildinfo.Version()

// HTTPClient talks to the note store over its JSON HTTP API.
type HTTPClient struct {
	baseURL     *url.URL
	http        *http.Client
	accessToken string
	logger      logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithAccessToken sends token as a bearer credential on every request.
func WithAccessToken(token string) Option {
	return func(c *HTTPClient) { c.accessToken = token }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewNoteStoreClient builds a client for the store rooted at baseURL, e.g.
// "http://localhost:8787".
func NewNoteStoreClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid note store url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid note store url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) List(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, c.baseURL.JoinPath("notes"), nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

func (c *HTTPClient) Get(ctx context.Context, id string) (*models.Note, error) {
	if id == "" {
		return nil, fmt.Errorf("get: empty id: %w", ErrNotFound)
	}
	if !addressable(id) {
		return nil, fmt.Errorf("get: malformed id %q: %w", id, ErrNotFound)
	}
	var note models.Note
	if err := c.do(ctx, http.MethodGet, c.baseURL.JoinPath("notes", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *HTTPClient) Upsert(ctx context.Context, req models.UpsertRequest) (string, error) {
	var resp models.UpsertResponse
	if err := c.do(ctx, http.MethodPut, c.baseURL.JoinPath("notes"), req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: upsert response carries no id", ErrServer)
	}
	return resp.ID, nil
}

// Delete removes the note. A 404 from the store counts as success.
func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if !addressable(id) {
		return fmt.Errorf("delete: malformed id %q: %w", id, ErrValidation)
	}
	err := c.do(ctx, http.MethodDelete, c.baseURL.JoinPath("notes", id), nil, nil)
	if isStatus(err, http.StatusNotFound) {
		c.logger.Debug(ctx, "delete of unknown note ignored", "id", id)
		return nil
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, method string, u *url.URL, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, u.Path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, u.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "note store request failed", "method", method, "path", u.Path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, u.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "note store request", "method", method, "path", u.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &StatusError{
			Method:     method,
			Path:       u.Path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(payload),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	rec := &readErrRecorder{r: resp.Body}
	err = json.NewDecoder(rec).Decode(out)
	if rec.err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, u.Path, rec.err)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode %s %s: %w", ErrServer, method, u.Path, err)
	}
	return nil
}

// readErrRecorder keeps the first read failure, which the stream decoder
// would otherwise report as an empty body.
type readErrRecorder struct {
	r   io.Reader
	err error
}

func (r *readErrRecorder) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && r.err == nil {
		r.err = err
	}
	return n, err
}

// addressable reports whether id can be placed in a URL path as a single
// segment without path cleaning changing the route.
func addressable(id string) bool {
	return id != "." && id != ".." && !strings.ContainsAny(id, "/\\")
}

// errorMessage extracts {"error": "..."} bodies and falls back to raw text.
func errorMessage(payload []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(payload))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func isStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
