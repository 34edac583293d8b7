// Package gist stores the habit document as a single file in a GitHub gist.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultFilename is the gist file holding the document.
	DefaultFilename = "habit_data.json"

	defaultBaseURL = "https://api.github.com"
	requestTimeout = 10 * time.Second
	userAgent      = "github.com/theirongolddev/habitboard/1.0"

	// The gists API inlines up to 1 MB of a file and truncates the rest;
	// the raw URL then serves files up to 10 MB.
	maxBodySize = 10 << 20
)

var (
	// ErrUnauthorized indicates the token is missing scopes, expired or invalid.
	ErrUnauthorized = errors.New("gist: unauthorized (token expired or lacks gist scope)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("gist: rate limited")
	// ErrNotFound indicates the gist id does not exist or is not visible.
	ErrNotFound = errors.New("gist: not found")
	// ErrFileMissing indicates the gist exists but has no document file.
	ErrFileMissing = errors.New("gist: document file missing")
	// ErrTooLarge indicates a response larger than the client accepts.
	ErrTooLarge = errors.New("gist: response too large")
)

// Client reads and overwrites one file of one gist.
type Client struct {
	token    string
	gistID   string
	filename string
	baseURL  string
	http     *http.Client
	maxBody  int64
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (GitHub Enterprise or a
// test server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithFilename overrides the document file name.
func WithFilename(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.filename = name
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the given token and gist id.
// Returns nil if either is empty.
func NewClient(token, gistID string, opts ...Option) *Client {
	token = strings.TrimSpace(token)
	gistID = strings.TrimSpace(gistID)
	if token == "" || gistID == "" {
		return nil
	}
	c := &Client{
		token:    token,
		gistID:   gistID,
		filename: DefaultFilename,
		baseURL:  defaultBaseURL,
		http:     &http.Client{},
		maxBody:  maxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the backend in logs and metrics.
func (c *Client) Name() string { return "gist" }

// GistID returns the configured gist id.
func (c *Client) GistID() string { return c.gistID }

// Fetch returns the current content of the document file. Content the API
// truncated is fetched again from the file's raw URL.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	g, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}

	f, ok := g.Files[c.filename]
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileMissing, c.filename)
	}
	if !f.Truncated {
		return []byte(f.Content), nil
	}
	if f.RawURL == "" {
		return nil, fmt.Errorf("gist: %s truncated without raw url", c.filename)
	}
	return c.do(ctx, http.MethodGet, f.RawURL, nil)
}

// Get returns the gist metadata and files.
func (c *Client) Get(ctx context.Context) (*Gist, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/gists/"+c.gistID, nil)
	if err != nil {
		return nil, err
	}

	var g Gist
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("gist: parsing gist: %w", err)
	}
	return &g, nil
}

// Put overwrites the document file with content.
func (c *Client) Put(ctx context.Context, content []byte) error {
	payload, err := json.Marshal(updateRequest{
		Files: map[string]fileUpdate{c.filename: {Content: string(content)}},
	})
	if err != nil {
		return fmt.Errorf("gist: encoding update: %w", err)
	}

	_, err = c.do(ctx, http.MethodPatch, c.baseURL+"/gists/"+c.gistID, payload)
	return err
}

// do performs an authenticated request and returns the response body.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("gist: creating request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	//nolint:gosec // URL is built from the configured API root or a URL returned by it
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gist: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return nil, ErrRateLimited
		}
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusNotFound:
		return nil, ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gist: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("gist: reading response: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, c.maxBody)
	}
	return data, nil
}
