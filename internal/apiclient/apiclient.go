// Package apiclient turns backend request paths into requests against the
// configured API server. Transport, retries and credentials belong to the
// caller.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"coffee-env/internal/environment"
)

type Client struct {
	base *url.URL
}

// New refuses to build a client when apiServerUrl is not an absolute URL.
func New(env environment.Environment) (*Client, error) {
	if err := environment.CheckURL("apiServerUrl", env.APIServerURL); err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	base, err := url.Parse(env.APIServerURL)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	return &Client{base: base}, nil
}

func (c *Client) BaseURL() string { return c.base.String() }

// Endpoint prefixes path with the base URL. A query string in path is kept.
func (c *Client) Endpoint(path string) string {
	rawQuery := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, rawQuery = path[:i], path[i+1:]
	}
	u := c.base.JoinPath(path)
	u.RawQuery = rawQuery
	return u.String()
}

func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
