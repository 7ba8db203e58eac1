// Package apiclient wraps the outbound HTTP calls to provider APIs.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	providers "chargewatch/internal/providers/domain"
)

const defaultTimeout = 30 * time.Second

// NetworkError reports a transport failure or a non-2xx upstream response.
type NetworkError struct {
	Provider string
	URL      string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("apiclient: %s: fetch %s: %v", e.Provider, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client fetches provider list and detail payloads.
type Client struct {
	client *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient constructs a client with a bounded request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{client: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchList fetches one list window for a provider. An empty window issues
// the plain list request; otherwise the fragment is appended as extra query
// parameters.
func (c *Client) FetchList(ctx context.Context, desc providers.Descriptor, window string) ([]byte, error) {
	url := desc.ListURL
	if window != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + window
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Provider: desc.Name, URL: url, Err: err}
	}
	return c.do(desc.Name, req)
}

// FetchDetail posts a batch detail request for a two-phase provider.
func (c *Client) FetchDetail(ctx context.Context, desc providers.Descriptor, body []byte) ([]byte, error) {
	if desc.DetailURL == "" {
		return nil, &NetworkError{Provider: desc.Name, URL: desc.ListURL, Err: errors.New("no detail url")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, desc.DetailURL, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Provider: desc.Name, URL: desc.DetailURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(desc.Name, req)
}

func (c *Client) do(provider string, req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Provider: provider, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Provider: provider, URL: req.URL.String(), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Provider: provider, URL: req.URL.String(), Err: err}
	}
	return payload, nil
}
