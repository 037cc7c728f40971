// Package youtube provides the minimal Data API client used to auto-fill link
// forms. It resolves a single video identifier into its snippet and leaves
// degradation decisions to metadata.Fetcher.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-formsync/pkg/metadata"
)

// DefaultBaseURL is the public Data API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client resolves video identifiers against the Data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ metadata.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// New creates a Data API client.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube: api key required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Video fetches the snippet for a single video.
func (c *Client) Video(ctx context.Context, id string) (*metadata.Response, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, metadata.ErrEmptyIdentifier
	}
	endpoint, err := url.Parse(c.baseURL + "/videos")
	if err != nil {
		return nil, fmt.Errorf("youtube: parse url: %w", err)
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", id)
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("youtube: execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube: videos returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload metadata.Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("youtube: decode response: %w", err)
	}
	return &payload, nil
}
