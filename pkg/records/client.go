package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/logging"
)

// Client talks to the management API over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	contract   *Contract
	logger     *zap.Logger
}

var (
	_ Lookup         = (*Client)(nil)
	_ Persister      = (*Client)(nil)
	_ CategoryLister = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			clone := *c.httpClient
			clone.Timeout = timeout
			c.httpClient = &clone
		}
	}
}

// WithContract replaces the request contract. A nil contract disables
// request validation.
func WithContract(contract *Contract) Option {
	return func(c *Client) {
		c.contract = contract
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for baseURL using the embedded contract.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("records: base url required")
	}
	contract, err := DefaultContract()
	if err != nil {
		return nil, err
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		contract:   contract,
		logger:     logging.OrNop(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Link loads a stored link record.
func (c *Client) Link(ctx context.Context, id int64) (*Record, error) {
	var record Record
	if err := c.do(ctx, http.MethodGet, "getLink", "/links/"+strconv.FormatInt(id, 10), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Categories lists link categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var payload struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "listCategories", "/categories", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Categories, nil
}

// CreateLink stores a new link.
func (c *Client) CreateLink(ctx context.Context, payload LinkPayload) error {
	return c.do(ctx, http.MethodPost, "createLink", "/links", payload, nil)
}

// UpdateLink replaces an existing link.
func (c *Client) UpdateLink(ctx context.Context, id int64, payload LinkPayload) error {
	return c.do(ctx, http.MethodPut, "updateLink", "/links/"+strconv.FormatInt(id, 10), payload, nil)
}

// CreateTemplate stores a new record template.
func (c *Client) CreateTemplate(ctx context.Context, payload TemplatePayload) error {
	return c.do(ctx, http.MethodPost, "createTemplate", "/record-templates", payload, nil)
}

// UpdateTemplate replaces an existing record template.
func (c *Client) UpdateTemplate(ctx context.Context, id int64, payload TemplatePayload) error {
	return c.do(ctx, http.MethodPut, "updateTemplate", "/record-templates/"+strconv.FormatInt(id, 10), payload, nil)
}

func (c *Client) do(ctx context.Context, method, operationID, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		if err := c.contract.ValidateBody(operationID, body); err != nil {
			return err
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("records: encode %s: %w", operationID, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("records: build %s request: %w", operationID, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return fmt.Errorf("records: %s (latency=%v): %w", operationID, latency, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("management api call",
		zap.String("operation", operationID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("records: %s: %w", operationID, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("records: %s returned %d: %s", operationID, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("records: decode %s: %w", operationID, err)
	}
	return nil
}
