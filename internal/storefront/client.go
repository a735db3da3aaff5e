// Package storefront provides the HTTP client for the storefront admin GraphQL API.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/metrics"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	maxResponseBytes  = 4 << 20
)

var operationNamePattern = regexp.MustCompile(`^\s*(?:query|mutation)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message    string          `json:"message"`
	Path       []any           `json:"path,omitempty"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
}

// Response is the decoded GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Client is the HTTP client for the storefront admin API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	log        *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a storefront client from configuration.
func New(cfg config.StorefrontConfig, log *logger.Logger, opts ...Option) (*Client, error) {
	if cfg.GetStoreDomain() == "" || cfg.GetAPIVersion() == "" {
		return nil, apperr.Configuration("storefront domain and api version are required")
	}
	if cfg.GetAdminToken() == "" {
		return nil, apperr.Configuration("storefront admin token is required")
	}

	timeout := cfg.GetStorefrontTimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   Endpoint(cfg.GetStoreDomain(), cfg.GetAPIVersion()),
		token:      cfg.GetAdminToken(),
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint builds the admin GraphQL URL for a store.
func Endpoint(domain, version string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, version)
}

// Execute posts a GraphQL document and returns the decoded response.
// A non-empty errors array is returned as an upstream error; network,
// status and decoding failures are returned as transport errors. No retries.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	op := operationName(query)
	start := time.Now()

	resp, status, err := c.do(ctx, query, variables)

	elapsed := time.Since(start)
	metrics.StorefrontLatency.WithLabelValues(op).Observe(elapsed.Seconds())
	metrics.StorefrontCalls.WithLabelValues(op, resultLabel(err)).Inc()
	if c.log != nil {
		c.log.WithContext(ctx).StorefrontCall(op, status, float64(elapsed.Milliseconds()), err)
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, query string, variables map[string]any) (*Response, int, error) {
	payload, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, 0, apperr.Transport("encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, apperr.Transport("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(accessTokenHeader, c.token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, apperr.Transport("http request", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, httpResp.StatusCode, apperr.Transport("read response", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, httpResp.StatusCode, apperr.Transport(
			fmt.Sprintf("upstream status %d", httpResp.StatusCode),
			fmt.Errorf("%s", truncate(raw, 512)),
		)
	}

	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, httpResp.StatusCode, apperr.Transport("decode response", err)
	}

	if len(decoded.Errors) > 0 {
		return nil, httpResp.StatusCode, apperr.Upstream(decoded.Errors[0].Message, decoded.Errors)
	}

	return &decoded, httpResp.StatusCode, nil
}

func operationName(query string) string {
	if m := operationNamePattern.FindStringSubmatch(query); len(m) == 2 {
		return m[1]
	}
	return "anonymous"
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.GetKind(err).String()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
