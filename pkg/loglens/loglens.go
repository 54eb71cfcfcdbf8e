package loglens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// AnalyzeRequest is the POST /analyze body.
type AnalyzeRequest struct {
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	CustomerID  string `json:"customer_id"`
}

// Cause is one ranked probable cause.
type Cause struct {
	Rank        int    `json:"rank"`
	Cause       string `json:"cause"`
	Explanation string `json:"explanation"`
	Confidence  string `json:"confidence"`
}

// AnalyzeResult is the success body of POST /analyze.
type AnalyzeResult struct {
	Success           bool     `json:"success"`
	Causes            []Cause  `json:"causes"`
	SuggestedResponse string   `json:"suggested_response"`
	SentryLinks       []string `json:"sentry_links"`
	LogsSummary       string   `json:"logs_summary"`
	EventsFound       int      `json:"events_found"`
}

// Health is the GET /health body.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Suggestion string `json:"suggestion"`
}

func (e *APIError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("loglens: HTTP %d: %s (%s)", e.StatusCode, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("loglens: HTTP %d: %s", e.StatusCode, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client talks to a LogLens server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client for the given base URL. token is sent as X-Auth-Token
// on authenticated endpoints.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

// Analyze submits a report and returns the analysis.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	var result AnalyzeResult
	if err := c.do(ctx, http.MethodPost, "/analyze", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("loglens: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("loglens: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("loglens: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = "unexpected response"
		}
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
