package sentry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"loglens/internal/retryx"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetryBase = 2 * time.Second
	maxAttempts      = 3
)

// Client fetches error events from the Sentry projects events API with
// bearer auth, bounded retries for transient failures, and a shared
// correlation cache consulted before any network call.
type Client struct {
	endpoint   string // base URL, e.g. https://sentry.io
	org        string
	project    string
	token      string
	httpClient *http.Client
	cache      *Cache
	retryBase  time.Duration
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetryBase sets the initial backoff delay between retries.
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) { c.retryBase = d }
}

// New creates a Client for the given org/project. The cache is supplied by
// the caller so both entry points share one bounded store; nil means a
// private cache with the default capacity.
func New(endpoint, org, project, token string, cache *Cache, opts ...Option) *Client {
	if cache == nil {
		cache = NewCache(DefaultCacheCapacity)
	}
	c := &Client{
		endpoint:   endpoint,
		org:        org,
		project:    project,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      cache,
		retryBase:  defaultRetryBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the events whose user id matches customerID inside the
// inclusive window [occurredAt-window, occurredAt+window]. Zero matching
// events is a valid result, not an error. 5xx and transport failures are
// retried with exponential backoff; auth and rate-limit failures are not.
func (c *Client) Fetch(ctx context.Context, customerID string, occurredAt time.Time, window time.Duration) ([]RawEvent, error) {
	start := occurredAt.Add(-window)
	end := occurredAt.Add(window)
	path := fmt.Sprintf("/api/0/projects/%s/%s/events/", c.org, c.project)

	key := cacheKey(c.endpoint+path, customerID, start, end)
	if events, ok := c.cache.Get(key); ok {
		slog.Debug("sentry cache hit", "customer_id", customerID, "events", len(events))
		return events, nil
	}

	slog.Info("fetching sentry events",
		"customer_id", customerID, "start", start, "end", end)

	var events []RawEvent
	err := retryx.Do(ctx, maxAttempts, c.retryBase, func(ctx context.Context) error {
		evs, err := c.query(ctx, path, customerID, start, end)
		if err != nil {
			if isTransient(err) {
				return retryx.Transient(err)
			}
			return err
		}
		events = evs
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Put(key, events)
	slog.Info("found sentry events", "customer_id", customerID, "events", len(events))
	return events, nil
}

// query performs one GET against the events API and maps the response status
// into the package error taxonomy.
func (c *Client) query(ctx context.Context, path, customerID string, start, end time.Time) ([]RawEvent, error) {
	q := url.Values{}
	q.Set("query", "user.id:"+customerID)
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))
	q.Set("full", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("sentry: read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var events []RawEvent
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, fmt.Errorf("sentry: decode response: %w", err)
		}
		return events, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: resp.Header.Get("Retry-After")}
	case resp.StatusCode == http.StatusNotFound:
		// Unknown project or no matching data: zero events, not a failure.
		return []RawEvent{}, nil
	default:
		bodyStr := string(body)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}
}

// isTransient reports whether err is worth another attempt: server errors
// and transport-level failures (timeouts, refused connections). Auth and
// rate-limit errors are final.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	var authErr *AuthError
	var rateErr *RateLimitError
	if errors.As(err, &authErr) || errors.As(err, &rateErr) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// EventLink returns the deep link to an event in the Sentry UI.
func (c *Client) EventLink(eventID string) string {
	return fmt.Sprintf("%s/organizations/%s/issues/?project=%s&query=%s",
		c.endpoint, c.org, c.project, eventID)
}
