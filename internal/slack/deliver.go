package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const deliverTimeout = 10 * time.Second

// Deliverer POSTs rendered messages to a slash command's response_url.
type Deliverer struct {
	client *http.Client
}

// NewDeliverer creates a Deliverer with a default HTTP client.
func NewDeliverer() *Deliverer {
	return &Deliverer{client: &http.Client{Timeout: deliverTimeout}}
}

// Deliver sends msg to responseURL. A failed delivery is retried once; a
// second failure is returned to the caller, which can only log it since the
// user's command has long since been acknowledged.
func (d *Deliverer) Deliver(ctx context.Context, responseURL string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			slog.Warn("slack delivery failed, retrying once", "error", lastErr)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = d.post(ctx, responseURL, body)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (d *Deliverer) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack: response_url returned HTTP %d", resp.StatusCode)
	}
	return nil
}
