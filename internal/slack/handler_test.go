package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"loglens/internal/analyzer"
	"loglens/internal/model"
	"loglens/internal/sentry"
)

type blockingRunner struct {
	release chan struct{}
	result  *analyzer.Result
	err     error
}

func (r *blockingRunner) Run(ctx context.Context, report model.Report) (*analyzer.Result, error) {
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.result, r.err
}

type captureDeliverer struct {
	mu   sync.Mutex
	url  string
	msgs []Message
}

func (d *captureDeliverer) Deliver(ctx context.Context, responseURL string, msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = responseURL
	d.msgs = append(d.msgs, msg)
	return nil
}

func signedRequest(t *testing.T, now time.Time, text string) *http.Request {
	t.Helper()
	form := url.Values{}
	form.Set("text", text)
	form.Set("response_url", "https://hooks.slack.com/commands/T0/1/xyz")
	body := form.Encode()

	ts := strconv.FormatInt(now.Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", sign(t, []byte(body), ts, testSecret))
	return req
}

func newTestHandler(runner Runner, d MessageDeliverer, now time.Time) *Handler {
	h := NewHandler(runner, d, testSecret)
	h.now = func() time.Time { return now }
	return h
}

func TestHandlerAcksBeforeResultIsReady(t *testing.T) {
	now := time.Unix(1737297000, 0)
	runner := &blockingRunner{release: make(chan struct{}), result: sampleResult()}
	deliverer := &captureDeliverer{}
	h := newTestHandler(runner, deliverer, now)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, now, "checkout broken | 2025-01-19T14:30:00Z | usr_1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var ack Message
	if err := json.Unmarshal(rec.Body.Bytes(), &ack); err != nil {
		t.Fatalf("ack not JSON: %v", err)
	}
	if ack.ResponseType != "ephemeral" || !strings.Contains(ack.Text, "Analyzing") {
		t.Errorf("ack = %+v", ack)
	}

	// Nothing delivered yet: the pipeline is still blocked.
	deliverer.mu.Lock()
	delivered := len(deliverer.msgs)
	deliverer.mu.Unlock()
	if delivered != 0 {
		t.Fatalf("delivered %d messages before pipeline finished", delivered)
	}

	close(runner.release)
	h.Wait()

	deliverer.mu.Lock()
	defer deliverer.mu.Unlock()
	if len(deliverer.msgs) != 1 {
		t.Fatalf("delivered %d messages, want 1", len(deliverer.msgs))
	}
	if deliverer.url != "https://hooks.slack.com/commands/T0/1/xyz" {
		t.Errorf("delivered to %q", deliverer.url)
	}
	got := deliverer.msgs[0]
	if got.ResponseType != "in_channel" {
		t.Errorf("ResponseType = %q, want in_channel", got.ResponseType)
	}
	all := blockTexts(got)
	for _, want := range []string{"*[HIGH]*", "*[MEDIUM]*", "*[LOW]*"} {
		if !strings.Contains(all, want) {
			t.Errorf("delivered message missing %q", want)
		}
	}
}

func TestHandlerRejectsBadSignature(t *testing.T) {
	now := time.Unix(1737297000, 0)
	h := newTestHandler(&blockingRunner{}, &captureDeliverer{}, now)

	req := signedRequest(t, now, "a | b | c")
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerRejectsStaleRequest(t *testing.T) {
	now := time.Unix(1737297000, 0)
	h := newTestHandler(&blockingRunner{}, &captureDeliverer{}, now.Add(301*time.Second))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, now, "a | b | c"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerUsageErrorIsImmediate(t *testing.T) {
	now := time.Unix(1737297000, 0)
	deliverer := &captureDeliverer{}
	h := newTestHandler(&blockingRunner{}, deliverer, now)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, now, "only-one-field"))

	var msg Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if msg.ResponseType != "ephemeral" || !strings.Contains(msg.Text, "Invalid command format") {
		t.Errorf("msg = %+v", msg)
	}
	h.Wait()
	if len(deliverer.msgs) != 0 {
		t.Error("no deferred run expected for a usage error")
	}
}

func TestHandlerInvalidTimestampIsImmediate(t *testing.T) {
	now := time.Unix(1737297000, 0)
	h := newTestHandler(&blockingRunner{}, &captureDeliverer{}, now)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, now, "desc | yesterday afternoon | usr_1"))

	var msg Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if !strings.Contains(msg.Text, "Invalid timestamp") || !strings.Contains(msg.Text, "ISO 8601") {
		t.Errorf("msg = %+v", msg)
	}
}

func TestHandlerDeliversErrorMessages(t *testing.T) {
	now := time.Unix(1737297000, 0)
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", &sentry.AuthError{StatusCode: 401}, "Sentry authentication failed"},
		{"rate limit", &sentry.RateLimitError{RetryAfter: "30"}, "Sentry rate limit exceeded"},
		{"bad model output", &analyzer.FormatError{Reason: "missing fields"}, "Invalid response from AI"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deliverer := &captureDeliverer{}
			h := newTestHandler(&blockingRunner{err: tc.err}, deliverer, now)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, signedRequest(t, now, "desc | 2025-01-19T14:30:00Z | usr_1"))
			h.Wait()

			deliverer.mu.Lock()
			defer deliverer.mu.Unlock()
			if len(deliverer.msgs) != 1 {
				t.Fatalf("delivered %d messages, want 1", len(deliverer.msgs))
			}
			got := deliverer.msgs[0]
			if got.ResponseType != "ephemeral" || !strings.Contains(got.Text, tc.want) {
				t.Errorf("msg = %+v, want text containing %q", got, tc.want)
			}
		})
	}
}
