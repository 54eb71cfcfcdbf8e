package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"loglens/internal/analyzer"
	"loglens/internal/llm"
	"loglens/internal/model"
	"loglens/internal/sentry"
)

// runBudget bounds the deferred pipeline run for a single command.
const runBudget = 30 * time.Second

// Runner executes an analysis for a parsed report.
type Runner interface {
	Run(ctx context.Context, report model.Report) (*analyzer.Result, error)
}

// MessageDeliverer posts a rendered message to a response_url.
type MessageDeliverer interface {
	Deliver(ctx context.Context, responseURL string, msg Message) error
}

// Handler serves POST /slack/commands. Verification and parsing happen
// inline; the pipeline runs after the HTTP response so Slack's 3-second ack
// deadline is never at risk.
type Handler struct {
	runner        Runner
	deliverer     MessageDeliverer
	signingSecret string
	now           func() time.Time

	// wg tracks deferred runs so tests and shutdown can wait for them.
	wg sync.WaitGroup
}

// NewHandler creates a slash-command handler.
func NewHandler(runner Runner, deliverer MessageDeliverer, signingSecret string) *Handler {
	return &Handler{
		runner:        runner,
		deliverer:     deliverer,
		signingSecret: signingSecret,
		now:           time.Now,
	}
}

// Wait blocks until all deferred command runs have finished.
func (h *Handler) Wait() { h.wg.Wait() }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if err := VerifySignature(
		body,
		r.Header.Get("X-Slack-Request-Timestamp"),
		r.Header.Get("X-Slack-Signature"),
		h.signingSecret,
		h.now(),
	); err != nil {
		slog.Warn("rejected slash command", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	form, err := parseForm(body)
	if err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	text := form.Get("text")
	responseURL := form.Get("response_url")

	cmd, err := ParseCommand(text)
	if err != nil {
		var usage *UsageError
		if errors.As(err, &usage) {
			writeJSON(w, RenderError(usage.Message, usageText))
			return
		}
		writeJSON(w, RenderError("Invalid command", usageText))
		return
	}

	report, err := model.NewReport(cmd.Description, cmd.Timestamp, cmd.CustomerID)
	if err != nil {
		writeJSON(w, RenderError(
			"Invalid timestamp: "+cmd.Timestamp,
			"Use ISO 8601 format, e.g., 2025-01-19T14:30:00Z",
		))
		return
	}

	// Ack first. The analysis result arrives later via response_url.
	writeJSON(w, Message{
		ResponseType: "ephemeral",
		Text:         "\U0001f50d Analyzing... results will be posted here shortly.",
	})

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		// The inbound request context dies when the ack is written, so the
		// deferred run gets its own.
		ctx, cancel := context.WithTimeout(context.Background(), runBudget)
		defer cancel()
		h.runDeferred(ctx, report, responseURL)
	}()
}

// runDeferred executes the pipeline and posts the outcome to responseURL.
func (h *Handler) runDeferred(ctx context.Context, report model.Report, responseURL string) {
	msg := h.analyze(ctx, report)
	if err := h.deliverer.Deliver(ctx, responseURL, msg); err != nil {
		slog.Error("failed to deliver slash command result",
			"customer_id", report.CustomerID, "error", err)
	}
}

func (h *Handler) analyze(ctx context.Context, report model.Report) Message {
	result, err := h.runner.Run(ctx, report)
	if err == nil {
		return RenderResult(result)
	}

	var authErr *sentry.AuthError
	var rateErr *sentry.RateLimitError
	var formatErr *analyzer.FormatError
	var apiErr *llm.APIError
	switch {
	case errors.As(err, &authErr):
		return RenderError("Sentry authentication failed",
			"Please verify Sentry credentials are configured correctly")
	case errors.As(err, &rateErr):
		return RenderError("Sentry rate limit exceeded",
			"Please try again in a few minutes")
	case errors.As(err, &formatErr):
		return RenderError("Analysis failed: Invalid response from AI",
			"Please try again or contact support")
	case errors.As(err, &apiErr):
		return RenderError("Analysis failed: AI service error",
			"Please try again in a few moments")
	default:
		slog.Error("slash command analysis failed", "customer_id", report.CustomerID, "error", err)
		return RenderError("Analysis failed: Unexpected error",
			"Please try again or contact support")
	}
}

// readBody drains the request body. Verification needs the raw bytes, so
// the form is parsed from this copy rather than via Request.ParseForm.
func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 1<<20))
}

func parseForm(body []byte) (url.Values, error) {
	return url.ParseQuery(string(body))
}

func writeJSON(w http.ResponseWriter, msg Message) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		slog.Error("failed to write slack response", "error", err)
	}
}
