// Package analyzer runs the model analysis: it builds the prompt, invokes a
// text-generation provider with bounded retries, and validates and repairs
// the structured response.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loglens/internal/knowledge"
	"loglens/internal/llm"
	"loglens/internal/model"
	"loglens/internal/retryx"
	"loglens/internal/sentry"
)

const (
	maxCauses        = 3
	defaultAttempts  = 3
	defaultRetryBase = 2 * time.Second
)

var validConfidences = map[string]bool{"high": true, "medium": true, "low": true}

// Analyzer turns an incident report plus evidence into a validated Result.
type Analyzer struct {
	provider  llm.Provider
	attempts  int
	retryBase time.Duration
}

// Option configures Analyzer behavior.
type Option func(*Analyzer)

// WithRetryBase sets the initial backoff delay between provider retries.
func WithRetryBase(d time.Duration) Option {
	return func(a *Analyzer) { a.retryBase = d }
}

// New creates an Analyzer backed by the given provider.
func New(provider llm.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{
		provider:  provider,
		attempts:  defaultAttempts,
		retryBase: defaultRetryBase,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze invokes the model and returns the validated, repaired result.
// Only transient provider failures are retried; a malformed response is a
// *FormatError and is never re-sent to the model. eventsFound is the
// caller's event count and flows through untouched.
func (a *Analyzer) Analyze(ctx context.Context, report model.Report, evidence sentry.Evidence, docs knowledge.Docs, eventsFound int) (*Result, error) {
	prompt := userPrompt(report, evidence.Text, docs)

	slog.Info("running analysis", "customer_id", report.CustomerID, "events_found", eventsFound)

	var raw string
	err := retryx.Do(ctx, a.attempts, a.retryBase, func(ctx context.Context) error {
		out, err := a.provider.Generate(ctx, systemPrompt, prompt)
		if err != nil {
			if llm.IsTransient(err) {
				slog.Warn("transient provider failure, retrying", "error", err)
				return retryx.Transient(err)
			}
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}

	result, err := parseResponse(raw)
	if err != nil {
		slog.Error("model response failed validation", "error", err)
		return nil, err
	}

	result.Causes = repairCauses(result.Causes)
	result.SentryLinks = evidence.Links
	result.EventsFound = eventsFound
	return result, nil
}

// parseResponse decodes the model output into a Result, enforcing the
// required schema. Code fences around the JSON are tolerated even though the
// prompt forbids them.
func parseResponse(content string) (*Result, error) {
	content = stripFences(content)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	var missing []string
	for _, key := range []string{"causes", "suggested_response", "logs_summary"} {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{Reason: "missing required fields: " + strings.Join(missing, ", ")}
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("unexpected field types: %v", err)}
	}

	// Presence of per-cause keys is checked on the raw JSON so that an
	// explicit empty value is distinguishable from an absent one.
	var rawCauses []map[string]json.RawMessage
	if err := json.Unmarshal(fields["causes"], &rawCauses); err != nil {
		return nil, &FormatError{Reason: "'causes' must be an array of objects"}
	}
	for i, rc := range rawCauses {
		for _, key := range []string{"rank", "cause", "explanation", "confidence"} {
			if _, ok := rc[key]; !ok {
				return nil, &FormatError{Reason: fmt.Sprintf("cause %d missing field %q", i, key)}
			}
		}
	}
	for i, c := range result.Causes {
		if !validConfidences[strings.ToLower(c.Confidence)] {
			// Kept, not rejected: downstream renderers display the raw value.
			slog.Warn("unrecognized confidence value in model response",
				"cause", i, "confidence", c.Confidence)
		}
	}

	if strings.TrimSpace(result.SuggestedResponse) == "" {
		return nil, &FormatError{Reason: "'suggested_response' cannot be empty"}
	}
	if strings.TrimSpace(result.LogsSummary) == "" {
		return nil, &FormatError{Reason: "'logs_summary' cannot be empty"}
	}
	return &result, nil
}

// repairCauses truncates to the first three causes. Fewer than three are
// kept as-is: fabricating filler causes would be worse than an honest short
// list.
func repairCauses(causes []Cause) []Cause {
	if len(causes) > maxCauses {
		slog.Warn("model returned extra causes, truncating", "got", len(causes))
		return causes[:maxCauses]
	}
	if len(causes) < maxCauses {
		slog.Warn("model returned fewer than three causes", "got", len(causes))
	}
	return causes
}

// stripFences removes a Markdown code fence wrapper if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
