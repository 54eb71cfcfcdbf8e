// Package pipeline wires evidence collection and analysis into a single run:
// fetch Sentry events for a report, render them, and hand everything to the
// analyzer.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loglens/internal/analyzer"
	"loglens/internal/knowledge"
	"loglens/internal/model"
	"loglens/internal/sentry"
)

// Fetcher retrieves raw Sentry events around a report's timestamp.
type Fetcher interface {
	Fetch(ctx context.Context, customerID string, occurredAt time.Time, window time.Duration) ([]sentry.RawEvent, error)
	EventLink(eventID string) string
}

// Analyzer produces the final result from a report and its evidence.
type Analyzer interface {
	Analyze(ctx context.Context, report model.Report, evidence sentry.Evidence, docs knowledge.Docs, eventsFound int) (*analyzer.Result, error)
}

// Runner executes the report-to-result flow.
type Runner struct {
	fetcher  Fetcher
	analyzer Analyzer
	docsDir  string
	window   time.Duration
}

// New creates a Runner. window is the half-width of the event search window
// around the report timestamp.
func New(fetcher Fetcher, a Analyzer, docsDir string, window time.Duration) *Runner {
	return &Runner{fetcher: fetcher, analyzer: a, docsDir: docsDir, window: window}
}

// Run fetches events, formats them, and analyzes the report.
//
// Credential and rate-limit failures from Sentry abort the run: retrying or
// degrading would hide a misconfiguration or make the quota problem worse.
// Any other fetch failure degrades to an analysis with zero events so the
// model can still reason from the report and documentation alone.
func (r *Runner) Run(ctx context.Context, report model.Report) (*analyzer.Result, error) {
	events, err := r.fetcher.Fetch(ctx, report.CustomerID, report.OccurredAt, r.window)
	if err != nil {
		var authErr *sentry.AuthError
		var rateErr *sentry.RateLimitError
		if errors.As(err, &authErr) || errors.As(err, &rateErr) {
			return nil, err
		}
		slog.Warn("sentry fetch failed, continuing without events",
			"customer_id", report.CustomerID, "error", err)
		events = nil
	}

	evidence := sentry.FormatEvents(events, r.fetcher.EventLink)
	docs := knowledge.Load(r.docsDir)

	return r.analyzer.Analyze(ctx, report, evidence, docs, len(events))
}
