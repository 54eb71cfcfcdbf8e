// Package server exposes the analysis pipeline over HTTP: a health probe,
// the authenticated /analyze endpoint, and the Slack slash-command webhook.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loglens/internal/analyzer"
	"loglens/internal/llm"
	"loglens/internal/model"
	"loglens/internal/sentry"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// Runner executes an analysis for a validated report.
type Runner interface {
	Run(ctx context.Context, report model.Report) (*analyzer.Result, error)
}

// Server routes HTTP traffic to the pipeline and the Slack gateway.
type Server struct {
	router       chi.Router
	runner       Runner
	slackHandler http.Handler
	appPassword  string
}

// New assembles the router. slackHandler may be nil when the Slack gateway
// is not configured; the route then responds 404.
func New(runner Runner, slackHandler http.Handler, appPassword string) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		runner:       runner,
		slackHandler: slackHandler,
		appPassword:  appPassword,
	}

	s.router.Use(requestID, logRequests, recoverer)
	s.router.Get("/health", s.handleHealth)
	s.router.Post("/analyze", s.handleAnalyze)
	if slackHandler != nil {
		s.router.Method(http.MethodPost, "/slack/commands", slackHandler)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

// analyzeRequest is the POST /analyze body.
type analyzeRequest struct {
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	CustomerID  string `json:"customer_id"`
}

// analyzeResponse mirrors the success shape of POST /analyze.
type analyzeResponse struct {
	Success           bool             `json:"success"`
	Causes            []analyzer.Cause `json:"causes"`
	SuggestedResponse string           `json:"suggested_response"`
	SentryLinks       []string         `json:"sentry_links"`
	LogsSummary       string           `json:"logs_summary"`
	EventsFound       int              `json:"events_found"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized,
			"Authentication failed", "Please check your authentication token")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity,
			"Invalid request body", "Please check your input and try again")
		return
	}
	report, ok := s.validate(w, req)
	if !ok {
		return
	}

	result, err := s.runner.Run(r.Context(), report)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	causes := result.Causes
	if causes == nil {
		causes = []analyzer.Cause{}
	}
	links := result.SentryLinks
	if links == nil {
		links = []string{}
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:           true,
		Causes:            causes,
		SuggestedResponse: result.SuggestedResponse,
		SentryLinks:       links,
		LogsSummary:       result.LogsSummary,
		EventsFound:       result.EventsFound,
	})
}

// validate checks the request fields and writes a 422 with a field-specific
// suggestion on failure.
func (s *Server) validate(w http.ResponseWriter, req analyzeRequest) (model.Report, bool) {
	report, err := model.NewReport(req.Description, req.Timestamp, req.CustomerID)
	if err == nil {
		return report, true
	}

	suggestion := "Please check your input and try again"
	switch {
	case errors.Is(err, model.ErrEmptyDescription):
		suggestion = "Description must not be empty"
	case errors.Is(err, model.ErrEmptyCustomerID):
		suggestion = "Customer ID must not be empty"
	case errors.Is(err, model.ErrBadTimestamp):
		suggestion = "Timestamp must be in ISO 8601 format (e.g., 2025-01-19T14:30:00Z)"
	}
	writeError(w, http.StatusUnprocessableEntity, "Invalid request: "+err.Error(), suggestion)
	return model.Report{}, false
}

func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	var authErr *sentry.AuthError
	var rateErr *sentry.RateLimitError
	var formatErr *analyzer.FormatError
	var apiErr *llm.APIError
	switch {
	case errors.As(err, &authErr):
		slog.Error("sentry authentication failed", "error", err)
		writeError(w, http.StatusInternalServerError,
			"Sentry authentication failed. Please check configuration.", "")
	case errors.As(err, &rateErr):
		slog.Warn("sentry rate limit exceeded", "error", err)
		writeError(w, http.StatusTooManyRequests,
			"Sentry rate limit exceeded.", "Please try again in a few minutes")
	case errors.As(err, &formatErr):
		slog.Error("model returned invalid response format", "error", err)
		writeError(w, http.StatusInternalServerError,
			"Analysis failed: Invalid response format from AI.", "Please try again or contact support")
	case errors.As(err, &apiErr):
		slog.Error("provider unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable,
			"Analysis failed: AI service unavailable.", "Please try again in a few moments")
	default:
		slog.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError,
			"An internal error occurred",
			"Please try again later or contact support if the issue persists")
	}
}

// authorized compares X-Auth-Token against the configured app password in
// constant time.
func (s *Server) authorized(r *http.Request) bool {
	if s.appPassword == "" {
		return false
	}
	token := r.Header.Get("X-Auth-Token")
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.appPassword)) == 1
}
