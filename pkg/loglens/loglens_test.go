package loglens

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(Health{Status: "healthy", Version: "0.1.0"})
	}))
	defer srv.Close()

	h, err := New(srv.URL, "").Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "healthy" {
		t.Errorf("Status = %q", h.Status)
	}
}

func TestAnalyzeSendsTokenAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Auth-Token"); got != "s3cret" {
			t.Errorf("X-Auth-Token = %q", got)
		}
		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.CustomerID != "usr_1" {
			t.Errorf("CustomerID = %q", req.CustomerID)
		}
		json.NewEncoder(w).Encode(AnalyzeResult{
			Success:     true,
			Causes:      []Cause{{Rank: 1, Cause: "expired token", Confidence: "high"}},
			EventsFound: 2,
		})
	}))
	defer srv.Close()

	result, err := New(srv.URL, "s3cret").Analyze(context.Background(), AnalyzeRequest{
		Description: "checkout broken",
		Timestamp:   "2025-01-19T14:30:00Z",
		CustomerID:  "usr_1",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !result.Success || result.EventsFound != 2 || len(result.Causes) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestAnalyzeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"success":    false,
			"error":      "Authentication failed",
			"suggestion": "Please check your authentication token",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "wrong").Analyze(context.Background(), AnalyzeRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Authentication failed" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
