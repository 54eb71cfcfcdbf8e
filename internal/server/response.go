package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorResponse is the uniform failure shape for every endpoint.
type errorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, suggestion string) {
	writeJSON(w, status, errorResponse{Error: message, Suggestion: suggestion})
}
