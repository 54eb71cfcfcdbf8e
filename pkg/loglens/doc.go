// Package loglens is a small client for the LogLens HTTP API. It covers the
// health probe and the authenticated /analyze endpoint.
//
// Basic usage:
//
//	client := loglens.New("http://localhost:8080", token)
//	result, err := client.Analyze(ctx, loglens.AnalyzeRequest{
//		Description: "User can't checkout",
//		Timestamp:   "2025-01-19T14:30:00Z",
//		CustomerID:  "usr_abc123",
//	})
package loglens
