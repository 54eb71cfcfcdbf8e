// Package llm abstracts the text-generation providers behind a single
// Generate call. Providers register themselves at init time; the active one
// is selected by name from configuration.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Config holds provider-independent settings.
type Config struct {
	APIKey  string
	Model   string // empty selects the provider default
	BaseURL string // override for gateways and tests
}

// Provider generates a completion for a system instruction plus user content.
type Provider interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Constructor builds a Provider from configuration.
type Constructor func(cfg Config) Provider

var registry = map[string]Constructor{}

// Register adds a provider constructor under the given name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// New returns a Provider for the given name.
func New(name string, cfg Config) (Provider, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", name)
	}
	return ctor(cfg), nil
}

// Providers returns the names of all registered providers.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// APIError wraps a provider failure with enough detail to decide
// retryability. StatusCode 0 means a transport-level failure.
type APIError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm %s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth another attempt:
// transport errors, rate limits, and server-side failures.
func (e *APIError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// IsTransient reports whether err is a retryable provider failure.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Transient()
}
