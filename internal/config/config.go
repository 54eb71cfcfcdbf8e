package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all LogLens configuration.
type Config struct {
	ListenAddr string `env:"LOGLENS_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	LogLevel   string `env:"LOGLENS_LOG_LEVEL" env-default:"info"`
	LogFormat  string `env:"LOGLENS_LOG_FORMAT" env-default:"text"` // "text" or "json"

	// AppPassword gates the /analyze endpoint via the X-Auth-Token header.
	AppPassword string `env:"LOGLENS_APP_PASSWORD"`

	// DocsDir is the directory holding workflow.md and known_errors.md.
	DocsDir string `env:"LOGLENS_DOCS_DIR" env-default:"docs"`

	Sentry SentryConfig
	LLM    LLMConfig
	Slack  SlackConfig
}

// SentryConfig holds event-tracking settings.
type SentryConfig struct {
	AuthToken string `env:"SENTRY_AUTH_TOKEN"`
	Org       string `env:"SENTRY_ORG"`
	Project   string `env:"SENTRY_PROJECT"`
	Endpoint  string `env:"SENTRY_ENDPOINT" env-default:"https://sentry.io"`

	// WindowMinutes is the half-width of the search window around a
	// reported timestamp.
	WindowMinutes int `env:"LOGLENS_TIME_WINDOW_MINUTES" env-default:"5"`
	CacheCapacity int `env:"LOGLENS_CACHE_CAPACITY" env-default:"100"`
}

// LLMConfig holds text-generation provider settings.
type LLMConfig struct {
	Provider string `env:"LOGLENS_LLM_PROVIDER" env-default:"anthropic"`
	Model    string `env:"LOGLENS_LLM_MODEL"` // empty selects the provider default
	APIKey   string `env:"LOGLENS_LLM_API_KEY"`
}

// SlackConfig holds slash-command webhook settings.
type SlackConfig struct {
	SigningSecret string `env:"SLACK_SIGNING_SECRET"`
}

// Load reads configuration from environment variables and validates that
// all required secrets are present.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate reports every missing required variable at once so operators can
// fix the environment in a single pass.
func (c Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"SENTRY_AUTH_TOKEN", c.Sentry.AuthToken},
		{"SENTRY_ORG", c.Sentry.Org},
		{"SENTRY_PROJECT", c.Sentry.Project},
		{"LOGLENS_LLM_API_KEY", c.LLM.APIKey},
		{"SLACK_SIGNING_SECRET", c.Slack.SigningSecret},
		{"LOGLENS_APP_PASSWORD", c.AppPassword},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s",
			strings.Join(missing, ", "))
	}
	return nil
}
