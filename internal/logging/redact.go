package logging

import (
	"context"
	"log/slog"
	"regexp"
)

// Patterns covering the credential shapes that pass through this service:
// bearer headers, key=value style secrets, and the vendor token prefixes.
var sensitivePatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)Bearer\s+[^\s,"'}]+`), "Bearer ***REDACTED***"},
	{regexp.MustCompile(`(?i)(token|password|secret|key|authorization)["']?\s*[:=]\s*["']?[^\s,"'}]+`), "$1=***REDACTED***"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9-]{20,}`), "sk-***REDACTED***"},
	{regexp.MustCompile(`xoxb-[a-zA-Z0-9-]+`), "xoxb-***REDACTED***"},
	{regexp.MustCompile(`sntrys_[a-zA-Z0-9]+`), "sntrys_***REDACTED***"},
}

func redact(s string) string {
	for _, p := range sensitivePatterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactingHandler wraps another slog.Handler and scrubs credential-shaped
// substrings from the record message and all string attribute values.
type RedactingHandler struct {
	inner slog.Handler
}

// NewRedactingHandler wraps inner in a RedactingHandler.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = redactAttr(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(cleaned)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, redact(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		cleaned := make([]any, 0, len(group))
		for _, g := range group {
			cleaned = append(cleaned, redactAttr(g))
		}
		return slog.Group(a.Key, cleaned...)
	default:
		return a
	}
}
