package slack

import (
	"strings"
	"testing"

	"loglens/internal/analyzer"
)

func sampleResult() *analyzer.Result {
	return &analyzer.Result{
		Causes: []analyzer.Cause{
			{Rank: 1, Cause: "Expired session token", Explanation: "Auth errors at checkout", Confidence: "high"},
			{Rank: 2, Cause: "Payment gateway timeout", Explanation: "Upstream 504s", Confidence: "medium"},
			{Rank: 3, Cause: "Stale cart state", Explanation: "Old client build", Confidence: "low"},
		},
		SuggestedResponse: "Please log out and back in, then retry.",
		LogsSummary:       "Three auth failures in the window.",
		SentryLinks:       []string{"https://sentry.io/organizations/acme/issues/?project=web&query=ev1"},
		EventsFound:       3,
	}
}

func blockTexts(msg Message) string {
	var b strings.Builder
	for _, blk := range msg.Blocks {
		if blk.Text != nil {
			b.WriteString(blk.Text.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func TestRenderResult(t *testing.T) {
	msg := RenderResult(sampleResult())

	if msg.ResponseType != "in_channel" {
		t.Errorf("ResponseType = %q, want in_channel", msg.ResponseType)
	}
	if msg.Blocks[0].Type != "header" {
		t.Errorf("first block type = %q, want header", msg.Blocks[0].Type)
	}

	all := blockTexts(msg)
	for _, want := range []string{
		"LogLens Analysis",
		"*Probable Causes:*",
		"*[HIGH]* Expired session token",
		"*[MEDIUM]* Payment gateway timeout",
		"*[LOW]* Stale cart state",
		"*Suggested Response:*\n> Please log out and back in, then retry.",
		"Found 3 events",
		"<https://sentry.io/organizations/acme/issues/?project=web&query=ev1|View in Sentry>",
	} {
		if !strings.Contains(all, want) {
			t.Errorf("rendered message missing %q", want)
		}
	}
}

func TestRenderResultSingularEvent(t *testing.T) {
	res := sampleResult()
	res.EventsFound = 1
	all := blockTexts(RenderResult(res))

	if !strings.Contains(all, "Found 1 event") || strings.Contains(all, "Found 1 events") {
		t.Errorf("singular form wrong: %q", all)
	}
}

func TestRenderResultNoEvents(t *testing.T) {
	res := sampleResult()
	res.EventsFound = 0
	res.SentryLinks = nil
	all := blockTexts(RenderResult(res))

	if !strings.Contains(all, "Found 0 events") {
		t.Errorf("missing zero-event line: %q", all)
	}
	if strings.Contains(all, "View in Sentry") {
		t.Error("link rendered with no links available")
	}
}

func TestRenderResultNoCauses(t *testing.T) {
	res := sampleResult()
	res.Causes = nil
	msg := RenderResult(res)

	if strings.Contains(blockTexts(msg), "Probable Causes") {
		t.Error("causes section rendered with no causes")
	}
}

func TestRenderError(t *testing.T) {
	msg := RenderError("Sentry rate limit exceeded", "Please try again in a few minutes")

	if msg.ResponseType != "ephemeral" {
		t.Errorf("ResponseType = %q, want ephemeral", msg.ResponseType)
	}
	if !strings.Contains(msg.Text, "*Error:* Sentry rate limit exceeded") {
		t.Errorf("Text = %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "*Suggestion:* Please try again in a few minutes") {
		t.Errorf("Text = %q", msg.Text)
	}
}

func TestRenderErrorNoSuggestion(t *testing.T) {
	msg := RenderError("Analysis failed", "")
	if strings.Contains(msg.Text, "Suggestion") {
		t.Errorf("unexpected suggestion line: %q", msg.Text)
	}
}
