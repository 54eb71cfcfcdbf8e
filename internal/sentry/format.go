package sentry

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxFrames      = 5
	maxBreadcrumbs = 5
	maxCrumbData   = 3
)

// Evidence is the bounded textual summary of a batch of events, plus one
// deep link per event that carries an id. It is what the analyzer feeds to
// the model.
type Evidence struct {
	Text  string
	Links []string
}

// contextTagKeys are the tags worth surfacing to the model.
var contextTagKeys = map[string]bool{
	"environment": true,
	"release":     true,
	"browser":     true,
	"os":          true,
}

// FormatEvents renders events into deterministic, order-preserving text.
// link builds the UI deep link for an event id; events without an id get no
// link. Missing optional fields degrade silently — an event with no
// identifying data at all still produces its header and timestamp line.
func FormatEvents(events []RawEvent, link func(eventID string) string) Evidence {
	if len(events) == 0 {
		return Evidence{Text: "No Sentry events found."}
	}

	var blocks []string
	var links []string
	for i, event := range events {
		lines := []string{fmt.Sprintf("Event %d:", i+1)}

		timestamp := event.DateCreated
		if timestamp == "" {
			timestamp = event.Datetime
		}
		if timestamp == "" {
			timestamp = "Unknown"
		}
		lines = append(lines, "- Time: "+timestamp)

		errType, message := resolveTitle(event)
		lines = append(lines, "- Error: "+errType)
		if message != "" {
			lines = append(lines, fmt.Sprintf("- Message: %q", message))
		}

		if frames := extractFrames(event); len(frames) > 0 {
			lines = append(lines, "- Stack Trace:")
			shown := frames
			if len(shown) > maxFrames {
				shown = shown[:maxFrames]
			}
			for _, f := range shown {
				lines = append(lines, "  "+f)
			}
			if extra := len(frames) - maxFrames; extra > 0 {
				lines = append(lines, fmt.Sprintf("  ... (%d more frames)", extra))
			}
		}

		if crumbs := extractBreadcrumbs(event); len(crumbs) > 0 {
			lines = append(lines, "- Breadcrumbs (user actions leading to error):")
			if len(crumbs) > maxBreadcrumbs {
				crumbs = crumbs[len(crumbs)-maxBreadcrumbs:]
			}
			for _, crumb := range crumbs {
				lines = append(lines, "  "+crumb)
			}
		}

		if tags := contextTags(event); tags != "" {
			lines = append(lines, "- Context: "+tags)
		}

		if event.ID != "" && link != nil {
			url := link(event.ID)
			lines = append(lines, "- Link: "+url)
			links = append(links, url)
		}

		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return Evidence{Text: strings.Join(blocks, "\n\n"), Links: links}
}

// resolveTitle picks the error type and message across the several source
// fields Sentry may populate, preferring the structured metadata.
func resolveTitle(event RawEvent) (errType, message string) {
	errType = event.Type
	if errType == "" {
		errType = "Unknown"
	}
	message = event.Message
	if event.Metadata.Type != "" {
		errType = event.Metadata.Type
	}
	if event.Metadata.Value != "" {
		message = event.Metadata.Value
	}
	if message == "" || message == event.Title {
		message = event.Title
	}
	return errType, message
}

// extractFrames flattens all exception stacktraces into formatted lines,
// most recent call first. The API delivers frames oldest first.
func extractFrames(event RawEvent) []string {
	var frames []string
	for _, entry := range event.Entries {
		if entry.Type != "exception" {
			continue
		}
		for _, value := range entry.Data.Values {
			if value.Stacktrace == nil {
				continue
			}
			for _, f := range value.Stacktrace.Frames {
				frames = append(frames, formatFrame(f))
			}
		}
	}
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames
}

func formatFrame(f Frame) string {
	filename := f.Filename
	if filename == "" {
		filename = "unknown"
	}
	function := f.Function
	if function == "" {
		function = "unknown"
	}
	lineNo := "?"
	if f.LineNo > 0 {
		lineNo = fmt.Sprintf("%d", f.LineNo)
	}

	// The frame's context window is [before..., current, after...]; the
	// middle element is the executing source line.
	source := ""
	if n := len(f.Context); n > 0 {
		source = strings.TrimSpace(f.Context[n/2].Source)
	}

	if source != "" {
		return fmt.Sprintf("%s:%s in %s() -> %s", filename, lineNo, function, source)
	}
	return fmt.Sprintf("%s:%s in %s()", filename, lineNo, function)
}

// extractBreadcrumbs formats breadcrumb entries in their original order.
func extractBreadcrumbs(event RawEvent) []string {
	var crumbs []string
	for _, entry := range event.Entries {
		if entry.Type != "breadcrumbs" {
			continue
		}
		for _, crumb := range entry.Data.Values {
			level := crumb.Level
			if level == "" {
				level = "info"
			}
			switch {
			case crumb.Message != "":
				crumbs = append(crumbs, fmt.Sprintf("[%s] %s: %s", level, crumb.Category, crumb.Message))
			case len(crumb.Data) > 0:
				crumbs = append(crumbs, fmt.Sprintf("[%s] %s: %s", level, crumb.Category, formatCrumbData(crumb.Data)))
			default:
				crumbs = append(crumbs, fmt.Sprintf("[%s] %s", level, crumb.Category))
			}
		}
	}
	return crumbs
}

// formatCrumbData renders up to maxCrumbData key=value pairs in sorted key
// order so output stays deterministic.
func formatCrumbData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxCrumbData {
		keys = keys[:maxCrumbData]
	}
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return strings.Join(pairs, ", ")
}

// contextTags renders the small whitelisted tag set, preserving tag order.
func contextTags(event RawEvent) string {
	var pairs []string
	for _, tag := range event.Tags {
		if contextTagKeys[tag.Key] {
			pairs = append(pairs, tag.Key+"="+tag.Value)
		}
	}
	return strings.Join(pairs, ", ")
}
