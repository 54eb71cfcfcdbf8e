package sentry

import "encoding/json"

// RawEvent is one event record as returned by the Sentry events API.
// Only the fields LogLens actually consumes are modeled; everything else in
// the upstream payload is ignored. All fields are optional — the formatter
// must cope with any of them being zero.
type RawEvent struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	DateCreated string   `json:"dateCreated"`
	Datetime    string   `json:"datetime"`
	Metadata    Metadata `json:"metadata"`
	Entries     []Entry  `json:"entries"`
	Tags        []Tag    `json:"tags"`
}

// Metadata carries the exception type/value Sentry extracts for an event.
type Metadata struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Tag is a key/value context tag.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Entry is one element of an event's entries list. The shape of its values
// depends on Type ("exception" or "breadcrumbs").
type Entry struct {
	Type string    `json:"type"`
	Data EntryData `json:"data"`
}

// EntryData wraps the values list shared by exception and breadcrumb entries.
type EntryData struct {
	Values []EntryValue `json:"values"`
}

// EntryValue is a permissive union of the exception-value and breadcrumb
// shapes. For an exception entry, Stacktrace is set; for a breadcrumbs entry,
// the remaining fields apply.
type EntryValue struct {
	Stacktrace *Stacktrace `json:"stacktrace"`

	Timestamp string         `json:"timestamp"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Data      map[string]any `json:"data"`
}

// Stacktrace holds stack frames ordered oldest call first, matching the
// upstream API.
type Stacktrace struct {
	Frames []Frame `json:"frames"`
}

// Frame is a single stack frame.
type Frame struct {
	Filename string        `json:"filename"`
	Function string        `json:"function"`
	LineNo   int           `json:"lineNo"`
	Context  []ContextLine `json:"context"`
}

// ContextLine is one [lineNo, source] pair from a frame's source context.
type ContextLine struct {
	LineNo int
	Source string
}

// UnmarshalJSON decodes the two-element array form used by the API. Either
// element failing to decode leaves the zero value rather than erroring.
func (c *ContextLine) UnmarshalJSON(b []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	if len(arr) > 0 {
		json.Unmarshal(arr[0], &c.LineNo)
	}
	if len(arr) > 1 {
		json.Unmarshal(arr[1], &c.Source)
	}
	return nil
}
