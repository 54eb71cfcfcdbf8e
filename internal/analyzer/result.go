package analyzer

import "fmt"

// Cause is one probable root cause, ranked by likelihood.
type Cause struct {
	Rank        int    `json:"rank"`
	Cause       string `json:"cause"`
	Explanation string `json:"explanation"`
	Confidence  string `json:"confidence"` // high, medium, or low
}

// Result is the validated outcome of one analysis run.
type Result struct {
	Causes            []Cause  `json:"causes"`
	SuggestedResponse string   `json:"suggested_response"`
	LogsSummary       string   `json:"logs_summary"`
	SentryLinks       []string `json:"sentry_links"`
	EventsFound       int      `json:"events_found"`
}

// FormatError means the model's output could not be parsed or validated into
// the expected schema. It is an internal fault and is never retried against
// the model.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("analyzer: invalid model response: %s", e.Reason)
}
