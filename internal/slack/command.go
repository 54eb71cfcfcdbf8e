package slack

import "strings"

// usageText is shown whenever a command cannot be parsed.
const usageText = "Use format: /loglens [description] | [timestamp] | [customer_id]"

// Command is a parsed /loglens invocation.
type Command struct {
	Description string
	Timestamp   string
	CustomerID  string
}

// UsageError reports a malformed command with a user-facing message.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// ParseCommand splits command text on pipes into exactly three non-empty
// fields. Fields containing a literal pipe cannot be expressed; there is no
// escaping syntax.
func ParseCommand(text string) (Command, error) {
	parts := strings.Split(text, "|")
	if len(parts) != 3 {
		return Command{}, &UsageError{
			Message: "Invalid command format. Use: /loglens [description] | [timestamp] | [customer_id]",
		}
	}

	cmd := Command{
		Description: strings.TrimSpace(parts[0]),
		Timestamp:   strings.TrimSpace(parts[1]),
		CustomerID:  strings.TrimSpace(parts[2]),
	}
	switch {
	case cmd.Description == "":
		return Command{}, &UsageError{Message: "Description cannot be empty"}
	case cmd.Timestamp == "":
		return Command{}, &UsageError{Message: "Timestamp cannot be empty"}
	case cmd.CustomerID == "":
		return Command{}, &UsageError{Message: "Customer ID cannot be empty"}
	}
	return cmd, nil
}
