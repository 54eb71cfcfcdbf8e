package slack

import (
	"fmt"
	"strings"

	"loglens/internal/analyzer"
)

// Message is a Slack response payload. Either Blocks or Text is populated.
type Message struct {
	ResponseType string  `json:"response_type"`
	Text         string  `json:"text,omitempty"`
	Blocks       []Block `json:"blocks,omitempty"`
}

// Block is a single Block Kit block.
type Block struct {
	Type string     `json:"type"`
	Text *BlockText `json:"text,omitempty"`
}

// BlockText is the text object inside a section or header block.
type BlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var rankEmoji = map[int]string{1: "1️⃣", 2: "2️⃣", 3: "3️⃣"}

// RenderResult formats an analysis result as an in-channel Block Kit message.
func RenderResult(result *analyzer.Result) Message {
	blocks := []Block{{
		Type: "header",
		Text: &BlockText{Type: "plain_text", Text: "\U0001f50d LogLens Analysis"},
	}}

	if len(result.Causes) > 0 {
		var b strings.Builder
		b.WriteString("*Probable Causes:*\n\n")
		for _, c := range result.Causes {
			emoji, ok := rankEmoji[c.Rank]
			if !ok {
				emoji = "•"
			}
			fmt.Fprintf(&b, "%s *[%s]* %s\n", emoji, strings.ToUpper(c.Confidence), c.Cause)
			fmt.Fprintf(&b, "   └ %s\n\n", c.Explanation)
		}
		blocks = append(blocks, Block{
			Type: "section",
			Text: &BlockText{Type: "mrkdwn", Text: strings.TrimSpace(b.String())},
		})
	}

	blocks = append(blocks, Block{Type: "divider"})

	if result.SuggestedResponse != "" {
		blocks = append(blocks,
			Block{
				Type: "section",
				Text: &BlockText{Type: "mrkdwn", Text: "*Suggested Response:*\n> " + result.SuggestedResponse},
			},
			Block{Type: "divider"},
		)
	}

	logs := fmt.Sprintf("*Logs:* Found %d event", result.EventsFound)
	if result.EventsFound != 1 {
		logs += "s"
	}
	if len(result.SentryLinks) > 0 {
		logs += fmt.Sprintf(" | <%s|View in Sentry>", result.SentryLinks[0])
	}
	blocks = append(blocks, Block{
		Type: "section",
		Text: &BlockText{Type: "mrkdwn", Text: logs},
	})

	return Message{ResponseType: "in_channel", Blocks: blocks}
}

// RenderError formats an error as an ephemeral message visible only to the
// user who ran the command.
func RenderError(message, suggestion string) Message {
	text := "❌ *Error:* " + message
	if suggestion != "" {
		text += "\n\n\U0001f4a1 *Suggestion:* " + suggestion
	}
	return Message{ResponseType: "ephemeral", Text: text}
}
