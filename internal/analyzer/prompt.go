package analyzer

import (
	"fmt"
	"time"

	"loglens/internal/knowledge"
	"loglens/internal/model"
)

const systemPrompt = `You are LogLens, a log analysis assistant. Your job is to analyze application
logs and help identify why a user experienced a problem.

Given:
1. Workflow documentation describing expected system behavior
2. Known error patterns and their resolutions
3. Sentry log events from the relevant time period
4. A problem description from customer support

You must return:
1. Top 3 most likely causes, ranked by probability
2. Confidence level for each (high/medium/low)
3. A suggested response that CS can send to the customer
4. Brief summary of relevant log findings

Be specific and actionable. Reference actual error messages from the logs.
If logs don't clearly indicate the cause, say so and suggest next steps.

IMPORTANT: You must respond with valid JSON only, no markdown formatting or code blocks.`

// userPrompt assembles the single analysis prompt: both knowledge documents,
// the formatted evidence, and the report fields, ending with the exact JSON
// shape the model must emit.
func userPrompt(report model.Report, evidenceText string, docs knowledge.Docs) string {
	return fmt.Sprintf(`## Workflow Documentation
%s

## Known Error Patterns
%s

## Sentry Events
%s

## Problem Report
- Description: %s
- Timestamp: %s
- Customer ID: %s

Analyze and respond in JSON format (no markdown, just raw JSON):
{
  "causes": [{"rank": 1, "cause": "", "explanation": "", "confidence": ""}],
  "suggested_response": "",
  "logs_summary": ""
}`,
		docs.Workflow,
		docs.KnownErrors,
		evidenceText,
		report.Description,
		report.OccurredAt.UTC().Format(time.RFC3339),
		report.CustomerID,
	)
}
