// Package prompts holds the built-in prompt text shipped with the binary.
package prompts

import (
	"embed"
	"strings"
	"time"
)

//go:embed text/*
var builtinFS embed.FS

// RepairInstruction is sent back to the model after it produces output
// that cannot be parsed as a single action object.
const RepairInstruction = `Invalid format. Respond with EXACTLY ONE JSON object, nothing else. Example: {"action": "query", "sql": "SELECT ..."}`

// ToolResultPrefix precedes every tool result fed back to the model.
const ToolResultPrefix = "Tool result:\n"

// System renders the system prompt with the database schema and today's
// date filled in.
func System(schema string, today time.Time) string {
	raw, err := builtinFS.ReadFile("text/system_prompt.md")
	if err != nil {
		// The file is compiled in; a failure here is a build defect.
		panic("prompts: missing embedded system prompt: " + err.Error())
	}
	text := string(raw)
	text = strings.ReplaceAll(text, "{{TODAY}}", today.Format("2006-01-02"))
	text = strings.ReplaceAll(text, "{{SCHEMA}}", schema)
	return strings.TrimRight(text, "\n")
}
