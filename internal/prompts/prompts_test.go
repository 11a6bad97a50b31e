package prompts

import (
	"strings"
	"testing"
	"time"
)

func TestSystemFillsPlaceholders(t *testing.T) {
	schema := "Database schema:\n\nboard_games(id, name, price)"
	today := time.Date(2026, 2, 20, 15, 4, 5, 0, time.UTC)

	got := System(schema, today)

	if strings.Contains(got, "{{TODAY}}") || strings.Contains(got, "{{SCHEMA}}") {
		t.Fatal("placeholders left unresolved")
	}
	if !strings.Contains(got, "Today's date is 2026-02-20") {
		t.Error("date not rendered")
	}
	if !strings.Contains(got, schema) {
		t.Error("schema not rendered")
	}
	for _, want := range []string{
		`{"action": "query", "sql": "SELECT ..."}`,
		`{"action": "answer", "text": "Your final answer here"}`,
		"EXACTLY ONE JSON object",
		"mean(), median(), mode(), stdev(), range()",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestRepairInstructionShowsExample(t *testing.T) {
	if !strings.Contains(RepairInstruction, `{"action": "query", "sql": "SELECT ..."}`) {
		t.Error("repair instruction should include an example object")
	}
}
