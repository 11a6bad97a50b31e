package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meeple-cli/internal/agent"
	"meeple-cli/internal/prompts"
	"meeple-cli/internal/search"
	"meeple-cli/internal/tools"
)

// scriptedClient replays canned responses and records every prompt it saw.
type scriptedClient struct {
	responses []string
	errs      []error
	prompts   []agent.Prompt
}

func (c *scriptedClient) Complete(ctx context.Context, p agent.Prompt) (string, error) {
	i := len(c.prompts)
	c.prompts = append(c.prompts, p)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return c.responses[len(c.responses)-1], nil
}

type recordingDB struct {
	rows  []map[string]any
	calls []string
}

func (db *recordingDB) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	db.calls = append(db.calls, sqlText)
	return db.rows, nil
}

type noSearch struct{}

func (noSearch) Search(ctx context.Context, query string, n int) ([]search.Result, error) {
	return nil, nil
}

type noScenario struct{}

func (noScenario) Run(ctx context.Context, scenarioType string, params map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}

type progressRecorder struct {
	events []string
}

func (p *progressRecorder) fn() ProgressFunc {
	return func(event Event, tool, detail string) {
		p.events = append(p.events, string(event)+"/"+tool)
	}
}

func newRunner(client agent.ModelClient, db *recordingDB) *Runner {
	if db == nil {
		db = &recordingDB{}
	}
	return &Runner{
		Client:     client,
		Dispatcher: &tools.Dispatcher{DB: db, Search: noSearch{}, Scenario: noScenario{}},
		System:     "system",
		Model:      "test-model",
	}
}

func TestRunImmediateAnswer(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"action": "answer", "text": "We stock 15 games."}`}}
	rec := &progressRecorder{}
	r := newRunner(client, nil)
	r.OnProgress = rec.fn()

	answer, err := r.Run(context.Background(), "how many games?", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != "We stock 15 games." {
		t.Errorf("answer: %q", answer)
	}
	if len(client.prompts) != 1 {
		t.Errorf("model calls: %d", len(client.prompts))
	}
	joined := strings.Join(rec.events, " ")
	if !strings.Contains(joined, "thinking/") || !strings.Contains(joined, "answer/") {
		t.Errorf("events: %v", rec.events)
	}
}

func TestRunToolThenAnswer(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"action": "query", "sql": "SELECT COUNT(*) AS n FROM board_games"}`,
		`{"action": "answer", "text": "15 games."}`,
	}}
	db := &recordingDB{rows: []map[string]any{{"n": int64(15)}}}
	r := newRunner(client, db)

	answer, err := r.Run(context.Background(), "how many games?", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != "15 games." {
		t.Errorf("answer: %q", answer)
	}
	if len(db.calls) != 1 || db.calls[0] != "SELECT COUNT(*) AS n FROM board_games" {
		t.Errorf("db calls: %v", db.calls)
	}

	// The second prompt must replay the canonical action and the prefixed result.
	second := client.prompts[1].Messages
	if len(second) != 3 {
		t.Fatalf("second prompt has %d messages", len(second))
	}
	if second[1].Role != agent.RoleAssistant || !strings.Contains(second[1].Content, `"action"`) {
		t.Errorf("assistant echo: %+v", second[1])
	}
	if second[2].Role != agent.RoleUser || !strings.HasPrefix(second[2].Content, "Tool result:\n") {
		t.Errorf("tool result message: %+v", second[2])
	}
}

func TestRunRepairsInvalidOutputWithinTurn(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"I think I should query the database first.",
		`{"action": "answer", "text": "done"}`,
	}}
	rec := &progressRecorder{}
	r := newRunner(client, nil)
	r.OnProgress = rec.fn()

	answer, err := r.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != "done" {
		t.Errorf("answer: %q", answer)
	}

	second := client.prompts[1].Messages
	last := second[len(second)-1]
	if last.Role != agent.RoleUser || last.Content != prompts.RepairInstruction {
		t.Errorf("repair message: %+v", last)
	}
	prev := second[len(second)-2]
	if prev.Role != agent.RoleAssistant || prev.Content != "I think I should query the database first." {
		t.Errorf("raw output not echoed back: %+v", prev)
	}
	if !strings.Contains(strings.Join(rec.events, " "), "retry/") {
		t.Errorf("no retry event: %v", rec.events)
	}
}

func TestRunRetryExhaustion(t *testing.T) {
	client := &scriptedClient{responses: []string{"nope", "still nope", "nope again"}}
	db := &recordingDB{}
	r := newRunner(client, db)

	answer, err := r.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != FailureInvalidJSON {
		t.Errorf("answer: %q", answer)
	}
	if len(client.prompts) != DefaultMaxRetries {
		t.Errorf("model calls: %d, want %d", len(client.prompts), DefaultMaxRetries)
	}
	if len(db.calls) != 0 {
		t.Errorf("no tool should run, got %v", db.calls)
	}
}

func TestRunRejectedActionCountsAgainstRetries(t *testing.T) {
	// Syntactically valid JSON that fails validation (non-SELECT) must burn
	// retries without ever reaching the database.
	client := &scriptedClient{responses: []string{`{"action": "query", "sql": "DROP TABLE board_games"}`}}
	db := &recordingDB{}
	r := newRunner(client, db)

	answer, err := r.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != FailureInvalidJSON {
		t.Errorf("answer: %q", answer)
	}
	if len(db.calls) != 0 {
		t.Errorf("rejected action reached the database: %v", db.calls)
	}
}

func TestRunTurnsExhaustion(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"action": "query", "sql": "SELECT 1"}`}}
	db := &recordingDB{rows: []map[string]any{{"1": int64(1)}}}
	r := newRunner(client, db)
	r.MaxTurns = 3

	answer, err := r.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != FailureMaxTurns {
		t.Errorf("answer: %q", answer)
	}
	if len(db.calls) != 3 {
		t.Errorf("tool calls: %d, want 3", len(db.calls))
	}
}

func TestRunModelErrorConsumesRetry(t *testing.T) {
	client := &scriptedClient{
		responses: []string{"", `{"action": "answer", "text": "ok"}`},
		errs:      []error{errors.New("connection refused"), nil},
	}
	r := newRunner(client, nil)

	answer, err := r.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != "ok" {
		t.Errorf("answer: %q", answer)
	}
	if len(client.prompts) != 2 {
		t.Errorf("model calls: %d", len(client.prompts))
	}
}

func TestRunModelUnavailable(t *testing.T) {
	transport := errors.New("connection refused")
	client := &scriptedClient{
		responses: []string{"", "", ""},
		errs:      []error{transport, transport, transport},
	}
	r := newRunner(client, nil)

	answer, err := r.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != FailureModelUnavailable {
		t.Errorf("answer: %q", answer)
	}
	if len(client.prompts) != DefaultMaxRetries {
		t.Errorf("model calls: %d, want %d", len(client.prompts), DefaultMaxRetries)
	}
}

func TestRunReplaysHistory(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"action": "answer", "text": "ok"}`}}
	r := newRunner(client, nil)

	history := []agent.Message{
		{Role: agent.RoleUser, Content: "earlier question"},
		{Role: agent.RoleAssistant, Content: "earlier answer"},
	}
	if _, err := r.Run(context.Background(), "follow-up", history); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := client.prompts[0].Messages
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Content != "earlier question" || msgs[2].Content != "follow-up" {
		t.Errorf("message order: %v", msgs)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptedClient{
		responses: []string{""},
		errs:      []error{context.Canceled},
	}
	r := newRunner(client, nil)

	if _, err := r.Run(ctx, "q", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err: %v", err)
	}
}
