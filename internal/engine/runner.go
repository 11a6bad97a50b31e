// Package engine drives the turn loop: prompt the model, parse its action,
// dispatch tools, and feed results back until it answers or runs out of
// budget.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"meeple-cli/internal/action"
	"meeple-cli/internal/agent"
	"meeple-cli/internal/logger"
	"meeple-cli/internal/prompts"
	"meeple-cli/internal/tools"
)

const (
	// DefaultMaxTurns caps tool-using turns per question.
	DefaultMaxTurns = 10
	// DefaultMaxRetries caps malformed-output retries within one turn.
	DefaultMaxRetries = 3
)

// FailureInvalidJSON is returned after the retry budget is exhausted
// without a parseable action.
const FailureInvalidJSON = "Error: Agent failed to produce valid JSON after multiple attempts."

// FailureMaxTurns is returned when the turn budget runs out before the
// model answers.
const FailureMaxTurns = "Error: Agent reached maximum turns without providing an answer."

// FailureModelUnavailable is returned when every retry was spent on failed
// model calls and no output was ever received to parse.
const FailureModelUnavailable = "Error: Agent could not reach the model after multiple attempts."

// Runner owns one question's agent loop. It is cheap to construct and
// safe to build per request.
type Runner struct {
	Client     agent.ModelClient
	Dispatcher *tools.Dispatcher

	System string
	Model  string

	MaxTurns       int
	MaxRetries     int
	RequestTimeout time.Duration

	OnProgress ProgressFunc

	Log *logger.LogEntry
}

// Run answers question, replaying history first for follow-up context.
// The returned error is reserved for context cancellation; every other
// failure mode comes back as answer text.
func (r *Runner) Run(ctx context.Context, question string, history []agent.Message) (string, error) {
	maxTurns := r.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	log := r.Log
	if log == nil {
		log = logger.Named("engine")
	}

	messages := make([]agent.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, agent.Message{Role: agent.RoleUser, Content: question})

	for turn := 0; turn < maxTurns; turn++ {
		var (
			act       *action.Action
			canonical string
			sawOutput bool
		)

		for attempt := 0; attempt < maxRetries; attempt++ {
			r.OnProgress.emit(EventThinking, "", fmt.Sprintf("Turn %d", turn+1))

			raw, err := r.complete(ctx, messages)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				log.WithError(err).Warn("model call failed")
				r.OnProgress.emit(EventRetry, "", fmt.Sprintf("Attempt %d failed, retrying...", attempt+1))
				continue
			}
			sawOutput = true

			act, canonical = action.Normalize(raw)
			if act != nil {
				break
			}

			r.OnProgress.emit(EventRetry, "", fmt.Sprintf("Attempt %d failed, retrying...", attempt+1))
			if attempt < maxRetries-1 {
				messages = append(messages,
					agent.Message{Role: agent.RoleAssistant, Content: raw},
					agent.Message{Role: agent.RoleUser, Content: prompts.RepairInstruction},
				)
			}
		}

		if act == nil {
			if !sawOutput {
				return FailureModelUnavailable, nil
			}
			return FailureInvalidJSON, nil
		}

		if act.Kind == action.KindAnswer {
			r.OnProgress.emit(EventAnswer, "", "")
			return act.Text, nil
		}

		r.emitToolCall(act)

		result := r.Dispatcher.Dispatch(ctx, act)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.emitResult(act, result)

		// Replay only the canonical object so the model cannot anchor on
		// discarded prose around it.
		messages = append(messages,
			agent.Message{Role: agent.RoleAssistant, Content: canonical},
			agent.Message{Role: agent.RoleUser, Content: prompts.ToolResultPrefix + result.Text},
		)
	}

	return FailureMaxTurns, nil
}

func (r *Runner) complete(ctx context.Context, messages []agent.Message) (string, error) {
	if r.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.RequestTimeout)
		defer cancel()
	}
	return r.Client.Complete(ctx, agent.Prompt{
		Model:    r.Model,
		System:   r.System,
		Messages: messages,
	})
}

func (r *Runner) emitToolCall(act *action.Action) {
	switch act.Kind {
	case action.KindQuery:
		sql := strings.ReplaceAll(strings.TrimSpace(act.SQL), "\n", " ")
		if len(sql) > 80 {
			sql = sql[:77] + "..."
		}
		r.OnProgress.emit(EventToolCall, "query", sql)
	case action.KindCalculate:
		r.OnProgress.emit(EventToolCall, "calculate", act.Expression)
	case action.KindSearch:
		r.OnProgress.emit(EventToolCall, "search", act.Query)
	case action.KindWhatIf:
		r.OnProgress.emit(EventToolCall, "whatif", fmt.Sprintf("%s: %v", act.ScenarioType, act.Params))
	}
}

func (r *Runner) emitResult(act *action.Action, result tools.Result) {
	kind := string(act.Kind)
	if result.IsError {
		display := result.Text
		if i := strings.Index(display, "."); i >= 0 {
			display = display[:i]
		}
		if len(display) > 60 {
			display = display[:57] + "..."
		}
		r.OnProgress.emit(EventError, kind, display)
		return
	}

	switch act.Kind {
	case action.KindQuery:
		var rows []map[string]any
		if err := json.Unmarshal([]byte(result.Text), &rows); err == nil {
			r.OnProgress.emit(EventResult, kind, fmt.Sprintf("%d row(s) returned", len(rows)))
		} else {
			r.OnProgress.emit(EventResult, kind, truncate(result.Text, 50))
		}
	case action.KindSearch:
		var games []map[string]any
		if err := json.Unmarshal([]byte(result.Text), &games); err == nil {
			r.OnProgress.emit(EventResult, kind, fmt.Sprintf("%d game(s) found", len(games)))
		} else {
			r.OnProgress.emit(EventResult, kind, truncate(result.Text, 50))
		}
	case action.KindWhatIf:
		var out map[string]any
		if err := json.Unmarshal([]byte(result.Text), &out); err == nil {
			scenario, _ := out["scenario"].(string)
			if scenario == "" {
				scenario = "Scenario calculated"
			}
			r.OnProgress.emit(EventResult, kind, truncate(scenario, 60))
		} else {
			r.OnProgress.emit(EventResult, kind, truncate(result.Text, 50))
		}
	case action.KindCalculate:
		r.OnProgress.emit(EventResult, kind, result.Text)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
