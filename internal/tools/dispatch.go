// Package tools routes validated actions to the query, calculate, search,
// and what-if backends and renders their results for the model.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"meeple-cli/internal/action"
	"meeple-cli/internal/calc"
	"meeple-cli/internal/search"
)

// Result is the rendered outcome of one tool invocation. IsError marks
// results the model should treat as a failed attempt.
type Result struct {
	Text    string
	IsError bool
}

// Querier executes read-only SQL.
type Querier interface {
	Query(ctx context.Context, sqlText string) ([]map[string]any, error)
}

// Searcher ranks games against a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]search.Result, error)
}

// ScenarioRunner evaluates a what-if scenario.
type ScenarioRunner interface {
	Run(ctx context.Context, scenarioType string, params map[string]any) (map[string]any, error)
}

// Dispatcher executes non-answer actions.
type Dispatcher struct {
	DB       Querier
	Search   Searcher
	Scenario ScenarioRunner
}

func (d *Dispatcher) Dispatch(ctx context.Context, a *action.Action) Result {
	switch a.Kind {
	case action.KindQuery:
		return d.query(ctx, a.SQL)
	case action.KindCalculate:
		return d.calculate(a.Expression)
	case action.KindSearch:
		return d.search(ctx, a.Query, a.N)
	case action.KindWhatIf:
		return d.whatif(ctx, a.ScenarioType, a.Params)
	}
	return Result{Text: "Unknown action type.", IsError: true}
}

func (d *Dispatcher) query(ctx context.Context, sqlText string) Result {
	rows, err := d.DB.Query(ctx, sqlText)
	if err != nil {
		return Result{Text: fmt.Sprintf("Query error: %v", err), IsError: true}
	}
	if len(rows) == 0 {
		return Result{Text: "Query returned no results."}
	}
	return Result{Text: mustJSON(rows)}
}

func (d *Dispatcher) calculate(expression string) Result {
	v, err := calc.Evaluate(expression)
	if err != nil {
		return Result{
			Text:    fmt.Sprintf("Calculation error: %v. Remember: calculator only supports numbers and +, -, *, /, parentheses. Try a different approach.", err),
			IsError: true,
		}
	}
	return Result{Text: fmt.Sprintf("Result: %v", v)}
}

func (d *Dispatcher) search(ctx context.Context, query string, n int) Result {
	results, err := d.Search.Search(ctx, query, n)
	if err != nil {
		return Result{Text: fmt.Sprintf("Search error: %v", err), IsError: true}
	}
	if len(results) == 0 {
		return Result{Text: "No matching games found."}
	}
	return Result{Text: mustJSON(results)}
}

func (d *Dispatcher) whatif(ctx context.Context, scenarioType string, params map[string]any) Result {
	out, err := d.Scenario.Run(ctx, scenarioType, params)
	if err != nil {
		return Result{Text: fmt.Sprintf("What-if error: %v", err), IsError: true}
	}
	if msg, ok := out["error"]; ok {
		return Result{Text: fmt.Sprintf("Scenario error: %v", msg), IsError: true}
	}
	return Result{Text: mustJSON(out)}
}

func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
