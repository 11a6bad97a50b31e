package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"meeple-cli/internal/action"
	"meeple-cli/internal/search"
)

type fakeDB struct {
	rows []map[string]any
	err  error
	sql  string
}

func (f *fakeDB) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	f.sql = sqlText
	return f.rows, f.err
}

type fakeSearch struct {
	results []search.Result
	err     error
	n       int
}

func (f *fakeSearch) Search(ctx context.Context, query string, n int) ([]search.Result, error) {
	f.n = n
	return f.results, f.err
}

type fakeScenario struct {
	out map[string]any
	err error
}

func (f *fakeScenario) Run(ctx context.Context, scenarioType string, params map[string]any) (map[string]any, error) {
	return f.out, f.err
}

func TestDispatchQueryRendersRows(t *testing.T) {
	db := &fakeDB{rows: []map[string]any{{"name": "Catan", "price": 49.99}}}
	d := &Dispatcher{DB: db}

	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindQuery, SQL: "SELECT name, price FROM board_games"})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(res.Text), &rows); err != nil {
		t.Fatalf("result not JSON: %v\n%s", err, res.Text)
	}
	if len(rows) != 1 || rows[0]["name"] != "Catan" {
		t.Errorf("rows: %v", rows)
	}
	if db.sql != "SELECT name, price FROM board_games" {
		t.Errorf("sql passed through: %q", db.sql)
	}
}

func TestDispatchQueryEmpty(t *testing.T) {
	d := &Dispatcher{DB: &fakeDB{}}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindQuery, SQL: "SELECT 1"})
	if res.IsError || res.Text != "Query returned no results." {
		t.Errorf("got %+v", res)
	}
}

func TestDispatchQueryError(t *testing.T) {
	d := &Dispatcher{DB: &fakeDB{err: errors.New("no such table: employees")}}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindQuery, SQL: "SELECT * FROM employees"})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if res.Text != "Query error: no such table: employees" {
		t.Errorf("text: %q", res.Text)
	}
}

func TestDispatchCalculate(t *testing.T) {
	d := &Dispatcher{}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindCalculate, Expression: "2 + 3 * 4"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Text)
	}
	if res.Text != "Result: 14" {
		t.Errorf("text: %q", res.Text)
	}
}

func TestDispatchCalculateError(t *testing.T) {
	d := &Dispatcher{}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindCalculate, Expression: "1 / 0"})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if !strings.HasPrefix(res.Text, "Calculation error: ") {
		t.Errorf("text: %q", res.Text)
	}
	if !strings.Contains(res.Text, "Try a different approach.") {
		t.Errorf("missing guidance: %q", res.Text)
	}
}

func TestDispatchSearch(t *testing.T) {
	fs := &fakeSearch{results: []search.Result{
		{Name: "Codenames", Category: "Party", Price: 19.99, InStock: 15, Relevance: 0.912},
	}}
	d := &Dispatcher{Search: fs}

	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindSearch, Query: "party games", N: 3})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Text)
	}
	if fs.n != 3 {
		t.Errorf("n passed through: %d", fs.n)
	}
	if !strings.Contains(res.Text, `"relevance": 0.912`) {
		t.Errorf("result JSON: %s", res.Text)
	}
}

func TestDispatchSearchEmpty(t *testing.T) {
	d := &Dispatcher{Search: &fakeSearch{}}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindSearch, Query: "underwater basket weaving", N: 5})
	if res.IsError || res.Text != "No matching games found." {
		t.Errorf("got %+v", res)
	}
}

func TestDispatchWhatIf(t *testing.T) {
	d := &Dispatcher{Scenario: &fakeScenario{out: map[string]any{
		"scenario":       "Game prices increased by 10%",
		"revenue_change": 88.58,
	}}}
	res := d.Dispatch(context.Background(), &action.Action{
		Kind:         action.KindWhatIf,
		ScenarioType: "price_change",
		Params:       map[string]any{"target": "games", "change_percent": float64(10)},
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Text)
	}
	if !strings.Contains(res.Text, `"scenario": "Game prices increased by 10%"`) {
		t.Errorf("result JSON: %s", res.Text)
	}
}

func TestDispatchWhatIfScenarioError(t *testing.T) {
	d := &Dispatcher{Scenario: &fakeScenario{out: map[string]any{"error": "Could not find item matching 'chess'"}}}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindWhatIf, ScenarioType: "price_change"})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if res.Text != "Scenario error: Could not find item matching 'chess'" {
		t.Errorf("text: %q", res.Text)
	}
}

func TestDispatchWhatIfDatabaseError(t *testing.T) {
	d := &Dispatcher{Scenario: &fakeScenario{err: errors.New("database is locked")}}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.KindWhatIf, ScenarioType: "price_change"})
	if !res.IsError || res.Text != "What-if error: database is locked" {
		t.Errorf("got %+v", res)
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	d := &Dispatcher{}
	res := d.Dispatch(context.Background(), &action.Action{Kind: action.Kind("emote")})
	if !res.IsError || res.Text != "Unknown action type." {
		t.Errorf("got %+v", res)
	}
}
