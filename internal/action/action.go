// Package action defines the single-action wire protocol the model must
// follow and the normalizer that recovers one valid action from noisy
// model output.
package action

import (
	"encoding/json"
	"strings"
)

// Kind names an action variant.
type Kind string

const (
	KindQuery     Kind = "query"
	KindCalculate Kind = "calculate"
	KindSearch    Kind = "search"
	KindWhatIf    Kind = "whatif"
	KindAnswer    Kind = "answer"
)

const defaultSearchN = 5

// Action is the one structured instruction the model emits per turn.
// Only the fields belonging to Kind are meaningful.
type Action struct {
	Kind         Kind
	SQL          string
	Expression   string
	Query        string
	N            int
	ScenarioType string
	Params       map[string]any
	Text         string
}

// validate checks a decoded JSON object against the action schema.
// Returns nil when the object is not a valid action.
func validate(data map[string]any) *Action {
	kind, ok := data["action"].(string)
	if !ok {
		return nil
	}

	switch Kind(kind) {
	case KindQuery:
		sql, ok := data["sql"].(string)
		if !ok {
			return nil
		}
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "SELECT") {
			return nil
		}
		return &Action{Kind: KindQuery, SQL: sql}

	case KindCalculate:
		expr, ok := data["expression"].(string)
		if !ok {
			return nil
		}
		return &Action{Kind: KindCalculate, Expression: expr}

	case KindSearch:
		query, ok := data["query"].(string)
		if !ok {
			return nil
		}
		n := defaultSearchN
		if raw, present := data["n"]; present {
			num, ok := raw.(float64)
			if !ok {
				return nil
			}
			if int(num) > 0 {
				n = int(num)
			}
		}
		return &Action{Kind: KindSearch, Query: query, N: n}

	case KindWhatIf:
		scenario, ok := data["scenario_type"].(string)
		if !ok {
			return nil
		}
		params := map[string]any{}
		if raw, present := data["params"]; present {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil
			}
			params = m
		}
		return &Action{Kind: KindWhatIf, ScenarioType: scenario, Params: params}

	case KindAnswer:
		text, ok := data["text"].(string)
		if !ok {
			return nil
		}
		return &Action{Kind: KindAnswer, Text: text}
	}

	return nil
}

func parseAndValidate(raw string) *Action {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	return validate(data)
}
