package calc

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 2", 4},
		{"2 + 3 * 4", 14},
		{"(10 + 5) * 3", 45},
		{"100 / 4", 25},
		{"-5 + 10", 5},
		{"3.14 * 2", 6.28},
		{"--5", 5},
		{"+7", 7},
		{"10 - 2 - 3", 5},
		{"553.19 - 92", 461.19},
	}
	for _, tc := range tests {
		got, err := Evaluate(tc.expr)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tc.expr, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateStatistics(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"mean(10, 20, 30)", 20},
		{"mean([10, 20, 30])", 20},
		{"mean([10, 20], 30)", 20},
		{"median(1, 3, 5, 7, 9)", 5},
		{"median(1, 2, 3, 4)", 2.5},
		{"mode(1, 2, 2, 3, 3, 3)", 3},
		{"range(1, 5, 10, 3)", 9},
		{"avg(100, 200)", 150},
		{"average(100, 200)", 150},
		{"MEAN(4, 6)", 5},
		{"mean(10, 20, 30) * 2", 40},
		{"stdev(2, 4, 4, 4, 5, 5, 7, 9)", 2.138089935299395},
		{"std(2, 4, 4, 4, 5, 5, 7, 9)", 2.138089935299395},
	}
	for _, tc := range tests {
		got, err := Evaluate(tc.expr)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tc.expr, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1/0", "division by zero"},
		{"stdev(5)", "at least two values"},
		{"mean()", "at least one argument"},
		{"import os", "unsupported identifier"},
		{"sqrt(4)", "unknown function: sqrt"},
		{"pi", "unsupported identifier"},
		{"2 ** 3", "unexpected"},
		{"2 ^ 3", "unsupported character"},
		{"[1, 2, 3]", "single number, not a list"},
		{"[1, 2] + 3", "not defined for lists"},
		{"-[1, 2]", "not defined for lists"},
		{"mean(1, 2", `expected ")"`},
		{"(1 + 2", `expected ")"`},
		{"", "unexpected end of expression"},
		{"1 +", "unexpected end of expression"},
		{"SELECT 1 - 92", "unsupported identifier"},
	}
	for _, tc := range tests {
		_, err := Evaluate(tc.expr)
		if err == nil {
			t.Errorf("Evaluate(%q) expected error containing %q", tc.expr, tc.want)
			continue
		}
		var invalid *InvalidExpressionError
		if !errors.As(err, &invalid) {
			t.Errorf("Evaluate(%q) error type = %T, want *InvalidExpressionError", tc.expr, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("Evaluate(%q) error = %q, want substring %q", tc.expr, err, tc.want)
		}
	}
}

func TestEvaluateUnknownFunctionListsAllowed(t *testing.T) {
	_, err := Evaluate("variance(1, 2)")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"mean", "median", "mode", "stdev", "range", "avg", "average", "std"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("allow-list in error should mention %q: %s", name, err)
		}
	}
}

func TestEvaluateResultIsFloat(t *testing.T) {
	got, err := Evaluate("mode(1, 2, 2, 3)")
	if err != nil {
		t.Fatal(err)
	}
	if got != 2.0 {
		t.Fatalf("mode = %v, want 2", got)
	}
}
