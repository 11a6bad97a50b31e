// Package calc evaluates a small closed arithmetic/statistics language.
//
// The grammar covers numeric literals, the binary operators + - * /, unary
// plus/minus, parentheses, list literals as function arguments, and an
// allow-list of statistical functions. Everything else is rejected during
// parsing, so the evaluator never dispatches on anything outside the
// whitelisted node set.
package calc

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// InvalidExpressionError reports a syntax error, an unsupported construct,
// or an arithmetic fault such as division by zero.
type InvalidExpressionError struct {
	Msg string
}

func (e *InvalidExpressionError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &InvalidExpressionError{Msg: fmt.Sprintf(format, args...)}
}

// Evaluate parses and evaluates expression, returning the result as a
// float even for integral inputs.
//
//	Evaluate("2 + 3 * 4")        -> 14
//	Evaluate("mean(10, 20, 30)") -> 20
//	Evaluate("mean([10, 20, 30])") -> 20
func Evaluate(expression string) (float64, error) {
	p := &parser{lex: newLexer(expression)}
	if err := p.advance(); err != nil {
		return 0, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, invalidf("unexpected %q after expression", p.tok.text)
	}
	if val.isList {
		return 0, invalidf("expression must evaluate to a single number, not a list")
	}
	return val.num, nil
}

// value is either a scalar or a list; lists only exist between a list
// literal and the enclosing function call.
type value struct {
	num    float64
	list   []float64
	isList bool
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.tok.kind != kind {
		return invalidf("expected %s, found %q", what, p.tok.text)
	}
	return p.advance()
}

// parseExpr handles + and - at the lowest precedence.
func (p *parser) parseExpr() (value, error) {
	left, err := p.parseTerm()
	if err != nil {
		return value{}, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return value{}, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return value{}, err
		}
		left, err = applyBinary(op, left, right)
		if err != nil {
			return value{}, err
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return value{}, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return value{}, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return value{}, err
		}
		left, err = applyBinary(op, left, right)
		if err != nil {
			return value{}, err
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (value, error) {
	switch p.tok.kind {
	case tokMinus:
		if err := p.advance(); err != nil {
			return value{}, err
		}
		v, err := p.parseUnary()
		if err != nil {
			return value{}, err
		}
		if v.isList {
			return value{}, invalidf("unary - is not defined for lists")
		}
		return value{num: -v.num}, nil
	case tokPlus:
		if err := p.advance(); err != nil {
			return value{}, err
		}
		v, err := p.parseUnary()
		if err != nil {
			return value{}, err
		}
		if v.isList {
			return value{}, invalidf("unary + is not defined for lists")
		}
		return v, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (value, error) {
	switch p.tok.kind {
	case tokNumber:
		v := value{num: p.tok.num}
		if err := p.advance(); err != nil {
			return value{}, err
		}
		return v, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return value{}, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return value{}, err
		}
		if err := p.expect(tokRParen, `")"`); err != nil {
			return value{}, err
		}
		return v, nil

	case tokLBracket:
		return p.parseList()

	case tokIdent:
		name := strings.ToLower(p.tok.text)
		if err := p.advance(); err != nil {
			return value{}, err
		}
		if p.tok.kind != tokLParen {
			return value{}, invalidf("unsupported identifier %q: only function calls are allowed", name)
		}
		return p.parseCall(name)

	case tokEOF:
		return value{}, invalidf("unexpected end of expression")
	}
	return value{}, invalidf("unexpected %q", p.tok.text)
}

func (p *parser) parseList() (value, error) {
	// Consume "[".
	if err := p.advance(); err != nil {
		return value{}, err
	}
	var elems []float64
	if p.tok.kind != tokRBracket {
		for {
			v, err := p.parseExpr()
			if err != nil {
				return value{}, err
			}
			if v.isList {
				return value{}, invalidf("nested lists are not supported")
			}
			elems = append(elems, v.num)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return value{}, err
			}
		}
	}
	if err := p.expect(tokRBracket, `"]"`); err != nil {
		return value{}, err
	}
	return value{list: elems, isList: true}, nil
}

func (p *parser) parseCall(name string) (value, error) {
	fn, ok := functions[name]
	if !ok {
		return value{}, invalidf("unknown function: %s. Allowed: %s", name, allowedFunctions())
	}
	// Consume "(".
	if err := p.advance(); err != nil {
		return value{}, err
	}
	var args []float64
	if p.tok.kind != tokRParen {
		for {
			v, err := p.parseExpr()
			if err != nil {
				return value{}, err
			}
			// List arguments are spliced, so mean([1,2]) == mean(1,2).
			if v.isList {
				args = append(args, v.list...)
			} else {
				args = append(args, v.num)
			}
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return value{}, err
			}
		}
	}
	if err := p.expect(tokRParen, `")"`); err != nil {
		return value{}, err
	}

	if len(args) == 0 {
		return value{}, invalidf("%s() requires at least one argument", name)
	}
	if (name == "stdev" || name == "std") && len(args) < 2 {
		return value{}, invalidf("stdev() requires at least two values")
	}
	res, err := fn(args)
	if err != nil {
		return value{}, err
	}
	return value{num: res}, nil
}

func applyBinary(op tokenKind, left, right value) (value, error) {
	if left.isList || right.isList {
		return value{}, invalidf("arithmetic operators are not defined for lists")
	}
	switch op {
	case tokPlus:
		return value{num: left.num + right.num}, nil
	case tokMinus:
		return value{num: left.num - right.num}, nil
	case tokStar:
		return value{num: left.num * right.num}, nil
	case tokSlash:
		if right.num == 0 {
			return value{}, invalidf("division by zero")
		}
		return value{num: left.num / right.num}, nil
	}
	return value{}, invalidf("unsupported operator")
}

type statFunc func([]float64) (float64, error)

var functions = map[string]statFunc{
	"mean":    statMean,
	"median":  statMedian,
	"mode":    statMode,
	"stdev":   statStdev,
	"range":   statRange,
	"avg":     statMean,
	"average": statMean,
	"std":     statStdev,
}

func allowedFunctions() string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func statMean(values []float64) (float64, error) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

func statMedian(values []float64) (float64, error) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// statMode returns the first-seen value with the highest occurrence count.
func statMode(values []float64) (float64, error) {
	counts := make(map[float64]int, len(values))
	best := values[0]
	bestCount := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best, nil
}

// statStdev computes the sample standard deviation.
func statStdev(values []float64) (float64, error) {
	mean, _ := statMean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1)), nil
}

func statRange(values []float64) (float64, error) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo, nil
}
