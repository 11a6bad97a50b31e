package calc

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type lexer struct {
	input []rune
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: []rune(input)}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, text: "end of expression"}, nil
	}

	c := l.input[l.pos]
	switch c {
	case '+':
		l.pos++
		return token{kind: tokPlus, text: "+"}, nil
	case '-':
		l.pos++
		return token{kind: tokMinus, text: "-"}, nil
	case '*':
		l.pos++
		return token{kind: tokStar, text: "*"}, nil
	case '/':
		l.pos++
		return token{kind: tokSlash, text: "/"}, nil
	case '(':
		l.pos++
		return token{kind: tokLParen, text: "("}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, text: ")"}, nil
	case '[':
		l.pos++
		return token{kind: tokLBracket, text: "["}, nil
	case ']':
		l.pos++
		return token{kind: tokRBracket, text: "]"}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, text: ","}, nil
	}

	if unicode.IsDigit(c) || c == '.' {
		return l.lexNumber()
	}
	if unicode.IsLetter(c) || c == '_' {
		return l.lexIdent(), nil
	}
	return token{}, invalidf("unsupported character %q", string(c))
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	seenDot := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
			l.pos++
			continue
		}
		if !unicode.IsDigit(c) {
			break
		}
		l.pos++
	}
	text := string(l.input[start:l.pos])
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, invalidf("invalid numeric literal %q", text)
	}
	return token{kind: tokNumber, text: text, num: num}, nil
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		l.pos++
	}
	text := string(l.input[start:l.pos])
	return token{kind: tokIdent, text: strings.ToLower(text)}
}
