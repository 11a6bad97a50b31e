package action

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

// Normalize extracts a single valid action from raw model text.
//
// Strategies are tried in order, short-circuiting on the first success:
// a direct parse of the (fence-stripped) text, a control-character repair
// pass, then brace-balanced extraction of the first JSON object. On success
// the returned string is the canonical single-object JSON that should be
// recorded in conversation history instead of the raw model output; on
// failure the action is nil and the original text is returned unchanged.
func Normalize(text string) (*Action, string) {
	original := text
	text = strings.TrimSpace(text)

	// Models love wrapping the object in a markdown fence.
	if strings.HasPrefix(text, "```") {
		if m := fencedBlock.FindStringSubmatch(text); m != nil {
			text = strings.TrimSpace(m[1])
		}
	}

	if act := parseAndValidate(text); act != nil {
		return act, text
	}

	if fixed := repairControlChars(text); fixed != text {
		if act := parseAndValidate(fixed); act != nil {
			return act, fixed
		}
	}

	extracted, ok := extractFirstObject(text)
	if !ok {
		return nil, original
	}
	extracted = repairControlChars(extracted)
	if act := parseAndValidate(extracted); act != nil {
		return act, extracted
	}
	return nil, original
}

// repairControlChars escapes raw newline, carriage-return and tab bytes that
// appear inside JSON string values. Bytes outside strings and existing escape
// sequences are left untouched.
func repairControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && inString && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		switch {
		case c == '"':
			inString = !inString
			b.WriteByte(c)
		case c == '\n' && inString:
			b.WriteString(`\n`)
		case c == '\r' && inString:
			b.WriteString(`\r`)
		case c == '\t' && inString:
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// extractFirstObject isolates the first brace-balanced JSON object in s,
// tracking quote and escape state so braces inside string values are
// ignored. This prunes leading prose, trailing prose, and any additional
// objects the model emitted (for example a "predicted" future tool result).
func extractFirstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
