// Package history keeps recent question/answer pairs for follow-up context.
package history

import (
	"meeple-cli/internal/agent"
)

// DefaultMaxPairs bounds how many Q&A pairs are replayed to the model.
const DefaultMaxPairs = 4

// Log is a bounded conversation log. The zero value is not usable; call New.
type Log struct {
	maxPairs int
	messages []agent.Message
}

func New(maxPairs int) *Log {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	return &Log{maxPairs: maxPairs}
}

// AddPair records one exchange and drops the oldest pairs past the cap.
func (l *Log) AddPair(question, answer string) {
	l.messages = append(l.messages,
		agent.Message{Role: agent.RoleUser, Content: question},
		agent.Message{Role: agent.RoleAssistant, Content: answer},
	)
	max := l.maxPairs * 2
	if len(l.messages) > max {
		l.messages = l.messages[len(l.messages)-max:]
	}
}

// Messages returns a copy of the retained exchanges, oldest first.
func (l *Log) Messages() []agent.Message {
	out := make([]agent.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Clear() {
	l.messages = nil
}

func (l *Log) Len() int {
	return len(l.messages)
}
