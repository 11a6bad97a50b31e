package engine

// Event labels a stage of the agent loop for progress reporting.
type Event string

const (
	EventThinking Event = "thinking"
	EventToolCall Event = "tool_call"
	EventResult   Event = "result"
	EventError    Event = "error"
	EventRetry    Event = "retry"
	EventAnswer   Event = "answer"
)

// ProgressFunc receives loop progress. Tool is empty for events that are
// not tied to a specific tool.
type ProgressFunc func(event Event, tool, detail string)

// emit guards against a nil callback so callers never have to.
func (f ProgressFunc) emit(event Event, tool, detail string) {
	if f != nil {
		f(event, tool, detail)
	}
}
