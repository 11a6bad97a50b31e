// Package agent defines the model-backend contract shared by all
// configurable LLM providers.
package agent

import "context"

// Prompt is the complete request for one model call.
type Prompt struct {
	Model     string
	System    string
	Messages  []Message
	MaxTokens int64
}

// ModelClient is implemented by each backend. Complete blocks until the
// model produces a full response or the context is done; failures come
// back as errors, never panics.
type ModelClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
