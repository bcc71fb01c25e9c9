// Package ai provides reasoning capability clients for the pipeline's
// stage agents. The wire format is OpenAI chat-completions compatible so
// one client serves any endpoint that speaks it.
package ai

import "context"

// Capability is a single-turn reasoning capability. Stage agents send a
// system prompt plus a user prompt and receive the raw model text back;
// parsing and validation happen upstream.
type Capability interface {
	// Generate performs one completion request
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name identifies the backing provider for logging
	Name() string
}

// Request is a single completion request
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Response carries the raw model output and usage accounting
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage tracks token consumption
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
