package llm

import (
	"context"
	"encoding/json"
)

// Provider abstracts an LLM backend. Quiz generation and answer
// evaluation both go through this single interface, so a course can be
// served by Anthropic, OpenAI, Gemini, or the deterministic mock
// without the callers noticing.
type Provider interface {
	// Generate sends a prompt and returns the model's output. When the
	// request carries a Schema, the returned Content is JSON already
	// validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is one generation call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Quiz generation sends a single
	// user message; evaluation may include prior turns.
	Messages []Message

	// Schema, when set, makes the provider use its native structured
	// output mechanism and validates the result before returning it.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0, 1]. Zero means deterministic.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON structure the model must produce.
type Schema struct {
	// Name identifies the schema, kebab-case ("quiz-questions"). Used
	// as the schema name for OpenAI and as the cache key.
	Name string

	// Description guides generation; sent to the model where the
	// backend supports it.
	Description string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Response is the model's output for one request.
type Response struct {
	// Content is the generated output: validated JSON when the request
	// had a Schema, raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage is per-request token accounting.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
