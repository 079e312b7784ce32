// Package provider defines the adapter interface and profile registry for
// chat model providers. Each provider kind (OpenAI, Anthropic, Cohere,
// OpenRouter) implements the Adapter interface to handle request shaping
// and response normalization; the registry maps model identifiers to the
// static profile used to reach them.
package provider

import (
	"context"
	"net/http"

	"github.com/Bluenot3/ZENGEN/pkg/types"
)

// Kind identifies a provider wire protocol and credential slot.
type Kind string

// Supported provider kinds. The set is closed: profiles referencing any
// other kind are rejected at registration.
const (
	KindOpenAI     Kind = "openai"
	KindAnthropic  Kind = "anthropic"
	KindCohere     Kind = "cohere"
	KindOpenRouter Kind = "openrouter"
	KindReplicate  Kind = "replicate"
)

// Profile is the static mapping from a model identifier to the endpoint,
// protocol, and per-1000-token rate used to serve it. Registry data, not
// per-bot state.
type Profile struct {
	ModelID   string
	Endpoint  string
	Kind      Kind
	CostPer1K float64
}

// SamplingParams carries the per-turn generation settings every provider
// body embeds.
type SamplingParams struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Adapter transforms the internal conversation representation into a
// provider-specific wire shape and back. FormatBody is a pure transform;
// no adapter performs network I/O itself.
type Adapter interface {
	// Kind returns the provider kind this adapter serves.
	Kind() Kind

	// FormatBody builds the provider-specific request body from the full
	// message list (system prompt first, history in order, new user
	// message last).
	FormatBody(messages []types.Message, params SamplingParams) (any, error)

	// BuildRequest wraps a formatted body into an HTTP request with the
	// provider's auth headers applied.
	BuildRequest(ctx context.Context, endpoint, apiKey string, body any) (*http.Request, error)

	// ParseResponse normalizes a successful provider response body.
	ParseResponse(body []byte) (*types.ChatResult, error)

	// MapError converts a provider error response into a standardized error.
	MapError(model string, statusCode int, body []byte) error
}
