// Package openrouter implements the OpenRouter provider adapter.
// OpenRouter aggregates Bedrock-backed and other open models behind an
// OpenAI-compatible API, so the adapter reuses the shared implementation.
package openrouter

import (
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/provider/openailike"
)

// DefaultEndpoint is the default OpenRouter chat completions endpoint.
const DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// New creates the OpenRouter adapter.
func New() provider.Adapter {
	return openailike.New(openailike.Info{Kind: provider.KindOpenRouter})
}
