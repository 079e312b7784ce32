// Package openai implements the OpenAI provider adapter.
// It serves as the reference wire shape for other adapters.
package openai

import (
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/provider/openailike"
)

// DefaultEndpoint is the default OpenAI chat completions endpoint.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// New creates the OpenAI adapter.
func New() provider.Adapter {
	return openailike.New(openailike.Info{Kind: provider.KindOpenAI})
}
