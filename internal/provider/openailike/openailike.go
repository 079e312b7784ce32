// Package openailike implements a shared adapter for providers that speak
// the OpenAI Chat Completion wire format. OpenAI itself and OpenRouter are
// thin wrappers over this implementation.
package openailike

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Bluenot3/ZENGEN/internal/provider"
	llmerrors "github.com/Bluenot3/ZENGEN/pkg/errors"
	"github.com/Bluenot3/ZENGEN/pkg/types"
)

// Info parameterizes the shared adapter for a specific provider.
type Info struct {
	Kind         provider.Kind
	ExtraHeaders map[string]string
}

// Adapter implements the OpenAI-compatible wire protocol.
type Adapter struct {
	info Info
}

// New creates an adapter for an OpenAI-compatible provider.
func New(info Info) *Adapter {
	return &Adapter{info: info}
}

// Kind returns the provider kind this adapter serves.
func (a *Adapter) Kind() provider.Kind {
	return a.info.Kind
}

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *types.Usage `json:"usage,omitempty"`
}

// FormatBody passes the message list through verbatim with the sampling
// parameters attached.
func (a *Adapter) FormatBody(messages []types.Message, params provider.SamplingParams) (any, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("message list cannot be empty")
	}
	return &chatRequest{
		Model:       params.Model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}, nil
}

// BuildRequest wraps the body with bearer-token auth.
func (a *Adapter) BuildRequest(ctx context.Context, endpoint, apiKey string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	for k, v := range a.info.ExtraHeaders {
		req.Header.Set(k, v)
	}

	return req, nil
}

// ParseResponse normalizes an OpenAI-compatible response.
func (a *Adapter) ParseResponse(body []byte) (*types.ChatResult, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contains no choices")
	}

	return &types.ChatResult{
		Message: types.Message{
			Role:    types.RoleAssistant,
			Content: resp.Choices[0].Message.Content,
		},
		Usage: resp.Usage,
	}, nil
}

// MapError converts an OpenAI-style error payload to a standardized error.
func (a *Adapter) MapError(model string, statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	message := "unknown error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return llmerrors.NewProviderError(string(a.info.Kind), model, statusCode, message)
}
