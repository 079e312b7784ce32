// Package cohere implements the Cohere provider adapter.
// API Reference: https://docs.cohere.com/reference/chat
package cohere

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

// DefaultEndpoint is the default Cohere chat endpoint.
const DefaultEndpoint = "https://api.cohere.ai/v1/chat"

// Adapter implements the Cohere Chat API protocol.
type Adapter struct{}

// New creates the Cohere adapter.
func New() *Adapter {
	return &Adapter{}
}

// Kind returns the provider kind this adapter serves.
func (a *Adapter) Kind() provider.Kind {
	return provider.KindCohere
}

type cohereRequest struct {
	Message     string              `json:"message"`
	ChatHistory []cohereHistoryTurn `json:"chat_history"`
	Model       string              `json:"model"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type cohereHistoryTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type cohereResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// FormatBody splits the conversation into Cohere's shape: the final turn
// becomes message, everything before it becomes chat_history with roles
// remapped to CHATBOT/USER. Original order is preserved.
func (a *Adapter) FormatBody(messages []types.Message, params provider.SamplingParams) (any, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("message list cannot be empty")
	}

	last := messages[len(messages)-1]
	history := make([]cohereHistoryTurn, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		role := "USER"
		if m.Role == types.RoleAssistant {
			role = "CHATBOT"
		}
		history = append(history, cohereHistoryTurn{Role: role, Message: m.Content})
	}

	return &cohereRequest{
		Message:     last.Content,
		ChatHistory: history,
		Model:       params.Model,
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

	return req, nil
}

// ParseResponse normalizes a Cohere chat response. Cohere does not report
// usage counts on this path, so Usage stays nil.
func (a *Adapter) ParseResponse(body []byte) (*types.ChatResult, error) {
	var resp cohereResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Text == "" {
		return nil, fmt.Errorf("response contains no text")
	}

	return &types.ChatResult{
		Message: types.Message{
			Role:    types.RoleAssistant,
			Content: resp.Text,
		},
	}, nil
}

// MapError converts a Cohere error payload to a standardized error.
func (a *Adapter) MapError(model string, statusCode int, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
	}

	message := "unknown error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	return llmerrors.NewProviderError(string(provider.KindCohere), model, statusCode, message)
}
