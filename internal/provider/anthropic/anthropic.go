// Package anthropic implements the Anthropic Claude provider adapter.
// It handles transformation between the internal conversation shape and
// Anthropic's Messages API.
package anthropic

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

const (
	// DefaultEndpoint is the default Anthropic Messages API endpoint.
	DefaultEndpoint = "https://api.anthropic.com/v1/messages"

	// APIVersion is the protocol version header value Anthropic requires.
	APIVersion = "2023-06-01"
)

// Adapter implements the Anthropic Messages API protocol.
type Adapter struct{}

// New creates the Anthropic adapter.
func New() *Adapter {
	return &Adapter{}
}

// Kind returns the provider kind this adapter serves.
func (a *Adapter) Kind() provider.Kind {
	return provider.KindAnthropic
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// FormatBody maps messages to Anthropic's vocabulary: system messages are
// folded into the top-level system field, and every remaining role other
// than assistant becomes user.
func (a *Adapter) FormatBody(messages []types.Message, params provider.SamplingParams) (any, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("message list cannot be empty")
	}

	req := &anthropicRequest{
		Model:       params.Model,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	for _, m := range messages {
		if m.Role == types.RoleSystem {
			if req.System != "" {
				req.System += "\n"
			}
			req.System += m.Content
			continue
		}

		role := "user"
		if m.Role == types.RoleAssistant {
			role = "assistant"
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: role, Content: m.Content})
	}

	return req, nil
}

// BuildRequest applies Anthropic's dedicated key and version headers.
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
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", APIVersion)

	return req, nil
}

// ParseResponse normalizes an Anthropic Messages response. Anthropic does
// not report usage counts on this path, so Usage stays nil and the turn
// produces no ledger entries.
func (a *Adapter) ParseResponse(body []byte) (*types.ChatResult, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("response contains no content blocks")
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			text += block.Text
		}
	}

	return &types.ChatResult{
		Message: types.Message{
			Role:    types.RoleAssistant,
			Content: text,
		},
	}, nil
}

// MapError converts an Anthropic error payload to a standardized error.
func (a *Adapter) MapError(model string, statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	message := "unknown error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return llmerrors.NewProviderError(string(provider.KindAnthropic), model, statusCode, message)
}
