package cohere

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bluenot3/ZENGEN/internal/provider"
	llmerrors "github.com/Bluenot3/ZENGEN/pkg/errors"
	"github.com/Bluenot3/ZENGEN/pkg/types"
)

func TestFormatBody(t *testing.T) {
	a := New()

	messages := []types.Message{
		{Role: types.RoleUser, Content: "first question"},
		{Role: types.RoleAssistant, Content: "first answer"},
		{Role: types.RoleUser, Content: "second question"},
	}
	body, err := a.FormatBody(messages, provider.SamplingParams{
		Model:       "cohere-command",
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	req := body.(*cohereRequest)
	assert.Equal(t, "second question", req.Message)
	require.Len(t, req.ChatHistory, 2)
	assert.Equal(t, cohereHistoryTurn{Role: "USER", Message: "first question"}, req.ChatHistory[0])
	assert.Equal(t, cohereHistoryTurn{Role: "CHATBOT", Message: "first answer"}, req.ChatHistory[1])
	assert.Equal(t, "cohere-command", req.Model)
}

func TestFormatBodySingleMessage(t *testing.T) {
	a := New()

	body, err := a.FormatBody([]types.Message{
		{Role: types.RoleUser, Content: "hello"},
	}, provider.SamplingParams{Model: "cohere-command"})
	require.NoError(t, err)

	req := body.(*cohereRequest)
	assert.Equal(t, "hello", req.Message)
	assert.Empty(t, req.ChatHistory)
}

func TestFormatBodyEmpty(t *testing.T) {
	a := New()
	_, err := a.FormatBody(nil, provider.SamplingParams{})
	assert.Error(t, err)
}

func TestBuildRequestAuth(t *testing.T) {
	a := New()
	body, err := a.FormatBody([]types.Message{{Role: types.RoleUser, Content: "hi"}},
		provider.SamplingParams{Model: "cohere-command"})
	require.NoError(t, err)

	req, err := a.BuildRequest(context.Background(), DefaultEndpoint, "test-key", body)
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestParseResponse(t *testing.T) {
	a := New()

	result, err := a.ParseResponse([]byte(`{"text":"a reply","finish_reason":"COMPLETE"}`))
	require.NoError(t, err)
	assert.Equal(t, types.RoleAssistant, result.Message.Role)
	assert.Equal(t, "a reply", result.Message.Content)
	assert.Nil(t, result.Usage)
}

func TestParseResponseEmptyText(t *testing.T) {
	a := New()
	_, err := a.ParseResponse([]byte(`{}`))
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	a := New()

	payload, _ := json.Marshal(map[string]string{"message": "invalid api token"})
	err := a.MapError("cohere-command", 401, payload)

	assert.True(t, llmerrors.IsType(err, llmerrors.TypeProvider))
	assert.Contains(t, err.Error(), "invalid api token")
}
