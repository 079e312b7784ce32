package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/pkg/types"
)

func TestFormatBodyFoldsSystemMessages(t *testing.T) {
	a := New()

	messages := []types.Message{
		{Role: types.RoleSystem, Content: "you are helpful"},
		{Role: types.RoleSystem, Content: "answer briefly"},
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: "hi"},
	}
	body, err := a.FormatBody(messages, provider.SamplingParams{
		Model:       "claude-3.5-sonnet",
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	req := body.(*anthropicRequest)
	assert.Equal(t, "you are helpful\nanswer briefly", req.System)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, anthropicMessage{Role: "user", Content: "hello"}, req.Messages[0])
	assert.Equal(t, anthropicMessage{Role: "assistant", Content: "hi"}, req.Messages[1])
}

func TestBuildRequestHeaders(t *testing.T) {
	a := New()
	body, err := a.FormatBody([]types.Message{{Role: types.RoleUser, Content: "hi"}},
		provider.SamplingParams{Model: "claude-3.5-haiku"})
	require.NoError(t, err)

	req, err := a.BuildRequest(context.Background(), DefaultEndpoint, "sk-ant-key", body)
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-key", req.Header.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", req.Header.Get("anthropic-version"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestParseResponseConcatenatesTextBlocks(t *testing.T) {
	a := New()

	result, err := a.ParseResponse([]byte(
		`{"content":[{"type":"text","text":"hello "},{"type":"text","text":"world"}],"stop_reason":"end_turn"}`))
	require.NoError(t, err)

	assert.Equal(t, "hello world", result.Message.Content)
	assert.Equal(t, types.RoleAssistant, result.Message.Role)
	assert.Nil(t, result.Usage)
}

func TestParseResponseNoContent(t *testing.T) {
	a := New()
	_, err := a.ParseResponse([]byte(`{"content":[]}`))
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	a := New()

	err := a.MapError("claude-3.5-sonnet", 429,
		[]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	assert.Contains(t, err.Error(), "slow down")
}
