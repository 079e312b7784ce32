package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmerrors "github.com/Bluenot3/ZENGEN/pkg/errors"
	"github.com/Bluenot3/ZENGEN/pkg/types"
)

type stubAdapter struct{ kind Kind }

func (s stubAdapter) Kind() Kind { return s.kind }
func (s stubAdapter) FormatBody([]types.Message, SamplingParams) (any, error) {
	return nil, nil
}
func (s stubAdapter) BuildRequest(context.Context, string, string, any) (*http.Request, error) {
	return nil, nil
}
func (s stubAdapter) ParseResponse([]byte) (*types.ChatResult, error) { return nil, nil }
func (s stubAdapter) MapError(string, int, []byte) error              { return nil }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.RegisterAdapter(stubAdapter{kind: KindOpenAI})
	r.RegisterAdapter(stubAdapter{kind: KindAnthropic})
	return r
}

func TestRegisterAndResolve(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register(Profile{
		ModelID:   "gpt-4",
		Endpoint:  "https://api.openai.com/v1/chat/completions",
		Kind:      KindOpenAI,
		CostPer1K: 0.03,
	}))

	p, err := r.Resolve("gpt-4")
	require.NoError(t, err)
	assert.Equal(t, KindOpenAI, p.Kind)

	rate, ok := r.CostPer1K("gpt-4")
	assert.True(t, ok)
	assert.InDelta(t, 0.03, rate, 1e-9)
}

func TestResolveUnknownModel(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Resolve("made-up-model")
	require.Error(t, err)
	assert.True(t, llmerrors.IsType(err, llmerrors.TypeUnsupportedModel))
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name    string
		profile Profile
	}{
		{"missing id", Profile{Endpoint: "https://x", Kind: KindOpenAI}},
		{"missing endpoint", Profile{ModelID: "m", Kind: KindOpenAI}},
		{"negative cost", Profile{ModelID: "m", Endpoint: "https://x", Kind: KindOpenAI, CostPer1K: -1}},
		{"unregistered kind", Profile{ModelID: "m", Endpoint: "https://x", Kind: KindCohere}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.Register(tt.profile))
		})
	}
}

func TestReloadReplacesCatalog(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(Profile{ModelID: "old", Endpoint: "https://x", Kind: KindOpenAI}))

	require.NoError(t, r.Reload([]Profile{
		{ModelID: "new-a", Endpoint: "https://x", Kind: KindOpenAI},
		{ModelID: "new-b", Endpoint: "https://x", Kind: KindAnthropic},
	}))

	_, err := r.Resolve("old")
	assert.Error(t, err)
	assert.Equal(t, []string{"new-a", "new-b"}, r.Models())
}

func TestWildcardRatePatterns(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register(Profile{
		ModelID:   "gpt-4",
		Endpoint:  "https://api.openai.com/v1/chat/completions",
		Kind:      KindOpenAI,
		CostPer1K: 0.03,
	}))
	require.NoError(t, r.Register(Profile{ModelID: "gpt-4*", CostPer1K: 0.01}))

	// Exact catalog entries win over the pattern.
	rate, ok := r.CostPer1K("gpt-4")
	require.True(t, ok)
	assert.InDelta(t, 0.03, rate, 1e-9)

	// Variants without their own entry price through the pattern.
	rate, ok = r.CostPer1K("gpt-4-0613")
	require.True(t, ok)
	assert.InDelta(t, 0.01, rate, 1e-9)

	// Patterns are pricing-only: never resolvable, never listed.
	_, err := r.Resolve("gpt-4*")
	assert.Error(t, err)
	_, err = r.Resolve("gpt-4-0613")
	assert.Error(t, err)
	assert.Equal(t, []string{"gpt-4"}, r.Models())
}

func TestReloadReplacesRateTable(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(Profile{ModelID: "claude-*", CostPer1K: 0.015}))

	require.NoError(t, r.Reload([]Profile{
		{ModelID: "gpt-4", Endpoint: "https://x", Kind: KindOpenAI, CostPer1K: 0.03},
	}))

	_, ok := r.CostPer1K("claude-3.5-sonnet")
	assert.False(t, ok)
}

func TestReloadRejectsUnknownKind(t *testing.T) {
	r := newTestRegistry(t)
	err := r.Reload([]Profile{{ModelID: "m", Endpoint: "https://x", Kind: KindReplicate}})
	assert.Error(t, err)
}
