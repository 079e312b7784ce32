package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewProviderError("openai", "gpt-4", 429, "rate limited")
	assert.Equal(t, "[provider_error] rate limited (provider=openai, model=gpt-4)", err.Error())

	err = NewUnsupportedModelError("made-up")
	assert.Equal(t, `[unsupported_model] model "made-up" is not supported`, err.Error())
}

func TestIsType(t *testing.T) {
	err := NewMissingCredentialError("anthropic", "claude-3.5-sonnet")

	assert.True(t, IsType(err, TypeMissingCredential))
	assert.False(t, IsType(err, TypeProvider))

	wrapped := fmt.Errorf("submit turn: %w", err)
	assert.True(t, IsType(wrapped, TypeMissingCredential))

	assert.False(t, IsType(fmt.Errorf("plain"), TypeMissingCredential))
	assert.False(t, IsType(nil, TypeMissingCredential))
}

func TestConstructorsSetFields(t *testing.T) {
	te := NewTransportError("cohere", "cohere-command", fmt.Errorf("dial tcp: refused"))
	assert.Equal(t, TypeTransport, te.Type)
	assert.Equal(t, "cohere", te.Provider)
	assert.Contains(t, te.Message, "refused")

	to := NewTimeoutError("replicate", "image generation timed out")
	assert.Equal(t, TypeTimeout, to.Type)
	assert.Empty(t, to.Model)
}
