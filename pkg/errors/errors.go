// Package errors defines unified error types for bot chat operations.
// All provider-specific failures are mapped to these standard error types
// at the turn boundary.
package errors

import (
	stderrors "errors"
	"fmt"
)

// BotError represents a standardized error from a chat or image turn.
// It carries enough context for logging and for the UI layer to decide
// what to surface.
type BotError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

// Error implements the error interface.
func (e *BotError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s (provider=%s, model=%s)", e.Type, e.Message, e.Provider, e.Model)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Error types as constants for consistency.
const (
	TypeUnsupportedModel  = "unsupported_model"
	TypeMissingCredential = "missing_credential"
	TypeProvider          = "provider_error"
	TypeTransport         = "transport_error"
	TypeTimeout           = "timeout_error"
)

// NewUnsupportedModelError reports a model identifier with no registered
// provider profile. Surfaced immediately, no request is attempted.
func NewUnsupportedModelError(model string) *BotError {
	return &BotError{
		Type:    TypeUnsupportedModel,
		Message: fmt.Sprintf("model %q is not supported", model),
		Model:   model,
	}
}

// NewMissingCredentialError reports an absent API key for the provider the
// configured model requires. Surfaced before any network call.
func NewMissingCredentialError(provider, model string) *BotError {
	return &BotError{
		Type:     TypeMissingCredential,
		Message:  fmt.Sprintf("no API key configured for provider %q", provider),
		Provider: provider,
		Model:    model,
	}
}

// NewProviderError reports an error payload or non-success status returned
// by a provider.
func NewProviderError(provider, model string, statusCode int, message string) *BotError {
	return &BotError{
		Type:       TypeProvider,
		Message:    message,
		Provider:   provider,
		Model:      model,
		StatusCode: statusCode,
	}
}

// NewTransportError reports a network-level failure reaching a provider.
func NewTransportError(provider, model string, err error) *BotError {
	return &BotError{
		Type:     TypeTransport,
		Message:  err.Error(),
		Provider: provider,
		Model:    model,
	}
}

// NewTimeoutError reports a bounded wait that exceeded its ceiling.
func NewTimeoutError(provider, message string) *BotError {
	return &BotError{
		Type:     TypeTimeout,
		Message:  message,
		Provider: provider,
	}
}

// IsType reports whether err is a BotError of the given type.
func IsType(err error, errType string) bool {
	var be *BotError
	if stderrors.As(err, &be) {
		return be.Type == errType
	}
	return false
}
