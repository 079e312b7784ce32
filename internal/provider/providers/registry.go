// Package providers wires every built-in adapter into a registry.
// It exists so callers get a fully populated registry without importing
// each adapter package themselves.
package providers

import (
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/provider/anthropic"
	"github.com/Bluenot3/ZENGEN/internal/provider/cohere"
	"github.com/Bluenot3/ZENGEN/internal/provider/openai"
	"github.com/Bluenot3/ZENGEN/internal/provider/openrouter"
)

// NewRegistry returns a registry with all built-in adapters registered and
// the given model profiles loaded.
func NewRegistry(profiles []provider.Profile) (*provider.Registry, error) {
	r := provider.NewRegistry()
	r.RegisterAdapter(openai.New())
	r.RegisterAdapter(openrouter.New())
	r.RegisterAdapter(anthropic.New())
	r.RegisterAdapter(cohere.New())

	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}
