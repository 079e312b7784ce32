package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Bluenot3/ZENGEN/internal/pricing"
	llmerrors "github.com/Bluenot3/ZENGEN/pkg/errors"
)

// Registry maps model identifiers to provider profiles and provider kinds
// to their adapters, and carries the rate table that prices usage events.
// Profiles can be swapped wholesale on configuration reload; adapters are
// fixed for the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	adapters map[Kind]Adapter
	rates    *pricing.Calculator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]Profile),
		adapters: make(map[Kind]Adapter),
		rates:    pricing.NewCalculator(nil),
	}
}

// RegisterAdapter registers the adapter for a provider kind.
// This is called once during initialization for each supported kind.
func (r *Registry) RegisterAdapter(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Kind()] = a
}

// Register adds a model profile. A model ID with a trailing "*" is a
// pricing-only pattern: it feeds the rate table and is never resolvable.
// For resolvable profiles the kind must have a registered adapter; the
// supported model set is closed and validated up front.
func (r *Registry) Register(p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ModelID == "" {
		return fmt.Errorf("profile: model id is required")
	}
	if p.CostPer1K < 0 {
		return fmt.Errorf("profile %q: cost_per_1k cannot be negative", p.ModelID)
	}

	if strings.HasSuffix(p.ModelID, "*") {
		r.rates.AddRate(pricing.Rate{Model: p.ModelID, CostPer1K: p.CostPer1K})
		return nil
	}

	if p.Endpoint == "" {
		return fmt.Errorf("profile %q: endpoint is required", p.ModelID)
	}
	if _, ok := r.adapters[p.Kind]; !ok {
		return fmt.Errorf("profile %q: unknown provider kind %q", p.ModelID, p.Kind)
	}

	r.profiles[p.ModelID] = p
	r.rates.AddRate(pricing.Rate{Model: p.ModelID, CostPer1K: p.CostPer1K})
	return nil
}

// Reload atomically replaces the full profile set and rate table. Used by
// the config hot-reload path; adapters are untouched. On error nothing is
// replaced.
func (r *Registry) Reload(profiles []Profile) error {
	next := make(map[string]Profile, len(profiles))
	rates := pricing.NewCalculator(nil)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range profiles {
		if strings.HasSuffix(p.ModelID, "*") {
			rates.AddRate(pricing.Rate{Model: p.ModelID, CostPer1K: p.CostPer1K})
			continue
		}
		if _, ok := r.adapters[p.Kind]; !ok {
			return fmt.Errorf("profile %q: unknown provider kind %q", p.ModelID, p.Kind)
		}
		next[p.ModelID] = p
		rates.AddRate(pricing.Rate{Model: p.ModelID, CostPer1K: p.CostPer1K})
	}
	r.profiles = next
	r.rates = rates
	return nil
}

// Resolve returns the profile for a model identifier.
func (r *Registry) Resolve(modelID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[modelID]
	if !ok {
		return Profile{}, llmerrors.NewUnsupportedModelError(modelID)
	}
	return p, nil
}

// Adapter returns the adapter for a provider kind.
func (r *Registry) Adapter(kind Kind) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[kind]
	return a, ok
}

// Models returns the registered model identifiers, sorted. Pricing-only
// patterns are not listed.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CostPer1K returns the per-1000-token rate for a model, preferring exact
// catalog entries and falling back to the longest wildcard pattern. Used by
// the usage ledger to price token events.
func (r *Registry) CostPer1K(modelID string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rates.Lookup(modelID)
}
