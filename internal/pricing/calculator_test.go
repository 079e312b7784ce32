package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenCost(t *testing.T) {
	c := NewCalculator([]Rate{
		{Model: "gpt-4", CostPer1K: 0.03},
		{Model: "gpt-4*", CostPer1K: 0.01},
		{Model: "claude-*", CostPer1K: 0.015},
	})

	tests := []struct {
		name   string
		model  string
		tokens int
		want   float64
	}{
		{"exact match wins over wildcard", "gpt-4", 1000, 0.03},
		{"wildcard prefix", "gpt-4-turbo", 1000, 0.01},
		{"wildcard family", "claude-3.5-sonnet", 2000, 0.03},
		{"case insensitive", "GPT-4", 1000, 0.03},
		{"unknown model is free", "mistral-medium", 1000, 0},
		{"zero tokens", "gpt-4", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, c.TokenCost(tt.model, tt.tokens), 1e-9)
		})
	}
}

func TestLongestWildcardWins(t *testing.T) {
	c := NewCalculator([]Rate{
		{Model: "gpt-*", CostPer1K: 0.05},
		{Model: "gpt-4-*", CostPer1K: 0.02},
	})
	assert.InDelta(t, 0.02, c.TokenCost("gpt-4-turbo", 1000), 1e-9)
}

func TestAddRateReplaces(t *testing.T) {
	c := NewCalculator([]Rate{{Model: "m", CostPer1K: 0.1}})
	c.AddRate(Rate{Model: "m", CostPer1K: 0.2})
	assert.InDelta(t, 0.2, c.TokenCost("m", 1000), 1e-9)
}

func TestImageCost(t *testing.T) {
	assert.InDelta(t, 0.04, ImageCost("dall-e-3"), 1e-9)
	assert.InDelta(t, 0.01, ImageCost("replicate-realistic"), 1e-9)
	assert.InDelta(t, 0.01, ImageCost("replicate-anime"), 1e-9)
}
