// Package pricing computes usage cost from token counts and per-model
// rates, plus the flat prices charged for image generation.
package pricing

import "strings"

// Flat prices per generated image, in USD. Image generation is priced per
// output rather than per token.
const (
	DallEImagePrice     = 0.04
	ReplicateImagePrice = 0.01
)

// Rate describes the per-1000-token price for a model pattern.
// A trailing "*" in Model makes the entry a prefix match.
type Rate struct {
	Model     string
	CostPer1K float64
}

// Calculator resolves per-1K rates for models, supporting wildcard
// patterns the way gateway pricing tables do.
type Calculator struct {
	rates map[string]Rate
}

// NewCalculator creates a calculator from a rate table.
func NewCalculator(rates []Rate) *Calculator {
	c := &Calculator{rates: make(map[string]Rate, len(rates))}
	for _, r := range rates {
		c.rates[r.Model] = r
	}
	return c
}

// AddRate adds or replaces the rate for a model pattern.
func (c *Calculator) AddRate(r Rate) {
	c.rates[r.Model] = r
}

// Lookup resolves the per-1K rate for a model, honoring wildcard patterns.
func (c *Calculator) Lookup(model string) (float64, bool) {
	r, ok := c.findRate(model)
	if !ok {
		return 0, false
	}
	return r.CostPer1K, true
}

// TokenCost returns the cost of the given token count against the model's
// per-1K rate. Unknown models cost zero.
func (c *Calculator) TokenCost(model string, tokens int) float64 {
	rate, ok := c.findRate(model)
	if !ok {
		return 0
	}
	return float64(tokens) / 1000.0 * rate.CostPer1K
}

// ImageCost returns the flat price for one generated image on the given
// model. Replicate-backed styles share one price; DALL-E another.
func ImageCost(model string) float64 {
	if strings.HasPrefix(model, "replicate-") {
		return ReplicateImagePrice
	}
	return DallEImagePrice
}

// findRate resolves a model to a rate, preferring exact matches and then
// the longest wildcard prefix.
func (c *Calculator) findRate(model string) (Rate, bool) {
	modelLower := strings.ToLower(model)

	for pattern, r := range c.rates {
		if strings.EqualFold(pattern, model) {
			return r, true
		}
	}

	var best *Rate
	bestLen := 0
	for pattern, r := range c.rates {
		if !strings.HasSuffix(pattern, "*") {
			continue
		}
		prefix := strings.ToLower(strings.TrimSuffix(pattern, "*"))
		if strings.HasPrefix(modelLower, prefix) && len(prefix) > bestLen {
			rCopy := r
			best = &rCopy
			bestLen = len(prefix)
		}
	}
	if best != nil {
		return *best, true
	}
	return Rate{}, false
}
