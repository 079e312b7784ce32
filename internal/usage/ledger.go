// Package usage tracks consumed tokens and derived cost per bot as an
// append-only event log with running totals.
package usage

import (
	"sync"
	"time"

	"github.com/Bluenot3/ZENGEN/internal/pricing"
)

// Kind classifies a usage event.
type Kind string

// Usage event kinds. Input and output are priced per 1000 tokens; image
// events carry a flat per-output price.
const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
	KindImage  Kind = "image"
)

// Event is one immutable usage record. Events are never mutated or
// reordered once appended.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Units     int       `json:"units"`
	Cost      float64   `json:"cost"`
	Kind      Kind      `json:"kind"`
}

// Summary is a point-in-time view of a ledger.
type Summary struct {
	TotalUnits int     `json:"total_units"`
	TotalCost  float64 `json:"total_cost"`
	History    []Event `json:"history"`
}

// RateSource resolves the per-1000-token rate for a model. The provider
// registry satisfies this.
type RateSource interface {
	CostPer1K(model string) (float64, bool)
}

// Ledger accumulates usage events for a single bot. Totals always equal
// the sum over the event history and never decrease.
type Ledger struct {
	mu         sync.Mutex
	rates      RateSource
	events     []Event
	totalUnits int
	totalCost  float64
	now        func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates an empty ledger pricing token events against rates.
func NewLedger(rates RateSource, opts ...Option) *Ledger {
	l := &Ledger{
		rates: rates,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends one usage event. Each call is a discrete, independently
// priced event: a turn that reports both input and output units produces
// two records. Token events use the model's per-1K rate; image events use
// the flat per-output price.
func (l *Ledger) Record(model string, units int, kind Kind) Event {
	var cost float64
	if kind == KindImage {
		cost = pricing.ImageCost(model)
	} else if rate, ok := l.rates.CostPer1K(model); ok {
		cost = float64(units) / 1000.0 * rate
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ev := Event{
		Timestamp: l.now(),
		Model:     model,
		Units:     units,
		Cost:      cost,
		Kind:      kind,
	}
	l.events = append(l.events, ev)
	l.totalUnits += units
	l.totalCost += cost
	return ev
}

// Summary returns the running totals and a copy of the event history.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	history := make([]Event, len(l.events))
	copy(history, l.events)
	return Summary{
		TotalUnits: l.totalUnits,
		TotalCost:  l.totalCost,
		History:    history,
	}
}
