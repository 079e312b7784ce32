package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRates map[string]float64

func (f fixedRates) CostPer1K(model string) (float64, bool) {
	r, ok := f[model]
	return r, ok
}

func newTestLedger(rates RateSource) *Ledger {
	return NewLedger(rates, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
}

func TestRecordTokenEvents(t *testing.T) {
	l := newTestLedger(fixedRates{"gpt-4": 0.03})

	in := l.Record("gpt-4", 50, KindInput)
	out := l.Record("gpt-4", 20, KindOutput)

	assert.Equal(t, KindInput, in.Kind)
	assert.Equal(t, 50, in.Units)
	assert.InDelta(t, 0.0015, in.Cost, 1e-9)

	assert.Equal(t, KindOutput, out.Kind)
	assert.Equal(t, 20, out.Units)
	assert.InDelta(t, 0.0006, out.Cost, 1e-9)

	s := l.Summary()
	require.Len(t, s.History, 2)
	assert.Equal(t, 70, s.TotalUnits)
	assert.InDelta(t, 0.0021, s.TotalCost, 1e-9)
}

func TestRecordUnknownModelCostsZero(t *testing.T) {
	l := newTestLedger(fixedRates{})

	ev := l.Record("mystery-model", 1000, KindInput)
	assert.Zero(t, ev.Cost)
	assert.Equal(t, 1000, l.Summary().TotalUnits)
}

func TestRecordImageEventsUseFlatPrice(t *testing.T) {
	l := newTestLedger(fixedRates{})

	dalle := l.Record("dall-e-3", 1, KindImage)
	replicate := l.Record("replicate-realistic", 1, KindImage)

	assert.InDelta(t, 0.04, dalle.Cost, 1e-9)
	assert.InDelta(t, 0.01, replicate.Cost, 1e-9)

	s := l.Summary()
	assert.Equal(t, 2, s.TotalUnits)
	assert.InDelta(t, 0.05, s.TotalCost, 1e-9)
}

func TestSummaryTotalsMatchHistory(t *testing.T) {
	l := newTestLedger(fixedRates{"gpt-3.5-turbo": 0.002})

	for i := 0; i < 5; i++ {
		l.Record("gpt-3.5-turbo", 100, KindInput)
		l.Record("gpt-3.5-turbo", 40, KindOutput)
	}

	s := l.Summary()
	units, cost := 0, 0.0
	for _, ev := range s.History {
		units += ev.Units
		cost += ev.Cost
	}
	assert.Equal(t, s.TotalUnits, units)
	assert.InDelta(t, s.TotalCost, cost, 1e-9)
}

func TestSummaryReturnsCopy(t *testing.T) {
	l := newTestLedger(fixedRates{})
	l.Record("m", 1, KindInput)

	s := l.Summary()
	s.History[0].Units = 999

	assert.Equal(t, 1, l.Summary().History[0].Units)
}
