package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelab/journal-insights/pkg/types"
)

// TestSimulateDayDrawdown_RollbackOnBreach tests the stop rule: the breaching
// trade's PnL is rolled back and the day ends at the preceding level
func TestSimulateDayDrawdown_RollbackOnBreach(t *testing.T) {
	// cum: 100, 80 (20% dd), 30 (70% dd breaches 50%)
	trades := []types.Trade{
		tradeAt(0, 0, 2, 100, 1),
		tradeAt(0, 5, 2, -20, 1),
		tradeAt(0, 10, 2, -50, 1),
	}

	r := SimulateDayDrawdown(trades, 50)
	assert.True(t, r.Stopped)
	assert.InDelta(t, 80.0, r.FinalPnL, 1e-9)
	assert.Equal(t, 2, r.TradesTaken)
	assert.InDelta(t, 100.0, r.Peak, 1e-9)
}

// TestSimulateDayDrawdown_StrictInequality tests that a drawdown exactly at
// the threshold does not stop the day
func TestSimulateDayDrawdown_StrictInequality(t *testing.T) {
	// cum: 100, 50: exactly 50% drawdown
	trades := []types.Trade{
		tradeAt(0, 0, 2, 100, 1),
		tradeAt(0, 5, 2, -50, 1),
	}

	r := SimulateDayDrawdown(trades, 50)
	assert.False(t, r.Stopped)
	assert.InDelta(t, 50.0, r.FinalPnL, 1e-9)
	assert.Equal(t, 2, r.TradesTaken)
}

// TestSimulateDayDrawdown_NegativeStart tests that a day that never turns
// positive keeps its zero peak and never divides by it
func TestSimulateDayDrawdown_NegativeStart(t *testing.T) {
	trades := []types.Trade{
		tradeAt(0, 0, 2, -10, 1),
		tradeAt(0, 5, 2, -5, 1),
	}

	r := SimulateDayDrawdown(trades, 20)
	assert.False(t, r.Stopped)
	assert.InDelta(t, -15.0, r.FinalPnL, 1e-9)
	assert.Equal(t, 0.0, r.Peak)
}

// TestDrawdownCurve_FullThresholdMatchesUnrestricted tests that the 100%
// threshold reproduces the unrestricted total while tight thresholds can
// beat it by dodging late losses
func TestDrawdownCurve_FullThresholdMatchesUnrestricted(t *testing.T) {
	groups := []types.DailyGroup{
		dayOf(0, tradeAt(0, 0, 2, 100, 1), tradeAt(0, 5, 2, -60, 1), tradeAt(0, 10, 2, 30, 1)),
		dayOf(1, tradeAt(1, 0, 2, 40, 1), tradeAt(1, 5, 2, -10, 1)),
	}
	unrestricted := 0.0
	for _, g := range groups {
		unrestricted += g.TotalPnL()
	}

	points := DrawdownCurve(groups, DrawdownOptions{})
	require.Len(t, points, 20)

	last := points[len(points)-1]
	assert.Equal(t, 100.0, last.Pct)
	assert.InDelta(t, unrestricted, last.TotalPnL, 1e-9)

	// 5%: both days stop before their losers, keeping 100 and 40
	assert.Equal(t, 5.0, points[0].Pct)
	assert.InDelta(t, 140.0, points[0].TotalPnL, 1e-9)
	assert.Greater(t, points[0].TotalPnL, unrestricted)
}

// TestDrawdownCurve_OnlyPositiveDays tests the positive-day filter
func TestDrawdownCurve_OnlyPositiveDays(t *testing.T) {
	winner := dayOf(0, tradeAt(0, 0, 2, 50, 1), tradeAt(0, 5, 2, 10, 1))
	loser := dayOf(1, tradeAt(1, 0, 2, -30, 1), tradeAt(1, 5, 2, -10, 1))

	points := DrawdownCurve([]types.DailyGroup{winner, loser}, DrawdownOptions{OnlyPositiveDays: true})
	last := points[len(points)-1]
	assert.InDelta(t, 60.0, last.TotalPnL, 1e-9)
}

// TestOptimalDrawdownPerDay_TiesKeepLowest tests the per-day optimum and the
// lowest-threshold tie rule
func TestOptimalDrawdownPerDay_TiesKeepLowest(t *testing.T) {
	// stopping early beats riding out the late loss
	g := dayOf(0, tradeAt(0, 0, 2, 100, 1), tradeAt(0, 5, 2, -80, 1), tradeAt(0, 10, 2, 10, 1))

	optima := OptimalDrawdownPerDay([]types.DailyGroup{g})
	require.Len(t, optima, 1)
	o := optima[0]
	assert.Equal(t, 5.0, o.OptimalPct)
	assert.InDelta(t, 100.0, o.FinalPnL, 1e-9)
	assert.Equal(t, 1, o.TradesTaken)
	assert.InDelta(t, 30.0, o.UnrestrictedPnL, 1e-9)
	assert.Equal(t, 3, o.TotalTrades)
}

// TestDrawdownThresholds_Grid tests the 5% sweep grid endpoints
func TestDrawdownThresholds_Grid(t *testing.T) {
	thresholds := DrawdownThresholds()
	require.Len(t, thresholds, 20)
	assert.Equal(t, 5.0, thresholds[0])
	assert.Equal(t, 100.0, thresholds[19])
}
