package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

func journalTrade(day, openMin, durMin int, pnl, volume float64) types.Trade {
	open := time.Date(2025, 3, 10+day, 15, 0, 0, 0, time.UTC).Add(time.Duration(openMin) * time.Minute)
	return types.Trade{
		Instrument: "NQ",
		OpenTime:   open,
		CloseTime:  open.Add(time.Duration(durMin) * time.Minute),
		OpenVolume: volume,
		PnL:        pnl,
	}
}

// lateLossJournal builds two days that each peak early and give most of it
// back late, so a tight drawdown stop beats trading through.
func lateLossJournal() []types.Trade {
	var trades []types.Trade
	for day := 0; day < 2; day++ {
		trades = append(trades,
			journalTrade(day, 0, 2, 60, 2),
			journalTrade(day, 10, 3, 40, 1),
			journalTrade(day, 25, 2, -70, 3),
			journalTrade(day, 40, 4, -20, 2),
			journalTrade(day, 55, 2, 15, 1),
		)
	}
	return trades
}

// TestAnalyze_LateLossJournal tests the full pipeline end to end: every
// recommendation topic is populated, the drawdown optimum stops before the
// late losses, and the stage timings are recorded
func TestAnalyze_LateLossJournal(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.CooldownMaxSeconds = 600
	cfg.Workers = 2
	eng, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	res, err := eng.Analyze(context.Background(), lateLossJournal())
	require.NoError(t, err)

	assert.Equal(t, 10, res.TotalTrades)
	assert.Equal(t, 2, res.TotalDays)
	assert.InDelta(t, 50.0, res.UnrestrictedPnL, 1e-9)

	require.NotNil(t, res.Recommendations.Drawdown)
	dd := res.Recommendations.Drawdown
	assert.Less(t, dd.Percentage, 100.0)
	assert.Greater(t, dd.OptimalPnL, res.UnrestrictedPnL)
	assert.Equal(t, 2, dd.SampleSize)

	require.NotNil(t, res.Recommendations.Break)
	assert.GreaterOrEqual(t, res.Recommendations.Break.Seconds, 0.0)

	require.NotNil(t, res.Recommendations.MaxTrades)
	assert.InDelta(t, 5.0, res.Recommendations.MaxTrades.CurrentAvgTradesPerDay, 1e-9)

	require.NotNil(t, res.Recommendations.TradingHours)
	require.NotNil(t, res.Recommendations.Volume)

	require.NotNil(t, res.Recommendations.BreakPareto)
	assert.NotEmpty(t, res.Recommendations.BreakPareto.Front)
	assert.Len(t, res.Recommendations.BreakPareto.AllResults, 41) // 0..600 by 15s

	require.NotNil(t, res.Plots.DrawdownCurve)
	require.NotNil(t, res.Plots.CooldownCurve)
	require.NotNil(t, res.Plots.PeakTimes)
	assert.Len(t, res.Gaps, 8)

	assert.Greater(t, res.Timings.Total, time.Duration(0))
	assert.Len(t, res.SessionFeatures.Train, 5)
	assert.Len(t, res.SessionFeatures.Inference, 5)
	assert.Len(t, res.SegmentationFeatures, 10)
}

// TestAnalyze_InsufficientData tests that a journal with no multi-trade day
// aborts with the insufficient-data category
func TestAnalyze_InsufficientData(t *testing.T) {
	eng, err := New(DefaultRunConfig(), zerolog.Nop())
	require.NoError(t, err)

	_, err = eng.Analyze(context.Background(), []types.Trade{
		journalTrade(0, 0, 2, 10, 1),
		journalTrade(1, 0, 2, -5, 1),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInsufficientData))
}

// TestAnalyze_SessionWindowNarrows tests that the session filter shrinks the
// analyzed trade set
func TestAnalyze_SessionWindowNarrows(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.SessionStart = 15 * time.Hour
	cfg.SessionEnd = 15*time.Hour + 30*time.Minute
	cfg.CooldownMaxSeconds = 300
	eng, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	res, err := eng.Analyze(context.Background(), lateLossJournal())
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalTrades) // 15:00, 15:10, 15:25 each day
}

// TestNew_RejectsInvalidConfig tests config validation at construction
func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.WindowMinutes = 0

	_, err := New(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInputSchema))
}

// TestRunConfig_DerivedCooldownMax tests the derived sweep cap floor
func TestRunConfig_DerivedCooldownMax(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.CooldownMaxSeconds = 0
	eng, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 600.0, eng.cooldownMax(nil))
}
