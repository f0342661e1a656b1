package partition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

func trade(day, openMin, durMin int, pnl float64) types.Trade {
	open := time.Date(2025, 3, 10+day, 10, 0, 0, 0, time.UTC).Add(time.Duration(openMin) * time.Minute)
	return types.Trade{
		Instrument: "NQ",
		OpenTime:   open,
		CloseTime:  open.Add(time.Duration(durMin) * time.Minute),
		OpenVolume: 1,
		PnL:        pnl,
	}
}

// TestGroupByDay_SortsDaysAndTrades tests calendar grouping and ordering
func TestGroupByDay_SortsDaysAndTrades(t *testing.T) {
	trades := []types.Trade{
		trade(1, 30, 2, 5),
		trade(0, 10, 2, 1),
		trade(1, 0, 2, -2),
		trade(0, 40, 2, 3),
	}

	p := GroupByDay(trades, FullDay)
	require.Len(t, p.Groups, 2)
	assert.Equal(t, 4, p.TotalTrades)
	assert.Equal(t, 2, p.TotalDays)

	assert.True(t, p.Groups[0].Date.Before(p.Groups[1].Date))
	day2 := p.Groups[1]
	assert.True(t, day2.Trades[0].OpenTime.Before(day2.Trades[1].OpenTime))
}

// TestGroupByDay_SessionWindowFilters tests the time-of-day inclusion window
func TestGroupByDay_SessionWindowFilters(t *testing.T) {
	early := trade(0, 0, 2, 1)   // 10:00
	late := trade(0, 300, 2, 2) // 15:00
	window := SessionWindow{Start: 14 * time.Hour, End: 16 * time.Hour}

	p := GroupByDay([]types.Trade{early, late}, window)
	require.Len(t, p.Groups, 1)
	require.Len(t, p.Groups[0].Trades, 1)
	assert.Equal(t, 2.0, p.Groups[0].Trades[0].PnL)
}

// TestActiveGroups_ExcludesSingleTradeDays tests that one-trade days stay in
// the totals but out of the active set
func TestActiveGroups_ExcludesSingleTradeDays(t *testing.T) {
	trades := []types.Trade{
		trade(0, 0, 2, 1),
		trade(1, 0, 2, 2),
		trade(1, 10, 2, 3),
	}

	p := GroupByDay(trades, FullDay)
	assert.Equal(t, 3, p.TotalTrades)
	assert.Equal(t, 2, p.TotalDays)

	active := p.ActiveGroups()
	require.Len(t, active, 1)
	assert.Len(t, active[0].Trades, 2)
	assert.InDelta(t, 5.0, p.UnrestrictedPnL(), 1e-9)
}

// TestBuildGaps_TimeDistance tests the canonical 210-second gap: close at
// 10:00:00, next open at 10:03:30
func TestBuildGaps_TimeDistance(t *testing.T) {
	first := trade(0, 0, 0, 10) // opens and closes 10:00:00
	second := trade(0, 3, 1, -4)
	// shift the second open to 10:03:30
	second.OpenTime = second.OpenTime.Add(30 * time.Second)

	gaps, err := BuildGaps([]types.DailyGroup{{
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Trades: []types.Trade{first, second},
	}})
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.InDelta(t, 210.0, gaps[0].TimeDistance, 1e-9)
	assert.Equal(t, -4.0, gaps[0].PnL)
	assert.False(t, gaps[0].Win)
}

// TestBuildGaps_NegativeGapFails tests that a pair overlap after the
// (close, open) re-sort is a data-integrity failure
func TestBuildGaps_NegativeGapFails(t *testing.T) {
	first := trade(0, 0, 10, 1) // closes 10:10
	second := trade(0, 2, 20, 2)
	second.CloseTime = second.OpenTime.Add(20 * time.Minute)

	_, err := BuildGaps([]types.DailyGroup{{
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Trades: []types.Trade{first, second},
	}})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryDataIntegrity))
}

// TestBuildGaps_SkipsSingleTradeDays tests that lone trades emit no pairs
func TestBuildGaps_SkipsSingleTradeDays(t *testing.T) {
	gaps, err := BuildGaps([]types.DailyGroup{{
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Trades: []types.Trade{trade(0, 0, 2, 1)},
	}})
	require.NoError(t, err)
	assert.Empty(t, gaps)
}

// TestBuildSessionFeatures_WalkForward tests that every running statistic
// only uses trades strictly before the current one
func TestBuildSessionFeatures_WalkForward(t *testing.T) {
	groups := GroupByDay([]types.Trade{
		trade(0, 0, 2, 10),
		trade(0, 10, 4, -5),
		trade(0, 20, 2, 3),
	}, FullDay).Groups

	features := BuildSessionFeatures(groups)
	require.Len(t, features, 3)

	first := features[0]
	assert.Equal(t, 0, first.TradesSoFar)
	assert.Equal(t, 0.0, first.CumulativePnL)
	assert.Equal(t, 0.0, first.RunningWinRate)

	third := features[2]
	assert.Equal(t, 2, third.TradesSoFar)
	assert.InDelta(t, 5.0, third.CumulativePnL, 1e-9)
	assert.InDelta(t, 50.0, third.RunningWinRate, 1e-9)
	assert.InDelta(t, 20.0, third.MinutesSinceOpen, 1e-9)
	// opened 10:20, previous closed 10:14
	assert.InDelta(t, 360.0, third.SecondsSinceLast, 1e-9)
}

// TestBuildSessionFeatures_PrevDayPnL tests day-boundary carryover
func TestBuildSessionFeatures_PrevDayPnL(t *testing.T) {
	groups := GroupByDay([]types.Trade{
		trade(0, 0, 2, 7),
		trade(0, 10, 2, -2),
		trade(1, 0, 2, 1),
	}, FullDay).Groups

	features := BuildSessionFeatures(groups)
	require.Len(t, features, 3)
	assert.Equal(t, 0.0, features[0].PrevDayPnL)
	assert.InDelta(t, 5.0, features[2].PrevDayPnL, 1e-9)
}

// TestSplitByLastDay tests the train/inference split
func TestSplitByLastDay(t *testing.T) {
	groups := GroupByDay([]types.Trade{
		trade(0, 0, 2, 1),
		trade(0, 10, 2, 2),
		trade(1, 0, 2, 3),
	}, FullDay).Groups

	split := SplitByLastDay(BuildSessionFeatures(groups))
	assert.Len(t, split.Train, 2)
	assert.Len(t, split.Inference, 1)
}
