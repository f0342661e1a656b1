package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

func record(openMin, closeMin int, openVol, openPrice, closePrice, pnl float64) types.Trade {
	base := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	return types.Trade{
		Account:     "acct-1",
		Instrument:  "NQ",
		OpenTime:    base.Add(time.Duration(openMin) * time.Minute),
		CloseTime:   base.Add(time.Duration(closeMin) * time.Minute),
		OpenPrice:   openPrice,
		ClosePrice:  closePrice,
		OpenVolume:  openVol,
		CloseVolume: -openVol,
		PnL:         pnl,
		TickPnL:     pnl,
		Commission:  1,
	}
}

// TestMergeOverlapping_DisjointPassThrough tests that non-overlapping records
// survive unchanged apart from the derived peak position
func TestMergeOverlapping_DisjointPassThrough(t *testing.T) {
	records := []types.Trade{
		record(0, 5, 2, 100, 105, 10),
		record(10, 15, 3, 106, 104, -6),
	}

	merged, err := MergeOverlapping(records)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, 10.0, merged[0].PnL)
	assert.Equal(t, 2.0, merged[0].PeakNetPosition)
	assert.Equal(t, 3.0, merged[1].PeakNetPosition)
}

// TestMergeOverlapping_OverlapMergesAdditiveColumns tests that overlapping
// records sum PnL, ticks and commission
func TestMergeOverlapping_OverlapMergesAdditiveColumns(t *testing.T) {
	records := []types.Trade{
		record(0, 10, 2, 100, 110, 20),
		record(5, 8, 1, 102, 108, 6), // opens before the first closes
	}

	merged, err := MergeOverlapping(records)
	require.NoError(t, err)
	require.Len(t, merged, 1)

	m := merged[0]
	assert.InDelta(t, 26.0, m.PnL, 1e-9)
	assert.InDelta(t, 26.0, m.TickPnL, 1e-9)
	assert.InDelta(t, 2.0, m.Commission, 1e-9)
	assert.Equal(t, records[0].OpenTime, m.OpenTime)
	assert.Equal(t, records[0].CloseTime, m.CloseTime)
}

// TestMergeOverlapping_EventSweepPeak tests the concurrent-holding peak:
// both positions are open during [5m, 8m], so the peak is 3
func TestMergeOverlapping_EventSweepPeak(t *testing.T) {
	records := []types.Trade{
		record(0, 10, 2, 100, 110, 20),
		record(5, 8, 1, 102, 108, 6),
	}

	merged, err := MergeOverlapping(records)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, 3.0, merged[0].PeakNetPosition)
	assert.Equal(t, 3.0, merged[0].OpenVolume)
	assert.Equal(t, -3.0, merged[0].CloseVolume)
}

// TestMergeOverlapping_VolumeWeightedPrices tests the merged price averaging
func TestMergeOverlapping_VolumeWeightedPrices(t *testing.T) {
	records := []types.Trade{
		record(0, 10, 2, 100, 110, 20),
		record(5, 8, 2, 104, 112, 16),
	}

	merged, err := MergeOverlapping(records)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.InDelta(t, 102.0, merged[0].OpenPrice, 1e-9)
	assert.InDelta(t, 111.0, merged[0].ClosePrice, 1e-9)
}

// TestMergeOverlapping_ShortDirectionSign tests that a short group keeps its
// negative sign on the merged volume
func TestMergeOverlapping_ShortDirectionSign(t *testing.T) {
	records := []types.Trade{
		record(0, 10, -2, 100, 95, 10),
		record(5, 8, -1, 99, 96, 3),
	}

	merged, err := MergeOverlapping(records)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, -3.0, merged[0].OpenVolume)
	assert.Equal(t, 3.0, merged[0].PeakNetPosition)
}

// TestMergeOverlapping_SeparateAccounts tests that identical instruments in
// different accounts never merge
func TestMergeOverlapping_SeparateAccounts(t *testing.T) {
	a := record(0, 10, 2, 100, 110, 20)
	b := record(5, 8, 1, 102, 108, 6)
	b.Account = "acct-2"

	merged, err := MergeOverlapping([]types.Trade{a, b})
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

// TestMergeOverlapping_CloseBeforeOpen tests rejection of inverted intervals
func TestMergeOverlapping_CloseBeforeOpen(t *testing.T) {
	bad := record(10, 5, 2, 100, 105, 10)

	_, err := MergeOverlapping([]types.Trade{bad})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryDataIntegrity))
}
