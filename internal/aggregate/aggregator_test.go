package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

func fillAt(minute int, qty, price float64) types.Fill {
	return types.Fill{
		Instrument: "NQ",
		Time:       time.Date(2025, 3, 10, 15, minute, 0, 0, time.UTC),
		Quantity:   qty,
		Price:      price,
		Status:     "Filled",
	}
}

// TestBuildTrades_FlipClosesAndReopens tests the canonical flip sequence:
// +5@100, -8@105, +3@102 must produce two trades.
func TestBuildTrades_FlipClosesAndReopens(t *testing.T) {
	fills := []types.Fill{
		fillAt(0, 5, 100),
		fillAt(5, -8, 105),
		fillAt(10, 3, 102),
	}

	trades, err := BuildTrades(fills)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	long := trades[0]
	assert.Equal(t, 5.0, long.OpenVolume)
	assert.Equal(t, 100.0, long.OpenPrice)
	assert.Equal(t, 105.0, long.ClosePrice)
	assert.Equal(t, 5.0, long.PeakNetPosition)
	assert.InDelta(t, 25.0, long.PnL, 1e-9)

	short := trades[1]
	assert.Equal(t, -3.0, short.OpenVolume)
	assert.Equal(t, 105.0, short.OpenPrice)
	assert.Equal(t, 102.0, short.ClosePrice)
	assert.InDelta(t, 9.0, short.PnL, 1e-9)
}

// TestBuildTrades_FlatClose tests a simple open-then-close round trip
func TestBuildTrades_FlatClose(t *testing.T) {
	fills := []types.Fill{
		fillAt(0, 2, 50),
		fillAt(3, -2, 55),
	}

	trades, err := BuildTrades(fills)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.InDelta(t, 10.0, trades[0].PnL, 1e-9)
	assert.Equal(t, 2.0, trades[0].PeakNetPosition)
}

// TestBuildTrades_ScaleUpPeak tests that scaling into a position records the
// true peak net position
func TestBuildTrades_ScaleUpPeak(t *testing.T) {
	fills := []types.Fill{
		fillAt(0, 2, 100),
		fillAt(1, 3, 101),
		fillAt(2, -1, 103),
		fillAt(3, -4, 104),
	}

	trades, err := BuildTrades(fills)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, 5.0, trades[0].PeakNetPosition)
}

// TestBuildTrades_ShortRoundTrip tests a short trade's directional PnL
func TestBuildTrades_ShortRoundTrip(t *testing.T) {
	fills := []types.Fill{
		fillAt(0, -4, 200),
		fillAt(2, 4, 195),
	}

	trades, err := BuildTrades(fills)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, -4.0, trades[0].OpenVolume)
	assert.InDelta(t, 20.0, trades[0].PnL, 1e-9)
}

// TestBuildTrades_InstrumentsIsolated tests that fills never pair across
// instruments
func TestBuildTrades_InstrumentsIsolated(t *testing.T) {
	a := fillAt(0, 1, 100)
	b := fillAt(1, -1, 101)
	c := fillAt(0, 2, 50)
	d := fillAt(4, -2, 52)
	c.Instrument = "ES"
	d.Instrument = "ES"

	trades, err := BuildTrades([]types.Fill{a, c, b, d})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.NotEqual(t, trades[0].Instrument, trades[1].Instrument)
}

// TestBuildTrades_NonFinitePrice tests rejection of broken numeric input
func TestBuildTrades_NonFinitePrice(t *testing.T) {
	bad := fillAt(0, 1, 100)
	bad.Price = math.NaN()

	_, err := BuildTrades([]types.Fill{bad})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryDataIntegrity))
}

// TestBuildTrades_ZeroQuantity tests rejection of zero-quantity fills
func TestBuildTrades_ZeroQuantity(t *testing.T) {
	_, err := BuildTrades([]types.Fill{fillAt(0, 0, 100)})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryDataIntegrity))
}

// TestBuildTrades_OutOfOrderFills tests rejection of non-chronological fills
func TestBuildTrades_OutOfOrderFills(t *testing.T) {
	_, err := BuildTrades([]types.Fill{fillAt(5, 1, 100), fillAt(0, -1, 101)})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryDataIntegrity))
}
