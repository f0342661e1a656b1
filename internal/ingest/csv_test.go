package ingest

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
)

func csvReader(rows ...string) *csv.Reader {
	return csv.NewReader(strings.NewReader(strings.Join(rows, "\n")))
}

// TestParseTradingView_SignsAndFilter tests the Filled filter and the sell
// quantity sign
func TestParseTradingView_SignsAndFilter(t *testing.T) {
	reader := csvReader(
		"Symbol,Side,Qty,Fill Price,Status,Placing Time",
		"NQZ5,Buy,2,18000.25,Filled,10.03.2025 15:00:00",
		"NQZ5,Sell,2,18010.50,Filled,10.03.2025 15:05:00",
		"NQZ5,Buy,1,18005.00,Cancelled,10.03.2025 15:06:00",
	)

	fills, err := parseTradingView(reader)
	require.NoError(t, err)
	require.Len(t, fills, 2)
	assert.Equal(t, 2.0, fills[0].Quantity)
	assert.Equal(t, -2.0, fills[1].Quantity)
	assert.Equal(t, "NQZ5", fills[0].Instrument)
	assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), fills[0].Time)
}

// TestParseTradingView_MissingColumn tests the schema check
func TestParseTradingView_MissingColumn(t *testing.T) {
	reader := csvReader(
		"Symbol,Side,Qty,Status,Placing Time",
		"NQZ5,Buy,2,Filled,10.03.2025 15:00:00",
	)

	_, err := parseTradingView(reader)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInputSchema))
	assert.Contains(t, err.Error(), "Fill Price")
}

// TestParseTradingView_BadTimestamp tests timestamp validation with the line
// number in the message
func TestParseTradingView_BadTimestamp(t *testing.T) {
	reader := csvReader(
		"Symbol,Side,Qty,Fill Price,Status,Placing Time",
		"NQZ5,Buy,2,18000.25,Filled,2025/03/10 15:00",
	)

	_, err := parseTradingView(reader)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInputSchema))
	assert.Contains(t, err.Error(), "Placing Time")
}

const journalHeader = "Account,Instrument,Open time,Close time,Open price,Close price,Open volume,Close volume,Profit (ticks),Price PnL,Commission"

// TestParseJournal_Row tests a full paired-journal row
func TestParseJournal_Row(t *testing.T) {
	reader := csvReader(
		journalHeader,
		"acct-1,NQZ5,10.03.2025 15:00:00,10.03.2025 15:04:30,18000.25,18010.50,2,-2,41,205.0,1.4",
	)

	trades, err := parseJournal(reader)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, "acct-1", tr.Account)
	assert.Equal(t, "NQZ5", tr.Instrument)
	assert.Equal(t, 205.0, tr.PnL)
	assert.Equal(t, 41.0, tr.TickPnL)
	assert.Equal(t, 1.4, tr.Commission)
	assert.Equal(t, 2.0, tr.PeakNetPosition)
	assert.Equal(t, 270.0, tr.CloseTime.Sub(tr.OpenTime).Seconds())
}

// TestParseJournal_PnLColumnPriority tests Price PnL > PnL > Profit (ticks)
func TestParseJournal_PnLColumnPriority(t *testing.T) {
	withPnL := csvReader(
		"Instrument,Open time,Close time,Open price,Close price,Open volume,Close volume,PnL,Profit (ticks)",
		"NQZ5,10.03.2025 15:00:00,10.03.2025 15:01:00,100,101,1,-1,50,4",
	)
	trades, err := parseJournal(withPnL)
	require.NoError(t, err)
	assert.Equal(t, 50.0, trades[0].PnL)

	ticksOnly := csvReader(
		"Instrument,Open time,Close time,Open price,Close price,Open volume,Close volume,Profit (ticks)",
		"NQZ5,10.03.2025 15:00:00,10.03.2025 15:01:00,100,101,1,-1,4",
	)
	trades, err = parseJournal(ticksOnly)
	require.NoError(t, err)
	assert.Equal(t, 4.0, trades[0].PnL)
}

// TestParseJournal_NoProfitColumn tests the missing-profit-column rejection
func TestParseJournal_NoProfitColumn(t *testing.T) {
	reader := csvReader(
		"Instrument,Open time,Close time,Open price,Close price,Open volume,Close volume",
		"NQZ5,10.03.2025 15:00:00,10.03.2025 15:01:00,100,101,1,-1",
	)

	_, err := parseJournal(reader)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInputSchema))
}

// TestParseJournal_BadNumber tests numeric validation
func TestParseJournal_BadNumber(t *testing.T) {
	reader := csvReader(
		journalHeader,
		"acct-1,NQZ5,10.03.2025 15:00:00,10.03.2025 15:04:30,18000.25,n/a,2,-2,41,205.0,1.4",
	)

	_, err := parseJournal(reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Close price")
}
