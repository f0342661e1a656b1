// Package ingest reads broker journal exports and normalizes them onto the
// canonical Fill and Trade records. All schema decisions happen here: analysis
// code downstream never inspects which profit column an export carried.
package ingest

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

const component = "ingest"

// TimeLayout is the timestamp format used by the supported journal exports.
const TimeLayout = "02.01.2006 15:04:05"

// fillColumns are the required TradingView order-export headers.
var fillColumns = []string{"Symbol", "Side", "Qty", "Fill Price", "Status", "Placing Time"}

// journalColumns are the required headers of an already-paired journal export.
var journalColumns = []string{
	"Instrument", "Open time", "Close time",
	"Open price", "Close price", "Open volume", "Close volume",
}

// headerIndex maps column names to their positions, trimming whitespace.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func requireColumns(idx map[string]int, required []string, op string) error {
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return apperrors.Newf(apperrors.CategoryInputSchema, component, op,
				"missing required column %q", col)
		}
	}
	return nil
}

// ReadTradingViewCSV parses a TradingView order export into signed fills.
// Only rows with Status "Filled" are kept; Side decides the quantity sign.
func ReadTradingViewCSV(path string) ([]types.Fill, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInputSchema, component, "ReadTradingViewCSV")
	}
	defer file.Close()
	return parseTradingView(csv.NewReader(file))
}

func parseTradingView(reader *csv.Reader) ([]types.Fill, error) {
	const op = "ReadTradingViewCSV"

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInputSchema, component, op)
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, fillColumns, op); err != nil {
		return nil, err
	}

	var fills []types.Fill
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.CategoryInputSchema, component, op,
				"line %d", line+1)
		}
		line++

		if strings.TrimSpace(record[idx["Status"]]) != "Filled" {
			continue
		}

		qty, err := parseFloat(record[idx["Qty"]], "Qty", line, op)
		if err != nil {
			return nil, err
		}
		price, err := parseFloat(record[idx["Fill Price"]], "Fill Price", line, op)
		if err != nil {
			return nil, err
		}
		placed, err := parseTime(record[idx["Placing Time"]], "Placing Time", line, op)
		if err != nil {
			return nil, err
		}

		if strings.EqualFold(strings.TrimSpace(record[idx["Side"]]), "sell") {
			qty = -qty
		}

		fills = append(fills, types.Fill{
			Instrument: strings.TrimSpace(record[idx["Symbol"]]),
			Time:       placed,
			Quantity:   qty,
			Price:      price,
			Status:     "Filled",
		})
	}
	return fills, nil
}

// ReadJournalCSV parses an already-paired journal export (ATAS style) into
// trades. The canonical PnL comes from "Price PnL" when present, otherwise
// "PnL", otherwise "Profit (ticks)".
func ReadJournalCSV(path string) ([]types.Trade, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInputSchema, component, "ReadJournalCSV")
	}
	defer file.Close()
	return parseJournal(csv.NewReader(file))
}

func parseJournal(reader *csv.Reader) ([]types.Trade, error) {
	const op = "ReadJournalCSV"

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInputSchema, component, op)
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, journalColumns, op); err != nil {
		return nil, err
	}

	pnlCol, ok := pickPnLColumn(idx)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryInputSchema, component, op,
			"no profit column found (need Price PnL, PnL or Profit (ticks))")
	}

	var trades []types.Trade
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.CategoryInputSchema, component, op,
				"line %d", line+1)
		}
		line++

		t, err := journalTrade(record, idx, pnlCol, line, op)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func journalTrade(record []string, idx map[string]int, pnlCol string, line int, op string) (types.Trade, error) {
	openTime, err := parseTime(record[idx["Open time"]], "Open time", line, op)
	if err != nil {
		return types.Trade{}, err
	}
	closeTime, err := parseTime(record[idx["Close time"]], "Close time", line, op)
	if err != nil {
		return types.Trade{}, err
	}
	openPrice, err := parseFloat(record[idx["Open price"]], "Open price", line, op)
	if err != nil {
		return types.Trade{}, err
	}
	closePrice, err := parseFloat(record[idx["Close price"]], "Close price", line, op)
	if err != nil {
		return types.Trade{}, err
	}
	openVolume, err := parseFloat(record[idx["Open volume"]], "Open volume", line, op)
	if err != nil {
		return types.Trade{}, err
	}
	closeVolume, err := parseFloat(record[idx["Close volume"]], "Close volume", line, op)
	if err != nil {
		return types.Trade{}, err
	}
	pnl, err := parseFloat(record[idx[pnlCol]], pnlCol, line, op)
	if err != nil {
		return types.Trade{}, err
	}

	t := types.Trade{
		Instrument:      strings.TrimSpace(record[idx["Instrument"]]),
		OpenTime:        openTime,
		CloseTime:       closeTime,
		OpenPrice:       openPrice,
		ClosePrice:      closePrice,
		OpenVolume:      openVolume,
		CloseVolume:     closeVolume,
		PeakNetPosition: math.Abs(openVolume),
		PnL:             pnl,
	}
	if col, ok := idx["Account"]; ok {
		t.Account = strings.TrimSpace(record[col])
	}
	if col, ok := idx["Profit (ticks)"]; ok {
		if ticks, err := parseFloat(record[col], "Profit (ticks)", line, op); err == nil {
			t.TickPnL = ticks
		}
	}
	if col, ok := idx["Commission"]; ok {
		if commission, err := parseFloat(record[col], "Commission", line, op); err == nil {
			t.Commission = commission
		}
	}
	return t, nil
}

// pickPnLColumn resolves which export column feeds the canonical PnL field.
func pickPnLColumn(idx map[string]int) (string, bool) {
	for _, col := range []string{"Price PnL", "PnL", "Profit (ticks)"} {
		if _, ok := idx[col]; ok {
			return col, true
		}
	}
	return "", false
}

func parseFloat(raw, column string, line int, op string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperrors.Newf(apperrors.CategoryInputSchema, component, op,
			"invalid %s %q at line %d", column, raw, line)
	}
	return v, nil
}

func parseTime(raw, column string, line int, op string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.Newf(apperrors.CategoryInputSchema, component, op,
			"invalid %s %q at line %d (expected %s)", column, raw, line, TimeLayout)
	}
	return t, nil
}
