package ingest

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

// excelTimeLayouts are the timestamp formats seen in journal workbooks. ATAS
// sheets store "2006-01-02 15:04:05" while re-exported CSV-style sheets keep
// the dotted day-first layout.
var excelTimeLayouts = []string{TimeLayout, "2006-01-02 15:04:05"}

// ReadJournalExcel reads one journal sheet of an Excel workbook into trades,
// using the same schema rules as ReadJournalCSV. An empty sheet name selects
// the workbook's first sheet.
func ReadJournalExcel(path, sheet string) ([]types.Trade, error) {
	const op = "ReadJournalExcel"

	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInputSchema, component, op)
	}
	defer book.Close()

	if sheet == "" {
		sheet = book.GetSheetName(0)
	}
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CategoryInputSchema, component, op,
			"sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, apperrors.Newf(apperrors.CategoryInputSchema, component, op,
			"sheet %q is empty", sheet)
	}

	idx := headerIndex(rows[0])
	if err := requireColumns(idx, journalColumns, op); err != nil {
		return nil, err
	}
	pnlCol, ok := pickPnLColumn(idx)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryInputSchema, component, op,
			"no profit column found (need Price PnL, PnL or Profit (ticks))")
	}

	width := len(rows[0])
	var trades []types.Trade
	for line, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		// GetRows drops trailing empty cells; restore the header width.
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		t, err := journalTradeExcel(row, idx, pnlCol, line+2, op)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// journalTradeExcel parses one row, accepting either workbook time layout.
func journalTradeExcel(row []string, idx map[string]int, pnlCol string, line int, op string) (types.Trade, error) {
	openTime, err := parseExcelTime(row[idx["Open time"]], "Open time", line, op)
	if err != nil {
		return types.Trade{}, err
	}
	closeTime, err := parseExcelTime(row[idx["Close time"]], "Close time", line, op)
	if err != nil {
		return types.Trade{}, err
	}

	// Rewrite the timestamps into the canonical layout and reuse the CSV row
	// parser for everything else.
	normalized := make([]string, len(row))
	copy(normalized, row)
	normalized[idx["Open time"]] = openTime.Format(TimeLayout)
	normalized[idx["Close time"]] = closeTime.Format(TimeLayout)
	return journalTrade(normalized, idx, pnlCol, line, op)
}

func parseExcelTime(raw, column string, line int, op string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range excelTimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Newf(apperrors.CategoryInputSchema, component, op,
		"invalid %s %q at line %d", column, raw, line)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
