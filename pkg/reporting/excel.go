package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tradelab/journal-insights/internal/engine"
	"github.com/tradelab/journal-insights/internal/partition"
	"github.com/tradelab/journal-insights/pkg/types"
)

// ExcelReporter writes the analysis workbook: one sheet per artifact.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// ExcelStyles holds the style IDs used across sheets
type ExcelStyles struct {
	HeaderStyle int
	NumberStyle int
}

// WriteWorkbook writes trades, gaps and the recommendation summary to an
// Excel workbook at path.
func (r *ExcelReporter) WriteWorkbook(res *engine.Result, trades []types.Trade, gaps []partition.GapRecord, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const gapsSheet = "Gaps"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	fx.NewSheet(gapsSheet)
	fx.NewSheet(summarySheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, trades, styles); err != nil {
		return err
	}
	if err := r.writeGapsSheet(fx, gapsSheet, gaps, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, res, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 2,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	return styles, err
}

func (r *ExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, trades []types.Trade, styles ExcelStyles) error {
	headers := []interface{}{
		"Account", "Instrument", "Open time", "Close time",
		"Open price", "Close price", "Open volume", "Peak position",
		"PnL", "Ticks", "Commission",
	}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "K1", styles.HeaderStyle); err != nil {
		return err
	}

	for i, t := range trades {
		row := []interface{}{
			t.Account, t.Instrument,
			t.OpenTime.Format("02.01.2006 15:04:05"),
			t.CloseTime.Format("02.01.2006 15:04:05"),
			t.OpenPrice, t.ClosePrice, t.OpenVolume, t.PeakNetPosition,
			t.PnL, t.TickPnL, t.Commission,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (r *ExcelReporter) writeGapsSheet(fx *excelize.File, sheet string, gaps []partition.GapRecord, styles ExcelStyles) error {
	headers := []interface{}{"Day", "Gap (s)", "Holding (s)", "PnL", "Volume", "Win"}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "F1", styles.HeaderStyle); err != nil {
		return err
	}

	for i, g := range gaps {
		row := []interface{}{g.Day, g.TimeDistance, g.HoldingTime, g.PnL, g.Volume, g.Win}
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(gaps) > 0 {
		return fx.SetCellStyle(sheet, "B2", fmt.Sprintf("E%d", len(gaps)+1), styles.NumberStyle)
	}
	return nil
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, res *engine.Result, styles ExcelStyles) error {
	headers := []interface{}{"Metric", "Value"}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "B1", styles.HeaderStyle); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Trades analyzed", res.TotalTrades},
		{"Trading days", res.TotalDays},
		{"Unrestricted PnL", res.UnrestrictedPnL},
	}
	if b := res.Recommendations.Break; b != nil {
		rows = append(rows,
			[]interface{}{"Optimal break (min)", b.Minutes},
			[]interface{}{"Break potential gain", b.PotentialDollarGain},
		)
	}
	if d := res.Recommendations.Drawdown; d != nil {
		rows = append(rows,
			[]interface{}{"Optimal drawdown stop (%)", d.Percentage},
			[]interface{}{"Drawdown potential gain", d.PotentialDollarGain},
		)
	}
	if m := res.Recommendations.MaxTrades; m != nil {
		rows = append(rows, []interface{}{"Max trades per day", m.MedianTradesToPeak})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
