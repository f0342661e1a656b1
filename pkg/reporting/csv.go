package reporting

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tradelab/journal-insights/internal/partition"
)

// DefaultCSVReporter implements CSV output for the enriched trade pairs.
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteGapsCSV writes the per-pair gap records to a CSV file, one row per
// consecutive same-day trade pair.
func (r *DefaultCSVReporter) WriteGapsCSV(gaps []partition.GapRecord, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Day",
		"Time_Distance_Sec",
		"PnL",
		"Volume",
		"Holding_Time_Sec",
		"Win",
	}); err != nil {
		return err
	}

	var totalPnL float64
	wins := 0
	for _, g := range gaps {
		totalPnL += g.PnL
		win := "L"
		if g.Win {
			win = "W"
			wins++
		}
		row := []string{
			g.Day,
			fmt.Sprintf("%.0f", g.TimeDistance),
			fmt.Sprintf("%.2f", g.PnL),
			fmt.Sprintf("%.2f", g.Volume),
			fmt.Sprintf("%.0f", g.HoldingTime),
			win,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	winRate := 0.0
	if len(gaps) > 0 {
		winRate = float64(wins) / float64(len(gaps)) * 100
	}
	summary := fmt.Sprintf("SUMMARY: total_pnl=%.2f; win_rate=%.1f%%; pairs=%d",
		totalPnL, winRate, len(gaps))

	summaryRow := make([]string, 6)
	summaryRow[5] = summary
	return w.Write(summaryRow)
}

// Package-level convenience function
func WriteGapsCSV(gaps []partition.GapRecord, path string) error {
	reporter := NewDefaultCSVReporter()
	return reporter.WriteGapsCSV(gaps, path)
}
