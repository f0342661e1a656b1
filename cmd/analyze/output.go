package main

import (
	"os"

	"github.com/tradelab/journal-insights/internal/engine"
	"github.com/tradelab/journal-insights/pkg/reporting"
	"github.com/tradelab/journal-insights/pkg/types"
)

// writeOutputs renders the console report and writes the optional JSON and
// Excel artifacts.
func writeOutputs(flags *AnalyzeFlags, result *engine.Result, trades []types.Trade) error {
	reporting.NewConsoleReporter(os.Stdout).OutputResult(result)

	if *flags.OutputJSON != "" {
		if err := reporting.WriteResultJSON(result, *flags.OutputJSON); err != nil {
			return err
		}
	}
	if *flags.OutputXLSX != "" {
		reporter := reporting.NewExcelReporter()
		if err := reporter.WriteWorkbook(result, trades, result.Gaps, *flags.OutputXLSX); err != nil {
			return err
		}
	}
	if *flags.OutputCSV != "" {
		if err := reporting.WriteGapsCSV(result.Gaps, *flags.OutputCSV); err != nil {
			return err
		}
	}
	return nil
}
