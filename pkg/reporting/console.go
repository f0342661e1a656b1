package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tradelab/journal-insights/internal/engine"
	"github.com/tradelab/journal-insights/internal/recommend"
)

// ConsoleReporter renders an analysis result as terminal tables.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a console reporter writing to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// OutputResult prints the run summary, the recommendation set and the stage
// timings.
func (r *ConsoleReporter) OutputResult(res *engine.Result) {
	r.printSummary(res)
	r.printRecommendations(res.Recommendations)
	r.printTimings(res.Timings)
}

func (r *ConsoleReporter) printSummary(res *engine.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("JOURNAL SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Trades analyzed", res.TotalTrades},
		{"Trading days", res.TotalDays},
		{"Unrestricted PnL", fmt.Sprintf("%.2f", res.UnrestrictedPnL)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 15, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(r.out)
}

func (r *ConsoleReporter) printRecommendations(set recommend.Set) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("RECOMMENDATIONS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Topic", "Recommendation", "Potential Gain"})

	if b := set.Break; b != nil {
		t.AppendRow(table.Row{
			"Break between trades",
			fmt.Sprintf("%.1f min (robust %.1f-%.1f)", b.Minutes, b.RobustRangeMinutes[0], b.RobustRangeMinutes[1]),
			fmt.Sprintf("%.2f", b.PotentialDollarGain),
		})
	}
	if d := set.Drawdown; d != nil {
		t.AppendRow(table.Row{
			"Intraday drawdown stop",
			fmt.Sprintf("%.0f%% of day peak (robust %.0f%%-%.0f%%)", d.Percentage, d.ConfidenceInterval95[0], d.ConfidenceInterval95[1]),
			fmt.Sprintf("%.2f", d.PotentialDollarGain),
		})
	}
	if m := set.MaxTrades; m != nil {
		t.AppendRow(table.Row{
			"Max trades per day",
			fmt.Sprintf("%.0f (CI %.1f-%.1f)", m.MedianTradesToPeak, m.ConfidenceInterval95[0], m.ConfidenceInterval95[1]),
			"-",
		})
	}
	if h := set.TradingHours; h != nil {
		t.AppendRow(table.Row{
			"Best trading hours",
			fmt.Sprintf("peak around %s (CI %s-%s)", h.AveragePeakTime, h.ConfidenceInterval95[0], h.ConfidenceInterval95[1]),
			"-",
		})
	}
	if td := set.TimeDistance; td != nil && td.SampleSize > 0 {
		t.AppendRow(table.Row{
			"Gap between trades",
			fmt.Sprintf("%.0f-%.0f min (avg PnL %.2f)", td.MinMinutes, td.MaxMinutes, td.AvgPnLInRange),
			"-",
		})
	}
	if w := set.WinRateWindow; w != nil {
		t.AppendRow(table.Row{
			"Win-rate window",
			fmt.Sprintf("centered %s (%.1f%% win rate)", w.TimeWindow, w.WinRate),
			"-",
		})
	}
	if v := set.Volume; v != nil {
		t.AppendRow(table.Row{
			"Revenge trading",
			fmt.Sprintf("%.1f%% of trades, performing %s", v.Revenge.Percentage, v.Revenge.Performance),
			"-",
		})
	}
	if p := set.BreakPareto; p != nil && p.BestBalanced != nil {
		t.AppendRow(table.Row{
			"Balanced break (Pareto)",
			fmt.Sprintf("%.1f min, PnL %.2f, win rate %.1f%%",
				p.BestBalanced.BreakTimeSeconds/60, p.BestBalanced.PnL, p.BestBalanced.WinRate),
			fmt.Sprintf("%.2f", p.PotentialDollarGain),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 22, Align: text.AlignLeft},
		{Number: 2, WidthMax: 55, Align: text.AlignLeft},
		{Number: 3, WidthMin: 14, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(r.out)
}

func (r *ConsoleReporter) printTimings(timings engine.StageTimings) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("STAGE TIMINGS")
	t.SetStyle(table.StyleLight)

	rows := []struct {
		name string
		d    time.Duration
	}{
		{"Partition", timings.Partition},
		{"Enrichment", timings.Enrichment},
		{"Sliding window", timings.SlidingWindow},
		{"Peak/trough", timings.PeakTrough},
		{"Drawdown sweep", timings.Drawdown},
		{"Cooldown sweep", timings.Cooldown},
		{"Recommendations", timings.Recommendations},
		{"Total", timings.Total},
	}
	for _, row := range rows {
		t.AppendRow(table.Row{row.name, row.d.Round(time.Microsecond).String()})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 12, Align: text.AlignRight},
	})
	t.Render()
}
