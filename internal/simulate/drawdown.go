package simulate

import (
	"github.com/tradelab/journal-insights/pkg/types"
)

const component = "simulate"

// DrawdownPoint is one swept threshold and the PnL summed across all days
// when every day stops at that drawdown.
type DrawdownPoint struct {
	Pct      float64
	TotalPnL float64
}

// DayDrawdown is the outcome of stopping one day at a given threshold.
type DayDrawdown struct {
	FinalPnL    float64
	TradesTaken int
	Peak        float64
	Stopped     bool
}

// DayOptimal records the threshold that maximizes one day's stopped PnL.
type DayOptimal struct {
	Day             string
	OptimalPct      float64
	FinalPnL        float64
	TradesTaken     int
	Peak            float64
	UnrestrictedPnL float64
	TotalTrades     int
}

// DrawdownThresholds returns the swept thresholds, 5% to 100% in 5% steps.
func DrawdownThresholds() []float64 {
	thresholds := make([]float64, 0, 20)
	for pct := 5.0; pct <= 100; pct += 5 {
		thresholds = append(thresholds, pct)
	}
	return thresholds
}

// SimulateDayDrawdown walks one day's trades in open-time order, accumulating
// PnL and a running peak clamped at zero. The day stops the first time the
// drawdown from that peak strictly exceeds pct, and the triggering trade's
// PnL is rolled back: the trader is assumed to stop at the cumulative level
// that preceded the breach.
func SimulateDayDrawdown(trades []types.Trade, pct float64) DayDrawdown {
	cumulative := 0.0
	peak := 0.0
	taken := 0
	for _, t := range trades {
		cumulative += t.PnL
		if cumulative > peak {
			peak = cumulative
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - cumulative) / peak * 100
		}
		if drawdown > pct {
			cumulative -= t.PnL
			return DayDrawdown{FinalPnL: cumulative, TradesTaken: taken, Peak: peak, Stopped: true}
		}
		taken++
	}
	return DayDrawdown{FinalPnL: cumulative, TradesTaken: taken, Peak: peak}
}

// DrawdownOptions controls the cross-day aggregation.
type DrawdownOptions struct {
	// OnlyPositiveDays restricts the aggregation to days whose unrestricted
	// total PnL is positive. The filter is computed from unfiltered day
	// totals, so it looks ahead relative to the simulated stop decision; it
	// narrows which days are scored, never what the simulated trader knew.
	OnlyPositiveDays bool
}

// DrawdownCurve sums, for each swept threshold, the stopped per-day PnL
// across all days with at least two trades.
func DrawdownCurve(groups []types.DailyGroup, opts DrawdownOptions) []DrawdownPoint {
	thresholds := DrawdownThresholds()
	points := make([]DrawdownPoint, len(thresholds))

	included := make([]types.DailyGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Trades) < 2 {
			continue
		}
		if opts.OnlyPositiveDays && g.TotalPnL() <= 0 {
			continue
		}
		included = append(included, g)
	}

	for i, pct := range thresholds {
		total := 0.0
		for _, g := range included {
			total += SimulateDayDrawdown(g.Trades, pct).FinalPnL
		}
		points[i] = DrawdownPoint{Pct: pct, TotalPnL: total}
	}
	return points
}

// OptimalDrawdownPerDay finds, for each day independently, the threshold
// whose stopped PnL is highest. Ties keep the lowest threshold.
func OptimalDrawdownPerDay(groups []types.DailyGroup) []DayOptimal {
	thresholds := DrawdownThresholds()
	var optima []DayOptimal
	for _, g := range groups {
		if len(g.Trades) < 2 {
			continue
		}
		best := DayOptimal{Day: g.Date.Format("2006-01-02"), UnrestrictedPnL: g.TotalPnL(), TotalTrades: len(g.Trades)}
		first := true
		for _, pct := range thresholds {
			r := SimulateDayDrawdown(g.Trades, pct)
			if first || r.FinalPnL > best.FinalPnL {
				best.OptimalPct = pct
				best.FinalPnL = r.FinalPnL
				best.TradesTaken = r.TradesTaken
				best.Peak = r.Peak
				first = false
			}
		}
		optima = append(optima, best)
	}
	return optima
}
