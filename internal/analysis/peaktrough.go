package analysis

import (
	"time"

	"github.com/tradelab/journal-insights/pkg/types"
)

// ExtremumRecord marks where a day's cumulative PnL reached its peak or
// trough. TradesToExtremum is 1-based; ties resolve to the earliest trade.
type ExtremumRecord struct {
	Day              string
	Time             time.Time
	PnL              float64
	TradesToExtremum int
}

// PeaksAndTroughs computes, per day with at least two trades, the running
// cumulative PnL over open-time order and reports both extrema. The peak is
// clamped at zero from below and the trough at zero from above: a day that
// never turns profitable reports a zero peak at its best moment rather than
// a negative one, and symmetrically for the trough.
func PeaksAndTroughs(groups []types.DailyGroup) (peaks, troughs []ExtremumRecord) {
	for _, g := range groups {
		if len(g.Trades) < 2 {
			continue
		}

		cum := 0.0
		peakIdx, troughIdx := 0, 0
		peakVal := g.Trades[0].PnL
		troughVal := g.Trades[0].PnL
		for i, t := range g.Trades {
			cum += t.PnL
			if cum > peakVal {
				peakVal = cum
				peakIdx = i
			}
			if cum < troughVal {
				troughVal = cum
				troughIdx = i
			}
		}

		day := g.Date.Format("2006-01-02")
		peaks = append(peaks, ExtremumRecord{
			Day:              day,
			Time:             g.Trades[peakIdx].OpenTime,
			PnL:              clampMin(peakVal, 0),
			TradesToExtremum: peakIdx + 1,
		})
		troughs = append(troughs, ExtremumRecord{
			Day:              day,
			Time:             g.Trades[troughIdx].OpenTime,
			PnL:              clampMax(troughVal, 0),
			TradesToExtremum: troughIdx + 1,
		})
	}
	return peaks, troughs
}

func clampMin(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}

func clampMax(v, ceil float64) float64 {
	if v > ceil {
		return ceil
	}
	return v
}
