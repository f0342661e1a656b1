package partition

import (
	"math"
	"sort"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

// GapRecord is the derived record for one consecutive trade pair within a
// day, taken over trades sorted by (close time, open time). PnL, Volume and
// Win describe the second trade of the pair.
type GapRecord struct {
	Day          string
	TimeDistance float64 // seconds, close[i-1] -> open[i]
	HoldingTime  float64 // seconds, open[i] -> close[i]
	PnL          float64
	Volume       float64
	Win          bool
}

// BuildGaps emits one GapRecord per consecutive trade pair per day. Trades
// are re-sorted by (close time, open time) first; with correctly aggregated
// trades no pair can overlap, so a negative gap is a data-integrity failure
// from an upstream aggregation bug, never something to clamp.
func BuildGaps(groups []types.DailyGroup) ([]GapRecord, error) {
	var gaps []GapRecord
	for _, g := range groups {
		if len(g.Trades) < 2 {
			continue
		}
		trades := make([]types.Trade, len(g.Trades))
		copy(trades, g.Trades)
		sort.SliceStable(trades, func(i, j int) bool {
			if trades[i].CloseTime.Equal(trades[j].CloseTime) {
				return trades[i].OpenTime.Before(trades[j].OpenTime)
			}
			return trades[i].CloseTime.Before(trades[j].CloseTime)
		})

		for i := 1; i < len(trades); i++ {
			distance := trades[i].OpenTime.Sub(trades[i-1].CloseTime).Seconds()
			if distance < 0 {
				return nil, apperrors.Newf(apperrors.CategoryDataIntegrity, component, "BuildGaps",
					"negative inter-trade gap of %.1fs on %s at pair %d", distance, g.Date.Format("2006-01-02"), i)
			}
			gaps = append(gaps, GapRecord{
				Day:          g.Date.Format("2006-01-02"),
				TimeDistance: distance,
				HoldingTime:  trades[i].Duration().Seconds(),
				PnL:          trades[i].PnL,
				Volume:       math.Abs(trades[i].OpenVolume),
				Win:          trades[i].Win(),
			})
		}
	}
	return gaps, nil
}
