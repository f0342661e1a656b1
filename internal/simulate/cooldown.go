package simulate

import (
	"math"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

// Aggregation selects how the kept trades' metric values are reduced to one
// number per swept cooldown duration.
type Aggregation string

const (
	AggSum     Aggregation = "sum"
	AggMean    Aggregation = "mean"
	AggCount   Aggregation = "count"
	AggStd     Aggregation = "std"      // population std-dev of the metric
	AggWinRate Aggregation = "win_rate" // wins / kept * 100, metric ignored
	AggPnLStd  Aggregation = "pnl_std"  // population std-dev of kept PnLs
)

// Metric extracts the aggregated column from a trade. PnLMetric is the
// default.
type Metric func(t types.Trade) float64

// PnLMetric reads the canonical PnL column.
func PnLMetric(t types.Trade) float64 { return t.PnL }

// VolumeMetric reads the unsigned open volume.
func VolumeMetric(t types.Trade) float64 { return math.Abs(t.OpenVolume) }

// CooldownPoint is one swept duration and its aggregated metric value.
type CooldownPoint struct {
	Seconds float64
	Value   float64
	Kept    int
}

// CooldownDurations returns the swept durations from zero to maxSeconds in
// 15-second steps.
func CooldownDurations(maxSeconds float64) []float64 {
	var durations []float64
	for s := 0.0; s <= maxSeconds; s += 15 {
		durations = append(durations, s)
	}
	return durations
}

// DeriveMaxCooldown picks the sweep upper bound from the largest average
// inter-trade gap observed in the sliding-window stats: 80% of it, floored
// at 600 seconds so short histories still sweep a meaningful range.
func DeriveMaxCooldown(maxAvgGapSeconds float64) float64 {
	return math.Max(600, 0.8*maxAvgGapSeconds)
}

// SimulateDayCooldown walks one day's trades in open-time order and returns
// the trades that survive the cooldown rule: the first trade is always kept,
// and a later trade is kept only when it opens at least cooldown seconds
// after the close of the last kept trade. Skipped trades never reset the
// reference.
func SimulateDayCooldown(trades []types.Trade, cooldownSeconds float64) []types.Trade {
	var kept []types.Trade
	for _, t := range trades {
		if len(kept) == 0 {
			kept = append(kept, t)
			continue
		}
		last := kept[len(kept)-1]
		if t.OpenTime.Sub(last.CloseTime).Seconds() >= cooldownSeconds {
			kept = append(kept, t)
		}
	}
	return kept
}

// CooldownCurve runs the walk-forward cooldown simulation for every swept
// duration and aggregates the kept trades' metric across all days with at
// least two trades. A NaN or infinite metric value is a data-quality failure,
// never silently coerced.
func CooldownCurve(groups []types.DailyGroup, durations []float64, metric Metric, agg Aggregation) ([]CooldownPoint, error) {
	if metric == nil {
		metric = PnLMetric
	}

	points := make([]CooldownPoint, len(durations))
	for i, cooldown := range durations {
		value, kept, err := cooldownPoint(groups, cooldown, metric, agg)
		if err != nil {
			return nil, err
		}
		points[i] = CooldownPoint{Seconds: cooldown, Value: value, Kept: kept}
	}
	return points, nil
}

func aggregate(values, pnls []float64, wins int, agg Aggregation) (float64, error) {
	switch agg {
	case AggSum, "":
		return sum(values), nil
	case AggMean:
		if len(values) == 0 {
			return 0, nil
		}
		return sum(values) / float64(len(values)), nil
	case AggCount:
		return float64(len(values)), nil
	case AggStd:
		return popStd(values), nil
	case AggWinRate:
		if len(values) == 0 {
			return 0, nil
		}
		return float64(wins) / float64(len(values)) * 100, nil
	case AggPnLStd:
		return popStd(pnls), nil
	default:
		return 0, apperrors.Newf(apperrors.CategoryDataQuality, component, "CooldownCurve",
			"unknown aggregation %q", agg)
	}
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

func popStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := sum(xs) / float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return math.Sqrt(variance / float64(len(xs)))
}
