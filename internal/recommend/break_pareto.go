package recommend

import "github.com/tradelab/journal-insights/internal/optimize"

// Metric names used in the break-time Pareto summary.
const (
	MetricPnL     = "PnL"
	MetricWinRate = "win_rate"
	MetricPnLStd  = "pnl_std"
)

// BreakPoint is one swept cooldown duration scored on every Pareto metric.
type BreakPoint struct {
	BreakTimeSeconds float64 `json:"break_time"`
	PnL              float64 `json:"PnL"`
	WinRate          float64 `json:"win_rate"`
	PnLStd           float64 `json:"pnl_std"`
	SampleSize       int     `json:"sample_size"`
}

// ParetoRecommendation is the multi-objective view of the break-time sweep:
// the non-dominated front, the per-metric optima, and the single balanced
// point closest to all optima at once.
type ParetoRecommendation struct {
	Metrics             []string           `json:"metrics"`
	Front               []BreakPoint       `json:"pareto_front"`
	BestPerMetric       map[string]float64 `json:"best_per_metric"`
	BestBalanced        *BreakPoint        `json:"best_balanced_point,omitempty"`
	PotentialDollarGain float64            `json:"potential_dollar_gain"`
	AllResults          []BreakPoint       `json:"all_results"`
}

// DefaultBreakObjectives maximize PnL and win rate while minimizing PnL
// volatility across the kept trades.
func DefaultBreakObjectives() []optimize.Objective {
	return []optimize.Objective{
		{Name: MetricPnL, Maximize: true},
		{Name: MetricWinRate, Maximize: true},
		{Name: MetricPnLStd, Maximize: false},
	}
}

// BreakPareto runs the dominance analysis over the scored break-time points.
// The potential gain compares the balanced point's PnL (falling back to the
// best front PnL) against the unrestricted total.
func BreakPareto(points []BreakPoint, objectives []optimize.Objective, unrestrictedPnL float64) *ParetoRecommendation {
	if len(points) == 0 {
		return nil
	}
	if len(objectives) == 0 {
		objectives = DefaultBreakObjectives()
	}

	byParam := make(map[float64]BreakPoint, len(points))
	optPoints := make([]optimize.Point, len(points))
	for i, p := range points {
		byParam[p.BreakTimeSeconds] = p
		optPoints[i] = optimize.Point{
			Param: p.BreakTimeSeconds,
			Values: map[string]float64{
				MetricPnL:     p.PnL,
				MetricWinRate: p.WinRate,
				MetricPnLStd:  p.PnLStd,
			},
		}
	}

	front := optimize.Front(optPoints, objectives)
	frontPoints := make([]BreakPoint, len(front))
	for i, p := range front {
		frontPoints[i] = byParam[p.Param]
	}

	rec := &ParetoRecommendation{
		Metrics:       objectiveNames(objectives),
		Front:         frontPoints,
		BestPerMetric: optimize.BestPerMetric(optPoints, objectives),
		AllResults:    points,
	}

	if balanced, ok := optimize.Balanced(front, optPoints, objectives); ok {
		bp := byParam[balanced.Param]
		rec.BestBalanced = &bp
		rec.PotentialDollarGain = bp.PnL - unrestrictedPnL
	} else if len(frontPoints) > 0 {
		best := frontPoints[0]
		for _, p := range frontPoints[1:] {
			if p.PnL > best.PnL {
				best = p
			}
		}
		rec.PotentialDollarGain = best.PnL - unrestrictedPnL
	}
	return rec
}

func objectiveNames(objectives []optimize.Objective) []string {
	names := make([]string, len(objectives))
	for i, o := range objectives {
		names[i] = o.Name
	}
	return names
}
