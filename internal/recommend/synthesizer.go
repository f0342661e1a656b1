package recommend

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tradelab/journal-insights/internal/analysis"
	"github.com/tradelab/journal-insights/internal/partition"
	"github.com/tradelab/journal-insights/internal/simulate"
)

// Inputs carries every analysis artifact the synthesizer draws on. All slices
// may be empty; each topic that lacks data is simply omitted from the Set.
type Inputs struct {
	Gaps          []partition.GapRecord
	Peaks         []analysis.ExtremumRecord
	Windows       []analysis.WindowStat
	DayOptima     []simulate.DayOptimal
	CooldownCurve []simulate.CooldownPoint
	DrawdownCurve []simulate.DrawdownPoint

	TotalTrades     int
	TotalDays       int
	UnrestrictedPnL float64
}

// Set is the full recommendation output, one fixed-schema record per topic.
// Nil entries mean the topic had no data to stand on.
type Set struct {
	Break         *BreakRecommendation         `json:"optimal_break_between_trades,omitempty"`
	Drawdown      *DrawdownRecommendation      `json:"optimal_intraday_drawdown,omitempty"`
	MaxTrades     *MaxTradesRecommendation     `json:"optimal_max_trades_per_day,omitempty"`
	TradingHours  *TradingHoursRecommendation  `json:"optimal_trading_hours,omitempty"`
	TimeDistance  *TimeDistanceRecommendation  `json:"optimal_time_distance_range,omitempty"`
	WinRateWindow *WinRateWindowRecommendation `json:"optimal_win_rate_window,omitempty"`
	Volume        *VolumeRecommendation        `json:"volume_optimization,omitempty"`
	BreakPareto   *ParetoRecommendation        `json:"break_time_pareto,omitempty"`
}

// BreakRecommendation is the cooldown-derived pause between trades.
type BreakRecommendation struct {
	Minutes             float64    `json:"minutes"`
	Seconds             float64    `json:"seconds"`
	RobustRangeMinutes  [2]float64 `json:"robust_range_minutes"`
	PnLImprovement      float64    `json:"pnl_improvement"`
	PotentialDollarGain float64    `json:"potential_dollar_gain"`
	VanillaPnL          float64    `json:"vanilla_pnl"`
	OptimalPnL          float64    `json:"optimal_pnl"`
	Explanation         string     `json:"explanation"`
	Confidence          string     `json:"confidence"`
	Robustness          string     `json:"robustness"`
}

// DrawdownRecommendation is the per-day stop threshold as a percent of the
// day's peak PnL.
type DrawdownRecommendation struct {
	Percentage           float64    `json:"percentage"`
	MeanPercentage       float64    `json:"mean_percentage"`
	StdPercentage        float64    `json:"std_percentage"`
	ConfidenceInterval95 [2]float64 `json:"confidence_interval_95"`
	SampleSize           int        `json:"sample_size"`
	ConsistencyRate      float64    `json:"consistency_rate"`
	PotentialDollarGain  float64    `json:"potential_dollar_gain"`
	VanillaPnL           float64    `json:"vanilla_pnl"`
	OptimalPnL           float64    `json:"optimal_pnl"`
	Explanation          string     `json:"explanation"`
	Confidence           string     `json:"confidence"`
	Robustness           string     `json:"robustness"`
}

// MaxTradesRecommendation caps the trade count per day near where cumulative
// PnL typically peaks.
type MaxTradesRecommendation struct {
	MedianTradesToPeak     float64    `json:"median_trades_to_peak"`
	MeanTradesToPeak       float64    `json:"mean_trades_to_peak"`
	StdTradesToPeak        float64    `json:"std_trades_to_peak"`
	ConfidenceInterval95   [2]float64 `json:"confidence_interval_95"`
	CurrentAvgTradesPerDay float64    `json:"current_avg_trades_per_day"`
	SampleSize             int        `json:"sample_size"`
	OptimalRate            float64    `json:"optimal_rate"`
	Recommendation         string     `json:"recommendation"`
	Explanation            string     `json:"explanation"`
	Confidence             string     `json:"confidence"`
	Robustness             string     `json:"robustness"`
}

// TradingHoursRecommendation locates the typical intraday PnL peak time.
type TradingHoursRecommendation struct {
	AveragePeakTime      string    `json:"average_peak_time"`
	StdPeakHour          float64   `json:"std_peak_hour"`
	ConfidenceInterval95 [2]string `json:"confidence_interval_95"`
	MostCommonPeakTime   string    `json:"most_common_peak_time"`
	SampleSize           int       `json:"sample_size"`
	ConsistencyRate      float64   `json:"consistency_rate"`
	Explanation          string    `json:"explanation"`
	Recommendation       string    `json:"recommendation"`
	Confidence           string    `json:"confidence"`
	Robustness           string    `json:"robustness"`
}

// TimeDistanceRecommendation is the inter-trade gap range with the best mean
// PnL among practical (≤30 minute) gaps.
type TimeDistanceRecommendation struct {
	MinMinutes           float64      `json:"min_minutes"`
	MaxMinutes           float64      `json:"max_minutes"`
	AvgPnLInRange        float64      `json:"avg_pnl_in_range"`
	StdPnLInRange        float64      `json:"std_pnl_in_range"`
	SampleSize           int          `json:"sample_size"`
	ConfidenceInterval95 [2]float64   `json:"confidence_interval_95"`
	RobustRanges         [][2]float64 `json:"robust_ranges"`
	Reliable             bool         `json:"reliable"`
	Explanation          string       `json:"explanation"`
	Recommendation       string       `json:"recommendation"`
	Confidence           string       `json:"confidence"`
	Note                 string       `json:"note,omitempty"`
}

// WinRateWindowRecommendation names the sliding window with the highest win
// rate among windows that saw more than one trade.
type WinRateWindowRecommendation struct {
	TimeWindow         string  `json:"time_window"`
	WinRate            float64 `json:"win_rate"`
	AvgTimeDistance    float64 `json:"avg_time_distance"`
	WinRateStd         float64 `json:"win_rate_std"`
	SampleSize         int     `json:"sample_size"`
	RobustWindowsCount int     `json:"robust_windows_count"`
	Explanation        string  `json:"explanation"`
	Recommendation     string  `json:"recommendation"`
	Confidence         string  `json:"confidence"`
	Robustness         string  `json:"robustness"`
}

// RevengeAnalysis flags trades combining top-quartile volume with
// bottom-quartile inter-trade gap, the classic loss-chasing signature.
type RevengeAnalysis struct {
	Count                     int     `json:"revenge_trades_count"`
	Percentage                float64 `json:"revenge_trades_percentage"`
	PnLMean                   float64 `json:"revenge_pnl_mean"`
	PnLStd                    float64 `json:"revenge_pnl_std"`
	NormalPnLMean             float64 `json:"normal_pnl_mean"`
	PnLDifference             float64 `json:"pnl_difference"`
	Performance               string  `json:"revenge_performance"`
	VolumeThreshold75th       float64 `json:"volume_threshold_75th"`
	TimeDistanceThreshold25th float64 `json:"time_distance_threshold_25th"`
}

// VolumeRecommendation reports the volume-vs-gap correlation and the revenge
// trading diagnostics derived from it.
type VolumeRecommendation struct {
	VolumeTimeCorrelation  float64         `json:"volume_time_correlation"`
	CorrelationPValue      float64         `json:"correlation_p_value"`
	CorrelationSignificant bool            `json:"correlation_significant"`
	SampleSize             int             `json:"sample_size"`
	Revenge                RevengeAnalysis `json:"revenge_trading_analysis"`
	Explanation            string          `json:"explanation"`
	Recommendation         string          `json:"recommendation"`
	Confidence             string          `json:"confidence"`
	Robustness             string          `json:"robustness"`
	ActionItems            []string        `json:"action_items"`
}

// Synthesize turns the analysis artifacts into the recommendation set. Every
// swept curve is smoothed with the 3-point kernel before its optimum is
// extracted; confidence intervals come from the empirical per-day values.
func Synthesize(in Inputs) Set {
	return Set{
		Break:         breakRecommendation(in.CooldownCurve, in.UnrestrictedPnL),
		Drawdown:      drawdownRecommendation(in.DrawdownCurve, in.DayOptima, in.UnrestrictedPnL),
		MaxTrades:     maxTradesRecommendation(in.Peaks, in.TotalTrades, in.TotalDays),
		TradingHours:  tradingHoursRecommendation(in.Peaks),
		TimeDistance:  timeDistanceRecommendation(in.Gaps),
		WinRateWindow: winRateWindowRecommendation(in.Windows),
		Volume:        volumeRecommendation(in.Gaps),
	}
}

func breakRecommendation(curve []simulate.CooldownPoint, unrestrictedPnL float64) *BreakRecommendation {
	if len(curve) == 0 {
		return nil
	}
	seconds := make([]float64, len(curve))
	pnls := make([]float64, len(curve))
	for i, p := range curve {
		seconds[i] = p.Seconds
		pnls[i] = p.Value
	}

	idx := argMax(SmoothKernel3(pnls))
	optimalSeconds := seconds[idx]
	optimalPnL := pnls[idx]
	gain := optimalPnL - unrestrictedPnL

	lo, hi, ok := RobustRange(seconds, pnls, optimalPnL, 0.95)
	if !ok {
		lo, hi = optimalSeconds, optimalSeconds
	}
	loMin, hiMin := lo/60, hi/60

	return &BreakRecommendation{
		Minutes:             optimalSeconds / 60,
		Seconds:             optimalSeconds,
		RobustRangeMinutes:  [2]float64{loMin, hiMin},
		PnLImprovement:      gain,
		PotentialDollarGain: gain,
		VanillaPnL:          unrestrictedPnL,
		OptimalPnL:          optimalPnL,
		Explanation: fmt.Sprintf("Waiting %.1f minutes between trades maximizes cumulative PnL",
			optimalSeconds/60),
		Confidence: "High - based on systematic analysis across all cooldown periods",
		Robustness: fmt.Sprintf("Cooldown periods between %.1f-%.1f minutes achieve >95%% of maximum PnL",
			loMin, hiMin),
	}
}

func drawdownRecommendation(curve []simulate.DrawdownPoint, optima []simulate.DayOptimal, unrestrictedPnL float64) *DrawdownRecommendation {
	if len(curve) == 0 || len(optima) == 0 {
		return nil
	}
	pcts := make([]float64, len(curve))
	totals := make([]float64, len(curve))
	for i, p := range curve {
		pcts[i] = p.Pct
		totals[i] = p.TotalPnL
	}

	idx := argMax(SmoothKernel3(totals))
	optimalPct := pcts[idx]
	optimalPnL := totals[idx]
	gain := optimalPnL - unrestrictedPnL

	maxRaw := totals[argMax(totals)]
	lo, hi, ok := RobustRange(pcts, totals, maxRaw, 0.95)
	if !ok {
		lo, hi = optimalPct, optimalPct
	}

	dayPcts := make([]float64, len(optima))
	consistent := 0
	for i, o := range optima {
		dayPcts[i] = o.OptimalPct
		if math.Abs(o.OptimalPct-optimalPct) <= 5 {
			consistent++
		}
	}

	return &DrawdownRecommendation{
		Percentage:           optimalPct,
		MeanPercentage:       stat.Mean(dayPcts, nil),
		StdPercentage:        popStd(dayPcts),
		ConfidenceInterval95: [2]float64{lo, hi},
		SampleSize:           len(optima),
		ConsistencyRate:      float64(consistent) / float64(len(optima)),
		PotentialDollarGain:  gain,
		VanillaPnL:           unrestrictedPnL,
		OptimalPnL:           optimalPnL,
		Explanation: fmt.Sprintf("Stop trading when daily drawdown reaches %.1f%% of the day's peak PnL. "+
			"This maximizes cumulative PnL across all trading days.", optimalPct),
		Confidence: "High - based on systematic analysis across all drawdown thresholds",
		Robustness: fmt.Sprintf("Drawdown thresholds between %.1f%%-%.1f%% achieve >95%% of maximum PnL",
			lo, hi),
	}
}

func maxTradesRecommendation(peaks []analysis.ExtremumRecord, totalTrades, totalDays int) *MaxTradesRecommendation {
	if len(peaks) == 0 {
		return nil
	}
	tradesToPeak := make([]float64, len(peaks))
	for i, p := range peaks {
		tradesToPeak[i] = float64(p.TradesToExtremum)
	}

	med := median(tradesToPeak)
	lo, hi := TInterval(tradesToPeak)

	withinTwo := 0
	for _, v := range tradesToPeak {
		if math.Abs(v-med) <= 2 {
			withinTwo++
		}
	}

	avgPerDay := 0.0
	if totalDays > 0 {
		avgPerDay = float64(totalTrades) / float64(totalDays)
	}

	return &MaxTradesRecommendation{
		MedianTradesToPeak:     med,
		MeanTradesToPeak:       stat.Mean(tradesToPeak, nil),
		StdTradesToPeak:        popStd(tradesToPeak),
		ConfidenceInterval95:   [2]float64{lo, hi},
		CurrentAvgTradesPerDay: avgPerDay,
		SampleSize:             len(peaks),
		OptimalRate:            float64(withinTwo) / float64(len(peaks)),
		Recommendation: fmt.Sprintf("Consider limiting to %.0f trades per day, the median number of "+
			"trades needed to reach peak PnL", med),
		Explanation: "Based on when cumulative PnL typically peaks during trading days",
		Confidence: fmt.Sprintf("Medium - %.1f%% of days peaked within 2 trades of the median",
			float64(withinTwo)/float64(len(peaks))*100),
		Robustness: fmt.Sprintf("95%% confidence interval: %.1f-%.1f trades", lo, hi),
	}
}

func tradingHoursRecommendation(peaks []analysis.ExtremumRecord) *TradingHoursRecommendation {
	if len(peaks) == 0 {
		return nil
	}
	hours := make([]float64, len(peaks))
	timeCounts := make(map[string]int)
	for i, p := range peaks {
		hours[i] = float64(p.Time.Hour()) + float64(p.Time.Minute())/60
		timeCounts[p.Time.Format("15:04")]++
	}

	avg := stat.Mean(hours, nil)
	lo, hi := TInterval(hours)

	withinHour := 0
	for _, h := range hours {
		if math.Abs(h-avg) <= 1 {
			withinHour++
		}
	}

	mostCommon := ""
	bestCount := 0
	keys := make([]string, 0, len(timeCounts))
	for k := range timeCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if timeCounts[k] > bestCount {
			mostCommon = k
			bestCount = timeCounts[k]
		}
	}

	return &TradingHoursRecommendation{
		AveragePeakTime:      formatHour(avg),
		StdPeakHour:          popStd(hours),
		ConfidenceInterval95: [2]string{formatHour(lo), formatHour(hi)},
		MostCommonPeakTime:   mostCommon,
		SampleSize:           len(peaks),
		ConsistencyRate:      float64(withinHour) / float64(len(peaks)),
		Explanation: fmt.Sprintf("Peak cumulative PnL typically occurs around %s",
			formatHour(avg)),
		Recommendation: "Focus trading activity in the hours leading up to the typical peak time",
		Confidence: fmt.Sprintf("Medium - %.1f%% of days peaked within 1 hour of the average",
			float64(withinHour)/float64(len(peaks))*100),
		Robustness: fmt.Sprintf("95%% confidence interval: %s - %s", formatHour(lo), formatHour(hi)),
	}
}

// timeDistanceRecommendation bins practical (≤30 minute) gaps into 1-minute
// buckets and picks the best mean-PnL bucket. A bucket needs at least 5
// trades to be considered and 20 to count as reliable; with no reliable
// bucket the highest-sample qualifying bucket is used instead.
func timeDistanceRecommendation(gaps []partition.GapRecord) *TimeDistanceRecommendation {
	const (
		practicalMaxMinutes = 30.0
		binMinutes          = 1.0
		minTrades           = 5
		reliableTrades      = 20
	)

	type bin struct {
		pnls []float64
	}
	bins := make(map[int]*bin)
	for _, g := range gaps {
		minutes := g.TimeDistance / 60
		if minutes > practicalMaxMinutes {
			continue
		}
		idx := int(minutes / binMinutes)
		b := bins[idx]
		if b == nil {
			b = &bin{}
			bins[idx] = b
		}
		b.pnls = append(b.pnls, g.PnL)
	}
	if len(bins) == 0 {
		return &TimeDistanceRecommendation{
			Explanation:    "No trades found within the practical 0-30 minute gap range",
			Recommendation: "Use default 5-10 minute intervals between trades",
			Confidence:     "Low - no data available for analysis",
			Note:           "Consider the cooldown analysis recommendation instead",
		}
	}

	means := make(map[int]float64, len(bins))
	for idx, b := range bins {
		means[idx] = stat.Mean(b.pnls, nil)
	}

	indices := make([]int, 0, len(bins))
	for idx := range bins {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	bestIdx, reliable := -1, false
	for _, idx := range indices {
		n := len(bins[idx].pnls)
		if n < reliableTrades {
			continue
		}
		if bestIdx < 0 || means[idx] > means[bestIdx] {
			bestIdx = idx
			reliable = true
		}
	}
	if bestIdx < 0 {
		// No reliable bucket; fall back to the best-populated qualifying one.
		for _, idx := range indices {
			n := len(bins[idx].pnls)
			if n < minTrades {
				continue
			}
			if bestIdx < 0 || n > len(bins[bestIdx].pnls) {
				bestIdx = idx
			}
		}
	}
	if bestIdx < 0 {
		return &TimeDistanceRecommendation{
			Explanation:    "No gap bucket has enough trades for reliable analysis",
			Recommendation: "Use default 5-10 minute intervals between trades",
			Confidence:     "Low - insufficient data for statistical analysis",
			Note:           "Consider the cooldown analysis recommendation instead",
		}
	}

	best := bins[bestIdx]
	bestMean := means[bestIdx]
	lo, hi := TInterval(best.pnls)

	var robustRanges [][2]float64
	threshold := bestMean * 0.8
	for _, idx := range indices {
		if len(bins[idx].pnls) >= minTrades && means[idx] >= threshold {
			start := float64(idx) * binMinutes
			robustRanges = append(robustRanges, [2]float64{start, start + binMinutes})
		}
	}

	minM := float64(bestIdx) * binMinutes
	maxM := minM + binMinutes
	return &TimeDistanceRecommendation{
		MinMinutes:           minM,
		MaxMinutes:           maxM,
		AvgPnLInRange:        bestMean,
		StdPnLInRange:        popStd(best.pnls),
		SampleSize:           len(best.pnls),
		ConfidenceInterval95: [2]float64{lo, hi},
		RobustRanges:         robustRanges,
		Reliable:             reliable,
		Explanation: fmt.Sprintf("Trades opened %.0f-%.0f minutes after the previous close show the "+
			"highest average PnL among practical gap ranges", minM, maxM),
		Recommendation: fmt.Sprintf("Aim for %.0f-%.0f minute intervals between trades", minM, maxM),
		Confidence:     fmt.Sprintf("Medium - based on %d trades in the optimal range", len(best.pnls)),
		Note:           "Analysis limited to practical gaps (0-30 minutes) for day trading",
	}
}

func winRateWindowRecommendation(windows []analysis.WindowStat) *WinRateWindowRecommendation {
	var filtered []analysis.WindowStat
	for _, w := range windows {
		if w.AvgTimeDistance > 0 {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	best := filtered[0]
	rates := make([]float64, len(filtered))
	for i, w := range filtered {
		rates[i] = w.WinRate
		if w.WinRate > best.WinRate {
			best = w
		}
	}

	robustCount := 0
	threshold := best.WinRate * 0.9
	for _, r := range rates {
		if r >= threshold {
			robustCount++
		}
	}

	center := best.WindowCenter.Format("15:04")
	return &WinRateWindowRecommendation{
		TimeWindow:         center,
		WinRate:            best.WinRate,
		AvgTimeDistance:    best.AvgTimeDistance,
		WinRateStd:         popStd(rates),
		SampleSize:         len(filtered),
		RobustWindowsCount: robustCount,
		Explanation: fmt.Sprintf("The window centered at %s shows the highest win rate", center),
		Recommendation: "Focus trading activity during this time window for better win rates",
		Confidence: fmt.Sprintf("Low - single-window analysis, %d windows reach >90%% of the best win rate",
			robustCount),
		Robustness: fmt.Sprintf("Win rate standard deviation: %.1f%%", popStd(rates)),
	}
}

func volumeRecommendation(gaps []partition.GapRecord) *VolumeRecommendation {
	if len(gaps) == 0 {
		return nil
	}
	n := len(gaps)
	distances := make([]float64, n)
	volumes := make([]float64, n)
	pnls := make([]float64, n)
	for i, g := range gaps {
		distances[i] = g.TimeDistance / 60
		volumes[i] = g.Volume
		pnls[i] = g.PnL
	}

	corr := stat.Correlation(distances, volumes, nil)
	pValue := correlationPValue(corr, n)
	significant := pValue < 0.05

	vol75 := quantile(0.75, volumes)
	dist25 := quantile(0.25, distances)

	var revengePnLs, normalPnLs []float64
	for i := range gaps {
		if volumes[i] >= vol75 && distances[i] <= dist25 {
			revengePnLs = append(revengePnLs, pnls[i])
		} else {
			normalPnLs = append(normalPnLs, pnls[i])
		}
	}

	revenge := RevengeAnalysis{
		Count:                     len(revengePnLs),
		Percentage:                float64(len(revengePnLs)) / float64(n) * 100,
		VolumeThreshold75th:       vol75,
		TimeDistanceThreshold25th: dist25,
	}
	if len(revengePnLs) > 0 {
		revenge.PnLMean = stat.Mean(revengePnLs, nil)
		revenge.PnLStd = popStd(revengePnLs)
		if len(normalPnLs) > 0 {
			revenge.NormalPnLMean = stat.Mean(normalPnLs, nil)
		}
		revenge.PnLDifference = revenge.PnLMean - revenge.NormalPnLMean
		if revenge.PnLDifference < 0 {
			revenge.Performance = "worse"
		} else {
			revenge.Performance = "better"
		}
	} else {
		revenge.NormalPnLMean = stat.Mean(pnls, nil)
		revenge.Performance = "no data"
	}

	confidence := "Low - correlation is not statistically significant"
	if significant {
		confidence = "High - correlation is statistically significant"
	}

	actions := []string{
		"Monitor for revenge trading patterns",
		"Maintain current risk management practices",
	}
	if revenge.Percentage > 10 {
		actions = []string{
			"Implement mandatory cooldown periods after losses",
			"Set volume limits for trades within 5 minutes of the previous trade",
			"Monitor for increasing position sizes after losses",
			"Consider reducing position size when time between trades is low",
		}
	}

	return &VolumeRecommendation{
		VolumeTimeCorrelation:  corr,
		CorrelationPValue:      pValue,
		CorrelationSignificant: significant,
		SampleSize:             n,
		Revenge:                revenge,
		Explanation: fmt.Sprintf("Volume and gap correlation: %.4f. %.1f%% of trades show potential "+
			"revenge trading patterns (high volume with a low gap).", corr, revenge.Percentage),
		Recommendation: fmt.Sprintf("%.1f%% of trades combine high volume with low time gaps and perform "+
			"%s than normal trades (difference: %.1f PnL)",
			revenge.Percentage, revenge.Performance, revenge.PnLDifference),
		Confidence: fmt.Sprintf("%s (p=%.4f)", confidence, pValue),
		Robustness: fmt.Sprintf("Based on %d trade observations", n),
		ActionItems: actions,
	}
}

func formatHour(h float64) string {
	if h < 0 {
		h = 0
	}
	whole := int(h)
	minutes := int(math.Round((h - float64(whole)) * 60))
	if minutes == 60 {
		whole++
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", whole%24, minutes)
}
