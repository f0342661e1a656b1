package engine

import (
	"sort"
	"time"

	"github.com/tradelab/journal-insights/internal/analysis"
	"github.com/tradelab/journal-insights/internal/partition"
	"github.com/tradelab/journal-insights/internal/recommend"
	"github.com/tradelab/journal-insights/internal/simulate"
	"github.com/tradelab/journal-insights/pkg/types"
)

// PlotData is the raw numeric series handed to an external plotting layer.
// Every series has its own fixed struct: consumers read fields, never
// reflect over maps.
type PlotData struct {
	WinRateVsGap   *WinRateVsGapSeries   `json:"win_rate_vs_avg_time_distance,omitempty"`
	PnLVsGap       *PnLVsGapSeries       `json:"pnl_vs_time_distance,omitempty"`
	VolumeVsGap    *VolumeVsGapSeries    `json:"volume_vs_time_distance,omitempty"`
	PeakTimes      *ExtremumTimeSeries   `json:"distribution_of_peak_pnl_times,omitempty"`
	TroughTimes    *ExtremumTimeSeries   `json:"distribution_of_trough_pnl_times,omitempty"`
	TradesToPeak   *TradesToPeakSeries   `json:"distribution_of_trades_to_peak,omitempty"`
	DrawdownCurve  *DrawdownCurveSeries  `json:"cumulative_pnl_vs_drawdown_threshold,omitempty"`
	CooldownCurve  *CooldownCurveSeries  `json:"cumulative_pnl_vs_cooldown_period,omitempty"`
	BinnedPnLByGap *BinnedPnLSeries      `json:"total_pnl_by_time_distance_bin,omitempty"`
	Weekdays       *WeekdaySeries        `json:"pnl_by_weekday,omitempty"`
}

// WinRateVsGapSeries pairs each window's win rate with its mean intra-window
// gap, plus a 20-point rolling mean over gap-sorted order.
type WinRateVsGapSeries struct {
	TimeDistance       []float64 `json:"time_distance"`
	WinRate            []float64 `json:"win_rate"`
	TimeDistanceSorted []float64 `json:"time_distance_sorted"`
	RollingWinRate     []float64 `json:"rolling_win_rate"`
}

// PnLVsGapSeries is the per-pair PnL scatter, clipped at the 97th gap
// percentile so a few huge pauses do not flatten the plot.
type PnLVsGapSeries struct {
	TimeDistanceMinutes []float64 `json:"time_distance_minutes"`
	PnL                 []float64 `json:"pnl"`
}

// VolumeVsGapSeries is the per-pair volume scatter with the same cutoff.
type VolumeVsGapSeries struct {
	TimeDistance []float64 `json:"time_distance"`
	Volume       []float64 `json:"volume"`
}

// ExtremumTimeSeries is the distribution of per-day extremum times.
type ExtremumTimeSeries struct {
	Time []string  `json:"time"`
	PnL  []float64 `json:"pnl"`
}

// TradesToPeakSeries is the distribution of trades needed to reach the peak.
type TradesToPeakSeries struct {
	TradesToPeak []int `json:"trades_to_peak"`
}

// DrawdownCurveSeries is the swept drawdown threshold curve.
type DrawdownCurveSeries struct {
	DrawdownPercentages []float64 `json:"drawdown_percentages"`
	CumulativePnL       []float64 `json:"cumulative_pnl"`
}

// CooldownCurveSeries is the swept cooldown curve in minutes.
type CooldownCurveSeries struct {
	CooldownMinutes []float64 `json:"cooldown_minutes"`
	CumulativePnL   []float64 `json:"cumulative_pnl"`
}

// BinnedPnLSeries sums pair PnL into 15-second gap bins.
type BinnedPnLSeries struct {
	TimeDistanceSeconds []float64 `json:"time_distance_seconds"`
	TotalPnL            []float64 `json:"total_pnl"`
}

// WeekdaySeries groups PnL and win rate by day of week.
type WeekdaySeries struct {
	Weekday    []string  `json:"weekday"`
	TotalPnL   []float64 `json:"total_pnl"`
	WinRate    []float64 `json:"win_rate"`
	TradeCount []int     `json:"trade_count"`
}

func buildPlots(
	windows []analysis.WindowStat,
	gaps []partition.GapRecord,
	peaks, troughs []analysis.ExtremumRecord,
	drawdown []simulate.DrawdownPoint,
	cooldown []simulate.CooldownPoint,
	groups []types.DailyGroup,
) PlotData {
	return PlotData{
		WinRateVsGap:   winRatePlot(windows),
		PnLVsGap:       pnlVsGapPlot(gaps),
		VolumeVsGap:    volumeVsGapPlot(gaps),
		PeakTimes:      extremumPlot(peaks),
		TroughTimes:    extremumPlot(troughs),
		TradesToPeak:   tradesToPeakPlot(peaks),
		DrawdownCurve:  drawdownPlot(drawdown),
		CooldownCurve:  cooldownPlot(cooldown),
		BinnedPnLByGap: binnedPnLPlot(gaps),
		Weekdays:       weekdayPlot(groups),
	}
}

func winRatePlot(windows []analysis.WindowStat) *WinRateVsGapSeries {
	var filtered []analysis.WindowStat
	for _, w := range windows {
		if w.AvgTimeDistance > 0 {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	s := &WinRateVsGapSeries{}
	for _, w := range filtered {
		s.TimeDistance = append(s.TimeDistance, w.AvgTimeDistance)
		s.WinRate = append(s.WinRate, w.WinRate)
	}

	sorted := make([]analysis.WindowStat, len(filtered))
	copy(sorted, filtered)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgTimeDistance < sorted[j].AvgTimeDistance
	})
	for i, w := range sorted {
		s.TimeDistanceSorted = append(s.TimeDistanceSorted, w.AvgTimeDistance)
		start := i - 19
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for _, prev := range sorted[start : i+1] {
			sum += prev.WinRate
		}
		s.RollingWinRate = append(s.RollingWinRate, sum/float64(i+1-start))
	}
	return s
}

// gapCutoff returns the 97th-percentile gap in minutes.
func gapCutoff(gaps []partition.GapRecord) float64 {
	minutes := make([]float64, len(gaps))
	for i, g := range gaps {
		minutes[i] = g.TimeDistance / 60
	}
	sort.Float64s(minutes)
	idx := int(float64(len(minutes)-1) * 0.97)
	return minutes[idx]
}

func pnlVsGapPlot(gaps []partition.GapRecord) *PnLVsGapSeries {
	if len(gaps) == 0 {
		return nil
	}
	cutoff := gapCutoff(gaps)
	s := &PnLVsGapSeries{}
	for _, g := range gaps {
		minutes := g.TimeDistance / 60
		if minutes > cutoff {
			continue
		}
		s.TimeDistanceMinutes = append(s.TimeDistanceMinutes, minutes)
		s.PnL = append(s.PnL, g.PnL)
	}
	return s
}

func volumeVsGapPlot(gaps []partition.GapRecord) *VolumeVsGapSeries {
	if len(gaps) == 0 {
		return nil
	}
	cutoff := gapCutoff(gaps)
	s := &VolumeVsGapSeries{}
	for _, g := range gaps {
		minutes := g.TimeDistance / 60
		if minutes > cutoff {
			continue
		}
		s.TimeDistance = append(s.TimeDistance, minutes)
		s.Volume = append(s.Volume, g.Volume)
	}
	return s
}

func extremumPlot(records []analysis.ExtremumRecord) *ExtremumTimeSeries {
	if len(records) == 0 {
		return nil
	}
	s := &ExtremumTimeSeries{}
	for _, r := range records {
		s.Time = append(s.Time, r.Time.Format("15:04"))
		s.PnL = append(s.PnL, r.PnL)
	}
	return s
}

func tradesToPeakPlot(peaks []analysis.ExtremumRecord) *TradesToPeakSeries {
	if len(peaks) == 0 {
		return nil
	}
	s := &TradesToPeakSeries{}
	for _, p := range peaks {
		s.TradesToPeak = append(s.TradesToPeak, p.TradesToExtremum)
	}
	return s
}

func drawdownPlot(points []simulate.DrawdownPoint) *DrawdownCurveSeries {
	if len(points) == 0 {
		return nil
	}
	s := &DrawdownCurveSeries{}
	for _, p := range points {
		s.DrawdownPercentages = append(s.DrawdownPercentages, p.Pct)
		s.CumulativePnL = append(s.CumulativePnL, p.TotalPnL)
	}
	return s
}

func cooldownPlot(points []simulate.CooldownPoint) *CooldownCurveSeries {
	if len(points) == 0 {
		return nil
	}
	s := &CooldownCurveSeries{}
	for _, p := range points {
		s.CooldownMinutes = append(s.CooldownMinutes, p.Seconds/60)
		s.CumulativePnL = append(s.CumulativePnL, p.Value)
	}
	return s
}

func binnedPnLPlot(gaps []partition.GapRecord) *BinnedPnLSeries {
	if len(gaps) == 0 {
		return nil
	}
	const binSeconds = 15.0
	sums := make(map[int]float64)
	for _, g := range gaps {
		sums[int(g.TimeDistance/binSeconds)] += g.PnL
	}
	bins := make([]int, 0, len(sums))
	for b := range sums {
		bins = append(bins, b)
	}
	sort.Ints(bins)

	s := &BinnedPnLSeries{}
	for _, b := range bins {
		s.TimeDistanceSeconds = append(s.TimeDistanceSeconds, float64(b)*binSeconds)
		s.TotalPnL = append(s.TotalPnL, sums[b])
	}
	return s
}

func weekdayPlot(groups []types.DailyGroup) *WeekdaySeries {
	if len(groups) == 0 {
		return nil
	}
	type bucket struct {
		pnl    float64
		wins   int
		trades int
	}
	buckets := make(map[time.Weekday]*bucket)
	for _, g := range groups {
		for _, t := range g.Trades {
			day := t.OpenTime.Weekday()
			b := buckets[day]
			if b == nil {
				b = &bucket{}
				buckets[day] = b
			}
			b.pnl += t.PnL
			b.trades++
			if t.Win() {
				b.wins++
			}
		}
	}

	s := &WeekdaySeries{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		b := buckets[day]
		if b == nil {
			continue
		}
		s.Weekday = append(s.Weekday, day.String())
		s.TotalPnL = append(s.TotalPnL, b.pnl)
		s.WinRate = append(s.WinRate, float64(b.wins)/float64(b.trades)*100)
		s.TradeCount = append(s.TradeCount, b.trades)
	}
	return s
}

// breakPoints combines the per-aggregation cooldown sweeps into scored
// Pareto candidates, one per swept duration.
func breakPoints(pnl, winRate, pnlStd []simulate.CooldownPoint) []recommend.BreakPoint {
	points := make([]recommend.BreakPoint, len(pnl))
	for i := range pnl {
		points[i] = recommend.BreakPoint{
			BreakTimeSeconds: pnl[i].Seconds,
			PnL:              pnl[i].Value,
			WinRate:          winRate[i].Value,
			PnLStd:           pnlStd[i].Value,
			SampleSize:       pnl[i].Kept,
		}
	}
	return points
}
