package analysis

import (
	"math"
	"time"

	"github.com/tradelab/journal-insights/pkg/types"
)

// wilsonZ is the z-score for the 95% Wilson confidence interval.
const wilsonZ = 1.96

// WindowStat holds the adaptive time-windowed statistics for one window
// position on one day.
type WindowStat struct {
	Day             string
	WindowStart     time.Time
	WindowEnd       time.Time
	WindowCenter    time.Time
	TradeCount      int
	WinRate         float64 // percent
	AvgPnL          float64
	TotalVolume     float64 // unsigned
	AvgTimeDistance float64 // minutes, mean open-to-open gap inside the window
	Significance    float64 // 1 - Wilson interval width
}

// SlidingWindows slides a window of the given length across each day and
// computes per-window trade statistics. The step size adapts to the day's
// trade density: busy days get finer steps so quiet stretches inside them
// still resolve, sparse days get coarser ones.
func SlidingWindows(groups []types.DailyGroup, window time.Duration) []WindowStat {
	var stats []WindowStat
	for _, g := range groups {
		if len(g.Trades) < 2 {
			continue
		}
		stats = append(stats, dayWindows(g, window)...)
	}
	return stats
}

func dayWindows(g types.DailyGroup, window time.Duration) []WindowStat {
	dayStart := g.Trades[0].OpenTime
	dayEnd := g.Trades[len(g.Trades)-1].OpenTime
	step := stepForDensity(len(g.Trades), dayEnd.Sub(dayStart))

	var stats []WindowStat
	for cur := dayStart; !cur.Add(window).After(dayEnd); cur = cur.Add(step) {
		windowEnd := cur.Add(window)

		var inWindow []types.Trade
		for _, t := range g.Trades {
			if !t.OpenTime.Before(cur) && t.OpenTime.Before(windowEnd) {
				inWindow = append(inWindow, t)
			}
		}
		if len(inWindow) == 0 {
			continue
		}

		wins := 0
		pnlSum := 0.0
		volume := 0.0
		for _, t := range inWindow {
			if t.Win() {
				wins++
			}
			pnlSum += t.PnL
			volume += math.Abs(t.OpenVolume)
		}

		gapSum := 0.0
		for i := 1; i < len(inWindow); i++ {
			gapSum += inWindow[i].OpenTime.Sub(inWindow[i-1].OpenTime).Minutes()
		}
		avgGap := 0.0
		if len(inWindow) > 1 {
			avgGap = gapSum / float64(len(inWindow)-1)
		}

		n := len(inWindow)
		stats = append(stats, WindowStat{
			Day:             g.Date.Format("2006-01-02"),
			WindowStart:     cur,
			WindowEnd:       windowEnd,
			WindowCenter:    cur.Add(window / 2),
			TradeCount:      n,
			WinRate:         float64(wins) / float64(n) * 100,
			AvgPnL:          pnlSum / float64(n),
			TotalVolume:     volume,
			AvgTimeDistance: avgGap,
			Significance:    WilsonSignificance(wins, n),
		})
	}
	return stats
}

// stepForDensity picks the window step from the day's trade density:
// 2 minutes at >=10 trades/hour, 3 at >=5, else 5.
func stepForDensity(tradeCount int, span time.Duration) time.Duration {
	hours := span.Hours()
	if hours <= 0 {
		return 5 * time.Minute
	}
	perHour := float64(tradeCount) / hours
	switch {
	case perHour >= 10:
		return 2 * time.Minute
	case perHour >= 5:
		return 3 * time.Minute
	default:
		return 5 * time.Minute
	}
}

// WilsonSignificance scores how trustworthy a win rate over n trades is as
// one minus the width of the Wilson 95% confidence interval: a narrower
// interval means a higher score. Zero observations score zero.
func WilsonSignificance(wins, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(wins) / float64(n)
	nf := float64(n)
	z2 := wilsonZ * wilsonZ
	width := 2 * wilsonZ * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf)) / (1 + z2/nf)
	return 1 - width
}
