package partition

import (
	"sort"
	"time"

	"github.com/tradelab/journal-insights/pkg/types"
)

const component = "partition"

// SessionWindow is the time-of-day inclusion window for trades, expressed as
// offsets from midnight. A trade belongs to the session when its open time of
// day falls inside [Start, End].
type SessionWindow struct {
	Start time.Duration
	End   time.Duration
}

// FullDay admits every trade regardless of time of day.
var FullDay = SessionWindow{Start: 0, End: 24*time.Hour - time.Second}

// Contains reports whether the time of day of t falls inside the window.
func (w SessionWindow) Contains(t time.Time) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	return offset >= w.Start && offset <= w.End
}

// Partition is the per-day view of a trade history after session filtering.
// Totals count every admitted trade and day; Groups with fewer than 2 trades
// carry no pair signal and are skipped by downstream per-day computations but
// still contribute to the totals.
type Partition struct {
	Groups      []types.DailyGroup
	TotalTrades int
	TotalDays   int
}

// GroupByDay filters trades to the session window, assigns each to its
// calendar day by open time, and returns per-day groups ordered by date with
// trades ordered by open time within each group.
func GroupByDay(trades []types.Trade, window SessionWindow) Partition {
	byDay := make(map[time.Time][]types.Trade)
	for _, t := range trades {
		if !window.Contains(t.OpenTime) {
			continue
		}
		day := dateOf(t.OpenTime)
		byDay[day] = append(byDay[day], t)
	}

	dates := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	p := Partition{Groups: make([]types.DailyGroup, 0, len(dates))}
	for _, d := range dates {
		dayTrades := byDay[d]
		sort.SliceStable(dayTrades, func(i, j int) bool {
			return dayTrades[i].OpenTime.Before(dayTrades[j].OpenTime)
		})
		p.Groups = append(p.Groups, types.DailyGroup{Date: d, Trades: dayTrades})
		p.TotalTrades += len(dayTrades)
		p.TotalDays++
	}
	return p
}

// ActiveGroups returns the groups with at least two trades, the minimum for
// any pairwise (gap, peak, drawdown, cooldown) computation.
func (p Partition) ActiveGroups() []types.DailyGroup {
	active := make([]types.DailyGroup, 0, len(p.Groups))
	for _, g := range p.Groups {
		if len(g.Trades) >= 2 {
			active = append(active, g)
		}
	}
	return active
}

// UnrestrictedPnL returns the total PnL over all admitted groups with at
// least two trades, the baseline every simulation curve is compared against.
func (p Partition) UnrestrictedPnL() float64 {
	total := 0.0
	for _, g := range p.ActiveGroups() {
		total += g.TotalPnL()
	}
	return total
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
