package partition

import (
	"math"
	"time"

	"github.com/tradelab/journal-insights/pkg/types"
)

// SessionFeature is the per-trade running-session feature vector consumed by
// the external session-assistant collaborator. All running statistics are
// computed over the trades strictly before the current one, so the stream is
// walk-forward safe.
type SessionFeature struct {
	Day                string
	TradeIndex         int
	PnL                float64
	CumulativePnL      float64 // PnL banked before this trade
	TradesSoFar        int
	RunningWinRate     float64 // percent, over prior trades
	MeanHoldingSeconds float64
	MeanVolume         float64
	PnLStdDev          float64 // population std-dev over prior trades
	PrevDayPnL         float64
	SecondsSinceLast   float64
	MinutesSinceOpen   float64
}

// SessionSplit partitions the feature stream for the collaborator: every day
// but the last is training material, the last day is the inference target.
type SessionSplit struct {
	Train     []SessionFeature
	Inference []SessionFeature
}

// BuildSessionFeatures walks each day in open-time order and emits one
// feature vector per trade. Days keep their partition order, so the previous
// day's total PnL is always known when a day starts.
func BuildSessionFeatures(groups []types.DailyGroup) []SessionFeature {
	var features []SessionFeature
	prevDayPnL := 0.0

	for _, g := range groups {
		if len(g.Trades) == 0 {
			continue
		}
		sessionOpen := g.Trades[0].OpenTime

		var (
			cumPnL     float64
			wins       int
			holdingSum float64
			volumeSum  float64
			pnls       []float64
			lastClose  time.Time
			haveLast   bool
		)

		for i, t := range g.Trades {
			f := SessionFeature{
				Day:              g.Date.Format("2006-01-02"),
				TradeIndex:       i,
				PnL:              t.PnL,
				CumulativePnL:    cumPnL,
				TradesSoFar:      i,
				PrevDayPnL:       prevDayPnL,
				MinutesSinceOpen: t.OpenTime.Sub(sessionOpen).Minutes(),
			}
			if i > 0 {
				f.RunningWinRate = float64(wins) / float64(i) * 100
				f.MeanHoldingSeconds = holdingSum / float64(i)
				f.MeanVolume = volumeSum / float64(i)
				f.PnLStdDev = popStdDev(pnls)
			}
			if haveLast {
				f.SecondsSinceLast = t.OpenTime.Sub(lastClose).Seconds()
			}
			features = append(features, f)

			cumPnL += t.PnL
			if t.Win() {
				wins++
			}
			holdingSum += t.Duration().Seconds()
			volumeSum += math.Abs(t.OpenVolume)
			pnls = append(pnls, t.PnL)
			lastClose = t.CloseTime
			haveLast = true
		}
		prevDayPnL = g.TotalPnL()
	}
	return features
}

// SplitByLastDay separates the feature stream into training days and the
// final inference day.
func SplitByLastDay(features []SessionFeature) SessionSplit {
	if len(features) == 0 {
		return SessionSplit{}
	}
	lastDay := features[len(features)-1].Day
	split := SessionSplit{}
	for _, f := range features {
		if f.Day == lastDay {
			split.Inference = append(split.Inference, f)
		} else {
			split.Train = append(split.Train, f)
		}
	}
	return split
}

func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return math.Sqrt(variance / float64(len(xs)))
}
