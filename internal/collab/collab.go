// Package collab defines the data contracts for external analysis
// collaborators. The engine produces feature tables and accepts their
// results; the clustering and scoring algorithms themselves live outside
// this module.
package collab

import (
	"context"
	"math"
	"time"

	"github.com/tradelab/journal-insights/internal/partition"
	"github.com/tradelab/journal-insights/pkg/types"
)

// TradeFeature is one row of the segmentation feature table.
type TradeFeature struct {
	Day          string    `json:"day"`
	OpenTime     time.Time `json:"open_time"`
	PnL          float64   `json:"pnl"`
	DurationSec  float64   `json:"duration_sec"`
	SignedVolume float64   `json:"signed_volume"`
	ReturnPerMin float64   `json:"return_per_min"`
	PauseSec     float64   `json:"pause_sec"` // gap since the previous close, 0 for the day's first trade
	HourOfDay    int       `json:"hour_of_day"`
	Weekday      int       `json:"weekday"` // time.Weekday numbering, Sunday = 0
}

// Features builds the segmentation feature table over all daily groups in
// partition order.
func Features(groups []types.DailyGroup) []TradeFeature {
	var features []TradeFeature
	for _, g := range groups {
		var lastClose time.Time
		for i, t := range g.Trades {
			f := TradeFeature{
				Day:          g.Date.Format("2006-01-02"),
				OpenTime:     t.OpenTime,
				PnL:          t.PnL,
				DurationSec:  t.Duration().Seconds(),
				SignedVolume: t.OpenVolume,
				HourOfDay:    t.OpenTime.Hour(),
				Weekday:      int(t.OpenTime.Weekday()),
			}
			if minutes := t.Duration().Minutes(); minutes > 0 {
				f.ReturnPerMin = t.PnL / minutes
			}
			if i > 0 {
				f.PauseSec = math.Max(0, t.OpenTime.Sub(lastClose).Seconds())
			}
			features = append(features, f)
			lastClose = t.CloseTime
		}
	}
	return features
}

// ClusterSummary is what a segmentation collaborator reports back per
// discovered trade cluster.
type ClusterSummary struct {
	ClusterID   int     `json:"cluster_id"`
	Label       string  `json:"label"`
	TradeCount  int     `json:"trade_count"`
	MeanPnL     float64 `json:"mean_pnl"`
	WinRate     float64 `json:"win_rate"`
	Description string  `json:"description"`
}

// SegmentationService clusters the trade feature table into behavioral
// segments.
type SegmentationService interface {
	Segment(ctx context.Context, features []TradeFeature) ([]ClusterSummary, error)
}

// Signal is the session assistant's per-trade verdict.
type Signal string

const (
	SignalStop         Signal = "STOP"
	SignalContinue     Signal = "CONTINUE"
	SignalIncreaseRisk Signal = "INCREASE_RISK"
)

// SessionAssessment scores one inference-day trade.
type SessionAssessment struct {
	Day        string  `json:"day"`
	TradeIndex int     `json:"trade_index"`
	Score      float64 `json:"score"`
	Signal     Signal  `json:"signal"`
}

// SessionAssistant consumes the walk-forward session feature split and
// returns one assessment per inference trade.
type SessionAssistant interface {
	Assess(ctx context.Context, split partition.SessionSplit) ([]SessionAssessment, error)
}
