// Package engine orchestrates the full journal analysis pipeline: partition,
// enrichment, intraday statistics, simulation sweeps and recommendation
// synthesis.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradelab/journal-insights/internal/analysis"
	"github.com/tradelab/journal-insights/internal/collab"
	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/internal/monitoring"
	"github.com/tradelab/journal-insights/internal/partition"
	"github.com/tradelab/journal-insights/internal/recommend"
	"github.com/tradelab/journal-insights/internal/simulate"
	"github.com/tradelab/journal-insights/pkg/types"
)

const component = "engine"

// StageTimings records how long each pipeline stage took. The fields are the
// stages; there is no dynamic stage registry.
type StageTimings struct {
	Partition       time.Duration `json:"partition"`
	Enrichment      time.Duration `json:"enrichment"`
	SlidingWindow   time.Duration `json:"sliding_window"`
	PeakTrough      time.Duration `json:"peak_trough"`
	Drawdown        time.Duration `json:"drawdown"`
	Cooldown        time.Duration `json:"cooldown"`
	Recommendations time.Duration `json:"recommendations"`
	Total           time.Duration `json:"total"`
}

// Result is the complete output of one analysis run.
type Result struct {
	Plots                PlotData               `json:"data"`
	Recommendations      recommend.Set          `json:"recommendations"`
	SegmentationFeatures []collab.TradeFeature  `json:"segmentation_features,omitempty"`
	SessionFeatures      partition.SessionSplit `json:"session_features"`
	Gaps                 []partition.GapRecord  `json:"-"`
	Timings              StageTimings           `json:"timings"`

	TotalTrades     int     `json:"total_trades"`
	TotalDays       int     `json:"total_days"`
	UnrestrictedPnL float64 `json:"unrestricted_pnl"`
}

// Engine runs the analysis pipeline for one RunConfig.
type Engine struct {
	cfg RunConfig
	log zerolog.Logger
}

// New creates an engine after validating the config.
func New(cfg RunConfig, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Analyze runs the full pipeline over reconstructed trades. Fatal categorized
// errors abort the run; a journal with no day carrying at least two trades is
// an insufficient-data error.
func (e *Engine) Analyze(ctx context.Context, trades []types.Trade) (*Result, error) {
	runStart := time.Now()
	res := &Result{}

	// Partition
	stageStart := time.Now()
	part := partition.GroupByDay(trades, e.cfg.sessionWindow())
	res.Timings.Partition = time.Since(stageStart)
	monitoring.ObserveStage("partition", res.Timings.Partition)

	res.TotalTrades = part.TotalTrades
	res.TotalDays = part.TotalDays
	res.UnrestrictedPnL = part.UnrestrictedPnL()

	active := part.ActiveGroups()
	e.log.Debug().
		Int("trades", part.TotalTrades).
		Int("days", part.TotalDays).
		Int("active_days", len(active)).
		Msg("partitioned journal")
	if len(active) == 0 {
		monitoring.RecordRun("insufficient_data", part.TotalTrades)
		return nil, apperrors.NewInsufficientDataError(component, "Analyze",
			"no day has at least two trades")
	}

	// Enrichment
	stageStart = time.Now()
	gaps, err := partition.BuildGaps(active)
	if err != nil {
		return nil, e.fail(err, part.TotalTrades)
	}
	res.Gaps = gaps
	sessionFeatures := partition.BuildSessionFeatures(part.Groups)
	res.SessionFeatures = partition.SplitByLastDay(sessionFeatures)
	res.SegmentationFeatures = collab.Features(part.Groups)
	res.Timings.Enrichment = time.Since(stageStart)
	monitoring.ObserveStage("enrichment", res.Timings.Enrichment)

	// Sliding window
	stageStart = time.Now()
	windows := analysis.SlidingWindows(active, e.cfg.window())
	res.Timings.SlidingWindow = time.Since(stageStart)
	monitoring.ObserveStage("sliding_window", res.Timings.SlidingWindow)

	// Peak / trough
	stageStart = time.Now()
	peaks, troughs := analysis.PeaksAndTroughs(active)
	res.Timings.PeakTrough = time.Since(stageStart)
	monitoring.ObserveStage("peak_trough", res.Timings.PeakTrough)

	// Drawdown sweep
	stageStart = time.Now()
	drawdownCurve := simulate.DrawdownCurve(active, simulate.DrawdownOptions{
		OnlyPositiveDays: e.cfg.DrawdownOnlyPositiveDays,
	})
	dayOptima := simulate.OptimalDrawdownPerDay(active)
	res.Timings.Drawdown = time.Since(stageStart)
	monitoring.ObserveStage("drawdown", res.Timings.Drawdown)

	// Cooldown sweep
	stageStart = time.Now()
	durations := simulate.CooldownDurations(e.cooldownMax(windows))
	cooldownPnL, err := simulate.ParallelCooldownCurve(ctx, active, durations,
		simulate.PnLMetric, simulate.AggSum, e.cfg.Workers)
	if err != nil {
		return nil, e.fail(err, part.TotalTrades)
	}
	cooldownWinRate, err := simulate.ParallelCooldownCurve(ctx, active, durations,
		simulate.PnLMetric, simulate.AggWinRate, e.cfg.Workers)
	if err != nil {
		return nil, e.fail(err, part.TotalTrades)
	}
	cooldownPnLStd, err := simulate.ParallelCooldownCurve(ctx, active, durations,
		simulate.PnLMetric, simulate.AggPnLStd, e.cfg.Workers)
	if err != nil {
		return nil, e.fail(err, part.TotalTrades)
	}
	res.Timings.Cooldown = time.Since(stageStart)
	monitoring.ObserveStage("cooldown", res.Timings.Cooldown)

	// Recommendations
	stageStart = time.Now()
	res.Recommendations = recommend.Synthesize(recommend.Inputs{
		Gaps:            gaps,
		Peaks:           peaks,
		Windows:         windows,
		DayOptima:       dayOptima,
		CooldownCurve:   cooldownPnL,
		DrawdownCurve:   drawdownCurve,
		TotalTrades:     part.TotalTrades,
		TotalDays:       part.TotalDays,
		UnrestrictedPnL: res.UnrestrictedPnL,
	})
	res.Recommendations.BreakPareto = recommend.BreakPareto(
		breakPoints(cooldownPnL, cooldownWinRate, cooldownPnLStd),
		e.cfg.ParetoObjectives, res.UnrestrictedPnL)
	res.Timings.Recommendations = time.Since(stageStart)
	monitoring.ObserveStage("recommendations", res.Timings.Recommendations)

	res.Plots = buildPlots(windows, gaps, peaks, troughs, drawdownCurve, cooldownPnL, active)

	res.Timings.Total = time.Since(runStart)
	monitoring.RecordRun("ok", part.TotalTrades)
	e.log.Info().
		Dur("total", res.Timings.Total).
		Int("gaps", len(gaps)).
		Int("windows", len(windows)).
		Msg("analysis complete")
	return res, nil
}

// cooldownMax resolves the sweep cap, deriving it from the largest observed
// average intra-window gap when not configured.
func (e *Engine) cooldownMax(windows []analysis.WindowStat) float64 {
	if e.cfg.CooldownMaxSeconds > 0 {
		return e.cfg.CooldownMaxSeconds
	}
	maxAvgGapSeconds := 0.0
	for _, w := range windows {
		if gap := w.AvgTimeDistance * 60; gap > maxAvgGapSeconds {
			maxAvgGapSeconds = gap
		}
	}
	return simulate.DeriveMaxCooldown(maxAvgGapSeconds)
}

func (e *Engine) fail(err error, tradeCount int) error {
	var category string
	for _, c := range []apperrors.Category{
		apperrors.CategoryInputSchema,
		apperrors.CategoryDataIntegrity,
		apperrors.CategoryDataQuality,
		apperrors.CategoryInsufficientData,
	} {
		if apperrors.IsCategory(err, c) {
			category = string(c)
			break
		}
	}
	if category == "" {
		category = "UNKNOWN"
	}
	monitoring.RecordError(category)
	monitoring.RecordRun("error", tradeCount)
	e.log.Error().Err(err).Str("category", category).Msg("analysis failed")
	return err
}
