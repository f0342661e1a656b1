package engine

import (
	"time"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/internal/optimize"
	"github.com/tradelab/journal-insights/internal/partition"
	"github.com/tradelab/journal-insights/internal/recommend"
)

// RunConfig carries every knob for one analysis run. There is no process-wide
// state: two runs with different configs can share a process.
type RunConfig struct {
	// SessionStart and SessionEnd bound the time-of-day inclusion window.
	SessionStart time.Duration
	SessionEnd   time.Duration

	// WindowMinutes is the sliding-window length for intraday statistics.
	WindowMinutes int

	// DrawdownOnlyPositiveDays restricts the drawdown aggregation to days
	// whose unrestricted total PnL is positive.
	DrawdownOnlyPositiveDays bool

	// CooldownMaxSeconds caps the cooldown sweep. Zero derives the cap from
	// the largest observed average inter-trade gap.
	CooldownMaxSeconds float64

	// ParetoObjectives are the metrics scored in the break-time Pareto
	// analysis. Empty selects the default PnL / win-rate / PnL-volatility
	// trio.
	ParetoObjectives []optimize.Objective

	// Workers bounds the sweep worker pool. Zero or negative uses the CPU
	// count.
	Workers int
}

// DefaultRunConfig mirrors the defaults of the original journal analysis:
// full-day session, 15-minute windows, 30-minute cooldown sweep.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		SessionStart:       0,
		SessionEnd:         24*time.Hour - time.Second,
		WindowMinutes:      15,
		CooldownMaxSeconds: 1800,
		ParetoObjectives:   recommend.DefaultBreakObjectives(),
	}
}

// Validate rejects configs that cannot describe a run.
func (c RunConfig) Validate() error {
	if c.SessionEnd <= c.SessionStart {
		return apperrors.New(apperrors.CategoryInputSchema, component, "Validate",
			"session end must be after session start")
	}
	if c.WindowMinutes <= 0 {
		return apperrors.New(apperrors.CategoryInputSchema, component, "Validate",
			"window minutes must be positive")
	}
	if c.CooldownMaxSeconds < 0 {
		return apperrors.New(apperrors.CategoryInputSchema, component, "Validate",
			"cooldown max seconds must not be negative")
	}
	return nil
}

// sessionWindow converts the config bounds into the partition filter.
func (c RunConfig) sessionWindow() partition.SessionWindow {
	return partition.SessionWindow{Start: c.SessionStart, End: c.SessionEnd}
}

// window returns the sliding-window length.
func (c RunConfig) window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}
