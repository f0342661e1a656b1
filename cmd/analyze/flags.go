package main

import (
	"flag"
	"fmt"
	"strings"
)

// AnalyzeFlags holds all command line flags for the analyze command
type AnalyzeFlags struct {
	// Input
	JournalFile *string
	Broker      *string // tradingview, atas
	Sheet       *string // Excel sheet name, empty for the first sheet
	EnvFile     *string

	// Session window
	SessionStart *string // HH:MM
	SessionEnd   *string // HH:MM

	// Analysis parameters
	WindowMinutes    *int
	OnlyPositiveDays *bool
	CooldownMax      *float64 // seconds, 0 derives from the data
	Workers          *int

	// Output
	OutputJSON  *string
	OutputXLSX  *string
	OutputCSV   *string
	MetricsAddr *string // optional prometheus listen address
	Verbose     *bool

	ShowVersion *bool
}

// NewAnalyzeFlags creates and registers all command line flags
func NewAnalyzeFlags() *AnalyzeFlags {
	return &AnalyzeFlags{
		JournalFile: flag.String("journal", "", "Path to the journal export (CSV or XLSX)"),
		Broker:      flag.String("broker", "atas", "Export format: atas or tradingview"),
		Sheet:       flag.String("sheet", "", "Excel sheet name (first sheet when empty)"),
		EnvFile:     flag.String("env", ".env", "Environment file to load"),

		SessionStart: flag.String("session-start", "00:00", "Session window start (HH:MM)"),
		SessionEnd:   flag.String("session-end", "23:59", "Session window end (HH:MM)"),

		WindowMinutes:    flag.Int("window", 15, "Sliding window length in minutes"),
		OnlyPositiveDays: flag.Bool("only-positive-days", false, "Restrict drawdown aggregation to positive days"),
		CooldownMax:      flag.Float64("cooldown-max", 1800, "Cooldown sweep cap in seconds (0 derives from the data)"),
		Workers:          flag.Int("workers", 0, "Sweep worker count (0 uses the CPU count)"),

		OutputJSON:  flag.String("out", "", "Write the full result JSON to this path"),
		OutputXLSX:  flag.String("xlsx", "", "Write the analysis workbook to this path"),
		OutputCSV:   flag.String("csv", "", "Write the per-pair gap records CSV to this path"),
		MetricsAddr: flag.String("metrics-addr", "", "Serve prometheus metrics on this address (empty disables)"),
		Verbose:     flag.Bool("verbose", false, "Enable debug logging"),

		ShowVersion: flag.Bool("version", false, "Show version information"),
	}
}

// ValidateAnalyzeFlags validates flag combinations before the run starts
func ValidateAnalyzeFlags(flags *AnalyzeFlags) error {
	if *flags.ShowVersion {
		return nil
	}
	if strings.TrimSpace(*flags.JournalFile) == "" {
		return fmt.Errorf("-journal is required")
	}
	switch strings.ToLower(*flags.Broker) {
	case "atas", "tradingview":
	default:
		return fmt.Errorf("unknown broker %q (expected atas or tradingview)", *flags.Broker)
	}
	if *flags.WindowMinutes <= 0 {
		return fmt.Errorf("-window must be positive")
	}
	if *flags.CooldownMax < 0 {
		return fmt.Errorf("-cooldown-max must not be negative")
	}
	return nil
}
