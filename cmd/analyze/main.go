package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tradelab/journal-insights/internal/aggregate"
	"github.com/tradelab/journal-insights/internal/engine"
	"github.com/tradelab/journal-insights/internal/ingest"
	"github.com/tradelab/journal-insights/internal/monitoring"
	"github.com/tradelab/journal-insights/pkg/types"
)

const (
	AppName    = "Journal Insights"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewAnalyzeFlags()
	flag.Parse()

	if err := ValidateAnalyzeFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "flag validation error: %v\n", err)
		os.Exit(2)
	}

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	loadEnvironment(*flags.EnvFile)
	log := newLogger(*flags.Verbose)

	health := monitoring.NewHealthChecker()
	if *flags.MetricsAddr != "" {
		go serveMetrics(*flags.MetricsAddr, health, log)
	}

	cfg, err := buildRunConfig(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	trades, err := loadTrades(flags, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load journal")
	}
	log.Info().Int("trades", len(trades)).Str("journal", *flags.JournalFile).Msg("journal loaded")

	eng, err := engine.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	health.RunStarted()
	result, err := eng.Analyze(context.Background(), trades)
	health.RunFinished(len(trades), err)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	if err := writeOutputs(flags, result, trades); err != nil {
		log.Fatal().Err(err).Msg("failed to write outputs")
	}
}

// loadEnvironment loads the env file when present; a missing file is fine.
func loadEnvironment(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func serveMetrics(addr string, health *monitoring.HealthChecker, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}

// loadTrades reads the journal file and reconstructs trades. TradingView
// exports carry raw fills and run through the fill state machine; paired
// journal exports run through the overlap merge.
func loadTrades(flags *AnalyzeFlags, log zerolog.Logger) ([]types.Trade, error) {
	path := *flags.JournalFile
	broker := strings.ToLower(*flags.Broker)

	if broker == "tradingview" {
		fills, err := ingest.ReadTradingViewCSV(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Int("fills", len(fills)).Msg("fills ingested")
		return aggregate.BuildTrades(fills)
	}

	var records []types.Trade
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = ingest.ReadJournalExcel(path, *flags.Sheet)
	} else {
		records, err = ingest.ReadJournalCSV(path)
	}
	if err != nil {
		return nil, err
	}
	log.Debug().Int("records", len(records)).Msg("journal records ingested")
	return aggregate.MergeOverlapping(records)
}

func buildRunConfig(flags *AnalyzeFlags) (engine.RunConfig, error) {
	cfg := engine.DefaultRunConfig()
	cfg.WindowMinutes = *flags.WindowMinutes
	cfg.DrawdownOnlyPositiveDays = *flags.OnlyPositiveDays
	cfg.CooldownMaxSeconds = *flags.CooldownMax
	cfg.Workers = *flags.Workers

	start, err := parseClock(*flags.SessionStart)
	if err != nil {
		return cfg, fmt.Errorf("invalid -session-start: %w", err)
	}
	end, err := parseClock(*flags.SessionEnd)
	if err != nil {
		return cfg, fmt.Errorf("invalid -session-end: %w", err)
	}
	cfg.SessionStart = start
	cfg.SessionEnd = end
	return cfg, nil
}

func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
