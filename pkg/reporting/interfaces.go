package reporting

import (
	"time"

	"github.com/tradelab/journal-insights/internal/engine"
	"github.com/tradelab/journal-insights/internal/partition"
	"github.com/tradelab/journal-insights/pkg/types"
)

// ResultReporter defines interface for console output
type ResultReporter interface {
	OutputResult(res *engine.Result)
}

// WorkbookWriter defines interface for spreadsheet output
type WorkbookWriter interface {
	WriteWorkbook(res *engine.Result, trades []types.Trade, gaps []partition.GapRecord, path string) error
}

// GapWriter defines interface for flat-file gap export
type GapWriter interface {
	WriteGapsCSV(gaps []partition.GapRecord, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(journalPath string, runDate time.Time) string
	EnsureDirectoryExists(path string) error
}

var (
	_ ResultReporter = (*ConsoleReporter)(nil)
	_ WorkbookWriter = (*ExcelReporter)(nil)
	_ GapWriter      = (*DefaultCSVReporter)(nil)
	_ PathManager    = (*DefaultPathManager)(nil)
)
