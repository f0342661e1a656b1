package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPathManager implements output path management for analysis artifacts.
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir derives the output directory from the journal filename
// and the run date, e.g. results/journal_2025-03-10.
func (p *DefaultPathManager) GetDefaultOutputDir(journalPath string, runDate time.Time) string {
	base := strings.TrimSuffix(filepath.Base(journalPath), filepath.Ext(journalPath))
	if base == "" {
		base = "journal"
	}
	return filepath.Join("results", fmt.Sprintf("%s_%s", base, runDate.Format("2006-01-02")))
}

// EnsureDirectoryExists creates the parent directory of path if needed.
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// Package-level convenience function
func EnsureDirectoryExists(path string) error {
	return NewDefaultPathManager().EnsureDirectoryExists(path)
}
