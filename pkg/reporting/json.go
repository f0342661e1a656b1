package reporting

import (
	"encoding/json"
	"os"

	"github.com/tradelab/journal-insights/internal/engine"
)

// FormatResult marshals an analysis result as indented JSON.
func FormatResult(res *engine.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// WriteResultJSON writes the analysis result to path, creating parent
// directories as needed.
func WriteResultJSON(res *engine.Result, path string) error {
	data, err := FormatResult(res)
	if err != nil {
		return err
	}
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
