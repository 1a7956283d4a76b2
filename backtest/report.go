package backtest

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteReport writes the replay result as an indented JSON artifact at path,
// replacing any previous report.
func WriteReport(path string, res Result) error {
	data, err := json.MarshalIndent(res, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
