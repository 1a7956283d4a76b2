package store

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/qtsys/quant/portfolio"
)

// JSONFile persists ledger state as an indented JSON document. A missing or
// corrupt file loads as a fresh portfolio rather than failing.
type JSONFile struct {
	path string
}

// NewJSONFile creates a store backed by the file at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads the persisted state. found is false when the file does not
// exist or cannot be parsed.
func (j *JSONFile) Load() (portfolio.State, bool, error) {
	data, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		zap.L().Info("portfolio file not found, starting fresh", zap.String("path", j.path))
		return portfolio.State{}, false, nil
	}
	if err != nil {
		return portfolio.State{}, false, fmt.Errorf("read portfolio file: %w", err)
	}

	var state portfolio.State
	if err := json.Unmarshal(data, &state); err != nil {
		zap.L().Warn("portfolio file corrupt, starting fresh",
			zap.String("path", j.path),
			zap.Error(err))
		return portfolio.State{}, false, nil
	}
	return state, true, nil
}

// Save writes the state to disk, replacing any previous content.
func (j *JSONFile) Save(s portfolio.State) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0644); err != nil {
		return fmt.Errorf("write portfolio file: %w", err)
	}
	return nil
}
