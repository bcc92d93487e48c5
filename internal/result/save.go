package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the result as indented JSON, creating parent directories
// as needed.
func Save(path string, r *Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("result: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("result: create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("result: write %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and validates a stored result.
func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("result: read %s: %w", path, err)
	}
	return Load(data)
}
