package subtitles

import (
	"fmt"
	"os"
	"path/filepath"

	"xscribe/internal/result"
)

// Save renders the result in the requested format and writes it to path,
// creating parent directories as needed.
func (e *Engine) Save(res *result.Result, path, format string) error {
	content, err := e.Generate(res, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("subtitles: ensure output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("subtitles: write %s: %w", path, err)
	}
	return nil
}
