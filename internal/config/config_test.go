package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"xscribe/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Recognition.Priority != "balanced" {
		t.Fatalf("expected default priority balanced, got %q", cfg.Recognition.Priority)
	}
	if cfg.Subtitles.MaxCharsPerLine != 42 {
		t.Fatalf("expected default line budget 42, got %d", cfg.Subtitles.MaxCharsPerLine)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[recognition]
priority = "accuracy"
language = "en"

[subtitles]
max_chars_per_line = 37

[paths]
staging_dir = "` + dir + `/staging"
output_dir = "` + dir + `/out"
log_dir = "` + dir + `/logs"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Recognition.Priority != "accuracy" {
		t.Fatalf("expected accuracy, got %q", cfg.Recognition.Priority)
	}
	if cfg.Subtitles.MaxCharsPerLine != 37 {
		t.Fatalf("expected 37 chars per line, got %d", cfg.Subtitles.MaxCharsPerLine)
	}
	if cfg.Workflow.ExtractTimeoutSeconds != 300 {
		t.Fatalf("untouched sections should keep defaults, got %d", cfg.Workflow.ExtractTimeoutSeconds)
	}
}

func TestWorkflowTimeoutDurations(t *testing.T) {
	cfg := config.Default()
	if got := cfg.Workflow.ExtractTimeout(); got != 5*time.Minute {
		t.Fatalf("extract timeout %v, want 5m", got)
	}
	if got := cfg.Workflow.ProbeTimeout(); got != 30*time.Second {
		t.Fatalf("probe timeout %v, want 30s", got)
	}

	cfg.Workflow.ProbeTimeoutSeconds = 7
	if got := cfg.Workflow.ProbeTimeout(); got != 7*time.Second {
		t.Fatalf("probe timeout %v, want 7s", got)
	}
}

func TestLoadRejectsInvalidPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[recognition]\npriority = \"turbo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown priority")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := config.Default()
	cfg.Recognition.Language = "de"
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Recognition.Language != "de" {
		t.Fatalf("round trip lost language hint, got %q", loaded.Recognition.Language)
	}
}
