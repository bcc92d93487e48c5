package preflight_test

import (
	"path/filepath"
	"strings"
	"testing"

	"xscribe/internal/preflight"
	"xscribe/internal/testsupport"
)

func TestCheckBinary(t *testing.T) {
	if res := preflight.CheckBinary("shell", "sh"); !res.Passed {
		t.Fatalf("sh should resolve: %+v", res)
	}
	if res := preflight.CheckBinary("missing", "no-such-binary-xyz"); res.Passed {
		t.Fatalf("unknown binary should fail: %+v", res)
	}
	if res := preflight.CheckBinary("unset", "  "); res.Passed || res.Detail != "command not configured" {
		t.Fatalf("blank command should fail: %+v", res)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if res := preflight.CheckDirectoryAccess("tmp", dir); !res.Passed {
		t.Fatalf("temp dir should pass: %+v", res)
	}
	if res := preflight.CheckDirectoryAccess("missing", filepath.Join(dir, "absent")); res.Passed {
		t.Fatalf("missing dir should fail: %+v", res)
	}
}

func TestCheckFreeDisk(t *testing.T) {
	if res := preflight.CheckFreeDisk("disk", t.TempDir(), 0); !res.Passed {
		t.Fatalf("zero floor should pass: %+v", res)
	}
	if res := preflight.CheckFreeDisk("disk", t.TempDir(), 1<<20); res.Passed {
		t.Fatalf("petabyte floor should fail: %+v", res)
	}
}

func TestRunAllCoversEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := preflight.RunAll(cfg)
	if len(results) != 7 {
		t.Fatalf("expected 7 checks, got %d", len(results))
	}
	for _, res := range results {
		if strings.Contains(res.Name, "directory") && !res.Passed {
			t.Fatalf("directory check failed for test config: %+v", res)
		}
	}
}

func TestFileWarnings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Recognition.LongFileMinutes = 60
	cfg.Preflight.LowQualityThreshold = 40

	if warnings := preflight.FileWarnings(cfg, 10*60, 80); len(warnings) != 0 {
		t.Fatalf("short good file should not warn: %v", warnings)
	}
	warnings := preflight.FileWarnings(cfg, 2*60*60, 25)
	if len(warnings) != 2 {
		t.Fatalf("long low-quality file should warn twice: %v", warnings)
	}
	if !strings.Contains(warnings[0], "minutes") || !strings.Contains(warnings[1], "quality") {
		t.Fatalf("unexpected warning text: %v", warnings)
	}
}
