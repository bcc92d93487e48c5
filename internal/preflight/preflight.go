// Package preflight verifies the environment before a run: external
// binaries on PATH, writable working directories, and enough free disk.
// Long or low-quality inputs produce warnings, never failures.
package preflight

import "xscribe/internal/config"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every environment check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckBinary("FFmpeg", cfg.Tools.FFmpegBinary),
		CheckBinary("FFprobe", cfg.Tools.FFprobeBinary),
		CheckBinary("Recognition engine", cfg.Tools.WhisperBinary),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFreeDisk("Free disk space", cfg.Paths.StagingDir, cfg.Preflight.MinFreeDiskGiB),
	}
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
