package config

import (
	"fmt"
	"strings"
)

var validPriorities = map[string]struct{}{
	"speed":    {},
	"balanced": {},
	"accuracy": {},
}

// Validate checks configuration invariants before use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("config: staging_dir is required")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return fmt.Errorf("config: output_dir is required")
	}
	if _, ok := validPriorities[c.Recognition.Priority]; !ok {
		return fmt.Errorf("config: recognition priority %q must be speed, balanced, or accuracy", c.Recognition.Priority)
	}
	if c.Recognition.SampleRate <= 0 {
		return fmt.Errorf("config: sample_rate must be positive, got %d", c.Recognition.SampleRate)
	}
	if c.Enhancement.Strength < 0 || c.Enhancement.Strength > 1 {
		return fmt.Errorf("config: noise_reduction_strength %.2f must be within [0,1]", c.Enhancement.Strength)
	}
	if c.Diarization.MinSpeakers < 1 {
		return fmt.Errorf("config: min_speakers must be at least 1, got %d", c.Diarization.MinSpeakers)
	}
	if c.Diarization.MaxSpeakers < c.Diarization.MinSpeakers {
		return fmt.Errorf("config: max_speakers %d must be >= min_speakers %d", c.Diarization.MaxSpeakers, c.Diarization.MinSpeakers)
	}
	if c.Diarization.NumSpeakers < 0 {
		return fmt.Errorf("config: num_speakers must not be negative, got %d", c.Diarization.NumSpeakers)
	}
	if c.Subtitles.MaxCharsPerLine <= 0 {
		return fmt.Errorf("config: max_chars_per_line must be positive, got %d", c.Subtitles.MaxCharsPerLine)
	}
	if c.Subtitles.MaxLinesPerCue <= 0 {
		return fmt.Errorf("config: max_lines_per_cue must be positive, got %d", c.Subtitles.MaxLinesPerCue)
	}
	if c.Subtitles.MinDurationSeconds <= 0 {
		return fmt.Errorf("config: min_duration_seconds must be positive, got %.2f", c.Subtitles.MinDurationSeconds)
	}
	if c.Subtitles.GapThresholdSeconds < 0 {
		return fmt.Errorf("config: gap_threshold_seconds must not be negative, got %.2f", c.Subtitles.GapThresholdSeconds)
	}
	if c.Workflow.ExtractTimeoutSeconds <= 0 {
		return fmt.Errorf("config: extract_timeout_seconds must be positive, got %d", c.Workflow.ExtractTimeoutSeconds)
	}
	if c.Workflow.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("config: probe_timeout_seconds must be positive, got %d", c.Workflow.ProbeTimeoutSeconds)
	}
	if c.Workflow.PauseLatencyMillis <= 0 {
		return fmt.Errorf("config: pause_latency_millis must be positive, got %d", c.Workflow.PauseLatencyMillis)
	}
	return nil
}
