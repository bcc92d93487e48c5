package preflight

import (
	"fmt"

	"xscribe/internal/config"
)

// FileWarnings returns advisory warnings for one input. Warnings ask
// the user to confirm before proceeding; they never fail a run.
func FileWarnings(cfg *config.Config, durationSeconds, qualityScore float64) []string {
	var warnings []string

	longMinutes := cfg.Recognition.LongFileMinutes
	if longMinutes > 0 && durationSeconds > float64(longMinutes)*60 {
		warnings = append(warnings, fmt.Sprintf(
			"recording is %.0f minutes long (threshold %d); transcription may take a while",
			durationSeconds/60, longMinutes))
	}

	threshold := cfg.Preflight.LowQualityThreshold
	if threshold > 0 && qualityScore < float64(threshold) {
		warnings = append(warnings, fmt.Sprintf(
			"audio quality score %.0f is below %d; expect reduced accuracy",
			qualityScore, threshold))
	}

	return warnings
}
