// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"math"
	"path/filepath"
	"testing"

	"xscribe/internal/audio"
	"xscribe/internal/config"
)

// NewConfig returns a default configuration rooted in per-test temp
// directories, with every subprocess-dependent feature disabled.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Logging.Level = "error"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// Tone builds a sine waveform at the given frequency and amplitude.
func Tone(freq, amplitude, seconds float64, sampleRate int) audio.Waveform {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return audio.Waveform{Samples: samples, SampleRate: sampleRate}
}

// WriteToneWAV writes a one-second 440 Hz tone to path.
func WriteToneWAV(t *testing.T, path string) {
	t.Helper()
	if err := audio.WriteWAVFile(path, Tone(440, 0.5, 1.0, 16000)); err != nil {
		t.Fatalf("write tone wav: %v", err)
	}
}
