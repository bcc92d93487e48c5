package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Tools contains the external binaries the pipeline shells out to.
type Tools struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	WhisperBinary string `toml:"whisper_binary"`
}

// Enhancement contains audio enhancement configuration.
type Enhancement struct {
	Enabled           bool    `toml:"enabled"`
	NoiseReduction    bool    `toml:"noise_reduction"`
	SpeechEnhancement bool    `toml:"speech_enhancement"`
	Normalization     bool    `toml:"normalization"`
	Strength          float64 `toml:"noise_reduction_strength"`
	TargetLoudness    float64 `toml:"target_loudness_db"`
}

// Recognition contains speech recognition configuration.
type Recognition struct {
	Priority        string `toml:"priority"`
	Language        string `toml:"language"`
	Domain          string `toml:"domain"`
	SampleRate      int    `toml:"sample_rate"`
	CUDAEnabled     bool   `toml:"cuda_enabled"`
	LongFileMinutes int    `toml:"long_file_minutes"`
}

// Diarization contains speaker diarization configuration.
type Diarization struct {
	Enabled     bool `toml:"enabled"`
	NumSpeakers int  `toml:"num_speakers"`
	MinSpeakers int  `toml:"min_speakers"`
	MaxSpeakers int  `toml:"max_speakers"`
}

// TextProcessing contains transcript cleanup configuration.
type TextProcessing struct {
	FixCapitalization   bool `toml:"fix_capitalization"`
	FixPunctuation      bool `toml:"fix_punctuation"`
	NormalizeNumbers    bool `toml:"normalize_numbers"`
	FixCommonMistakes   bool `toml:"fix_common_mistakes"`
	EnhanceFormatting   bool `toml:"enhance_formatting"`
	RemoveDisfluencies  bool `toml:"remove_disfluencies"`
	NormalizeWhitespace bool `toml:"normalize_whitespace"`
	DomainCorrections   bool `toml:"domain_corrections"`
}

// Subtitles contains caption shaping configuration.
type Subtitles struct {
	MaxCharsPerLine     int     `toml:"max_chars_per_line"`
	MaxLinesPerCue      int     `toml:"max_lines_per_cue"`
	MinDurationSeconds  float64 `toml:"min_duration_seconds"`
	MaxDurationSeconds  float64 `toml:"max_duration_seconds"`
	GapThresholdSeconds float64 `toml:"gap_threshold_seconds"`
}

// Workflow contains scheduler timing configuration.
type Workflow struct {
	ExtractTimeoutSeconds int `toml:"extract_timeout_seconds"`
	ProbeTimeoutSeconds   int `toml:"probe_timeout_seconds"`
	PauseLatencyMillis    int `toml:"pause_latency_millis"`
}

// ExtractTimeout returns the ffmpeg extraction bound as a duration.
func (w Workflow) ExtractTimeout() time.Duration {
	return time.Duration(w.ExtractTimeoutSeconds) * time.Second
}

// ProbeTimeout returns the ffprobe inspection bound as a duration.
func (w Workflow) ProbeTimeout() time.Duration {
	return time.Duration(w.ProbeTimeoutSeconds) * time.Second
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Queue          bool   `toml:"queue"`
	Errors         bool   `toml:"errors"`
}

// Preflight contains pre-run environment check configuration.
type Preflight struct {
	MinFreeDiskGiB      int `toml:"min_free_disk_gib"`
	LowQualityThreshold int `toml:"low_quality_threshold"`
}

// Config is the root application configuration.
type Config struct {
	Paths          Paths          `toml:"paths"`
	Tools          Tools          `toml:"tools"`
	Enhancement    Enhancement    `toml:"enhancement"`
	Recognition    Recognition    `toml:"recognition"`
	Diarization    Diarization    `toml:"diarization"`
	TextProcessing TextProcessing `toml:"text_processing"`
	Subtitles      Subtitles      `toml:"subtitles"`
	Workflow       Workflow       `toml:"workflow"`
	Logging        Logging        `toml:"logging"`
	Notifications  Notifications  `toml:"notifications"`
	Preflight      Preflight      `toml:"preflight"`
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	return expandHome("~/.config/xscribe/config.toml")
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. An empty path uses DefaultConfigPath.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath()
	}
	path = expandHome(path)

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.normalize()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write serializes the configuration to path, creating parent directories.
func (c *Config) Write(path string) error {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the staging, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the location of the batch queue database.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.LogDir, "queue.db")
}

// LockPath returns the location of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, ".xscribe.lock")
}

func (c *Config) normalize() {
	c.Paths.StagingDir = expandHome(c.Paths.StagingDir)
	c.Paths.OutputDir = expandHome(c.Paths.OutputDir)
	c.Paths.LogDir = expandHome(c.Paths.LogDir)
	c.Recognition.Priority = strings.ToLower(strings.TrimSpace(c.Recognition.Priority))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
