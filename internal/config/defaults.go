package config

const (
	defaultStagingDir            = "~/.local/share/xscribe/staging"
	defaultOutputDir             = "~/.local/share/xscribe/output"
	defaultLogDir                = "~/.local/share/xscribe/logs"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultWhisperBinary         = "faster-whisper"
	defaultSampleRate            = 16000
	defaultPriority              = "balanced"
	defaultLongFileMinutes       = 60
	defaultMinSpeakers           = 2
	defaultMaxSpeakers           = 6
	defaultNoiseStrength         = 0.5
	defaultTargetLoudness        = -23.0
	defaultMaxCharsPerLine       = 42
	defaultMaxLinesPerCue        = 2
	defaultMinCueSeconds         = 1.0
	defaultMaxCueSeconds         = 7.0
	defaultGapThresholdSeconds   = 0.3
	defaultExtractTimeoutSeconds = 300
	defaultProbeTimeoutSeconds   = 30
	defaultPauseLatencyMillis    = 200
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultNotifyTimeout         = 10
	defaultMinFreeDiskGiB        = 2
	defaultLowQualityThreshold   = 40
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			WhisperBinary: defaultWhisperBinary,
		},
		Enhancement: Enhancement{
			Enabled:           true,
			NoiseReduction:    true,
			SpeechEnhancement: true,
			Normalization:     true,
			Strength:          defaultNoiseStrength,
			TargetLoudness:    defaultTargetLoudness,
		},
		Recognition: Recognition{
			Priority:        defaultPriority,
			SampleRate:      defaultSampleRate,
			LongFileMinutes: defaultLongFileMinutes,
		},
		Diarization: Diarization{
			Enabled:     true,
			MinSpeakers: defaultMinSpeakers,
			MaxSpeakers: defaultMaxSpeakers,
		},
		TextProcessing: TextProcessing{
			FixCapitalization:   true,
			FixPunctuation:      true,
			NormalizeNumbers:    true,
			FixCommonMistakes:   true,
			EnhanceFormatting:   true,
			RemoveDisfluencies:  false,
			NormalizeWhitespace: true,
			DomainCorrections:   true,
		},
		Subtitles: Subtitles{
			MaxCharsPerLine:     defaultMaxCharsPerLine,
			MaxLinesPerCue:      defaultMaxLinesPerCue,
			MinDurationSeconds:  defaultMinCueSeconds,
			MaxDurationSeconds:  defaultMaxCueSeconds,
			GapThresholdSeconds: defaultGapThresholdSeconds,
		},
		Workflow: Workflow{
			ExtractTimeoutSeconds: defaultExtractTimeoutSeconds,
			ProbeTimeoutSeconds:   defaultProbeTimeoutSeconds,
			PauseLatencyMillis:    defaultPauseLatencyMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Queue:          true,
			Errors:         true,
		},
		Preflight: Preflight{
			MinFreeDiskGiB:      defaultMinFreeDiskGiB,
			LowQualityThreshold: defaultLowQualityThreshold,
		},
	}
}
