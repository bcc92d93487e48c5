package modelconfig

import (
	"log/slog"
	"sync"

	"xscribe/internal/analysis"
	"xscribe/internal/logging"
)

// Selector derives engine configuration from audio characteristics and
// keeps a rolling history of observed performance for advisory feedback.
type Selector struct {
	logger *slog.Logger

	mu      sync.Mutex
	history []Record
}

// New constructs a Selector. A nil logger is replaced with a no-op one.
func New(logger *slog.Logger) *Selector {
	return &Selector{logger: logging.WithComponent(logger, "modelconfig")}
}

// Select is a pure function of characteristics + priority + domain: the
// same inputs always produce the same Config. History never changes the
// selection automatically.
func (s *Selector) Select(c analysis.Characteristics, priority Priority, domain string) Config {
	cfg := decodePresets[priority]
	cfg.Tier = selectTier(c, priority)
	cfg.InitialPrompt = DomainPrompt(domain)

	if c.QualityScore < noisyQualityBelow || c.SNREstimate < noisySNRBelow {
		cfg.Temperature = noisyTemperature
		cfg.BeamSize = noisyBeamSize
		cfg.CompressionRatioThreshold = noisyCompressionRatio
		cfg.NoSpeechThreshold = noisyNoSpeechThreshold
		cfg.ConditionOnPreviousText = false
	}

	if c.Duration > longAudioMinutes*60 {
		if cfg.BeamSize > longAudioBeamCap {
			cfg.BeamSize = longAudioBeamCap
		}
		if cfg.BestOf > longAudioBestOfCap {
			cfg.BestOf = longAudioBestOfCap
		}
	}

	s.logger.Debug("model config selected",
		logging.String(logging.FieldEngine, string(cfg.Tier)),
		logging.String("priority", string(priority)),
		logging.Float64("quality_score", c.QualityScore),
		logging.Int("beam_size", cfg.BeamSize),
	)
	return cfg
}

func selectTier(c analysis.Characteristics, priority Priority) Tier {
	minutes := c.Duration / 60

	switch priority {
	case PrioritySpeed:
		// Smallest tier sufficing for the duration bucket.
		switch {
		case minutes <= 5:
			return TierTiny
		case minutes <= 15:
			return TierBase
		default:
			return TierSmall
		}
	case PriorityAccuracy:
		if c.QualityScore >= 80 && minutes <= 30 {
			return TierMedium
		}
		return TierLarge
	default: // balanced: better audio tolerates a smaller model
		switch {
		case c.QualityScore >= 90:
			return TierTiny
		case c.QualityScore >= 70:
			return TierBase
		case c.QualityScore >= 50:
			return TierSmall
		default:
			return TierMedium
		}
	}
}
