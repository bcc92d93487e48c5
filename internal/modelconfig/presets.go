package modelconfig

// Tier identifies a recognition-model size, ordered smallest to largest.
type Tier string

const (
	TierTiny   Tier = "tiny"
	TierBase   Tier = "base"
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

var tierOrder = []Tier{TierTiny, TierBase, TierSmall, TierMedium, TierLarge}

// Rank returns the tier's position in the size ordering, or -1 for an
// unknown tier.
func (t Tier) Rank() int {
	for i, tier := range tierOrder {
		if tier == t {
			return i
		}
	}
	return -1
}

// Valid reports whether the tier is a known model size.
func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// Tiers returns the ordered list of known tiers.
func Tiers() []Tier {
	cp := make([]Tier, len(tierOrder))
	copy(cp, tierOrder)
	return cp
}

// Priority selects the speed/accuracy trade-off for a run.
type Priority string

const (
	PrioritySpeed    Priority = "speed"
	PriorityBalanced Priority = "balanced"
	PriorityAccuracy Priority = "accuracy"
)

// ParsePriority validates a priority string, defaulting to balanced.
func ParsePriority(value string) Priority {
	switch Priority(value) {
	case PrioritySpeed, PriorityBalanced, PriorityAccuracy:
		return Priority(value)
	default:
		return PriorityBalanced
	}
}

// Config carries the engine tier and decode parameters for one attempt.
// Built per attempt and immutable once used.
type Config struct {
	Tier                      Tier
	Temperature               float64
	BeamSize                  int
	BestOf                    int
	Patience                  float64
	LengthPenalty             float64
	CompressionRatioThreshold float64
	LogProbThreshold          float64
	NoSpeechThreshold         float64
	ConditionOnPreviousText   bool
	InitialPrompt             string
	FP16                      bool
}

// Literal decode presets per priority.
var decodePresets = map[Priority]Config{
	PrioritySpeed: {
		Temperature:               0.0,
		BeamSize:                  1,
		BestOf:                    1,
		Patience:                  1.0,
		LengthPenalty:             1.0,
		CompressionRatioThreshold: 2.4,
		LogProbThreshold:          -1.0,
		NoSpeechThreshold:         0.6,
		ConditionOnPreviousText:   true,
		FP16:                      true,
	},
	PriorityBalanced: {
		Temperature:               0.0,
		BeamSize:                  5,
		BestOf:                    5,
		Patience:                  1.0,
		LengthPenalty:             1.0,
		CompressionRatioThreshold: 2.4,
		LogProbThreshold:          -1.0,
		NoSpeechThreshold:         0.6,
		ConditionOnPreviousText:   true,
		FP16:                      true,
	},
	PriorityAccuracy: {
		Temperature:               0.0,
		BeamSize:                  10,
		BestOf:                    10,
		Patience:                  2.0,
		LengthPenalty:             1.0,
		CompressionRatioThreshold: 2.4,
		LogProbThreshold:          -1.0,
		NoSpeechThreshold:         0.6,
		ConditionOnPreviousText:   true,
		FP16:                      true,
	},
}

// Noisy-audio override: wider temperature, broader search, looser
// compression gate, stricter no-speech gate. Cross-segment conditioning is
// disabled because adjacent segments cannot be assumed continuous under
// noise.
const (
	noisyTemperature       = 0.2
	noisyBeamSize          = 10
	noisyCompressionRatio  = 2.8
	noisyNoSpeechThreshold = 0.4

	noisyQualityBelow = 60.0
	noisySNRBelow     = 10.0
)

// Long recordings cap search breadth to keep decode time bounded.
const (
	longAudioMinutes   = 30.0
	longAudioBeamCap   = 5
	longAudioBestOfCap = 5
)

// Domain priming prompts passed to the engine as initial context.
var domainPrompts = map[string]string{
	"medical":   "The following is a clinical conversation including medical terminology, medications, and diagnoses.",
	"legal":     "The following is a legal discussion including contracts, statutes, and courtroom terminology.",
	"technical": "The following is a technical discussion about software, hardware, and engineering topics.",
}

// DomainPrompt returns the priming prompt for a domain tag, or empty.
func DomainPrompt(domain string) string {
	return domainPrompts[domain]
}
