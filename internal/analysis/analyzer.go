package analysis

import (
	"log/slog"
	"math"

	"xscribe/internal/audio"
	"xscribe/internal/logging"
)

// Characteristics scores a recording's quality. Produced once per file and
// read-only afterwards.
type Characteristics struct {
	QualityScore         float64
	SNREstimate          float64
	ClippingRatio        float64
	SilenceRatio         float64
	SpectralCentroidMean float64
	Duration             float64
	SampleRate           int
	Recommendations      []string
}

const (
	clippingThreshold = 0.99
	silenceThreshold  = 0.01

	// Recommendation triggers.
	recommendNoiseReductionBelowSNR = 15.0
	recommendClippingAbove          = 0.02
	recommendTrimSilenceAbove       = 0.4
	recommendHighFreqBelowCentroid  = 800.0
)

// Analyzer scores waveform recording quality. Analysis is advisory: it
// never returns an error, degrading to a neutral default instead.
type Analyzer struct {
	logger *slog.Logger
}

// New constructs an Analyzer. A nil logger is replaced with a no-op one.
func New(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logging.WithComponent(logger, "analysis")}
}

// Neutral returns the default characteristics used when analysis cannot
// run: score 50, empty fields, one advisory recommendation.
func Neutral() Characteristics {
	return Characteristics{
		QualityScore:    50,
		Recommendations: []string{"Audio analysis failed - using default settings"},
	}
}

// Analyze computes quality characteristics for a decoded mono waveform.
func (a *Analyzer) Analyze(w audio.Waveform) Characteristics {
	if w.Empty() || w.SampleRate <= 0 {
		c := Neutral()
		c.QualityScore = 0
		c.Recommendations = []string{"Audio file appears to be empty or invalid"}
		return c
	}

	c := Characteristics{
		Duration:   w.Duration(),
		SampleRate: w.SampleRate,
	}

	c.SNREstimate = estimateSNR(w.Samples)
	c.ClippingRatio = amplitudeRatio(w.Samples, clippingThreshold, true)
	c.SilenceRatio = amplitudeRatio(w.Samples, silenceThreshold, false)
	c.SpectralCentroidMean = meanSpectralCentroid(w)

	c.QualityScore = scoreQuality(c)
	c.Recommendations = recommend(c)

	a.logger.Debug("audio quality analyzed",
		logging.Float64("quality_score", c.QualityScore),
		logging.Float64("snr_db", c.SNREstimate),
		logging.Float64("clipping_ratio", c.ClippingRatio),
		logging.Float64("silence_ratio", c.SilenceRatio),
		logging.Float64("centroid_hz", c.SpectralCentroidMean),
	)
	return c
}

// estimateSNR approximates signal-to-noise ratio as the dB ratio between
// the 90th and 10th percentile amplitudes.
func estimateSNR(samples []float64) float64 {
	signal := audio.Percentile(samples, 90)
	noise := audio.Percentile(samples, 10)
	if noise <= 0 || signal <= noise {
		return 0
	}
	snr := 20 * math.Log10(signal/noise)
	if math.IsNaN(snr) || math.IsInf(snr, 0) {
		return 0
	}
	return snr
}

// amplitudeRatio returns the fraction of samples whose absolute amplitude
// is above (or below) the threshold.
func amplitudeRatio(samples []float64, threshold float64, above bool) float64 {
	if len(samples) == 0 {
		if above {
			return 0
		}
		return 1
	}
	count := 0
	for _, s := range samples {
		amp := math.Abs(s)
		if above && amp > threshold {
			count++
		} else if !above && amp < threshold {
			count++
		}
	}
	return float64(count) / float64(len(samples))
}

func meanSpectralCentroid(w audio.Waveform) float64 {
	frameLen, hopLen := audio.FrameLengths(w.SampleRate)
	frames := audio.Frames(w.Samples, frameLen, hopLen)
	if len(frames) == 0 {
		// Too short for framing; fall back to a single whole-signal frame.
		frames = [][]float64{w.Samples}
	}
	sum := 0.0
	for _, frame := range frames {
		sum += audio.SpectralCentroid(frame, w.SampleRate)
	}
	mean := sum / float64(len(frames))
	if math.IsNaN(mean) {
		return 0
	}
	return mean
}

// scoreQuality starts at a base of 50 and adjusts per SNR, clipping,
// silence, and speech-band energy, clamped to [0,100].
func scoreQuality(c Characteristics) float64 {
	score := 50.0

	switch {
	case c.SNREstimate > 20:
		score += 20
	case c.SNREstimate > 10:
		score += 10
	case c.SNREstimate < 5:
		score -= 20
	}

	switch {
	case c.ClippingRatio < 0.01:
		score += 10
	case c.ClippingRatio > 0.05:
		score -= 20
	}

	switch {
	case c.SilenceRatio > 0.1 && c.SilenceRatio < 0.3:
		score += 10
	case c.SilenceRatio > 0.5:
		score -= 15
	}

	if c.SpectralCentroidMean > 1000 && c.SpectralCentroidMean < 4000 {
		score += 10
	}

	return math.Max(0, math.Min(100, score))
}

func recommend(c Characteristics) []string {
	var recs []string
	if c.SNREstimate < recommendNoiseReductionBelowSNR {
		recs = append(recs, "Enable noise reduction")
	}
	if c.ClippingRatio > recommendClippingAbove {
		recs = append(recs, "Audio may be clipped - check levels")
	}
	if c.SilenceRatio > recommendTrimSilenceAbove {
		recs = append(recs, "Consider trimming silence")
	}
	if c.SpectralCentroidMean > 0 && c.SpectralCentroidMean < recommendHighFreqBelowCentroid {
		recs = append(recs, "Audio may benefit from high-frequency enhancement")
	}
	return recs
}
