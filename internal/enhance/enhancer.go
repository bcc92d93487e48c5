package enhance

import (
	"errors"
	"log/slog"
	"math"

	"xscribe/internal/audio"
	"xscribe/internal/logging"
)

// Options control which enhancement stages run and how aggressively.
type Options struct {
	NoiseReduction    bool
	SpeechEnhancement bool
	Normalization     bool
	// Strength scales spectral noise reduction, [0,1].
	Strength float64
	// TargetLoudness is the normalization target in dBFS RMS.
	TargetLoudness float64
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{
		NoiseReduction:    true,
		SpeechEnhancement: true,
		Normalization:     true,
		Strength:          0.5,
		TargetLoudness:    -23,
	}
}

const (
	trimTopDB            = 30.0
	preEmphasis          = 0.95
	speechBandLowHz      = 80.0
	speechBandHighHz     = 8000.0
	compressionRatio     = 3.0
	compressionThreshold = -12.0 // dBFS
	softClipCeiling      = 0.95
)

// Enhancer applies the enhancement chain. Every stage is independently
// fallible and skipped on error; total failure returns the input unchanged.
type Enhancer struct {
	logger *slog.Logger
}

// New constructs an Enhancer. A nil logger is replaced with a no-op one.
func New(logger *slog.Logger) *Enhancer {
	return &Enhancer{logger: logging.WithComponent(logger, "enhance")}
}

// Enhance runs the stage chain on a copy of w: DC-offset removal, silence
// trim, spectral noise reduction, speech band-pass with pre-emphasis,
// dynamic-range compression, loudness normalization. Never returns an
// error; failed stages are logged and skipped.
func (e *Enhancer) Enhance(w audio.Waveform, opts Options) audio.Waveform {
	if w.Empty() || w.SampleRate <= 0 {
		return w
	}

	work := w.Clone()
	samples := work.Samples

	samples = e.stage("dc_offset", samples, removeDCOffset)
	samples = e.stage("silence_trim", samples, func(s []float64) ([]float64, error) {
		return trimSilence(s, work.SampleRate, trimTopDB)
	})

	if opts.NoiseReduction {
		strength := math.Max(0, math.Min(1, opts.Strength))
		samples = e.stage("noise_reduction", samples, func(s []float64) ([]float64, error) {
			return reduceNoise(s, strength)
		})
	}

	if opts.SpeechEnhancement {
		samples = e.stage("speech_filter", samples, func(s []float64) ([]float64, error) {
			return speechFilter(s, work.SampleRate)
		})
	}

	samples = e.stage("compression", samples, compressDynamics)

	if opts.Normalization {
		samples = e.stage("normalization", samples, func(s []float64) ([]float64, error) {
			return normalizeLoudness(s, opts.TargetLoudness)
		})
	}

	if len(samples) == 0 {
		// Everything trimmed or every stage failed; hand back the original.
		return w
	}
	work.Samples = samples
	return work
}

// stage runs one enhancement step, keeping the previous samples when the
// step reports an error.
func (e *Enhancer) stage(name string, samples []float64, fn func([]float64) ([]float64, error)) []float64 {
	out, err := fn(samples)
	if err != nil {
		e.logger.Warn("enhancement stage skipped",
			logging.String("enhance_stage", name),
			logging.Error(err),
		)
		return samples
	}
	return out
}

func removeDCOffset(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return samples, nil
	}
	mean := audio.Mean(samples)
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s - mean
	}
	return out, nil
}

// trimSilence drops leading and trailing frames whose RMS falls topDB
// below the loudest frame.
func trimSilence(samples []float64, sampleRate int, topDB float64) ([]float64, error) {
	frameLen, hopLen := audio.FrameLengths(sampleRate)
	frames := audio.Frames(samples, frameLen, hopLen)
	if len(frames) == 0 {
		return samples, nil
	}

	rms := make([]float64, len(frames))
	peak := 0.0
	for i, frame := range frames {
		rms[i] = audio.RMS(frame)
		if rms[i] > peak {
			peak = rms[i]
		}
	}
	if peak == 0 {
		return samples, nil
	}

	threshold := peak * math.Pow(10, -topDB/20)
	first, last := -1, -1
	for i, r := range rms {
		if r >= threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		// Nothing above the floor; keep the signal rather than emptying it.
		return samples, nil
	}

	start := first * hopLen
	end := last*hopLen + frameLen
	if end > len(samples) {
		end = len(samples)
	}
	return samples[start:end], nil
}

func compressDynamics(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return samples, nil
	}
	threshold := math.Pow(10, compressionThreshold/20)
	out := make([]float64, len(samples))
	for i, s := range samples {
		envelope := math.Abs(s)
		compressed := envelope
		if envelope > threshold {
			compressed = threshold + (envelope-threshold)/compressionRatio
		}
		out[i] = s * (compressed / (envelope + 1e-8))
	}
	return out, nil
}

func normalizeLoudness(samples []float64, targetDB float64) ([]float64, error) {
	if len(samples) == 0 {
		return samples, nil
	}
	current := audio.RMS(samples)
	if current <= 0 {
		return samples, nil
	}
	gain := math.Pow(10, targetDB/20) / current
	out := make([]float64, len(samples))
	for i, s := range samples {
		// Saturating soft clip keeps normalized peaks from going over.
		out[i] = math.Tanh(s * gain * softClipCeiling)
	}
	return out, nil
}

var errTooShort = errors.New("signal too short for spectral processing")
