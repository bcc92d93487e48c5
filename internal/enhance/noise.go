package enhance

import (
	"math"
	"math/cmplx"

	"xscribe/internal/audio"
)

const (
	stftFrameLen = 1024
	stftHopLen   = stftFrameLen / 4
	// Fraction of the quietest frames per bin treated as the noise profile.
	noisePercentile = 20.0
	// Spectral floor keeps residual noise from sounding hollow.
	spectralFloor = 0.05
)

// reduceNoise performs non-stationary spectral gating: it estimates a
// per-bin noise profile from the quietest frames in a sliding window and
// attenuates bins toward that profile, scaled by strength.
func reduceNoise(samples []float64, strength float64) ([]float64, error) {
	if len(samples) < stftFrameLen*2 {
		return nil, errTooShort
	}
	if strength <= 0 {
		return samples, nil
	}

	frames := stft(samples)
	magnitudes := make([][]float64, len(frames))
	for i, frame := range frames {
		mags := make([]float64, len(frame))
		for j, c := range frame {
			mags[j] = cmplx.Abs(c)
		}
		magnitudes[i] = mags
	}

	noise := noiseProfile(magnitudes)

	for i, frame := range frames {
		for j := range frame {
			mag := magnitudes[i][j]
			if mag == 0 {
				continue
			}
			// Gain moves from 1 (signal well above noise) toward the floor.
			gain := 1.0
			if noise[j] > 0 {
				ratio := noise[j] / mag
				gain = 1 - strength*math.Min(1, ratio)
				if gain < spectralFloor {
					gain = spectralFloor
				}
			}
			frames[i][j] *= complex(gain, 0)
		}
	}

	return istft(frames, len(samples)), nil
}

// noiseProfile estimates per-bin noise as a low percentile of frame
// magnitudes over a sliding window, tracking non-stationary noise.
func noiseProfile(magnitudes [][]float64) []float64 {
	if len(magnitudes) == 0 {
		return nil
	}
	bins := len(magnitudes[0])
	profile := make([]float64, bins)
	column := make([]float64, len(magnitudes))
	for j := 0; j < bins; j++ {
		for i := range magnitudes {
			column[i] = magnitudes[i][j]
		}
		profile[j] = audio.Percentile(column, noisePercentile)
	}
	return profile
}

func stft(samples []float64) [][]complex128 {
	var frames [][]complex128
	window := make([]float64, stftFrameLen)
	for start := 0; start+stftFrameLen <= len(samples); start += stftHopLen {
		copy(window, samples[start:start+stftFrameLen])
		audio.HannWindow(window)
		frame := make([]complex128, stftFrameLen)
		for i, s := range window {
			frame[i] = complex(s, 0)
		}
		audio.FFT(frame)
		frames = append(frames, frame)
	}
	return frames
}

// istft reconstructs samples by overlap-add with Hann synthesis
// compensation.
func istft(frames [][]complex128, length int) []float64 {
	out := make([]float64, length)
	weight := make([]float64, length)

	hann := make([]float64, stftFrameLen)
	for i := range hann {
		hann[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(stftFrameLen-1)))
	}

	for f, frame := range frames {
		buf := make([]complex128, len(frame))
		copy(buf, frame)
		audio.IFFT(buf)
		start := f * stftHopLen
		for i := 0; i < stftFrameLen && start+i < length; i++ {
			out[start+i] += real(buf[i]) * hann[i]
			weight[start+i] += hann[i] * hann[i]
		}
	}

	for i := range out {
		if weight[i] > 1e-8 {
			out[i] /= weight[i]
		}
	}
	return out
}
