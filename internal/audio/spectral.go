package audio

import "math"

// Standard 25 ms frame / 10 ms hop short-time analysis grid.
const (
	FrameSeconds = 0.025
	HopSeconds   = 0.010
)

// FrameLengths returns the frame and hop lengths in samples for a rate.
func FrameLengths(sampleRate int) (frameLen, hopLen int) {
	frameLen = int(FrameSeconds * float64(sampleRate))
	hopLen = int(HopSeconds * float64(sampleRate))
	if frameLen < 1 {
		frameLen = 1
	}
	if hopLen < 1 {
		hopLen = 1
	}
	return frameLen, hopLen
}

// SpectralCentroid returns the power-weighted mean frequency of a frame.
func SpectralCentroid(frame []float64, sampleRate int) float64 {
	power := PowerSpectrum(frame)
	n := (len(power) - 1) * 2
	if n == 0 {
		return 0
	}
	binHz := float64(sampleRate) / float64(n)
	weighted, total := 0.0, 0.0
	for i, p := range power {
		weighted += float64(i) * binHz * p
		total += p
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// SpectralRolloff returns the frequency below which 85% of the frame's
// spectral energy is concentrated.
func SpectralRolloff(frame []float64, sampleRate int) float64 {
	power := PowerSpectrum(frame)
	n := (len(power) - 1) * 2
	if n == 0 {
		return 0
	}
	total := 0.0
	for _, p := range power {
		total += p
	}
	if total == 0 {
		return 0
	}
	binHz := float64(sampleRate) / float64(n)
	threshold := 0.85 * total
	cumulative := 0.0
	for i, p := range power {
		cumulative += p
		if cumulative >= threshold {
			return float64(i) * binHz
		}
	}
	return float64(len(power)-1) * binHz
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs that
// change sign.
func ZeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

const (
	melFilterCount = 26
	// MFCCCount is the number of cepstral coefficients retained per frame.
	MFCCCount = 13
)

// MFCC computes MFCCCount mel-frequency cepstral coefficients for one
// frame: power spectrum, mel filter bank, log energies, DCT-II.
func MFCC(frame []float64, sampleRate int) []float64 {
	power := PowerSpectrum(frame)
	energies := melFilterEnergies(power, sampleRate)
	for i, e := range energies {
		energies[i] = math.Log(e + 1e-10)
	}
	return dct2(energies, MFCCCount)
}

func melFilterEnergies(power []float64, sampleRate int) []float64 {
	n := (len(power) - 1) * 2
	if n == 0 {
		return make([]float64, melFilterCount)
	}

	lowMel := hzToMel(0)
	highMel := hzToMel(float64(sampleRate) / 2)
	points := make([]int, melFilterCount+2)
	for i := range points {
		mel := lowMel + (highMel-lowMel)*float64(i)/float64(melFilterCount+1)
		hz := melToHz(mel)
		bin := int(math.Floor((float64(n) + 1) * hz / float64(sampleRate)))
		if bin >= len(power) {
			bin = len(power) - 1
		}
		points[i] = bin
	}

	energies := make([]float64, melFilterCount)
	for f := 0; f < melFilterCount; f++ {
		left, center, right := points[f], points[f+1], points[f+2]
		for bin := left; bin < center; bin++ {
			if center > left {
				energies[f] += power[bin] * float64(bin-left) / float64(center-left)
			}
		}
		for bin := center; bin <= right; bin++ {
			if right > center {
				energies[f] += power[bin] * float64(right-bin) / float64(right-center)
			}
		}
	}
	return energies
}

func dct2(input []float64, count int) []float64 {
	n := len(input)
	if n == 0 {
		return make([]float64, count)
	}
	out := make([]float64, count)
	for k := 0; k < count; k++ {
		sum := 0.0
		for i, v := range input {
			sum += v * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/float64(n))
		}
		out[k] = sum
	}
	return out
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}
