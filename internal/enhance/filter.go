package enhance

import "math"

// biquad is a direct-form-I second-order IIR section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
}

// Q values for a 4th-order Butterworth response split into two cascaded
// second-order sections.
var butterworthQ = [2]float64{0.54119610, 1.30656296}

func lowpassBiquad(cutoffHz float64, sampleRate int, q float64) biquad {
	w0 := 2 * math.Pi * cutoffHz / float64(sampleRate)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return biquad{
		b0: (1 - cosW0) / 2 / a0,
		b1: (1 - cosW0) / a0,
		b2: (1 - cosW0) / 2 / a0,
		a1: -2 * cosW0 / a0,
		a2: (1 - alpha) / a0,
	}
}

func highpassBiquad(cutoffHz float64, sampleRate int, q float64) biquad {
	w0 := 2 * math.Pi * cutoffHz / float64(sampleRate)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return biquad{
		b0: (1 + cosW0) / 2 / a0,
		b1: -(1 + cosW0) / a0,
		b2: (1 + cosW0) / 2 / a0,
		a1: -2 * cosW0 / a0,
		a2: (1 - alpha) / a0,
	}
}

func (f biquad) apply(samples []float64) []float64 {
	out := make([]float64, len(samples))
	var x1, x2, y1, y2 float64
	for i, x := range samples {
		y := f.b0*x + f.b1*x1 + f.b2*x2 - f.a1*y1 - f.a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		out[i] = y
	}
	return out
}

// filtfilt applies the filter forward then backward for zero phase.
func (f biquad) filtfilt(samples []float64) []float64 {
	forward := f.apply(samples)
	reverse(forward)
	backward := f.apply(forward)
	reverse(backward)
	return backward
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

// speechFilter band-passes the signal to the speech band (80 Hz - 8 kHz,
// clamped below Nyquist) with a 4th-order zero-phase Butterworth, then
// applies pre-emphasis to lift consonant energy.
func speechFilter(samples []float64, sampleRate int) ([]float64, error) {
	if len(samples) < 16 {
		return nil, errTooShort
	}

	nyquist := float64(sampleRate) / 2
	low := math.Max(1, math.Min(speechBandLowHz, 0.99*nyquist))
	high := math.Max(low+1, math.Min(speechBandHighHz, 0.99*nyquist))

	out := samples
	for _, q := range butterworthQ {
		out = highpassBiquad(low, sampleRate, q).filtfilt(out)
	}
	for _, q := range butterworthQ {
		out = lowpassBiquad(high, sampleRate, q).filtfilt(out)
	}

	emphasized := make([]float64, len(out))
	emphasized[0] = out[0]
	for i := 1; i < len(out); i++ {
		emphasized[i] = out[i] - preEmphasis*out[i-1]
	}
	return emphasized, nil
}
