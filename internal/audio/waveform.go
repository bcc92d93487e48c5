package audio

import "math"

// Waveform holds decoded mono PCM samples in [-1, 1] at a known rate.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the waveform length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Empty reports whether the waveform carries no samples.
func (w Waveform) Empty() bool {
	return len(w.Samples) == 0
}

// Clone returns a deep copy. Enhancement stages mutate their working copy
// so the caller's waveform stays untouched.
func (w Waveform) Clone() Waveform {
	samples := make([]float64, len(w.Samples))
	copy(samples, w.Samples)
	return Waveform{Samples: samples, SampleRate: w.SampleRate}
}

// Slice returns the sub-waveform covering [startSec, endSec), clamped to
// the available range.
func (w Waveform) Slice(startSec, endSec float64) Waveform {
	if w.SampleRate <= 0 || startSec >= endSec {
		return Waveform{SampleRate: w.SampleRate}
	}
	start := int(startSec * float64(w.SampleRate))
	end := int(endSec * float64(w.SampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(w.Samples) {
		end = len(w.Samples)
	}
	if start >= end {
		return Waveform{SampleRate: w.SampleRate}
	}
	return Waveform{Samples: w.Samples[start:end], SampleRate: w.SampleRate}
}

// RMS returns the root-mean-square amplitude of the samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Mean returns the arithmetic mean of the samples.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

// Percentile returns the p-th percentile (0..100) of the absolute sample
// amplitudes using nearest-rank on a sorted copy.
func Percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	abs := make([]float64, len(samples))
	for i, s := range samples {
		abs[i] = math.Abs(s)
	}
	sortFloats(abs)
	if p <= 0 {
		return abs[0]
	}
	if p >= 100 {
		return abs[len(abs)-1]
	}
	idx := int(math.Ceil(p/100*float64(len(abs)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(abs) {
		idx = len(abs) - 1
	}
	return abs[idx]
}

func sortFloats(v []float64) {
	// Heapsort keeps this allocation-free; inputs are bounded by one file's
	// sample count.
	n := len(v)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(v, i, n)
	}
	for i := n - 1; i > 0; i-- {
		v[0], v[i] = v[i], v[0]
		siftDown(v, 0, i)
	}
}

func siftDown(v []float64, root, end int) {
	for {
		child := 2*root + 1
		if child >= end {
			return
		}
		if child+1 < end && v[child+1] > v[child] {
			child++
		}
		if v[root] >= v[child] {
			return
		}
		v[root], v[child] = v[child], v[root]
		root = child
	}
}
