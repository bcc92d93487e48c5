package audio

import (
	"math"
	"math/cmplx"
)

// FFT computes the in-place radix-2 Cooley-Tukey transform. The input
// length must be a power of two; Pad handles arbitrary lengths.
func FFT(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wl := cmplx.Exp(complex(0, angle))
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			for k := 0; k < length/2; k++ {
				u := x[start+k]
				v := x[start+k+length/2] * w
				x[start+k] = u + v
				x[start+k+length/2] = u - v
				w *= wl
			}
		}
	}
}

// IFFT computes the inverse transform via conjugation. The input length
// must be a power of two.
func IFFT(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}
	for i := range x {
		x[i] = complex(real(x[i]), -imag(x[i]))
	}
	FFT(x)
	scale := 1 / float64(n)
	for i := range x {
		x[i] = complex(real(x[i])*scale, -imag(x[i])*scale)
	}
}

// NextPow2 returns the smallest power of two >= n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the one-sided power spectrum of a real frame,
// zero-padded to the next power of two.
func PowerSpectrum(frame []float64) []float64 {
	n := NextPow2(len(frame))
	buf := make([]complex128, n)
	for i, s := range frame {
		buf[i] = complex(s, 0)
	}
	FFT(buf)
	half := n/2 + 1
	power := make([]float64, half)
	for i := 0; i < half; i++ {
		power[i] = real(buf[i])*real(buf[i]) + imag(buf[i])*imag(buf[i])
	}
	return power
}

// HannWindow applies a Hann window to the frame in place.
func HannWindow(frame []float64) {
	n := len(frame)
	if n <= 1 {
		return
	}
	for i := range frame {
		frame[i] *= 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
}

// Frames splits samples into frames of frameLen spaced hopLen apart. The
// final partial frame is dropped, matching the short-time analysis
// convention used throughout the analyzer.
func Frames(samples []float64, frameLen, hopLen int) [][]float64 {
	if frameLen <= 0 || hopLen <= 0 || len(samples) < frameLen {
		return nil
	}
	count := 1 + (len(samples)-frameLen)/hopLen
	frames := make([][]float64, 0, count)
	for i := 0; i+frameLen <= len(samples); i += hopLen {
		frames = append(frames, samples[i:i+frameLen])
	}
	return frames
}
