package diarize

import (
	"math"

	"xscribe/internal/audio"
)

const (
	// FeatureDim is the per-segment embedding size: 13 mean cepstral
	// coefficients, mean centroid, mean rolloff, mean zero-crossing
	// rate, mean RMS, padded with zeros to a round 20.
	FeatureDim = 20

	minSegmentSeconds = 0.1
	silenceRMS        = 0.01
)

// segmentFeatures computes the embedding for one segment slice. Returns
// ok=false for segments too short or silent to carry speaker identity;
// those get a zero vector and are excluded from clustering.
func segmentFeatures(w audio.Waveform) (vec [FeatureDim]float64, ok bool) {
	if w.Empty() || w.Duration() < minSegmentSeconds {
		return vec, false
	}
	if audio.RMS(w.Samples) < silenceRMS {
		return vec, false
	}

	frameLen, hopLen := audio.FrameLengths(w.SampleRate)
	frames := audio.Frames(w.Samples, frameLen, hopLen)
	if len(frames) == 0 {
		return vec, false
	}

	mfccSums := make([]float64, audio.MFCCCount)
	var centroidSum, rolloffSum, zcrSum, rmsSum float64
	for _, frame := range frames {
		coeffs := audio.MFCC(frame, w.SampleRate)
		for i, c := range coeffs {
			mfccSums[i] += c
		}
		centroidSum += audio.SpectralCentroid(frame, w.SampleRate)
		rolloffSum += audio.SpectralRolloff(frame, w.SampleRate)
		zcrSum += audio.ZeroCrossingRate(frame)
		rmsSum += audio.RMS(frame)
	}

	n := float64(len(frames))
	for i := range mfccSums {
		vec[i] = mfccSums[i] / n
	}
	vec[audio.MFCCCount] = centroidSum / n
	vec[audio.MFCCCount+1] = rolloffSum / n
	vec[audio.MFCCCount+2] = zcrSum / n
	vec[audio.MFCCCount+3] = rmsSum / n
	return vec, true
}

// standardize scales each feature dimension to zero mean and unit
// variance in place. Dimensions with no variance are left at zero.
func standardize(vectors [][FeatureDim]float64) {
	if len(vectors) == 0 {
		return
	}
	n := float64(len(vectors))
	for d := 0; d < FeatureDim; d++ {
		mean := 0.0
		for i := range vectors {
			mean += vectors[i][d]
		}
		mean /= n

		variance := 0.0
		for i := range vectors {
			diff := vectors[i][d] - mean
			variance += diff * diff
		}
		variance /= n

		if variance <= 1e-12 {
			for i := range vectors {
				vectors[i][d] = 0
			}
			continue
		}
		std := math.Sqrt(variance)
		for i := range vectors {
			vectors[i][d] = (vectors[i][d] - mean) / std
		}
	}
}
