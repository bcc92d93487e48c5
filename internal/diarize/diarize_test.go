package diarize

import (
	"math"
	"testing"

	"xscribe/internal/audio"
	"xscribe/internal/logging"
	"xscribe/internal/result"
)

func tone(freq float64, seconds float64, sampleRate int) []float64 {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

// Two alternating tones act as two synthetic "voices".
func twoSpeakerWaveform(sampleRate int) (audio.Waveform, []result.Segment) {
	var samples []float64
	var segments []result.Segment
	start := 0.0
	for i := 0; i < 8; i++ {
		freq := 220.0
		if i%2 == 1 {
			freq = 1800.0
		}
		samples = append(samples, tone(freq, 0.5, sampleRate)...)
		seg, _ := result.NewSegment(start, start+0.5, "x", nil, nil)
		segments = append(segments, seg)
		start += 0.5
	}
	return audio.Waveform{Samples: samples, SampleRate: sampleRate}, segments
}

func TestAssignSeparatesDistinctTones(t *testing.T) {
	w, segments := twoSpeakerWaveform(16000)
	d := New(logging.NewNop())

	out := d.Assign(w, segments, Options{NumSpeakers: 2, MinSpeakers: 1, MaxSpeakers: 4})
	if len(out) != len(segments) {
		t.Fatalf("segment count changed: %d", len(out))
	}
	for i, seg := range out {
		if seg.Speaker == nil {
			t.Fatalf("segment %d unlabeled", i)
		}
	}

	// Same tone must map to the same speaker, alternating tones to
	// different speakers.
	for i := 2; i < len(out); i++ {
		if *out[i].Speaker != *out[i-2].Speaker {
			t.Fatalf("segments %d and %d share a tone but got %q vs %q", i-2, i, *out[i-2].Speaker, *out[i].Speaker)
		}
	}
	if *out[0].Speaker == *out[1].Speaker {
		t.Fatal("alternating tones must be split into two speakers")
	}
}

func TestAssignLeavesSilentSegmentsUnlabeled(t *testing.T) {
	sampleRate := 16000
	samples := tone(440, 1.0, sampleRate)
	samples = append(samples, make([]float64, sampleRate)...) // 1 s silence
	w := audio.Waveform{Samples: samples, SampleRate: sampleRate}

	voiced, _ := result.NewSegment(0, 1.0, "spoken", nil, nil)
	silent, _ := result.NewSegment(1.0, 2.0, "", nil, nil)

	out := New(logging.NewNop()).Assign(w, []result.Segment{voiced, silent}, DefaultOptions())
	if out[0].Speaker == nil {
		t.Fatal("voiced segment should be labeled")
	}
	if out[1].Speaker != nil {
		t.Fatalf("silent segment must stay unlabeled, got %q", *out[1].Speaker)
	}
}

func TestAssignTooShortSegmentUnlabeled(t *testing.T) {
	sampleRate := 16000
	w := audio.Waveform{Samples: tone(440, 1.0, sampleRate), SampleRate: sampleRate}
	short, _ := result.NewSegment(0, 0.05, "blip", nil, nil)

	out := New(logging.NewNop()).Assign(w, []result.Segment{short}, DefaultOptions())
	if out[0].Speaker != nil {
		t.Fatal("sub-100ms segment must stay unlabeled")
	}
}

func TestAssignEmptyInputsDegrade(t *testing.T) {
	d := New(logging.NewNop())

	if out := d.Assign(audio.Waveform{}, nil, DefaultOptions()); len(out) != 0 {
		t.Fatal("no segments in, no segments out")
	}

	seg, _ := result.NewSegment(0, 1, "x", nil, nil)
	out := d.Assign(audio.Waveform{}, []result.Segment{seg}, DefaultOptions())
	if len(out) != 1 || out[0].Speaker != nil {
		t.Fatal("empty waveform must leave segments unlabeled")
	}
}

func TestWardClusterLabelStability(t *testing.T) {
	vectors := [][FeatureDim]float64{}
	for i := 0; i < 6; i++ {
		var v [FeatureDim]float64
		if i < 3 {
			v[0] = 0.0 + float64(i)*0.01
		} else {
			v[0] = 10.0 + float64(i)*0.01
		}
		vectors = append(vectors, v)
	}

	labels := wardCluster(vectors, 2)
	if len(labels) != 6 {
		t.Fatalf("label count %d", len(labels))
	}
	if labels[0] != 0 {
		t.Fatalf("first label must be 0, got %d", labels[0])
	}
	for i := 1; i < 3; i++ {
		if labels[i] != labels[0] {
			t.Fatalf("tight cluster split: %v", labels)
		}
	}
	for i := 4; i < 6; i++ {
		if labels[i] != labels[3] {
			t.Fatalf("tight cluster split: %v", labels)
		}
	}
	if labels[0] == labels[3] {
		t.Fatalf("distant clusters merged: %v", labels)
	}
}

func TestWardClusterSingleCluster(t *testing.T) {
	vectors := [][FeatureDim]float64{{}, {}, {}}
	labels := wardCluster(vectors, 1)
	for _, l := range labels {
		if l != 0 {
			t.Fatalf("expected single cluster, got %v", labels)
		}
	}
}
