// Package diarize assigns speaker labels to recognized segments by
// clustering lightweight acoustic embeddings. It is strictly best-effort:
// any failure leaves every segment unlabeled and the pipeline moves on.
package diarize

import (
	"fmt"
	"log/slog"

	"xscribe/internal/audio"
	"xscribe/internal/logging"
	"xscribe/internal/result"
)

// Options bounds the speaker count search. NumSpeakers > 0 fixes the
// count; otherwise it is estimated from the number of usable segments
// and clamped to [MinSpeakers, MaxSpeakers].
type Options struct {
	NumSpeakers int
	MinSpeakers int
	MaxSpeakers int
}

// DefaultOptions estimates between 1 and 10 speakers.
func DefaultOptions() Options {
	return Options{MinSpeakers: 1, MaxSpeakers: 10}
}

// Diarizer clusters segments by speaker.
type Diarizer struct {
	logger *slog.Logger
}

// New constructs a Diarizer. A nil logger is replaced with a no-op one.
func New(logger *slog.Logger) *Diarizer {
	return &Diarizer{logger: logging.WithComponent(logger, "diarize")}
}

// Assign returns a copy of segments with Speaker set to "Speaker N" for
// every segment that could be clustered. Segments too short or silent to
// embed stay unlabeled, as does everything when clustering is not
// possible at all.
func (d *Diarizer) Assign(w audio.Waveform, segments []result.Segment, opts Options) []result.Segment {
	out := make([]result.Segment, len(segments))
	copy(out, segments)
	if len(segments) == 0 || w.Empty() {
		return out
	}
	if opts.MinSpeakers < 1 {
		opts.MinSpeakers = 1
	}
	if opts.MaxSpeakers < opts.MinSpeakers {
		opts.MaxSpeakers = opts.MinSpeakers
	}

	vectors := make([][FeatureDim]float64, 0, len(segments))
	valid := make([]int, 0, len(segments))
	for i, seg := range segments {
		vec, ok := segmentFeatures(w.Slice(seg.Start, seg.End))
		if !ok {
			continue
		}
		vectors = append(vectors, vec)
		valid = append(valid, i)
	}
	if len(valid) == 0 {
		d.logger.Warn("no segments usable for diarization, leaving all unlabeled")
		return out
	}

	k := opts.NumSpeakers
	if k <= 0 {
		k = len(valid) / 20
		if k < opts.MinSpeakers {
			k = opts.MinSpeakers
		}
		if k > opts.MaxSpeakers {
			k = opts.MaxSpeakers
		}
	}
	if k > len(valid) {
		k = len(valid)
	}

	standardize(vectors)
	labels := wardCluster(vectors, k)
	if len(labels) != len(valid) {
		d.logger.Warn("clustering failed, leaving all segments unlabeled")
		return out
	}

	for pos, segIdx := range valid {
		out[segIdx].Speaker = result.StringPtr(fmt.Sprintf("Speaker %d", labels[pos]+1))
	}
	d.logger.Info("speakers assigned",
		logging.Int("segments", len(segments)),
		logging.Int("clustered", len(valid)),
		logging.Int("speakers", k),
	)
	return out
}
