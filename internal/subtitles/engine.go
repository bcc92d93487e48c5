// Package subtitles turns transcription results into timed caption cues
// and renders them as SRT or WebVTT.
package subtitles

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"xscribe/internal/logging"
	"xscribe/internal/result"
)

// Options controls cue layout and timing cleanup.
type Options struct {
	MaxCharsPerLine     int
	MaxLinesPerCue      int
	MinDurationSeconds  float64
	MaxDurationSeconds  float64
	GapThresholdSeconds float64
}

// DefaultOptions is the standard two-line 42-character layout.
func DefaultOptions() Options {
	return Options{
		MaxCharsPerLine:     42,
		MaxLinesPerCue:      2,
		MinDurationSeconds:  1.0,
		MaxDurationSeconds:  7.0,
		GapThresholdSeconds: 0.3,
	}
}

// Cue is one subtitle entry with optional word-level timing.
type Cue struct {
	Start      float64
	End        float64
	Text       string
	Words      []result.WordTimestamp
	Confidence *float64
	Speaker    *string
}

// Engine builds and renders cues.
type Engine struct {
	logger *slog.Logger
	opts   Options
}

// New constructs an Engine. A nil logger is replaced with a no-op one.
func New(logger *slog.Logger, opts Options) *Engine {
	if opts.MaxCharsPerLine <= 0 {
		opts = DefaultOptions()
	}
	return &Engine{
		logger: logging.WithComponent(logger, "subtitles"),
		opts:   opts,
	}
}

// wordTolerance widens segment spans when attributing external word
// timestamps, absorbing small alignment jitter at segment edges.
const wordTolerance = 0.1

// Build converts result segments into cues. When word timestamps exist,
// each word is attributed to the segment whose widened span contains it;
// otherwise per-word timing is estimated from segment duration.
func (e *Engine) Build(segments []result.Segment, words []result.WordTimestamp) []Cue {
	cues := make([]Cue, 0, len(segments))
	for _, seg := range segments {
		cue := Cue{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Confidence: seg.Confidence,
			Speaker:    seg.Speaker,
		}
		if len(words) > 0 {
			cue.Words = attributeWords(seg, words)
		} else {
			cue.Words = estimateWordTiming(seg)
		}
		cues = append(cues, cue)
	}
	return cues
}

func attributeWords(seg result.Segment, words []result.WordTimestamp) []result.WordTimestamp {
	var attributed []result.WordTimestamp
	for _, word := range words {
		if strings.TrimSpace(word.Word) == "" {
			continue
		}
		if word.Start >= seg.Start-wordTolerance && word.End <= seg.End+wordTolerance {
			word.Word = strings.TrimSpace(word.Word)
			attributed = append(attributed, word)
		}
	}
	return attributed
}

// estimateWordTiming spreads segment duration over its words. Longer
// words get proportionally more time; no single word exceeds half the
// segment.
func estimateWordTiming(seg result.Segment) []result.WordTimestamp {
	words := strings.Fields(seg.Text)
	if len(words) == 0 {
		return nil
	}
	segmentDuration := seg.End - seg.Start
	timePerWord := segmentDuration / float64(len(words))

	estimated := make([]result.WordTimestamp, 0, len(words))
	current := seg.Start
	for _, word := range words {
		duration := timePerWord * (0.7 + 0.6*float64(len(word))/10)
		if limit := segmentDuration * 0.5; duration > limit {
			duration = limit
		}
		estimated = append(estimated, result.WordTimestamp{
			Word:       word,
			Start:      current,
			End:        current + duration,
			Confidence: seg.Confidence,
		})
		current += duration
	}
	return estimated
}

// OptimizeTiming cleans up cue timing in emission order: cues below the
// minimum duration are extended, and gaps below the threshold are split
// at their midpoint with a half-threshold buffer on each side so
// neighboring cues neither overlap nor flicker.
func (e *Engine) OptimizeTiming(cues []Cue) []Cue {
	if len(cues) == 0 {
		return cues
	}
	out := make([]Cue, len(cues))
	copy(out, cues)

	for i := range out {
		if out[i].End-out[i].Start < e.opts.MinDurationSeconds {
			out[i].End = out[i].Start + e.opts.MinDurationSeconds
		}
		if i < len(out)-1 {
			gap := out[i+1].Start - out[i].End
			if gap < e.opts.GapThresholdSeconds {
				midpoint := (out[i].End + out[i+1].Start) / 2
				out[i].End = midpoint - e.opts.GapThresholdSeconds/2
				out[i+1].Start = midpoint + e.opts.GapThresholdSeconds/2
			}
		}
	}
	return out
}

// breakLines greedily packs words into lines up to the per-line budget,
// capped at the per-cue line count. Words beyond the cap are dropped.
func (e *Engine) breakLines(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= e.opts.MaxCharsPerLine {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		test := strings.TrimSpace(current + " " + word)
		if len(test) <= e.opts.MaxCharsPerLine {
			current = test
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = word
		} else {
			lines = append(lines, word[:e.opts.MaxCharsPerLine])
			current = word[e.opts.MaxCharsPerLine:]
		}
		if len(lines) >= e.opts.MaxLinesPerCue {
			break
		}
	}
	if current != "" && len(lines) < e.opts.MaxLinesPerCue {
		lines = append(lines, current)
	}
	if len(lines) > e.opts.MaxLinesPerCue {
		lines = lines[:e.opts.MaxLinesPerCue]
	}
	return lines
}

// FormatSRT renders cues as SubRip: index, comma-millisecond timestamps,
// text lines, blank separator.
func (e *Engine) FormatSRT(cues []Cue) string {
	blocks := make([]string, 0, len(cues))
	for i, cue := range cues {
		text := strings.Join(e.breakLines(cue.Text), "\n")
		blocks = append(blocks, fmt.Sprintf("%d\n%s --> %s\n%s\n",
			i+1, formatTimestamp(cue.Start, ','), formatTimestamp(cue.End, ','), text))
	}
	return strings.Join(blocks, "\n")
}

// FormatVTT renders cues as WebVTT: header, dot-millisecond timestamps,
// no index, speaker voice tags when present.
func (e *Engine) FormatVTT(cues []Cue) string {
	blocks := []string{"WEBVTT", ""}
	for _, cue := range cues {
		text := strings.Join(e.breakLines(cue.Text), "\n")
		if cue.Speaker != nil && *cue.Speaker != "" {
			text = fmt.Sprintf("<v %s>%s</v>", *cue.Speaker, text)
		}
		blocks = append(blocks, fmt.Sprintf("%s --> %s\n%s\n",
			formatTimestamp(cue.Start, '.'), formatTimestamp(cue.End, '.'), text))
	}
	return strings.Join(blocks, "\n")
}

// Generate runs the full pass: build cues, optimize timing, render.
// Format must be "srt" or "vtt".
func (e *Engine) Generate(res *result.Result, format string) (string, error) {
	cues := e.OptimizeTiming(e.Build(res.Segments, res.WordTimestamps))
	e.logger.Debug("subtitles generated",
		logging.String("format", format),
		logging.Int("cues", len(cues)),
	)
	switch strings.ToLower(format) {
	case "srt":
		return e.FormatSRT(cues), nil
	case "vtt":
		return e.FormatVTT(cues), nil
	default:
		return "", fmt.Errorf("subtitles: unsupported format %q", format)
	}
}

func formatTimestamp(seconds float64, msSeparator byte) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, msSeparator, millis)
}
