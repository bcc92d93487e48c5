package subtitles

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xscribe/internal/logging"
	"xscribe/internal/result"
)

func fixtureSegments(t *testing.T) []result.Segment {
	t.Helper()
	first, err := result.NewSegment(0, 1.5, "Hello world", result.Float64Ptr(0.92), result.StringPtr("Speaker 1"))
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	second, err := result.NewSegment(1.6, 3.2, "This is a test", result.Float64Ptr(0.88), result.StringPtr("Speaker 2"))
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	return []result.Segment{first, second}
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(logging.NewNop(), DefaultOptions())
}

func TestFormatSRTFixture(t *testing.T) {
	e := newEngine(t)
	srt := e.FormatSRT(e.Build(fixtureSegments(t), nil))

	if !strings.Contains(srt, "00:00:00,000 --> 00:00:01,500") {
		t.Fatalf("missing first cue timing:\n%s", srt)
	}
	if !strings.HasPrefix(srt, "1\n") {
		t.Fatalf("SRT must start with index 1:\n%s", srt)
	}
	if !strings.Contains(srt, "Hello world") || !strings.Contains(srt, "This is a test") {
		t.Fatalf("cue text missing:\n%s", srt)
	}
}

func TestFormatVTTFixture(t *testing.T) {
	e := newEngine(t)
	vtt := e.FormatVTT(e.Build(fixtureSegments(t), nil))

	if !strings.HasPrefix(vtt, "WEBVTT\n") {
		t.Fatalf("VTT must start with WEBVTT header:\n%s", vtt)
	}
	if !strings.Contains(vtt, "00:00:01.600") {
		t.Fatalf("missing dot-millisecond timestamp:\n%s", vtt)
	}
	if !strings.Contains(vtt, "<v Speaker 1>Hello world</v>") {
		t.Fatalf("speaker voice tag missing:\n%s", vtt)
	}
	if strings.Contains(vtt, "\n1\n") {
		t.Fatal("VTT cues must not carry indices")
	}
}

func TestEstimateWordTiming(t *testing.T) {
	seg, err := result.NewSegment(0, 2.0, "a considerable phrase", result.Float64Ptr(0.9), nil)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}

	words := estimateWordTiming(seg)
	if len(words) != 3 {
		t.Fatalf("word count %d", len(words))
	}
	if words[0].Start != 0 {
		t.Fatalf("first word starts at %f", words[0].Start)
	}
	for i, w := range words {
		if w.End <= w.Start {
			t.Fatalf("word %d has non-positive duration", i)
		}
		if w.End-w.Start > 1.0+1e-9 {
			t.Fatalf("word %d exceeds 50%% of segment duration", i)
		}
		if i > 0 && math.Abs(w.Start-words[i-1].End) > 1e-9 {
			t.Fatalf("word %d does not start where %d ended", i, i-1)
		}
	}
	// "considerable" (12 chars) must get more time than "a" (1 char).
	if words[1].End-words[1].Start <= words[0].End-words[0].Start {
		t.Fatal("longer words must get proportionally more time")
	}
}

func TestAttributeWordsTolerance(t *testing.T) {
	seg, err := result.NewSegment(1.0, 2.0, "inside edge outside", nil, nil)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	words := []result.WordTimestamp{
		{Word: "inside", Start: 1.2, End: 1.5},
		{Word: "edge", Start: 0.95, End: 1.1},   // within the 0.1s tolerance
		{Word: "outside", Start: 2.5, End: 2.8}, // beyond tolerance
		{Word: "   ", Start: 1.3, End: 1.4},     // blank, dropped
	}

	attributed := attributeWords(seg, words)
	if len(attributed) != 2 {
		t.Fatalf("attributed %d words, want 2: %+v", len(attributed), attributed)
	}
	if attributed[0].Word != "inside" || attributed[1].Word != "edge" {
		t.Fatalf("wrong words attributed: %+v", attributed)
	}
}

func TestOptimizeTimingExtendsShortCues(t *testing.T) {
	e := newEngine(t)
	cues := []Cue{{Start: 0, End: 0.4, Text: "quick"}}

	out := e.OptimizeTiming(cues)
	if out[0].End != 1.0 {
		t.Fatalf("short cue end %f, want 1.0", out[0].End)
	}
	if cues[0].End != 0.4 {
		t.Fatal("input cues must not be mutated")
	}
}

func TestOptimizeTimingSplitsNarrowGaps(t *testing.T) {
	e := newEngine(t)
	cues := []Cue{
		{Start: 0, End: 2.0, Text: "first"},
		{Start: 2.1, End: 4.0, Text: "second"},
	}

	out := e.OptimizeTiming(cues)
	midpoint := (2.0 + 2.1) / 2
	if math.Abs(out[0].End-(midpoint-0.15)) > 1e-9 {
		t.Fatalf("first cue end %f", out[0].End)
	}
	if math.Abs(out[1].Start-(midpoint+0.15)) > 1e-9 {
		t.Fatalf("second cue start %f", out[1].Start)
	}
	if out[1].Start <= out[0].End {
		t.Fatal("cues must not overlap after the split")
	}
}

func TestBreakLinesGreedyPacking(t *testing.T) {
	e := newEngine(t)

	short := e.breakLines("fits on one line")
	if len(short) != 1 || short[0] != "fits on one line" {
		t.Fatalf("short text %v", short)
	}

	long := e.breakLines(strings.Repeat("word ", 30))
	if len(long) > 2 {
		t.Fatalf("line count %d exceeds cap", len(long))
	}
	for _, line := range long {
		if len(line) > 42 {
			t.Fatalf("line %q exceeds 42 chars", line)
		}
	}
}

func TestBreakLinesSplitsOverlongWord(t *testing.T) {
	e := newEngine(t)
	lines := e.breakLines(strings.Repeat("x", 100))
	if len(lines) != 2 {
		t.Fatalf("line count %d", len(lines))
	}
	if len(lines[0]) != 42 {
		t.Fatalf("first line length %d", len(lines[0]))
	}
}

func TestGenerateAndSave(t *testing.T) {
	res, err := result.New(fixtureSegments(t), "en", 0.98, 3.2, 0.5, "base")
	if err != nil {
		t.Fatalf("New result: %v", err)
	}
	e := newEngine(t)

	if _, err := e.Generate(res, "ass"); err == nil {
		t.Fatal("unsupported format must error")
	}

	path := filepath.Join(t.TempDir(), "out", "talk.srt")
	if err := e.Save(res, path, "srt"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "-->") {
		t.Fatalf("saved file lacks cue timing:\n%s", data)
	}
}

func TestFormatTimestampRounding(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.25, "00:01:01,250"},
		{3661.999, "01:01:01,999"},
		{-1, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := formatTimestamp(tc.seconds, ','); got != tc.want {
			t.Errorf("formatTimestamp(%f) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
