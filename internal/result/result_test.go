package result_test

import (
	"encoding/json"
	"testing"

	"xscribe/internal/result"
)

func twoSegments(t *testing.T) []result.Segment {
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

func TestNewSegmentValidation(t *testing.T) {
	cases := []struct {
		name       string
		start, end float64
		confidence *float64
		wantErr    bool
	}{
		{"valid", 0, 1, result.Float64Ptr(0.5), false},
		{"zero length", 2, 2, nil, false},
		{"negative start", -0.1, 1, nil, true},
		{"end before start", 2, 1, nil, true},
		{"confidence above one", 0, 1, result.Float64Ptr(1.1), true},
		{"confidence below zero", 0, 1, result.Float64Ptr(-0.2), true},
		{"nil confidence ok", 0, 1, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := result.NewSegment(tc.start, tc.end, "text", tc.confidence, nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewSegment(%v,%v) error = %v, wantErr %v", tc.start, tc.end, err, tc.wantErr)
			}
		})
	}
}

func TestNewResultValidation(t *testing.T) {
	segs := twoSegments(t)
	cases := []struct {
		name           string
		segments       []result.Segment
		probability    float64
		duration       float64
		processingTime float64
		wantErr        bool
	}{
		{"valid", segs, 0.98, 3.2, 1.1, false},
		{"empty segments", nil, 0.98, 3.2, 1.1, true},
		{"probability above one", segs, 1.2, 3.2, 1.1, true},
		{"zero duration", segs, 0.98, 0, 1.1, true},
		{"negative processing time", segs, 0.98, 3.2, -1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := result.New(tc.segments, "en", tc.probability, tc.duration, tc.processingTime, "base")
			if (err != nil) != tc.wantErr {
				t.Fatalf("New error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestDerivedFields(t *testing.T) {
	r, err := result.New(twoSegments(t), "en", 0.98, 3.2, 1.1, "base")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.FullText != "Hello world This is a test" {
		t.Fatalf("full text %q", r.FullText)
	}
	if r.WordCount != 6 {
		t.Fatalf("word count %d, want 6", r.WordCount)
	}
	if len(r.UniqueSpeakers) != 2 {
		t.Fatalf("unique speakers %v, want 2", r.UniqueSpeakers)
	}
	want := (0.92 + 0.88) / 2
	if diff := r.AverageConfidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("average confidence %f, want %f", r.AverageConfidence, want)
	}
}

func TestRoundTrip(t *testing.T) {
	original, err := result.New(twoSegments(t), "en", 0.98, 3.2, 1.1, "base")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	original.Metadata["source_quality"] = 72.5

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loaded, err := result.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.Segments) != len(original.Segments) {
		t.Fatalf("segment count %d, want %d", len(loaded.Segments), len(original.Segments))
	}
	for i := range loaded.Segments {
		if loaded.Segments[i].Text != original.Segments[i].Text ||
			loaded.Segments[i].Start != original.Segments[i].Start ||
			loaded.Segments[i].End != original.Segments[i].End {
			t.Fatalf("segment %d mismatch: %+v vs %+v", i, loaded.Segments[i], original.Segments[i])
		}
	}
	if loaded.Language != original.Language || loaded.Duration != original.Duration {
		t.Fatal("language/duration not preserved")
	}
	if loaded.Metadata["source_quality"] != 72.5 {
		t.Fatalf("metadata not preserved: %v", loaded.Metadata)
	}
	if loaded.FullText != original.FullText || loaded.WordCount != original.WordCount {
		t.Fatal("derived fields not recomputed identically")
	}
}

func TestLoadDistrustsStoredDerivedFields(t *testing.T) {
	r, err := result.New(twoSegments(t), "en", 0.98, 3.2, 1.1, "base")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	raw["word_count"] = 9999
	raw["full_text"] = "tampered"
	tampered, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}

	loaded, err := result.Load(tampered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.WordCount == 9999 || loaded.FullText == "tampered" {
		t.Fatal("derived fields must be recomputed, not trusted from storage")
	}
}

func TestLoadRejectsInvalidStored(t *testing.T) {
	cases := []string{
		`{"segments":[],"language":"en","language_probability":0.9,"duration":1}`,
		`{"segments":[{"start":0,"end":1,"text":"x"}],"language":"en","language_probability":1.5,"duration":1}`,
		`{"segments":[{"start":0,"end":1,"text":"x"}],"language":"en","language_probability":0.9,"duration":0}`,
		`{"segments":[{"start":2,"end":1,"text":"x"}],"language":"en","language_probability":0.9,"duration":1}`,
	}
	for i, body := range cases {
		if _, err := result.Load([]byte(body)); err == nil {
			t.Fatalf("case %d: expected load error", i)
		}
	}
}
