package result

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WordTimestamp is a word-level timing record supplied by the engine.
type WordTimestamp struct {
	Word       string   `json:"word"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Result is the outcome of one successful transcription run. Owned by the
// caller after construction.
type Result struct {
	ID                  string          `json:"id"`
	Segments            []Segment       `json:"segments"`
	Language            string          `json:"language"`
	LanguageProbability float64         `json:"language_probability"`
	Duration            float64         `json:"duration"`
	ProcessingTime      float64         `json:"processing_time"`
	EngineUsed          string          `json:"engine_used"`
	WordTimestamps      []WordTimestamp `json:"word_timestamps,omitempty"`
	SourceRef           string          `json:"source_ref,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	Metadata            map[string]any  `json:"metadata"`

	// Derived fields, recomputed on load and never trusted from storage.
	FullText          string `json:"full_text"`
	WordCount         int    `json:"word_count"`
	AverageConfidence float64 `json:"average_confidence"`
	UniqueSpeakers    []string `json:"unique_speakers"`
}

// New validates and constructs a Result: segments non-empty, language
// probability within [0,1], duration positive, processing time
// non-negative.
func New(segments []Segment, language string, languageProbability, duration, processingTime float64, engineUsed string) (*Result, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("result: segments must not be empty")
	}
	if languageProbability < 0 || languageProbability > 1 {
		return nil, fmt.Errorf("result: language probability %.3f outside [0,1]", languageProbability)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("result: duration %.3f must be positive", duration)
	}
	if processingTime < 0 {
		return nil, fmt.Errorf("result: processing time %.3f must not be negative", processingTime)
	}

	r := &Result{
		ID:                  uuid.NewString(),
		Segments:            segments,
		Language:            language,
		LanguageProbability: languageProbability,
		Duration:            duration,
		ProcessingTime:      processingTime,
		EngineUsed:          engineUsed,
		CreatedAt:           time.Now().UTC(),
		Metadata:            map[string]any{},
	}
	r.Recompute()
	return r, nil
}

// Recompute refreshes the derived fields from the segments.
func (r *Result) Recompute() {
	var parts []string
	wordCount := 0
	confSum := 0.0
	confCount := 0
	speakers := map[string]struct{}{}

	for _, seg := range r.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
		wordCount += seg.WordCount()
		if seg.Confidence != nil {
			confSum += *seg.Confidence
			confCount++
		}
		if seg.Speaker != nil && *seg.Speaker != "" {
			speakers[*seg.Speaker] = struct{}{}
		}
	}

	r.FullText = strings.Join(parts, " ")
	r.WordCount = wordCount
	if confCount > 0 {
		r.AverageConfidence = confSum / float64(confCount)
	} else {
		r.AverageConfidence = 0
	}

	r.UniqueSpeakers = r.UniqueSpeakers[:0]
	for speaker := range speakers {
		r.UniqueSpeakers = append(r.UniqueSpeakers, speaker)
	}
	sort.Strings(r.UniqueSpeakers)
}

// MarshalJSON serializes with derived fields freshly recomputed.
func (r *Result) MarshalJSON() ([]byte, error) {
	r.Recompute()
	type alias Result
	return json.Marshal((*alias)(r))
}

// Load deserializes a stored result, validating invariants and
// recomputing derived fields rather than trusting the stored copies.
func Load(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("result: decode: %w", err)
	}
	if len(r.Segments) == 0 {
		return nil, fmt.Errorf("result: stored record has no segments")
	}
	if r.LanguageProbability < 0 || r.LanguageProbability > 1 {
		return nil, fmt.Errorf("result: stored language probability %.3f outside [0,1]", r.LanguageProbability)
	}
	if r.Duration <= 0 {
		return nil, fmt.Errorf("result: stored duration %.3f must be positive", r.Duration)
	}
	for i, seg := range r.Segments {
		if _, err := NewSegment(seg.Start, seg.End, seg.Text, seg.Confidence, seg.Speaker); err != nil {
			return nil, fmt.Errorf("result: stored segment %d invalid: %w", i, err)
		}
	}
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Recompute()
	return &r, nil
}
