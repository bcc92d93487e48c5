package result

import (
	"fmt"
	"strings"
)

// Segment is one span of recognized speech. Immutable after assembly; the
// subtitle timing pass works on its own copies.
type Segment struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
	Speaker    *string  `json:"speaker"`
}

// NewSegment validates and constructs a segment: end >= start >= 0, and
// confidence within [0,1] when present.
func NewSegment(start, end float64, text string, confidence *float64, speaker *string) (Segment, error) {
	if start < 0 {
		return Segment{}, fmt.Errorf("segment: start %.3f must not be negative", start)
	}
	if end < start {
		return Segment{}, fmt.Errorf("segment: end %.3f must not precede start %.3f", end, start)
	}
	if confidence != nil && (*confidence < 0 || *confidence > 1) {
		return Segment{}, fmt.Errorf("segment: confidence %.3f outside [0,1]", *confidence)
	}
	return Segment{Start: start, End: end, Text: text, Confidence: confidence, Speaker: speaker}, nil
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// WordCount returns the number of whitespace-delimited words.
func (s Segment) WordCount() int {
	return len(strings.Fields(s.Text))
}

// Float64Ptr is a convenience for optional confidence values.
func Float64Ptr(v float64) *float64 { return &v }

// StringPtr is a convenience for optional speaker labels.
func StringPtr(v string) *string { return &v }
