package textproc_test

import (
	"strings"
	"testing"

	"xscribe/internal/logging"
	"xscribe/internal/result"
	"xscribe/internal/textproc"
)

func newProcessor(t *testing.T, opts textproc.Options) *textproc.Processor {
	t.Helper()
	return textproc.New(logging.NewNop(), opts)
}

func TestProcessImprovesWordErrorRate(t *testing.T) {
	raw := "we dont know if its going to be alot harder."
	reference := "We don't know if it's going to be a lot harder."

	p := newProcessor(t, textproc.DefaultOptions())
	processed := p.Process(raw, "")

	rawWER := textproc.WordErrorRate(reference, raw)
	processedWER := textproc.WordErrorRate(reference, processed)
	if processedWER >= rawWER {
		t.Fatalf("processing must reduce WER: raw %.3f, processed %.3f (%q)", rawWER, processedWER, processed)
	}
	if processed != reference {
		t.Fatalf("processed %q, want %q", processed, reference)
	}
}

func TestProcessNearFixedPoint(t *testing.T) {
	inputs := []string{
		"we dont know if its going to be alot harder.",
		"i went on monday.   see you in january",
		"the meeting is at 5 percent capacity, maybe less",
	}
	p := newProcessor(t, textproc.DefaultOptions())
	for _, input := range inputs {
		first := p.Process(input, "")
		second := p.Process(first, "")
		if collapse(first) != collapse(second) {
			t.Fatalf("reprocessing changed more than whitespace:\nfirst:  %q\nsecond: %q", first, second)
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestContractionsAndAcronyms(t *testing.T) {
	opts := textproc.Options{NormalizeWhitespace: true, FixCommonMistakes: true}
	p := newProcessor(t, opts)

	got := p.Process("they cant say the a p i is down", "")
	want := "they can't say the API is down"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNumberNormalization(t *testing.T) {
	opts := textproc.Options{NormalizeNumbers: true}
	p := newProcessor(t, opts)

	cases := []struct{ in, want string }{
		{"it costs 5 dollars", "it costs $5"},
		{"about 20 percent more", "about 20% more"},
		{"pi is 3 point 14", "pi is 3.14"},
		{"twenty seven items", "20 7 items"},
		{"one thousand reasons", "1 1000 reasons"},
	}
	for _, tc := range cases {
		if got := p.Process(tc.in, ""); got != tc.want {
			t.Errorf("Process(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCapitalization(t *testing.T) {
	p := newProcessor(t, textproc.DefaultOptions())

	got := p.Process("i went on monday. see you in january", "")
	want := "I went on Monday. See you in January."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDomainCorrectionsKeepSurroundingCase(t *testing.T) {
	opts := textproc.Options{ApplyDomainCorrections: true}
	p := newProcessor(t, opts)

	got := p.Process("The api Returns json Payloads", "technical")
	want := "The API Returns JSON Payloads"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	unchanged := "The api Returns json Payloads"
	if got := p.Process(unchanged, "culinary"); got != unchanged {
		t.Fatalf("unknown domain must be a no-op, got %q", got)
	}
	if got := p.Process(unchanged, ""); got != unchanged {
		t.Fatalf("empty domain must be a no-op, got %q", got)
	}
}

func TestRemoveDisfluencies(t *testing.T) {
	opts := textproc.Options{RemoveDisfluencies: true}
	p := newProcessor(t, opts)

	got := p.Process("um I think, uh, you know it works", "")
	want := "I think, it works"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDisfluenciesOffByDefault(t *testing.T) {
	opts := textproc.DefaultOptions()
	if opts.RemoveDisfluencies {
		t.Fatal("disfluency removal must be opt-in")
	}
}

func TestConfidence(t *testing.T) {
	p := newProcessor(t, textproc.DefaultOptions())

	if got := p.Confidence("hello world", "hello world"); got < 0.999 {
		t.Fatalf("identical texts should score ~1.0, got %f", got)
	}
	if got := p.Confidence("", "anything"); got != 0 {
		t.Fatalf("empty original should score 0, got %f", got)
	}
	partial := p.Confidence("hello world", "hello there world")
	if partial <= 0 || partial >= 1 {
		t.Fatalf("partial overlap should score in (0,1), got %f", partial)
	}
}

func TestProcessSegmentsRetainsOriginal(t *testing.T) {
	seg, err := result.NewSegment(1.0, 2.5, "we dont know", result.Float64Ptr(0.9), nil)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}

	p := newProcessor(t, textproc.DefaultOptions())
	outcomes := p.ProcessSegments([]result.Segment{seg}, "")
	if len(outcomes) != 1 {
		t.Fatalf("outcome count %d", len(outcomes))
	}
	out := outcomes[0]
	if out.Original != "we dont know" {
		t.Fatalf("original text not retained: %q", out.Original)
	}
	if !strings.Contains(out.Segment.Text, "don't") {
		t.Fatalf("text not processed: %q", out.Segment.Text)
	}
	if out.Segment.Start != 1.0 || out.Segment.End != 2.5 {
		t.Fatal("timing must be untouched")
	}
	if out.Confidence <= 0 || out.Confidence > 1 {
		t.Fatalf("confidence %f outside (0,1]", out.Confidence)
	}
}

func TestEmptyInput(t *testing.T) {
	p := newProcessor(t, textproc.DefaultOptions())
	if got := p.Process("   ", ""); got != "" {
		t.Fatalf("blank input should produce empty output, got %q", got)
	}
}

func TestWordErrorRate(t *testing.T) {
	cases := []struct {
		ref, hyp string
		want     float64
	}{
		{"a b c", "a b c", 0},
		{"a b c", "a x c", 1.0 / 3.0},
		{"a b c", "", 1},
		{"", "", 0},
		{"Hello, World!", "hello world", 0},
	}
	for _, tc := range cases {
		if got := textproc.WordErrorRate(tc.ref, tc.hyp); got != tc.want {
			t.Errorf("WordErrorRate(%q, %q) = %f, want %f", tc.ref, tc.hyp, got, tc.want)
		}
	}
}
