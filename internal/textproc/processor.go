// Package textproc cleans up raw recognition text: lexical corrections,
// number normalization, capitalization, punctuation spacing, and optional
// disfluency removal. Stages run in a fixed order and each can be toggled
// independently.
package textproc

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"xscribe/internal/logging"
	"xscribe/internal/result"
)

// Options toggles the individual processing stages. The zero value
// disables everything; use DefaultOptions for the normal set.
type Options struct {
	NormalizeWhitespace    bool
	FixCommonMistakes      bool
	ApplyDomainCorrections bool
	NormalizeNumbers       bool
	FixCapitalization      bool
	FixPunctuation         bool
	RemoveDisfluencies     bool
	EnhanceFormatting      bool
}

// DefaultOptions enables every stage except disfluency removal, which
// changes the spoken record and stays opt-in.
func DefaultOptions() Options {
	return Options{
		NormalizeWhitespace:    true,
		FixCommonMistakes:      true,
		ApplyDomainCorrections: true,
		NormalizeNumbers:       true,
		FixCapitalization:      true,
		FixPunctuation:         true,
		RemoveDisfluencies:     false,
		EnhanceFormatting:      true,
	}
}

var (
	multipleSpacesRe = regexp.MustCompile(`\s{2,}`)
	blankLinesRe     = regexp.MustCompile(`\n\s*\n`)
	lineLeadSpaceRe  = regexp.MustCompile(`\n\s+`)

	currencyRe   = regexp.MustCompile(`(?i)\b(\d+)\s+(dollars?|cents?|pounds?|euros?)\b`)
	percentageRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s+percent\b`)
	decimalRe    = regexp.MustCompile(`\b(\d+)\s+point\s+(\d+)\b`)

	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
	standaloneIRe = regexp.MustCompile(`\bi\b`)

	commaSpacingRe       = regexp.MustCompile(`\s*,\s*`)
	periodSpacingRe      = regexp.MustCompile(`\s*\.\s*`)
	questionSpacingRe    = regexp.MustCompile(`\s*\?\s*`)
	exclamationSpacingRe = regexp.MustCompile(`\s*!\s*`)

	terminalSpacingRe = regexp.MustCompile(`([.!?])\s*`)
	danglingPunctRe   = regexp.MustCompile(`\s+([.!?])`)
	trailingSpacesRe  = regexp.MustCompile(`(?m) +$`)
	repeatedSpacesRe  = regexp.MustCompile(` +`)
)

// Processor applies the post-processing stages. Safe for concurrent use.
type Processor struct {
	logger      *slog.Logger
	opts        Options
	numberWords []wordPattern
	titleWords  []wordPattern
	domainTerms map[string][]wordPattern
	titler      cases.Caser
}

type wordPattern struct {
	re          *regexp.Regexp
	replacement string
}

// New builds a processor with all word patterns precompiled.
func New(logger *slog.Logger, opts Options) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Processor{
		logger:      logging.WithComponent(logger, "textproc"),
		opts:        opts,
		domainTerms: make(map[string][]wordPattern, len(domainCorrections)),
		titler:      cases.Title(language.English),
	}
	for _, nw := range numberWords {
		p.numberWords = append(p.numberWords, wordPattern{
			re:          regexp.MustCompile(`(?i)\b` + nw.mistake + `\b`),
			replacement: nw.fixed,
		})
	}
	for _, name := range dayNames {
		p.titleWords = append(p.titleWords, wordPattern{
			re:          regexp.MustCompile(`(?i)\b` + name + `\b`),
			replacement: p.titler.String(name),
		})
	}
	for _, name := range monthNames {
		p.titleWords = append(p.titleWords, wordPattern{
			re:          regexp.MustCompile(`(?i)\b` + name + `\b`),
			replacement: p.titler.String(name),
		})
	}
	for domain, terms := range domainCorrections {
		for term, fixed := range terms {
			p.domainTerms[domain] = append(p.domainTerms[domain], wordPattern{
				re:          regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
				replacement: fixed,
			})
		}
	}
	return p
}

// Process runs the enabled stages over text. Domain selects the optional
// domain-term table; an unknown or empty domain skips that stage.
func (p *Processor) Process(text, domain string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	out := text
	if p.opts.NormalizeWhitespace {
		out = p.normalizeWhitespace(out)
	}
	if p.opts.FixCommonMistakes {
		out = p.fixCommonMistakes(out)
	}
	if p.opts.ApplyDomainCorrections && domain != "" {
		out = p.applyDomainCorrections(out, domain)
	}
	if p.opts.NormalizeNumbers {
		out = p.normalizeNumbers(out)
	}
	if p.opts.FixCapitalization {
		out = p.fixCapitalization(out)
	}
	if p.opts.FixPunctuation {
		out = p.enhancePunctuation(out)
	}
	if p.opts.RemoveDisfluencies {
		out = p.removeDisfluencies(out)
	}
	if p.opts.EnhanceFormatting {
		out = p.enhanceFormatting(out)
	}
	return strings.TrimSpace(out)
}

func (p *Processor) normalizeWhitespace(text string) string {
	text = multipleSpacesRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = lineLeadSpaceRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func (p *Processor) fixCommonMistakes(text string) string {
	for _, c := range commonCorrections {
		text = strings.ReplaceAll(text, c.mistake, c.fixed)
	}
	return text
}

// applyDomainCorrections replaces each matched term with its canonical
// form. Matching ignores case; the surrounding text is left untouched.
func (p *Processor) applyDomainCorrections(text, domain string) string {
	terms, ok := p.domainTerms[domain]
	if !ok {
		return text
	}
	for _, term := range terms {
		text = term.re.ReplaceAllString(text, term.replacement)
	}
	return text
}

func (p *Processor) normalizeNumbers(text string) string {
	text = currencyRe.ReplaceAllString(text, "$$$1")
	text = percentageRe.ReplaceAllString(text, "$1%")
	text = decimalRe.ReplaceAllString(text, "$1.$2")
	for _, nw := range p.numberWords {
		text = nw.re.ReplaceAllString(text, nw.replacement)
	}
	return text
}

func (p *Processor) fixCapitalization(text string) string {
	sentences := sentenceEndRe.Split(text, -1)
	fixed := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence != "" {
			sentence = upperFirst(sentence)
			sentence = standaloneIRe.ReplaceAllString(sentence, "I")
			for _, tw := range p.titleWords {
				sentence = tw.re.ReplaceAllString(sentence, tw.replacement)
			}
		}
		fixed = append(fixed, sentence)
	}
	return strings.Join(fixed, ". ")
}

func upperFirst(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func (p *Processor) enhancePunctuation(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.ContainsAny(line[len(line)-1:], ".!?") {
			line += "."
		}
		lines[i] = line
	}
	text = strings.Join(lines, "\n")
	text = commaSpacingRe.ReplaceAllString(text, ", ")
	text = periodSpacingRe.ReplaceAllString(text, ". ")
	text = questionSpacingRe.ReplaceAllString(text, "? ")
	text = exclamationSpacingRe.ReplaceAllString(text, "! ")
	return text
}

// removeDisfluencies drops filler words and two-word filler phrases.
// Two-word phrases are checked first so "you know" is removed as a unit
// rather than leaving a stray "you".
func (p *Processor) removeDisfluencies(text string) string {
	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		word := stripPunct(words[i])
		if i < len(words)-1 {
			phrase := word + " " + stripPunct(words[i+1])
			if _, ok := disfluencies[phrase]; ok {
				i++
				continue
			}
		}
		if _, ok := disfluencies[word]; ok {
			continue
		}
		kept = append(kept, words[i])
	}
	return strings.Join(kept, " ")
}

func stripPunct(word string) string {
	return strings.TrimFunc(strings.ToLower(word), unicode.IsPunct)
}

func (p *Processor) enhanceFormatting(text string) string {
	text = terminalSpacingRe.ReplaceAllString(text, "$1 ")
	text = danglingPunctRe.ReplaceAllString(text, "$1")
	text = trailingSpacesRe.ReplaceAllString(text, "")
	text = repeatedSpacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Confidence estimates how much processing changed the text: 0.7 times
// the Jaccard similarity of the word sets plus 0.3 times the length
// ratio. 1.0 means unchanged.
func (p *Processor) Confidence(original, processed string) float64 {
	if original == "" {
		return 0
	}

	originalWords := wordSet(original)
	processedWords := wordSet(processed)
	intersection := 0
	for w := range originalWords {
		if _, ok := processedWords[w]; ok {
			intersection++
		}
	}
	union := len(originalWords) + len(processedWords) - intersection
	similarity := 0.0
	if union > 0 {
		similarity = float64(intersection) / float64(union)
	}

	shorter, longer := len(processed), len(original)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	lengthRatio := 0.0
	if longer > 0 {
		lengthRatio = float64(shorter) / float64(longer)
	}

	return similarity*0.7 + lengthRatio*0.3
}

func wordSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// SegmentOutcome pairs a processed segment with its original text and a
// processing confidence score.
type SegmentOutcome struct {
	Segment    result.Segment
	Original   string
	Confidence float64
}

// ProcessSegments processes each segment's text, keeping timing, speaker,
// and recognition confidence untouched.
func (p *Processor) ProcessSegments(segments []result.Segment, domain string) []SegmentOutcome {
	outcomes := make([]SegmentOutcome, 0, len(segments))
	for _, seg := range segments {
		original := seg.Text
		seg.Text = p.Process(original, domain)
		outcomes = append(outcomes, SegmentOutcome{
			Segment:    seg,
			Original:   original,
			Confidence: p.Confidence(original, seg.Text),
		})
	}
	p.logger.Debug("processed segments", logging.Int("count", len(outcomes)))
	return outcomes
}
