package textproc

import (
	"strings"
	"unicode"
)

// WordErrorRate computes the word error rate of hypothesis against
// reference: (substitutions + deletions + insertions) / reference words.
// Both texts are lowercased and stripped of punctuation before
// comparison. An empty reference yields 0 when the hypothesis is also
// empty and 1 otherwise.
func WordErrorRate(reference, hypothesis string) float64 {
	ref := normalizeWords(reference)
	hyp := normalizeWords(hypothesis)
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}

	// Levenshtein distance over words, two rolling rows.
	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return float64(prev[len(hyp)]) / float64(len(ref))
}

func normalizeWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, unicode.IsPunct)
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
