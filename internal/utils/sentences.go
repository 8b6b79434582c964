package utils

import (
	"regexp"
	"strings"
)

// A sentence is a run of non-terminators followed by one or more terminators.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// SplitSentences segments text the way tag sentence indexes are counted.
// Text without any terminated sentence is returned whole. Trailing text after
// the last terminator is not a sentence.
func SplitSentences(text string) []string {
	matches := sentencePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		sentences = append(sentences, strings.TrimSpace(m))
	}
	return sentences
}
