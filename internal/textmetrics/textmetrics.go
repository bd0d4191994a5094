// Package textmetrics scores recognized text against an expected transcript.
package textmetrics

import (
	"math"
	"strings"

	"github.com/anime-shed/image-ocr-go/pkg/models"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// Normalize collapses all whitespace runs to single spaces and trims the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CER is the character error rate of actual against expected, both normalized.
func CER(expected, actual string) float64 {
	exp, act := Normalize(expected), Normalize(actual)
	n := len([]rune(exp))
	if n == 0 {
		if act == "" {
			return 0
		}
		return 1
	}
	return float64(levenshtein.Distance(exp, act)) / float64(n)
}

// WER is the word error rate of actual against expected. An empty expected
// transcript scores 0 against empty output and 1 against anything else.
func WER(expected, actual string) float64 {
	expWords, actWords := strings.Fields(expected), strings.Fields(actual)
	if len(expWords) == 0 {
		if len(actWords) == 0 {
			return 0
		}
		return 1
	}
	rate, _ := wer.WER(expWords, actWords)
	return rate
}

// Compare builds the match summary returned to HTTP callers.
func Compare(expected, actual string) models.TextMatch {
	cer := CER(expected, actual)
	return models.TextMatch{
		ExpectedText: expected,
		ExactMatch:   Normalize(expected) == Normalize(actual),
		MatchScore:   math.Max(0, 1-cer),
		CER:          cer,
		WER:          WER(expected, actual),
	}
}
