package gateway

import (
	"math"
	"regexp"
	"strings"
)

var (
	fillerWords     = regexp.MustCompile(`(?i)\b(uhm|eh|ah|mm|hmm)\b`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	sentenceSpacing = regexp.MustCompile(`([.!?])\s*([a-z])`)
	sentenceStart   = regexp.MustCompile(`(^|[.!?]\s+)([a-z])`)
)

// CleanTranscript removes filler words, collapses whitespace, normalizes the space
// after sentence punctuation and capitalizes sentence starts.
func CleanTranscript(text string) string {
	out := fillerWords.ReplaceAllString(text, "")
	out = whitespaceRun.ReplaceAllString(out, " ")
	out = sentenceSpacing.ReplaceAllString(out, "$1 $2")
	out = sentenceStart.ReplaceAllStringFunc(out, func(m string) string {
		return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
	})
	return strings.TrimSpace(out)
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

const bytesPerMiB = 1024 * 1024

// EstimateDurationSeconds assumes roughly one minute of audio per MiB.
func EstimateDurationSeconds(size int64) int {
	return int(math.Round(float64(size) / bytesPerMiB * 60))
}
