package gateway

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy names the parsing attempt that produced an Extraction.
type Strategy string

const (
	StrategyDirect Strategy = "direct"
	StrategyFenced Strategy = "fenced"
	StrategySpan   Strategy = "span"
)

// Extraction is a JSON object recovered from free-form model output.
type Extraction struct {
	Value    map[string]any
	Strategy Strategy
}

var (
	fenceOpen     = regexp.MustCompile("^```(?:json|JSON)?\\s*")
	fenceClose    = regexp.MustCompile("\\s*```$")
	// trailingComma is not string-aware: a value containing ", }" is also rewritten.
	// It only runs on the span fallback, after a strict parse has failed.
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON recovers a JSON object from model output. Attempts, in order:
// the whole text, the text with a surrounding markdown fence removed, and the
// span from the first '{' to the last '}' with trailing commas stripped.
func ExtractJSON(raw string) (Extraction, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Extraction{}, ErrMalformedResponse
	}

	if v, ok := decodeObject(text); ok {
		return Extraction{Value: v, Strategy: StrategyDirect}, nil
	}

	if strings.HasPrefix(text, "```") {
		unfenced := fenceClose.ReplaceAllString(fenceOpen.ReplaceAllString(text, ""), "")
		if v, ok := decodeObject(unfenced); ok {
			return Extraction{Value: v, Strategy: StrategyFenced}, nil
		}
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		span := trailingComma.ReplaceAllString(text[start:end+1], "$1")
		if v, ok := decodeObject(span); ok {
			return Extraction{Value: v, Strategy: StrategySpan}, nil
		}
	}

	return Extraction{}, ErrMalformedResponse
}

func decodeObject(s string) (map[string]any, bool) {
	var v map[string]any
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}
