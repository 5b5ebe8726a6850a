package triage

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// Sanitize removes control characters while preserving normal punctuation,
// then trims surrounding whitespace.
func Sanitize(text string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(text, " "))
}

// RecentContext condenses the last maxTurns prior user turns plus the latest
// input into one newline-joined string. Each turn is sanitized individually
// before joining so the condensed string stays clean; empty turns are skipped.
func RecentContext(history []Turn, latest string, maxTurns int) string {
	texts := UserTexts(history)
	if len(texts) > maxTurns {
		texts = texts[len(texts)-maxTurns:]
	}

	var parts []string
	for _, t := range texts {
		if clean := Sanitize(t); clean != "" {
			parts = append(parts, clean)
		}
	}
	if clean := Sanitize(latest); clean != "" {
		parts = append(parts, clean)
	}
	return strings.Join(parts, "\n")
}
