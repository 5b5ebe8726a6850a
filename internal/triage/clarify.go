package triage

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// clarificationThreshold is the minimum normalized similarity between an
// unknown token and a known term before we ask the user to confirm.
const clarificationThreshold = 0.78

// ClarificationDetector spots likely typos of known first-aid terms ("bruse"
// for "bruise") and produces a single disambiguation question. It only runs
// on turns already judged in scope; scope itself is never clarified.
type ClarificationDetector struct {
	known     []string
	knownSet  map[string]struct{}
	threshold float64
}

func NewClarificationDetector() *ClarificationDetector {
	set := make(map[string]struct{}, len(firstAidVocabulary))
	for _, term := range firstAidVocabulary {
		set[term] = struct{}{}
	}
	return &ClarificationDetector{
		known:     firstAidVocabulary,
		knownSet:  set,
		threshold: clarificationThreshold,
	}
}

// Detect scans the raw input for alphabetic tokens of at least four
// characters that are not known terms, fuzzy-matches each against the known
// set, and returns a disambiguation prompt for the first hit. At most one
// prompt is produced per turn.
func (d *ClarificationDetector) Detect(text string) (string, bool) {
	lowered := strings.ToLower(Sanitize(text))
	for _, token := range alphaTokens.FindAllString(lowered, -1) {
		if len(token) < 4 {
			continue
		}
		if _, ok := d.knownSet[token]; ok {
			continue
		}
		if guess, ok := d.bestGuess(token); ok {
			prompt := fmt.Sprintf("Just to be sure: when you say %q, do you mean %q?", token, guess)
			return prompt, true
		}
	}
	return "", false
}

// bestGuess returns the known term most similar to token, provided the
// similarity clears the threshold.
func (d *ClarificationDetector) bestGuess(token string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, term := range d.known {
		if strings.Contains(term, " ") {
			continue
		}
		score := similarity(token, term)
		if score > bestScore {
			best, bestScore = term, score
		}
	}
	if bestScore >= d.threshold {
		return best, true
	}
	return "", false
}

// similarity is a normalized edit-distance ratio in [0,1].
func similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
