package triage

import (
	"math"
	"regexp"
	"strings"
)

var alphaTokens = regexp.MustCompile(`[a-zA-Z]+`)

// KeywordClassifier scores how strongly a text reads as a first-aid concern
// by counting distinct vocabulary hits. Tokens match a keyword exactly, or
// (for keywords of at least four characters) when either is a substring of
// the other, which tolerates simple typos like "bleedin". Multi-word
// keywords are matched against the full lowered text.
type KeywordClassifier struct {
	vocabulary []string
}

// NewKeywordClassifier returns a classifier over the built-in first-aid
// vocabulary.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{vocabulary: firstAidVocabulary}
}

// Classify tokenizes text and returns the relevance verdict. Confidence is
// min(1.0, 0.45 + 0.15 per distinct hit) when any hit exists, else 0; the
// first-aid flag trips at 0.6, i.e. two distinct hits.
func (c *KeywordClassifier) Classify(text string) ClassificationResult {
	lowered := strings.ToLower(Sanitize(text))
	tokens := alphaTokens.FindAllString(lowered, -1)

	var hits []string
	for _, token := range tokens {
		if matched, ok := c.matchToken(token); ok {
			hits = append(hits, matched)
		}
	}
	for _, keyword := range c.vocabulary {
		if strings.Contains(keyword, " ") && strings.Contains(lowered, keyword) {
			hits = append(hits, keyword)
		}
	}

	unique := dedupe(hits)

	confidence := 0.0
	if len(unique) > 0 {
		confidence = math.Min(1.0, 0.45+0.15*float64(len(unique)))
	}

	label := ""
	if len(unique) > 0 {
		label = unique[0]
	}

	return ClassificationResult{
		IsFirstAid: confidence >= 0.6,
		Confidence: round3(confidence),
		Label:      label,
	}
}

// matchToken returns the vocabulary entry a token counts toward. Exact
// matches report the token itself; fuzzy matches report the keyword so
// duplicates collapse to one hit.
func (c *KeywordClassifier) matchToken(token string) (string, bool) {
	for _, keyword := range c.vocabulary {
		if token == keyword {
			return token, true
		}
	}
	if len(token) < 4 {
		return "", false
	}
	for _, keyword := range c.vocabulary {
		if len(keyword) < 4 || strings.Contains(keyword, " ") {
			continue
		}
		if strings.Contains(keyword, token) || strings.Contains(token, keyword) {
			return keyword, true
		}
	}
	return "", false
}

// Related reports whether a triage result still looks like a first-aid topic:
// either any of its keywords overlaps the vocabulary (exact or substring in
// either direction), or its category is a real emergency category rather
// than a generic placeholder.
func (c *KeywordClassifier) Related(t Triage) bool {
	for _, kw := range t.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		for _, vocab := range c.vocabulary {
			if kw == vocab || strings.Contains(vocab, kw) || strings.Contains(kw, vocab) {
				return true
			}
		}
	}
	switch t.Category {
	case "", CategoryOutOfScope, CategoryUnknown:
		return false
	}
	return true
}

func dedupe(values []string) []string {
	var unique []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
