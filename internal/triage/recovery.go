package triage

import (
	"regexp"
	"strings"
)

// recoveryPattern pairs a stable identifier with the phrase regex it matches.
// The identifiers end up in RecoverySignal.Matches so callers and logs can
// see which cue fired without re-parsing regexes.
type recoveryPattern struct {
	id string
	re *regexp.Regexp
}

var recoveryPatterns = []recoveryPattern{
	{"all_good_now", regexp.MustCompile(`\ball good now\b`)},
	{"all_better_now", regexp.MustCompile(`\ball better now\b`)},
	{"feeling_fine_now", regexp.MustCompile(`\bfeeling (?:fine|okay|ok|better) now\b`)},
	{"no_longer_hurting", regexp.MustCompile(`\bno (?:longer|more) (?:hurting|hurt|pain|bleeding)\b`)},
	{"not_painful_anymore", regexp.MustCompile(`\bnot (?:painful|hurting|bleeding) anymore\b`)},
	{"pain_gone", regexp.MustCompile(`\bpain (?:is )?gone\b`)},
	{"bleeding_stopped", regexp.MustCompile(`\bbleeding (?:has )?stopped\b`)},
	{"healed_now", regexp.MustCompile(`\bit'?s healed now\b`)},
	{"feeling_better", regexp.MustCompile(`\bfeel(?:ing)? (?:much )?better\b`)},
}

// standalone acknowledgements that inherit the previous turn's recovery cues.
var ackWords = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {},
	"ok": {}, "okay": {}, "sure": {},
	"thanks": {}, "thank": {}, "you": {},
	"right": {}, "correct": {}, "exactly": {},
	"it": {}, "is": {},
}

// RecoveryDetector decides whether the user reports that their symptoms have
// resolved. Detection is idempotent: the same history and latest text always
// produce the same signal.
type RecoveryDetector struct {
	patterns []recoveryPattern
}

func NewRecoveryDetector() *RecoveryDetector {
	return &RecoveryDetector{patterns: recoveryPatterns}
}

// Detect matches the latest user text against the recovery patterns. When
// nothing matches directly but the immediately preceding user turn did, and
// the latest text is a short standalone acknowledgement ("yes", "thanks"),
// the earlier turn's matches are attributed to the current turn.
func (d *RecoveryDetector) Detect(history []Turn, latest string) RecoverySignal {
	window := Sanitize(latest)
	matches := d.match(window)
	if len(matches) > 0 {
		return RecoverySignal{Recovered: true, Matches: matches, Window: window}
	}

	if !isAcknowledgement(window) {
		return RecoverySignal{Window: window}
	}

	texts := UserTexts(history)
	if len(texts) == 0 {
		return RecoverySignal{Window: window}
	}
	previous := Sanitize(texts[len(texts)-1])
	if inherited := d.match(previous); len(inherited) > 0 {
		return RecoverySignal{
			Recovered: true,
			Matches:   inherited,
			Window:    previous + "\n" + window,
		}
	}
	return RecoverySignal{Window: window}
}

func (d *RecoveryDetector) match(text string) []string {
	lowered := strings.ToLower(text)
	var ids []string
	for _, p := range d.patterns {
		if p.re.MatchString(lowered) {
			ids = append(ids, p.id)
		}
	}
	return ids
}

// isAcknowledgement reports whether text is a short standalone reply made of
// acknowledgement words only, at most four tokens.
func isAcknowledgement(text string) bool {
	tokens := alphaTokens.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 || len(tokens) > 4 {
		return false
	}
	for _, token := range tokens {
		if _, ok := ackWords[token]; !ok {
			return false
		}
	}
	return true
}
