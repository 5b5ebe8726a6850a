package triage

import "strings"

// categoryRule maps substring triggers to an emergency category. Evaluation
// order matters: the first rule with any trigger present wins, so specific
// emergencies (choking) are listed before catch-all symptom rules.
type categoryRule struct {
	category string
	triggers []string
}

var categoryRules = []categoryRule{
	{"bleeding", []string{"bleed", "blood", "cut", "lacer", "wound", "gash", "hemorrh"}},
	{"burn", []string{"burn", "scald", "blister", "char"}},
	{"choking", []string{"chok", "airway", "heimlich", "cant breathe", "can't breathe"}},
	{"allergic reaction", []string{"allerg", "anaphyl", "hives"}},
	{"bruise", []string{"bruise", "contusion"}},
	{"sprain", []string{"sprain", "strain", "twist"}},
	{"fracture", []string{"fracture", "broken bone", "break", "crack"}},
	{"fainting", []string{"faint", "passed out", "dizzy", "lightheaded"}},
	{"headache", []string{"headache", "migraine"}},
	{"poisoning", []string{"poison", "overdose", "toxic"}},
}

var dangerTerms = []string{
	"severe", "heavy", "worse", "worsening", "spurting",
	"can't breathe", "cant breathe", "not breathing", "unconscious", "unresponsive",
}

var moderateTerms = []string{"swelling", "swollen", "bad", "painful", "deep", "large"}

// severityFloors force a minimum severity per category regardless of how the
// user phrased it. Choking, anaphylaxis, fractures, and poisoning are never
// reported below high.
var severityFloors = map[string]Severity{
	"choking":           SeverityHigh,
	"allergic reaction": SeverityHigh,
	"fracture":          SeverityHigh,
	"poisoning":         SeverityHigh,
	"bleeding":          SeverityMedium,
	"burn":              SeverityMedium,
}

// CategoryClassifier maps already-gated text to an emergency category plus a
// severity tier. It is the authoritative fallback behind the LLM-backed
// classifier and must stay deterministic.
type CategoryClassifier struct {
	rules []categoryRule
}

func NewCategoryClassifier() *CategoryClassifier {
	return &CategoryClassifier{rules: categoryRules}
}

// Classify returns the first-match-wins category with the triggers that
// actually matched (capped at three), then applies severity escalation:
// danger terms raise to high, moderate terms to medium, and the category
// floor is applied last.
func (c *CategoryClassifier) Classify(text string) Triage {
	lowered := strings.ToLower(Sanitize(text))

	category := CategoryUnknown
	var keywords []string
	for _, rule := range c.rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lowered, trigger) {
				category = rule.category
				keywords = append(keywords, trigger)
				if len(keywords) == 3 {
					break
				}
			}
		}
		if category != CategoryUnknown {
			break
		}
	}

	severity := SeverityLow
	if containsAny(lowered, dangerTerms) {
		severity = SeverityHigh
	} else if containsAny(lowered, moderateTerms) {
		severity = SeverityMedium
	}
	if floor, ok := severityFloors[category]; ok {
		severity = severity.AtLeast(floor)
	}

	return Triage{Category: category, Severity: severity, Keywords: keywords}
}

// Merge prefers an externally produced triage but backfills or overrides it
// with the rule-based result whenever the external one is structurally weak:
// missing, unknown category, no keywords, or an invalid severity. The
// rule-based classifier is never silently skipped.
func (c *CategoryClassifier) Merge(external *Triage, ruleBased Triage) Triage {
	if external == nil {
		return ruleBased
	}

	merged := *external
	if merged.Category == "" || merged.Category == CategoryUnknown {
		merged.Category = ruleBased.Category
		merged.Severity = merged.Severity.AtLeast(ruleBased.Severity)
	}
	if len(merged.Keywords) == 0 {
		merged.Keywords = ruleBased.Keywords
	}
	if !merged.Severity.Valid() {
		merged.Severity = ruleBased.Severity
	}
	if len(merged.Keywords) > 3 {
		merged.Keywords = merged.Keywords[:3]
	}
	if floor, ok := severityFloors[merged.Category]; ok {
		merged.Severity = merged.Severity.AtLeast(floor)
	}
	return merged
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
