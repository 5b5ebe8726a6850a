package triage

import (
	"fmt"
	"regexp"
	"strings"
)

// ScopeGate screens raw input before any other signal runs. A configurable
// deny-topic list (from the guardrails policy) is checked first, then the
// fixed off-topic keyword set. All matches are whole-word and case
// insensitive; partial matches inside larger words never fire.
type ScopeGate struct {
	denyTopics []deniedTopic
	offTopic   []deniedTopic
	appName    string
}

type deniedTopic struct {
	topic string
	re    *regexp.Regexp
}

func compileTopics(topics []string) []deniedTopic {
	compiled := make([]deniedTopic, 0, len(topics))
	for _, topic := range topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		compiled = append(compiled, deniedTopic{
			topic: topic,
			re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(topic) + `\b`),
		})
	}
	return compiled
}

// NewScopeGate builds a gate from the deny-topic list carried by the
// guardrails policy. appName is used in the rejection reason.
func NewScopeGate(denyTopics []string, appName string) *ScopeGate {
	if appName == "" {
		appName = "this assistant"
	}
	return &ScopeGate{
		denyTopics: compileTopics(denyTopics),
		offTopic:   compileTopics(offTopicKeywords),
		appName:    appName,
	}
}

// Check sanitizes text and returns the gate's allow/deny decision. The first
// matching deny topic wins; the off-topic set is only consulted when no deny
// topic fires.
func (g *ScopeGate) Check(text string) ScopeDecision {
	sanitized := Sanitize(text)
	lowered := strings.ToLower(sanitized)

	for _, t := range g.denyTopics {
		if t.re.MatchString(lowered) {
			return ScopeDecision{
				Allowed:   false,
				Reason:    fmt.Sprintf("Topic %q is outside the scope of %s.", t.topic, g.appName),
				Sanitized: sanitized,
			}
		}
	}

	for _, t := range g.offTopic {
		if t.re.MatchString(lowered) {
			return ScopeDecision{
				Allowed:   false,
				Reason:    "This assistant can only discuss first-aid emergencies and treatments.",
				Sanitized: sanitized,
			}
		}
	}

	return ScopeDecision{Allowed: true, Sanitized: sanitized}
}
