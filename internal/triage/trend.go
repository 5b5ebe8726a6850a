package triage

import (
	"fmt"
	"regexp"
	"strings"
)

// Trend values for symptom progression across turns.
const (
	TrendWorse  = "worse"
	TrendSame   = "same"
	TrendBetter = "better"
)

type trendPattern struct {
	trend string
	re    *regexp.Regexp
}

// Ordered: worsening cues outrank stagnation, which outranks improvement, so
// "it was getting better but now it's worse" reads as worse.
var trendPatterns = []trendPattern{
	{TrendWorse, regexp.MustCompile(`\b(?:getting |gotten |grown |much )?worse\b`)},
	{TrendWorse, regexp.MustCompile(`\bworsening\b`)},
	{TrendWorse, regexp.MustCompile(`\bmore (?:painful|swollen|red)\b`)},
	{TrendWorse, regexp.MustCompile(`\bspreading\b`)},
	{TrendWorse, regexp.MustCompile(`\bwon'?t stop\b`)},
	{TrendSame, regexp.MustCompile(`\b(?:about |roughly )?the same\b`)},
	{TrendSame, regexp.MustCompile(`\bno (?:change|different)\b`)},
	{TrendSame, regexp.MustCompile(`\bstill (?:hurts|hurting|bleeding|swollen|painful)\b`)},
	{TrendBetter, regexp.MustCompile(`\b(?:getting |a (?:bit|little) )?better\b`)},
	{TrendBetter, regexp.MustCompile(`\bimproving\b`)},
	{TrendBetter, regexp.MustCompile(`\bless (?:painful|swollen|red)\b`)},
	{TrendBetter, regexp.MustCompile(`\bsubsiding\b`)},
}

// ContextInsight is what the analyzer learned from the conversation so far:
// whether we know where the problem is and which way it is heading.
type ContextInsight struct {
	Location      string `json:"location,omitempty"`
	LocationKnown bool   `json:"location_known"`
	Trend         string `json:"trend,omitempty"`
	TrendKnown    bool   `json:"trend_known"`
}

// TrendAnalyzer inspects the combined user history plus the latest input for
// body-location mentions and symptom trend, and crafts the acknowledgement
// and follow-up question for the reply.
type TrendAnalyzer struct {
	locations []locationPattern
	patterns  []trendPattern
}

type locationPattern struct {
	name string
	re   *regexp.Regexp
}

func NewTrendAnalyzer() *TrendAnalyzer {
	locations := make([]locationPattern, 0, len(bodyParts))
	for _, part := range bodyParts {
		locations = append(locations, locationPattern{
			name: part,
			re:   regexp.MustCompile(`\b` + part + `s?\b`),
		})
	}
	return &TrendAnalyzer{locations: locations, patterns: trendPatterns}
}

// Analyze searches the combined user turns plus latest input. The first
// matching trend pattern wins; locations are matched as whole words.
func (a *TrendAnalyzer) Analyze(history []Turn, latest string) ContextInsight {
	combined := strings.ToLower(RecentContext(history, latest, len(history)+1))

	var insight ContextInsight
	for _, loc := range a.locations {
		if loc.re.MatchString(combined) {
			insight.Location = loc.name
			insight.LocationKnown = true
			break
		}
	}
	for _, p := range a.patterns {
		if p.re.MatchString(combined) {
			insight.Trend = p.trend
			insight.TrendKnown = true
			break
		}
	}
	return insight
}

// Acknowledgement returns the empathetic opener for the reply, conditioned on
// recovery and trend.
func (a *TrendAnalyzer) Acknowledgement(insight ContextInsight, recovered bool) string {
	switch {
	case recovered:
		return "That's really good to hear. I'm glad you're feeling better."
	case insight.Trend == TrendWorse:
		return "I'm sorry it's getting worse. Let's take this seriously."
	case insight.Trend == TrendSame:
		return "Thanks for the update. Since it hasn't improved, let's keep a close eye on it."
	case insight.Trend == TrendBetter:
		return "Glad it's improving. Let's make sure it keeps heading that way."
	default:
		return "I'm here to help."
	}
}

// FollowUp selects the follow-up question from a decision table keyed by
// severity tier, category family, and what we already know. High severity
// always asks about life-threatening signs first.
func (a *TrendAnalyzer) FollowUp(t Triage, insight ContextInsight) string {
	if t.Severity == SeverityHigh {
		switch familyOf(t.Category) {
		case familyAirway:
			return "Are they able to breathe, speak, or cough at all right now? If not, call emergency services immediately."
		case familyNeuro:
			return "Are they conscious and responding to you? Any confusion, slurred speech, or repeated vomiting?"
		default:
			return "Is there any heavy bleeding, trouble breathing, or loss of consciousness? If so, call emergency services now."
		}
	}

	switch familyOf(t.Category) {
	case familyBleeding:
		if !insight.LocationKnown {
			return "Where exactly is the wound, and roughly how wide or deep does it look?"
		}
		if !insight.TrendKnown {
			return "Is the bleeding slowing down, staying the same, or getting heavier?"
		}
		return "Is the area around it clean, and do you have a bandage or clean cloth on it?"
	case familyBurn:
		if !insight.LocationKnown {
			return "Where is the burn, and is it bigger than the palm of your hand?"
		}
		return "Is the skin blistering or broken, or just red and sore?"
	case familyMusculoskeletal:
		if !insight.LocationKnown {
			return "Which joint or limb is affected, and can you put weight on it?"
		}
		return "Can you move it normally, or does any movement cause sharp pain?"
	case familyNeuro:
		return "How long has this been going on, and did it start suddenly or gradually?"
	default:
		if !insight.LocationKnown {
			return "Can you tell me where exactly it is and how severe it feels - mild, steady, or intense?"
		}
		if !insight.TrendKnown {
			return "Has it been getting better, worse, or staying about the same?"
		}
		return "Is there anything else about how it looks or feels that worries you?"
	}
}

// category families for the follow-up decision table.
const (
	familyBleeding        = "bleeding"
	familyBurn            = "burn"
	familyAirway          = "airway"
	familyMusculoskeletal = "musculoskeletal"
	familyNeuro           = "neuro"
	familyGeneral         = "general"
)

func familyOf(category string) string {
	switch category {
	case "bleeding", "bruise":
		return familyBleeding
	case "burn":
		return familyBurn
	case "choking", "allergic reaction":
		return familyAirway
	case "sprain", "fracture":
		return familyMusculoskeletal
	case "fainting", "headache":
		return familyNeuro
	default:
		return familyGeneral
	}
}

// IsRepeatedInstruction reports whether the previously sent steps appear
// verbatim in the last assistant turn, meaning the generic guidance would
// just be echoed again.
func (a *TrendAnalyzer) IsRepeatedInstruction(lastAssistant, steps string) bool {
	lastAssistant = strings.TrimSpace(lastAssistant)
	steps = strings.TrimSpace(steps)
	if lastAssistant == "" || steps == "" {
		return false
	}
	return strings.Contains(lastAssistant, steps)
}

// EscalationGuidance replaces generic steps when the user is being told the
// same thing twice. It is specific to the category and the observed trend.
func (a *TrendAnalyzer) EscalationGuidance(category, trend string) string {
	base := map[string]string{
		"bleeding":          "Since the bleeding hasn't settled with the earlier steps, keep firm continuous pressure on the wound and do not lift the dressing to check it.",
		"burn":              "Since the burn is still troubling you after the earlier steps, keep the area cool and covered and avoid creams or ice.",
		"choking":           "If the airway is still not clear, alternate 5 back blows and 5 abdominal thrusts and have someone call emergency services now.",
		"allergic reaction": "If symptoms continue after the earlier steps, use an epinephrine auto-injector if one is available and call emergency services.",
		"sprain":            "Since it still hurts after rest and ice, keep weight off it and consider having it examined for a fracture.",
		"fracture":          "Keep the limb immobilized exactly as it is and get emergency care; do not test whether it can move.",
		"fainting":          "If the dizziness keeps returning, stay lying down with legs raised and arrange for someone to be with you.",
		"headache":          "Since the headache persists after rest and fluids, it's time to get it checked by a clinician.",
		"poisoning":         "Do not wait any longer - contact poison control or emergency services immediately.",
	}

	guidance, ok := base[category]
	if !ok {
		guidance = "Since the earlier steps haven't helped, it's best to contact a healthcare professional now rather than repeat them."
	}

	if trend == TrendWorse {
		guidance = fmt.Sprintf("%s Because it's getting worse, please seek professional medical help right away.", guidance)
	}
	return guidance
}
