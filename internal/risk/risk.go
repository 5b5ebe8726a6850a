// Package risk scores the overall risk of a triaged condition and the
// system's confidence in its guidance.
package risk

import (
	"math"
	"strings"

	"github.com/firstaidguide/firstaid-api/internal/guardrails"
	"github.com/firstaidguide/firstaid-api/internal/triage"
)

// Assessment pairs a risk estimate with the confidence in the generated
// guidance, both in [0,1].
type Assessment struct {
	Risk       float64 `json:"risk"`
	Confidence float64 `json:"confidence"`
}

var severityWeight = map[triage.Severity]float64{
	triage.SeverityLow:    0.2,
	triage.SeverityMedium: 0.6,
	triage.SeverityHigh:   0.9,
}

// Score derives risk from severity (with a small bump for bleeding) and
// confidence from whether verification passed.
func Score(t triage.Triage, v guardrails.Verification) Assessment {
	sev, ok := severityWeight[t.Severity]
	if !ok {
		sev = 0.2
	}

	risk := sev
	if strings.Contains(strings.ToLower(t.Category), "bleeding") {
		risk += 0.1
	}

	confidence := 0.5
	if v.Passed {
		confidence += 0.2
	} else {
		confidence -= 0.3
	}

	return Assessment{Risk: clamp(risk), Confidence: clamp(confidence)}
}

func clamp(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
