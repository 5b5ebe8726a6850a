package conversation

import (
	"fmt"
	"strings"

	"github.com/firstaidguide/firstaid-api/internal/guardrails"
	"github.com/firstaidguide/firstaid-api/internal/tools"
	"github.com/firstaidguide/firstaid-api/internal/triage"
)

type composeInput struct {
	ack          string
	triage       triage.Triage
	steps        string
	followUp     string
	numbers      tools.EmergencyNumbers
	verification guardrails.Verification
}

// composeReply assembles the assistant turn: acknowledgement, an emergency
// hint for high-severity situations, the steps, and one follow-up question.
func composeReply(in composeInput) string {
	var sb strings.Builder
	sb.WriteString(in.ack)
	sb.WriteString("\n\n")

	if hint := emergencyHint(in.triage, in.numbers); hint != "" {
		sb.WriteString(hint)
		sb.WriteString("\n\n")
	}

	if !in.verification.Passed {
		// Verified-out steps are not forwarded; the caution stands in.
		sb.WriteString("Please contact a healthcare professional or emergency services for guidance on this one.")
	} else {
		sb.WriteString("Here's what you can do right now:\n")
		sb.WriteString(in.steps)
	}

	if in.followUp != "" {
		sb.WriteString("\n\n")
		sb.WriteString(in.followUp)
	}
	return sb.String()
}

// emergencyHint prefixes the reply with a call-for-help line when the triage
// is high severity. The ambulance number comes from the directory lookup,
// defaulting when the lookup came back empty.
func emergencyHint(t triage.Triage, numbers tools.EmergencyNumbers) string {
	if t.Severity != triage.SeverityHigh {
		return ""
	}

	ambulance := numbers.Numbers["AMBULANCE"]
	if ambulance == "" {
		ambulance = numbers.Numbers["ambulance"]
	}
	if ambulance == "" {
		ambulance = "1990"
	}

	return fmt.Sprintf(
		"If this is severe (heavy bleeding, trouble breathing, fading consciousness), "+
			"call emergency services immediately (dial %s if available).", ambulance)
}
