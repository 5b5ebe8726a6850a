// Package conversation orchestrates one triage turn: it sequences the
// heuristic components in internal/triage, calls the external collaborators
// under timeouts, and assembles the structured result the HTTP layer
// returns.
package conversation

import (
	"context"

	"github.com/firstaidguide/firstaid-api/internal/guardrails"
	"github.com/firstaidguide/firstaid-api/internal/llm"
	"github.com/firstaidguide/firstaid-api/internal/risk"
	"github.com/firstaidguide/firstaid-api/internal/tools"
	"github.com/firstaidguide/firstaid-api/internal/triage"
)

// ChatRequest is the single-message entrypoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatContinueRequest carries the ordered conversation so far. The caller
// owns the history; nothing is persisted between requests.
type ChatContinueRequest struct {
	Messages  []triage.Turn `json:"messages"`
	SessionID string        `json:"session_id,omitempty"`
}

// Meta aggregates the per-turn decisions. It lives for the duration of one
// request only.
type Meta struct {
	Context             string `json:"context"`
	InScope             bool   `json:"in_scope"`
	NeedsClarification  bool   `json:"needs_clarification"`
	ClarificationPrompt string `json:"clarification_prompt,omitempty"`
	Recovered           bool   `json:"recovered"`
	SessionID           string `json:"session_id,omitempty"`
}

// InstructionsResult wraps generated steps with the skip marker used when
// the turn never reached generation.
type InstructionsResult struct {
	Steps   string   `json:"steps,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Skipped bool     `json:"skipped,omitempty"`
}

// VerificationResult wraps the guardrail check with its skip marker.
type VerificationResult struct {
	Passed      bool     `json:"passed"`
	PolicyFlags []string `json:"policy_flags,omitempty"`
	Skipped     bool     `json:"skipped,omitempty"`
}

// ToolResults carries the best-effort directory lookups.
type ToolResults struct {
	EmergencyNumbers tools.EmergencyNumbers `json:"emergency_numbers"`
	Maps             tools.FacilityHint     `json:"maps"`
}

// Result is the structured outcome of one pipeline invocation. Exactly one
// of the three shapes is populated: a rejection (Rejected set), an internal
// error (Error set), or a full triage result.
type Result struct {
	Rejected bool   `json:"rejected,omitempty"`
	Reason   string `json:"reason,omitempty"`

	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`

	Security       *triage.ScopeDecision  `json:"security,omitempty"`
	Triage         *triage.Triage         `json:"triage,omitempty"`
	Recovery       *triage.RecoverySignal `json:"recovery,omitempty"`
	Conversation   *Meta                  `json:"conversation,omitempty"`
	Tools          *ToolResults           `json:"tools,omitempty"`
	Instructions   *InstructionsResult    `json:"instructions,omitempty"`
	Verification   *VerificationResult    `json:"verification,omitempty"`
	RiskConfidence *risk.Assessment       `json:"risk_confidence,omitempty"`
	Insight        *triage.ContextInsight `json:"insight,omitempty"`

	// Message is the composed assistant reply for this turn.
	Message string `json:"-"`
}

// TriageClassifier is the external text-classification capability. The
// rule-based classifier backs it up on every failure.
type TriageClassifier interface {
	Classify(ctx context.Context, text string) (triage.Triage, error)
}

// InstructionGenerator produces grounded first-aid steps.
type InstructionGenerator interface {
	Generate(ctx context.Context, query, categoryHint, severityHint string) (llm.Instructions, error)
}

// Verifier checks generated text against the guardrails policy.
type Verifier interface {
	Verify(text string) guardrails.Verification
}

// Directory answers best-effort emergency lookups.
type Directory interface {
	EmergencyNumbers(ctx context.Context, countryCode string) (tools.EmergencyNumbers, error)
	NearestFacility(ctx context.Context, query string) (tools.FacilityHint, error)
}
