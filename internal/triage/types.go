// Package triage contains the heuristic decision layer of the first-aid
// assistant: scope gating, keyword relevance scoring, category/severity
// classification, recovery and clarification detection, and the multi-signal
// scope reconciliation across conversation turns. Everything here is pure and
// deterministic; network-backed collaborators live in other packages and feed
// their results in.
package triage

// Severity is the urgency tier assigned to a triage result.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of the known severity tiers.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// rank orders severities so floors can be applied with a max().
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// AtLeast returns the stronger of s and floor.
func (s Severity) AtLeast(floor Severity) Severity {
	if floor.rank() > s.rank() {
		return floor
	}
	return s
}

// Categories outside the fixed emergency vocabulary.
const (
	CategoryOutOfScope = "out_of_scope"
	CategoryUnknown    = "unknown"
)

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is a single message in a conversation. Turns are immutable; an ordered
// slice of them forms the history, oldest first.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ScopeDecision is the scope gate's verdict on a single turn.
type ScopeDecision struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason"`
	Sanitized string `json:"sanitized"`
}

// ClassificationResult is the keyword classifier's relevance verdict.
type ClassificationResult struct {
	IsFirstAid bool    `json:"is_first_aid"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// Triage is the category/severity classification of a described condition.
// It is recomputed every turn and never mutated after creation.
type Triage struct {
	Category   string   `json:"category"`
	Severity   Severity `json:"severity"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

// RecoverySignal reports whether the user indicated their symptoms resolved.
type RecoverySignal struct {
	Recovered bool     `json:"recovered"`
	Matches   []string `json:"matches"`
	Window    string   `json:"window"`
}

// UserTexts returns the content of every user turn in order.
func UserTexts(history []Turn) []string {
	var texts []string
	for _, turn := range history {
		if turn.Role == RoleUser && turn.Content != "" {
			texts = append(texts, turn.Content)
		}
	}
	return texts
}

// LastAssistantText returns the content of the most recent assistant turn,
// or "" when the history has none.
func LastAssistantText(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleAssistant {
			return history[i].Content
		}
	}
	return ""
}
