package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/firstaidguide/firstaid-api/internal/triage"
)

const classifierPrompt = `Classify this first-aid message. Respond with JSON only.

Categories: bleeding, burn, choking, allergic reaction, bruise, sprain,
fracture, fainting, headache, poisoning, unknown.
Severity: low, medium, high.

Message: %s

Respond with: {"category": "<category>", "severity": "<severity>", "keywords": ["<term>", ...]}`

// TriageClassifier asks the LLM for a structured category/severity/keywords
// judgement. Callers merge its output with the rule-based classifier, which
// remains authoritative whenever this result is weak or the call fails.
type TriageClassifier struct {
	client Client
	model  string
}

func NewTriageClassifier(client Client, model string) *TriageClassifier {
	return &TriageClassifier{client: client, model: model}
}

// Classify returns the model's triage for text. The response is parsed
// defensively: the model may wrap the JSON in prose.
func (c *TriageClassifier) Classify(ctx context.Context, text string) (triage.Triage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return triage.Triage{}, errors.New("llm: empty text for classification")
	}

	resp, err := c.client.Complete(ctx, Request{
		Model:     c.model,
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: fmt.Sprintf(classifierPrompt, text)}},
		MaxTokens: 120,
	})
	if err != nil {
		return triage.Triage{}, err
	}

	var parsed struct {
		Category string   `json:"category"`
		Severity string   `json:"severity"`
		Keywords []string `json:"keywords"`
	}
	payload, err := extractJSON(resp.Text)
	if err != nil {
		return triage.Triage{}, err
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return triage.Triage{}, fmt.Errorf("llm: invalid classifier response: %w", err)
	}

	return triage.Triage{
		Category: strings.ToLower(strings.TrimSpace(parsed.Category)),
		Severity: triage.Severity(strings.ToLower(strings.TrimSpace(parsed.Severity))),
		Keywords: parsed.Keywords,
	}, nil
}

// extractJSON pulls the first {...} object out of model output that may
// include surrounding text.
func extractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", errors.New("llm: no JSON object in response")
	}
	return content[start : end+1], nil
}
