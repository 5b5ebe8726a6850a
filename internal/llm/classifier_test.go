package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstaidguide/firstaid-api/internal/triage"
)

// stubClient returns canned responses and records requests.
type stubClient struct {
	resp     Response
	err      error
	requests []Request
}

func (s *stubClient) Complete(_ context.Context, req Request) (Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return Response{}, s.err
	}
	return s.resp, nil
}

func TestTriageClassifierParsesJSON(t *testing.T) {
	client := &stubClient{resp: Response{
		Text: `{"category": "bleeding", "severity": "medium", "keywords": ["cut", "finger"]}`,
	}}
	c := NewTriageClassifier(client, "test-model")

	got, err := c.Classify(context.Background(), "I cut my finger")
	require.NoError(t, err)

	assert.Equal(t, "bleeding", got.Category)
	assert.Equal(t, triage.SeverityMedium, got.Severity)
	assert.Equal(t, []string{"cut", "finger"}, got.Keywords)
	require.Len(t, client.requests, 1)
	assert.Equal(t, "test-model", client.requests[0].Model)
}

func TestTriageClassifierExtractsJSONFromProse(t *testing.T) {
	client := &stubClient{resp: Response{
		Text: "Sure, here is the classification:\n```json\n{\"category\": \"Burn\", \"severity\": \"HIGH\", \"keywords\": [\"scald\"]}\n```\nHope that helps.",
	}}
	c := NewTriageClassifier(client, "test-model")

	got, err := c.Classify(context.Background(), "boiling water on my arm")
	require.NoError(t, err)

	assert.Equal(t, "burn", got.Category)
	assert.Equal(t, triage.SeverityHigh, got.Severity)
}

func TestTriageClassifierErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *stubClient
		text   string
	}{
		{"empty input", &stubClient{}, "   "},
		{"provider error", &stubClient{err: errors.New("throttled")}, "I cut my finger"},
		{"no JSON in response", &stubClient{resp: Response{Text: "I cannot classify that."}}, "I cut my finger"},
		{"malformed JSON", &stubClient{resp: Response{Text: `{"category": }`}}, "I cut my finger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTriageClassifier(tt.client, "test-model")
			_, err := c.Classify(context.Background(), tt.text)
			assert.Error(t, err)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	payload, err := extractJSON(`prefix {"a": 1} suffix`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, payload)

	_, err = extractJSON("no braces here")
	assert.Error(t, err)
}
