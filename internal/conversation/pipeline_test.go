package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstaidguide/firstaid-api/internal/guardrails"
	"github.com/firstaidguide/firstaid-api/internal/llm"
	"github.com/firstaidguide/firstaid-api/internal/tools"
	"github.com/firstaidguide/firstaid-api/internal/triage"
	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

type stubClassifier struct {
	result triage.Triage
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (triage.Triage, error) {
	s.calls++
	if s.err != nil {
		return triage.Triage{}, s.err
	}
	return s.result, nil
}

type stubGenerator struct {
	steps   string
	sources []string
	err     error
	queries []string
}

func (s *stubGenerator) Generate(_ context.Context, query, _, _ string) (llm.Instructions, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return llm.Instructions{}, s.err
	}
	return llm.Instructions{Steps: s.steps, Sources: s.sources}, nil
}

func newTestPipeline(t *testing.T, mutate func(*PipelineConfig)) *Pipeline {
	t.Helper()
	cfg := PipelineConfig{
		DenyTopics:     guardrails.DefaultPolicy().DisallowedTopics,
		AppName:        "first_aid_guide",
		Generator:      &stubGenerator{steps: "1. Apply pressure.\n2. Elevate the limb.", sources: []string{"guide-001"}},
		Verifier:       guardrails.DefaultPolicy(),
		Directory:      tools.NewDirectory(nil, 0, logging.Default()),
		DefaultCountry: "LK",
		Logger:         logging.NewText("error"),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPipeline(cfg)
}

func TestHandleRejectsOffTopicMessage(t *testing.T) {
	p := newTestPipeline(t, nil)

	result := p.Handle(context.Background(), nil, "what's a good stock to buy", "s1")

	assert.True(t, result.Rejected)
	assert.NotEmpty(t, result.Reason)
	assert.Equal(t, result.Reason, result.Message)
	require.NotNil(t, result.Security)
	assert.False(t, result.Security.Allowed)
	assert.Nil(t, result.Instructions)
}

func TestHandleRejectsDenyTopic(t *testing.T) {
	p := newTestPipeline(t, nil)

	result := p.Handle(context.Background(), nil, "any tips for winning at gambling", "s1")

	assert.True(t, result.Rejected)
	assert.Contains(t, result.Reason, "gambling")
}

func TestHandleOutOfScopeMessage(t *testing.T) {
	p := newTestPipeline(t, nil)

	result := p.Handle(context.Background(), nil, "what should we name the new puppy", "s1")

	assert.False(t, result.Rejected)
	require.NotNil(t, result.Conversation)
	assert.False(t, result.Conversation.InScope)
	require.NotNil(t, result.Triage)
	assert.Equal(t, triage.CategoryOutOfScope, result.Triage.Category)
	assert.True(t, result.Instructions.Skipped)
	assert.True(t, result.Verification.Skipped)
	assert.Equal(t, outOfScopeMessage, result.Message)
}

func TestHandleRespondsToFirstAidMessage(t *testing.T) {
	p := newTestPipeline(t, nil)

	result := p.Handle(context.Background(), nil, "I cut my finger and it's bleeding a lot", "s1")

	assert.False(t, result.Rejected)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Triage)
	assert.Equal(t, "bleeding", result.Triage.Category)
	assert.Equal(t, triage.SeverityMedium, result.Triage.Severity)
	assert.GreaterOrEqual(t, result.Triage.Confidence, 0.6)

	require.NotNil(t, result.Conversation)
	assert.True(t, result.Conversation.InScope)
	assert.Equal(t, "s1", result.Conversation.SessionID)

	require.NotNil(t, result.Instructions)
	assert.Contains(t, result.Instructions.Steps, "Apply pressure")
	require.NotNil(t, result.Verification)
	assert.True(t, result.Verification.Passed)
	require.NotNil(t, result.RiskConfidence)
	assert.Greater(t, result.RiskConfidence.Risk, 0.6)

	assert.Contains(t, result.Message, "Apply pressure")
	require.NotNil(t, result.Tools)
	assert.Equal(t, "1990", result.Tools.EmergencyNumbers.Numbers["AMBULANCE"])
}

func TestHandleRecoveredTurnSkipsGeneration(t *testing.T) {
	gen := &stubGenerator{steps: "unused"}
	p := newTestPipeline(t, func(cfg *PipelineConfig) { cfg.Generator = gen })
	history := []triage.Turn{
		{Role: triage.RoleUser, Content: "I burned my hand on the stove"},
		{Role: triage.RoleAssistant, Content: "Cool the burn under running water."},
	}

	result := p.Handle(context.Background(), history, "it's not painful anymore", "s1")

	require.NotNil(t, result.Recovery)
	assert.True(t, result.Recovery.Recovered)
	assert.True(t, result.Instructions.Skipped)
	assert.True(t, result.Verification.Skipped)
	assert.InDelta(t, 0.1, result.RiskConfidence.Risk, 0.0001)
	assert.InDelta(t, 0.8, result.RiskConfidence.Confidence, 0.0001)
	assert.Contains(t, result.Message, "glad you're feeling better")
	assert.Empty(t, gen.queries)
}

func TestHandleRecoveryIsIdempotent(t *testing.T) {
	p := newTestPipeline(t, nil)
	history := []triage.Turn{
		{Role: triage.RoleUser, Content: "I burned my hand on the stove"},
		{Role: triage.RoleAssistant, Content: "Cool the burn under running water."},
	}

	first := p.Handle(context.Background(), history, "it's not painful anymore", "s1")
	second := p.Handle(context.Background(), history, "it's not painful anymore", "s1")

	assert.Equal(t, first.Recovery, second.Recovery)
	assert.Equal(t, first.Message, second.Message)
}

func TestHandleMisspellingAsksForClarification(t *testing.T) {
	p := newTestPipeline(t, nil)

	result := p.Handle(context.Background(), nil, "I have a bruse on my arm", "s1")

	assert.False(t, result.Rejected)
	require.NotNil(t, result.Conversation)
	assert.True(t, result.Conversation.InScope)
	assert.True(t, result.Conversation.NeedsClarification)
	assert.Contains(t, result.Conversation.ClarificationPrompt, "bruise")
	assert.True(t, result.Instructions.Skipped)
	assert.Equal(t, result.Conversation.ClarificationPrompt, result.Message)
}

func TestHandleContextRescuesShortReply(t *testing.T) {
	p := newTestPipeline(t, nil)
	history := []triage.Turn{
		{Role: triage.RoleUser, Content: "I burned my hand on the stove"},
		{Role: triage.RoleAssistant, Content: "How large is the burn?"},
	}

	result := p.Handle(context.Background(), history, "about the size of a coin and quite red", "s1")

	require.NotNil(t, result.Conversation)
	assert.True(t, result.Conversation.InScope)
	require.NotNil(t, result.Triage)
	assert.Equal(t, "burn", result.Triage.Category)
}

func TestHandleClassifierFailureFallsBackToRules(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("provider down")}
	p := newTestPipeline(t, func(cfg *PipelineConfig) { cfg.Classifier = classifier })

	result := p.Handle(context.Background(), nil, "I cut my finger and it's bleeding a lot", "s1")

	assert.Equal(t, 1, classifier.calls)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Triage)
	assert.Equal(t, "bleeding", result.Triage.Category)
}

func TestHandleMergesExternalClassification(t *testing.T) {
	classifier := &stubClassifier{result: triage.Triage{Category: "bleeding", Severity: triage.SeverityHigh, Keywords: []string{"laceration"}}}
	p := newTestPipeline(t, func(cfg *PipelineConfig) { cfg.Classifier = classifier })

	result := p.Handle(context.Background(), nil, "I cut my finger and it's bleeding a lot", "s1")

	require.NotNil(t, result.Triage)
	assert.Equal(t, "bleeding", result.Triage.Category)
	assert.Equal(t, triage.SeverityHigh, result.Triage.Severity)
	assert.Equal(t, []string{"laceration"}, result.Triage.Keywords)
}

func TestHandleGeneratorFailureIsInternalError(t *testing.T) {
	p := newTestPipeline(t, func(cfg *PipelineConfig) {
		cfg.Generator = &stubGenerator{err: errors.New("everything is down")}
	})

	result := p.Handle(context.Background(), nil, "I cut my finger and it's bleeding a lot", "s1")

	assert.NotEmpty(t, result.Error)
	assert.Contains(t, result.Details, "everything is down")
	assert.False(t, result.Rejected)
	assert.Nil(t, result.Instructions)
}

func TestHandleEmptyStepsIsContractViolation(t *testing.T) {
	p := newTestPipeline(t, func(cfg *PipelineConfig) {
		cfg.Generator = &stubGenerator{steps: "   "}
	})

	result := p.Handle(context.Background(), nil, "I cut my finger and it's bleeding a lot", "s1")

	assert.NotEmpty(t, result.Error)
	assert.Contains(t, result.Details, "no steps")
}

func TestHandleFailedVerificationWithholdsSteps(t *testing.T) {
	p := newTestPipeline(t, func(cfg *PipelineConfig) {
		cfg.Generator = &stubGenerator{steps: "Take 400 mg of ibuprofen."}
	})

	result := p.Handle(context.Background(), nil, "I have a headache and feel dizzy", "s1")

	require.NotNil(t, result.Verification)
	assert.False(t, result.Verification.Passed)
	assert.Contains(t, result.Verification.PolicyFlags, "specific_dosage")
	assert.NotContains(t, result.Message, "400 mg")
	assert.Contains(t, result.Message, "healthcare professional")
	assert.Less(t, result.RiskConfidence.Confidence, 0.5)
}

func TestHandleRepeatedStepsEscalate(t *testing.T) {
	steps := "1. Apply pressure.\n2. Elevate the limb."
	p := newTestPipeline(t, func(cfg *PipelineConfig) {
		cfg.Generator = &stubGenerator{steps: steps}
	})
	history := []triage.Turn{
		{Role: triage.RoleUser, Content: "I cut my finger and it's bleeding"},
		{Role: triage.RoleAssistant, Content: "Here's what you can do right now:\n" + steps},
	}

	result := p.Handle(context.Background(), history, "the cut is still bleeding", "s1")

	require.NotNil(t, result.Instructions)
	assert.NotEqual(t, steps, result.Instructions.Steps)
	assert.Contains(t, result.Instructions.Steps, "firm continuous pressure")
}

func TestHandleHighSeverityIncludesEmergencyHint(t *testing.T) {
	p := newTestPipeline(t, nil)

	result := p.Handle(context.Background(), nil, "my friend is choking and can't breathe", "s1")

	require.NotNil(t, result.Triage)
	assert.Equal(t, "choking", result.Triage.Category)
	assert.Equal(t, triage.SeverityHigh, result.Triage.Severity)
	assert.Contains(t, result.Message, "call emergency services immediately")
	assert.Contains(t, result.Message, "1990")
}

func TestHandleDeterministicForSameInput(t *testing.T) {
	p := newTestPipeline(t, nil)
	input := "I cut my finger and it's bleeding a lot"

	first := p.Handle(context.Background(), nil, input, "s1")
	for i := 0; i < 3; i++ {
		again := p.Handle(context.Background(), nil, input, "s1")
		assert.Equal(t, first.Triage, again.Triage)
		assert.Equal(t, first.Message, again.Message)
	}
}
