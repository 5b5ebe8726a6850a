package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrendAnalyzerAnalyze(t *testing.T) {
	a := NewTrendAnalyzer()

	tests := []struct {
		name         string
		history      []Turn
		latest       string
		wantLocation string
		wantTrend    string
	}{
		{
			name:         "location and worsening trend",
			latest:       "the cut on my finger is getting worse",
			wantLocation: "finger",
			wantTrend:    TrendWorse,
		},
		{
			name:         "location from an earlier turn",
			history:      []Turn{{Role: RoleUser, Content: "I twisted my ankle"}},
			latest:       "it still hurts",
			wantLocation: "ankle",
			wantTrend:    TrendSame,
		},
		{
			name:      "worse outranks better",
			latest:    "it was getting better but now it's much worse",
			wantTrend: TrendWorse,
		},
		{
			name:      "improvement",
			latest:    "the swelling is subsiding",
			wantTrend: TrendBetter,
		},
		{
			name:   "nothing known",
			latest: "what should I do",
		},
		{
			name:         "plural body part",
			latest:       "I burned my fingers",
			wantLocation: "finger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.history, tt.latest)
			assert.Equal(t, tt.wantLocation != "", got.LocationKnown)
			assert.Equal(t, tt.wantLocation, got.Location)
			assert.Equal(t, tt.wantTrend != "", got.TrendKnown)
			assert.Equal(t, tt.wantTrend, got.Trend)
		})
	}
}

func TestAcknowledgement(t *testing.T) {
	a := NewTrendAnalyzer()

	assert.Contains(t, a.Acknowledgement(ContextInsight{}, true), "glad you're feeling better")
	assert.Contains(t, a.Acknowledgement(ContextInsight{Trend: TrendWorse, TrendKnown: true}, false), "getting worse")
	assert.Contains(t, a.Acknowledgement(ContextInsight{Trend: TrendSame, TrendKnown: true}, false), "hasn't improved")
	assert.Contains(t, a.Acknowledgement(ContextInsight{Trend: TrendBetter, TrendKnown: true}, false), "improving")
	assert.Equal(t, "I'm here to help.", a.Acknowledgement(ContextInsight{}, false))
}

func TestFollowUp(t *testing.T) {
	a := NewTrendAnalyzer()

	tests := []struct {
		name    string
		triage  Triage
		insight ContextInsight
		want    string
	}{
		{
			name:   "high severity airway asks about breathing",
			triage: Triage{Category: "choking", Severity: SeverityHigh},
			want:   "breathe",
		},
		{
			name:   "high severity neuro asks about consciousness",
			triage: Triage{Category: "fainting", Severity: SeverityHigh},
			want:   "conscious",
		},
		{
			name:   "high severity default asks about red flags",
			triage: Triage{Category: "bleeding", Severity: SeverityHigh},
			want:   "heavy bleeding",
		},
		{
			name:   "bleeding without location asks where",
			triage: Triage{Category: "bleeding", Severity: SeverityMedium},
			want:   "Where exactly is the wound",
		},
		{
			name:    "bleeding with location asks about trend",
			triage:  Triage{Category: "bleeding", Severity: SeverityMedium},
			insight: ContextInsight{Location: "finger", LocationKnown: true},
			want:    "slowing down",
		},
		{
			name:    "bleeding fully known asks about dressing",
			triage:  Triage{Category: "bleeding", Severity: SeverityMedium},
			insight: ContextInsight{LocationKnown: true, TrendKnown: true},
			want:    "bandage",
		},
		{
			name:    "sprain with location asks about movement",
			triage:  Triage{Category: "sprain", Severity: SeverityLow},
			insight: ContextInsight{LocationKnown: true},
			want:    "sharp pain",
		},
		{
			name:   "unknown category asks openly",
			triage: Triage{Category: CategoryUnknown, Severity: SeverityLow},
			want:   "where exactly it is",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, a.FollowUp(tt.triage, tt.insight), tt.want)
		})
	}
}

func TestIsRepeatedInstruction(t *testing.T) {
	a := NewTrendAnalyzer()
	steps := "1. Apply pressure.\n2. Elevate the limb."

	assert.True(t, a.IsRepeatedInstruction("Here is what to do:\n"+steps+"\nTake care.", steps))
	assert.False(t, a.IsRepeatedInstruction("Something entirely different.", steps))
	assert.False(t, a.IsRepeatedInstruction("", steps))
	assert.False(t, a.IsRepeatedInstruction("some reply", ""))
}

func TestEscalationGuidance(t *testing.T) {
	a := NewTrendAnalyzer()

	bleeding := a.EscalationGuidance("bleeding", "")
	assert.Contains(t, bleeding, "firm continuous pressure")
	assert.NotContains(t, bleeding, "getting worse")

	worse := a.EscalationGuidance("burn", TrendWorse)
	assert.Contains(t, worse, "keep the area cool")
	assert.Contains(t, worse, "seek professional medical help")

	unknown := a.EscalationGuidance("something else", "")
	assert.Contains(t, unknown, "healthcare professional")
}
