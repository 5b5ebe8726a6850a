package triage

// ScopeSignals collects the per-turn evidence the reconciler fuses into one
// final in/out-of-scope decision.
type ScopeSignals struct {
	Gate         ScopeDecision
	Latest       ClassificationResult
	Context      ClassificationResult
	LatestTriage Triage
	ContextText  string
}

// ScopeVerdict is the reconciler's output: the final scope decision plus the
// triage that should accompany it (the context-derived triage when a short
// confirmatory reply inherited the prior turn's category).
type ScopeVerdict struct {
	InScope bool
	Triage  Triage
}

// ScopeReconciler fuses the scope gate, the keyword classifier on the latest
// turn, the keyword classifier on the condensed recent context, and the
// rule-based triage into one decision. The precedence is an explicit chain so
// each step can be tested in isolation.
type ScopeReconciler struct {
	keywords   *KeywordClassifier
	categories *CategoryClassifier
}

func NewScopeReconciler(keywords *KeywordClassifier, categories *CategoryClassifier) *ScopeReconciler {
	return &ScopeReconciler{keywords: keywords, categories: categories}
}

// Reconcile applies the priority chain:
//
//  1. gate deny            -> out of scope (hard veto, nothing overrides it)
//  2. latest or context classifier positive -> in scope
//  3. latest triage related                 -> in scope
//  4. context triage related                -> in scope
//  5. otherwise                             -> out of scope
//
// When the latest turn's triage is ambiguous (out_of_scope/unknown category
// or no keywords) but the context classifier is positive, the category
// classifier is re-run on the context text so a short confirmatory reply
// inherits the prior turn's category (context rescue).
func (r *ScopeReconciler) Reconcile(s ScopeSignals) ScopeVerdict {
	if !s.Gate.Allowed {
		return ScopeVerdict{InScope: false, Triage: outOfScopeTriage(s.Latest.Confidence)}
	}

	triage := s.LatestTriage
	if ambiguous(triage) && s.Context.IsFirstAid {
		triage = r.categories.Classify(s.ContextText)
		triage.Confidence = s.Context.Confidence
	}

	switch {
	case s.Latest.IsFirstAid || s.Context.IsFirstAid:
		return ScopeVerdict{InScope: true, Triage: triage}
	case r.keywords.Related(s.LatestTriage):
		return ScopeVerdict{InScope: true, Triage: triage}
	case r.keywords.Related(triage):
		return ScopeVerdict{InScope: true, Triage: triage}
	}

	return ScopeVerdict{InScope: false, Triage: outOfScopeTriage(s.Latest.Confidence)}
}

func ambiguous(t Triage) bool {
	switch t.Category {
	case "", CategoryOutOfScope, CategoryUnknown:
		return true
	}
	return len(t.Keywords) == 0
}

func outOfScopeTriage(confidence float64) Triage {
	return Triage{
		Category:   CategoryOutOfScope,
		Severity:   SeverityLow,
		Keywords:   []string{},
		Confidence: confidence,
	}
}
