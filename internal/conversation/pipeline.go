package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/firstaidguide/firstaid-api/internal/observability/metrics"
	"github.com/firstaidguide/firstaid-api/internal/risk"
	"github.com/firstaidguide/firstaid-api/internal/triage"
	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

var pipelineTracer = otel.Tracer("firstaid/triage-pipeline")

// recentContextTurns is how many prior user turns feed the condensed context
// string used for context rescue.
const recentContextTurns = 3

const outOfScopeMessage = "I can only help with first-aid emergencies and treatments. " +
	"If you have an injury or symptom you're worried about, tell me what happened."

// Pipeline sequences one triage turn end to end. It holds no per-request
// state, so a single Pipeline is safe to share across concurrent requests.
type Pipeline struct {
	gate       *triage.ScopeGate
	keywords   *triage.KeywordClassifier
	categories *triage.CategoryClassifier
	reconciler *triage.ScopeReconciler
	recovery   *triage.RecoveryDetector
	clarifier  *triage.ClarificationDetector
	trends     *triage.TrendAnalyzer

	classifier TriageClassifier     // optional LLM backing
	generator  InstructionGenerator // required
	verifier   Verifier             // required
	directory  Directory            // optional

	timeout time.Duration
	country string
	logger  *logging.Logger
	metrics *metrics.TriageMetrics
}

// PipelineConfig wires a Pipeline. Generator and Verifier are mandatory; the
// LLM classifier and directory are optional collaborators.
type PipelineConfig struct {
	DenyTopics []string
	AppName    string

	Classifier TriageClassifier
	Generator  InstructionGenerator
	Verifier   Verifier
	Directory  Directory

	CollaboratorTimeout time.Duration
	DefaultCountry      string
	Logger              *logging.Logger
	Metrics             *metrics.TriageMetrics
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Generator == nil {
		panic("conversation: instruction generator cannot be nil")
	}
	if cfg.Verifier == nil {
		panic("conversation: verifier cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = 10 * time.Second
	}

	keywords := triage.NewKeywordClassifier()
	categories := triage.NewCategoryClassifier()

	return &Pipeline{
		gate:       triage.NewScopeGate(cfg.DenyTopics, cfg.AppName),
		keywords:   keywords,
		categories: categories,
		reconciler: triage.NewScopeReconciler(keywords, categories),
		recovery:   triage.NewRecoveryDetector(),
		clarifier:  triage.NewClarificationDetector(),
		trends:     triage.NewTrendAnalyzer(),
		classifier: cfg.Classifier,
		generator:  cfg.Generator,
		verifier:   cfg.Verifier,
		directory:  cfg.Directory,
		timeout:    cfg.CollaboratorTimeout,
		country:    cfg.DefaultCountry,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// Handle processes one user turn against the supplied history and returns a
// structured result. No error escapes: internal failures become an error
// result, rejections a rejection result.
func (p *Pipeline) Handle(ctx context.Context, history []triage.Turn, message, sessionID string) (result Result) {
	ctx, span := pipelineTracer.Start(ctx, "triage.handle")
	defer span.End()
	start := time.Now()
	defer func() {
		p.metrics.ObserveLatency(time.Since(start).Seconds())
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic", "panic", fmt.Sprint(r))
			p.metrics.ObserveRequest("error")
			result = Result{
				Error:   "An internal error occurred while processing your request.",
				Details: fmt.Sprint(r),
			}
		}
	}()

	// Scope gate: sanitize and screen. A deny is a designed terminal
	// outcome, not a failure.
	gate := p.gate.Check(message)
	span.SetAttributes(attribute.Bool("scope.gate_allowed", gate.Allowed))
	if !gate.Allowed {
		p.metrics.ObserveRequest("rejected")
		return Result{
			Rejected: true,
			Reason:   gate.Reason,
			Security: &gate,
			Message:  gate.Reason,
		}
	}

	sanitized := gate.Sanitized
	latestCls := p.keywords.Classify(sanitized)
	contextText := triage.RecentContext(history, sanitized, recentContextTurns)
	contextCls := p.keywords.Classify(contextText)
	ruleTriage := p.categories.Classify(sanitized)
	ruleTriage.Confidence = latestCls.Confidence

	verdict := p.reconciler.Reconcile(triage.ScopeSignals{
		Gate:         gate,
		Latest:       latestCls,
		Context:      contextCls,
		LatestTriage: ruleTriage,
		ContextText:  contextText,
	})
	span.SetAttributes(attribute.Bool("scope.in_scope", verdict.InScope))

	meta := Meta{Context: contextText, InScope: verdict.InScope, SessionID: sessionID}

	if !verdict.InScope {
		// A near-miss of a known term ("bruse") gets a clarifying question
		// rather than a refusal; everything else is out of scope.
		if prompt, ok := p.clarifier.Detect(sanitized); ok {
			p.metrics.ObserveRequest("clarification")
			meta.InScope = true
			meta.NeedsClarification = true
			meta.ClarificationPrompt = prompt
			t := ruleTriage
			return Result{
				Security:     &gate,
				Triage:       &t,
				Conversation: &meta,
				Instructions: &InstructionsResult{Skipped: true},
				Verification: &VerificationResult{Skipped: true},
				Message:      prompt,
			}
		}

		p.metrics.ObserveRequest("out_of_scope")
		t := verdict.Triage
		return Result{
			Security:     &gate,
			Triage:       &t,
			Conversation: &meta,
			Instructions: &InstructionsResult{Skipped: true},
			Verification: &VerificationResult{Skipped: true},
			Message:      outOfScopeMessage,
		}
	}

	recovery := p.recovery.Detect(history, sanitized)
	meta.Recovered = recovery.Recovered

	final := p.classify(ctx, sanitized, verdict.Triage)
	span.SetAttributes(
		attribute.String("triage.category", final.Category),
		attribute.String("triage.severity", string(final.Severity)),
	)
	p.metrics.ObserveCategory(final.Category, string(final.Severity))

	insight := p.trends.Analyze(history, sanitized)

	if recovery.Recovered {
		p.metrics.ObserveRequest("recovered")
		t := final
		return Result{
			Security:       &gate,
			Triage:         &t,
			Recovery:       &recovery,
			Conversation:   &meta,
			Instructions:   &InstructionsResult{Skipped: true},
			Verification:   &VerificationResult{Skipped: true},
			RiskConfidence: &risk.Assessment{Risk: 0.1, Confidence: 0.8},
			Insight:        &insight,
			Message:        p.trends.Acknowledgement(insight, true),
		}
	}

	if prompt, ok := p.clarifier.Detect(sanitized); ok {
		meta.NeedsClarification = true
		meta.ClarificationPrompt = prompt
	}

	toolResults := p.lookupTools(ctx, sanitized)

	instructions, err := p.generate(ctx, sanitized, final)
	if err != nil {
		// ContractViolation: no usable steps even after the fallback
		// library. Fatal to this request.
		p.logger.Error("instruction generation contract violation", "error", err.Error())
		p.metrics.ObserveRequest("error")
		return Result{
			Error:   "An internal error occurred while processing your request.",
			Details: err.Error(),
		}
	}

	// Repeating the same steps back is unhelpful; swap in escalation
	// guidance when the previous assistant turn already contained them.
	if p.trends.IsRepeatedInstruction(triage.LastAssistantText(history), instructions.Steps) {
		instructions.Steps = p.trends.EscalationGuidance(final.Category, insight.Trend)
	}

	verification := p.verifier.Verify(instructions.Steps)
	assessment := risk.Score(final, verification)

	reply := composeReply(composeInput{
		ack:          p.trends.Acknowledgement(insight, false),
		triage:       final,
		steps:        instructions.Steps,
		followUp:     p.followUp(final, insight, meta),
		numbers:      toolResults.EmergencyNumbers,
		verification: verification,
	})

	p.metrics.ObserveRequest("responded")
	t := final
	return Result{
		Security:       &gate,
		Triage:         &t,
		Recovery:       &recovery,
		Conversation:   &meta,
		Tools:          &toolResults,
		Instructions:   &instructions,
		Verification:   &VerificationResult{Passed: verification.Passed, PolicyFlags: verification.PolicyFlags},
		RiskConfidence: &assessment,
		Insight:        &insight,
		Message:        reply,
	}
}

// classify runs the optional LLM classifier under the collaborator timeout
// and merges its output with the rule-based result, which stays
// authoritative on any failure.
func (p *Pipeline) classify(ctx context.Context, text string, ruleBased triage.Triage) triage.Triage {
	if p.classifier == nil {
		return ruleBased
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	external, err := p.classifier.Classify(callCtx, text)
	if err != nil {
		p.logger.Warn("external classification failed, using rule-based triage", "error", err.Error())
		p.metrics.ObserveFallback("classifier")
		return ruleBased
	}

	merged := p.categories.Merge(&external, ruleBased)
	merged.Confidence = ruleBased.Confidence
	return merged
}

// generate runs instruction generation under the collaborator timeout. Empty
// steps after the generator's own fallback is a contract violation.
func (p *Pipeline) generate(ctx context.Context, text string, t triage.Triage) (InstructionsResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	instructions, err := p.generator.Generate(callCtx, text, t.Category, string(t.Severity))
	if err != nil {
		return InstructionsResult{}, err
	}
	if strings.TrimSpace(instructions.Steps) == "" {
		return InstructionsResult{}, fmt.Errorf("conversation: instruction generator returned no steps")
	}
	return InstructionsResult{Steps: instructions.Steps, Sources: instructions.Sources}, nil
}

// lookupTools performs the best-effort directory lookups. Failures are
// logged and default to empty results.
func (p *Pipeline) lookupTools(ctx context.Context, query string) ToolResults {
	var results ToolResults
	if p.directory == nil {
		return results
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	numbers, err := p.directory.EmergencyNumbers(callCtx, p.country)
	if err != nil {
		p.logger.Warn("emergency number lookup failed", "error", err.Error())
		p.metrics.ObserveFallback("directory")
	} else {
		results.EmergencyNumbers = numbers
	}

	facility, err := p.directory.NearestFacility(callCtx, "nearest hospital for "+query)
	if err != nil {
		p.logger.Warn("facility lookup failed", "error", err.Error())
		p.metrics.ObserveFallback("directory")
	} else {
		results.Maps = facility
	}
	return results
}

// followUp picks the question to end the reply with: a pending clarification
// always wins over the trend table.
func (p *Pipeline) followUp(t triage.Triage, insight triage.ContextInsight, meta Meta) string {
	if meta.NeedsClarification {
		return meta.ClarificationPrompt
	}
	return p.trends.FollowUp(t, insight)
}
