package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/firstaidguide/firstaid-api/internal/rag"
	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

const instructionSystem = "You are a first aid instruction generator. Use the provided context strictly. " +
	"Return clear, numbered, short steps. Include cautions. If unsure, say to contact emergency services."

// Retriever is the grounding-passage capability the generator depends on.
type Retriever interface {
	Query(ctx context.Context, query string, topK int) ([]rag.Passage, error)
}

// Instructions is the generated step-by-step guidance plus the IDs of the
// passages it was grounded on.
type Instructions struct {
	Steps   string   `json:"steps"`
	Sources []string `json:"sources"`
}

// InstructionGenerator produces first-aid steps for a query: grounding
// passages are retrieved, the LLM is prompted, and any failure falls back to
// the rule-based step library. It always returns non-empty steps.
type InstructionGenerator struct {
	client    Client
	model     string
	retriever Retriever
	topK      int
	logger    *logging.Logger
}

// NewInstructionGenerator builds a generator. client may be nil (no provider
// configured), in which case every request uses the fallback library.
func NewInstructionGenerator(client Client, model string, retriever Retriever, topK int, logger *logging.Logger) *InstructionGenerator {
	if topK <= 0 {
		topK = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &InstructionGenerator{
		client:    client,
		model:     model,
		retriever: retriever,
		topK:      topK,
		logger:    logger,
	}
}

// Generate returns instructions for query. categoryHint and severityHint
// come from triage and steer both the prompt and the fallback selection.
func (g *InstructionGenerator) Generate(ctx context.Context, query, categoryHint, severityHint string) (Instructions, error) {
	passages := g.retrieve(ctx, query)

	steps, err := g.generateWithLLM(ctx, query, categoryHint, severityHint, passages)
	if err != nil {
		g.logger.Warn("instruction generation failed, using rule-based steps",
			"error", err.Error(),
			"category", categoryHint,
		)
		steps = FallbackSteps(query, categoryHint)
	}

	sources := make([]string, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, p.ID)
	}
	return Instructions{Steps: steps, Sources: sources}, nil
}

func (g *InstructionGenerator) retrieve(ctx context.Context, query string) []rag.Passage {
	if g.retriever == nil {
		return nil
	}
	passages, err := g.retriever.Query(ctx, query, g.topK)
	if err != nil {
		g.logger.Warn("grounding retrieval failed, continuing without context", "error", err.Error())
		return nil
	}
	return passages
}

func (g *InstructionGenerator) generateWithLLM(ctx context.Context, query, categoryHint, severityHint string, passages []rag.Passage) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("llm: no generation provider configured")
	}

	var contextText strings.Builder
	for _, p := range passages {
		contextText.WriteString(p.Text)
		contextText.WriteString("\n\n")
	}

	prompt := fmt.Sprintf(
		"User query: %s\nSuspected category: %s (severity %s)\n\ncontext:\n%s\nReturn numbered steps.",
		query, categoryHint, severityHint, contextText.String(),
	)

	resp, err := g.client.Complete(ctx, Request{
		Model:       g.model,
		System:      []string{instructionSystem},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Text)
	if content == "" || strings.EqualFold(content, "no response") {
		return "", fmt.Errorf("llm: provider returned no usable content")
	}
	return content, nil
}

// fallbackScenario maps trigger keywords to canned guidance. Ordered; first
// match wins, so specific emergencies precede generic symptom entries.
type fallbackScenario struct {
	category string
	triggers []string
	steps    string
}

var fallbackScenarios = []fallbackScenario{
	{"bleeding", []string{"bleed", "cut", "laceration", "wound"},
		"1) Wash your hands and gently clean the wound with clean water.\n" +
			"2) Apply steady pressure with a clean cloth or bandage to slow bleeding.\n" +
			"3) Elevate the injured area above heart level if possible.\n" +
			"4) Seek urgent medical help if bleeding is heavy, spurting, or won't stop."},
	{"burn", []string{"burn", "scald"},
		"1) Cool the burned area under cool running water for at least 10 minutes.\n" +
			"2) Remove tight items like rings or watches before swelling starts.\n" +
			"3) Cover the burn loosely with a sterile, non-fluffy dressing.\n" +
			"4) Avoid ointments or ice and seek medical care for large or deep burns."},
	{"choking", []string{"chok", "airway", "can't breathe", "cant breathe"},
		"1) Ask the person to cough forcefully; don't slap their back while coughing.\n" +
			"2) If coughing stops, deliver 5 back blows between the shoulder blades.\n" +
			"3) Follow with 5 abdominal thrusts (Heimlich) until the object clears.\n" +
			"4) Call emergency services immediately if the airway stays blocked or the victim becomes unresponsive."},
	{"allergic reaction", []string{"allerg", "anaphyl"},
		"1) Ask if the person has an epinephrine auto-injector and help them use it.\n" +
			"2) Call emergency services right away.\n" +
			"3) Lay the person flat with legs raised unless they're having trouble breathing.\n" +
			"4) If trained, begin CPR if they stop breathing or lose pulse."},
	{"sprain", []string{"sprain", "strain", "ankle", "twist"},
		"1) Rest the injured joint and avoid putting weight on it.\n" +
			"2) Apply a cold pack wrapped in cloth for 15-20 minutes every hour.\n" +
			"3) Compress with an elastic bandage that's snug but not tight.\n" +
			"4) Elevate above heart level and seek care if you can't bear weight or suspect a fracture."},
	{"fracture", []string{"fracture", "broken bone"},
		"1) Immobilize the injured area in the position found; don't realign the limb.\n" +
			"2) Apply cold packs wrapped in cloth to reduce swelling.\n" +
			"3) Keep the person still and calm while you wait for help.\n" +
			"4) Call emergency services or get medical help immediately."},
	{"fainting", []string{"faint", "dizz", "lightheaded", "vertigo"},
		"1) Help the person sit or lie down in a safe place right away.\n" +
			"2) Loosen tight clothing and encourage slow, deep breaths.\n" +
			"3) Offer sips of water if they're fully awake and not nauseated.\n" +
			"4) Seek medical advice if dizziness is severe, lasts more than a few minutes, or follows a head injury."},
	{"headache", []string{"headache", "migraine"},
		"1) Move to a quiet, dim environment and rest.\n" +
			"2) Drink water to stay hydrated.\n" +
			"3) Use a cold compress on the forehead or neck for short periods.\n" +
			"4) Seek urgent care if the headache is sudden and severe, follows injury, or includes vision or speech changes."},
	{"poisoning", []string{"poison", "overdose", "toxic"},
		"1) Do not induce vomiting unless told to by a professional.\n" +
			"2) If safely possible, identify what was taken and how much.\n" +
			"3) Keep the person still and monitor their breathing.\n" +
			"4) Contact poison control or emergency services immediately."},
}

const genericFallbackSteps = "1) Move to a safe, comfortable position and stay calm.\n" +
	"2) Check for bleeding, breathing difficulties, or other urgent symptoms.\n" +
	"3) Use cool compresses, rest, or hydration as appropriate for comfort.\n" +
	"4) Contact a healthcare professional or emergency services if symptoms worsen or you are unsure."

// FallbackSteps returns rule-based guidance: the category hint is honored
// first, then the query is scanned for scenario triggers, then the generic
// steps apply.
func FallbackSteps(query, categoryHint string) string {
	for _, s := range fallbackScenarios {
		if s.category == categoryHint {
			return s.steps
		}
	}
	lowered := strings.ToLower(query)
	for _, s := range fallbackScenarios {
		for _, trigger := range s.triggers {
			if strings.Contains(lowered, trigger) {
				return s.steps
			}
		}
	}
	return genericFallbackSteps
}
