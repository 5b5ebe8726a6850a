package conversation

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/firstaidguide/firstaid-api/internal/triage"
	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

// HealthInfo reports which collaborators are configured, for the detailed
// health endpoint. Presence only, never secrets.
type HealthInfo struct {
	Env               string `json:"env"`
	HasBedrock        bool   `json:"has_bedrock"`
	HasGemini         bool   `json:"has_gemini"`
	HasRedis          bool   `json:"has_redis"`
	KnowledgePassages int    `json:"knowledge_passages"`
	GuardrailsTopics  int    `json:"guardrails_topics"`
}

// Handler wires HTTP requests to the triage pipeline.
type Handler struct {
	pipeline *Pipeline
	health   HealthInfo
	logger   *logging.Logger
}

func NewHandler(pipeline *Pipeline, health HealthInfo, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{pipeline: pipeline, health: health, logger: logger}
}

// Chat handles POST /api/chat: one message, no history.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.pipeline.Handle(r.Context(), nil, req.Message, "")
	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":     result.Error == "",
		"result": result,
	})
}

// ChatContinue handles POST /api/chat/continue: the caller supplies the full
// conversation, the pipeline runs on the latest user turn, and the composed
// assistant reply is appended to the returned message list.
func (h *Handler) ChatContinue(w http.ResponseWriter, r *http.Request) {
	var req ChatContinueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat continue request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	latest, history, ok := splitLatestUserTurn(req.Messages)
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"ok":    false,
			"error": "No user message provided",
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result := h.pipeline.Handle(r.Context(), history, latest, sessionID)

	messages := append(req.Messages, triage.Turn{
		Role:    triage.RoleAssistant,
		Content: result.Message,
	})
	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":         result.Error == "",
		"session_id": sessionID,
		"messages":   messages,
		"result":     result,
	})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HealthDetails handles GET /api/health/details.
func (h *Handler) HealthDetails(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"config": h.health,
	})
}

// splitLatestUserTurn finds the last user turn and returns everything before
// it as history.
func splitLatestUserTurn(messages []triage.Turn) (string, []triage.Turn, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == triage.RoleUser {
			return messages[i].Content, messages[:i], true
		}
	}
	return "", nil, false
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
