package triage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sehatnabha/telecare/internal/observability/metrics"
	"github.com/sehatnabha/telecare/pkg/logging"
)

// Handler exposes the symptom checker over HTTP.
type Handler struct {
	engine  *Engine
	metrics *metrics.TriageMetrics
	logger  *logging.Logger
}

// NewHandler creates a new triage handler.
func NewHandler(engine *Engine, m *metrics.TriageMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if engine == nil {
		panic("triage: engine cannot be nil")
	}
	return &Handler{engine: engine, metrics: m, logger: logger}
}

// CheckSymptomsRequest is the body for POST /api/chatbot/check-symptoms.
type CheckSymptomsRequest struct {
	Symptoms []string `json:"symptoms"`
	Language string   `json:"language"`
}

// CheckSymptoms handles POST /api/chatbot/check-symptoms.
func (h *Handler) CheckSymptoms(w http.ResponseWriter, r *http.Request) {
	var req CheckSymptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Symptoms array is required"}`, http.StatusBadRequest)
		return
	}

	lang := ParseLanguage(req.Language)
	result, err := h.engine.Analyze(r.Context(), req.Symptoms, lang)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, `{"error": "Symptoms array is required"}`, http.StatusBadRequest)
			return
		}
		h.logger.Error("symptom analysis failed", "error", err)
		http.Error(w, `{"error": "Failed to analyze symptoms"}`, http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveCheck(string(result.Language), string(result.OverallUrgency))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode triage result", "error", err)
	}
}

// LanguageInfo describes one supported chatbot language.
type LanguageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

// Languages handles GET /api/chatbot/languages.
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	response := map[string][]LanguageInfo{
		"languages": {
			{Code: "en", Name: "English", NativeName: "English"},
			{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// Symptoms handles GET /api/chatbot/symptoms.
func (h *Handler) Symptoms(w http.ResponseWriter, r *http.Request) {
	lang := ParseLanguage(r.URL.Query().Get("language"))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"symptoms": CommonSymptoms(lang)})
}
