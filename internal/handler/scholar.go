package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/halalsnap/halalsnap/internal/analysis"
)

// scholarUnavailable is the canned reply when the gateway is down; the Q&A
// surface never returns a transport error to the client.
const scholarUnavailable = "Sorry, I am having trouble connecting to the scholar network at the moment."

type ScholarHandler struct {
	ai     analysis.Client
	logger *slog.Logger
}

func NewScholarHandler(ai analysis.Client, logger *slog.Logger) *ScholarHandler {
	return &ScholarHandler{ai: ai, logger: logger}
}

func (h *ScholarHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.ai.AskScholar(r.Context(), req.Question, req.Context)
	if err != nil {
		h.logger.Warn("scholar gateway", "error", err)
		answer = scholarUnavailable
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
