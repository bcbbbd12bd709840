package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/halalsnap/halalsnap/internal/model"
	"github.com/halalsnap/halalsnap/internal/pantry"
	"github.com/halalsnap/halalsnap/internal/store"
	"github.com/halalsnap/halalsnap/internal/verdict"
	"github.com/halalsnap/halalsnap/internal/websocket"
)

// defaultShelfLife is applied when an entry is added without an expiry date.
const defaultShelfLife = 6 * 30 * 24 * time.Hour

type PantryHandler struct {
	store  *store.PantryStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPantryHandler(s *store.PantryStore, hub *websocket.Hub, logger *slog.Logger) *PantryHandler {
	return &PantryHandler{store: s, hub: hub, logger: logger}
}

func (h *PantryHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// pantryEntryResponse adds the display fields derived at render time.
type pantryEntryResponse struct {
	model.PantryEntry
	CapturedLabel string             `json:"captured_label"`
	ExpiryState   pantry.ExpiryState `json:"expiry_state"`
}

func toResponse(e model.PantryEntry, now time.Time) pantryEntryResponse {
	return pantryEntryResponse{
		PantryEntry:   e,
		CapturedLabel: pantry.RelativeLabel(e.CapturedAt, now),
		ExpiryState:   pantry.ExpiryStatus(e.ExpiryDate, now),
	}
}

func (h *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ParseFilter(r.URL.Query().Get("filter"))
	entries, err := h.store.List(filter)
	if err != nil {
		h.logger.Error("listing pantry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pantry")
		return
	}

	now := time.Now()
	resp := make([]pantryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toResponse(e, now))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PantryHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("getting pantry entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get entry")
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(*e, time.Now()))
}

func (h *PantryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Status     string `json:"status"`
		AddedBy    string `json:"added_by"`
		ExpiryDate string `json:"expiry_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	status := verdict.Status(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be COMPLIANT, QUESTIONABLE or NON_COMPLIANT")
		return
	}
	if req.AddedBy == "" {
		req.AddedBy = "You"
	}

	now := time.Now().UTC()
	expiry := now.Add(defaultShelfLife)
	if req.ExpiryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "expiry_date must be YYYY-MM-DD")
			return
		}
		expiry = parsed
	}

	entry := model.PantryEntry{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Status:     status,
		AddedBy:    req.AddedBy,
		CapturedAt: now,
		ExpiryDate: &expiry,
	}
	if err := h.store.Append(entry); err != nil {
		h.logger.Error("appending pantry entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save entry")
		return
	}

	h.broadcast(websocket.NewMessage("pantry_entry", "created", entry.ID, map[string]any{
		"status": string(entry.Status),
	}))
	writeJSON(w, http.StatusCreated, toResponse(entry, now))
}

func (h *PantryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Remove(id); err != nil {
		h.logger.Error("removing pantry entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove entry")
		return
	}
	h.broadcast(websocket.NewMessage("pantry_entry", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
