package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/halalsnap/halalsnap/internal/quota"
	"github.com/halalsnap/halalsnap/internal/store"
	"github.com/halalsnap/halalsnap/internal/websocket"
)

type ProfileHandler struct {
	ledger   *quota.Ledger
	settings *store.SettingsStore
	pantry   *store.PantryStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewProfileHandler(ledger *quota.Ledger, settings *store.SettingsStore, pantry *store.PantryStore, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{ledger: ledger, settings: settings, pantry: pantry, hub: hub, logger: logger}
}

type profileResponse struct {
	Tier           quota.Tier `json:"tier"`
	ScansRemaining int        `json:"scans_remaining"`
	KidsMode       bool       `json:"kids_mode"`
	PantryCount    int        `json:"pantry_count"`
}

func (h *ProfileHandler) profile() (profileResponse, error) {
	state := h.ledger.Snapshot()

	kidsMode := false
	if v, err := h.settings.Get(store.KeyKidsMode); err == nil {
		kidsMode, _ = strconv.ParseBool(v)
	}

	count, err := h.pantry.Count()
	if err != nil {
		return profileResponse{}, err
	}

	return profileResponse{
		Tier:           state.Tier,
		ScansRemaining: state.ScansRemaining,
		KidsMode:       kidsMode,
		PantryCount:    count,
	}, nil
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.profile()
	if err != nil {
		h.logger.Error("building profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Upgrade(); err != nil {
		h.logger.Error("upgrading tier", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upgrade")
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("quota", "upgraded", "", map[string]any{
			"tier": string(quota.TierUnlimited),
		}))
	}

	resp, err := h.profile()
	if err != nil {
		h.logger.Error("building profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) SetKidsMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.settings.Set(store.KeyKidsMode, strconv.FormatBool(req.Enabled)); err != nil {
		h.logger.Error("saving kids mode", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"kids_mode": req.Enabled})
}
