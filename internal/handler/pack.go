package handler

import (
	"log/slog"
	"net/http"

	"github.com/halalsnap/halalsnap/internal/store"
	"github.com/halalsnap/halalsnap/internal/websocket"
)

type PackHandler struct {
	store  *store.PackStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPackHandler(s *store.PackStore, hub *websocket.Hub, logger *slog.Logger) *PackHandler {
	return &PackHandler{store: s, hub: hub, logger: logger}
}

func (h *PackHandler) List(w http.ResponseWriter, r *http.Request) {
	packs, err := h.store.List(r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("listing packs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list packs")
		return
	}
	writeJSON(w, http.StatusOK, packs)
}

func (h *PackHandler) setDownloaded(w http.ResponseWriter, r *http.Request, downloaded bool) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("getting pack", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get pack")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "pack not found")
		return
	}

	pack, err := h.store.SetDownloaded(id, downloaded)
	if err != nil {
		h.logger.Error("updating pack", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update pack")
		return
	}

	action := "downloaded"
	if !downloaded {
		action = "removed"
	}
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("pack", action, id, nil))
	}
	writeJSON(w, http.StatusOK, pack)
}

func (h *PackHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.setDownloaded(w, r, true)
}

func (h *PackHandler) RemoveDownload(w http.ResponseWriter, r *http.Request) {
	h.setDownloaded(w, r, false)
}
