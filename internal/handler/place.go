package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/halalsnap/halalsnap/internal/model"
	"github.com/halalsnap/halalsnap/internal/store"
)

// defaultRadiusKm bounds nearby queries that omit an explicit radius.
const defaultRadiusKm = 10.0

type PlaceHandler struct {
	store  *store.PlaceStore
	logger *slog.Logger
}

func NewPlaceHandler(s *store.PlaceStore, logger *slog.Logger) *PlaceHandler {
	return &PlaceHandler{store: s, logger: logger}
}

// List serves the places directory. With lat and lng present it becomes a
// nearby query ordered by distance; otherwise the full directory by rating.
func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var placeType model.PlaceType
	switch t := model.PlaceType(q.Get("type")); t {
	case model.PlaceRestaurant, model.PlaceStore, model.PlaceMosque:
		placeType = t
	case "":
	default:
		writeError(w, http.StatusBadRequest, "type must be RESTAURANT, STORE or MOSQUE")
		return
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		places, err := h.store.List(placeType)
		if err != nil {
			h.logger.Error("listing places", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list places")
			return
		}
		writeJSON(w, http.StatusOK, places)
		return
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng must both be decimal degrees")
		return
	}

	radius := defaultRadiusKm
	if s := q.Get("radius_km"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "radius_km must be a positive number")
			return
		}
		radius = parsed
	}

	places, err := h.store.Nearby(lat, lng, radius, placeType)
	if err != nil {
		h.logger.Error("nearby places", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list places")
		return
	}
	writeJSON(w, http.StatusOK, places)
}
