package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/halalsnap/halalsnap/internal/barcode"
	"github.com/halalsnap/halalsnap/internal/quota"
	"github.com/halalsnap/halalsnap/internal/scan"
	"github.com/halalsnap/halalsnap/internal/websocket"
)

type ScanHandler struct {
	session *scan.Session
	ledger  *quota.Ledger
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewScanHandler(session *scan.Session, ledger *quota.Ledger, hub *websocket.Hub, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{session: session, ledger: ledger, hub: hub, logger: logger}
}

func (h *ScanHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// decodeImage accepts raw base64 or a data URL.
func decodeImage(s string) ([]byte, error) {
	if i := strings.Index(s, ","); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}

// run drives one capture through the session: open, analyze, respond. All
// scan endpoints funnel through here so the error mapping stays in one place.
func (h *ScanHandler) run(w http.ResponseWriter, r *http.Request, mode scan.Mode, input scan.Input) {
	if err := h.session.Begin(mode); err != nil {
		switch {
		case errors.Is(err, scan.ErrQuotaExceeded):
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":   "scan quota exceeded",
				"upgrade": true,
			})
		case errors.Is(err, scan.ErrBusy):
			writeError(w, http.StatusConflict, "analysis in progress")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	rec, err := h.session.Analyze(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, barcode.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found in barcode database")
		case errors.Is(err, scan.ErrAborted):
			writeError(w, http.StatusConflict, "scan aborted")
		case errors.Is(err, scan.ErrBusy):
			writeError(w, http.StatusConflict, "analysis in progress")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.broadcast(websocket.NewMessage("scan", "resolved", "", map[string]any{
		"product_name": rec.ProductName,
		"status":       string(rec.Status),
	}))
	h.broadcast(websocket.NewMessage("quota", "updated", "", map[string]any{
		"scans_remaining": h.ledger.Snapshot().ScansRemaining,
	}))

	writeJSON(w, http.StatusOK, map[string]any{
		"result":  rec,
		"session": h.session.Status(),
		"quota":   h.ledger.Snapshot(),
	})
}

func (h *ScanHandler) ScanImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
		Mode  string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	img, err := decodeImage(req.Image)
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "image must be base64 encoded")
		return
	}
	mode := scan.ModePhoto
	if req.Mode == string(scan.ModeGallery) {
		mode = scan.ModeGallery
	}
	h.run(w, r, mode, scan.Input{Image: img})
}

func (h *ScanHandler) ScanLogo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	img, err := decodeImage(req.Image)
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "image must be base64 encoded")
		return
	}
	h.run(w, r, scan.ModeLogo, scan.Input{Image: img})
}

func (h *ScanHandler) ScanText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	mode := scan.ModeText
	if req.Mode == string(scan.ModeVoice) {
		mode = scan.ModeVoice
	}
	h.run(w, r, mode, scan.Input{Text: req.Text})
}

func (h *ScanHandler) ScanBarcode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Barcode) == "" {
		writeError(w, http.StatusBadRequest, "barcode is required")
		return
	}
	h.run(w, r, scan.ModeBarcode, scan.Input{Barcode: req.Barcode})
}

func (h *ScanHandler) Abort(w http.ResponseWriter, r *http.Request) {
	h.session.Abort()
	h.broadcast(websocket.NewMessage("scan", "aborted", "", nil))
	writeJSON(w, http.StatusOK, h.session.Status())
}

func (h *ScanHandler) ScanAgain(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ScanAgain(); err != nil {
		writeError(w, http.StatusConflict, "analysis in progress")
		return
	}
	writeJSON(w, http.StatusOK, h.session.Status())
}

func (h *ScanHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Status())
}

func (h *ScanHandler) SetBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.session.SetBatch(req.Enabled); err != nil {
		writeError(w, http.StatusConflict, "analysis in progress")
		return
	}
	writeJSON(w, http.StatusOK, h.session.Status())
}

func (h *ScanHandler) Batch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.session.BatchItems()})
}

func (h *ScanHandler) CompleteBatch(w http.ResponseWriter, r *http.Request) {
	items, err := h.session.CompleteBatch()
	if err != nil {
		writeError(w, http.StatusConflict, "analysis in progress")
		return
	}
	h.broadcast(websocket.NewMessage("scan", "batch_completed", "", map[string]any{
		"count": len(items),
	}))
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
