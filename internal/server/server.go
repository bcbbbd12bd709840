package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/halalsnap/halalsnap/internal/analysis"
	"github.com/halalsnap/halalsnap/internal/barcode"
	"github.com/halalsnap/halalsnap/internal/handler"
	"github.com/halalsnap/halalsnap/internal/middleware"
	"github.com/halalsnap/halalsnap/internal/quota"
	"github.com/halalsnap/halalsnap/internal/scan"
	"github.com/halalsnap/halalsnap/internal/store"
	ws "github.com/halalsnap/halalsnap/internal/websocket"
)

// scanRateLimit bounds how many scan requests a single client may start per
// minute, independent of the quota ledger.
const (
	scanRateLimit  = 20
	scanRateWindow = time.Minute
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	ledger      *quota.Ledger
	scanH       *handler.ScanHandler
	pantryH     *handler.PantryHandler
	profileH    *handler.ProfileHandler
	placeH      *handler.PlaceHandler
	packH       *handler.PackHandler
	scholarH    *handler.ScholarHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, ai analysis.Client, codes *barcode.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	settingsStore := store.NewSettingsStore(db)
	pantryStore := store.NewPantryStore(db)
	placeStore := store.NewPlaceStore(db)
	packStore := store.NewPackStore(db)

	ledger := quota.Open(settingsStore, logger.With("component", "quota"))
	session := scan.NewSession(ai, codes, ledger, logger.With("component", "scan"))

	return &Server{
		db:          db,
		hub:         hub,
		ledger:      ledger,
		scanH:       handler.NewScanHandler(session, ledger, hub, logger.With("component", "scan_handler")),
		pantryH:     handler.NewPantryHandler(pantryStore, hub, logger.With("component", "pantry")),
		profileH:    handler.NewProfileHandler(ledger, settingsStore, pantryStore, hub, logger.With("component", "profile")),
		placeH:      handler.NewPlaceHandler(placeStore, logger.With("component", "places")),
		packH:       handler.NewPackHandler(packStore, hub, logger.With("component", "packs")),
		scholarH:    handler.NewScholarHandler(ai, logger.With("component", "scholar")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Scan lifecycle — the entry points are rate-limited per client IP.
	mux.HandleFunc("POST /api/scan/image", s.rateLimitedHandler(s.scanH.ScanImage))
	mux.HandleFunc("POST /api/scan/text", s.rateLimitedHandler(s.scanH.ScanText))
	mux.HandleFunc("POST /api/scan/barcode", s.rateLimitedHandler(s.scanH.ScanBarcode))
	mux.HandleFunc("POST /api/scan/logo", s.rateLimitedHandler(s.scanH.ScanLogo))
	mux.HandleFunc("POST /api/scan/abort", s.scanH.Abort)
	mux.HandleFunc("POST /api/scan/again", s.scanH.ScanAgain)
	mux.HandleFunc("GET /api/scan/session", s.scanH.Session)
	mux.HandleFunc("PUT /api/scan/batch", s.scanH.SetBatch)
	mux.HandleFunc("GET /api/scan/batch", s.scanH.Batch)
	mux.HandleFunc("POST /api/scan/batch/complete", s.scanH.CompleteBatch)

	// Pantry
	mux.HandleFunc("GET /api/pantry", s.pantryH.List)
	mux.HandleFunc("POST /api/pantry", s.pantryH.Create)
	mux.HandleFunc("GET /api/pantry/{id}", s.pantryH.Get)
	mux.HandleFunc("DELETE /api/pantry/{id}", s.pantryH.Delete)

	// Profile and quota
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("POST /api/profile/upgrade", s.profileH.Upgrade)
	mux.HandleFunc("PUT /api/profile/kids-mode", s.profileH.SetKidsMode)

	// Travel packs
	mux.HandleFunc("GET /api/packs", s.packH.List)
	mux.HandleFunc("POST /api/packs/{id}/download", s.packH.Download)
	mux.HandleFunc("DELETE /api/packs/{id}/download", s.packH.RemoveDownload)

	// Places directory
	mux.HandleFunc("GET /api/places", s.placeH.List)

	// Scholar Q&A
	mux.HandleFunc("POST /api/scholar", s.rateLimitedHandler(s.scholarH.Ask))

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, scanRateLimit, scanRateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
