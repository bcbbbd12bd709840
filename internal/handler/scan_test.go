package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/halalsnap/halalsnap/internal/barcode"
	"github.com/halalsnap/halalsnap/internal/database"
	"github.com/halalsnap/halalsnap/internal/quota"
	"github.com/halalsnap/halalsnap/internal/scan"
	"github.com/halalsnap/halalsnap/internal/store"
	"github.com/halalsnap/halalsnap/internal/verdict"
	"github.com/halalsnap/halalsnap/internal/websocket"
)

type stubAI struct {
	payload json.RawMessage
	err     error
}

func (s *stubAI) AnalyzeImage(ctx context.Context, image []byte) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s *stubAI) AnalyzeText(ctx context.Context, text string) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s *stubAI) VerifyLogo(ctx context.Context, image []byte) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s *stubAI) AskScholar(ctx context.Context, question, analysisContext string) (string, error) {
	return "E471 can come from plant or animal fat; look for a certification mark.", s.err
}

type stubLookup struct {
	rec verdict.Record
	err error
}

func (s *stubLookup) Lookup(ctx context.Context, code string) (verdict.Record, error) {
	return s.rec, s.err
}

func newScanHandler(t *testing.T, ai *stubAI, codes *stubLookup) (*ScanHandler, *quota.Ledger) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ledger := quota.Open(store.NewSettingsStore(db), slog.Default())
	if codes == nil {
		codes = &stubLookup{}
	}
	session := scan.NewSession(ai, codes, ledger, slog.Default())
	hub := websocket.NewHub(slog.Default())
	return NewScanHandler(session, ledger, hub, slog.Default()), ledger
}

func imageBody(t *testing.T) string {
	t.Helper()
	img := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	return fmt.Sprintf(`{"image":%q}`, img)
}

func TestScanImageResolves(t *testing.T) {
	ai := &stubAI{payload: json.RawMessage(`{"productName":"Zamzam Water","status":"HALAL","confidenceScore":99,"reason":"ok"}`)}
	h, _ := newScanHandler(t, ai, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scan/image", strings.NewReader(imageBody(t)))
	rec := httptest.NewRecorder()
	h.ScanImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Result verdict.Record `json:"result"`
		Quota  quota.State    `json:"quota"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.ProductName != "Zamzam Water" || resp.Result.Status != verdict.StatusCompliant {
		t.Errorf("result = %+v", resp.Result)
	}
	if resp.Quota.ScansRemaining != quota.DefaultScans-1 {
		t.Errorf("quota = %d, want %d", resp.Quota.ScansRemaining, quota.DefaultScans-1)
	}
}

func TestScanQuotaExhaustedReturns429(t *testing.T) {
	ai := &stubAI{payload: json.RawMessage(`{"status":"HALAL"}`)}
	h, ledger := newScanHandler(t, ai, nil)
	for i := 0; i < quota.DefaultScans; i++ {
		if err := ledger.Consume(); err != nil {
			t.Fatalf("consume: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/scan/image", strings.NewReader(imageBody(t)))
	rec := httptest.NewRecorder()
	h.ScanImage(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["upgrade"] != true {
		t.Errorf("429 payload should carry the upgrade hint, got %v", resp)
	}
}

func TestScanBarcodeNotFoundReturns404(t *testing.T) {
	h, ledger := newScanHandler(t, &stubAI{}, &stubLookup{err: barcode.ErrNotFound})

	req := httptest.NewRequest(http.MethodPost, "/api/scan/barcode", strings.NewReader(`{"barcode":"000"}`))
	rec := httptest.NewRecorder()
	h.ScanBarcode(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := ledger.Snapshot().ScansRemaining; got != quota.DefaultScans {
		t.Errorf("scans = %d, not-found must not consume quota", got)
	}
}

func TestScanTextRequiresText(t *testing.T) {
	h, _ := newScanHandler(t, &stubAI{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scan/text", strings.NewReader(`{"text":"  "}`))
	rec := httptest.NewRecorder()
	h.ScanText(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScanImageRejectsBadBase64(t *testing.T) {
	h, _ := newScanHandler(t, &stubAI{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scan/image", strings.NewReader(`{"image":"not base64!!"}`))
	rec := httptest.NewRecorder()
	h.ScanImage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
