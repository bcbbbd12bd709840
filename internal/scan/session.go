// Package scan drives the capture-to-verdict lifecycle. A Session owns the
// state machine between the quota ledger, the gateways, and the verdict
// normalizer; handlers never talk to a gateway directly.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/halalsnap/halalsnap/internal/analysis"
	"github.com/halalsnap/halalsnap/internal/barcode"
	"github.com/halalsnap/halalsnap/internal/quota"
	"github.com/halalsnap/halalsnap/internal/verdict"
)

// State represents the session lifecycle state.
type State string

const (
	StateIdle      State = "IDLE"
	StateCapturing State = "CAPTURING"
	StateAnalyzing State = "ANALYZING"
	StateResolved  State = "RESOLVED"
)

// Mode selects which gateway an analysis dispatches to.
type Mode string

const (
	ModePhoto   Mode = "photo"
	ModeGallery Mode = "gallery"
	ModeVoice   Mode = "voice"
	ModeText    Mode = "text"
	ModeBarcode Mode = "barcode"
	ModeLogo    Mode = "logo"
)

// ValidMode reports whether m is a recognized capture mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModePhoto, ModeGallery, ModeVoice, ModeText, ModeBarcode, ModeLogo:
		return true
	}
	return false
}

var (
	// ErrBusy means an analysis is already in flight.
	ErrBusy = errors.New("scan: analysis in progress")
	// ErrQuotaExceeded means the ledger rejected the attempt before any
	// gateway call was made.
	ErrQuotaExceeded = errors.New("scan: scan quota exceeded")
	// ErrAborted means the session was aborted while the gateway call was in
	// flight; the result was discarded and no quota consumed.
	ErrAborted = errors.New("scan: session aborted")
	// ErrInvalidState means the operation is not legal in the current state.
	ErrInvalidState = errors.New("scan: invalid session state")
)

// Input carries the capture payload for one analysis. Exactly one field is
// meaningful for a given mode.
type Input struct {
	Image   []byte
	Text    string
	Barcode string
}

// Lookup is the barcode gateway surface the session depends on.
type Lookup interface {
	Lookup(ctx context.Context, code string) (verdict.Record, error)
}

// Status is a read-only snapshot of the session.
type Status struct {
	State     State           `json:"state"`
	Mode      Mode            `json:"mode,omitempty"`
	Batch     bool            `json:"batch"`
	BatchSize int             `json:"batch_size"`
	Result    *verdict.Record `json:"result,omitempty"`
}

// Session is the scan lifecycle controller. At most one gateway call is in
// flight at a time; the mutex is released around the call so Abort and
// Status stay responsive, and a generation counter discards results that
// arrive after an abort.
type Session struct {
	ai     analysis.Client
	codes  Lookup
	ledger *quota.Ledger
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	mode       Mode
	batch      bool
	batchItems []verdict.Record
	result     *verdict.Record
	generation uint64
}

// NewSession creates an idle session.
func NewSession(ai analysis.Client, codes Lookup, ledger *quota.Ledger, logger *slog.Logger) *Session {
	return &Session{
		ai:     ai,
		codes:  codes,
		ledger: ledger,
		logger: logger,
		state:  StateIdle,
	}
}

// Status returns the current session snapshot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:     s.state,
		Mode:      s.mode,
		Batch:     s.batch,
		BatchSize: len(s.batchItems),
		Result:    s.result,
	}
}

// Begin opens a capture for the given mode. The quota is checked here, before
// any gateway traffic; an exhausted ledger leaves the session untouched.
func (s *Session) Begin(mode Mode) error {
	if !ValidMode(mode) {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidState, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAnalyzing {
		return ErrBusy
	}
	if !s.ledger.CanScan() {
		return ErrQuotaExceeded
	}

	s.state = StateCapturing
	s.mode = mode
	s.result = nil
	return nil
}

// Analyze dispatches exactly one gateway call for the session's mode and
// resolves the verdict. Gateway failures surface as fallback verdicts, not
// errors; the only error paths are lifecycle ones (busy, aborted, barcode
// not-found). Quota is consumed once per verdict that is actually delivered.
func (s *Session) Analyze(ctx context.Context, input Input) (verdict.Record, error) {
	s.mu.Lock()
	if s.state == StateAnalyzing {
		s.mu.Unlock()
		return verdict.Record{}, ErrBusy
	}
	if s.state != StateCapturing {
		s.mu.Unlock()
		return verdict.Record{}, fmt.Errorf("%w: analyze from %s", ErrInvalidState, s.state)
	}
	s.state = StateAnalyzing
	mode := s.mode
	gen := s.generation
	s.mu.Unlock()

	rec, err := s.dispatch(ctx, mode, input)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// Aborted while the call was in flight. The session has already
		// moved on; drop the result without touching quota.
		s.logger.Info("discarding stale analysis result", "mode", mode)
		return verdict.Record{}, ErrAborted
	}

	if errors.Is(err, barcode.ErrNotFound) {
		// Not a verdict: let the caller retry with another mode.
		s.state = StateCapturing
		return verdict.Record{}, err
	}

	if err := s.ledger.Consume(); err != nil {
		s.logger.Error("consuming scan quota", "error", err)
	}

	if s.batch {
		s.batchItems = append(s.batchItems, rec)
		s.state = StateCapturing
		return rec, nil
	}

	s.result = &rec
	s.state = StateResolved
	return rec, nil
}

// dispatch runs without the session lock held.
func (s *Session) dispatch(ctx context.Context, mode Mode, input Input) (verdict.Record, error) {
	switch mode {
	case ModeBarcode:
		rec, err := s.codes.Lookup(ctx, input.Barcode)
		if errors.Is(err, barcode.ErrNotFound) {
			return verdict.Record{}, err
		}
		if err != nil {
			return verdict.Normalize(nil, err), nil
		}
		return rec, nil
	case ModeVoice, ModeText:
		raw, err := s.ai.AnalyzeText(ctx, input.Text)
		return verdict.Normalize(raw, err), nil
	case ModeLogo:
		raw, err := s.ai.VerifyLogo(ctx, input.Image)
		return verdict.Normalize(raw, err), nil
	default:
		raw, err := s.ai.AnalyzeImage(ctx, input.Image)
		return verdict.Normalize(raw, err), nil
	}
}

// Abort cancels the session and returns to IDLE. An in-flight gateway call is
// not interrupted, but its result is discarded when it lands. Batch items
// already captured are kept.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateIdle
	s.result = nil
}

// ScanAgain discards the resolved verdict and returns to IDLE. Persisting a
// verdict into the pantry is a separate, explicit operation.
func (s *Session) ScanAgain() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAnalyzing {
		return ErrBusy
	}
	s.state = StateIdle
	s.result = nil
	return nil
}

// SetBatch toggles batch mode. In batch mode each analysis appends its
// verdict and reopens capture instead of resolving the session.
func (s *Session) SetBatch(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAnalyzing {
		return ErrBusy
	}
	s.batch = on
	return nil
}

// BatchItems returns the verdicts captured so far, in capture order.
func (s *Session) BatchItems() []verdict.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]verdict.Record(nil), s.batchItems...)
}

// CompleteBatch drains the captured verdicts, exits batch mode and returns
// the session to IDLE.
func (s *Session) CompleteBatch() ([]verdict.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAnalyzing {
		return nil, ErrBusy
	}
	items := s.batchItems
	s.batchItems = nil
	s.batch = false
	s.state = StateIdle
	s.result = nil
	return items, nil
}
