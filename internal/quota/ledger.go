package quota

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/halalsnap/halalsnap/internal/store"
)

// Tier is the subscription level gating scan quota.
type Tier string

const (
	TierBasic     Tier = "BASIC"
	TierUnlimited Tier = "UNLIMITED"
)

// DefaultScans is the allowance seeded for a fresh BASIC installation.
const DefaultScans = 10

// State is a read-only snapshot of the ledger.
type State struct {
	Tier           Tier `json:"tier"`
	ScansRemaining int  `json:"scans_remaining"`
}

// Ledger is the per-installation countdown gating how many analyses a
// non-subscribed user may perform. All mutations persist through the settings
// store before they are visible to callers; the in-memory copy is the source
// of truth between launches.
type Ledger struct {
	mu       sync.Mutex
	settings *store.SettingsStore
	tier     Tier
	scans    int
	logger   *slog.Logger
}

// Open rehydrates the ledger from persisted settings. Missing or unreadable
// values fall back to the BASIC defaults rather than failing startup.
func Open(settings *store.SettingsStore, logger *slog.Logger) *Ledger {
	l := &Ledger{
		settings: settings,
		tier:     TierBasic,
		scans:    DefaultScans,
		logger:   logger,
	}

	if v, err := settings.Get(store.KeyQuotaTier); err == nil {
		if t := Tier(v); t == TierBasic || t == TierUnlimited {
			l.tier = t
		} else {
			logger.Warn("ignoring unrecognized persisted tier", "value", v)
		}
	}
	if v, err := settings.Get(store.KeyQuotaScansRemaining); err == nil {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			l.scans = n
		} else {
			logger.Warn("ignoring unreadable persisted scan count", "value", v)
		}
	}

	return l
}

// CanScan reports whether another analysis may be started.
func (l *Ledger) CanScan() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tier == TierUnlimited || l.scans > 0
}

// Consume decrements the remaining allowance by one, clamped at zero. It is
// a no-op for UNLIMITED. Called exactly once per completed analysis.
func (l *Ledger) Consume() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tier == TierUnlimited {
		return nil
	}
	if l.scans > 0 {
		l.scans--
	}
	if err := l.settings.Set(store.KeyQuotaScansRemaining, strconv.Itoa(l.scans)); err != nil {
		return fmt.Errorf("persist scan count: %w", err)
	}
	return nil
}

// Upgrade switches the installation to UNLIMITED. There is no downgrade path.
func (l *Ledger) Upgrade() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tier == TierUnlimited {
		return nil
	}
	l.tier = TierUnlimited
	if err := l.settings.Set(store.KeyQuotaTier, string(l.tier)); err != nil {
		return fmt.Errorf("persist tier: %w", err)
	}
	l.logger.Info("tier upgraded", "tier", l.tier)
	return nil
}

// Snapshot returns the current tier and remaining allowance.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{Tier: l.tier, ScansRemaining: l.scans}
}
