package model

import (
	"time"

	"github.com/halalsnap/halalsnap/internal/verdict"
)

// PantryEntry is a verdict promoted into persistent history. Identity is
// immutable once created; name and status are copied at capture time and are
// never retroactively updated by later gateway corrections.
type PantryEntry struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Status     verdict.Status `json:"status"`
	AddedBy    string         `json:"added_by"`
	CapturedAt time.Time      `json:"captured_at"`
	ExpiryDate *time.Time     `json:"expiry_date,omitempty"`
}
