package store

import (
	"database/sql"
	"testing"

	"github.com/halalsnap/halalsnap/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettingsUpsert(t *testing.T) {
	s := NewSettingsStore(openTestDB(t))

	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("theme", "light"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	got, err := s.Get("theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "light" {
		t.Errorf("theme = %q, want %q", got, "light")
	}
}

func TestSettingsGetMissing(t *testing.T) {
	s := NewSettingsStore(openTestDB(t))

	if _, err := s.Get("nope"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestSettingsSeededDefaults(t *testing.T) {
	s := NewSettingsStore(openTestDB(t))

	all, err := s.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all[KeyQuotaTier] != "BASIC" {
		t.Errorf("quota_tier = %q, want BASIC", all[KeyQuotaTier])
	}
	if all[KeyQuotaScansRemaining] != "10" {
		t.Errorf("quota_scans_remaining = %q, want 10", all[KeyQuotaScansRemaining])
	}
	if all[KeyKidsMode] != "false" {
		t.Errorf("kids_mode = %q, want false", all[KeyKidsMode])
	}
}
