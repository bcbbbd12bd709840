package store

import (
	"database/sql"
	"fmt"

	"github.com/halalsnap/halalsnap/internal/model"
	"github.com/halalsnap/halalsnap/internal/verdict"
)

// Filter selects which pantry entries a listing returns.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompliant Filter = "compliant"
	// FilterAttention covers everything a family should review:
	// non-compliant and questionable entries.
	FilterAttention Filter = "attention"
)

// ParseFilter maps a query-string value onto a Filter, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterCompliant:
		return FilterCompliant
	case FilterAttention:
		return FilterAttention
	}
	return FilterAll
}

type PantryStore struct {
	db *sql.DB
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

func scanEntry(scanner interface{ Scan(...any) error }) (*model.PantryEntry, error) {
	var e model.PantryEntry
	var expiry sql.NullTime

	err := scanner.Scan(&e.ID, &e.Name, &e.Status, &e.AddedBy, &e.CapturedAt, &expiry)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		e.ExpiryDate = &t
	}
	return &e, nil
}

const entryCols = `id, name, status, added_by, captured_at, expiry_date`

// Append inserts an entry. Ordering is most-recent-first by insertion, so a
// freshly appended entry is the new head. Only the id must be unique; the
// same product may be captured any number of times.
func (s *PantryStore) Append(e model.PantryEntry) error {
	var expiry any
	if e.ExpiryDate != nil {
		expiry = *e.ExpiryDate
	}
	_, err := s.db.Exec(
		`INSERT INTO pantry_entries (id, name, status, added_by, captured_at, expiry_date) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Status, e.AddedBy, e.CapturedAt, expiry,
	)
	if err != nil {
		return fmt.Errorf("append pantry entry: %w", err)
	}
	return nil
}

// Remove deletes the entry with the given id. Removing an id that is not
// present is a no-op, not an error.
func (s *PantryStore) Remove(id string) error {
	_, err := s.db.Exec(`DELETE FROM pantry_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove pantry entry: %w", err)
	}
	return nil
}

func (s *PantryStore) GetByID(id string) (*model.PantryEntry, error) {
	row := s.db.QueryRow(`SELECT `+entryCols+` FROM pantry_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry entry: %w", err)
	}
	return e, nil
}

// List returns entries matching the filter, most recent first. Filtering
// never disturbs the relative order of the remaining entries.
func (s *PantryStore) List(filter Filter) ([]model.PantryEntry, error) {
	query := `SELECT ` + entryCols + ` FROM pantry_entries`
	var args []any

	switch filter {
	case FilterCompliant:
		query += ` WHERE status = ?`
		args = append(args, verdict.StatusCompliant)
	case FilterAttention:
		query += ` WHERE status IN (?, ?)`
		args = append(args, verdict.StatusNonCompliant, verdict.StatusQuestionable)
	}
	query += ` ORDER BY rowid DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pantry entries: %w", err)
	}
	defer rows.Close()

	var entries []model.PantryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *PantryStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pantry_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pantry entries: %w", err)
	}
	return count, nil
}
