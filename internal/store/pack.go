package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/halalsnap/halalsnap/internal/model"
)

type PackStore struct {
	db *sql.DB
}

func NewPackStore(db *sql.DB) *PackStore {
	return &PackStore{db: db}
}

func scanPack(scanner interface{ Scan(...any) error }) (*model.OfflinePack, error) {
	var p model.OfflinePack
	var downloaded int
	var downloadedAt sql.NullTime
	err := scanner.Scan(&p.ID, &p.Country, &p.Body, &p.SizeMB, &downloaded, &downloadedAt)
	if err != nil {
		return nil, err
	}
	p.Downloaded = downloaded != 0
	if downloadedAt.Valid {
		t := downloadedAt.Time
		p.DownloadedAt = &t
	}
	return &p, nil
}

const packCols = `id, country, body, size_mb, downloaded, downloaded_at`

func (s *PackStore) GetByID(id string) (*model.OfflinePack, error) {
	row := s.db.QueryRow(`SELECT `+packCols+` FROM offline_packs WHERE id = ?`, id)
	p, err := scanPack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pack: %w", err)
	}
	return p, nil
}

// List returns packs sorted by country name. A non-empty query restricts the
// result to countries whose name contains it, case-insensitively.
func (s *PackStore) List(query string) ([]model.OfflinePack, error) {
	rows, err := s.db.Query(`SELECT ` + packCols + ` FROM offline_packs ORDER BY country ASC`)
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	defer rows.Close()

	query = strings.ToLower(strings.TrimSpace(query))

	var packs []model.OfflinePack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pack: %w", err)
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Country), query) {
			continue
		}
		packs = append(packs, *p)
	}
	return packs, rows.Err()
}

// SetDownloaded marks a pack downloaded or not. Marking a pack that is
// already in the requested state is harmless.
func (s *PackStore) SetDownloaded(id string, downloaded bool) (*model.OfflinePack, error) {
	var at any
	flag := 0
	if downloaded {
		flag = 1
		at = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`UPDATE offline_packs SET downloaded = ?, downloaded_at = ? WHERE id = ?`,
		flag, at, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set pack downloaded: %w", err)
	}
	return s.GetByID(id)
}
