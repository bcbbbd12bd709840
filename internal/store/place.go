package store

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/halalsnap/halalsnap/internal/model"
	"github.com/halalsnap/halalsnap/internal/places"
)

type PlaceStore struct {
	db *sql.DB
}

func NewPlaceStore(db *sql.DB) *PlaceStore {
	return &PlaceStore{db: db}
}

func scanPlace(scanner interface{ Scan(...any) error }) (*model.Place, error) {
	var p model.Place
	var isOpen int
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Type, &p.Subtype, &p.Rating, &p.Reviews,
		&p.Address, &p.Lat, &p.Lng, &isOpen, &p.Certification, &p.PriceRange,
	)
	if err != nil {
		return nil, err
	}
	p.IsOpen = isOpen != 0
	return &p, nil
}

const placeCols = `id, name, type, subtype, rating, reviews, address, lat, lng, is_open, certification, price_range`

// List returns places, optionally restricted to one type. An empty type
// returns everything.
func (s *PlaceStore) List(placeType model.PlaceType) ([]model.Place, error) {
	query := `SELECT ` + placeCols + ` FROM places`
	var args []any
	if placeType != "" {
		query += ` WHERE type = ?`
		args = append(args, placeType)
	}
	query += ` ORDER BY rating DESC, name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	var result []model.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// Nearby returns places within radiusKm of the given point, closest first,
// with DistanceKm populated. The directory is small, so distance is computed
// in Go rather than pushed into SQL.
func (s *PlaceStore) Nearby(lat, lng, radiusKm float64, placeType model.PlaceType) ([]model.Place, error) {
	all, err := s.List(placeType)
	if err != nil {
		return nil, err
	}

	var result []model.Place
	for _, p := range all {
		d := places.Distance(lat, lng, p.Lat, p.Lng)
		if d <= radiusKm {
			p.DistanceKm = d
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})
	return result, nil
}
