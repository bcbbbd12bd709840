package model

// PlaceType classifies a venue in the directory.
type PlaceType string

const (
	PlaceRestaurant PlaceType = "RESTAURANT"
	PlaceStore      PlaceType = "STORE"
	PlaceMosque     PlaceType = "MOSQUE"
)

// Place is a compliant venue shown on the map.
type Place struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Type          PlaceType `json:"type"`
	Subtype       string    `json:"subtype"`
	Rating        float64   `json:"rating"`
	Reviews       int       `json:"reviews"`
	Address       string    `json:"address"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	IsOpen        bool      `json:"is_open"`
	Certification string    `json:"certification,omitempty"`
	PriceRange    string    `json:"price_range,omitempty"`
	// DistanceKm is filled in by nearby queries, zero otherwise.
	DistanceKm float64 `json:"distance_km,omitempty"`
}
