package model

import "time"

// OfflinePack is a downloadable country database for travel mode. Each pack
// carries the local certification body whose listings it mirrors.
type OfflinePack struct {
	ID           string     `json:"id"`
	Country      string     `json:"country"`
	Body         string     `json:"body"`
	SizeMB       int        `json:"size_mb"`
	Downloaded   bool       `json:"downloaded"`
	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`
}
