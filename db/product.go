package db

import "time"

// Product is a locally cached catalog entry.
type Product struct {
	ID       string  `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"index" json:"name"` // Indexed for local search
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	IsActive bool    `json:"is_active"`
	Data     string  `json:"data"`
	SyncedAt time.Time
}
