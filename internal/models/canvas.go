package models

import (
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/grid"
)

// Canvas is a fixed-size pixel grid owned by a single user.
//
// Grid is nil on listing results, which only carry the summary columns.
type Canvas struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Grid      grid.Grid `json:"grid_data,omitempty"`
	IsPublic  bool      `json:"is_public"`
	OwnerID   int       `json:"user_id"`
	OwnerName string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
