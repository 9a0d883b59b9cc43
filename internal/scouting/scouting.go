package scouting

import (
	"time"

	"github.com/google/uuid"
)

// Report is a scout's written evaluation of a player. Only SCOUT and ADMIN
// roles may create them.
type Report struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ScoutID   uuid.UUID `json:"scout_id" db:"scout_id"`
	PlayerID  uuid.UUID `json:"player_id" db:"player_id"`
	Title     string    `json:"title" db:"title"`
	Summary   string    `json:"summary" db:"summary"`
	Rating    int       `json:"rating" db:"rating"`
	Position  *string   `json:"position" db:"position"`
	ScoutName string    `json:"scout_name,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateReportRequest struct {
	PlayerID string `json:"playerId" validate:"required,uuid"`
	Title    string `json:"title" validate:"required"`
	Summary  string `json:"summary" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=10"`
	Position string `json:"position,omitempty"`
}

type UpdateReportRequest struct {
	Title    string `json:"title,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Rating   int    `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
	Position string `json:"position,omitempty"`
}
