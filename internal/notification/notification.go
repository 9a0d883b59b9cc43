package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewFollower        Type = "new_follower"
	TypeNewComment         Type = "new_comment"
	TypeChallengeCompleted Type = "challenge_completed"
)

type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Type      Type      `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Token    string    `json:"token" db:"token"`
	Platform string    `json:"platform" db:"platform"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform,omitempty"`
}
