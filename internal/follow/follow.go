package follow

import (
	"time"

	"github.com/google/uuid"
)

type Follow struct {
	ID         uuid.UUID `json:"id" db:"id"`
	FollowerID uuid.UUID `json:"follower_id" db:"follower_id"`
	FollowedID uuid.UUID `json:"followed_id" db:"followed_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type FollowRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}
