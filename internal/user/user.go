package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePlayer Role = "PLAYER"
	RoleScout  Role = "SCOUT"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleScout, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Username       string    `json:"username" db:"username"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Role           Role      `json:"role" db:"role"`
	ImageURL       *string   `json:"image_url" db:"image_url"`
	Bio            *string   `json:"bio" db:"bio"`
	Sport          *string   `json:"sport" db:"sport"`
	Position       *string   `json:"position" db:"position"`
	Premium        bool      `json:"premium" db:"premium"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Summary is the embedded shape other payloads carry instead of a full user.
type Summary struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=32"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Sport     string `json:"sport,omitempty"`
	Position  string `json:"position,omitempty"`
}
