package chat

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Member struct {
	ID       uuid.UUID `json:"id" db:"id"`
	RoomID   uuid.UUID `json:"room_id" db:"room_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

type Message struct {
	ID       uuid.UUID `json:"id" db:"id"`
	RoomID   uuid.UUID `json:"room_id" db:"room_id"`
	SenderID uuid.UUID `json:"sender_id" db:"sender_id"`
	Username string    `json:"username,omitempty"`
	Body     string    `json:"body" db:"body"`
	SentAt   time.Time `json:"sent_at" db:"sent_at"`
}

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type PostMessageRequest struct {
	Body string `json:"body" validate:"required"`
}
