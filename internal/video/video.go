package video

import (
	"time"

	"github.com/google/uuid"
)

// Video rows only hold metadata; the file itself lives in external blob
// storage and clients register the URL after uploading.
type Video struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	VideoURL     string    `json:"video_url" db:"video_url"`
	ThumbnailURL *string   `json:"thumbnail_url" db:"thumbnail_url"`
	Sport        *string   `json:"sport" db:"sport"`
	Username     string    `json:"username,omitempty"`
	AvgRating    float64   `json:"avg_rating"`
	RatingCount  int       `json:"rating_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Username  string    `json:"username,omitempty"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Rating struct {
	ID        uuid.UUID `json:"id" db:"id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Value     int       `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateVideoRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	VideoURL     string `json:"videoUrl" validate:"required,url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	Sport        string `json:"sport,omitempty"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}

type RateVideoRequest struct {
	Value int `json:"value" validate:"required,min=1,max=5"`
}
