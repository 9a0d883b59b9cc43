package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/user"
	"scoutlineAPI/internal/video"
)

type VideoService struct {
	db    DB
	notif *NotificationService
}

func NewVideoService(db DB, notif *NotificationService) *VideoService {
	return &VideoService{db: db, notif: notif}
}

// CreateVideo registers upload metadata; the file itself already lives in
// external blob storage.
func (s *VideoService) CreateVideo(ctx context.Context, ownerID string, req *video.CreateVideoRequest) (*video.Video, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	v := &video.Video{
		ID:       uuid.New(),
		UserID:   ownerUUID,
		Title:    req.Title,
		VideoURL: req.VideoURL,
	}
	v.Description = req.Description
	if req.ThumbnailURL != "" {
		v.ThumbnailURL = &req.ThumbnailURL
	}
	if req.Sport != "" {
		v.Sport = &req.Sport
	}

	query := `
	INSERT INTO videos (id, user_id, title, description, video_url, thumbnail_url, sport)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at
	`

	err = s.db.QueryRow(ctx, query,
		v.ID, v.UserID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.Sport,
	).Scan(&v.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	return v, nil
}

func (s *VideoService) GetVideo(ctx context.Context, id string) (*video.Video, error) {
	videoUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid video id")
	}

	query := `
	SELECT v.id, v.user_id, v.title, v.description, v.video_url, v.thumbnail_url, v.sport, v.created_at,
	       u.username,
	       COALESCE(AVG(r.value), 0) AS avg_rating,
	       COUNT(r.id) AS rating_count
	FROM videos v
	JOIN users u ON u.id = v.user_id
	LEFT JOIN ratings r ON r.video_id = v.id
	WHERE v.id = $1
	GROUP BY v.id, u.username
	`

	v := &video.Video{}
	err = s.db.QueryRow(ctx, query, videoUUID).Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL, &v.Sport, &v.CreatedAt,
		&v.Username, &v.AvgRating, &v.RatingCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("video not found")
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return v, nil
}

// ListFeed returns the newest videos, optionally filtered to one user.
func (s *VideoService) ListFeed(ctx context.Context, userID string, limit, offset int) ([]*video.Video, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var ownerFilter *uuid.UUID
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return nil, apperr.Validationf("invalid user id")
		}
		ownerFilter = &parsed
	}

	query := `
	SELECT v.id, v.user_id, v.title, v.description, v.video_url, v.thumbnail_url, v.sport, v.created_at,
	       u.username,
	       COALESCE(AVG(r.value), 0) AS avg_rating,
	       COUNT(r.id) AS rating_count
	FROM videos v
	JOIN users u ON u.id = v.user_id
	LEFT JOIN ratings r ON r.video_id = v.id
	WHERE $1::uuid IS NULL OR v.user_id = $1
	GROUP BY v.id, u.username
	ORDER BY v.created_at DESC
	LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Query(ctx, query, ownerFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []*video.Video
	for rows.Next() {
		v := &video.Video{}
		err := rows.Scan(
			&v.ID, &v.UserID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL, &v.Sport, &v.CreatedAt,
			&v.Username, &v.AvgRating, &v.RatingCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if videos == nil {
		videos = []*video.Video{}
	}
	return videos, nil
}

// DeleteVideo removes one video; the owner or an admin only.
func (s *VideoService) DeleteVideo(ctx context.Context, id, requesterID, requesterRole string) error {
	videoUUID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid video id")
	}

	var ownerID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT user_id FROM videos WHERE id = $1`, videoUUID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("video not found")
		}
		return fmt.Errorf("failed to get video: %w", err)
	}

	if ownerID.String() != requesterID && requesterRole != string(user.RoleAdmin) {
		return apperr.Conflictf("only the owner or an admin may delete a video")
	}

	_, err = s.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, videoUUID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

func (s *VideoService) AddComment(ctx context.Context, videoID, authorID string, req *video.CreateCommentRequest) (*video.Comment, error) {
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return nil, apperr.Validationf("invalid video id")
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	c := &video.Comment{
		ID:      uuid.New(),
		VideoID: videoUUID,
		UserID:  authorUUID,
		Body:    req.Body,
	}

	query := `
	INSERT INTO comments (id, video_id, user_id, body)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`

	err = s.db.QueryRow(ctx, query, c.ID, c.VideoID, c.UserID, c.Body).Scan(&c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("video or user not found")
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if s.notif != nil {
		var ownerID uuid.UUID
		if err := s.db.QueryRow(ctx, `SELECT user_id FROM videos WHERE id = $1`, videoUUID).Scan(&ownerID); err == nil && ownerID != authorUUID {
			if err := s.notif.Notify(ctx, ownerID, "new_comment", "New comment", "Someone commented on your video"); err != nil {
				log.Printf("failed to send comment notification: %v", err)
			}
		}
	}

	return c, nil
}

func (s *VideoService) ListComments(ctx context.Context, videoID string, limit int) ([]*video.Comment, error) {
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return nil, apperr.Validationf("invalid video id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
	SELECT c.id, c.video_id, c.user_id, u.username, c.body, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.user_id
	WHERE c.video_id = $1
	ORDER BY c.created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, videoUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*video.Comment
	for rows.Next() {
		c := &video.Comment{}
		if err := rows.Scan(&c.ID, &c.VideoID, &c.UserID, &c.Username, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if comments == nil {
		comments = []*video.Comment{}
	}
	return comments, nil
}

func (s *VideoService) DeleteComment(ctx context.Context, commentID, requesterID, requesterRole string) error {
	commentUUID, err := uuid.Parse(commentID)
	if err != nil {
		return apperr.Validationf("invalid comment id")
	}

	var authorID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT user_id FROM comments WHERE id = $1`, commentUUID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("comment not found")
		}
		return fmt.Errorf("failed to get comment: %w", err)
	}

	if authorID.String() != requesterID && requesterRole != string(user.RoleAdmin) {
		return apperr.Conflictf("only the author or an admin may delete a comment")
	}

	_, err = s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentUUID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// RateVideo upserts the caller's rating; re-rating replaces the old value.
func (s *VideoService) RateVideo(ctx context.Context, videoID, raterID string, req *video.RateVideoRequest) (*video.Rating, error) {
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return nil, apperr.Validationf("invalid video id")
	}
	raterUUID, err := uuid.Parse(raterID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	r := &video.Rating{
		ID:      uuid.New(),
		VideoID: videoUUID,
		UserID:  raterUUID,
		Value:   req.Value,
	}

	query := `
	INSERT INTO ratings (id, video_id, user_id, value)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (video_id, user_id)
	DO UPDATE SET value = EXCLUDED.value
	RETURNING id, created_at
	`

	err = s.db.QueryRow(ctx, query, r.ID, r.VideoID, r.UserID, r.Value).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("video or user not found")
		}
		return nil, fmt.Errorf("failed to rate video: %w", err)
	}

	return r, nil
}
