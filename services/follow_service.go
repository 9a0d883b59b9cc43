package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/user"
)

type FollowService struct {
	db    DB
	notif *NotificationService
}

func NewFollowService(db DB, notif *NotificationService) *FollowService {
	return &FollowService{db: db, notif: notif}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followedID string) error {
	followerUUID, err := uuid.Parse(followerID)
	if err != nil {
		return apperr.Validationf("invalid follower id")
	}
	followedUUID, err := uuid.Parse(followedID)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}
	if followerUUID == followedUUID {
		return apperr.Validationf("cannot follow yourself")
	}

	query := `
	INSERT INTO follows (id, follower_id, followed_id)
	VALUES ($1, $2, $3)
	`

	_, err = s.db.Exec(ctx, query, uuid.New(), followerUUID, followedUUID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflictf("already following this user")
		}
		if isForeignKeyViolation(err) {
			return apperr.NotFoundf("user not found")
		}
		return fmt.Errorf("failed to follow user: %w", err)
	}

	if s.notif != nil {
		if err := s.notif.Notify(ctx, followedUUID, "new_follower", "New follower", "Someone started following you"); err != nil {
			log.Printf("failed to send follower notification: %v", err)
		}
	}
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID string) error {
	followerUUID, err := uuid.Parse(followerID)
	if err != nil {
		return apperr.Validationf("invalid follower id")
	}
	followedUUID, err := uuid.Parse(followedID)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`, followerUUID, followedUUID)
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("not following this user")
	}
	return nil
}

func (s *FollowService) ListFollowers(ctx context.Context, userID string) ([]*user.Summary, error) {
	return s.listEdge(ctx, userID, `
	SELECT u.id, u.username, u.email
	FROM users u
	JOIN follows f ON f.follower_id = u.id
	WHERE f.followed_id = $1
	ORDER BY f.created_at DESC
	`)
}

func (s *FollowService) ListFollowing(ctx context.Context, userID string) ([]*user.Summary, error) {
	return s.listEdge(ctx, userID, `
	SELECT u.id, u.username, u.email
	FROM users u
	JOIN follows f ON f.followed_id = u.id
	WHERE f.follower_id = $1
	ORDER BY f.created_at DESC
	`)
}

func (s *FollowService) listEdge(ctx context.Context, userID, query string) ([]*user.Summary, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	rows, err := s.db.Query(ctx, query, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	var users []*user.Summary
	for rows.Next() {
		u := &user.Summary{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if users == nil {
		users = []*user.Summary{}
	}
	return users, nil
}
