package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/notification"
)

// PushProvider delivers notifications to devices. FCM in production, nil or
// a fake in tests.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

type NotificationService struct {
	db   DB
	push PushProvider
}

func NewNotificationService(db DB) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider injects the push backend after construction; push stays
// disabled when it is never called.
func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.push = p
}

// Notify persists a notification row and best-effort pushes it to the
// user's devices.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, title, body string) error {
	n := &notification.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
	}

	query := `
	INSERT INTO notifications (id, user_id, type, title, body)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`

	err := s.db.QueryRow(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Body).Scan(&n.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFoundf("user not found")
		}
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.push != nil {
		tokens, err := s.deviceTokens(ctx, userID)
		if err != nil {
			log.Printf("failed to load device tokens for %s: %v", userID, err)
			return nil
		}
		if err := s.push.SendPush(ctx, tokens, title, body, map[string]string{"type": string(typ)}); err != nil {
			log.Printf("push delivery failed for %s: %v", userID, err)
		}
	}
	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, token, platform, added_at FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.AddedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}

	query := `
	SELECT id, user_id, type, title, body, read, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var items []*notification.Notification
	for rows.Next() {
		n := &notification.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, n)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []*notification.Notification{}
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return 0, apperr.Validationf("invalid user id")
	}

	var count int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userUUID).Scan(&count)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}
	notifUUID, err := uuid.Parse(notificationID)
	if err != nil {
		return apperr.Validationf("invalid notification id")
	}

	result, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, notifUUID, userUUID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}

	_, err = s.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userUUID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// RegisterDevice upserts a device token for push delivery.
func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}

	query := `
	INSERT INTO device_tokens (id, user_id, token, platform)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform
	`

	_, err = s.db.Exec(ctx, query, uuid.New(), userUUID, req.Token, req.Platform)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFoundf("user not found")
		}
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
