package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/chat"
)

type ChatService struct {
	db DB
}

func NewChatService(db DB) *ChatService {
	return &ChatService{db: db}
}

// CreateRoom makes a room and enrolls the creator as its first member. Both
// writes go in one transaction so a room can never exist without its
// creator inside it.
func (s *ChatService) CreateRoom(ctx context.Context, creatorID string, req *chat.CreateRoomRequest) (*chat.Room, error) {
	creatorUUID, err := uuid.Parse(creatorID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	room := &chat.Room{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedBy: creatorUUID,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO chat_rooms (id, name, created_by) VALUES ($1, $2, $3) RETURNING created_at`,
		room.ID, room.Name, room.CreatedBy,
	).Scan(&room.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO chat_room_members (id, room_id, user_id) VALUES ($1, $2, $3)`,
		uuid.New(), room.ID, creatorUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator to room: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit room creation: %w", err)
	}

	room.MemberCount = 1
	return room, nil
}

func (s *ChatService) JoinRoom(ctx context.Context, roomID, userID string) error {
	roomUUID, err := uuid.Parse(roomID)
	if err != nil {
		return apperr.Validationf("invalid room id")
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO chat_room_members (id, room_id, user_id) VALUES ($1, $2, $3)`,
		uuid.New(), roomUUID, userUUID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflictf("already a member of this room")
		}
		if isForeignKeyViolation(err) {
			return apperr.NotFoundf("room or user not found")
		}
		return fmt.Errorf("failed to join room: %w", err)
	}
	return nil
}

func (s *ChatService) ListRooms(ctx context.Context, userID string) ([]*chat.Room, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	query := `
	SELECT r.id, r.name, r.created_by, r.created_at,
	       (SELECT COUNT(*) FROM chat_room_members m2 WHERE m2.room_id = r.id) AS member_count
	FROM chat_rooms r
	JOIN chat_room_members m ON m.room_id = r.id
	WHERE m.user_id = $1
	ORDER BY r.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*chat.Room
	for rows.Next() {
		r := &chat.Room{}
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedBy, &r.CreatedAt, &r.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if rooms == nil {
		rooms = []*chat.Room{}
	}
	return rooms, nil
}

// PostMessage appends a message; the sender must already be a room member.
func (s *ChatService) PostMessage(ctx context.Context, roomID, senderID string, req *chat.PostMessageRequest) (*chat.Message, error) {
	roomUUID, err := uuid.Parse(roomID)
	if err != nil {
		return nil, apperr.Validationf("invalid room id")
	}
	senderUUID, err := uuid.Parse(senderID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	var isMember bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM chat_room_members WHERE room_id = $1 AND user_id = $2)`,
		roomUUID, senderUUID,
	).Scan(&isMember)
	if err != nil {
		return nil, fmt.Errorf("failed to check room membership: %w", err)
	}
	if !isMember {
		return nil, apperr.Validationf("sender is not a member of this room")
	}

	m := &chat.Message{
		ID:       uuid.New(),
		RoomID:   roomUUID,
		SenderID: senderUUID,
		Body:     req.Body,
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO chat_messages (id, room_id, sender_id, body) VALUES ($1, $2, $3, $4) RETURNING sent_at`,
		m.ID, m.RoomID, m.SenderID, m.Body,
	).Scan(&m.SentAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("room not found")
		}
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	return m, nil
}

func (s *ChatService) ListMessages(ctx context.Context, roomID string, limit int) ([]*chat.Message, error) {
	roomUUID, err := uuid.Parse(roomID)
	if err != nil {
		return nil, apperr.Validationf("invalid room id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM chat_rooms WHERE id = $1)`, roomUUID).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check room: %w", err)
	}
	if !exists {
		return nil, apperr.NotFoundf("room not found")
	}

	query := `
	SELECT m.id, m.room_id, m.sender_id, u.username, m.body, m.sent_at
	FROM chat_messages m
	JOIN users u ON u.id = m.sender_id
	WHERE m.room_id = $1
	ORDER BY m.sent_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, roomUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		m := &chat.Message{}
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Username, &m.Body, &m.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if messages == nil {
		messages = []*chat.Message{}
	}
	return messages, nil
}
