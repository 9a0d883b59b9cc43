package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/user"
)

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	userUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	query := `
	SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.role, u.image_url, u.bio, u.sport, u.position, u.premium, u.created_at, u.updated_at,
	       (SELECT COUNT(*) FROM follows f WHERE f.followed_id = u.id) AS follower_count,
	       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS following_count
	FROM users u
	WHERE u.id = $1
	`

	u := &user.User{}
	err = s.db.QueryRow(ctx, query, userUUID).Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Role,
		&u.ImageURL, &u.Bio, &u.Sport, &u.Position, &u.Premium,
		&u.CreatedAt, &u.UpdatedAt, &u.FollowerCount, &u.FollowingCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, req *user.UpdateProfileRequest) (*user.User, error) {
	userUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		first_name = COALESCE(NULLIF($3, ''), first_name),
		last_name = COALESCE(NULLIF($4, ''), last_name),
		image_url = COALESCE(NULLIF($5, ''), image_url),
		bio = COALESCE(NULLIF($6, ''), bio),
		sport = COALESCE(NULLIF($7, ''), sport),
		position = COALESCE(NULLIF($8, ''), position),
		updated_at = NOW()
	WHERE id = $1
	RETURNING id, email, username, first_name, last_name, role, image_url, bio, sport, position, premium, created_at, updated_at
	`

	u := &user.User{}
	err = s.db.QueryRow(ctx, query,
		userUUID, req.Username, req.FirstName, req.LastName, req.ImageURL, req.Bio, req.Sport, req.Position,
	).Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Role,
		&u.ImageURL, &u.Bio, &u.Sport, &u.Position, &u.Premium,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user not found")
		}
		if isUniqueViolation(err) {
			return nil, apperr.Conflictf("username already taken")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// DeleteUser removes an account. Challenge participations reference users
// with ON DELETE RESTRICT, so a user who still has them must drop out first.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	userUUID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}

	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userUUID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Conflictf("account still has challenge participations; leave them before deleting")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("user not found")
	}
	return nil
}

func (s *UserService) SearchUsers(ctx context.Context, q string, limit int) ([]*user.User, error) {
	if q == "" {
		return nil, apperr.Validationf("search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	query := `
	SELECT id, email, username, first_name, last_name, role, image_url, bio, sport, position, premium, created_at, updated_at
	FROM users
	WHERE username ILIKE '%' || $1 || '%'
	   OR first_name ILIKE '%' || $1 || '%'
	   OR last_name ILIKE '%' || $1 || '%'
	ORDER BY username
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u := &user.User{}
		err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Role,
			&u.ImageURL, &u.Bio, &u.Sport, &u.Position, &u.Premium,
			&u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if users == nil {
		users = []*user.User{}
	}
	return users, nil
}
