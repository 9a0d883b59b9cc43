package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/user"
	"scoutlineAPI/middleware"
)

type AuthService struct {
	db DB
}

func NewAuthService(db DB) *AuthService {
	return &AuthService{db: db}
}

func (s *AuthService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	role := user.RolePlayer
	if req.Role != "" {
		role = user.Role(req.Role)
		if !role.Valid() {
			return nil, apperr.Validationf("invalid role %q, allowed: PLAYER, SCOUT, ADMIN", req.Role)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	}

	query := `
	INSERT INTO users (id, email, username, first_name, last_name, password_hash, role)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query,
		u.ID, u.Email, u.Username, u.FirstName, u.LastName, string(hash), u.Role,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflictf("email or username already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error) {
	query := `
	SELECT id, email, username, first_name, last_name, password_hash, role, image_url, bio, sport, position, premium, created_at, updated_at
	FROM users
	WHERE email = $1
	`

	u := &user.User{}
	var hash string
	err := s.db.QueryRow(ctx, query, req.Email).Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &hash,
		&u.Role, &u.ImageURL, &u.Bio, &u.Sport, &u.Position, &u.Premium,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Same message as a bad password so logins don't leak which
			// emails exist.
			return nil, apperr.Validationf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, apperr.Validationf("invalid email or password")
	}

	token, err := middleware.IssueToken(u.ID.String(), string(u.Role), u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &user.LoginResponse{Token: token, User: u}, nil
}
