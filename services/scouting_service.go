package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/scouting"
	"scoutlineAPI/internal/user"
)

type ScoutingService struct {
	db DB
}

func NewScoutingService(db DB) *ScoutingService {
	return &ScoutingService{db: db}
}

func (s *ScoutingService) CreateReport(ctx context.Context, scoutID string, req *scouting.CreateReportRequest) (*scouting.Report, error) {
	scoutUUID, err := uuid.Parse(scoutID)
	if err != nil {
		return nil, apperr.Validationf("invalid scout id")
	}
	playerUUID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		return nil, apperr.Validationf("invalid player id")
	}

	r := &scouting.Report{
		ID:       uuid.New(),
		ScoutID:  scoutUUID,
		PlayerID: playerUUID,
		Title:    req.Title,
		Summary:  req.Summary,
		Rating:   req.Rating,
	}
	if req.Position != "" {
		r.Position = &req.Position
	}

	query := `
	INSERT INTO scouting_reports (id, scout_id, player_id, title, summary, rating, position)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query,
		r.ID, r.ScoutID, r.PlayerID, r.Title, r.Summary, r.Rating, r.Position,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("player not found")
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return r, nil
}

func (s *ScoutingService) GetReport(ctx context.Context, id string) (*scouting.Report, error) {
	reportUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid report id")
	}

	query := `
	SELECT r.id, r.scout_id, r.player_id, r.title, r.summary, r.rating, r.position, u.username, r.created_at, r.updated_at
	FROM scouting_reports r
	JOIN users u ON u.id = r.scout_id
	WHERE r.id = $1
	`

	r := &scouting.Report{}
	err = s.db.QueryRow(ctx, query, reportUUID).Scan(
		&r.ID, &r.ScoutID, &r.PlayerID, &r.Title, &r.Summary, &r.Rating, &r.Position,
		&r.ScoutName, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("report not found")
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return r, nil
}

func (s *ScoutingService) UpdateReport(ctx context.Context, id, requesterID, requesterRole string, req *scouting.UpdateReportRequest) (*scouting.Report, error) {
	reportUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid report id")
	}

	existing, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ScoutID.String() != requesterID && requesterRole != string(user.RoleAdmin) {
		return nil, apperr.Conflictf("only the author or an admin may edit a report")
	}

	query := `
	UPDATE scouting_reports
	SET
		title = COALESCE(NULLIF($2, ''), title),
		summary = COALESCE(NULLIF($3, ''), summary),
		rating = CASE WHEN $4 != 0 THEN $4 ELSE rating END,
		position = COALESCE(NULLIF($5, ''), position),
		updated_at = NOW()
	WHERE id = $1
	RETURNING id, scout_id, player_id, title, summary, rating, position, created_at, updated_at
	`

	r := &scouting.Report{}
	err = s.db.QueryRow(ctx, query, reportUUID, req.Title, req.Summary, req.Rating, req.Position).Scan(
		&r.ID, &r.ScoutID, &r.PlayerID, &r.Title, &r.Summary, &r.Rating, &r.Position,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("report not found")
		}
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	return r, nil
}

func (s *ScoutingService) DeleteReport(ctx context.Context, id, requesterID, requesterRole string) error {
	existing, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if existing.ScoutID.String() != requesterID && requesterRole != string(user.RoleAdmin) {
		return apperr.Conflictf("only the author or an admin may delete a report")
	}

	_, err = s.db.Exec(ctx, `DELETE FROM scouting_reports WHERE id = $1`, existing.ID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func (s *ScoutingService) ListByPlayer(ctx context.Context, playerID string) ([]*scouting.Report, error) {
	return s.list(ctx, playerID, "player_id")
}

func (s *ScoutingService) ListByScout(ctx context.Context, scoutID string) ([]*scouting.Report, error) {
	return s.list(ctx, scoutID, "scout_id")
}

func (s *ScoutingService) list(ctx context.Context, id, column string) ([]*scouting.Report, error) {
	subjectUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	query := fmt.Sprintf(`
	SELECT r.id, r.scout_id, r.player_id, r.title, r.summary, r.rating, r.position, u.username, r.created_at, r.updated_at
	FROM scouting_reports r
	JOIN users u ON u.id = r.scout_id
	WHERE r.%s = $1
	ORDER BY r.created_at DESC
	`, column)

	rows, err := s.db.Query(ctx, query, subjectUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*scouting.Report
	for rows.Next() {
		r := &scouting.Report{}
		err := rows.Scan(
			&r.ID, &r.ScoutID, &r.PlayerID, &r.Title, &r.Summary, &r.Rating, &r.Position,
			&r.ScoutName, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if reports == nil {
		reports = []*scouting.Report{}
	}
	return reports, nil
}
