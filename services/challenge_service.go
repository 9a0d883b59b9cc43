package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/challenge"
	"scoutlineAPI/internal/user"
)

// Progress is capped at this literal value on every update, independent of
// the challenge target. A challenge whose target exceeds the cap can never
// be completed; callers creating challenges should keep targets at or below
// it until that behavior is revisited.
const maxProgressCap = 100.0

const defaultLeaderboardLimit = 10

type ChallengeService struct {
	db    DB
	notif *NotificationService
}

func NewChallengeService(db DB, notif *NotificationService) *ChallengeService {
	return &ChallengeService{db: db, notif: notif}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, creatorID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	creatorUUID, err := uuid.Parse(creatorID)
	if err != nil {
		return nil, apperr.Validationf("invalid creator id")
	}

	target := maxProgressCap
	if req.TargetProgress != nil {
		target = *req.TargetProgress
	}

	c := &challenge.Challenge{
		ID:             uuid.New(),
		Title:          req.Title,
		Description:    req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TargetProgress: target,
		CreatedBy:      creatorUUID,
	}

	query := `
	INSERT INTO challenges (id, title, description, start_date, end_date, target_progress, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query,
		c.ID, c.Title, c.Description, c.StartDate, c.EndDate, c.TargetProgress, c.CreatedBy,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("creator not found")
		}
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	return c, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, id string) (*challenge.Challenge, error) {
	challengeUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid challenge id")
	}
	return s.getChallengeByID(ctx, challengeUUID)
}

func (s *ChallengeService) getChallengeByID(ctx context.Context, id uuid.UUID) (*challenge.Challenge, error) {
	query := `
	SELECT id, title, description, start_date, end_date, target_progress, created_by, created_at, updated_at
	FROM challenges
	WHERE id = $1
	`

	c := &challenge.Challenge{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate,
		&c.TargetProgress, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("challenge not found")
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return c, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context, limit, offset int) ([]*challenge.Challenge, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
	SELECT id, title, description, start_date, end_date, target_progress, created_by, created_at, updated_at
	FROM challenges
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.Challenge
	for rows.Next() {
		c := &challenge.Challenge{}
		err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate,
			&c.TargetProgress, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if challenges == nil {
		challenges = []*challenge.Challenge{}
	}
	return challenges, nil
}

// UpdateChallenge lets the creator or an admin edit challenge fields.
func (s *ChallengeService) UpdateChallenge(ctx context.Context, id, requesterID, requesterRole string, req *challenge.UpdateChallengeRequest) (*challenge.Challenge, error) {
	challengeUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid challenge id")
	}

	existing, err := s.getChallengeByID(ctx, challengeUUID)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy.String() != requesterID && requesterRole != string(user.RoleAdmin) {
		return nil, apperr.Conflictf("only the creator or an admin may edit a challenge")
	}

	query := `
	UPDATE challenges
	SET
		title = COALESCE(NULLIF($2, ''), title),
		description = COALESCE(NULLIF($3, ''), description),
		start_date = COALESCE($4, start_date),
		end_date = COALESCE($5, end_date),
		target_progress = COALESCE($6, target_progress),
		updated_at = NOW()
	WHERE id = $1
	RETURNING id, title, description, start_date, end_date, target_progress, created_by, created_at, updated_at
	`

	c := &challenge.Challenge{}
	err = s.db.QueryRow(ctx, query,
		challengeUUID, req.Title, req.Description, req.StartDate, req.EndDate, req.TargetProgress,
	).Scan(
		&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate,
		&c.TargetProgress, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("challenge not found")
		}
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}

	return c, nil
}

// DeleteChallenge removes a challenge; participants and their logs go with
// it via cascade.
func (s *ChallengeService) DeleteChallenge(ctx context.Context, id, requesterID, requesterRole string) error {
	challengeUUID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid challenge id")
	}

	existing, err := s.getChallengeByID(ctx, challengeUUID)
	if err != nil {
		return err
	}
	if existing.CreatedBy.String() != requesterID && requesterRole != string(user.RoleAdmin) {
		return apperr.Conflictf("only the creator or an admin may delete a challenge")
	}

	result, err := s.db.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, challengeUUID)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("challenge not found")
	}
	return nil
}

// JoinChallenge enrolls a user: one participant row per (challenge, user)
// pair, starting at progress 0, status ACTIVE.
func (s *ChallengeService) JoinChallenge(ctx context.Context, req *challenge.JoinRequest) (*challenge.Participant, error) {
	challengeUUID, err := uuid.Parse(req.ChallengeID)
	if err != nil {
		return nil, apperr.Validationf("invalid challenge id")
	}
	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	c, err := s.getChallengeByID(ctx, challengeUUID)
	if err != nil {
		return nil, err
	}

	u := &user.Summary{}
	err = s.db.QueryRow(ctx, `SELECT id, username, email FROM users WHERE id = $1`, userUUID).
		Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	p := &challenge.Participant{
		ID:          uuid.New(),
		ChallengeID: challengeUUID,
		UserID:      userUUID,
		Progress:    0,
		Status:      challenge.StatusActive,
	}

	query := `
	INSERT INTO challenge_participants (id, challenge_id, user_id, progress, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING joined_at
	`

	err = s.db.QueryRow(ctx, query, p.ID, p.ChallengeID, p.UserID, p.Progress, p.Status).Scan(&p.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflictf("user has already joined this challenge")
		}
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("challenge or user not found")
		}
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}

	p.User = u
	p.Challenge = c
	return p, nil
}

// RecordProgress applies a signed delta to a participant and appends one
// progress log in the same transaction. The participant row is locked for
// the duration so concurrent updates serialize instead of losing writes.
func (s *ChallengeService) RecordProgress(ctx context.Context, participantID string, req *challenge.RecordProgressRequest) (*challenge.RecordProgressResult, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, apperr.Validationf("invalid participant id")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockQuery := `
	SELECT p.id, p.challenge_id, p.user_id, p.progress, p.status, p.joined_at, p.completed_at, c.target_progress
	FROM challenge_participants p
	JOIN challenges c ON c.id = p.challenge_id
	WHERE p.id = $1
	FOR UPDATE OF p
	`

	p := &challenge.Participant{}
	var target float64
	err = tx.QueryRow(ctx, lockQuery, participantUUID).Scan(
		&p.ID, &p.ChallengeID, &p.UserID, &p.Progress, &p.Status,
		&p.JoinedAt, &p.CompletedAt, &target,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("participant not found")
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if p.Status == challenge.StatusCompleted {
		return nil, apperr.Conflictf("Challenge already completed")
	}

	newProgress := math.Min(p.Progress+*req.ProgressDelta, maxProgressCap)
	if newProgress < 0 {
		newProgress = 0
	}
	if target <= 0 {
		target = maxProgressCap
	}
	completed := newProgress >= target

	var completedAt *time.Time
	status := p.Status
	if completed {
		now := time.Now()
		completedAt = &now
		status = challenge.StatusCompleted
	} else {
		completedAt = p.CompletedAt
	}

	updateQuery := `
	UPDATE challenge_participants
	SET progress = $2, status = $3, completed_at = $4
	WHERE id = $1
	`
	_, err = tx.Exec(ctx, updateQuery, participantUUID, newProgress, status, completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update participant progress: %w", err)
	}

	newLog := &challenge.ProgressLog{
		ID:            uuid.New(),
		ParticipantID: participantUUID,
		TaskID:        req.TaskID,
		Description:   req.Description,
		ProgressDelta: *req.ProgressDelta,
	}
	insertLogQuery := `
	INSERT INTO progress_logs (id, participant_id, task_id, description, progress_delta)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	err = tx.QueryRow(ctx, insertLogQuery,
		newLog.ID, newLog.ParticipantID, newLog.TaskID, newLog.Description, newLog.ProgressDelta,
	).Scan(&newLog.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert progress log: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit progress update: %w", err)
	}

	p.Progress = newProgress
	p.Status = status
	p.CompletedAt = completedAt

	p.Logs, err = s.recentLogs(ctx, participantUUID, 5)
	if err != nil {
		log.Printf("RecordProgress: failed to load recent logs for %s: %v", participantUUID, err)
		p.Logs = []*challenge.ProgressLog{newLog}
	}

	message := "Progress updated"
	if completed {
		message = "Congratulations! Challenge completed!"
		s.notifyCompletion(ctx, p)
	}

	return &challenge.RecordProgressResult{
		Participant: p,
		NewLog:      newLog,
		Message:     message,
	}, nil
}

func (s *ChallengeService) notifyCompletion(ctx context.Context, p *challenge.Participant) {
	if s.notif == nil {
		return
	}
	title := "Challenge completed"
	body := "You reached the target. Nice work!"
	if err := s.notif.Notify(ctx, p.UserID, "challenge_completed", title, body); err != nil {
		log.Printf("failed to send completion notification for participant %s: %v", p.ID, err)
	}
}

func (s *ChallengeService) recentLogs(ctx context.Context, participantID uuid.UUID, limit int) ([]*challenge.ProgressLog, error) {
	query := `
	SELECT id, participant_id, task_id, description, progress_delta, created_at
	FROM progress_logs
	WHERE participant_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, participantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProgressLogs(rows)
}

func scanProgressLogs(rows pgx.Rows) ([]*challenge.ProgressLog, error) {
	var logs []*challenge.ProgressLog
	for rows.Next() {
		l := &challenge.ProgressLog{}
		err := rows.Scan(&l.ID, &l.ParticipantID, &l.TaskID, &l.Description, &l.ProgressDelta, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*challenge.ProgressLog{}
	}
	return logs, nil
}

// GetParticipantProgress returns the participant with its challenge, the
// full log history newest first, and a computed summary.
func (s *ChallengeService) GetParticipantProgress(ctx context.Context, participantID string) (*challenge.ParticipantProgress, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, apperr.Validationf("invalid participant id")
	}

	query := `
	SELECT p.id, p.challenge_id, p.user_id, p.progress, p.status, p.joined_at, p.completed_at,
	       c.id, c.title, c.description, c.start_date, c.end_date, c.target_progress, c.created_by, c.created_at, c.updated_at
	FROM challenge_participants p
	JOIN challenges c ON c.id = p.challenge_id
	WHERE p.id = $1
	`

	p := &challenge.Participant{Challenge: &challenge.Challenge{}}
	c := p.Challenge
	err = s.db.QueryRow(ctx, query, participantUUID).Scan(
		&p.ID, &p.ChallengeID, &p.UserID, &p.Progress, &p.Status, &p.JoinedAt, &p.CompletedAt,
		&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate, &c.TargetProgress, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("participant not found")
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	logsQuery := `
	SELECT id, participant_id, task_id, description, progress_delta, created_at
	FROM progress_logs
	WHERE participant_id = $1
	ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, logsQuery, participantUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress logs: %w", err)
	}
	defer rows.Close()

	p.Logs, err = scanProgressLogs(rows)
	if err != nil {
		return nil, err
	}

	target := c.TargetProgress
	if target <= 0 {
		target = maxProgressCap
	}

	summary := &challenge.ProgressSummary{
		CurrentProgress: p.Progress,
		TargetProgress:  target,
		Remaining:       math.Max(0, target-p.Progress),
		Status:          p.Status,
		LogCount:        len(p.Logs),
		JoinedAt:        p.JoinedAt,
		CompletedAt:     p.CompletedAt,
	}

	return &challenge.ParticipantProgress{Participant: p, Summary: summary}, nil
}

// ListCompleted returns a challenge's COMPLETED participants. sortBy is
// "completedAt" (ascending, default: earliest finishers first) or
// "progress" (descending).
func (s *ChallengeService) ListCompleted(ctx context.Context, challengeID, sortBy string) (*challenge.CompletedList, error) {
	challengeUUID, err := uuid.Parse(challengeID)
	if err != nil {
		return nil, apperr.Validationf("invalid challenge id")
	}

	orderBy := "p.completed_at ASC"
	switch sortBy {
	case "", "completedAt":
	case "progress":
		orderBy = "p.progress DESC"
	default:
		return nil, apperr.Validationf("sortBy must be 'completedAt' or 'progress'")
	}

	query := fmt.Sprintf(`
	SELECT p.id, p.challenge_id, p.user_id, p.progress, p.status, p.joined_at, p.completed_at,
	       u.id, u.username, u.email
	FROM challenge_participants p
	JOIN users u ON u.id = p.user_id
	WHERE p.challenge_id = $1 AND p.status = $2
	ORDER BY %s
	`, orderBy)

	rows, err := s.db.Query(ctx, query, challengeUUID, challenge.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed participants: %w", err)
	}
	defer rows.Close()

	var entries []*challenge.CompletedEntry
	for rows.Next() {
		e := &challenge.CompletedEntry{}
		u := &user.Summary{}
		err := rows.Scan(
			&e.ID, &e.ChallengeID, &e.UserID, &e.Progress, &e.Status, &e.JoinedAt, &e.CompletedAt,
			&u.ID, &u.Name, &u.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completed participant: %w", err)
		}
		e.User = u
		e.Rank = len(entries) + 1
		if e.CompletedAt != nil {
			days := ceilDays(e.JoinedAt, *e.CompletedAt)
			e.TimeToCompleteDays = &days
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []*challenge.CompletedEntry{}
	}
	return &challenge.CompletedList{
		ChallengeID:    challengeUUID,
		TotalCompleted: len(entries),
		Participants:   entries,
	}, nil
}

// Leaderboard orders participants by progress descending; ties go to the
// earlier completion.
func (s *ChallengeService) Leaderboard(ctx context.Context, challengeID, status string, limit int) (*challenge.Leaderboard, error) {
	challengeUUID, err := uuid.Parse(challengeID)
	if err != nil {
		return nil, apperr.Validationf("invalid challenge id")
	}
	if status != "" && !challenge.ParticipantStatus(status).Valid() {
		return nil, apperr.Validationf("invalid status filter %q, allowed: ACTIVE, COMPLETED, DROPPED, PAUSED", status)
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	query := `
	SELECT p.user_id, u.username, p.progress, p.status, p.completed_at,
	       (SELECT COUNT(*) FROM progress_logs l WHERE l.participant_id = p.id) AS log_count
	FROM challenge_participants p
	JOIN users u ON u.id = p.user_id
	WHERE p.challenge_id = $1 AND ($2 = '' OR p.status = $2::participant_status)
	ORDER BY p.progress DESC, p.completed_at ASC NULLS LAST
	LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, challengeUUID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*challenge.LeaderboardEntry
	for rows.Next() {
		e := &challenge.LeaderboardEntry{}
		err := rows.Scan(&e.UserID, &e.Username, &e.Progress, &e.Status, &e.CompletedAt, &e.LogCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []*challenge.LeaderboardEntry{}
	}
	return &challenge.Leaderboard{ChallengeID: challengeUUID, Entries: entries}, nil
}

// GetUserProgress aggregates a user's participations across all challenges.
func (s *ChallengeService) GetUserProgress(ctx context.Context, userID string) (*challenge.UserProgress, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	query := `
	SELECT p.id, p.challenge_id, p.user_id, p.progress, p.status, p.joined_at, p.completed_at,
	       c.id, c.title, c.description, c.start_date, c.end_date, c.target_progress, c.created_by, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM progress_logs l WHERE l.participant_id = p.id) AS log_count
	FROM challenge_participants p
	JOIN challenges c ON c.id = p.challenge_id
	WHERE p.user_id = $1
	ORDER BY p.joined_at DESC
	`

	rows, err := s.db.Query(ctx, query, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	defer rows.Close()

	var items []*challenge.UserChallengeItem
	var progressSum float64
	byStatus := map[string]int{}
	for _, st := range challenge.AllStatuses {
		byStatus[string(st)] = 0
	}

	for rows.Next() {
		item := &challenge.UserChallengeItem{}
		c := &challenge.Challenge{}
		err := rows.Scan(
			&item.ID, &item.ChallengeID, &item.UserID, &item.Progress, &item.Status, &item.JoinedAt, &item.CompletedAt,
			&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate, &c.TargetProgress, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
			&item.LogCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user participation: %w", err)
		}
		item.Challenge = c
		progressSum += item.Progress
		byStatus[string(item.Status)]++
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	stats := &challenge.UserProgressStats{
		Total:    len(items),
		ByStatus: byStatus,
	}
	if len(items) > 0 {
		stats.AverageProgress = round2(progressSum / float64(len(items)))
	}

	if items == nil {
		items = []*challenge.UserChallengeItem{}
	}
	return &challenge.UserProgress{UserID: userUUID, Stats: stats, Challenges: items}, nil
}

// UpdateParticipantStatus sets the status to any member of the enum. There
// is no transition graph: COMPLETED back to ACTIVE is accepted.
func (s *ChallengeService) UpdateParticipantStatus(ctx context.Context, participantID, status string) (*challenge.Participant, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, apperr.Validationf("invalid participant id")
	}

	newStatus := challenge.ParticipantStatus(status)
	if !newStatus.Valid() {
		return nil, apperr.Validationf("invalid status %q, allowed: ACTIVE, COMPLETED, DROPPED, PAUSED", status)
	}

	query := `
	UPDATE challenge_participants
	SET status = $2,
	    completed_at = CASE WHEN $2 = 'COMPLETED' THEN COALESCE(completed_at, NOW()) ELSE completed_at END
	WHERE id = $1
	RETURNING id, challenge_id, user_id, progress, status, joined_at, completed_at
	`

	p := &challenge.Participant{}
	err = s.db.QueryRow(ctx, query, participantUUID, newStatus).Scan(
		&p.ID, &p.ChallengeID, &p.UserID, &p.Progress, &p.Status, &p.JoinedAt, &p.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("participant not found")
		}
		return nil, fmt.Errorf("failed to update participant status: %w", err)
	}

	return p, nil
}

// GetChallengeStatistics derives completion rate, status breakdown, and the
// fastest completion for one challenge.
func (s *ChallengeService) GetChallengeStatistics(ctx context.Context, challengeID string) (*challenge.ChallengeStatistics, error) {
	challengeUUID, err := uuid.Parse(challengeID)
	if err != nil {
		return nil, apperr.Validationf("invalid challenge id")
	}

	c, err := s.getChallengeByID(ctx, challengeUUID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT status, COUNT(*), AVG(progress)
	FROM challenge_participants
	WHERE challenge_id = $1
	GROUP BY status
	`

	rows, err := s.db.Query(ctx, query, challengeUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge statistics: %w", err)
	}
	defer rows.Close()

	breakdown := map[string]int{}
	for _, st := range challenge.AllStatuses {
		breakdown[string(st)] = 0
	}

	total := 0
	var weightedSum float64
	for rows.Next() {
		var st challenge.ParticipantStatus
		var count int
		var avg float64
		if err := rows.Scan(&st, &count, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan statistics row: %w", err)
		}
		breakdown[string(st)] = count
		total += count
		weightedSum += avg * float64(count)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	stats := &challenge.Statistics{
		TotalParticipants: total,
		CompletedCount:    breakdown[string(challenge.StatusCompleted)],
		CompletionRate:    "0.0%",
		StatusBreakdown:   breakdown,
	}
	if total > 0 {
		stats.AverageProgress = round2(weightedSum / float64(total))
		stats.CompletionRate = fmt.Sprintf("%.1f%%", float64(stats.CompletedCount)/float64(total)*100)
	}

	fastest, err := s.fastestCompletionDays(ctx, challengeUUID)
	if err != nil {
		return nil, err
	}
	stats.FastestCompletionDays = fastest

	return &challenge.ChallengeStatistics{
		ChallengeID:    challengeUUID,
		ChallengeTitle: c.Title,
		Statistics:     stats,
	}, nil
}

func (s *ChallengeService) fastestCompletionDays(ctx context.Context, challengeID uuid.UUID) (*int, error) {
	query := `
	SELECT joined_at, completed_at
	FROM challenge_participants
	WHERE challenge_id = $1 AND completed_at IS NOT NULL
	`

	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion times: %w", err)
	}
	defer rows.Close()

	var fastest *int
	for rows.Next() {
		var joined, completed time.Time
		if err := rows.Scan(&joined, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion time: %w", err)
		}
		days := ceilDays(joined, completed)
		if fastest == nil || days < *fastest {
			fastest = &days
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return fastest, nil
}

// ceilDays rounds a duration between two instants up to whole days.
func ceilDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
