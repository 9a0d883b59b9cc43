package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/challenge"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func challengeRow(id, creator uuid.UUID, target float64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "description", "start_date", "end_date",
		"target_progress", "created_by", "created_at", "updated_at",
	}).AddRow(id, "10k shooting drills", "Make 10000 shots", nil, nil, target, creator, baseTime, baseTime)
}

func ptrFloat(v float64) *float64 { return &v }

func TestJoinChallengeStartsAtZeroActive(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)

	challengeID := uuid.New()
	userID := uuid.New()
	creatorID := uuid.New()

	mock.ExpectQuery("FROM challenges").
		WithArgs(challengeID).
		WillReturnRows(challengeRow(challengeID, creatorID, 100))
	mock.ExpectQuery("SELECT id, username, email FROM users").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email"}).
			AddRow(userID, "marta_k", "marta@example.com"))
	mock.ExpectQuery("INSERT INTO challenge_participants").
		WithArgs(pgxmock.AnyArg(), challengeID, userID, float64(0), challenge.StatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"joined_at"}).AddRow(baseTime))

	p, err := svc.JoinChallenge(context.Background(), &challenge.JoinRequest{
		ChallengeID: challengeID.String(),
		UserID:      userID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, float64(0), p.Progress)
	assert.Equal(t, challenge.StatusActive, p.Status)
	assert.Nil(t, p.CompletedAt)
	require.NotNil(t, p.User)
	assert.Equal(t, "marta_k", p.User.Name)
	require.NotNil(t, p.Challenge)
	assert.Equal(t, challengeID, p.Challenge.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinChallengeDuplicateConflicts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)

	challengeID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery("FROM challenges").
		WithArgs(challengeID).
		WillReturnRows(challengeRow(challengeID, uuid.New(), 100))
	mock.ExpectQuery("SELECT id, username, email FROM users").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email"}).
			AddRow(userID, "marta_k", "marta@example.com"))
	mock.ExpectQuery("INSERT INTO challenge_participants").
		WithArgs(pgxmock.AnyArg(), challengeID, userID, float64(0), challenge.StatusActive).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = svc.JoinChallenge(context.Background(), &challenge.JoinRequest{
		ChallengeID: challengeID.String(),
		UserID:      userID.String(),
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "user has already joined this challenge", apperr.Message(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func expectProgressLock(mock pgxmock.PgxPoolIface, pid uuid.UUID, progress float64, status challenge.ParticipantStatus, target float64) {
	mock.ExpectQuery("FOR UPDATE OF p").
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at", "target_progress",
		}).AddRow(pid, uuid.New(), uuid.New(), progress, status, baseTime, nil, target))
}

func TestRecordProgressAccumulates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()

	mock.ExpectBegin()
	expectProgressLock(mock, pid, 10, challenge.StatusActive, 100)
	mock.ExpectExec("UPDATE challenge_participants").
		WithArgs(pid, float64(30), challenge.StatusActive, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO progress_logs").
		WithArgs(pgxmock.AnyArg(), pid, pgxmock.AnyArg(), "morning session", float64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(baseTime))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM progress_logs").
		WithArgs(pid, 5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "participant_id", "task_id", "description", "progress_delta", "created_at",
		}).AddRow(uuid.New(), pid, nil, "morning session", float64(20), baseTime))
	mock.ExpectRollback()

	res, err := svc.RecordProgress(context.Background(), pid.String(), &challenge.RecordProgressRequest{
		ProgressDelta: ptrFloat(20),
		Description:   "morning session",
	})
	require.NoError(t, err)

	assert.Equal(t, float64(30), res.Participant.Progress)
	assert.Equal(t, challenge.StatusActive, res.Participant.Status)
	assert.Nil(t, res.Participant.CompletedAt)
	assert.Equal(t, "Progress updated", res.Message)
	assert.Equal(t, float64(20), res.NewLog.ProgressDelta)
	require.Len(t, res.Participant.Logs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressCompletesAtTarget(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()

	mock.ExpectBegin()
	expectProgressLock(mock, pid, 95, challenge.StatusActive, 100)
	mock.ExpectExec("UPDATE challenge_participants").
		WithArgs(pid, float64(100), challenge.StatusCompleted, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO progress_logs").
		WithArgs(pgxmock.AnyArg(), pid, pgxmock.AnyArg(), "final push", float64(25)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(baseTime))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM progress_logs").
		WithArgs(pid, 5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "participant_id", "task_id", "description", "progress_delta", "created_at",
		}).AddRow(uuid.New(), pid, nil, "final push", float64(25), baseTime))
	mock.ExpectRollback()

	res, err := svc.RecordProgress(context.Background(), pid.String(), &challenge.RecordProgressRequest{
		ProgressDelta: ptrFloat(25),
		Description:   "final push",
	})
	require.NoError(t, err)

	// 95 + 25 clamps to 100, which meets the target.
	assert.Equal(t, float64(100), res.Participant.Progress)
	assert.Equal(t, challenge.StatusCompleted, res.Participant.Status)
	assert.NotNil(t, res.Participant.CompletedAt)
	assert.Equal(t, "Congratulations! Challenge completed!", res.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressCapIsIndependentOfTarget(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()

	mock.ExpectBegin()
	expectProgressLock(mock, pid, 95, challenge.StatusActive, 150)
	mock.ExpectExec("UPDATE challenge_participants").
		WithArgs(pid, float64(100), challenge.StatusActive, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO progress_logs").
		WithArgs(pgxmock.AnyArg(), pid, pgxmock.AnyArg(), "long run", float64(40)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(baseTime))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM progress_logs").
		WithArgs(pid, 5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "participant_id", "task_id", "description", "progress_delta", "created_at",
		}).AddRow(uuid.New(), pid, nil, "long run", float64(40), baseTime))
	mock.ExpectRollback()

	res, err := svc.RecordProgress(context.Background(), pid.String(), &challenge.RecordProgressRequest{
		ProgressDelta: ptrFloat(40),
		Description:   "long run",
	})
	require.NoError(t, err)

	// Progress clamps at 100 even with a 150 target, so the participant
	// stays ACTIVE and can never reach the target.
	assert.Equal(t, float64(100), res.Participant.Progress)
	assert.Equal(t, challenge.StatusActive, res.Participant.Status)
	assert.Equal(t, "Progress updated", res.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressFloorsAtZero(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()

	mock.ExpectBegin()
	expectProgressLock(mock, pid, 5, challenge.StatusActive, 100)
	mock.ExpectExec("UPDATE challenge_participants").
		WithArgs(pid, float64(0), challenge.StatusActive, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO progress_logs").
		WithArgs(pgxmock.AnyArg(), pid, pgxmock.AnyArg(), "correction", float64(-10)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(baseTime))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM progress_logs").
		WithArgs(pid, 5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "participant_id", "task_id", "description", "progress_delta", "created_at",
		}).AddRow(uuid.New(), pid, nil, "correction", float64(-10), baseTime))
	mock.ExpectRollback()

	res, err := svc.RecordProgress(context.Background(), pid.String(), &challenge.RecordProgressRequest{
		ProgressDelta: ptrFloat(-10),
		Description:   "correction",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), res.Participant.Progress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressRejectedAfterCompletion(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()

	mock.ExpectBegin()
	expectProgressLock(mock, pid, 100, challenge.StatusCompleted, 100)
	mock.ExpectRollback()

	_, err = svc.RecordProgress(context.Background(), pid.String(), &challenge.RecordProgressRequest{
		ProgressDelta: ptrFloat(5),
		Description:   "too late",
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Challenge already completed", apperr.Message(err))
	// No UPDATE and no log insert were expected; the mock verifies nothing
	// else ran inside the transaction.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressUnknownParticipant(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF p").
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at", "target_progress",
		}))
	mock.ExpectRollback()

	_, err = svc.RecordProgress(context.Background(), pid.String(), &challenge.RecordProgressRequest{
		ProgressDelta: ptrFloat(5),
		Description:   "ghost",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateParticipantStatusRejectsUnknownValue(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)

	_, err = svc.UpdateParticipantStatus(context.Background(), uuid.NewString(), "SIDEWAYS")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.Message(err), "ACTIVE, COMPLETED, DROPPED, PAUSED")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateParticipantStatusAllowsAnyTransition(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()

	// COMPLETED back to ACTIVE is allowed; completed_at is left alone.
	completedAt := baseTime.Add(48 * time.Hour)
	mock.ExpectQuery("UPDATE challenge_participants").
		WithArgs(pid, challenge.StatusActive).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at",
		}).AddRow(pid, uuid.New(), uuid.New(), float64(100), challenge.StatusActive, baseTime, &completedAt))

	p, err := svc.UpdateParticipantStatus(context.Background(), pid.String(), "ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusActive, p.Status)
	require.NotNil(t, p.CompletedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRanksInRowOrder(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	challengeID := uuid.New()

	first := uuid.New()
	second := uuid.New()
	third := uuid.New()
	earlier := baseTime.Add(24 * time.Hour)
	later := baseTime.Add(72 * time.Hour)

	mock.ExpectQuery("ORDER BY p.progress DESC, p.completed_at ASC NULLS LAST").
		WithArgs(challengeID, "", 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "username", "progress", "status", "completed_at", "log_count",
		}).
			AddRow(first, "ana", float64(100), challenge.StatusCompleted, &earlier, 12).
			AddRow(second, "bo", float64(100), challenge.StatusCompleted, &later, 9).
			AddRow(third, "cyd", float64(40), challenge.StatusActive, nil, 3))

	lb, err := svc.Leaderboard(context.Background(), challengeID.String(), "", 0)
	require.NoError(t, err)
	require.Len(t, lb.Entries, 3)
	assert.Equal(t, 1, lb.Entries[0].Rank)
	assert.Equal(t, "ana", lb.Entries[0].Username)
	assert.Equal(t, 2, lb.Entries[1].Rank)
	assert.Equal(t, "bo", lb.Entries[1].Username)
	assert.Equal(t, 3, lb.Entries[2].Rank)
	assert.Nil(t, lb.Entries[2].CompletedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRejectsInvalidStatusFilter(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)

	_, err = svc.Leaderboard(context.Background(), uuid.NewString(), "WINNING", 10)
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompletedComputesRankAndDays(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	challengeID := uuid.New()

	u1 := uuid.New()
	u2 := uuid.New()
	// 36 hours rounds up to 2 days, 24 hours exactly is 1 day.
	done1 := baseTime.Add(36 * time.Hour)
	done2 := baseTime.Add(24 * time.Hour)

	mock.ExpectQuery("ORDER BY p.completed_at ASC").
		WithArgs(challengeID, challenge.StatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at",
			"uid", "username", "email",
		}).
			AddRow(uuid.New(), challengeID, u1, float64(100), challenge.StatusCompleted, baseTime, &done1, u1, "ana", "ana@example.com").
			AddRow(uuid.New(), challengeID, u2, float64(100), challenge.StatusCompleted, baseTime, &done2, u2, "bo", "bo@example.com"))

	list, err := svc.ListCompleted(context.Background(), challengeID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCompleted)
	require.Len(t, list.Participants, 2)

	assert.Equal(t, 1, list.Participants[0].Rank)
	require.NotNil(t, list.Participants[0].TimeToCompleteDays)
	assert.Equal(t, 2, *list.Participants[0].TimeToCompleteDays)

	assert.Equal(t, 2, list.Participants[1].Rank)
	require.NotNil(t, list.Participants[1].TimeToCompleteDays)
	assert.Equal(t, 1, *list.Participants[1].TimeToCompleteDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompletedRejectsUnknownSort(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)

	_, err = svc.ListCompleted(context.Background(), uuid.NewString(), "fastest")
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserProgressAggregates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	userID := uuid.New()

	c1 := uuid.New()
	c2 := uuid.New()
	done := baseTime.Add(48 * time.Hour)

	mock.ExpectQuery("ORDER BY p.joined_at DESC").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at",
			"cid", "title", "description", "start_date", "end_date", "target_progress", "created_by", "created_at", "updated_at",
			"log_count",
		}).
			AddRow(uuid.New(), c1, userID, float64(100), challenge.StatusCompleted, baseTime, &done,
				c1, "sprints", "", nil, nil, float64(100), uuid.New(), baseTime, baseTime, 8).
			AddRow(uuid.New(), c2, userID, float64(33.335), challenge.StatusActive, baseTime, nil,
				c2, "dribbling", "", nil, nil, float64(100), uuid.New(), baseTime, baseTime, 2))

	up, err := svc.GetUserProgress(context.Background(), userID.String())
	require.NoError(t, err)

	assert.Equal(t, 2, up.Stats.Total)
	assert.Equal(t, 1, up.Stats.ByStatus["COMPLETED"])
	assert.Equal(t, 1, up.Stats.ByStatus["ACTIVE"])
	assert.Equal(t, 0, up.Stats.ByStatus["DROPPED"])
	assert.Equal(t, 0, up.Stats.ByStatus["PAUSED"])
	// (100 + 33.335) / 2 = 66.6675, rounded to two decimals.
	assert.Equal(t, 66.67, up.Stats.AverageProgress)
	require.Len(t, up.Challenges, 2)
	assert.Equal(t, 8, up.Challenges[0].LogCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChallengeStatistics(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	challengeID := uuid.New()

	mock.ExpectQuery("FROM challenges").
		WithArgs(challengeID).
		WillReturnRows(challengeRow(challengeID, uuid.New(), 100))
	mock.ExpectQuery("GROUP BY status").
		WithArgs(challengeID).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count", "avg"}).
			AddRow(challenge.StatusCompleted, 1, float64(100)).
			AddRow(challenge.StatusActive, 2, float64(25)))
	mock.ExpectQuery("completed_at IS NOT NULL").
		WithArgs(challengeID).
		WillReturnRows(pgxmock.NewRows([]string{"joined_at", "completed_at"}).
			AddRow(baseTime, baseTime.Add(30*time.Hour)).
			AddRow(baseTime, baseTime.Add(90*time.Hour)))

	stats, err := svc.GetChallengeStatistics(context.Background(), challengeID.String())
	require.NoError(t, err)

	assert.Equal(t, "10k shooting drills", stats.ChallengeTitle)
	assert.Equal(t, 3, stats.Statistics.TotalParticipants)
	assert.Equal(t, 1, stats.Statistics.CompletedCount)
	assert.Equal(t, "33.3%", stats.Statistics.CompletionRate)
	// (100*1 + 25*2) / 3 = 50.0
	assert.Equal(t, float64(50), stats.Statistics.AverageProgress)
	require.NotNil(t, stats.Statistics.FastestCompletionDays)
	assert.Equal(t, 2, *stats.Statistics.FastestCompletionDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChallengeStatisticsNoParticipants(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	challengeID := uuid.New()

	mock.ExpectQuery("FROM challenges").
		WithArgs(challengeID).
		WillReturnRows(challengeRow(challengeID, uuid.New(), 100))
	mock.ExpectQuery("GROUP BY status").
		WithArgs(challengeID).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count", "avg"}))
	mock.ExpectQuery("completed_at IS NOT NULL").
		WithArgs(challengeID).
		WillReturnRows(pgxmock.NewRows([]string{"joined_at", "completed_at"}))

	stats, err := svc.GetChallengeStatistics(context.Background(), challengeID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Statistics.TotalParticipants)
	assert.Equal(t, "0.0%", stats.Statistics.CompletionRate)
	assert.Nil(t, stats.Statistics.FastestCompletionDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetParticipantProgressSummary(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	pid := uuid.New()
	challengeID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery("JOIN challenges c ON c.id = p.challenge_id").
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at",
			"cid", "title", "description", "start_date", "end_date", "target_progress", "created_by", "created_at", "updated_at",
		}).AddRow(pid, challengeID, userID, float64(40), challenge.StatusActive, baseTime, nil,
			challengeID, "sprints", "", nil, nil, float64(100), uuid.New(), baseTime, baseTime))
	mock.ExpectQuery("FROM progress_logs").
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "participant_id", "task_id", "description", "progress_delta", "created_at",
		}).
			AddRow(uuid.New(), pid, nil, "second", float64(25), baseTime.Add(time.Hour)).
			AddRow(uuid.New(), pid, nil, "first", float64(15), baseTime))

	pp, err := svc.GetParticipantProgress(context.Background(), pid.String())
	require.NoError(t, err)

	assert.Equal(t, float64(40), pp.Summary.CurrentProgress)
	assert.Equal(t, float64(100), pp.Summary.TargetProgress)
	assert.Equal(t, float64(60), pp.Summary.Remaining)
	assert.Equal(t, 2, pp.Summary.LogCount)
	// Newest first.
	assert.Equal(t, "second", pp.Participant.Logs[0].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateChallengeDefaultsTarget(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	creator := uuid.New()

	mock.ExpectQuery("INSERT INTO challenges").
		WithArgs(pgxmock.AnyArg(), "daily touches", "", pgxmock.AnyArg(), pgxmock.AnyArg(), float64(100), creator).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(baseTime, baseTime))

	c, err := svc.CreateChallenge(context.Background(), creator.String(), &challenge.CreateChallengeRequest{
		Title: "daily touches",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(100), c.TargetProgress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChallengeRequiresCreatorOrAdmin(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewChallengeService(mock, nil)
	challengeID := uuid.New()
	creator := uuid.New()
	stranger := uuid.New()

	mock.ExpectQuery("FROM challenges").
		WithArgs(challengeID).
		WillReturnRows(challengeRow(challengeID, creator, 100))

	err = svc.DeleteChallenge(context.Background(), challengeID.String(), stranger.String(), "PLAYER")
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCeilDays(t *testing.T) {
	t.Parallel()

	from := baseTime
	assert.Equal(t, 0, ceilDays(from, from))
	assert.Equal(t, 1, ceilDays(from, from.Add(time.Hour)))
	assert.Equal(t, 1, ceilDays(from, from.Add(24*time.Hour)))
	assert.Equal(t, 2, ceilDays(from, from.Add(25*time.Hour)))
	assert.Equal(t, 0, ceilDays(from, from.Add(-time.Hour)))
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 66.67, round2(66.6675))
	assert.Equal(t, 50.0, round2(50))
	assert.Equal(t, 0.1, round2(0.1049))
}
