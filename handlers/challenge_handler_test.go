package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutlineAPI/internal/challenge"
	"scoutlineAPI/middleware"
	"scoutlineAPI/services"
)

func testTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newChallengeTestRouter(t *testing.T) (*mux.Router, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	h := NewChallengeHandler(services.NewChallengeService(mock, nil))

	r := mux.NewRouter()
	r.HandleFunc("/participants", h.JoinChallenge).Methods("POST")
	r.HandleFunc("/participants/{participantId}/progress", h.RecordProgress).Methods("PUT")
	r.HandleFunc("/participants/{participantId}/status", h.UpdateParticipantStatus).Methods("PUT")
	r.HandleFunc("/challenges", h.CreateChallenge).Methods("POST")
	r.HandleFunc("/challenges/{challengeId}/leaderboard", h.GetLeaderboard).Methods("GET")
	return r, mock
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.RoleKey, "PLAYER")
	return req.WithContext(ctx)
}

func TestRecordProgressHandlerRequiresDelta(t *testing.T) {
	r, mock := newChallengeTestRouter(t)

	body := []byte(`{"description": "no delta here"}`)
	req := authedRequest(http.MethodPut, "/participants/"+uuid.NewString()+"/progress", body, uuid.NewString())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ProgressDelta is required", resp["error"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressHandlerAcceptsZeroDelta(t *testing.T) {
	r, mock := newChallengeTestRouter(t)
	pid := uuid.New()
	ts := testTime()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF p").
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at", "target_progress",
		}).AddRow(pid, uuid.New(), uuid.New(), float64(10), challenge.StatusActive, ts, nil, float64(100)))
	mock.ExpectExec("UPDATE challenge_participants").
		WithArgs(pid, float64(10), challenge.StatusActive, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO progress_logs").
		WithArgs(pgxmock.AnyArg(), pid, pgxmock.AnyArg(), "rest day", float64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(ts))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM progress_logs").
		WithArgs(pid, 5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "participant_id", "task_id", "description", "progress_delta", "created_at",
		}).AddRow(uuid.New(), pid, nil, "rest day", float64(0), ts))
	mock.ExpectRollback()

	body := []byte(`{"progressDelta": 0, "description": "rest day"}`)
	req := authedRequest(http.MethodPut, "/participants/"+pid.String()+"/progress", body, uuid.NewString())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp challenge.RecordProgressResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Progress updated", resp.Message)
	assert.Equal(t, float64(10), resp.Participant.Progress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressHandlerConflictAfterCompletion(t *testing.T) {
	r, mock := newChallengeTestRouter(t)
	pid := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF p").
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "challenge_id", "user_id", "progress", "status", "joined_at", "completed_at", "target_progress",
		}).AddRow(pid, uuid.New(), uuid.New(), float64(100), challenge.StatusCompleted, testTime(), nil, float64(100)))
	mock.ExpectRollback()

	body := []byte(`{"progressDelta": 5, "description": "too late"}`)
	req := authedRequest(http.MethodPut, "/participants/"+pid.String()+"/progress", body, uuid.NewString())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Challenge already completed", resp["error"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinChallengeHandlerValidatesUUIDs(t *testing.T) {
	r, mock := newChallengeTestRouter(t)

	body := []byte(`{"challengeId": "not-a-uuid", "userId": "` + uuid.NewString() + `"}`)
	req := authedRequest(http.MethodPost, "/participants", body, uuid.NewString())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ChallengeID must be a valid UUID", resp["error"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinChallengeHandlerDuplicate(t *testing.T) {
	r, mock := newChallengeTestRouter(t)
	challengeID := uuid.New()
	userID := uuid.New()
	ts := testTime()

	mock.ExpectQuery("FROM challenges").
		WithArgs(challengeID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "description", "start_date", "end_date",
			"target_progress", "created_by", "created_at", "updated_at",
		}).AddRow(challengeID, "sprint ladder", "", nil, nil, float64(100), uuid.New(), ts, ts))
	mock.ExpectQuery("SELECT id, username, email FROM users").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email"}).
			AddRow(userID, "jo", "jo@example.com"))
	mock.ExpectQuery("INSERT INTO challenge_participants").
		WithArgs(pgxmock.AnyArg(), challengeID, userID, float64(0), challenge.StatusActive).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	body := []byte(`{"challengeId": "` + challengeID.String() + `", "userId": "` + userID.String() + `"}`)
	req := authedRequest(http.MethodPost, "/participants", body, userID.String())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateChallengeHandlerRequiresAuth(t *testing.T) {
	r, mock := newChallengeTestRouter(t)

	body := []byte(`{"title": "daily touches"}`)
	req := httptest.NewRequest(http.MethodPost, "/challenges", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateParticipantStatusHandlerRejectsUnknown(t *testing.T) {
	r, mock := newChallengeTestRouter(t)

	body := []byte(`{"status": "SIDEWAYS"}`)
	req := authedRequest(http.MethodPut, "/participants/"+uuid.NewString()+"/status", body, uuid.NewString())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "ACTIVE, COMPLETED, DROPPED, PAUSED")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeaderboardHandler(t *testing.T) {
	r, mock := newChallengeTestRouter(t)
	challengeID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery("ORDER BY p.progress DESC").
		WithArgs(challengeID, "COMPLETED", 3).
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "username", "progress", "status", "completed_at", "log_count",
		}).AddRow(userID, "ana", float64(100), challenge.StatusCompleted, nil, 7))

	req := authedRequest(http.MethodGet, "/challenges/"+challengeID.String()+"/leaderboard?status=COMPLETED&limit=3", nil, userID.String())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp challenge.Leaderboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, 1, resp.Entries[0].Rank)
	assert.Equal(t, "ana", resp.Entries[0].Username)
	require.NoError(t, mock.ExpectationsWereMet())
}
