package challenge

import (
	"time"

	"github.com/google/uuid"

	"scoutlineAPI/internal/user"
)

type ParticipantStatus string

const (
	StatusActive    ParticipantStatus = "ACTIVE"
	StatusCompleted ParticipantStatus = "COMPLETED"
	StatusDropped   ParticipantStatus = "DROPPED"
	StatusPaused    ParticipantStatus = "PAUSED"
)

// AllStatuses is the allowed set, in the order error messages report it.
var AllStatuses = []ParticipantStatus{StatusActive, StatusCompleted, StatusDropped, StatusPaused}

func (s ParticipantStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDropped, StatusPaused:
		return true
	}
	return false
}

type Challenge struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	StartDate      *time.Time `json:"start_date" db:"start_date"`
	EndDate        *time.Time `json:"end_date" db:"end_date"`
	TargetProgress float64    `json:"target_progress" db:"target_progress"`
	CreatedBy      uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type Participant struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	ChallengeID uuid.UUID         `json:"challenge_id" db:"challenge_id"`
	UserID      uuid.UUID         `json:"user_id" db:"user_id"`
	Progress    float64           `json:"progress" db:"progress"`
	Status      ParticipantStatus `json:"status" db:"status"`
	JoinedAt    time.Time         `json:"joined_at" db:"joined_at"`
	CompletedAt *time.Time        `json:"completed_at" db:"completed_at"`

	User      *user.Summary  `json:"user,omitempty"`
	Challenge *Challenge     `json:"challenge,omitempty"`
	Logs      []*ProgressLog `json:"logs,omitempty"`
}

// ProgressLog rows are append-only; nothing in the API updates or deletes
// them individually.
type ProgressLog struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ParticipantID uuid.UUID `json:"participant_id" db:"participant_id"`
	TaskID        *string   `json:"task_id" db:"task_id"`
	Description   string    `json:"description" db:"description"`
	ProgressDelta float64   `json:"progress_delta" db:"progress_delta"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type CreateChallengeRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	TargetProgress *float64   `json:"targetProgress,omitempty" validate:"omitempty,gt=0"`
}

type UpdateChallengeRequest struct {
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	TargetProgress *float64   `json:"targetProgress,omitempty" validate:"omitempty,gt=0"`
}

type JoinRequest struct {
	ChallengeID string `json:"challengeId" validate:"required,uuid"`
	UserID      string `json:"userId" validate:"required,uuid"`
}

// ProgressDelta is a pointer so a missing field is distinguishable from an
// explicit zero.
type RecordProgressRequest struct {
	ProgressDelta *float64 `json:"progressDelta" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	TaskID        *string  `json:"taskId,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type RecordProgressResult struct {
	Participant *Participant `json:"participant"`
	NewLog      *ProgressLog `json:"newLog"`
	Message     string       `json:"message"`
}

type ProgressSummary struct {
	CurrentProgress float64           `json:"current_progress"`
	TargetProgress  float64           `json:"target_progress"`
	Remaining       float64           `json:"remaining"`
	Status          ParticipantStatus `json:"status"`
	LogCount        int               `json:"log_count"`
	JoinedAt        time.Time         `json:"joined_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
}

type ParticipantProgress struct {
	Participant *Participant     `json:"participant"`
	Summary     *ProgressSummary `json:"summary"`
}

type CompletedEntry struct {
	Participant
	Rank               int  `json:"rank"`
	TimeToCompleteDays *int `json:"time_to_complete_days"`
}

type CompletedList struct {
	ChallengeID    uuid.UUID         `json:"challengeId"`
	TotalCompleted int               `json:"totalCompleted"`
	Participants   []*CompletedEntry `json:"participants"`
}

type LeaderboardEntry struct {
	Rank        int               `json:"rank"`
	UserID      uuid.UUID         `json:"user_id" db:"user_id"`
	Username    string            `json:"username" db:"username"`
	Progress    float64           `json:"progress" db:"progress"`
	Status      ParticipantStatus `json:"status" db:"status"`
	CompletedAt *time.Time        `json:"completed_at" db:"completed_at"`
	LogCount    int               `json:"log_count" db:"log_count"`
}

type Leaderboard struct {
	ChallengeID uuid.UUID           `json:"challengeId"`
	Entries     []*LeaderboardEntry `json:"leaderboard"`
}

// UserChallengeItem is one participation row in a user's aggregate view.
type UserChallengeItem struct {
	Participant
	LogCount int `json:"log_count"`
}

type UserProgressStats struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"by_status"`
	AverageProgress float64        `json:"average_progress"`
}

type UserProgress struct {
	UserID     uuid.UUID            `json:"userId"`
	Stats      *UserProgressStats   `json:"stats"`
	Challenges []*UserChallengeItem `json:"challenges"`
}

type Statistics struct {
	TotalParticipants     int            `json:"total_participants"`
	CompletedCount        int            `json:"completed_count"`
	CompletionRate        string         `json:"completion_rate"`
	AverageProgress       float64        `json:"average_progress"`
	StatusBreakdown       map[string]int `json:"status_breakdown"`
	FastestCompletionDays *int           `json:"fastest_completion_days"`
}

type ChallengeStatistics struct {
	ChallengeID    uuid.UUID   `json:"challengeId"`
	ChallengeTitle string      `json:"challengeTitle"`
	Statistics     *Statistics `json:"statistics"`
}
