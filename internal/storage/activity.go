package storage

import (
	"context"
	"time"
)

// Activity actions.
const (
	ActionDeleteWorkout = "delete_workout"
	ActionAdaptPlan     = "adapt_plan"
)

// Activity statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Activity is one user mutation sent to the plan service and its outcome.
type Activity struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	Action       string    `json:"action"`
	Status       string    `json:"status"`
	Outcome      string    `json:"outcome,omitempty"`
	WorkoutID    *int64    `json:"workout_id"`
	Request      *string   `json:"request"`
	DurationMs   *int      `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message"`
}

// ActivityLog records activities. Implemented by *DB (PostgreSQL) and
// *SQLiteLog.
type ActivityLog interface {
	InsertActivity(ctx context.Context, a Activity) (int64, error)
	RecentActivity(ctx context.Context, limit int) ([]Activity, error)
	Close() error
}

const defaultRecentLimit = 50

func recentLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultRecentLimit
	}
	return limit
}
