package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteLog keeps the activity log in a local SQLite file.
type SQLiteLog struct {
	db  *sql.DB
	now func() time.Time
}

var _ ActivityLog = (*SQLiteLog)(nil)

// OpenSQLite opens (or creates) the activity database at dir/activity.db.
func OpenSQLite(dir string) (*SQLiteLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "activity.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening activity db: %w", err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS activity_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id    TEXT    NOT NULL,
		created_at    INTEGER NOT NULL,
		action        TEXT    NOT NULL,
		status        TEXT    NOT NULL,
		outcome       TEXT    NOT NULL DEFAULT '',
		workout_id    INTEGER,
		request       TEXT,
		duration_ms   INTEGER,
		error_message TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating activity table: %w", err)
	}

	return &SQLiteLog{db: db, now: time.Now}, nil
}

// InsertActivity records an activity and returns its ID.
func (s *SQLiteLog) InsertActivity(ctx context.Context, a Activity) (int64, error) {
	created := a.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_log (session_id, created_at, action, status, outcome,
		 workout_id, request, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, created.UnixMilli(), a.Action, a.Status, a.Outcome,
		a.WorkoutID, a.Request, a.DurationMs, a.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting activity: %w", err)
	}
	return res.LastInsertId()
}

// RecentActivity returns the most recent activity entries, newest first.
func (s *SQLiteLog) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, created_at, action, status, outcome, workout_id,
		 request, duration_ms, error_message
		 FROM activity_log
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		recentLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	var result []Activity
	for rows.Next() {
		var (
			a        Activity
			created  int64
			workout  sql.NullInt64
			request  sql.NullString
			duration sql.NullInt64
			errMsg   sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &created, &a.Action, &a.Status,
			&a.Outcome, &workout, &request, &duration, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.CreatedAt = time.UnixMilli(created).UTC()
		if workout.Valid {
			a.WorkoutID = &workout.Int64
		}
		if request.Valid {
			a.Request = &request.String
		}
		if duration.Valid {
			d := int(duration.Int64)
			a.DurationMs = &d
		}
		if errMsg.Valid {
			a.ErrorMessage = &errMsg.String
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Close closes the database.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
