package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a pgxpool.Pool and keeps the activity log in PostgreSQL.
type DB struct {
	Pool *pgxpool.Pool
}

var _ ActivityLog = (*DB)(nil)

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// InsertActivity creates a new activity log entry and returns its ID.
func (db *DB) InsertActivity(ctx context.Context, a Activity) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO activity_log (session_id, action, status, outcome, workout_id,
		 request, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id`,
		a.SessionID, a.Action, a.Status, a.Outcome, a.WorkoutID,
		a.Request, a.DurationMs, a.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting activity: %w", err)
	}
	return id, nil
}

// RecentActivity returns the most recent activity entries, newest first.
func (db *DB) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, created_at, action, status, outcome, workout_id,
		 request, duration_ms, error_message
		 FROM activity_log
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		recentLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	var result []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.SessionID, &a.CreatedAt, &a.Action, &a.Status,
			&a.Outcome, &a.WorkoutID, &a.Request, &a.DurationMs, &a.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
