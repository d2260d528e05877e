// Package repository provides PostgreSQL persistence for the
// recommendation service.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avetrov/filmweek/internal/models"
)

// PostgresUserRepository implements user persistence over PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// UserExists checks whether a user with the specified username exists.
func (r *PostgresUserRepository) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&exists)
	return exists, err
}

// CreateUser inserts a new user and returns its profile.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, username, email string, passwordHash []byte) (models.UserProfile, error) {
	var profile models.UserProfile
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, username, email`,
		username, email, passwordHash,
	).Scan(&profile.ID, &profile.Username, &profile.Email)
	return profile, err
}

// UserByName returns the profile and password hash for a username.
// sql.ErrNoRows is returned untouched when the user does not exist.
func (r *PostgresUserRepository) UserByName(ctx context.Context, username string) (models.UserProfile, []byte, error) {
	var (
		profile models.UserProfile
		hash    []byte
	)
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&profile.ID, &profile.Username, &profile.Email, &hash)
	return profile, hash, err
}

// UserByID returns the profile for a user id.
func (r *PostgresUserRepository) UserByID(ctx context.Context, id int) (models.UserProfile, error) {
	var profile models.UserProfile
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, email FROM users WHERE id = $1`,
		id,
	).Scan(&profile.ID, &profile.Username, &profile.Email)
	return profile, err
}

// WeeklyPick returns the stored weekly pick for a user. ok is false when
// the user has no pick yet.
func (r *PostgresUserRepository) WeeklyPick(ctx context.Context, userID int) (movieID int, generatedAt time.Time, ok bool, err error) {
	var (
		id sql.NullInt64
		at sql.NullTime
	)
	err = r.DB.QueryRowContext(
		ctx,
		`SELECT weekly_movie_id, weekly_generated_at FROM users WHERE id = $1`,
		userID,
	).Scan(&id, &at)
	if err != nil {
		return 0, time.Time{}, false, err
	}
	if !id.Valid || !at.Valid {
		return 0, time.Time{}, false, nil
	}
	return int(id.Int64), at.Time, true, nil
}

// SetWeeklyPick stores the weekly pick and its generation time.
func (r *PostgresUserRepository) SetWeeklyPick(ctx context.Context, userID, movieID int, generatedAt time.Time) error {
	_, err := r.DB.ExecContext(
		ctx,
		`UPDATE users SET weekly_movie_id = $2, weekly_generated_at = $3 WHERE id = $1`,
		userID, movieID, generatedAt,
	)
	return err
}
