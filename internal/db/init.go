package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    email TEXT NOT NULL,
    password_hash BYTEA NOT NULL,
    weekly_movie_id INTEGER,
    weekly_generated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS movies (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    genre_ids TEXT NOT NULL DEFAULT '',
    vote_average DOUBLE PRECISION NOT NULL DEFAULT 0,
    vote_count INTEGER NOT NULL DEFAULT 0,
    poster_path TEXT NOT NULL DEFAULT '',
    backdrop_path TEXT NOT NULL DEFAULT '',
    overview TEXT NOT NULL DEFAULT '',
    tagline TEXT NOT NULL DEFAULT '',
    director TEXT NOT NULL DEFAULT '',
    release_date TEXT NOT NULL DEFAULT '',
    streaming_json TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS movies_title_lower_idx ON movies (LOWER(title));

CREATE TABLE IF NOT EXISTS ratings (
    user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
    movie_id INTEGER REFERENCES movies(id) ON DELETE CASCADE,
    rating DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (user_id, movie_id)
);
`

// InitPostgres opens the connection, verifies it, and creates the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
