package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avetrov/filmweek/internal/models"
)

// PostgresMovieRepository implements catalog lookups over PostgreSQL.
type PostgresMovieRepository struct {
	DB *sql.DB
}

// NewPostgresMovieRepository creates a new PostgresMovieRepository with
// the given database connection.
func NewPostgresMovieRepository(db *sql.DB) *PostgresMovieRepository {
	return &PostgresMovieRepository{DB: db}
}

const movieColumns = `id, title, genre_ids, vote_average, vote_count, poster_path,
	backdrop_path, overview, tagline, director, release_date, streaming_json`

func scanMovie(row *sql.Row) (models.Movie, bool, error) {
	var m models.Movie
	err := row.Scan(&m.ID, &m.Title, &m.GenreIDs, &m.VoteAverage, &m.VoteCount,
		&m.PosterPath, &m.BackdropPath, &m.Overview, &m.Tagline, &m.Director,
		&m.ReleaseDate, &m.StreamingJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Movie{}, false, nil
	}
	if err != nil {
		return models.Movie{}, false, err
	}
	return m, true, nil
}

// MovieByID returns the movie with the given id, ok=false when absent.
func (r *PostgresMovieRepository) MovieByID(ctx context.Context, id int) (models.Movie, bool, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	return scanMovie(row)
}

// MovieByTitle returns the movie matching the title case-insensitively,
// ok=false when absent.
func (r *PostgresMovieRepository) MovieByTitle(ctx context.Context, title string) (models.Movie, bool, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE LOWER(title) = LOWER($1)`, title)
	return scanMovie(row)
}

// TopUnrated returns up to limit movies the user has not rated, ordered by
// vote-count-weighted average rating descending, id ascending for ties.
func (r *PostgresMovieRepository) TopUnrated(ctx context.Context, userID, limit int) ([]models.Movie, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+movieColumns+`
		 FROM movies
		 WHERE id NOT IN (SELECT movie_id FROM ratings WHERE user_id = $1)
		 ORDER BY vote_average * (vote_count::float / (vote_count + 50)) DESC, id ASC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.GenreIDs, &m.VoteAverage, &m.VoteCount,
			&m.PosterPath, &m.BackdropPath, &m.Overview, &m.Tagline, &m.Director,
			&m.ReleaseDate, &m.StreamingJSON); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
