package repository

import (
	"context"
	"database/sql"

	"github.com/avetrov/filmweek/internal/models"
)

// PostgresRatingRepository implements rating persistence over PostgreSQL.
type PostgresRatingRepository struct {
	DB *sql.DB
}

// NewPostgresRatingRepository creates a new PostgresRatingRepository with
// the given database connection.
func NewPostgresRatingRepository(db *sql.DB) *PostgresRatingRepository {
	return &PostgresRatingRepository{DB: db}
}

// Upsert stores a rating, replacing any previous score the user gave the
// movie.
func (r *PostgresRatingRepository) Upsert(ctx context.Context, userID, movieID int, rating float64) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO ratings (user_id, movie_id, rating) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, movie_id) DO UPDATE SET rating = EXCLUDED.rating`,
		userID, movieID, rating,
	)
	return err
}

// HighRated returns the user's ratings at or above min, best first, with
// the movie titles joined in.
func (r *PostgresRatingRepository) HighRated(ctx context.Context, userID int, min float64) ([]models.Rating, error) {
	rows, err := r.DB.QueryContext(
		ctx,
		`SELECT r.user_id, r.movie_id, m.title, r.rating
		 FROM ratings r JOIN movies m ON m.id = r.movie_id
		 WHERE r.user_id = $1 AND r.rating >= $2
		 ORDER BY r.rating DESC, r.movie_id ASC`,
		userID, min,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Rating
	for rows.Next() {
		var rec models.Rating
		if err := rows.Scan(&rec.UserID, &rec.MovieID, &rec.Title, &rec.Value); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
