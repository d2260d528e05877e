package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/avetrov/filmweek/internal/models"
)

// weeklyCooldown is the period during which the weekly pick stays fixed.
const weeklyCooldown = 7 * 24 * time.Hour

// minSourceRating is the lowest user rating a movie needs to seed
// recommendations.
const minSourceRating = 4.0

// failedTitlesCap bounds the rejected-title list in an upload report; the
// overflow is stated in the message.
const failedTitlesCap = 20

// ErrBadCSV is returned when an uploaded ratings file cannot be parsed.
var ErrBadCSV = errors.New("invalid CSV file")

// MovieRepository defines the catalog operations required by the
// recommendation service.
type MovieRepository interface {
	MovieByID(ctx context.Context, id int) (models.Movie, bool, error)
	MovieByTitle(ctx context.Context, title string) (models.Movie, bool, error)
	TopUnrated(ctx context.Context, userID, limit int) ([]models.Movie, error)
}

// RatingRepository defines the rating operations required by the
// recommendation service.
type RatingRepository interface {
	Upsert(ctx context.Context, userID, movieID int, rating float64) error
	HighRated(ctx context.Context, userID int, min float64) ([]models.Rating, error)
}

// WeeklyRepository stores the per-user weekly pick.
type WeeklyRepository interface {
	WeeklyPick(ctx context.Context, userID int) (movieID int, generatedAt time.Time, ok bool, err error)
	SetWeeklyPick(ctx context.Context, userID, movieID int, generatedAt time.Time) error
}

// RecommendService implements batch recommendations, the weekly gate, and
// ratings ingestion.
type RecommendService struct {
	movies  MovieRepository
	ratings RatingRepository
	weekly  WeeklyRepository
	now     func() time.Time
}

// NewRecommendService constructs a RecommendService over the given
// repositories.
func NewRecommendService(movies MovieRepository, ratings RatingRepository, weekly WeeklyRepository) *RecommendService {
	return &RecommendService{movies: movies, ratings: ratings, weekly: weekly, now: time.Now}
}

// weightedScore dampens the raw average by vote count so sparsely rated
// titles do not dominate.
func weightedScore(m models.Movie) float64 {
	return m.VoteAverage * (float64(m.VoteCount) / (float64(m.VoteCount) + 50))
}

// Recommendations returns up to topN ranked candidates for the user. The
// message, when non-empty, is informational for display, not an error.
func (s *RecommendService) Recommendations(ctx context.Context, userID, topN int) ([]models.Recommendation, string, error) {
	high, err := s.ratings.HighRated(ctx, userID, minSourceRating)
	if err != nil {
		return nil, "", fmt.Errorf("load ratings: %w", err)
	}
	if len(high) == 0 {
		return nil, "Rate some movies to get personalized recommendations.", nil
	}

	sources := make([]string, 0, 3)
	for _, r := range high {
		sources = append(sources, r.Title)
		if len(sources) == 3 {
			break
		}
	}
	sourceList := strings.Join(sources, ", ")

	candidates, err := s.movies.TopUnrated(ctx, userID, topN)
	if err != nil {
		return nil, "", fmt.Errorf("load candidates: %w", err)
	}

	out := make([]models.Recommendation, 0, len(candidates))
	for _, m := range candidates {
		out = append(out, models.Recommendation{
			MovieID:       m.ID,
			Title:         m.Title,
			VoteAverage:   m.VoteAverage,
			VoteCount:     m.VoteCount,
			GenreIDs:      m.GenreIDs,
			WeightedScore: weightedScore(m),
			SourceMovies:  sourceList,
			PosterPath:    m.PosterPath,
		})
	}
	return out, "", nil
}

// Weekly returns the current-period pick for the user, generating a new
// one when none exists, the cool-down elapsed, or forceNew is set. A nil
// recommendation with no error is the "none yet" state: the user has no
// qualifying ratings to seed a pick from.
func (s *RecommendService) Weekly(ctx context.Context, userID int, forceNew bool) (*models.WeeklyRecommendation, models.StreamingData, error) {
	pickID, generatedAt, ok, err := s.weekly.WeeklyPick(ctx, userID)
	if err != nil {
		return nil, models.StreamingData{}, fmt.Errorf("load weekly pick: %w", err)
	}

	if ok && !forceNew && s.now().Sub(generatedAt) < weeklyCooldown {
		movie, found, err := s.movies.MovieByID(ctx, pickID)
		if err != nil {
			return nil, models.StreamingData{}, fmt.Errorf("load pick: %w", err)
		}
		if found {
			rec := buildWeekly(movie, false, generatedAt)
			return &rec, parseStreaming(movie.StreamingJSON), nil
		}
		// Pick vanished from the catalog; fall through and regenerate.
	}

	return s.generateWeekly(ctx, userID)
}

func (s *RecommendService) generateWeekly(ctx context.Context, userID int) (*models.WeeklyRecommendation, models.StreamingData, error) {
	high, err := s.ratings.HighRated(ctx, userID, minSourceRating)
	if err != nil {
		return nil, models.StreamingData{}, fmt.Errorf("load ratings: %w", err)
	}
	if len(high) == 0 {
		return nil, models.StreamingData{}, nil
	}
	source := high[0]

	candidates, err := s.movies.TopUnrated(ctx, userID, 1)
	if err != nil {
		return nil, models.StreamingData{}, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, models.StreamingData{}, nil
	}
	movie := candidates[0]

	generatedAt := s.now()
	if err := s.weekly.SetWeeklyPick(ctx, userID, movie.ID, generatedAt); err != nil {
		return nil, models.StreamingData{}, fmt.Errorf("store weekly pick: %w", err)
	}

	rec := buildWeekly(movie, true, generatedAt)
	rec.SourceMovie = source.Title
	rec.UserRating = source.Value
	return &rec, parseStreaming(movie.StreamingJSON), nil
}

func buildWeekly(m models.Movie, isNew bool, generatedAt time.Time) models.WeeklyRecommendation {
	return models.WeeklyRecommendation{
		MovieID:       m.ID,
		Title:         m.Title,
		VoteAverage:   m.VoteAverage,
		VoteCount:     m.VoteCount,
		GenreIDs:      m.GenreIDs,
		PosterPath:    m.PosterPath,
		BackdropPath:  m.BackdropPath,
		Overview:      m.Overview,
		Tagline:       m.Tagline,
		Director:      m.Director,
		ReleaseDate:   m.ReleaseDate,
		IsNew:         isNew,
		GeneratedDate: generatedAt.UTC().Format(time.RFC3339),
	}
}

// parseStreaming decodes the stored provider buckets. Malformed or empty
// stored data yields empty buckets rather than an error.
func parseStreaming(raw string) models.StreamingData {
	var sd models.StreamingData
	if raw == "" {
		return sd
	}
	if err := json.Unmarshal([]byte(raw), &sd); err != nil {
		return models.StreamingData{}
	}
	return sd
}

// Status reports the gating state for the user's weekly pick. The
// declared values always satisfy: can_generate_new implies
// days_until_new == 0.
func (s *RecommendService) Status(ctx context.Context, userID int) (models.WeeklyStatus, error) {
	_, generatedAt, ok, err := s.weekly.WeeklyPick(ctx, userID)
	if err != nil {
		return models.WeeklyStatus{}, fmt.Errorf("load weekly pick: %w", err)
	}
	if !ok {
		return models.WeeklyStatus{HasRecommendation: false, CanGenerateNew: true}, nil
	}

	remaining := weeklyCooldown - s.now().Sub(generatedAt)
	days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return models.WeeklyStatus{
		HasRecommendation: true,
		DaysUntilNew:      days,
		CanGenerateNew:    days == 0,
		LastGenerated:     generatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// IngestCSV parses a Name,Rating file and stores each matched title's
// rating for the user. Unmatched or malformed rows are rejected
// individually; the report caps the rejected-title list and states the
// overflow in the message.
func (s *RecommendService) IngestCSV(ctx context.Context, userID int, file io.Reader) (models.UploadReport, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return models.UploadReport{}, ErrBadCSV
	}
	nameCol, ratingCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name", "title":
			nameCol = i
		case "rating":
			ratingCol = i
		}
	}
	if nameCol < 0 || ratingCol < 0 {
		return models.UploadReport{}, ErrBadCSV
	}

	var report models.UploadReport
	var failed []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.UploadReport{}, ErrBadCSV
		}
		if nameCol >= len(row) || ratingCol >= len(row) {
			report.FailedUploads++
			failed = append(failed, strings.Join(row, ","))
			continue
		}
		title := strings.TrimSpace(row[nameCol])
		value, convErr := strconv.ParseFloat(strings.TrimSpace(row[ratingCol]), 64)
		if title == "" || convErr != nil {
			report.FailedUploads++
			failed = append(failed, title)
			continue
		}

		movie, found, err := s.movies.MovieByTitle(ctx, title)
		if err != nil {
			return models.UploadReport{}, fmt.Errorf("lookup %q: %w", title, err)
		}
		if !found {
			report.FailedUploads++
			failed = append(failed, title)
			continue
		}
		if err := s.ratings.Upsert(ctx, userID, movie.ID, value); err != nil {
			return models.UploadReport{}, fmt.Errorf("store rating for %q: %w", title, err)
		}
		report.SuccessfulUploads++
	}

	report.Message = fmt.Sprintf("Processed %d rows.", report.SuccessfulUploads+report.FailedUploads)
	if len(failed) > failedTitlesCap {
		report.Message += fmt.Sprintf(" %d unmatched titles not shown.", len(failed)-failedTitlesCap)
		failed = failed[:failedTitlesCap]
	}
	report.FailedMovies = failed
	return report, nil
}
