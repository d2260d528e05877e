// Package models defines the wire structures shared between the client
// core and the recommendation service.
package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// UserProfile is the identity resolved from a bearer token.
// It is replaced wholesale on every successful session resolution.
type UserProfile struct {
	// ID is the numeric user identifier.
	ID int `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// Email is the address registered for the account.
	Email string `json:"email"`
}

// Recommendation is one ranked candidate from the batch endpoint.
type Recommendation struct {
	MovieID       int     `json:"movie_id"`
	Title         string  `json:"title"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	GenreIDs      string  `json:"genre_ids"`
	WeightedScore float64 `json:"weighted_score"`
	SourceMovies  string  `json:"source_movies"`
	UserRating    float64 `json:"user_rating"`
	PosterPath    string  `json:"poster_path,omitempty"`
}

// WeeklyRecommendation is the single time-gated pick plus its narrative
// metadata. Most fields are optional on the wire.
type WeeklyRecommendation struct {
	MovieID       int     `json:"movie_id"`
	Title         string  `json:"title"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
	VoteCount     int     `json:"vote_count,omitempty"`
	GenreIDs      string  `json:"genre_ids,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	Tagline       string  `json:"tagline,omitempty"`
	Director      string  `json:"director,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	SourceMovie   string  `json:"source_movie,omitempty"`
	UserRating    float64 `json:"user_rating,omitempty"`
	IsNew         bool    `json:"is_new,omitempty"`
	GeneratedDate string  `json:"generated_date,omitempty"`
}

// WeeklyStatus carries the server-declared gating state for the weekly pick.
// The server is authoritative: can_generate_new == true implies
// days_until_new == 0.
type WeeklyStatus struct {
	HasRecommendation bool   `json:"has_recommendation"`
	DaysUntilNew      int    `json:"days_until_new"`
	CanGenerateNew    bool   `json:"can_generate_new"`
	LastGenerated     string `json:"last_generated,omitempty"`
}

// ProviderListing is one streaming-provider entry. On the wire it is a
// three-element array: [name, id, logoPath].
type ProviderListing struct {
	Name     string
	ID       int
	LogoPath string
}

// UnmarshalJSON decodes the [name, id, logoPath] tuple form.
func (p *ProviderListing) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return fmt.Errorf("provider listing: %w", err)
	}
	if len(tuple) != 3 {
		return fmt.Errorf("provider listing: want 3 elements, got %d", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &p.Name); err != nil {
		return fmt.Errorf("provider name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &p.ID); err != nil {
		return fmt.Errorf("provider id: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &p.LogoPath); err != nil {
		return fmt.Errorf("provider logo path: %w", err)
	}
	return nil
}

// MarshalJSON encodes the listing back into its tuple form.
func (p ProviderListing) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Name, p.ID, p.LogoPath})
}

// StreamingData holds the five per-availability-type listing buckets.
// Any bucket may be absent or empty.
type StreamingData struct {
	Free     []ProviderListing `json:"free,omitempty"`
	Flatrate []ProviderListing `json:"flatrate,omitempty"`
	Ads      []ProviderListing `json:"ads,omitempty"`
	Rent     []ProviderListing `json:"rent,omitempty"`
	Buy      []ProviderListing `json:"buy,omitempty"`
}

// Empty reports whether every bucket is empty or absent.
func (s StreamingData) Empty() bool {
	return len(s.Free) == 0 && len(s.Flatrate) == 0 && len(s.Ads) == 0 &&
		len(s.Rent) == 0 && len(s.Buy) == 0
}

// UploadReport is the outcome of a ratings CSV ingestion. FailedMovies is
// capped by the server; FailedUploads is always the exact count.
type UploadReport struct {
	Message           string   `json:"message"`
	SuccessfulUploads int      `json:"successful_uploads"`
	FailedUploads     int      `json:"failed_uploads"`
	FailedMovies      []string `json:"failed_movies"`
}

// TokenResponse is returned by the login and register endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
