package models

// Movie is a catalog row on the server side. StreamingJSON holds the raw
// five-bucket provider payload as stored.
type Movie struct {
	ID            int
	Title         string
	GenreIDs      string
	VoteAverage   float64
	VoteCount     int
	PosterPath    string
	BackdropPath  string
	Overview      string
	Tagline       string
	Director      string
	ReleaseDate   string
	StreamingJSON string
}

// Rating is one user's score for a movie.
type Rating struct {
	UserID  int
	MovieID int
	Title   string
	Value   float64
}
