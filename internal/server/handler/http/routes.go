package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/avetrov/filmweek/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler for the recommendation service.
//
// Routes:
//
//	POST /api/auth/register                          → authHandler.Register
//	POST /api/auth/login                             → authHandler.Login
//	GET  /api/auth/me                                → authHandler.Me          (bearer)
//	GET  /api/recommendations                        → recommendHandler.Recommendations (bearer)
//	POST /api/ratings/upload                         → ratingsHandler.Upload   (bearer)
//	GET  /api/recommendations/{userID}               → recommendHandler.UserRecommendations
//	GET  /api/weekly-recommendation/{userID}         → recommendHandler.Weekly
//	GET  /api/weekly-recommendation-status/{userID}  → recommendHandler.WeeklyStatus
//
// The weekly and legacy endpoints tolerate anonymous calls; the client is
// expected to gate them on its own session state.
func NewRouter(
	authHandler *AuthHandler,
	recommendHandler *RecommendHandler,
	ratingsHandler *RatingsHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public credential endpoints: JSON bodies only
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))
			r.Get("/auth/me", authHandler.Me)
			r.Get("/recommendations", recommendHandler.Recommendations)
			r.Post("/ratings/upload", ratingsHandler.Upload)
		})

		// Anonymous-tolerant endpoints addressed by user id
		r.Get("/recommendations/{userID}", recommendHandler.UserRecommendations)
		r.Get("/weekly-recommendation/{userID}", recommendHandler.Weekly)
		r.Get("/weekly-recommendation-status/{userID}", recommendHandler.WeeklyStatus)
	})

	return r
}
