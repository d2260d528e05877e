// Package main initializes and starts the filmweek recommendation
// service, setting up configuration, logging, database connections,
// repositories, services, and handlers.
package main

import (
	"cmp"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/avetrov/filmweek/internal/config"
	"github.com/avetrov/filmweek/internal/db"
	"github.com/avetrov/filmweek/internal/logger"
	"github.com/avetrov/filmweek/internal/repository"
	"github.com/avetrov/filmweek/internal/server/handler/http"
	"github.com/avetrov/filmweek/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("Info"); err != nil {
		panic(err)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("JWT_SECRET must be set")
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	movieRepo := repository.NewPostgresMovieRepository(postgresDB)
	ratingRepo := repository.NewPostgresRatingRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, options.JWTSecret)
	recommendService := service.NewRecommendService(movieRepo, ratingRepo, userRepo)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	recommendHandler := &http.RecommendHandler{RecommendService: recommendService}
	ratingsHandler := &http.RatingsHandler{IngestService: recommendService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, recommendHandler, ratingsHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
