package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/database"
	"github.com/iancarlosortega/gym-tracker/internal/handlers"
	"github.com/iancarlosortega/gym-tracker/internal/middleware"
	"github.com/iancarlosortega/gym-tracker/internal/services"
	"github.com/iancarlosortega/gym-tracker/pkg/cache"
	"github.com/iancarlosortega/gym-tracker/pkg/config"
)

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("Starting gym tracker")

	// Initialize PostgreSQL
	postgresDB, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer postgresDB.Close()

	// Run schema migrations
	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Redis
	redisDB, err := database.NewRedisDB(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisDB.Close()

	// Initialize services
	codec := services.NewTokenCodec(&cfg.Session)
	isProduction := cfg.Server.IsProduction()
	sessions := services.NewSessionStore(codec, &cfg.Session, isProduction)
	oauthClient := services.NewOAuthClient(&cfg.OAuth)
	resolver := services.NewIdentityResolver(postgresDB)

	// Initialize exercise library cache
	var sharedLibrary handlers.SharedLibrary
	var exerciseCache *cache.ExerciseCache
	if cfg.Cache.Enabled {
		exerciseCache = cache.NewExerciseCache(cache.NewCache(redisDB.Client()), postgresDB, cfg.Cache.ExerciseTTL)
		sharedLibrary = exerciseCache

		// The seed migration may have changed the shared library since
		// the last deploy
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := exerciseCache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate exercise cache on startup")
		}
		cancel()
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(oauthClient, resolver, sessions, isProduction)
	exercisesHandler := handlers.NewExercisesHandler(postgresDB, sharedLibrary)
	workoutsHandler := handlers.NewWorkoutsHandler(postgresDB)
	measurementsHandler := handlers.NewMeasurementsHandler(postgresDB)
	profileHandler := handlers.NewProfileHandler(postgresDB)
	healthHandler := handlers.NewHealthHandler(postgresDB, redisDB)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(redisDB, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.WindowDuration)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", middleware.MetricsHandler())

	// Login flow (rate limited)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Limit("login"))
		r.Get("/login/start", authHandler.LoginStart)
		r.Get("/login/callback", authHandler.LoginCallback)
	})
	r.Get("/logout", authHandler.Logout)

	// Page routes go through session-based access control
	pagesHandler := handlers.NewPagesHandler()
	r.Group(func(r chi.Router) {
		r.Use(middleware.AccessControl(sessions))
		r.Get("/*", pagesHandler.Serve)
	})

	// API v1 routes (session required, 401 instead of redirects)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions))

		r.Get("/me", profileHandler.Me)

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", exercisesHandler.List)
			r.Post("/", exercisesHandler.Create)
		})

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", workoutsHandler.List)
			r.Post("/", workoutsHandler.Create)
			r.Get("/{id}", workoutsHandler.Detail)
		})

		r.Route("/measurements", func(r chi.Router) {
			r.Get("/", measurementsHandler.List)
			r.Post("/", measurementsHandler.Create)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully")
}
