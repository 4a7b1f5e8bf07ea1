package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/database"
	"github.com/iancarlosortega/gym-tracker/internal/middleware"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// HealthHandler handles health check endpoints for monitoring and
// orchestration. Provides a simple liveness check and a readiness
// check that verifies connectivity to PostgreSQL and Redis.
type HealthHandler struct {
	postgres *database.PostgresDB
	redis    *database.RedisDB
}

// NewHealthHandler creates a new health handler.
//
// Example:
//
//	healthHandler := handlers.NewHealthHandler(postgresDB, redisDB)
//	r.Get("/health", healthHandler.Health)
//	r.Get("/ready", healthHandler.Ready)
func NewHealthHandler(postgres *database.PostgresDB, redis *database.RedisDB) *HealthHandler {
	return &HealthHandler{
		postgres: postgres,
		redis:    redis,
	}
}

// HealthResponse represents the health check response structure.
//
// JSON example:
//
//	{
//	  "status": "ok",
//	  "timestamp": "2026-01-20T14:30:00Z",
//	  "services": {
//	    "postgres": "healthy",
//	    "redis": "healthy"
//	  }
//	}
type HealthResponse struct {
	Status    string            `json:"status"`             // "ok" or "degraded"
	Timestamp time.Time         `json:"timestamp"`          // Current server time
	Services  map[string]string `json:"services,omitempty"` // Individual service health (readiness only)
}

// Health is the liveness probe. Always returns 200 OK without
// touching dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	}

	utils.RespondWithJSON(w, r, http.StatusOK, response)
}

// Ready is the readiness probe. Verifies PostgreSQL and Redis
// connectivity with a 5-second timeout; returns 503 when either is
// down so load balancers pull the instance.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	allHealthy := true

	start := time.Now()
	if err := h.postgres.Ping(ctx); err != nil {
		middleware.RecordDBQuery("postgres", "PING", "error", time.Since(start))
		log.Error().Err(err).Msg("PostgreSQL health check failed")
		services["postgres"] = "unhealthy"
		allHealthy = false
	} else {
		middleware.RecordDBQuery("postgres", "PING", "success", time.Since(start))
		services["postgres"] = "healthy"
	}

	start = time.Now()
	if err := h.redis.Ping(ctx); err != nil {
		middleware.RecordDBQuery("redis", "PING", "error", time.Since(start))
		log.Error().Err(err).Msg("Redis health check failed")
		services["redis"] = "unhealthy"
		allHealthy = false
	} else {
		middleware.RecordDBQuery("redis", "PING", "success", time.Since(start))
		services["redis"] = "healthy"
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Services:  services,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, r, statusCode, response)
}
