package server

import (
	"context"
	"time"

	"yatube/internal/database"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 5 * time.Second

// LivenessCheck reports that the process serves requests.
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string}
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now()})
}

// ReadinessCheck pings the database and Redis. Running without Redis is a
// supported mode, reported as "unavailable" without failing the probe.
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string}
// @Failure 503 {object} object{status=string}
// @Router /health/ready [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	checks := fiber.Map{
		"database": probe(func() error { return database.Ping(ctx, s.db) }),
		"redis":    "unavailable",
	}
	if s.redis != nil {
		checks["redis"] = probe(func() error { return s.redis.Ping(ctx).Err() })
	}

	status, overall := fiber.StatusOK, "healthy"
	for _, v := range checks {
		if v == "unhealthy" {
			status, overall = fiber.StatusServiceUnavailable, "unhealthy"
		}
	}
	return c.Status(status).JSON(fiber.Map{"status": overall, "checks": checks, "time": time.Now()})
}

func probe(ping func() error) string {
	if ping() != nil {
		return "unhealthy"
	}
	return "healthy"
}
