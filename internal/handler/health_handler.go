package handler

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service's dependencies are reachable.
type HealthHandler struct {
	checks map[string]Pinger
	names  []string
}

// NewHealthHandler creates a HealthHandler that pings every named dependency, e.g.
// {"database": pool, "bus": events}. Nil entries are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	h := &HealthHandler{checks: make(map[string]Pinger, len(checks))}
	for name, p := range checks {
		if p == nil {
			continue
		}
		h.checks[name] = p
		h.names = append(h.names, name)
	}
	sort.Strings(h.names)
	return h
}

// Check handles GET /health.
// Returns 200 {"status":"healthy","checks":{...}} when every dependency answers and 503 with
// status "unhealthy" as soon as one does not.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	results := make(fiber.Map, len(h.names))
	healthy := true

	for _, name := range h.names {
		if err := h.checks[name].Ping(c.Context()); err != nil {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
				Str("dependency", name).
				Msg("health check failed")
			results[name] = "unreachable"
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"checks": results,
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"checks": results,
	})
}
