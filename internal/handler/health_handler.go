package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daniswara/kumpul-api/internal/config"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// HealthProbe checks the availability of a single backing dependency.
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Uptime      string            `json:"uptime"`
	Checks      map[string]string `json:"checks,omitempty"`
}

var startedAt = time.Now()

// HealthCheck returns a handler that reports application health. Each probe
// runs with a short deadline; a failing probe degrades the overall status
// without taking the endpoint down.
func HealthCheck(cfg config.Config, probes ...HealthProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Uptime:      time.Since(startedAt).Round(time.Second).String(),
		}

		if len(probes) > 0 {
			payload.Checks = make(map[string]string, len(probes))
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()

			for _, probe := range probes {
				if probe.Check == nil {
					continue
				}
				if err := probe.Check(ctx); err != nil {
					payload.Checks[probe.Name] = err.Error()
					payload.Status = "degraded"
					continue
				}
				payload.Checks[probe.Name] = "ok"
			}
		}

		status := fiber.StatusOK
		if payload.Status != "ok" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(utils.APIResponse{
			Success: payload.Status == "ok",
			Message: "service health",
			Data:    payload,
		})
	}
}
