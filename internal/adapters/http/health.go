package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check with the model defaults the
// service evaluates with.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		defaults := deps.Demand.Defaults()
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
			"model": fiber.Map{
				"metric":        defaults.Metric,
				"zero_distance": defaults.ZeroDistance,
				"non_negative":  defaults.NonNegative,
				"workers":       defaults.Workers,
			},
		})
	}
}

// readinessCheck probes one dependency. A nil probe means the dependency is
// not configured.
type readinessCheck struct {
	name     string
	required bool
	probe    func(ctx context.Context) error
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	checks := []readinessCheck{
		{name: "database", required: true},
		{name: "nats"},
		{name: "cache"},
		{name: "scheduler"},
	}
	if deps.DB != nil {
		checks[0].probe = deps.DB.Ping
	}
	if deps.NATS != nil {
		nc := deps.NATS
		checks[1].probe = func(context.Context) error {
			if !nc.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}
	if deps.Cache != nil {
		checks[2].probe = deps.Cache.Ping
	}
	if deps.Scheduler != nil {
		checks[3].probe = func(context.Context) error { return nil }
	}
	return checks
}

var errDisconnected = errors.New("disconnected")

// ReadyHandler reports per-dependency status. Only the database gates
// readiness; the event bus, the cache and the scheduler degrade gracefully.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string)
		ready := true
		for _, chk := range readinessChecks(deps) {
			switch {
			case chk.probe == nil:
				results[chk.name] = "not configured"
			default:
				if err := chk.probe(ctx); err != nil {
					results[chk.name] = "error: " + err.Error()
				} else {
					results[chk.name] = "ok"
					continue
				}
			}
			if chk.required {
				ready = false
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
