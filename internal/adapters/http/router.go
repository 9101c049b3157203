package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/gymdemand/internal/pkg/metrics"
)

const (
	// estimateTimeout bounds a single REST request, including a synchronous
	// study estimation.
	estimateTimeout = 30 * time.Second

	rateLimitPerMinute = 120
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(requestid.New())
	app.Use(RequestContextMiddleware())
	app.Use(AccessLogMiddleware())
	app.Use(rateLimiter())
	app.Use(securityHeaders)
	app.Use(etag.New(etag.Config{Weak: true}))
	app.Use(CachingMiddleware())

	// no timeout: fast internal checks
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	registerREST(app.Group("/v1"), deps)

	app.Post("/graphql", GraphQLHandler(deps))
	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

func registerREST(v1 fiber.Router, deps *Dependencies) {
	bounded := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, estimateTimeout)
	}

	v1.Post("/estimates", bounded(EstimateHandler(deps)))

	studies := v1.Group("/studies")
	studies.Get("/", bounded(ListStudiesHandler(deps)))
	studies.Post("/", bounded(CreateStudyHandler(deps)))
	studies.Get("/:id", bounded(GetStudyHandler(deps)))
	studies.Post("/:id/estimate", bounded(EstimateStudyHandler(deps)))
	studies.Get("/:id/estimate", bounded(LatestEstimateHandler(deps)))
}

// rateLimiter allows rateLimitPerMinute requests per client IP.
func rateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        rateLimitPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	})
}

func securityHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set(fiber.HeaderReferrerPolicy, "strict-origin-when-cross-origin")
	c.Set("X-API-Version", "1.0.0")
	return c.Next()
}
