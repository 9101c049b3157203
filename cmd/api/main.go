package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	"github.com/samirrijal/gymdemand/internal/adapters/http"
	natsadapter "github.com/samirrijal/gymdemand/internal/adapters/nats"
	"github.com/samirrijal/gymdemand/internal/adapters/postgres"
	"github.com/samirrijal/gymdemand/internal/adapters/valkey"
	"github.com/samirrijal/gymdemand/internal/core/ports"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
	"github.com/samirrijal/gymdemand/internal/pkg/config"
	"github.com/samirrijal/gymdemand/internal/pkg/logging"
	"github.com/samirrijal/gymdemand/internal/pkg/telemetry"
	"github.com/samirrijal/gymdemand/internal/workflows"
)

const (
	poolStatsInterval = 15 * time.Second
	shutdownGrace     = 10 * time.Second
	maxBodyBytes      = 16 << 20 // inline site tables
)

func main() {
	cfg, err := config.Load("gymdemand-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("api exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, poolStatsInterval)

	deps := &http.Dependencies{DB: db}

	// Optional infrastructure: each missing piece only disables a feature.
	var cache ports.CacheService
	if vk, err := valkey.New(cfg.Valkey.Addr, valkey.DefaultPrefix); err != nil {
		slog.Warn("valkey unavailable, latest estimates are read from the database", "error", err)
	} else {
		defer vk.Close()
		cache, deps.Cache = vk, vk
	}

	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events are not published", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats relay unavailable, /ws is disabled", "error", err)
	} else {
		defer nc.Close()
		deps.NATS = nc
	}

	if tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	}); err != nil {
		slog.Warn("temporal unavailable, async estimation disabled", "error", err)
	} else {
		defer tc.Close()
		deps.Scheduler = workflows.NewScheduler(tc, cfg.Temporal.TaskQueue, usecases.EstimateParams{})
	}

	demandCfg, err := usecases.NewDemandConfig(cfg.Model)
	if err != nil {
		return fmt.Errorf("model config: %w", err)
	}
	studyRepo := postgres.NewStudyRepo(db)
	deps.Demand = usecases.NewDemandService(studyRepo, postgres.NewEstimateRepo(db), cache, events, demandCfg)
	deps.Studies = usecases.NewStudyService(studyRepo, cache, events)

	app := newApp(cfg.Server)
	http.SetupRoutes(app, deps)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	return nil
}

func newApp(sc config.ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Duration(sc.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(sc.WriteTimeout) * time.Second,
		BodyLimit:             maxBodyBytes,
		AppName:               "Gym Demand API",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://localhost:5173",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))
	return app
}
