package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

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

func main() {
	cfg, err := config.Load("gymdemand-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	scheduler := workflows.NewScheduler(c, cfg.Temporal.TaskQueue, usecases.EstimateParams{})

	// worker recompute [concurrency]: start a batch recomputation and exit.
	if len(os.Args) > 1 && os.Args[1] == "recompute" {
		concurrency := 0
		if len(os.Args) > 2 {
			if concurrency, err = strconv.Atoi(os.Args[2]); err != nil {
				log.Fatalf("recompute: invalid concurrency %q", os.Args[2])
			}
		}
		id, err := scheduler.StartRecompute(ctx, concurrency)
		if err != nil {
			log.Fatalf("recompute: %v", err)
		}
		slog.Info("recompute workflow started", "workflow_id", id)
		return
	}

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
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if vk, err := valkey.New(cfg.Valkey.Addr, valkey.DefaultPrefix); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vk.Close()
		cache = vk
	}

	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, estimates will not be published", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	demandCfg, err := usecases.NewDemandConfig(cfg.Model)
	if err != nil {
		log.Fatalf("model config: %v", err)
	}
	studyRepo := postgres.NewStudyRepo(db)
	demandSvc := usecases.NewDemandService(studyRepo, postgres.NewEstimateRepo(db), cache, events, demandCfg)
	studySvc := usecases.NewStudyService(studyRepo, cache, events)

	// Study updates start one estimation workflow each.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, study updates will not trigger estimations", "error", err)
	} else {
		defer sub.Close()
		if err := subscribeUpdates(ctx, sub, scheduler); err != nil {
			slog.Warn("subscribe study updates failed", "error", err)
		}
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflows & activities
	w.RegisterWorkflow(workflows.StudyEstimationWorkflow)
	w.RegisterWorkflow(workflows.RecomputeAllWorkflow)
	w.RegisterActivity(&workflows.EstimationActivities{
		Demand:  demandSvc,
		Studies: studySvc,
	})

	slog.Info("estimation worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func subscribeUpdates(ctx context.Context, sub ports.EventSubscriber, scheduler ports.EstimationScheduler) error {
	return sub.SubscribeStudyUpdates(ctx, func(ctx context.Context, studyID string) error {
		id, err := scheduler.ScheduleStudyEstimation(ctx, studyID)
		if err != nil {
			return err
		}
		slog.Debug("estimation scheduled", "study_id", studyID, "workflow_id", id)
		return nil
	})
}
