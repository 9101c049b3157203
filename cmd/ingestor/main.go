package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	natsadapter "github.com/samirrijal/gymdemand/internal/adapters/nats"
	"github.com/samirrijal/gymdemand/internal/adapters/postgres"
	"github.com/samirrijal/gymdemand/internal/adapters/valkey"
	"github.com/samirrijal/gymdemand/internal/core/ports"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
	"github.com/samirrijal/gymdemand/internal/pkg/config"
	"github.com/samirrijal/gymdemand/internal/pkg/logging"
)

// maxConcurrentStudies bounds parallel imports.
const maxConcurrentStudies = 4

func main() {
	cfg, err := config.Load("gymdemand-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr, valkey.DefaultPrefix); err != nil {
		slog.Warn("valkey unavailable, cached estimates will not be invalidated", "error", err)
	} else {
		defer c.Close()
		cache = c
	}

	var events ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, study updates will not be announced", "error", err)
	} else {
		defer p.Close()
		events = p
	}

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	manifest, err := loadManifest(manifestPath)
	if err != nil {
		log.Fatal(err)
	}

	slog.Info("gym demand study ingestor", "studies", len(manifest.Studies), "source", manifest.Source)

	// Filter studies (optional CLI arg: comma-separated ids or names)
	filter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			filter[strings.TrimSpace(s)] = true
		}
	}

	studies := usecases.NewStudyService(postgres.NewStudyRepo(db), cache, events)

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	sem := make(chan struct{}, maxConcurrentStudies)

	for _, entry := range manifest.Studies {
		if len(filter) > 0 && !filter[entry.key()] {
			continue
		}

		wg.Add(1)
		go func(e StudyEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ingestStudy(ctx, studies, e); err != nil {
				failed.Add(1)
				slog.Error("study import failed", "study", e.key(), "error", err)
			}
		}(entry)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		slog.Error("ingestion finished with failures", "failed", n)
		os.Exit(1)
	}
	slog.Info("ingestion complete")
}

func ingestStudy(ctx context.Context, studies *usecases.StudyService, e StudyEntry) error {
	study, err := e.Study()
	if err != nil {
		return err
	}
	replaced, err := studies.Save(ctx, study)
	if err != nil {
		return err
	}
	slog.Info("study imported",
		"study_id", study.ID,
		"replaced", replaced,
		"name", study.Name,
		"facilities", len(study.Facilities),
		"populations", len(study.Populations),
		"competitors", len(study.Competitors))
	return nil
}
