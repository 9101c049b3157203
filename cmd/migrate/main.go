package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/samirrijal/gymdemand/internal/adapters/postgres"
	"github.com/samirrijal/gymdemand/internal/pkg/config"
	"github.com/samirrijal/gymdemand/internal/pkg/logging"
)

const usage = "usage: migrate <up|down [n]|version|force <version>>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load("gymdemand-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	source := postgres.DefaultMigrationsPath
	if s := os.Getenv("GYMDEMAND_MIGRATIONS"); s != "" {
		source = s
	}

	m, err := postgres.NewMigrator(source, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("migrator: %v", err)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil {
				log.Fatalf("down: invalid step count %q", os.Args[2])
			}
		}
		err = m.Down(steps)
	case "version":
		var (
			v     uint
			dirty bool
		)
		if v, dirty, err = m.Version(); err == nil {
			fmt.Printf("version %d (dirty=%t)\n", v, dirty)
		}
	case "force":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		v, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatalf("force: invalid version %q", os.Args[2])
		}
		err = m.Force(v)
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}
	if err != nil {
		slog.Error("migration failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}

	slog.Info("migration complete", "command", os.Args[1])
}
