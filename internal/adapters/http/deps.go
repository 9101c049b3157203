package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/gymdemand/internal/adapters/postgres"
	"github.com/samirrijal/gymdemand/internal/adapters/valkey"
	"github.com/samirrijal/gymdemand/internal/core/ports"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Demand  *usecases.DemandService
	Studies *usecases.StudyService
	// Scheduler runs study estimations in the background when a request
	// asks for async=true. Optional.
	Scheduler ports.EstimationScheduler
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
