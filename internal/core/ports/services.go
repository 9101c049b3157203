package ports

import (
	"context"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishEstimate(ctx context.Context, est *domain.DemandEstimate) error
	PublishStudyUpdated(ctx context.Context, studyID string) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeStudyUpdates(ctx context.Context, handler func(ctx context.Context, studyID string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EstimationScheduler hands study estimations to a background orchestrator.
// It returns an identifier of the scheduled run.
type EstimationScheduler interface {
	ScheduleStudyEstimation(ctx context.Context, studyID string) (string, error)
}
