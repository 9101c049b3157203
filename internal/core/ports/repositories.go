package ports

import (
	"context"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// StudyRepository persists studies and their sites.
type StudyRepository interface {
	// Create inserts a study with its facilities, populations and
	// competitors. An empty ID is assigned by the repository.
	Create(ctx context.Context, study *domain.Study) error
	// ReplaceSites swaps every site of an existing study in one transaction.
	ReplaceSites(ctx context.Context, study *domain.Study) error
	// GetByID returns a study with its sites in insertion order, or
	// domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Study, error)
	List(ctx context.Context) ([]domain.StudySummary, error)
}

// EstimateRepository persists demand estimates.
type EstimateRepository interface {
	Save(ctx context.Context, est *domain.DemandEstimate) error
	// LatestByStudy returns the most recent estimate of a study, or
	// domain.ErrNotFound.
	LatestByStudy(ctx context.Context, studyID string) (*domain.DemandEstimate, error)
}
