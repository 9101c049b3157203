package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
)

// Activity names as registered from EstimationActivities.
const (
	ActivityEstimateStudy = "EstimateStudy"
	ActivityListStudyIDs  = "ListStudyIDs"
)

// Application error types that the retry policy never retries.
const (
	ErrTypeInvalidInput       = "InvalidInput"
	ErrTypeDegenerateGeometry = "DegenerateGeometry"
	ErrTypeNotFound           = "NotFound"
)

// EstimationSummary is the activity result recorded in workflow history.
type EstimationSummary struct {
	StudyID            string
	EstimateID         string
	Total              float64
	Facilities         int
	NegativeFacilities int
}

// EstimationActivities holds the activity implementations for study
// estimation workflows.
type EstimationActivities struct {
	Demand  *usecases.DemandService
	Studies *usecases.StudyService
}

// EstimateStudy computes, stores and publishes the demand of one study.
func (a *EstimationActivities) EstimateStudy(ctx context.Context, studyID string, params usecases.EstimateParams) (*EstimationSummary, error) {
	logger := activity.GetLogger(ctx)

	est, err := a.Demand.EstimateStudy(ctx, studyID, params)
	if err != nil {
		logger.Warn("study estimation failed", "studyID", studyID, "error", err)
		return nil, activityError(err)
	}

	sum := &EstimationSummary{
		StudyID:    studyID,
		EstimateID: est.ID,
		Total:      est.Total,
		Facilities: len(est.Facilities),
	}
	for _, f := range est.Facilities {
		if f.Demand < 0 {
			sum.NegativeFacilities++
		}
	}
	logger.Info("study estimated", "studyID", studyID, "estimateID", est.ID, "total", est.Total)
	return sum, nil
}

// ListStudyIDs returns the IDs of every stored study.
func (a *EstimationActivities) ListStudyIDs(ctx context.Context) ([]string, error) {
	studies, err := a.Studies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	ids := make([]string, len(studies))
	for i, s := range studies {
		ids[i] = s.ID
	}
	return ids, nil
}

// activityError marks errors that a retry cannot fix as non-retryable.
func activityError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, domain.ErrDegenerateGeometry):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeDegenerateGeometry, err)
	case errors.Is(err, domain.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	}
	return err
}
