package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/gymdemand/internal/core/usecases"
)

// StudyEstimationInput is the input for StudyEstimationWorkflow.
type StudyEstimationInput struct {
	StudyID string
	Params  usecases.EstimateParams
}

// RecomputeInput is the input for RecomputeAllWorkflow.
type RecomputeInput struct {
	Params usecases.EstimateParams
	// Concurrency bounds the estimations in flight. Zero means 4.
	Concurrency int
}

// RecomputeSummary reports the outcome of a batch recomputation.
type RecomputeSummary struct {
	Succeeded []EstimationSummary
	Failed    map[string]string
}

func estimationActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidInput, ErrTypeDegenerateGeometry, ErrTypeNotFound},
		},
	}
}

// StudyEstimationWorkflow estimates one study. Invalid input and degenerate
// geometry fail the workflow without retries.
func StudyEstimationWorkflow(ctx workflow.Context, input StudyEstimationInput) (*EstimationSummary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting study estimation", "studyID", input.StudyID)

	ctx = workflow.WithActivityOptions(ctx, estimationActivityOptions())

	var sum EstimationSummary
	if err := workflow.ExecuteActivity(ctx, ActivityEstimateStudy, input.StudyID, input.Params).Get(ctx, &sum); err != nil {
		return nil, err
	}

	logger.Info("Study estimated", "studyID", input.StudyID, "total", sum.Total)
	return &sum, nil
}

// RecomputeAllWorkflow re-estimates every stored study, at most
// input.Concurrency at a time. A failing study is reported in the summary
// and does not fail the batch.
func RecomputeAllWorkflow(ctx workflow.Context, input RecomputeInput) (*RecomputeSummary, error) {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, estimationActivityOptions())

	var ids []string
	if err := workflow.ExecuteActivity(ctx, ActivityListStudyIDs).Get(ctx, &ids); err != nil {
		return nil, err
	}
	logger.Info("Recomputing studies", "count", len(ids))

	limit := input.Concurrency
	if limit <= 0 {
		limit = 4
	}

	summary := &RecomputeSummary{Failed: map[string]string{}}
	for start := 0; start < len(ids); start += limit {
		end := min(start+limit, len(ids))

		futures := make([]workflow.Future, 0, end-start)
		for _, id := range ids[start:end] {
			futures = append(futures, workflow.ExecuteActivity(ctx, ActivityEstimateStudy, id, input.Params))
		}
		for i, f := range futures {
			id := ids[start+i]
			var sum EstimationSummary
			if err := f.Get(ctx, &sum); err != nil {
				logger.Warn("Study estimation failed", "studyID", id, "error", err)
				summary.Failed[id] = err.Error()
				continue
			}
			summary.Succeeded = append(summary.Succeeded, sum)
		}
	}

	logger.Info("Recompute finished", "succeeded", len(summary.Succeeded), "failed", len(summary.Failed))
	return summary, nil
}
