package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/gymdemand/internal/core/usecases"
)

// Scheduler implements ports.EstimationScheduler by starting
// StudyEstimationWorkflow on Temporal.
type Scheduler struct {
	client    client.Client
	taskQueue string
	params    usecases.EstimateParams
}

// NewScheduler creates a Scheduler. params are passed to every workflow.
func NewScheduler(c client.Client, taskQueue string, params usecases.EstimateParams) *Scheduler {
	return &Scheduler{client: c, taskQueue: taskQueue, params: params}
}

// StudyWorkflowID is the workflow ID used for a study. Reusing it makes a
// burst of updates to one study collapse into the run already in progress.
func StudyWorkflowID(studyID string) string {
	return "study-estimation-" + studyID
}

// ScheduleStudyEstimation starts (or joins) the estimation workflow of a
// study and returns its workflow ID.
func (s *Scheduler) ScheduleStudyEstimation(ctx context.Context, studyID string) (string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        StudyWorkflowID(studyID),
		TaskQueue: s.taskQueue,
	}, StudyEstimationWorkflow, StudyEstimationInput{StudyID: studyID, Params: s.params})
	if err != nil {
		return "", fmt.Errorf("start estimation workflow: %w", err)
	}
	return run.GetID(), nil
}

// RecomputeWorkflowID is the workflow ID of the batch recomputation.
const RecomputeWorkflowID = "recompute-all-studies"

// StartRecompute starts RecomputeAllWorkflow, or joins the one running.
func (s *Scheduler) StartRecompute(ctx context.Context, concurrency int) (string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        RecomputeWorkflowID,
		TaskQueue: s.taskQueue,
	}, RecomputeAllWorkflow, RecomputeInput{Params: s.params, Concurrency: concurrency})
	if err != nil {
		return "", fmt.Errorf("start recompute workflow: %w", err)
	}
	return run.GetID(), nil
}
