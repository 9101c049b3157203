package workflows_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	"github.com/samirrijal/gymdemand/internal/core/usecases"
	"github.com/samirrijal/gymdemand/internal/workflows"
)

func TestScheduler_ScheduleStudyEstimation(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("study-estimation-s1")

	clamp := "clamp"
	params := usecases.EstimateParams{ZeroDistance: clamp}
	c.On("ExecuteWorkflow", mock.Anything,
		mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
			return o.ID == "study-estimation-s1" && o.TaskQueue == "demand-estimation"
		}),
		mock.Anything,
		workflows.StudyEstimationInput{StudyID: "s1", Params: params},
	).Return(run, nil)

	s := workflows.NewScheduler(c, "demand-estimation", params)
	id, err := s.ScheduleStudyEstimation(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "study-estimation-s1", id)
	c.AssertExpectations(t)
}

func TestScheduler_ScheduleStudyEstimationError(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("frontend unavailable"))

	s := workflows.NewScheduler(c, "demand-estimation", usecases.EstimateParams{})
	_, err := s.ScheduleStudyEstimation(context.Background(), "s1")

	assert.ErrorContains(t, err, "frontend unavailable")
}

func TestScheduler_StartRecompute(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return(workflows.RecomputeWorkflowID)
	c.On("ExecuteWorkflow", mock.Anything,
		mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
			return o.ID == workflows.RecomputeWorkflowID
		}),
		mock.Anything,
		workflows.RecomputeInput{Concurrency: 8},
	).Return(run, nil)

	s := workflows.NewScheduler(c, "demand-estimation", usecases.EstimateParams{})
	id, err := s.StartRecompute(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, workflows.RecomputeWorkflowID, id)
}
