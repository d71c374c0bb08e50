/*
Copyright 2024 Doozez Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package doozez

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doozez/doozez/model"
)

func runningJob(id string) *model.Job {
	job := &model.Job{JobID: id, JobType: model.JobTypeStartSafe, UserID: "usr_1"}
	job.Status = model.ExecutableRunning
	return job
}

func pendingTask(id string, taskType model.TaskType, sequence int, params interface{}) *model.Task {
	payload, _ := json.Marshal(params)
	return &model.Task{
		TaskID:     id,
		JobID:      "job_1",
		Status:     model.TaskRunning, // claimed by the datasource
		TaskType:   taskType,
		Parameters: payload,
		Sequence:   sequence,
	}
}

func TestExecuteNextRunnableJob_NilWhenIdle(t *testing.T) {
	d, ds, _ := newTestService(t)
	ds.On("ClaimNextJob", mock.Anything).Return(nil, nil)

	job, err := d.ExecuteNextRunnableJob(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestExecuteNextRunnableJob_RunsTasksInOrder(t *testing.T) {
	d, ds, _ := newTestService(t)

	var executed []string
	d.registry = NewTaskRegistry()
	d.registry.Register(model.TaskTypeDraw, func(ctx context.Context, parameters json.RawMessage) error {
		var params model.DrawParams
		require.NoError(t, json.Unmarshal(parameters, &params))
		executed = append(executed, params.SafeID)
		return nil
	})

	ds.On("ClaimNextJob", mock.Anything).Return(runningJob("job_1"), nil)
	ds.On("ClaimNextTaskForJob", mock.Anything, "job_1").
		Return(pendingTask("tsk_1", model.TaskTypeDraw, 0, model.DrawParams{SafeID: "first"}), nil).Once()
	ds.On("ClaimNextTaskForJob", mock.Anything, "job_1").
		Return(pendingTask("tsk_2", model.TaskTypeDraw, 1, model.DrawParams{SafeID: "second"}), nil).Once()
	ds.On("ClaimNextTaskForJob", mock.Anything, "job_1").Return(nil, nil).Once()
	ds.On("UpdateTaskStatus", "tsk_1", model.TaskSuccessful).Return(nil)
	ds.On("UpdateTaskStatus", "tsk_2", model.TaskSuccessful).Return(nil)
	ds.On("UpdateJobStatus", "job_1", model.ExecutableSuccessful).Return(nil)

	job, err := d.ExecuteNextRunnableJob(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, model.ExecutableSuccessful, job.Status)
	assert.Equal(t, []string{"first", "second"}, executed)
	ds.AssertExpectations(t)
}

func TestExecuteNextRunnableJob_TaskFailureFailsJob(t *testing.T) {
	d, ds, _ := newTestService(t)

	handlerErr := errors.New("gateway rejected the mandate")
	d.registry = NewTaskRegistry()
	d.registry.Register(model.TaskTypeCreatePayment, func(ctx context.Context, parameters json.RawMessage) error {
		return handlerErr
	})

	var captured *model.TaskError
	ds.On("ClaimNextJob", mock.Anything).Return(runningJob("job_1"), nil)
	ds.On("ClaimNextTaskForJob", mock.Anything, "job_1").
		Return(pendingTask("tsk_1", model.TaskTypeCreatePayment, 0, model.CreatePaymentParams{}), nil).Once()
	ds.On("RecordTaskFailure", "tsk_1", mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*model.TaskError)
	}).Return(nil)
	ds.On("UpdateJobStatus", "job_1", model.ExecutableFailed).Return(nil)

	job, err := d.ExecuteNextRunnableJob(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, model.ExecutableFailed, job.Status)

	require.NotNil(t, captured)
	assert.Equal(t, "*errors.fundamental", captured.Type)
	assert.Equal(t, "gateway rejected the mandate", captured.Message)
	assert.Contains(t, captured.Traceback, "gateway rejected the mandate")

	// the remaining tasks are never claimed once one handler fails
	ds.AssertNumberOfCalls(t, "ClaimNextTaskForJob", 1)
}

func TestRunNextRunnableTask_UnknownTypeIsFatal(t *testing.T) {
	d, ds, _ := newTestService(t)
	d.registry = NewTaskRegistry()

	var captured *model.TaskError
	ds.On("ClaimNextTaskForJob", mock.Anything, "job_1").
		Return(pendingTask("tsk_1", model.TaskType("REBALANCE"), 0, nil), nil).Once()
	ds.On("RecordTaskFailure", "tsk_1", mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*model.TaskError)
	}).Return(nil)

	ran, err := d.RunNextRunnableTask(context.Background(), "job_1")
	require.Error(t, err)
	assert.True(t, ran)
	assert.IsType(t, UnknownTaskTypeError{}, err)
	require.NotNil(t, captured)
	assert.Equal(t, "doozez.UnknownTaskTypeError", captured.Type)
}

func TestCreateJobForStartSafe_PlansPaymentsThenDraw(t *testing.T) {
	d, ds, _ := newTestService(t)
	safe := &model.Safe{
		SafeID:         "safe_1",
		Name:           "holiday club",
		MonthlyPayment: decimal.NewFromInt(25),
		Currency:       "GBP",
	}
	participants := drawParticipants(3)

	var planned []model.Task
	ds.On("CreateJob", mock.Anything).Return(model.Job{JobID: "job_1", JobType: model.JobTypeStartSafe, UserID: "usr_1"}, nil)
	ds.On("GetNonSystemParticipations", mock.Anything, "safe_1").Return(participants, nil)
	ds.On("CreateTask", mock.Anything).Run(func(args mock.Arguments) {
		planned = append(planned, args.Get(0).(model.Task))
	}).Return(model.Task{}, nil)

	job, err := d.CreateJobForStartSafe(context.Background(), safe, "usr_1")
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Len(t, planned, 4)

	for i := 0; i < 3; i++ {
		assert.Equal(t, model.TaskTypeCreatePayment, planned[i].TaskType)
		assert.Equal(t, i, planned[i].Sequence)

		var params model.CreatePaymentParams
		require.NoError(t, json.Unmarshal(planned[i].Parameters, &params))
		assert.Equal(t, participants[i].ParticipationID, params.ParticipationID)
		assert.True(t, params.Amount.Equal(safe.MonthlyPayment))
		assert.Equal(t, "GBP", params.Currency)
	}

	assert.Equal(t, model.TaskTypeDraw, planned[3].TaskType)
	assert.Equal(t, 3, planned[3].Sequence)

	var drawParams model.DrawParams
	require.NoError(t, json.Unmarshal(planned[3].Parameters, &drawParams))
	assert.Equal(t, "safe_1", drawParams.SafeID)
}
