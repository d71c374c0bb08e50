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

package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doozez/doozez/model"
)

func TestCreateJob_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO doozez.jobs").
		WithArgs(sqlmock.AnyArg(), string(model.JobTypeStartSafe), string(model.ExecutableCreated), "usr_1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateJob(model.Job{JobType: model.JobTypeStartSafe, UserID: "usr_1"})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.JobID)
	assert.Equal(t, model.ExecutableCreated, created.Status)
	assert.WithinDuration(t, time.Now(), created.CreatedOn, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextJob_ClaimsNewestRunnable(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows([]string{"job_id", "job_type", "status", "user_id", "created_on", "updated_at"}).
		AddRow("job_2", string(model.JobTypeStartSafe), string(model.ExecutableRunning), "usr_1", now, now)

	mock.ExpectQuery("UPDATE doozez.jobs").
		WithArgs(string(model.ExecutableRunning), string(model.ExecutableCreated)).
		WillReturnRows(rows)

	job, err := ds.ClaimNextJob(context.Background())
	assert.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "job_2", job.JobID)
	assert.Equal(t, model.ExecutableRunning, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextJob_NilWhenIdle(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("UPDATE doozez.jobs").
		WithArgs(string(model.ExecutableRunning), string(model.ExecutableCreated)).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "job_type", "status", "user_id", "created_on", "updated_at"}))

	job, err := ds.ClaimNextJob(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextTaskForJob_ReturnsClaimedTask(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	params, _ := json.Marshal(model.DrawParams{SafeID: "safe_1"})

	rows := sqlmock.NewRows([]string{"task_id", "job_id", "status", "task_type", "parameters", "exceptions", "sequence", "created_on", "updated_at"}).
		AddRow("tsk_1", "job_1", string(model.TaskRunning), string(model.TaskTypeDraw), params, nil, 3, now, now)

	mock.ExpectQuery("UPDATE doozez.tasks").
		WithArgs(string(model.TaskRunning), "job_1", string(model.TaskPending)).
		WillReturnRows(rows)

	task, err := ds.ClaimNextTaskForJob(context.Background(), "job_1")
	assert.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "tsk_1", task.TaskID)
	assert.Equal(t, model.TaskRunning, task.Status)
	assert.Equal(t, 3, task.Sequence)

	var got model.DrawParams
	require.NoError(t, json.Unmarshal(task.Parameters, &got))
	assert.Equal(t, "safe_1", got.SafeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextTaskForJob_NilWhenDrained(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("UPDATE doozez.tasks").
		WithArgs(string(model.TaskRunning), "job_1", string(model.TaskPending)).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "job_id", "status", "task_type", "parameters", "exceptions", "sequence", "created_on", "updated_at"}))

	task, err := ds.ClaimNextTaskForJob(context.Background(), "job_1")
	assert.NoError(t, err)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTaskFailure_PersistsCapturedError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	taskErr := &model.TaskError{
		Type:      "*errors.fundamental",
		Message:   "mandate not active",
		Traceback: "mandate not active\nstack",
	}
	errJSON, err := json.Marshal(taskErr)
	assert.NoError(t, err)

	mock.ExpectExec("UPDATE doozez.tasks").
		WithArgs("tsk_1", string(model.TaskFailed), errJSON).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, ds.RecordTaskFailure("tsk_1", taskErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTasksForJob_RoundTripsFailureCapture(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	errJSON, _ := json.Marshal(model.TaskError{Type: "timeout", Message: "gateway timeout", Traceback: "gateway timeout"})

	rows := sqlmock.NewRows([]string{"task_id", "job_id", "status", "task_type", "parameters", "exceptions", "sequence", "created_on", "updated_at"}).
		AddRow("tsk_1", "job_1", string(model.TaskFailed), string(model.TaskTypeCreatePayment), []byte("{}"), errJSON, 0, now, now).
		AddRow("tsk_2", "job_1", string(model.TaskPending), string(model.TaskTypeDraw), []byte("{}"), nil, 1, now, now)

	mock.ExpectQuery("SELECT (.+) FROM doozez.tasks").
		WithArgs("job_1").
		WillReturnRows(rows)

	tasks, err := ds.GetTasksForJob("job_1")
	assert.NoError(t, err)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].Errors)
	assert.Equal(t, "gateway timeout", tasks[0].Errors.Message)
	assert.Nil(t, tasks[1].Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}
