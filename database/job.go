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
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// CreateJob inserts a new job in the Created state.
func (d Datasource) CreateJob(j model.Job) (model.Job, error) {
	j.JobID = GenerateUUIDWithSuffix("job")
	j.Status = model.ExecutableCreated
	j.CreatedOn = time.Now()
	j.UpdatedAt = j.CreatedOn

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.jobs (job_id, job_type, status, user_id, created_on, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, j.JobID, j.JobType, j.Status, j.UserID, j.CreatedOn, j.UpdatedAt)
	if err != nil {
		return model.Job{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create job", err)
	}
	return j, nil
}

// GetJobByID retrieves a job together with its tasks in execution order.
func (d Datasource) GetJobByID(id string) (*model.Job, error) {
	row := d.Conn.QueryRow(`
		SELECT job_id, job_type, status, user_id, created_on, updated_at
		FROM doozez.jobs
		WHERE job_id = $1
	`, id)

	job := model.Job{}
	err := row.Scan(&job.JobID, &job.JobType, &job.Status, &job.UserID, &job.CreatedOn, &job.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Job not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve job", err)
	}

	tasks, err := d.GetTasksForJob(job.JobID)
	if err != nil {
		return nil, err
	}
	job.Tasks = tasks
	return &job, nil
}

// ClaimNextJob claims the next runnable job under a row lock. Runnable jobs
// are Created or Running (a Running job is re-claimed so an executor can
// resume a pipeline another process abandoned), newest first. SKIP LOCKED
// keeps concurrent executors from blocking on each other; a nil job means
// there is nothing to run.
func (d Datasource) ClaimNextJob(ctx context.Context) (*model.Job, error) {
	row := d.Conn.QueryRowContext(ctx, `
		UPDATE doozez.jobs
		SET status = $1, updated_at = NOW()
		WHERE job_id = (
			SELECT job_id FROM doozez.jobs
			WHERE status IN ($2, $1)
			ORDER BY created_on DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING job_id, job_type, status, user_id, created_on, updated_at
	`, model.ExecutableRunning, model.ExecutableCreated)

	job := model.Job{}
	err := row.Scan(&job.JobID, &job.JobType, &job.Status, &job.UserID, &job.CreatedOn, &job.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to claim next job", err)
	}
	return &job, nil
}

// UpdateJobStatus persists a job transition.
func (d Datasource) UpdateJobStatus(id string, status model.ExecutableStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.jobs SET status = $2, updated_at = NOW() WHERE job_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update job status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update job status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Job not found", nil)
	}
	return nil
}

// CreateTask inserts a new task in the Pending state.
func (d Datasource) CreateTask(t model.Task) (model.Task, error) {
	t.TaskID = GenerateUUIDWithSuffix("tsk")
	t.Status = model.TaskPending
	t.CreatedOn = time.Now()
	t.UpdatedAt = t.CreatedOn
	if t.Parameters == nil {
		t.Parameters = json.RawMessage("{}")
	}

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.tasks (task_id, job_id, status, task_type, parameters, sequence, created_on, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.TaskID, newNullString(t.JobID), t.Status, t.TaskType, []byte(t.Parameters), t.Sequence, t.CreatedOn, t.UpdatedAt)
	if err != nil {
		return model.Task{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create task", err)
	}
	return t, nil
}

// ClaimNextTaskForJob claims the job's next pending task under a row lock.
// Order is ascending sequence; when two tasks share a sequence, the most
// recently created one goes first. A nil task means the pipeline is drained.
func (d Datasource) ClaimNextTaskForJob(ctx context.Context, jobID string) (*model.Task, error) {
	row := d.Conn.QueryRowContext(ctx, `
		UPDATE doozez.tasks
		SET status = $1, updated_at = NOW()
		WHERE task_id = (
			SELECT task_id FROM doozez.tasks
			WHERE job_id = $2 AND status = $3
			ORDER BY sequence ASC, created_on DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING task_id, job_id, status, task_type, parameters, exceptions, sequence, created_on, updated_at
	`, model.TaskRunning, jobID, model.TaskPending)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to claim next task", err)
	}
	return task, nil
}

// GetTasksForJob returns the job's tasks in execution order.
func (d Datasource) GetTasksForJob(jobID string) ([]model.Task, error) {
	rows, err := d.Conn.Query(`
		SELECT task_id, job_id, status, task_type, parameters, exceptions, sequence, created_on, updated_at
		FROM doozez.tasks
		WHERE job_id = $1
		ORDER BY sequence ASC, created_on DESC
	`, jobID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan task", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating tasks", err)
	}
	return tasks, nil
}

// UpdateTaskStatus persists a task transition.
func (d Datasource) UpdateTaskStatus(id string, status model.TaskStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.tasks SET status = $2, updated_at = NOW() WHERE task_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update task status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update task status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Task not found", nil)
	}
	return nil
}

// RecordTaskFailure persists the Failed status together with the captured
// handler error.
func (d Datasource) RecordTaskFailure(id string, taskErr *model.TaskError) error {
	errJSON, err := json.Marshal(taskErr)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to serialize task error", err)
	}
	result, err := d.Conn.Exec(`
		UPDATE doozez.tasks SET status = $2, exceptions = $3, updated_at = NOW() WHERE task_id = $1
	`, id, model.TaskFailed, errJSON)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record task failure", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record task failure", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Task not found", nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	task := model.Task{}
	var jobID sql.NullString
	var parameters []byte
	var exceptions []byte

	err := row.Scan(&task.TaskID, &jobID, &task.Status, &task.TaskType, &parameters, &exceptions, &task.Sequence, &task.CreatedOn, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	task.JobID = jobID.String
	task.Parameters = parameters
	if len(exceptions) > 0 {
		taskErr := model.TaskError{}
		if err := json.Unmarshal(exceptions, &taskErr); err != nil {
			return nil, err
		}
		task.Errors = &taskErr
	}
	return &task, nil
}

func newNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
