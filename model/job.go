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

package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type JobType string

const (
	JobTypeStartSafe JobType = "START_SAFE"
)

// Job is an Executable that owns an ordered pipeline of tasks.
type Job struct {
	Executable
	JobID   string  `json:"id"`
	JobType JobType `json:"job_type"`
	UserID  string  `json:"user_id"`
	Tasks   []Task  `json:"tasks,omitempty"`
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskRunning    TaskStatus = "RUNNING"
	TaskSuccessful TaskStatus = "SUCCESSFUL"
	TaskFailed     TaskStatus = "FAILED"
)

type TaskType string

const (
	TaskTypeDraw              TaskType = "DRAW"
	TaskTypeCreatePayment     TaskType = "CREATE_PAYMENT"
	TaskTypeCreateInstalments TaskType = "CREATE_INSTALMENTS"
	TaskTypeCompleteSafeStart TaskType = "COMPLETE_SAFE_START"
)

// TaskError is the structured failure capture persisted on a failed task:
// the error's type name, its message, and the wrapped stack trace.
type TaskError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Traceback string `json:"traceback"`
}

// Task is one atomic step of a job. Parameters round-trip through storage as
// JSON, so every task type must keep its parameter schema JSON-serializable.
type Task struct {
	TaskID     string          `json:"id"`
	JobID      string          `json:"job_id,omitempty"` // empty for ad-hoc tasks
	Status     TaskStatus      `json:"status"`
	TaskType   TaskType        `json:"task_type"`
	Parameters json.RawMessage `json:"parameters"`
	Errors     *TaskError      `json:"exceptions,omitempty"`
	Sequence   int             `json:"sequence"`
	CreatedOn  time.Time       `json:"created_on"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Start moves the task from Pending to Running.
func (t *Task) Start() error {
	if t.Status != TaskPending {
		return TransitionError{Entity: "task", From: string(t.Status), To: string(TaskRunning)}
	}
	t.Status = TaskRunning
	t.UpdatedAt = time.Now()
	return nil
}

// FinishSuccessfully moves the task from Running to Successful.
func (t *Task) FinishSuccessfully() error {
	if t.Status != TaskRunning {
		return TransitionError{Entity: "task", From: string(t.Status), To: string(TaskSuccessful)}
	}
	t.Status = TaskSuccessful
	t.UpdatedAt = time.Now()
	return nil
}

// FinishWithFailure moves the task from Running to Failed and captures the
// handler error verbatim. The %+v rendering keeps the stack attached by
// pkg/errors wrapping.
func (t *Task) FinishWithFailure(cause error) error {
	if t.Status != TaskRunning {
		return TransitionError{Entity: "task", From: string(t.Status), To: string(TaskFailed)}
	}
	t.Status = TaskFailed
	t.Errors = &TaskError{
		Type:      fmt.Sprintf("%T", cause),
		Message:   cause.Error(),
		Traceback: fmt.Sprintf("%+v", cause),
	}
	t.UpdatedAt = time.Now()
	return nil
}

// DrawParams is the parameter payload of a DRAW task.
type DrawParams struct {
	SafeID string `json:"safe_id"`
}

// CreatePaymentParams is the parameter payload of a CREATE_PAYMENT task.
type CreatePaymentParams struct {
	ParticipationID string          `json:"participation_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

// CreateInstalmentsParams is the parameter payload of a CREATE_INSTALMENTS task.
type CreateInstalmentsParams struct {
	SafeID   string          `json:"safe_id"`
	AppFee   decimal.Decimal `json:"app_fee"`
	Currency string          `json:"currency"`
}

// CompleteSafeStartParams is the parameter payload of a COMPLETE_SAFE_START task.
type CompleteSafeStartParams struct {
	SafeID string `json:"safe_id"`
}
