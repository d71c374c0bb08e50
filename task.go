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

	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/model"
)

// CreateTaskForJob inserts a Pending task into the job's pipeline.
func (d *Doozez) CreateTaskForJob(taskType model.TaskType, parameters interface{}, sequence int, jobID string) (model.Task, error) {
	payload, err := json.Marshal(parameters)
	if err != nil {
		return model.Task{}, err
	}
	return d.datasource.CreateTask(model.Task{
		JobID:      jobID,
		TaskType:   taskType,
		Parameters: payload,
		Sequence:   sequence,
	})
}

// RunNextRunnableTask claims the job's next pending task under a row lock and
// invokes its handler outside the lock. Returns false when the pipeline has no
// pending task left. A handler failure is captured on the task, persisted, and
// returned to the caller, which treats it as fatal for the whole job.
func (d *Doozez) RunNextRunnableTask(ctx context.Context, jobID string) (bool, error) {
	task, err := d.datasource.ClaimNextTaskForJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	logrus.WithFields(logrus.Fields{
		"task_id":   task.TaskID,
		"task_type": task.TaskType,
		"job_id":    jobID,
		"sequence":  task.Sequence,
	}).Info("running task")

	if handlerErr := d.registry.Run(ctx, task.TaskType, task.Parameters); handlerErr != nil {
		if err := task.FinishWithFailure(handlerErr); err != nil {
			return true, err
		}
		if err := d.datasource.RecordTaskFailure(task.TaskID, task.Errors); err != nil {
			return true, err
		}
		return true, handlerErr
	}

	if err := task.FinishSuccessfully(); err != nil {
		return true, err
	}
	if err := d.datasource.UpdateTaskStatus(task.TaskID, task.Status); err != nil {
		return true, err
	}
	return true, nil
}
