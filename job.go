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

	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/model"
)

// GetJob retrieves a job with its tasks.
func (d *Doozez) GetJob(id string) (*model.Job, error) {
	return d.datasource.GetJobByID(id)
}

// ExecuteNextRunnableJob is the job executor's poll tick. It claims the next
// runnable job, drains its task pipeline in order, and finalizes the job:
// Successful when every task completed, Failed the moment one task's handler
// fails (remaining tasks stay Pending; there is no automatic resumption).
// Returns the finalized job, or nil when there was nothing to run.
func (d *Doozez) ExecuteNextRunnableJob(ctx context.Context) (*model.Job, error) {
	job, err := d.datasource.ClaimNextJob(ctx)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	log := logrus.WithFields(logrus.Fields{"job_id": job.JobID, "job_type": job.JobType})
	log.Info("executing job")

	for {
		ran, taskErr := d.RunNextRunnableTask(ctx, job.JobID)
		if taskErr != nil {
			log.WithError(taskErr).Warn("task failed, abandoning job")
			if err := job.FinishWithFailure(); err != nil {
				return nil, err
			}
			if err := d.datasource.UpdateJobStatus(job.JobID, job.Status); err != nil {
				return nil, err
			}
			return job, nil
		}
		if !ran {
			break
		}
	}

	if err := job.FinishSuccessfully(); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateJobStatus(job.JobID, job.Status); err != nil {
		return nil, err
	}
	log.Info("job finished")
	return job, nil
}

// CreateJobForStartSafe plans the StartSafe pipeline: one CreatePayment task
// per active non-system participation, with sequence set to its position, and
// a trailing Draw task whose sequence is the participant count, so the draw
// always runs strictly after every payment.
func (d *Doozez) CreateJobForStartSafe(ctx context.Context, safe *model.Safe, userID string) (*model.Job, error) {
	job, err := d.datasource.CreateJob(model.Job{JobType: model.JobTypeStartSafe, UserID: userID})
	if err != nil {
		return nil, err
	}

	participations, err := d.datasource.GetNonSystemParticipations(ctx, safe.SafeID)
	if err != nil {
		return nil, err
	}

	for i, participation := range participations {
		task, err := d.CreateTaskForJob(model.TaskTypeCreatePayment, model.CreatePaymentParams{
			ParticipationID: participation.ParticipationID,
			Amount:          safe.MonthlyPayment,
			Currency:        safe.Currency,
		}, i, job.JobID)
		if err != nil {
			return nil, err
		}
		job.Tasks = append(job.Tasks, task)
	}

	drawTask, err := d.CreateTaskForJob(model.TaskTypeDraw, model.DrawParams{SafeID: safe.SafeID}, len(participations), job.JobID)
	if err != nil {
		return nil, err
	}
	job.Tasks = append(job.Tasks, drawTask)
	return &job, nil
}
