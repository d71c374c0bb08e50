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

import "time"

type InstalmentStatus string

const (
	InstalmentPending        InstalmentStatus = "PENDING"
	InstalmentActive         InstalmentStatus = "ACTIVE"
	InstalmentCreationFailed InstalmentStatus = "CREATION_FAILED"
	InstalmentCompleted      InstalmentStatus = "COMPLETED"
	InstalmentCancelled      InstalmentStatus = "CANCELLED"
	InstalmentErrored        InstalmentStatus = "ERRORED"
)

// Instalment tracks one gateway instalment schedule for a participation.
type Instalment struct {
	InstalmentID    string           `json:"id"`
	ParticipationID string           `json:"participation_id"`
	Status          InstalmentStatus `json:"status"`
	Name            string           `json:"name"`
	ExternalID      string           `json:"external_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Activate records the gateway activating the schedule.
func (i *Instalment) Activate() error {
	if i.Status != InstalmentPending {
		return TransitionError{Entity: "instalment", From: string(i.Status), To: string(InstalmentActive)}
	}
	i.Status = InstalmentActive
	i.UpdatedAt = time.Now()
	return nil
}

// MarkCreationFailed records the gateway rejecting schedule creation.
func (i *Instalment) MarkCreationFailed() error {
	if i.Status != InstalmentPending {
		return TransitionError{Entity: "instalment", From: string(i.Status), To: string(InstalmentCreationFailed)}
	}
	i.Status = InstalmentCreationFailed
	i.UpdatedAt = time.Now()
	return nil
}
