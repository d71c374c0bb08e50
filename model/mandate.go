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

type MandateStatus string

const (
	MandatePendingCustomerApproval MandateStatus = "PENDING_CUSTOMER_APPROVAL"
	MandatePendingSubmission       MandateStatus = "PENDING_SUBMISSION"
	MandateSubmitted               MandateStatus = "SUBMITTED"
	MandateActive                  MandateStatus = "ACTIVE"
	MandateFailed                  MandateStatus = "FAILED"
	MandateCancelled               MandateStatus = "CANCELLED"
	MandateExpired                 MandateStatus = "EXPIRED"
	MandateConsumed                MandateStatus = "CONSUMED"
)

// Mandate tracks a direct-debit mandate held at the payment gateway.
type Mandate struct {
	MandateID  string        `json:"id"`
	Status     MandateStatus `json:"status"`
	Scheme     string        `json:"scheme"`
	ExternalID string        `json:"external_id"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Submit is legal only from PendingSubmission.
func (m *Mandate) Submit() error {
	if m.Status != MandatePendingSubmission {
		return TransitionError{Entity: "mandate", From: string(m.Status), To: string(MandateSubmitted)}
	}
	m.Status = MandateSubmitted
	m.UpdatedAt = time.Now()
	return nil
}

// Activate is legal only from Submitted.
func (m *Mandate) Activate() error {
	if m.Status != MandateSubmitted {
		return TransitionError{Entity: "mandate", From: string(m.Status), To: string(MandateActive)}
	}
	m.Status = MandateActive
	m.UpdatedAt = time.Now()
	return nil
}

// Terminate moves the mandate to one of the gateway-reported terminal
// failure states.
func (m *Mandate) Terminate(to MandateStatus) error {
	switch to {
	case MandateFailed, MandateCancelled, MandateExpired:
	default:
		return TransitionError{Entity: "mandate", From: string(m.Status), To: string(to)}
	}
	switch m.Status {
	case MandateFailed, MandateCancelled, MandateExpired, MandateConsumed:
		return TransitionError{Entity: "mandate", From: string(m.Status), To: string(to)}
	}
	m.Status = to
	m.UpdatedAt = time.Now()
	return nil
}
