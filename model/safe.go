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
	"time"

	"github.com/shopspring/decimal"
)

type SafeStatus string

const (
	SafePendingParticipants SafeStatus = "PENDING_PARTICIPANTS"
	SafeStarting            SafeStatus = "STARTING"
	SafeStarted             SafeStatus = "STARTED"
	SafePendingDraw         SafeStatus = "PENDING_DRAW"
	SafePendingEntryPayment SafeStatus = "PENDING_ENTRY_PAYMENT"
	SafeActive              SafeStatus = "ACTIVE"
	SafeComplete            SafeStatus = "COMPLETE"
)

// Safe is one rotating-savings circle.
type Safe struct {
	SafeID            string          `json:"id"`
	Name              string          `json:"name"`
	Status            SafeStatus      `json:"status"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	Currency          string          `json:"currency"`
	TotalParticipants int             `json:"total_participants"`
	InitiatorID       string          `json:"initiator_id"`
	JobID             string          `json:"job_id,omitempty"` // StartSafe job driving startup
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeginStarting moves the safe from PendingParticipants to Starting and
// attaches the StartSafe job driving the transition.
func (s *Safe) BeginStarting(jobID string) error {
	if s.Status != SafePendingParticipants {
		return TransitionError{Entity: "safe", From: string(s.Status), To: string(SafeStarting)}
	}
	s.Status = SafeStarting
	s.JobID = jobID
	s.UpdatedAt = time.Now()
	return nil
}

// MarkStarted moves the safe from Starting to Started. Only the poke
// evaluation calls this, after confirming no pending payments or inactive
// instalments remain.
func (s *Safe) MarkStarted() error {
	if s.Status != SafeStarting {
		return TransitionError{Entity: "safe", From: string(s.Status), To: string(SafeStarted)}
	}
	s.Status = SafeStarted
	s.UpdatedAt = time.Now()
	return nil
}
