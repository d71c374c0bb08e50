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

type PaymentStatus string

const (
	PaymentPendingSubmission      PaymentStatus = "PENDING_SUBMISSION"
	PaymentSubmitted              PaymentStatus = "SUBMITTED"
	PaymentConfirmed              PaymentStatus = "CONFIRMED"
	PaymentFailed                 PaymentStatus = "FAILED"
	PaymentCancelled              PaymentStatus = "CANCELLED"
	PaymentCustomerApprovalDenied PaymentStatus = "CUSTOMER_APPROVAL_DENIED"
	PaymentChargedBack            PaymentStatus = "CHARGED_BACK"
)

// Payment is one collection from a participation's mandate.
type Payment struct {
	PaymentID       string          `json:"id"`
	ParticipationID string          `json:"participation_id"`
	Status          PaymentStatus   `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ChargeDate      time.Time       `json:"charge_date"`
	ExternalID      string          `json:"external_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Payment) isTerminal() bool {
	switch p.Status {
	case PaymentConfirmed, PaymentFailed, PaymentCancelled, PaymentCustomerApprovalDenied:
		return true
	}
	return false
}

// Submit records the gateway acknowledging submission.
func (p *Payment) Submit() error {
	if p.Status != PaymentPendingSubmission {
		return TransitionError{Entity: "payment", From: string(p.Status), To: string(PaymentSubmitted)}
	}
	p.Status = PaymentSubmitted
	p.UpdatedAt = time.Now()
	return nil
}

// Confirm records the gateway confirming collection. The confirmation
// webhook can overtake the submission one, so Confirm is legal from both
// PendingSubmission and Submitted.
func (p *Payment) Confirm() error {
	if p.Status != PaymentPendingSubmission && p.Status != PaymentSubmitted {
		return TransitionError{Entity: "payment", From: string(p.Status), To: string(PaymentConfirmed)}
	}
	p.Status = PaymentConfirmed
	p.UpdatedAt = time.Now()
	return nil
}

// MarkFailed moves a non-terminal payment to one of the gateway failure
// outcomes. ChargedBack is additionally legal from Confirmed.
func (p *Payment) MarkFailed(to PaymentStatus) error {
	switch to {
	case PaymentFailed, PaymentCancelled, PaymentCustomerApprovalDenied:
		if p.isTerminal() {
			return TransitionError{Entity: "payment", From: string(p.Status), To: string(to)}
		}
	case PaymentChargedBack:
		if p.Status != PaymentConfirmed {
			return TransitionError{Entity: "payment", From: string(p.Status), To: string(to)}
		}
	default:
		return TransitionError{Entity: "payment", From: string(p.Status), To: string(to)}
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return nil
}
