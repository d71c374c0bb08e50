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

// PaymentMethodStatus mirrors the external mandate lifecycle as a strictly
// forward-progressing chain. ExternalApprovalFailed is a terminal branch off
// the approval step.
type PaymentMethodStatus string

const (
	PaymentMethodPendingExternalApproval    PaymentMethodStatus = "PENDING_EXTERNAL_APPROVAL"
	PaymentMethodExternalApprovalSuccessful PaymentMethodStatus = "EXTERNAL_APPROVAL_SUCCESSFUL"
	PaymentMethodExternalApprovalFailed     PaymentMethodStatus = "EXTERNAL_APPROVAL_FAILED"
	PaymentMethodExternallyCreated          PaymentMethodStatus = "EXTERNALLY_CREATED"
	PaymentMethodExternallySubmitted        PaymentMethodStatus = "EXTERNALLY_SUBMITTED"
	PaymentMethodExternallyActivated        PaymentMethodStatus = "EXTERNALLY_ACTIVATED"
)

// chain positions; ExternalApprovalFailed sits outside the chain.
var paymentMethodChain = map[PaymentMethodStatus]int{
	PaymentMethodPendingExternalApproval:    0,
	PaymentMethodExternalApprovalSuccessful: 1,
	PaymentMethodExternallyCreated:          2,
	PaymentMethodExternallySubmitted:        3,
	PaymentMethodExternallyActivated:        4,
}

type PaymentMethod struct {
	PaymentMethodID string              `json:"id"`
	UserID          string              `json:"user_id"`
	Status          PaymentMethodStatus `json:"status"`
	IsDefault       bool                `json:"is_default"`
	MandateID       string              `json:"mandate_id,omitempty"`
	Mandate         *Mandate            `json:"mandate,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Advance moves the payment method forward along the external lifecycle
// chain. Moving backwards, re-entering the current status, or moving a
// failed method is a transition error.
func (pm *PaymentMethod) Advance(to PaymentMethodStatus) error {
	if to == PaymentMethodExternalApprovalFailed {
		if pm.Status != PaymentMethodPendingExternalApproval {
			return TransitionError{Entity: "payment_method", From: string(pm.Status), To: string(to)}
		}
		pm.Status = to
		pm.UpdatedAt = time.Now()
		return nil
	}

	from, okFrom := paymentMethodChain[pm.Status]
	target, okTo := paymentMethodChain[to]
	if !okFrom || !okTo || target <= from {
		return TransitionError{Entity: "payment_method", From: string(pm.Status), To: string(to)}
	}
	pm.Status = to
	pm.UpdatedAt = time.Now()
	return nil
}

// IsActive reports whether the method can be charged. Only a fully activated
// external mandate counts.
func (pm *PaymentMethod) IsActive() bool {
	return pm.Status == PaymentMethodExternallyActivated
}
