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

type ParticipantRole string

const (
	RoleInitiator   ParticipantRole = "INITIATOR"
	RoleParticipant ParticipantRole = "PARTICIPANT"
	// RoleSystem is the house account. It holds win_sequence 0 and is paid
	// out first, outside the randomized pool.
	RoleSystem ParticipantRole = "SYSTEM"
)

type ParticipationStatus string

const (
	ParticipationPending        ParticipationStatus = "PENDING"
	ParticipationActive         ParticipationStatus = "ACTIVE"
	ParticipationComplete       ParticipationStatus = "COMPLETE"
	ParticipationPendingPayment ParticipationStatus = "PENDING_PAYMENT"
	ParticipationLeft           ParticipationStatus = "LEFT"
)

// Participation links a user to a safe. WinSequence is nil until the draw
// assigns the payout order.
type Participation struct {
	ParticipationID string              `json:"id"`
	UserID          string              `json:"user_id"`
	SafeID          string              `json:"safe_id"`
	Role            ParticipantRole     `json:"user_role"`
	Status          ParticipationStatus `json:"status"`
	PaymentMethodID string              `json:"payment_method_id,omitempty"`
	PaymentMethod   *PaymentMethod      `json:"payment_method,omitempty"`
	WinSequence     *int                `json:"win_sequence,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Leave marks the participation as Left. Allowed only while the safe has not
// begun starting; the service layer enforces the safe-status precondition.
func (p *Participation) Leave() error {
	if p.Status == ParticipationLeft || p.Status == ParticipationComplete {
		return TransitionError{Entity: "participation", From: string(p.Status), To: string(ParticipationLeft)}
	}
	p.Status = ParticipationLeft
	p.UpdatedAt = time.Now()
	return nil
}
