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

// InvitationStatus transitions are forward-only: a Pending invitation can be
// Accepted, Declined or RemovedBySender; all three are terminal. Re-inviting
// after a Decline creates a fresh Pending invitation.
type InvitationStatus string

const (
	InvitationPending         InvitationStatus = "PENDING"
	InvitationAccepted        InvitationStatus = "ACCEPTED"
	InvitationDeclined        InvitationStatus = "DECLINED"
	InvitationRemovedBySender InvitationStatus = "REMOVED_BY_SENDER"
)

type Invitation struct {
	InvitationID string           `json:"id"`
	Status       InvitationStatus `json:"status"`
	SenderID     string           `json:"sender_id"`
	RecipientID  string           `json:"recipient_id"`
	SafeID       string           `json:"safe_id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (i *Invitation) transition(to InvitationStatus) error {
	if i.Status != InvitationPending {
		return TransitionError{Entity: "invitation", From: string(i.Status), To: string(to)}
	}
	i.Status = to
	i.UpdatedAt = time.Now()
	return nil
}

func (i *Invitation) Accept() error {
	return i.transition(InvitationAccepted)
}

func (i *Invitation) Decline() error {
	return i.transition(InvitationDeclined)
}

// RemoveBySender withdraws a pending invitation on behalf of its sender.
func (i *Invitation) RemoveBySender() error {
	return i.transition(InvitationRemovedBySender)
}

// IsPending reports whether the invitation still awaits a response.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}
