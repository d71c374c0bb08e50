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
	"fmt"

	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/internal/notification"
	"github.com/doozez/doozez/model"
)

// CreateInvitation invites a user into a safe. Only the safe's initiator may
// invite, and a recipient can hold at most one pending invitation per safe;
// re-inviting after a decline is allowed.
func (d *Doozez) CreateInvitation(ctx context.Context, senderID, recipientID, safeID string) (*model.Invitation, error) {
	safe, err := d.datasource.GetSafeByID(ctx, safeID)
	if err != nil {
		return nil, err
	}
	if safe.InitiatorID != senderID {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Only the initiator can invite users to a safe", nil)
	}
	if senderID == recipientID {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Cannot invite yourself", nil)
	}

	existing, err := d.datasource.GetPendingInvitationForRecipient(safeID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("User %s already has a pending invitation for safe %s", recipientID, safeID), nil)
	}

	invitation, err := d.datasource.CreateInvitation(model.Invitation{
		SenderID:    senderID,
		RecipientID: recipientID,
		SafeID:      safeID,
	})
	if err != nil {
		return nil, err
	}

	d.notify(notification.UserPush{
		UserID: recipientID,
		Title:  "Safe invitation",
		Body:   fmt.Sprintf("You have been invited to join %q.", safe.Name),
		Data:   invitation.InvitationID,
	})
	return &invitation, nil
}

// AcceptInvitation accepts on behalf of the recipient, who must supply the
// payment method to participate with. A Participant participation is created
// on the safe.
func (d *Doozez) AcceptInvitation(ctx context.Context, userID, invitationID, paymentMethodID string) (*model.Invitation, error) {
	invitation, err := d.datasource.GetInvitationByID(invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.RecipientID != userID {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Only the recipient can accept an invitation", nil)
	}

	method, err := d.datasource.GetPaymentMethodByID(paymentMethodID)
	if err != nil {
		return nil, err
	}
	if method.UserID != userID {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Payment method belongs to another user", nil)
	}

	if err := invitation.Accept(); err != nil {
		return nil, err
	}
	if _, err := d.datasource.CreateParticipation(model.Participation{
		UserID:          userID,
		SafeID:          invitation.SafeID,
		Role:            model.RoleParticipant,
		Status:          model.ParticipationActive,
		PaymentMethodID: method.PaymentMethodID,
	}); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateInvitationStatus(invitation.InvitationID, invitation.Status); err != nil {
		return nil, err
	}

	d.notify(notification.UserPush{
		UserID: invitation.SenderID,
		Title:  "Invitation accepted",
		Body:   "Your invitation has been accepted.",
		Data:   invitation.InvitationID,
	})
	return invitation, nil
}

// DeclineInvitation declines on behalf of the recipient.
func (d *Doozez) DeclineInvitation(ctx context.Context, userID, invitationID string) (*model.Invitation, error) {
	invitation, err := d.datasource.GetInvitationByID(invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.RecipientID != userID {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Only the recipient can decline an invitation", nil)
	}
	if err := invitation.Decline(); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateInvitationStatus(invitation.InvitationID, invitation.Status); err != nil {
		return nil, err
	}

	d.notify(notification.UserPush{
		UserID: invitation.SenderID,
		Title:  "Invitation declined",
		Body:   "Your invitation has been declined.",
		Data:   invitation.InvitationID,
	})
	return invitation, nil
}

// RemoveInvitation withdraws a pending invitation on behalf of its sender.
func (d *Doozez) RemoveInvitation(ctx context.Context, userID, invitationID string) (*model.Invitation, error) {
	invitation, err := d.datasource.GetInvitationByID(invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.SenderID != userID {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Only the sender can remove an invitation", nil)
	}
	if err := invitation.RemoveBySender(); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateInvitationStatus(invitation.InvitationID, invitation.Status); err != nil {
		return nil, err
	}
	return invitation, nil
}
