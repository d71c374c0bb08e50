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

package database

import (
	"database/sql"
	"time"

	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// CreateInvitation inserts a new pending invitation.
func (d Datasource) CreateInvitation(inv model.Invitation) (model.Invitation, error) {
	inv.InvitationID = GenerateUUIDWithSuffix("inv")
	inv.Status = model.InvitationPending
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.invitations (invitation_id, status, sender_id, recipient_id, safe_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, inv.InvitationID, inv.Status, inv.SenderID, inv.RecipientID, inv.SafeID, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return model.Invitation{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create invitation", err)
	}
	return inv, nil
}

// GetInvitationByID retrieves an invitation by id.
func (d Datasource) GetInvitationByID(id string) (*model.Invitation, error) {
	row := d.Conn.QueryRow(invitationSelect+` WHERE invitation_id = $1`, id)
	inv, err := scanInvitation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Invitation not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve invitation", err)
	}
	return inv, nil
}

// GetPendingInvitationForRecipient finds the recipient's pending invitation on
// a safe, or nil if there is none. At most one can be pending per
// (recipient, safe) pair; the service layer refuses duplicates through this
// lookup before inserting.
func (d Datasource) GetPendingInvitationForRecipient(safeID, recipientID string) (*model.Invitation, error) {
	row := d.Conn.QueryRow(invitationSelect+`
		WHERE safe_id = $1 AND recipient_id = $2 AND status = $3
	`, safeID, recipientID, model.InvitationPending)

	inv, err := scanInvitation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve invitation", err)
	}
	return inv, nil
}

// GetPendingInvitationsForSafe returns every pending invitation on the safe.
func (d Datasource) GetPendingInvitationsForSafe(safeID string) ([]model.Invitation, error) {
	rows, err := d.Conn.Query(invitationSelect+`
		WHERE safe_id = $1 AND status = $2
		ORDER BY created_at ASC
	`, safeID, model.InvitationPending)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve invitations", err)
	}
	defer func() { _ = rows.Close() }()

	var invitations []model.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan invitation", err)
		}
		invitations = append(invitations, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating invitations", err)
	}
	return invitations, nil
}

// UpdateInvitationStatus persists an invitation transition.
func (d Datasource) UpdateInvitationStatus(id string, status model.InvitationStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.invitations SET status = $2, updated_at = NOW() WHERE invitation_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update invitation status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update invitation status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Invitation not found", nil)
	}
	return nil
}

const invitationSelect = `
	SELECT invitation_id, status, sender_id, recipient_id, safe_id, created_at, updated_at
	FROM doozez.invitations`

func scanInvitation(row rowScanner) (*model.Invitation, error) {
	inv := model.Invitation{}
	err := row.Scan(&inv.InvitationID, &inv.Status, &inv.SenderID, &inv.RecipientID, &inv.SafeID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
