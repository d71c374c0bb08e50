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
	"context"
	"database/sql"
	"time"

	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// CreateParticipation inserts a new participation.
func (d Datasource) CreateParticipation(p model.Participation) (model.Participation, error) {
	p.ParticipationID = GenerateUUIDWithSuffix("ptc")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.participations (participation_id, user_id, safe_id, user_role, status, payment_method_id, win_sequence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ParticipationID, p.UserID, p.SafeID, p.Role, p.Status, newNullString(p.PaymentMethodID), p.WinSequence, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return model.Participation{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create participation", err)
	}
	return p, nil
}

// GetParticipationByID retrieves a participation together with its payment
// method and the method's mandate when present.
func (d Datasource) GetParticipationByID(id string) (*model.Participation, error) {
	row := d.Conn.QueryRow(participationSelect+` WHERE p.participation_id = $1`, id)
	p, err := scanParticipation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Participation not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve participation", err)
	}
	return p, nil
}

// GetActiveParticipationsForSafe returns the safe's participations that have
// not left, in join order, each with its payment method loaded.
func (d Datasource) GetActiveParticipationsForSafe(ctx context.Context, safeID string) ([]model.Participation, error) {
	return d.queryParticipations(ctx, participationSelect+`
		WHERE p.safe_id = $1 AND p.status != $2
		ORDER BY p.created_at ASC
	`, safeID, model.ParticipationLeft)
}

// GetSystemParticipation returns the house participation on the safe, or nil
// if it has not been created yet.
func (d Datasource) GetSystemParticipation(ctx context.Context, safeID string) (*model.Participation, error) {
	row := d.Conn.QueryRowContext(ctx, participationSelect+`
		WHERE p.safe_id = $1 AND p.user_role = $2
	`, safeID, model.RoleSystem)

	p, err := scanParticipation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve system participation", err)
	}
	return p, nil
}

// GetNonSystemParticipations returns the safe's active participations
// excluding the house, in join order. These form the randomized draw pool.
func (d Datasource) GetNonSystemParticipations(ctx context.Context, safeID string) ([]model.Participation, error) {
	return d.queryParticipations(ctx, participationSelect+`
		WHERE p.safe_id = $1 AND p.user_role != $2 AND p.status != $3
		ORDER BY p.created_at ASC
	`, safeID, model.RoleSystem, model.ParticipationLeft)
}

// UpdateParticipationStatus persists a participation transition.
func (d Datasource) UpdateParticipationStatus(id string, status model.ParticipationStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.participations SET status = $2, updated_at = NOW() WHERE participation_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update participation status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update participation status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Participation not found", nil)
	}
	return nil
}

// AssignWinSequences persists a complete draw result in one transaction. The
// draw is all-or-nothing: either every participation gets its payout position
// or none does.
func (d Datasource) AssignWinSequences(ctx context.Context, assignments []WinAssignment) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin draw transaction", err)
	}

	for _, a := range assignments {
		result, err := tx.ExecContext(ctx, `
			UPDATE doozez.participations SET win_sequence = $2, updated_at = NOW() WHERE participation_id = $1
		`, a.ParticipationID, a.WinSequence)
		if err != nil {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to assign win sequence", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to assign win sequence", err)
		}
		if affected == 0 {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrNotFound, "Participation not found", nil)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit draw transaction", err)
	}
	return nil
}

const participationSelect = `
	SELECT p.participation_id, p.user_id, p.safe_id, p.user_role, p.status, p.payment_method_id, p.win_sequence, p.created_at, p.updated_at,
	       pm.payment_method_id, pm.user_id, pm.status, pm.is_default, pm.mandate_id,
	       m.mandate_id, m.status, m.scheme, m.external_id
	FROM doozez.participations p
	LEFT JOIN doozez.payment_methods pm ON p.payment_method_id = pm.payment_method_id
	LEFT JOIN doozez.mandates m ON pm.mandate_id = m.mandate_id`

func (d Datasource) queryParticipations(ctx context.Context, query string, args ...interface{}) ([]model.Participation, error) {
	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve participations", err)
	}
	defer func() { _ = rows.Close() }()

	var participations []model.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan participation", err)
		}
		participations = append(participations, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating participations", err)
	}
	return participations, nil
}

func scanParticipation(row rowScanner) (*model.Participation, error) {
	p := model.Participation{}
	var paymentMethodID sql.NullString
	var winSequence sql.NullInt64
	var pmID, pmUserID, pmStatus, pmMandateID sql.NullString
	var pmIsDefault sql.NullBool
	var mID, mStatus, mScheme, mExternalID sql.NullString

	err := row.Scan(&p.ParticipationID, &p.UserID, &p.SafeID, &p.Role, &p.Status, &paymentMethodID, &winSequence, &p.CreatedAt, &p.UpdatedAt,
		&pmID, &pmUserID, &pmStatus, &pmIsDefault, &pmMandateID,
		&mID, &mStatus, &mScheme, &mExternalID)
	if err != nil {
		return nil, err
	}

	p.PaymentMethodID = paymentMethodID.String
	if winSequence.Valid {
		seq := int(winSequence.Int64)
		p.WinSequence = &seq
	}
	if pmID.Valid {
		p.PaymentMethod = &model.PaymentMethod{
			PaymentMethodID: pmID.String,
			UserID:          pmUserID.String,
			Status:          model.PaymentMethodStatus(pmStatus.String),
			IsDefault:       pmIsDefault.Bool,
			MandateID:       pmMandateID.String,
		}
		if mID.Valid {
			p.PaymentMethod.Mandate = &model.Mandate{
				MandateID:  mID.String,
				Status:     model.MandateStatus(mStatus.String),
				Scheme:     mScheme.String,
				ExternalID: mExternalID.String,
			}
		}
	}
	return &p, nil
}
