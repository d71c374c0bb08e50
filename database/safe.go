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

// CreateSafe inserts a new safe in the PendingParticipants state.
func (d Datasource) CreateSafe(sf model.Safe) (model.Safe, error) {
	sf.SafeID = GenerateUUIDWithSuffix("safe")
	sf.Status = model.SafePendingParticipants
	sf.CreatedAt = time.Now()
	sf.UpdatedAt = sf.CreatedAt

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.safes (safe_id, name, status, monthly_payment, currency, total_participants, initiator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, sf.SafeID, sf.Name, sf.Status, sf.MonthlyPayment, sf.Currency, sf.TotalParticipants, sf.InitiatorID, sf.CreatedAt, sf.UpdatedAt)
	if err != nil {
		return model.Safe{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create safe", err)
	}
	return sf, nil
}

// GetSafeByID retrieves a safe by id.
func (d Datasource) GetSafeByID(ctx context.Context, id string) (*model.Safe, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT safe_id, name, status, monthly_payment, currency, total_participants, initiator_id, job_id, created_at, updated_at
		FROM doozez.safes
		WHERE safe_id = $1
	`, id)

	sf := model.Safe{}
	var jobID sql.NullString
	err := row.Scan(&sf.SafeID, &sf.Name, &sf.Status, &sf.MonthlyPayment, &sf.Currency,
		&sf.TotalParticipants, &sf.InitiatorID, &jobID, &sf.CreatedAt, &sf.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Safe not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve safe", err)
	}
	sf.JobID = jobID.String
	return &sf, nil
}

// UpdateSafe persists the safe's mutable columns after a lifecycle transition.
func (d Datasource) UpdateSafe(ctx context.Context, sf *model.Safe) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE doozez.safes
		SET status = $2, job_id = $3, total_participants = $4, updated_at = NOW()
		WHERE safe_id = $1
	`, sf.SafeID, sf.Status, newNullString(sf.JobID), sf.TotalParticipants)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update safe", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update safe", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Safe not found", nil)
	}
	return nil
}

// CountPendingPaymentsForSafe counts payments on the safe's participations
// still awaiting the gateway (PendingSubmission or Submitted). The poke
// evaluation treats zero as the payment half of the startup condition.
func (d Datasource) CountPendingPaymentsForSafe(ctx context.Context, id string) (int64, error) {
	var count int64
	err := d.Conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM doozez.payments p
		JOIN doozez.participations pt ON p.participation_id = pt.participation_id
		WHERE pt.safe_id = $1 AND p.status IN ($2, $3)
	`, id, model.PaymentPendingSubmission, model.PaymentSubmitted).Scan(&count)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to count pending payments", err)
	}
	return count, nil
}

// CountInactiveInstalmentsForSafe counts instalment schedules on the safe's
// participations the gateway has not yet activated.
func (d Datasource) CountInactiveInstalmentsForSafe(ctx context.Context, id string) (int64, error) {
	var count int64
	err := d.Conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM doozez.instalments i
		JOIN doozez.participations pt ON i.participation_id = pt.participation_id
		WHERE pt.safe_id = $1 AND i.status != $2
	`, id, model.InstalmentActive).Scan(&count)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to count inactive instalments", err)
	}
	return count, nil
}
