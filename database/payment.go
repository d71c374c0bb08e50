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

// CreatePayment inserts a new payment.
func (d Datasource) CreatePayment(p model.Payment) (model.Payment, error) {
	p.PaymentID = GenerateUUIDWithSuffix("pay")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.payments (payment_id, participation_id, status, amount, currency, charge_date, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.PaymentID, p.ParticipationID, p.Status, p.Amount, p.Currency, newNullTime(p.ChargeDate), newNullString(p.ExternalID), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return model.Payment{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create payment", err)
	}
	return p, nil
}

// GetPaymentByExternalID resolves a gateway payment id to the local payment,
// or nil when the id is unknown.
func (d Datasource) GetPaymentByExternalID(externalID string) (*model.Payment, error) {
	row := d.Conn.QueryRow(`
		SELECT payment_id, participation_id, status, amount, currency, charge_date, external_id, created_at, updated_at
		FROM doozez.payments
		WHERE external_id = $1
	`, externalID)

	p := model.Payment{}
	var chargeDate sql.NullTime
	var extID sql.NullString
	err := row.Scan(&p.PaymentID, &p.ParticipationID, &p.Status, &p.Amount, &p.Currency, &chargeDate, &extID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment", err)
	}
	p.ChargeDate = chargeDate.Time
	p.ExternalID = extID.String
	return &p, nil
}

// UpdatePaymentStatus persists a payment transition.
func (d Datasource) UpdatePaymentStatus(id string, status model.PaymentStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.payments SET status = $2, updated_at = NOW() WHERE payment_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payment status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payment status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Payment not found", nil)
	}
	return nil
}

func newNullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
