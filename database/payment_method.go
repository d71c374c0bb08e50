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

// CreatePaymentMethod inserts a new payment method. When the method is the
// user's default, the previous default is demoted in the same transaction so
// the single-default invariant holds at every commit point.
func (d Datasource) CreatePaymentMethod(pm model.PaymentMethod) (model.PaymentMethod, error) {
	pm.PaymentMethodID = GenerateUUIDWithSuffix("pm")
	pm.CreatedAt = time.Now()
	pm.UpdatedAt = pm.CreatedAt

	tx, err := d.Conn.Begin()
	if err != nil {
		return model.PaymentMethod{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	if pm.IsDefault {
		_, err = tx.Exec(`
			UPDATE doozez.payment_methods SET is_default = FALSE, updated_at = NOW()
			WHERE user_id = $1 AND is_default = TRUE
		`, pm.UserID)
		if err != nil {
			_ = tx.Rollback()
			return model.PaymentMethod{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to demote existing default payment method", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO doozez.payment_methods (payment_method_id, user_id, status, is_default, mandate_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pm.PaymentMethodID, pm.UserID, pm.Status, pm.IsDefault, newNullString(pm.MandateID), pm.CreatedAt, pm.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return model.PaymentMethod{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create payment method", err)
	}

	if err := tx.Commit(); err != nil {
		return model.PaymentMethod{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit payment method", err)
	}
	return pm, nil
}

// GetPaymentMethodByID retrieves a payment method with its mandate.
func (d Datasource) GetPaymentMethodByID(id string) (*model.PaymentMethod, error) {
	row := d.Conn.QueryRow(paymentMethodSelect+` WHERE pm.payment_method_id = $1`, id)
	pm, err := scanPaymentMethod(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Payment method not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment method", err)
	}
	return pm, nil
}

// GetDefaultPaymentMethodForUser returns the user's default payment method,
// or nil when the user has none.
func (d Datasource) GetDefaultPaymentMethodForUser(userID string) (*model.PaymentMethod, error) {
	row := d.Conn.QueryRow(paymentMethodSelect+`
		WHERE pm.user_id = $1 AND pm.is_default = TRUE
	`, userID)

	pm, err := scanPaymentMethod(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve default payment method", err)
	}
	return pm, nil
}

// GetPaymentMethodByMandateExternalID resolves a gateway mandate id to the
// local payment method carrying it. Webhook reconciliation uses this to link
// mandate events back to the owning method.
func (d Datasource) GetPaymentMethodByMandateExternalID(externalID string) (*model.PaymentMethod, error) {
	row := d.Conn.QueryRow(paymentMethodSelect+` WHERE m.external_id = $1`, externalID)
	pm, err := scanPaymentMethod(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment method by mandate", err)
	}
	return pm, nil
}

// UpdatePaymentMethodStatus persists a chain advancement.
func (d Datasource) UpdatePaymentMethodStatus(id string, status model.PaymentMethodStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.payment_methods SET status = $2, updated_at = NOW() WHERE payment_method_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payment method status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payment method status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Payment method not found", nil)
	}
	return nil
}

const paymentMethodSelect = `
	SELECT pm.payment_method_id, pm.user_id, pm.status, pm.is_default, pm.mandate_id, pm.created_at, pm.updated_at,
	       m.mandate_id, m.status, m.scheme, m.external_id
	FROM doozez.payment_methods pm
	LEFT JOIN doozez.mandates m ON pm.mandate_id = m.mandate_id`

func scanPaymentMethod(row rowScanner) (*model.PaymentMethod, error) {
	pm := model.PaymentMethod{}
	var mandateID sql.NullString
	var mID, mStatus, mScheme, mExternalID sql.NullString

	err := row.Scan(&pm.PaymentMethodID, &pm.UserID, &pm.Status, &pm.IsDefault, &mandateID, &pm.CreatedAt, &pm.UpdatedAt,
		&mID, &mStatus, &mScheme, &mExternalID)
	if err != nil {
		return nil, err
	}

	pm.MandateID = mandateID.String
	if mID.Valid {
		pm.Mandate = &model.Mandate{
			MandateID:  mID.String,
			Status:     model.MandateStatus(mStatus.String),
			Scheme:     mScheme.String,
			ExternalID: mExternalID.String,
		}
	}
	return &pm, nil
}
