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

// CreateMandate inserts a new mandate.
func (d Datasource) CreateMandate(m model.Mandate) (model.Mandate, error) {
	m.MandateID = GenerateUUIDWithSuffix("mdt")
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.mandates (mandate_id, status, scheme, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.MandateID, m.Status, m.Scheme, newNullString(m.ExternalID), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return model.Mandate{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create mandate", err)
	}
	return m, nil
}

// GetMandateByID retrieves a mandate by internal id.
func (d Datasource) GetMandateByID(id string) (*model.Mandate, error) {
	return d.getMandate(`WHERE mandate_id = $1`, id)
}

// GetMandateByExternalID resolves a gateway mandate id to the local mandate,
// or nil when the id is unknown.
func (d Datasource) GetMandateByExternalID(externalID string) (*model.Mandate, error) {
	m, err := d.getMandate(`WHERE external_id = $1`, externalID)
	if err != nil {
		if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// UpdateMandate persists the mandate's status and gateway external id.
func (d Datasource) UpdateMandate(m *model.Mandate) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.mandates SET status = $2, external_id = $3, updated_at = NOW() WHERE mandate_id = $1
	`, m.MandateID, m.Status, newNullString(m.ExternalID))
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update mandate", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update mandate", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Mandate not found", nil)
	}
	return nil
}

func (d Datasource) getMandate(where string, arg interface{}) (*model.Mandate, error) {
	row := d.Conn.QueryRow(`
		SELECT mandate_id, status, scheme, external_id, created_at, updated_at
		FROM doozez.mandates `+where, arg)

	m := model.Mandate{}
	var scheme, externalID sql.NullString
	err := row.Scan(&m.MandateID, &m.Status, &scheme, &externalID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Mandate not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve mandate", err)
	}
	m.Scheme = scheme.String
	m.ExternalID = externalID.String
	return &m, nil
}
