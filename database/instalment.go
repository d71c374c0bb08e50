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

// CreateInstalment inserts a new instalment schedule record.
func (d Datasource) CreateInstalment(i model.Instalment) (model.Instalment, error) {
	i.InstalmentID = GenerateUUIDWithSuffix("ins")
	i.CreatedAt = time.Now()
	i.UpdatedAt = i.CreatedAt

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.instalments (instalment_id, participation_id, status, name, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, i.InstalmentID, i.ParticipationID, i.Status, i.Name, newNullString(i.ExternalID), i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return model.Instalment{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create instalment", err)
	}
	return i, nil
}

// GetInstalmentByExternalID resolves a gateway schedule id to the local
// instalment, or nil when the id is unknown.
func (d Datasource) GetInstalmentByExternalID(externalID string) (*model.Instalment, error) {
	row := d.Conn.QueryRow(`
		SELECT instalment_id, participation_id, status, name, external_id, created_at, updated_at
		FROM doozez.instalments
		WHERE external_id = $1
	`, externalID)

	i := model.Instalment{}
	var name, extID sql.NullString
	err := row.Scan(&i.InstalmentID, &i.ParticipationID, &i.Status, &name, &extID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve instalment", err)
	}
	i.Name = name.String
	i.ExternalID = extID.String
	return &i, nil
}

// UpdateInstalmentStatus persists an instalment transition.
func (d Datasource) UpdateInstalmentStatus(id string, status model.InstalmentStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.instalments SET status = $2, updated_at = NOW() WHERE instalment_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update instalment status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update instalment status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Instalment not found", nil)
	}
	return nil
}
