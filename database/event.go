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

// CreateEvent persists one gateway notification in the Created state. The
// gateway event id is unique, so redelivered webhooks collapse onto the
// already stored event, which is returned unchanged.
func (d Datasource) CreateEvent(ev model.Event) (model.Event, error) {
	ev.EventID = GenerateUUIDWithSuffix("evt")
	ev.Status = model.ExecutableCreated
	ev.CreatedOn = time.Now()
	ev.UpdatedAt = ev.CreatedOn

	result, err := d.Conn.Exec(`
		INSERT INTO doozez.events (event_id, status, gateway_event_id, resource_type, action, link_id, cause, description, external_created_at, created_on, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (gateway_event_id) DO NOTHING
	`, ev.EventID, ev.Status, ev.Gateway.GatewayEventID, ev.Gateway.ResourceType, ev.Gateway.Action,
		ev.Gateway.LinkID, ev.Gateway.Cause, ev.Gateway.Description, ev.Gateway.ExternalCreatedAt,
		ev.CreatedOn, ev.UpdatedAt)
	if err != nil {
		return model.Event{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create event", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return model.Event{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create event", err)
	}
	if affected == 0 {
		existing, err := d.getEventByGatewayEventID(ev.Gateway.GatewayEventID)
		if err != nil {
			return model.Event{}, err
		}
		return *existing, nil
	}
	return ev, nil
}

// GetEventByID retrieves an event by its internal id.
func (d Datasource) GetEventByID(id string) (*model.Event, error) {
	row := d.Conn.QueryRow(eventSelect+` WHERE event_id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Event not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve event", err)
	}
	return event, nil
}

// ClaimNextEvent claims the next runnable event under a row lock, newest
// first. Like jobs, a Running event is re-claimable so an abandoned one can
// be resumed. A nil event means there is nothing to process.
func (d Datasource) ClaimNextEvent(ctx context.Context) (*model.Event, error) {
	row := d.Conn.QueryRowContext(ctx, `
		UPDATE doozez.events
		SET status = $1, updated_at = NOW()
		WHERE event_id = (
			SELECT event_id FROM doozez.events
			WHERE status IN ($2, $1)
			ORDER BY created_on DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING event_id, status, gateway_event_id, resource_type, action, link_id, cause, description, external_created_at, created_on, updated_at
	`, model.ExecutableRunning, model.ExecutableCreated)

	event, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to claim next event", err)
	}
	return event, nil
}

// UpdateEventStatus persists an event transition.
func (d Datasource) UpdateEventStatus(id string, status model.ExecutableStatus) error {
	result, err := d.Conn.Exec(`
		UPDATE doozez.events SET status = $2, updated_at = NOW() WHERE event_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update event status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update event status", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Event not found", nil)
	}
	return nil
}

const eventSelect = `
	SELECT event_id, status, gateway_event_id, resource_type, action, link_id, cause, description, external_created_at, created_on, updated_at
	FROM doozez.events`

func (d Datasource) getEventByGatewayEventID(gatewayEventID string) (*model.Event, error) {
	row := d.Conn.QueryRow(eventSelect+` WHERE gateway_event_id = $1`, gatewayEventID)
	event, err := scanEvent(row)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve event", err)
	}
	return event, nil
}

func scanEvent(row rowScanner) (*model.Event, error) {
	event := model.Event{}
	var linkID, cause, description sql.NullString
	var externalCreatedAt sql.NullTime

	err := row.Scan(&event.EventID, &event.Status, &event.Gateway.GatewayEventID, &event.Gateway.ResourceType,
		&event.Gateway.Action, &linkID, &cause, &description, &externalCreatedAt,
		&event.CreatedOn, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}
	event.Gateway.LinkID = linkID.String
	event.Gateway.Cause = cause.String
	event.Gateway.Description = description.String
	event.Gateway.ExternalCreatedAt = externalCreatedAt.Time
	return &event, nil
}
