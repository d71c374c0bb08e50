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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doozez/doozez/model"
)

func TestCreateEvent_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO doozez.events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateEvent(model.Event{
		Gateway: model.GatewayEvent{
			GatewayEventID: "EV001",
			ResourceType:   "mandates",
			Action:         "active",
			LinkID:         "MD001",
		},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.EventID)
	assert.Equal(t, model.ExecutableCreated, created.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent_RedeliveryReturnsStoredEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	// the conflict clause swallows the insert
	mock.ExpectExec("INSERT INTO doozez.events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows := sqlmock.NewRows([]string{"event_id", "status", "gateway_event_id", "resource_type", "action", "link_id", "cause", "description", "external_created_at", "created_on", "updated_at"}).
		AddRow("evt_stored", string(model.ExecutableSuccessful), "EV001", "mandates", "active", "MD001", "mandate_activated", "", now, now, now)

	mock.ExpectQuery("SELECT (.+) FROM doozez.events").
		WithArgs("EV001").
		WillReturnRows(rows)

	created, err := ds.CreateEvent(model.Event{
		Gateway: model.GatewayEvent{GatewayEventID: "EV001", ResourceType: "mandates", Action: "active"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "evt_stored", created.EventID)
	assert.Equal(t, model.ExecutableSuccessful, created.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextEvent_ClaimsRunnable(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows([]string{"event_id", "status", "gateway_event_id", "resource_type", "action", "link_id", "cause", "description", "external_created_at", "created_on", "updated_at"}).
		AddRow("evt_1", string(model.ExecutableRunning), "EV001", "payments", "confirmed", "PM001", "payment_confirmed", "", now, now, now)

	mock.ExpectQuery("UPDATE doozez.events").
		WithArgs(string(model.ExecutableRunning), string(model.ExecutableCreated)).
		WillReturnRows(rows)

	event, err := ds.ClaimNextEvent(context.Background())
	assert.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "evt_1", event.EventID)
	assert.Equal(t, "payments", event.Gateway.ResourceType)
	assert.Equal(t, "confirmed", event.Gateway.Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextEvent_NilWhenIdle(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("UPDATE doozez.events").
		WithArgs(string(model.ExecutableRunning), string(model.ExecutableCreated)).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "status", "gateway_event_id", "resource_type", "action", "link_id", "cause", "description", "external_created_at", "created_on", "updated_at"}))

	event, err := ds.ClaimNextEvent(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, event)
	assert.NoError(t, mock.ExpectationsWereMet())
}
