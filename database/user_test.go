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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	usr := model.User{
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}

	mock.ExpectExec("INSERT INTO doozez.users").
		WithArgs(sqlmock.AnyArg(), usr.Email, usr.FirstName, usr.LastName, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateUser(usr)
	assert.NoError(t, err)
	assert.Contains(t, created.UserID, "usr_")
	assert.Equal(t, usr.Email, created.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	email := gofakeit.Email()
	mock.ExpectQuery("SELECT (.+) FROM doozez.users").
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "first_name", "last_name", "created_at"}).
			AddRow("usr_1", email, "Ada", "Lovelace", time.Now()))

	usr, err := ds.GetUserByEmail(email)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", usr.UserID)
	assert.Equal(t, email, usr.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT (.+) FROM doozez.users").
		WithArgs("usr_missing").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "first_name", "last_name", "created_at"}))

	_, err = ds.GetUserByID("usr_missing")
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
