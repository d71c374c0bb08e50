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

// CreateUser inserts a new user.
func (d Datasource) CreateUser(usr model.User) (model.User, error) {
	usr.UserID = GenerateUUIDWithSuffix("usr")
	usr.CreatedAt = time.Now()

	_, err := d.Conn.Exec(`
		INSERT INTO doozez.users (user_id, email, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, usr.UserID, usr.Email, usr.FirstName, usr.LastName, usr.CreatedAt)
	if err != nil {
		return model.User{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create user", err)
	}
	return usr, nil
}

// GetUserByID retrieves a user by internal id.
func (d Datasource) GetUserByID(id string) (*model.User, error) {
	return d.getUser(`WHERE user_id = $1`, id)
}

// GetUserByEmail retrieves a user by email.
func (d Datasource) GetUserByEmail(email string) (*model.User, error) {
	return d.getUser(`WHERE email = $1`, email)
}

func (d Datasource) getUser(where string, arg interface{}) (*model.User, error) {
	row := d.Conn.QueryRow(`
		SELECT user_id, email, first_name, last_name, created_at
		FROM doozez.users `+where, arg)

	usr := model.User{}
	var firstName, lastName sql.NullString
	err := row.Scan(&usr.UserID, &usr.Email, &firstName, &lastName, &usr.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "User not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve user", err)
	}
	usr.FirstName = firstName.String
	usr.LastName = lastName.String
	return &usr, nil
}
