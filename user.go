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

package doozez

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/model"
)

const userCacheTTL = 5 * time.Minute

// CreateUser registers a user account.
func (d *Doozez) CreateUser(usr model.User) (model.User, error) {
	return d.datasource.CreateUser(usr)
}

// GetUser retrieves a user by id. Profiles rarely change, so reads go through
// the cache.
func (d *Doozez) GetUser(ctx context.Context, id string) (*model.User, error) {
	key := fmt.Sprintf("user:%s", id)
	if d.cache != nil {
		var cached model.User
		if err := d.cache.Get(ctx, key, &cached); err == nil && cached.UserID != "" {
			return &cached, nil
		}
	}

	usr, err := d.datasource.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if d.cache != nil {
		if err := d.cache.Set(ctx, key, usr, userCacheTTL); err != nil {
			logrus.WithError(err).WithField("user_id", id).Warn("failed to cache user")
		}
	}
	return usr, nil
}
