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
	"embed"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/database"
	"github.com/doozez/doozez/gateway"
	"github.com/doozez/doozez/internal/cache"
	redis_db "github.com/doozez/doozez/internal/redis-db"
)

// Doozez is the service layer: every business operation hangs off this
// struct, with the datasource, payment gateway, queue and task registry
// injected at construction time.
type Doozez struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	gateway    gateway.Client
	cache      cache.Cache
	registry   *TaskRegistry
	events     *EventDispatch
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewDoozez initializes the service layer with the provided datasource. It
// fetches the configuration, connects Redis, builds the queue, the gateway
// client, the task registry and the event dispatch table.
func NewDoozez(db database.IDataSource) (*Doozez, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient(configuration.Redis.Dns, configuration.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}

	cacheInstance, err := cache.NewCache()
	if err != nil {
		// run without a cache rather than refusing to start
		logrus.WithError(err).Warn("failed to create cache")
		cacheInstance = nil
	}

	newDoozez := &Doozez{
		datasource: db,
		queue:      NewQueue(configuration),
		redis:      redisClient.Client(),
		gateway:    gateway.NewClient(),
		cache:      cacheInstance,
	}
	newDoozez.registry = newDoozez.defaultTaskRegistry()
	newDoozez.events = newDoozez.defaultEventDispatch()
	return newDoozez, nil
}

// NewDoozezWithDeps wires the service layer from caller-supplied dependencies.
// The worker entrypoints and tests use it to inject stubs.
func NewDoozezWithDeps(db database.IDataSource, gatewayClient gateway.Client, queue *Queue, redisClient redis.UniversalClient) *Doozez {
	newDoozez := &Doozez{
		datasource: db,
		queue:      queue,
		redis:      redisClient,
		gateway:    gatewayClient,
	}
	newDoozez.registry = newDoozez.defaultTaskRegistry()
	newDoozez.events = newDoozez.defaultEventDispatch()
	return newDoozez
}
