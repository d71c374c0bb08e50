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
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/internal/notification"
	redis_db "github.com/doozez/doozez/internal/redis-db"
	"github.com/doozez/doozez/model"
)

// Queue wraps the asynq client used to hand work to the worker process:
// executor ticks for the job and event pollers, and fire-and-forget user
// notifications.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// NewQueue initializes a Queue against the configured Redis instance.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	return &Queue{
		Client:    asynq.NewClient(queueOptions),
		Inspector: asynq.NewInspector(queueOptions),
	}
}

// queueJobExecutorTick asks the worker to run one job-executor poll tick.
func (q *Queue) queueJobExecutorTick() error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}
	task := asynq.NewTask(cfg.Queue.JobExecutorQueue, nil, asynq.Queue(cfg.Queue.JobExecutorQueue))
	_, err = q.Client.Enqueue(task)
	return err
}

// queueEventExecutorTick asks the worker to run one event-executor poll tick.
func (q *Queue) queueEventExecutorTick() error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}
	task := asynq.NewTask(cfg.Queue.EventExecutorQueue, nil, asynq.Queue(cfg.Queue.EventExecutorQueue))
	_, err = q.Client.Enqueue(task)
	return err
}

// queueNotification hands a user push to the notification worker.
func (q *Queue) queueNotification(push notification.UserPush) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(push)
	if err != nil {
		return err
	}
	task := asynq.NewTask(cfg.Queue.NotificationQueue, payload, asynq.Queue(cfg.Queue.NotificationQueue))
	_, err = q.Client.Enqueue(task)
	return err
}

// notify enqueues a push and logs any enqueue failure; a lost notification
// never fails the operation that caused it.
func (d *Doozez) notify(push notification.UserPush) {
	if d.queue == nil {
		return
	}
	if err := d.queue.queueNotification(push); err != nil {
		logrus.WithError(err).WithField("user_id", push.UserID).Warn("failed to enqueue notification")
	}
}

func (d *Doozez) notifySafeStarted(safe *model.Safe) {
	d.notify(notification.UserPush{
		UserID: safe.InitiatorID,
		Title:  "Safe started",
		Body:   fmt.Sprintf("Your safe %q has started.", safe.Name),
		Data:   safe.SafeID,
	})
}
