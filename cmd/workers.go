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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/internal/notification"
	redis_db "github.com/doozez/doozez/internal/redis-db"
)

// jobExecutorTick drains the job executor: it runs claimed jobs one after
// another until the claim query comes back empty. Executor concurrency is 1,
// so at most one job pipeline runs at a time.
func (d *doozezInstance) jobExecutorTick(ctx context.Context, _ *asynq.Task) error {
	for {
		job, err := d.doozez.ExecuteNextRunnableJob(ctx)
		if err != nil {
			logrus.WithError(err).Error("job executor tick failed")
			return err
		}
		if job == nil {
			return nil
		}
		log.Println(" [*] Job executed", job.JobID, job.Status)
	}
}

// eventExecutorTick drains the event executor the same way.
func (d *doozezInstance) eventExecutorTick(ctx context.Context, _ *asynq.Task) error {
	for {
		event, err := d.doozez.ExecuteNextRunnableEvent(ctx)
		if err != nil {
			logrus.WithError(err).Error("event executor tick failed")
			return err
		}
		if event == nil {
			return nil
		}
		log.Println(" [*] Event executed", event.EventID, event.Status)
	}
}

// sendNotification delivers a queued user push.
func (d *doozezInstance) sendNotification(_ context.Context, t *asynq.Task) error {
	var push notification.UserPush
	if err := json.Unmarshal(t.Payload(), &push); err != nil {
		logrus.Error(err)
		return err
	}
	notification.NotifyUser(push)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	// executors must not run concurrently with themselves; notifications can
	queues := make(map[string]int)
	queues[cfg.Queue.JobExecutorQueue] = 1
	queues[cfg.Queue.EventExecutorQueue] = 1
	queues[cfg.Queue.NotificationQueue] = 3
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(d *doozezInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.JobExecutorQueue, d.jobExecutorTick)
	mux.HandleFunc(cfg.Queue.EventExecutorQueue, d.eventExecutorTick)
	mux.HandleFunc(cfg.Queue.NotificationQueue, d.sendNotification)
}

// workerCommands defines the "workers" command to start the worker process.
// The workers listen for executor ticks and notification pushes.
func workerCommands(d *doozezInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start doozez workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			shutdown, err := initializeTracing(ctx)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(d, mux)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
