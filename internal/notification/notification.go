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

// Package notification delivers fire-and-forget notifications: user pushes
// (invitation created, safe started, ...) through the configured push
// service, and operator error reports to Slack. Delivery failures are logged
// and never propagated to callers.
package notification

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/internal/request"
)

// UserPush is the payload delivered to the push service for one user.
type UserPush struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Data   string `json:"data,omitempty"`
}

// NotifyUser sends a push notification to a user. Errors are logged, not
// returned; a lost notification must never fail the operation that caused it.
func NotifyUser(push UserPush) {
	conf, err := config.Fetch()
	if err != nil {
		logrus.Error(err)
		return
	}
	if conf.Notification.Push.Url == "" {
		return
	}

	operation := func() error {
		payload, err := request.ToJsonReq(&push)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequest("POST", conf.Notification.Push.Url, payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range conf.Notification.Push.Headers {
			req.Header.Set(k, v)
		}
		resp, err := request.Call(req, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("push service returned %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, policy); err != nil {
		logrus.Errorf("push notification for user %s failed: %v", push.UserID, err)
	}
}

// SlackNotification reports an error to the configured Slack webhook.
func SlackNotification(err error) {
	conf, confErr := config.Fetch()
	if confErr != nil {
		log.Println(confErr)
		return
	}

	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "Error From Doozez 🐞",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Error:*\n%v"
					}
				]
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Time:*\n%v"
					}
				]
			}
		]
	}`, err.Error(), time.Now().Format(time.RFC822)))

	payload, err := request.ToJsonReq(&data)
	if err != nil {
		log.Println(err)
		return
	}

	req, err := http.NewRequest("POST", conf.Notification.Slack.WebhookUrl, payload)
	if err != nil {
		log.Println(err)
		return
	}

	var response map[string]interface{}
	if _, err := request.Call(req, &response); err != nil {
		log.Println(err)
	}
}

// NotifyError reports a system error through every configured channel.
func NotifyError(systemError error) {
	log.Println(systemError)

	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}

	if conf.Notification.Slack.WebhookUrl != "" {
		SlackNotification(systemError)
	}
}
