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

package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/doozez/doozez/api/model"
	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// SignatureHeader carries the gateway's HMAC-SHA256 signature of the raw
// request body.
const SignatureHeader = "Webhook-Signature"

// GatewayWebhook is the ingress for payment gateway notifications. The body
// signature is verified against the configured webhook secret, each event in
// the batch is stored, and processing happens asynchronously in the event
// executor. Redelivered events collapse onto the stored row.
func (a Api) GatewayWebhook(c *gin.Context) {
	conf, err := config.Fetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration unavailable"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "unreadable webhook body", err))
		return
	}

	if conf.Gateway.WebhookSecret != "" {
		if !verifySignature(body, c.GetHeader(SignatureHeader), conf.Gateway.WebhookSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}
	}

	var webhook model2.GatewayWebhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid webhook payload", err))
		return
	}
	if err := webhook.ValidateGatewayWebhook(); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	stored := make([]model.Event, 0, len(webhook.Events))
	for _, webhookEvent := range webhook.Events {
		event, err := a.doozez.CreateEvent(c.Request.Context(), model.GatewayEvent{
			GatewayEventID:    webhookEvent.ID,
			ResourceType:      webhookEvent.ResourceType,
			Action:            webhookEvent.Action,
			LinkID:            webhookEvent.LinkID(),
			Cause:             webhookEvent.Details.Cause,
			Description:       webhookEvent.Details.Description,
			ExternalCreatedAt: webhookEvent.CreatedAt,
		})
		if err != nil {
			logrus.WithError(err).WithField("gateway_event_id", webhookEvent.ID).Error("failed to store gateway event")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store events"})
			return
		}
		stored = append(stored, event)
	}

	c.JSON(http.StatusOK, gin.H{"events": len(stored)})
}

func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
