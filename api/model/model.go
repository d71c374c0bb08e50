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
package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

type CreateUser struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *CreateUser) ValidateCreateUser() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Email, validation.Required, is.Email),
	)
}

type CreateSafe struct {
	Name           string          `json:"name"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	Currency       string          `json:"currency"`
}

func (s *CreateSafe) ValidateCreateSafe() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Currency, validation.Required, validation.Length(3, 3)),
	)
}

type CreateInvitation struct {
	RecipientID string `json:"recipient_id"`
	SafeID      string `json:"safe_id"`
}

func (i *CreateInvitation) ValidateCreateInvitation() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.RecipientID, validation.Required),
		validation.Field(&i.SafeID, validation.Required),
	)
}

type AcceptInvitation struct {
	PaymentMethodID string `json:"payment_method_id"`
}

func (i *AcceptInvitation) ValidateAcceptInvitation() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.PaymentMethodID, validation.Required),
	)
}

type CreatePaymentMethod struct {
	RedirectURL string `json:"redirect_url"`
	IsDefault   bool   `json:"is_default"`
}

func (p *CreatePaymentMethod) ValidateCreatePaymentMethod() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.RedirectURL, validation.Required, is.URL),
	)
}

type CompleteApprovalFlow struct {
	FlowID       string `json:"flow_id"`
	SessionToken string `json:"session_token"`
}

func (p *CompleteApprovalFlow) ValidateCompleteApprovalFlow() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.FlowID, validation.Required),
		validation.Field(&p.SessionToken, validation.Required),
	)
}

// GatewayWebhook is the envelope the payment gateway POSTs to the webhook
// ingress: a batch of events, each linking one affected resource.
type GatewayWebhook struct {
	Events []GatewayWebhookEvent `json:"events"`
}

type GatewayWebhookEvent struct {
	ID           string                 `json:"id"`
	ResourceType string                 `json:"resource_type"`
	Action       string                 `json:"action"`
	Links        map[string]string      `json:"links"`
	Details      GatewayWebhookDetails  `json:"details"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type GatewayWebhookDetails struct {
	Origin      string `json:"origin,omitempty"`
	Cause       string `json:"cause,omitempty"`
	Description string `json:"description,omitempty"`
}

func (w *GatewayWebhook) ValidateGatewayWebhook() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.Events, validation.Required),
	)
}

// LinkID resolves the external id of the event's affected resource. The
// gateway keys the link by resource kind, singular.
func (e *GatewayWebhookEvent) LinkID() string {
	switch e.ResourceType {
	case "mandates":
		return e.Links["mandate"]
	case "payments":
		return e.Links["payment"]
	case "instalment_schedules":
		return e.Links["instalment_schedule"]
	}
	// fall back to the first link for resource kinds doozez does not track
	for _, id := range e.Links {
		return id
	}
	return ""
}
