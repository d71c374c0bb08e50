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

	"github.com/doozez/doozez/database"
	"github.com/doozez/doozez/gateway"
	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// PaymentMethodSetup is what the caller gets back from CreatePaymentMethod:
// the stored method plus the gateway URL the user must visit to approve the
// mandate.
type PaymentMethodSetup struct {
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	ApprovalURL   string              `json:"approval_url"`
	FlowID        string              `json:"flow_id"`
	SessionToken  string              `json:"session_token"`
}

// CreatePaymentMethod creates a payment method and starts the gateway's
// hosted mandate-approval flow. The user's first method always becomes the
// default; an explicitly default method demotes the previous one.
func (d *Doozez) CreatePaymentMethod(ctx context.Context, userID, redirectURL string, isDefault bool) (*PaymentMethodSetup, error) {
	usr, err := d.datasource.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	existingDefault, err := d.datasource.GetDefaultPaymentMethodForUser(userID)
	if err != nil {
		return nil, err
	}
	if existingDefault == nil {
		isDefault = true
	}

	sessionToken := database.GenerateUUIDWithSuffix("sess")
	flow, err := d.gateway.CreateApprovalFlow(ctx, gateway.ApprovalFlowRequest{
		Description:  "Doozez direct debit",
		SessionToken: sessionToken,
		RedirectURL:  redirectURL,
		UserEmail:    usr.Email,
	})
	if err != nil {
		return nil, err
	}

	mandate, err := d.datasource.CreateMandate(model.Mandate{Status: model.MandatePendingCustomerApproval})
	if err != nil {
		return nil, err
	}
	method, err := d.datasource.CreatePaymentMethod(model.PaymentMethod{
		UserID:    userID,
		Status:    model.PaymentMethodPendingExternalApproval,
		IsDefault: isDefault,
		MandateID: mandate.MandateID,
	})
	if err != nil {
		return nil, err
	}
	method.Mandate = &mandate

	return &PaymentMethodSetup{
		PaymentMethod: method,
		ApprovalURL:   flow.RedirectURL,
		FlowID:        flow.ID,
		SessionToken:  sessionToken,
	}, nil
}

// CompleteApprovalFlow finishes the hosted approval flow after the user
// returns from the gateway: the mandate's external id is recorded, the
// mandate moves to PendingSubmission and the method advances to
// ExternalApprovalSuccessful. The rest of the chain is driven by webhooks.
func (d *Doozez) CompleteApprovalFlow(ctx context.Context, paymentMethodID, flowID, sessionToken string) (*model.PaymentMethod, error) {
	method, err := d.datasource.GetPaymentMethodByID(paymentMethodID)
	if err != nil {
		return nil, err
	}
	if method.Mandate == nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Payment method has no mandate to approve", nil)
	}

	flow, err := d.gateway.CompleteApprovalFlow(ctx, flowID, sessionToken)
	if err != nil {
		if advErr := method.Advance(model.PaymentMethodExternalApprovalFailed); advErr == nil {
			_ = d.datasource.UpdatePaymentMethodStatus(method.PaymentMethodID, method.Status)
		}
		return nil, err
	}

	method.Mandate.ExternalID = flow.MandateID
	method.Mandate.Status = model.MandatePendingSubmission
	if err := d.datasource.UpdateMandate(method.Mandate); err != nil {
		return nil, err
	}
	if err := method.Advance(model.PaymentMethodExternalApprovalSuccessful); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdatePaymentMethodStatus(method.PaymentMethodID, method.Status); err != nil {
		return nil, err
	}
	return method, nil
}

// GetPaymentMethod retrieves a payment method with its mandate.
func (d *Doozez) GetPaymentMethod(id string) (*model.PaymentMethod, error) {
	return d.datasource.GetPaymentMethodByID(id)
}
