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

// Package gateway wraps the direct-debit payment provider's REST API. Doozez
// never holds bank details itself; mandates are set up through the provider's
// hosted approval flow and referenced by external id afterwards.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/internal/request"
)

// Client is the side of the provider API doozez talks to. Services depend on
// this interface so tests can stub the provider without HTTP.
type Client interface {
	CreateApprovalFlow(ctx context.Context, req ApprovalFlowRequest) (*ApprovalFlow, error)
	CompleteApprovalFlow(ctx context.Context, flowID, sessionToken string) (*ApprovalFlow, error)
	GetMandate(ctx context.Context, mandateID string) (*Mandate, error)
	CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	CreateInstalmentSchedule(ctx context.Context, req InstalmentScheduleRequest) (*InstalmentSchedule, error)
	GetInstalmentSchedule(ctx context.Context, scheduleID string) (*InstalmentSchedule, error)
}

// ApprovalFlowRequest starts a hosted mandate-approval session for a user.
type ApprovalFlowRequest struct {
	Description  string `json:"description"`
	SessionToken string `json:"session_token"`
	RedirectURL  string `json:"success_redirect_url"`
	UserEmail    string `json:"prefilled_customer_email,omitempty"`
}

// ApprovalFlow is the provider's redirect-flow resource. MandateID is empty
// until the flow has been completed.
type ApprovalFlow struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url,omitempty"`
	MandateID   string `json:"mandate_id,omitempty"`
}

// Mandate is the provider's view of a direct-debit mandate.
type Mandate struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Scheme string `json:"scheme"`
}

// PaymentRequest creates a one-off collection against a mandate. Amount is in
// the currency's minor unit, the way the provider expects it.
type PaymentRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	MandateID   string `json:"mandate_id"`
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// Payment is the provider's view of a collection.
type Payment struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	ChargeDate string `json:"charge_date,omitempty"`
}

// InstalmentScheduleRequest creates a recurring collection plan against a
// mandate, one instalment per month.
type InstalmentScheduleRequest struct {
	Name         string `json:"name"`
	Amount       int64  `json:"amount"`
	AppFee       int64  `json:"app_fee,omitempty"`
	Currency     string `json:"currency"`
	MandateID    string `json:"mandate_id"`
	Count        int    `json:"count"`
	IntervalUnit string `json:"interval_unit"`
}

// InstalmentSchedule is the provider's view of a collection plan.
type InstalmentSchedule struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Name   string `json:"name"`
}

// MinorUnits converts a decimal major-unit amount into the provider's integer
// minor units.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

type client struct {
	httpClient *http.Client
}

// NewClient builds a Client backed by the configured provider endpoint.
func NewClient() Client {
	timeout := 30 * time.Second
	if cnf, err := config.Fetch(); err == nil && cnf.Gateway.TimeoutSec > 0 {
		timeout = time.Duration(cnf.Gateway.TimeoutSec) * time.Second
	}
	return &client{httpClient: &http.Client{Timeout: timeout}}
}

// NewClientWithHTTP builds a Client over a caller-supplied HTTP client.
func NewClientWithHTTP(httpClient *http.Client) Client {
	return &client{httpClient: httpClient}
}

func (c *client) CreateApprovalFlow(ctx context.Context, req ApprovalFlowRequest) (*ApprovalFlow, error) {
	var flow ApprovalFlow
	if err := c.call(ctx, http.MethodPost, "/redirect_flows", req, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

func (c *client) CompleteApprovalFlow(ctx context.Context, flowID, sessionToken string) (*ApprovalFlow, error) {
	payload := map[string]string{"session_token": sessionToken}
	var flow ApprovalFlow
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/redirect_flows/%s/actions/complete", flowID), payload, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

func (c *client) GetMandate(ctx context.Context, mandateID string) (*Mandate, error) {
	var mandate Mandate
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/mandates/%s", mandateID), nil, &mandate); err != nil {
		return nil, err
	}
	return &mandate, nil
}

func (c *client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var payment Payment
	if err := c.call(ctx, http.MethodPost, "/payments", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/payments/%s", paymentID), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *client) CreateInstalmentSchedule(ctx context.Context, req InstalmentScheduleRequest) (*InstalmentSchedule, error) {
	var schedule InstalmentSchedule
	if err := c.call(ctx, http.MethodPost, "/instalment_schedules", req, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (c *client) GetInstalmentSchedule(ctx context.Context, scheduleID string) (*InstalmentSchedule, error) {
	var schedule InstalmentSchedule
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/instalment_schedules/%s", scheduleID), nil, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (c *client) call(ctx context.Context, method, path string, payload, response interface{}) error {
	cnf, err := config.Fetch()
	if err != nil {
		return err
	}

	var req *http.Request
	if payload != nil {
		body, err := request.ToJsonReq(payload)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to serialize gateway request", err)
		}
		req, err = http.NewRequestWithContext(ctx, method, cnf.Gateway.BaseURL+path, body)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to build gateway request", err)
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, cnf.Gateway.BaseURL+path, nil)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to build gateway request", err)
		}
	}
	req.Header.Set("Authorization", request.BearerAuth(cnf.Gateway.AccessToken))
	req.Header.Set("GoCardless-Version", "2015-07-06")

	resp, err := request.CallWithClient(c.httpClient, req, response)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Gateway call failed", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apierror.NewAPIError(apierror.ErrInternalServer, fmt.Sprintf("Gateway returned status %d for %s %s", resp.StatusCode, method, path), nil)
	}
	return nil
}
