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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doozez/doozez/gateway"
	"github.com/doozez/doozez/model"
)

func TestCreatePaymentMethod_FirstMethodBecomesDefault(t *testing.T) {
	d, ds, gw := newTestService(t)
	ds.On("GetUserByID", "usr_1").Return(&model.User{UserID: "usr_1", Email: "ada@example.com"}, nil)
	ds.On("GetDefaultPaymentMethodForUser", "usr_1").Return(nil, nil)
	gw.On("CreateApprovalFlow", mock.Anything, mock.Anything).
		Return(&gateway.ApprovalFlow{ID: "RE1", RedirectURL: "https://pay.example.com/flow/RE1"}, nil)
	ds.On("CreateMandate", mock.Anything).Return(model.Mandate{MandateID: "mdt_1", Status: model.MandatePendingCustomerApproval}, nil)

	var created model.PaymentMethod
	ds.On("CreatePaymentMethod", mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(0).(model.PaymentMethod)
	}).Return(model.PaymentMethod{PaymentMethodID: "pm_1", IsDefault: true, Status: model.PaymentMethodPendingExternalApproval, MandateID: "mdt_1"}, nil)

	setup, err := d.CreatePaymentMethod(context.Background(), "usr_1", "https://app.example.com/done", false)
	require.NoError(t, err)

	// false was requested, but the first method is forced default
	assert.True(t, created.IsDefault)
	assert.Equal(t, model.PaymentMethodPendingExternalApproval, created.Status)
	assert.Equal(t, "mdt_1", created.MandateID)
	assert.Equal(t, "https://pay.example.com/flow/RE1", setup.ApprovalURL)
	assert.Equal(t, "RE1", setup.FlowID)
	assert.NotEmpty(t, setup.SessionToken)

	gw.AssertCalled(t, "CreateApprovalFlow", mock.Anything, mock.MatchedBy(func(req gateway.ApprovalFlowRequest) bool {
		return req.UserEmail == "ada@example.com" && req.RedirectURL == "https://app.example.com/done"
	}))
}

func TestCreatePaymentMethod_KeepsExistingDefaultWhenNotRequested(t *testing.T) {
	d, ds, gw := newTestService(t)
	existing := activatedPaymentMethod("pm_1")
	existing.IsDefault = true

	ds.On("GetUserByID", "usr_1").Return(&model.User{UserID: "usr_1", Email: "ada@example.com"}, nil)
	ds.On("GetDefaultPaymentMethodForUser", "usr_1").Return(existing, nil)
	gw.On("CreateApprovalFlow", mock.Anything, mock.Anything).Return(&gateway.ApprovalFlow{ID: "RE2"}, nil)
	ds.On("CreateMandate", mock.Anything).Return(model.Mandate{MandateID: "mdt_2"}, nil)

	var created model.PaymentMethod
	ds.On("CreatePaymentMethod", mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(0).(model.PaymentMethod)
	}).Return(model.PaymentMethod{PaymentMethodID: "pm_2"}, nil)

	_, err := d.CreatePaymentMethod(context.Background(), "usr_1", "https://app.example.com/done", false)
	require.NoError(t, err)
	assert.False(t, created.IsDefault)
}

func TestCompleteApprovalFlow_RecordsMandateAndAdvances(t *testing.T) {
	d, ds, gw := newTestService(t)
	method := &model.PaymentMethod{
		PaymentMethodID: "pm_1",
		Status:          model.PaymentMethodPendingExternalApproval,
		Mandate:         &model.Mandate{MandateID: "mdt_1", Status: model.MandatePendingCustomerApproval},
	}

	ds.On("GetPaymentMethodByID", "pm_1").Return(method, nil)
	gw.On("CompleteApprovalFlow", mock.Anything, "RE1", "sess_1").
		Return(&gateway.ApprovalFlow{ID: "RE1", MandateID: "MD999"}, nil)
	ds.On("UpdateMandate", mock.Anything).Return(nil)
	ds.On("UpdatePaymentMethodStatus", "pm_1", model.PaymentMethodExternalApprovalSuccessful).Return(nil)

	updated, err := d.CompleteApprovalFlow(context.Background(), "pm_1", "RE1", "sess_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentMethodExternalApprovalSuccessful, updated.Status)
	assert.Equal(t, "MD999", updated.Mandate.ExternalID)
	assert.Equal(t, model.MandatePendingSubmission, updated.Mandate.Status)
}

func TestCompleteApprovalFlow_GatewayFailureMarksMethod(t *testing.T) {
	d, ds, gw := newTestService(t)
	method := &model.PaymentMethod{
		PaymentMethodID: "pm_1",
		Status:          model.PaymentMethodPendingExternalApproval,
		Mandate:         &model.Mandate{MandateID: "mdt_1", Status: model.MandatePendingCustomerApproval},
	}

	ds.On("GetPaymentMethodByID", "pm_1").Return(method, nil)
	gw.On("CompleteApprovalFlow", mock.Anything, "RE1", "sess_1").Return(nil, errors.New("session token mismatch"))
	ds.On("UpdatePaymentMethodStatus", "pm_1", model.PaymentMethodExternalApprovalFailed).Return(nil)

	_, err := d.CompleteApprovalFlow(context.Background(), "pm_1", "RE1", "sess_1")
	require.Error(t, err)
	assert.Equal(t, model.PaymentMethodExternalApprovalFailed, method.Status)
	ds.AssertNotCalled(t, "UpdateMandate", mock.Anything)
}
