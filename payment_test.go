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
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doozez/doozez/gateway"
	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

func paymentTaskParams(t *testing.T, participationID string, amount decimal.Decimal) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(model.CreatePaymentParams{
		ParticipationID: participationID,
		Amount:          amount,
		Currency:        "GBP",
	})
	require.NoError(t, err)
	return payload
}

func TestCreatePaymentTask_CollectsThroughGateway(t *testing.T) {
	d, ds, gw := newTestService(t)
	participation := &model.Participation{
		ParticipationID: "ptc_1",
		SafeID:          "safe_1",
		PaymentMethod:   activatedPaymentMethod("pm_1"),
	}

	ds.On("GetParticipationByID", "ptc_1").Return(participation, nil)
	gw.On("CreatePayment", mock.Anything, mock.Anything).Return(&gateway.Payment{ID: "PM123", Status: "pending_submission"}, nil)

	var recorded model.Payment
	ds.On("CreatePayment", mock.Anything).Run(func(args mock.Arguments) {
		recorded = args.Get(0).(model.Payment)
	}).Return(model.Payment{PaymentID: "pay_1"}, nil)

	err := d.createPaymentTask(context.Background(), paymentTaskParams(t, "ptc_1", decimal.RequireFromString("25.50")))
	require.NoError(t, err)

	gw.AssertCalled(t, "CreatePayment", mock.Anything, mock.MatchedBy(func(req gateway.PaymentRequest) bool {
		return req.Amount == 2550 && req.Currency == "GBP" && req.MandateID == "MD_pm_1"
	}))
	assert.Equal(t, model.PaymentPendingSubmission, recorded.Status)
	assert.Equal(t, "PM123", recorded.ExternalID)
	assert.Equal(t, "ptc_1", recorded.ParticipationID)
}

func TestCreatePaymentTask_RefusesInactiveMethod(t *testing.T) {
	d, ds, gw := newTestService(t)
	participation := &model.Participation{
		ParticipationID: "ptc_1",
		PaymentMethod:   &model.PaymentMethod{PaymentMethodID: "pm_1", Status: model.PaymentMethodExternallySubmitted},
	}
	ds.On("GetParticipationByID", "ptc_1").Return(participation, nil)

	err := d.createPaymentTask(context.Background(), paymentTaskParams(t, "ptc_1", decimal.NewFromInt(25)))
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
	gw.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestCreateInstalmentsTask_SchedulesEachParticipant(t *testing.T) {
	d, ds, gw := newTestService(t)
	safe := startingSafe("safe_1")
	participants := drawParticipants(2)

	params, err := json.Marshal(model.CreateInstalmentsParams{
		SafeID:   "safe_1",
		AppFee:   decimal.RequireFromString("1.25"),
		Currency: "GBP",
	})
	require.NoError(t, err)

	ds.On("GetSafeByID", mock.Anything, "safe_1").Return(safe, nil)
	ds.On("GetNonSystemParticipations", mock.Anything, "safe_1").Return(participants, nil)

	var requests []gateway.InstalmentScheduleRequest
	gw.On("CreateInstalmentSchedule", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		requests = append(requests, args.Get(1).(gateway.InstalmentScheduleRequest))
	}).Return(&gateway.InstalmentSchedule{ID: "IS1", Status: "pending"}, nil)

	var recorded []model.Instalment
	ds.On("CreateInstalment", mock.Anything).Run(func(args mock.Arguments) {
		recorded = append(recorded, args.Get(0).(model.Instalment))
	}).Return(model.Instalment{}, nil)

	require.NoError(t, d.createInstalmentsTask(context.Background(), params))

	require.Len(t, requests, 2)
	for _, req := range requests {
		assert.Equal(t, int64(2500), req.Amount)
		assert.Equal(t, int64(125), req.AppFee)
		assert.Equal(t, 2, req.Count)
		assert.Equal(t, "monthly", req.IntervalUnit)
	}
	require.Len(t, recorded, 2)
	for _, instalment := range recorded {
		assert.Equal(t, model.InstalmentPending, instalment.Status)
		assert.Equal(t, "IS1", instalment.ExternalID)
	}
}

func TestCreateInstalmentsTask_RequiresActivatedMandates(t *testing.T) {
	d, ds, gw := newTestService(t)
	safe := startingSafe("safe_1")
	participants := drawParticipants(2)
	participants[1].PaymentMethod.Mandate.ExternalID = ""

	params, err := json.Marshal(model.CreateInstalmentsParams{SafeID: "safe_1", Currency: "GBP"})
	require.NoError(t, err)

	ds.On("GetSafeByID", mock.Anything, "safe_1").Return(safe, nil)
	ds.On("GetNonSystemParticipations", mock.Anything, "safe_1").Return(participants, nil)
	gw.On("CreateInstalmentSchedule", mock.Anything, mock.Anything).Return(&gateway.InstalmentSchedule{ID: "IS1"}, nil)
	ds.On("CreateInstalment", mock.Anything).Return(model.Instalment{}, nil)

	err = d.createInstalmentsTask(context.Background(), params)
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}
