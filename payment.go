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
	"fmt"

	"github.com/pkg/errors"

	"github.com/doozez/doozez/gateway"
	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// createPaymentTask is the CREATE_PAYMENT task handler: collect one monthly
// contribution from a participation's mandate through the gateway and record
// the resulting payment as PendingSubmission. Confirmation arrives later as a
// webhook.
func (d *Doozez) createPaymentTask(ctx context.Context, parameters json.RawMessage) error {
	var params model.CreatePaymentParams
	if err := json.Unmarshal(parameters, &params); err != nil {
		return errors.Wrap(err, "create payment")
	}

	participation, err := d.datasource.GetParticipationByID(params.ParticipationID)
	if err != nil {
		return errors.Wrap(err, "create payment")
	}
	if participation.PaymentMethod == nil || !participation.PaymentMethod.IsActive() {
		return apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("Payment method for participation %s is not activated", params.ParticipationID), nil)
	}
	if participation.PaymentMethod.Mandate == nil || participation.PaymentMethod.Mandate.ExternalID == "" {
		return apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("Participation %s has no gateway mandate", params.ParticipationID), nil)
	}

	gwPayment, err := d.gateway.CreatePayment(ctx, gateway.PaymentRequest{
		Amount:      gateway.MinorUnits(params.Amount),
		Currency:    params.Currency,
		MandateID:   participation.PaymentMethod.Mandate.ExternalID,
		Description: fmt.Sprintf("doozez safe contribution %s", participation.SafeID),
	})
	if err != nil {
		return errors.Wrap(err, "create payment")
	}

	_, err = d.datasource.CreatePayment(model.Payment{
		ParticipationID: params.ParticipationID,
		Status:          model.PaymentPendingSubmission,
		Amount:          params.Amount,
		Currency:        params.Currency,
		ExternalID:      gwPayment.ID,
	})
	if err != nil {
		return errors.Wrap(err, "create payment")
	}
	return nil
}
