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

// createInstalmentsTask is the CREATE_INSTALMENTS task handler: set up one
// monthly instalment schedule at the gateway per participant, covering the
// remaining rounds of the safe. Each schedule is recorded Pending; activation
// arrives later as a webhook.
func (d *Doozez) createInstalmentsTask(ctx context.Context, parameters json.RawMessage) error {
	var params model.CreateInstalmentsParams
	if err := json.Unmarshal(parameters, &params); err != nil {
		return errors.Wrap(err, "create instalments")
	}

	safe, err := d.datasource.GetSafeByID(ctx, params.SafeID)
	if err != nil {
		return errors.Wrap(err, "create instalments")
	}
	participants, err := d.datasource.GetNonSystemParticipations(ctx, params.SafeID)
	if err != nil {
		return errors.Wrap(err, "create instalments")
	}

	for _, participant := range participants {
		if participant.PaymentMethod == nil || !participant.PaymentMethod.IsActive() ||
			participant.PaymentMethod.Mandate == nil || participant.PaymentMethod.Mandate.ExternalID == "" {
			return apierror.NewAPIError(apierror.ErrInvalidInput,
				fmt.Sprintf("Participation %s has no activated gateway mandate", participant.ParticipationID), nil)
		}

		name := fmt.Sprintf("%s (%s)", safe.Name, participant.ParticipationID)
		schedule, err := d.gateway.CreateInstalmentSchedule(ctx, gateway.InstalmentScheduleRequest{
			Name:         name,
			Amount:       gateway.MinorUnits(safe.MonthlyPayment),
			AppFee:       gateway.MinorUnits(params.AppFee),
			Currency:     params.Currency,
			MandateID:    participant.PaymentMethod.Mandate.ExternalID,
			Count:        len(participants),
			IntervalUnit: "monthly",
		})
		if err != nil {
			return errors.Wrap(err, "create instalments")
		}

		_, err = d.datasource.CreateInstalment(model.Instalment{
			ParticipationID: participant.ParticipationID,
			Status:          model.InstalmentPending,
			Name:            name,
			ExternalID:      schedule.ID,
		})
		if err != nil {
			return errors.Wrap(err, "create instalments")
		}
	}
	return nil
}
